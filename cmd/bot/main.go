package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"apim/internal/assessment"
	"apim/internal/config"
	"apim/internal/dojo"
	"apim/internal/journal"
	"apim/internal/llm"
	"apim/internal/memory"
	"apim/internal/scheduler"
	"apim/internal/storage"
	"apim/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	store, err := memory.Open(cfg.MemoryBackend, cfg.MemoryFilePath, cfg.MemoryBadgerDir, nil)
	if err != nil {
		log.Fatalf("failed to open memory: %v", err)
	}
	defer store.Close()

	rec, err := storage.NewFileRecorder(cfg.HistoryFilePath)
	if err != nil {
		log.Fatalf("failed to init history log: %v", err)
	}

	predictor := dojo.NewPredictor(cfg.ModelFilePath)
	if cfg.TrainOnStartup {
		trainOnStartup(cfg, rec, predictor)
	}

	var narrator telegram.Narrator
	if cfg.LLMProvider != config.ProviderNone {
		client, err := llm.NewFactory(cfg).CreateClient(cfg.LLMProvider, cfg.OpenAIModel)
		if err != nil {
			log.Printf("⚠️ LLM narration disabled: %v", err)
		} else {
			narrator = llm.NewNarrator(client)
		}
	}

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Options{
		Journal:     journal.New(store, nil),
		Assessment:  assessment.New(rec, predictor, nil),
		Narrator:    narrator,
		ParseMode:   cfg.MessageParseMode,
		Window:      cfg.ReportWindow,
		OwnerChatID: cfg.OwnerChatID,
	})
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.WeeklyReportCron)
	if cfg.OwnerChatID != 0 {
		sched.SetReportFunction(bot.SendWeeklyReport)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
	} else {
		log.Println("⚠️ OWNER_CHAT_ID not set, weekly reports are disabled")
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	bot.Start(ctx)
}

func trainOnStartup(cfg *config.Config, rec storage.Recorder, predictor *dojo.Predictor) {
	records, err := rec.Load()
	if err != nil {
		log.Printf("⚠️ Dojo training skipped: %v", err)
		return
	}
	report, net, err := dojo.Train(records, dojo.TrainOptions{
		Epochs:       cfg.TrainEpochs,
		BatchSize:    cfg.TrainBatchSize,
		LearningRate: cfg.TrainLearningRate,
		ModelPath:    cfg.ModelFilePath,
	})
	if err != nil {
		log.Printf("⚠️ Dojo model not saved: %v", err)
	}
	if !report.OK {
		log.Printf("🥋 Dojo not trained: %s (n=%d)", report.Reason, report.N)
		return
	}
	predictor.Use(net)
}
