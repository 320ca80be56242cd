package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"apim/internal/config"
	"apim/internal/journal"
	"apim/internal/memory"
	"apim/internal/reporting"
	"apim/internal/rules"
)

const usage = `usage:
  apim event -desc "..." [-amount ...] [-context ...] [-emotion ...] [-date YYYY-MM-DD]
  apim report [-n 5] [-save=false]
  apim containment on|off`

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cfg := config.New()

	store, err := memory.Open(cfg.MemoryBackend, cfg.MemoryFilePath, cfg.MemoryBadgerDir, nil)
	if err != nil {
		log.Fatalf("❌ Failed to open memory: %v", err)
	}
	defer store.Close()
	svc := journal.New(store, nil)
	ctx := context.Background()

	if err := run(ctx, svc, cfg, os.Args[1], os.Args[2:]); err != nil {
		store.Close()
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, svc *journal.Service, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "event":
		fs := flag.NewFlagSet("event", flag.ExitOnError)
		date := fs.String("date", "", "event date")
		desc := fs.String("desc", "", "description")
		amount := fs.String("amount", "", "amount in MXN")
		ctxText := fs.String("context", "", "context")
		emotion := fs.String("emotion", "", "declared emotion")
		_ = fs.Parse(args)

		res, err := svc.LogEvent(ctx, rules.Event{
			Date: *date, Description: *desc, Amount: *amount, Context: *ctxText, Emotion: *emotion,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n%s\n👉 %s\n", res.Zone.Symbol(), res.Trend.Symbol(), res.Feedback.Comment, res.Feedback.Suggestion)
	case "report":
		fs := flag.NewFlagSet("report", flag.ExitOnError)
		n := fs.Int("n", cfg.ReportWindow, "number of latest events")
		save := fs.Bool("save", true, "append the snapshot to the weekly history; -save=false previews")
		_ = fs.Parse(args)

		res, err := svc.WeeklyReport(ctx, *n, *save)
		if err != nil {
			return err
		}
		if res.OK {
			fmt.Println("📊 APIM VI — Reporte semanal")
			if err := reporting.RenderTable(os.Stdout, res.Rows); err != nil {
				return err
			}
			fmt.Println()
		}
		fmt.Println(res.Summary())
	case "containment":
		if len(args) != 1 {
			return fmt.Errorf("containment expects on or off")
		}
		var on bool
		switch strings.ToLower(args[0]) {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("containment expects on or off, got %q", args[0])
		}
		if err := svc.SetContainment(ctx, on); err != nil {
			return err
		}
		fmt.Printf("containment: %v\n", on)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}
