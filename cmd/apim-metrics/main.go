package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"apim/internal/analytics"
	"apim/internal/config"
	"apim/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()

	path := flag.String("history", cfg.HistoryFilePath, "path to the questionnaire event log")
	asJSON := flag.Bool("json", false, "print the shadow stats as JSON")
	day := flag.String("day", "", "also print activity for this day (YYYY-MM-DD)")
	flag.Parse()

	rec, err := storage.NewFileRecorder(*path)
	if err != nil {
		log.Fatalf("❌ Failed to open history: %v", err)
	}
	records, err := rec.Load()
	if err != nil {
		log.Fatalf("❌ Failed to read history: %v", err)
	}

	stats := analytics.AnalyzeShadow(records)
	if *asJSON {
		out, err := stats.ToJSON()
		if err != nil {
			log.Fatalf("❌ Failed to encode stats: %v", err)
		}
		fmt.Println(out)
	} else {
		fmt.Print(stats.GenerateReportSummary())
	}

	if *day != "" {
		d, err := time.Parse("2006-01-02", *day)
		if err != nil {
			log.Fatalf("❌ Invalid -day: %v", err)
		}
		fmt.Println()
		fmt.Print(analytics.AnalyzeDaily(records, d).GenerateReportSummary())
	}
}
