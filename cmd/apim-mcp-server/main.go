package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"apim/internal/assessment"
	"apim/internal/config"
	"apim/internal/dojo"
	"apim/internal/journal"
	"apim/internal/mcptools"
	"apim/internal/memory"
	"apim/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	log.Printf("🚀 Starting APIM MCP Server")
	cfg := config.New()

	store, err := memory.Open(cfg.MemoryBackend, cfg.MemoryFilePath, cfg.MemoryBadgerDir, nil)
	if err != nil {
		log.Fatalf("❌ Failed to open memory: %v", err)
	}
	defer store.Close()

	rec, err := storage.NewFileRecorder(cfg.HistoryFilePath)
	if err != nil {
		log.Fatalf("❌ Failed to init history log: %v", err)
	}

	tools := mcptools.New(
		journal.New(store, nil),
		assessment.New(rec, dojo.NewPredictor(cfg.ModelFilePath), nil),
		cfg.ReportWindow,
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "apim-mcp",
		Version: "1.0.0",
	}, nil)
	tools.Register(server)

	log.Printf("📋 Registered APIM MCP tools: log_event, evaluate_latest, weekly_report, set_containment, classify_profile")
	log.Printf("🔗 Starting APIM MCP server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ APIM MCP Server failed: %v", err)
	}
}
