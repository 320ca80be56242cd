package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"apim/internal/config"
	"apim/internal/journal"
	"apim/internal/memory"
)

func TestRun_ReportSavesSnapshotByDefault(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	store, err := memory.NewFileStore(filepath.Join(t.TempDir(), "apim_memory.json"), now)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	svc := journal.New(store, now)
	cfg := &config.Config{ReportWindow: 5}
	ctx := context.Background()

	if err := run(ctx, svc, cfg, "event", []string{"-desc", "deuda de tarjeta", "-amount", "1200"}); err != nil {
		t.Fatalf("event: %v", err)
	}
	if err := run(ctx, svc, cfg, "report", nil); err != nil {
		t.Fatalf("report: %v", err)
	}
	snaps, _ := svc.Snapshots(ctx)
	if len(snaps) != 1 {
		t.Fatalf("default report should save a snapshot, got %d", len(snaps))
	}

	if err := run(ctx, svc, cfg, "report", []string{"-save=false"}); err != nil {
		t.Fatalf("preview: %v", err)
	}
	snaps, _ = svc.Snapshots(ctx)
	if len(snaps) != 1 {
		t.Fatalf("preview must not save, got %d snapshots", len(snaps))
	}

	if err := run(ctx, svc, cfg, "containment", []string{"maybe"}); err == nil {
		t.Fatalf("expected containment usage error")
	}
}
