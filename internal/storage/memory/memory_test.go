// internal/storage/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/storage"
	"github.com/viperball/matchsim/pkg/core"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

// Verify Backend implements storage.Exportable interface
var _ storage.Exportable = (*Backend)(nil)

func testBatch(label string) *core.Batch {
	return &core.Batch{
		ID:        "3f0c1a2e-0000-4000-8000-000000000001",
		Label:     label,
		StartedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Games:     3,
		BaseSeed:  100,
		Workers:   2,
	}
}

func testRecord(i int) *core.GameRecord {
	return &core.GameRecord{
		BatchID: "3f0c1a2e-0000-4000-8000-000000000001",
		Index:   i,
		Seed:    100 + int64(i),
		Result: &core.GameResult{
			HomeTeam:   "Harbor",
			AwayTeam:   "Riverton",
			FinalScore: core.FinalScore{Home: 45.5, Away: 38},
			PlayByPlay: []core.Play{{Number: 1}, {Number: 2}},
			Seed:       100 + int64(i),
			Weather:    "clear",
		},
		Duration: 1500 * time.Microsecond,
	}
}

func readExport(t *testing.T, path string) BatchExport {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	var r interface{ Read([]byte) (int, error) } = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		defer gz.Close()
		r = gz
	}

	var out BatchExport
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	return out
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.games == nil {
		t.Error("games map not initialized")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRecordBeforeStart(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.RecordGame(testRecord(0)); err != ErrNoBatch {
		t.Errorf("expected ErrNoBatch, got %v", err)
	}
	if err := b.RecordFailure(&core.GameFailure{}); err != ErrNoBatch {
		t.Errorf("expected ErrNoBatch, got %v", err)
	}
	if err := b.EndBatch(&core.BatchSummary{}); err != ErrNoBatch {
		t.Errorf("expected ErrNoBatch, got %v", err)
	}
}

func TestExportUncompressed(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, WritePlays: true})

	if err := b.StartBatch(testBatch("Week 3: league")); err != nil {
		t.Fatalf("StartBatch failed: %v", err)
	}
	for _, i := range []int{2, 0} {
		if err := b.RecordGame(testRecord(i)); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}
	if err := b.RecordFailure(&core.GameFailure{Index: 1, Seed: 101, Error: "boom"}); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if got := b.Games(); got != 2 {
		t.Errorf("expected 2 games, got %d", got)
	}

	if err := b.EndBatch(&core.BatchSummary{Games: 2, Failed: 1}); err != nil {
		t.Fatalf("EndBatch failed: %v", err)
	}

	path := b.GetExportedFilePath()
	want := filepath.Join(dir, "Week_3__league_20260314_092653.json")
	if path != want {
		t.Fatalf("expected export path %s, got %s", want, path)
	}
	if files := b.ExportedFiles(); len(files) != 1 || files[0] != want {
		t.Errorf("unexpected exported files %v", files)
	}

	out := readExport(t, path)
	if out.Batch.BaseSeed != 100 {
		t.Errorf("expected base seed 100, got %d", out.Batch.BaseSeed)
	}
	if out.Summary == nil || out.Summary.Failed != 1 {
		t.Errorf("summary not exported: %+v", out.Summary)
	}
	if len(out.Games) != 2 || out.Games[0].Index != 0 || out.Games[1].Index != 2 {
		t.Fatalf("games not sorted by index: %+v", out.Games)
	}
	if out.Games[0].DurationMs != 1.5 {
		t.Errorf("expected 1.5ms, got %v", out.Games[0].DurationMs)
	}
	if len(out.Games[1].Result.PlayByPlay) != 2 {
		t.Errorf("expected plays to be written")
	}
	if len(out.Failures) != 1 || out.Failures[0].Error != "boom" {
		t.Errorf("unexpected failures %+v", out.Failures)
	}

	if b.Games() != 0 {
		t.Error("backend not reset after EndBatch")
	}
}

func TestExportCompressedWithoutPlays(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})

	batch := testBatch("")
	if err := b.StartBatch(batch); err != nil {
		t.Fatalf("StartBatch failed: %v", err)
	}
	rec := testRecord(0)
	if err := b.RecordGame(rec); err != nil {
		t.Fatalf("RecordGame failed: %v", err)
	}
	if err := b.EndBatch(&core.BatchSummary{Games: 1}); err != nil {
		t.Fatalf("EndBatch failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") || !strings.Contains(path, batch.ID) {
		t.Fatalf("unexpected export path %s", path)
	}

	out := readExport(t, path)
	if len(out.Games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(out.Games))
	}
	if len(out.Games[0].Result.PlayByPlay) != 0 {
		t.Error("plays should be stripped")
	}
	if out.Failures == nil {
		t.Error("failures should be an empty list")
	}
	if len(rec.Result.PlayByPlay) != 2 {
		t.Error("stripping plays modified the recorded result")
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	if err := b.StartBatch(testBatch("concurrent")); err != nil {
		t.Fatalf("StartBatch failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%10 == 9 {
				_ = b.RecordFailure(&core.GameFailure{Index: i})
				return
			}
			_ = b.RecordGame(testRecord(i))
		}(i)
	}
	wg.Wait()

	if got := b.Games(); got != 45 {
		t.Errorf("expected 45 games, got %d", got)
	}
	if err := b.EndBatch(&core.BatchSummary{}); err != nil {
		t.Fatalf("EndBatch failed: %v", err)
	}
	out := readExport(t, b.GetExportedFilePath())
	if len(out.Failures) != 5 {
		t.Errorf("expected 5 failures, got %d", len(out.Failures))
	}
}
