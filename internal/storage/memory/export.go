// internal/storage/memory/export.go
package memory

import (
	"cmp"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/viperball/matchsim/pkg/core"
)

// BatchExport is the root JSON structure of a results file
type BatchExport struct {
	Batch    core.Batch         `json:"batch"`
	Summary  *core.BatchSummary `json:"summary"`
	Failures []core.GameFailure `json:"failures"`
	Games    []GameJSON         `json:"games"`
}

// GameJSON is one completed game
type GameJSON struct {
	Index      int              `json:"index"`
	Seed       int64            `json:"seed"`
	DurationMs float64          `json:"duration_ms"`
	Result     *core.GameResult `json:"result"`
}

// fileStem turns a label into something safe for a file name.
func fileStem(b *core.Batch) string {
	stem := b.Label
	if stem == "" {
		stem = b.ID
	}
	return strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(stem)
}

// exportJSON writes the batch to a JSON file, gzipped when configured
func (b *Backend) exportJSON(s *core.BatchSummary) error {
	export := b.buildExport(s)

	timestamp := b.batch.StartedAt.UTC().Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", fileStem(b.batch), timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", fileStem(b.batch), timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport(s *core.BatchSummary) BatchExport {
	export := BatchExport{
		Batch:    *b.batch,
		Summary:  s,
		Failures: slices.Clone(b.failures),
		Games:    make([]GameJSON, 0, len(b.games)),
	}
	if export.Failures == nil {
		export.Failures = []core.GameFailure{}
	}
	slices.SortFunc(export.Failures, func(x, y core.GameFailure) int { return cmp.Compare(x.Index, y.Index) })

	for _, rec := range b.games {
		res := rec.Result
		if res != nil && !b.cfg.WritePlays {
			// shallow copy so the caller's result keeps its plays
			stripped := *res
			stripped.PlayByPlay = nil
			res = &stripped
		}
		export.Games = append(export.Games, GameJSON{
			Index:      rec.Index,
			Seed:       rec.Seed,
			DurationMs: float64(rec.Duration.Microseconds()) / 1000,
			Result:     res,
		})
	}
	slices.SortFunc(export.Games, func(x, y GameJSON) int { return cmp.Compare(x.Index, y.Index) })

	return export
}

func writeJSON(path string, data BatchExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data BatchExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
