package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ArtifactWriter persists the run artifact and the markdown run report to
// timestamped files in a directory.
type ArtifactWriter struct {
	dir string
	log *zap.Logger
}

// NewArtifactWriter creates a writer targeting dir, creating it if needed.
func NewArtifactWriter(dir string, log *zap.Logger) *ArtifactWriter {
	return &ArtifactWriter{dir: dir, log: log}
}

// WriteArtifact writes the JSON run artifact and returns its path. This is
// the one write whose failure is fatal to a run.
func (w *ArtifactWriter) WriteArtifact(res *RunResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("form_d_results_%s.json", w.stamp(res)))

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run artifact: %w", err)
	}

	w.log.Info("run artifact written", zap.String("path", path))
	return path, nil
}

// WriteReport writes the markdown run report next to the artifact.
func (w *ArtifactWriter) WriteReport(res *RunResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	report, err := RenderReport(res)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.dir, fmt.Sprintf("form_d_report_%s.md", w.stamp(res)))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	w.log.Info("run report written", zap.String("path", path))
	return path, nil
}

func (w *ArtifactWriter) stamp(res *RunResult) string {
	return res.RunDate.Format("20060102_150405")
}
