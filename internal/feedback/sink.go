package feedback

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SamplesFilename is the JSON-lines file training samples accumulate in.
const SamplesFilename = "training_samples.jsonl"

// Sink appends training entries to a JSON-lines file, one entry per line.
type Sink struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewSink(dir string, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}
	return &Sink{path: filepath.Join(dir, SamplesFilename), logger: logger}, nil
}

// Append writes one entry as a single line. Concurrent appends are serialized
// so lines never interleave.
func (s *Sink) Append(entry TrainingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode training entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open training samples: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append training sample: %w", err)
	}
	s.logger.Debug("feedback.sample.appended", "entities", len(entry.Entities))
	return nil
}
