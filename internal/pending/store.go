// Package pending keeps extraction results on disk for a bounded time so a
// later feedback call can be correlated with the prediction it corrects.
package pending

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultRetention bounds how long an entry stays retrievable.
const DefaultRetention = 86400 * time.Second

var reUnsafeID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// sanitizeRequestID makes an external request id safe to use in a filename.
func sanitizeRequestID(requestID string) string {
	safe := reUnsafeID.ReplaceAllString(requestID, "")
	if safe == "" {
		return "request"
	}
	return safe
}

// Entry is one stored extraction result awaiting feedback.
type Entry struct {
	RequestID       string          `json:"requestId"`
	Timestamp       time.Time       `json:"timestamp"`
	RequestPayload  json.RawMessage `json:"requestPayload"`
	ResponsePayload json.RawMessage `json:"responsePayload"`
	StatusCode      int             `json:"statusCode"`
	Text            string          `json:"text"`
}

// Store is a filesystem-backed, TTL-bound key-value store. Each save writes
// its own timestamped file, so concurrent saves for the same id never
// collide; pop takes the newest file and deletes it.
type Store struct {
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewStore(dir string, retention time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pending dir: %w", err)
	}
	return &Store{dir: dir, retention: retention, now: time.Now, logger: logger}, nil
}

// Save persists a new result. Results without text are not worth keeping
// (there is nothing to build a training sample from), so those are a no-op.
func (s *Store) Save(requestID string, requestPayload, responsePayload json.RawMessage, statusCode int, text string) error {
	if text == "" {
		return nil
	}
	s.Cleanup()

	entry := Entry{
		RequestID:       requestID,
		Timestamp:       s.now().UTC(),
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		StatusCode:      statusCode,
		Text:            text,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pending entry: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", entry.Timestamp.Format("20060102T150405"), sanitizeRequestID(requestID))
	path := filepath.Join(s.dir, name)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write pending entry: %w", err)
	}
	s.logger.Debug("pending.save", "request_id", requestID, "file", name)
	return nil
}

// Pop returns the newest stored entry for the request id and removes it.
// Files that fail to parse are deleted and skipped.
func (s *Store) Pop(requestID string) (*Entry, bool) {
	s.Cleanup()

	pattern := filepath.Join(s.dir, "*_"+sanitizeRequestID(requestID)+".json")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	for _, path := range matches {
		entry, ok := s.load(path)
		if !ok {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("pending.pop.remove_failed", "file", path, "error", err)
		}
		s.logger.Debug("pending.pop", "request_id", requestID, "file", filepath.Base(path))
		return entry, true
	}
	return nil, false
}

// Cleanup deletes every entry older than the retention window, plus any file
// whose timestamp cannot be read.
func (s *Store) Cleanup() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("pending.cleanup.list_failed", "dir", s.dir, "error", err)
		return
	}
	cutoff := s.now().UTC().Add(-s.retention)
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		ts, ok := readTimestamp(path)
		if !ok || ts.Before(cutoff) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("pending.cleanup.remove_failed", "file", path, "error", err)
			}
		}
	}
}

// load reads one stored file. Anything unparsable counts as corruption: the
// file is deleted and treated as absent.
func (s *Store) load(path string) (*Entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Timestamp.IsZero() {
		s.logger.Warn("pending.load.corrupt", "file", filepath.Base(path))
		_ = os.Remove(path)
		return nil, false
	}
	return &entry, true
}

func readTimestamp(path string) (time.Time, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	var probe struct {
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Timestamp.IsZero() {
		return time.Time{}, false
	}
	return probe.Timestamp, true
}

// writeFileAtomic stages the record in a temp file and renames it into
// place, so a concurrent cleanup never observes a half-written record.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
