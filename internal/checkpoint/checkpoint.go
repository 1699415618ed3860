// Package checkpoint implements the durable Checkpoint Store: one Parquet
// file per (workflow_id, collection_id) pair, with a buffered write path
// and an atomic temp-file-then-rename flush sequence.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
)

// DefaultBufferSize is the number of buffered records accumulated before an
// automatic flush.
const DefaultBufferSize = 1000

// Record is one row of the checkpoint file.
type Record struct {
	ItemID       string `parquet:"item_id"`
	CollectionID string `parquet:"collection_id"`
	OutputPath   string `parquet:"output_path"`
	Completed    bool   `parquet:"completed"`
	Timestamp    string `parquet:"timestamp"`
	Error        string `parquet:"error,optional"`
}

// Store is the in-memory, buffered view of one (workflow_id, collection_id)
// checkpoint file.
type Store struct {
	path       string
	bufferSize int

	mu        sync.Mutex
	completed map[string]bool
	buffer    []Record
}

// Options configures Open.
type Options struct {
	Root               string
	WorkflowID         string
	CollectionID       string
	BufferSize         int
	ResumeFromExisting bool
}

// Open constructs a Store bound to <root>/<workflow_id>/<collection_id>.parquet,
// loading existing completed ids unless ResumeFromExisting is false. A
// missing or empty file degrades to empty state rather than erroring.
func Open(opts Options) (*Store, error) {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	dir := filepath.Join(opts.Root, opts.WorkflowID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create directory %s: %w", dir, err)
	}

	s := &Store{
		path:       filepath.Join(dir, opts.CollectionID+".parquet"),
		bufferSize: bufferSize,
		completed:  make(map[string]bool),
	}

	if opts.ResumeFromExisting {
		records, err := loadExisting(s.path)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.Completed {
				s.completed[r.ItemID] = true
			}
		}
	}

	return s, nil
}

// loadExisting reads all rows of the file at path. A missing file, or one
// that cannot be read as Parquet, degrades to an empty slice; it never
// returns an error.
func loadExisting(path string) ([]Record, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		// An existing-but-unreadable (e.g. empty/truncated) file also
		// degrades to empty state rather than blocking the pipeline.
		return nil, nil
	}
	return records, nil
}

// IsCompleted reports whether item_id has a completed record, O(1) against
// the in-memory set.
func (s *Store) IsCompleted(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[itemID]
}

// MarkCompleted appends a completed record, adds item_id to the in-memory
// completed set, and flushes automatically once the buffer reaches
// bufferSize.
func (s *Store) MarkCompleted(itemID, outputPath string) error {
	return s.append(Record{
		ItemID:     itemID,
		OutputPath: outputPath,
		Completed:  true,
		Timestamp:  now(),
	}, itemID, true)
}

// MarkFailed appends a failed record without adding item_id to the
// completed set, so it is retried on the next run.
func (s *Store) MarkFailed(itemID string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return s.append(Record{
		ItemID:    itemID,
		Completed: false,
		Timestamp: now(),
		Error:     message,
	}, itemID, false)
}

func (s *Store) append(rec Record, itemID string, completed bool) error {
	s.mu.Lock()
	s.buffer = append(s.buffer, rec)
	if completed {
		s.completed[itemID] = true
	}
	shouldFlush := len(s.buffer) >= s.bufferSize
	s.mu.Unlock()

	if shouldFlush {
		return s.Flush()
	}
	return nil
}

// Flush reads the existing file (if any), appends the buffered records,
// writes to a sibling temp file, and atomically renames it over the final
// path. The buffer is cleared only after a successful rename; a failed
// flush leaves it intact for retry.
func (s *Store) Flush() error {
	s.mu.Lock()
	pending := make([]Record, len(s.buffer))
	copy(pending, s.buffer)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	existing, err := loadExisting(s.path)
	if err != nil {
		return fmt.Errorf("checkpoint: read existing file: %w", err)
	}

	combined := make([]Record, 0, len(existing)+len(pending))
	combined = append(combined, existing...)
	combined = append(combined, pending...)

	tmpPath := s.path + ".tmp"
	if err := parquet.WriteFile(tmpPath, combined); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: rename temp file: %w", err)
	}

	s.mu.Lock()
	s.buffer = s.buffer[:0]
	s.mu.Unlock()

	return nil
}

// Close flushes any remaining buffered records, swallowing the error as a
// best-effort cleanup-time flush.
func (s *Store) Close() {
	_ = s.Flush()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
