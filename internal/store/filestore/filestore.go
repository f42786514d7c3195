// Package filestore keeps the position journal as a JSON-lines file.
package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ladder/internal/store"

	"github.com/google/uuid"
)

type FileEventStore struct {
	path string
	file *os.File
	mu   sync.Mutex
}

var _ store.EventStore = (*FileEventStore)(nil)

func New(path string) (*FileEventStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("file store: path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store file: %w", err)
	}
	return &FileEventStore{path: path, file: f}, nil
}

func (s *FileEventStore) Append(_ context.Context, rec store.EventRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write event to file: %w", err)
	}
	return nil
}

func (s *FileEventStore) List(ctx context.Context, positionID string, limit int) ([]store.EventRecord, error) {
	limit = store.ClampLimit(limit)
	positionID = strings.TrimSpace(positionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to start: %w", err)
	}
	defer s.file.Seek(0, io.SeekEnd)

	var out []store.EventRecord
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec store.EventRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line %d: %w", lineNum, err)
		}
		if positionID != "" && rec.PositionID != positionID {
			continue
		}
		out = append(out, rec)
		if len(out) > limit {
			out = out[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return out, nil
}

func (s *FileEventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
