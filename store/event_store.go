package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"tharo/api/models"
)

// EventStore is the append-only event history. Implementations must return
// events in insertion order from ReadAll, never fail a read because the
// history is empty or missing, and retain at most the configured cap
// (oldest evicted first).
type EventStore interface {
	ReadAll(ctx context.Context) ([]models.AnalyticsEvent, error)
	Append(ctx context.Context, event models.AnalyticsEvent) error
	Close() error
}

const filePerm = 0644

// FileEventStore persists events as JSON lines in a single file. Appends go
// through a mutex to a held-open handle and are fsynced, so concurrent
// ingestion requests serialize instead of racing a full-file
// read-modify-write. When the line count exceeds the cap the file is
// compacted down to the newest cap entries and renamed into place.
type FileEventStore struct {
	path string
	max  int

	mu    sync.Mutex
	file  *os.File
	count int
}

// NewFileEventStore opens (creating if needed) the event log at path,
// keeping at most max events. An existing file is scanned once to seed the
// line count.
func NewFileEventStore(path string, max int) (*FileEventStore, error) {
	if max <= 0 {
		return nil, fmt.Errorf("event store cap must be positive, got %d", max)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create event store directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}

	s := &FileEventStore{path: path, max: max, file: file}
	s.count, err = s.countLines()
	if err != nil {
		file.Close()
		return nil, err
	}

	return s, nil
}

// ReadAll returns all retained events in insertion order. A missing file is
// an empty history, not an error; unparseable lines are skipped with a log
// line so one corrupt record can't poison every report.
func (s *FileEventStore) ReadAll(ctx context.Context) ([]models.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAllLocked(ctx)
}

func (s *FileEventStore) readAllLocked(ctx context.Context) ([]models.AnalyticsEvent, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.AnalyticsEvent{}, nil
		}
		return nil, fmt.Errorf("failed to open event log for reading: %w", err)
	}
	defer file.Close()

	var events []models.AnalyticsEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event models.AnalyticsEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Printf("Skipping unparseable event record: %v", err)
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning event log: %w", err)
	}

	if len(events) > s.max {
		events = events[len(events)-s.max:]
	}
	if events == nil {
		events = []models.AnalyticsEvent{}
	}
	return events, nil
}

// Append writes one event to the end of the log, evicting the oldest
// entries when the cap is exceeded.
func (s *FileEventStore) Append(ctx context.Context, event models.AnalyticsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to append to event log: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event log: %w", err)
	}
	s.count++

	if s.count > s.max {
		if err := s.compactLocked(ctx); err != nil {
			return fmt.Errorf("failed to compact event log: %w", err)
		}
	}

	return nil
}

// compactLocked rewrites the newest max events to a temp file and renames
// it over the log. Caller holds the mutex.
func (s *FileEventStore) compactLocked(ctx context.Context) error {
	events, err := s.readAllLocked(ctx)
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	s.file.Close()
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return err
	}
	s.file = file
	s.count = len(events)
	return nil
}

func (s *FileEventStore) countLines() (int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open event log for counting: %w", err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error counting event log lines: %w", err)
	}
	return count, nil
}

func (s *FileEventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
