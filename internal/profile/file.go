package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// FileStore keeps every profile in one JSON document mapping id to record.
// The whole document is read, mutated and rewritten on each write.
// The mutex only serializes writers inside this process.
type FileStore struct {
	Path  string
	Clock engine.Clock
	NewID IDGenerator

	mu sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string, clock engine.Clock) *FileStore {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &FileStore{Path: path, Clock: clock, NewID: RandomID}
}

// Kind implements Store.
func (s *FileStore) Kind() string { return config.StoreFile }

// Create implements Store.
func (s *FileStore) Create(_ context.Context, p Payload) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.read()
	id := ""
	for i := 0; i < config.MaxIDAttempts; i++ {
		candidate := s.NewID()
		if _, taken := docs[candidate]; !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, unavailable(config.ErrIDExhausted, errors.New(s.Path))
	}

	rec := newRecord(id, p, s.Clock)
	docs[id] = rec
	if err := s.write(docs); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update implements Store.
func (s *FileStore) Update(_ context.Context, id string, p Payload) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.read()
	if _, ok := docs[id]; !ok {
		return nil, ErrNotFound
	}

	rec := newRecord(id, p, s.Clock)
	docs[id] = rec
	if err := s.write(docs); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.read()[id]
	if !ok || rec == nil || rec.TimeZone == "" {
		return nil, ErrNotFound
	}
	rec.ID = id
	rec.SpecialDays = engine.SanitizeSpecialDays(rec.SpecialDays)
	return rec, nil
}

// read loads the document. A missing or corrupt file reads as empty.
func (s *FileStore) read() map[string]*Record {
	docs := map[string]*Record{}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn(config.ErrStoreRead,
				config.LogKeyComponent, config.CompProfile,
				config.LogKeyFile, s.Path,
				config.LogKeyError, err)
		}
		return docs
	}

	if err := json.Unmarshal(raw, &docs); err != nil {
		slog.Warn(config.MsgBlobMalformed,
			config.LogKeyComponent, config.CompProfile,
			config.LogKeyFile, s.Path,
			config.LogKeyError, err)
		return map[string]*Record{}
	}
	return docs
}

// write replaces the document through a temp file and rename.
func (s *FileStore) write(docs map[string]*Record) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), config.DirPermUserRWX); err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrProfileEncode, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return unavailable(config.ErrStoreWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return unavailable(config.ErrStoreWrite, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return unavailable(config.ErrStoreWrite, err)
	}
	return nil
}
