package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps the memory document as one indented JSON file.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileStore(path string, now func() time.Time) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &FileStore{path: path, now: now}, nil
}

// BackupPath is where a corrupt memory file is moved before starting over.
func (s *FileStore) BackupPath() string {
	ext := filepath.Ext(s.path)
	return strings.TrimSuffix(s.path, ext) + ".corrupt.backup.json"
}

func (s *FileStore) Load() (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *FileStore) Save(m *Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUnlocked(m)
}

func (s *FileStore) Update(fn func(m *Memory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.saveUnlocked(m)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadUnlocked() (*Memory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.resetUnlocked()
		}
		return nil, fmt.Errorf("read memory: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s.resetUnlocked()
	}
	m, err := decode(data, s.now())
	if err != nil {
		backup := s.BackupPath()
		log.Printf("⚠️ Memory file %s is corrupt (%v), moving it to %s", s.path, err, backup)
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return nil, fmt.Errorf("backup corrupt memory: %w", rerr)
		}
		return s.resetUnlocked()
	}
	return m, nil
}

func (s *FileStore) resetUnlocked() (*Memory, error) {
	m := Default(s.now())
	if err := s.saveUnlocked(m); err != nil {
		return nil, err
	}
	return m, nil
}

// saveUnlocked writes to a temp file and renames it over the target so a
// crash mid-write never leaves a truncated document behind.
func (s *FileStore) saveUnlocked(m *Memory) error {
	m.UpdatedAt = Time{s.now()}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace memory: %w", err)
	}
	return nil
}
