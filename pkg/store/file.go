package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps KEY=VALUE lines in a plain file. The file is re-read when a
// key is missing, so values written by another process are picked up.
type FileStore struct {
	path string

	mu     sync.Mutex
	fields map[string]string
}

// NewFileStore creates a store backed by path. A missing file is treated as
// empty and created on the first Set; any other read failure is returned.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, fields: make(map[string]string)}
	if err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	key = normalizeKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.fields[key]; ok && v != "" {
		return v, true, nil
	}
	if err := s.read(); err != nil {
		return "", false, err
	}
	v, ok := s.fields[key]
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Set implements Store. The whole file is rewritten.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("value for %s spans multiple lines", key)
	}
	key = normalizeKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[key] = value
	return s.dump()
}

// read merges the file contents into fields. A missing file is not an error.
func (s *FileStore) read() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		name, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		s.fields[normalizeKey(name)] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) dump() error {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(s.fields[name])
		sb.WriteByte('\n')
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
