package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileStore appends records to a JSON lines file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.config/lucidpack/history.jsonl, or the OS
// equivalent.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "lucidpack", "history.jsonl"), nil
}

// NewFileStore returns a store writing to path. The parent directory is
// created if needed; the file itself is created on the first Add.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the ledger file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Add(ctx context.Context, rec Record) error {
	line, err := json.Marshal(withID(rec))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	return f.Close()
}

// List skips lines that do not parse.
func (s *FileStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
