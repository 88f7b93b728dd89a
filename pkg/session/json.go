package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// JSONStore keeps summaries in a JSON lines file, one summary per line.
// New sessions are appended; replacing or deleting a summary rewrites the
// file through a temp file and rename. A torn last line left by a crash
// during append is ignored on load and dropped by the next rewrite.
type JSONStore struct {
	path string

	mu        sync.RWMutex
	summaries map[string]*Summary
	torn      bool // last line incomplete, next save rewrites
}

// NewJSONStore opens or creates the store at path.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session: create store dir: %w", err)
	}
	s := &JSONStore{path: path, summaries: make(map[string]*Summary)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read %s: %w", s.path, err)
	}

	complete := bytes.HasSuffix(data, []byte("\n"))
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var sum Summary
		if err := json.Unmarshal(raw, &sum); err != nil {
			if !complete && bytes.Count(data, []byte("\n")) == line-1 {
				s.torn = true
				break
			}
			return fmt.Errorf("session: %s line %d: %w", s.path, line, err)
		}
		s.summaries[sum.ID] = &sum
	}
	return sc.Err()
}

// appendLine writes one summary to the end of the file.
func (s *JSONStore) appendLine(sum *Summary) error {
	line, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", s.path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("session: append: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// rewrite replaces the file with the current summaries, oldest first.
func (s *JSONStore) rewrite() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	list := s.sorted()
	slices.Reverse(list)
	for _, sum := range list {
		if err := enc.Encode(sum); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("session: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("session: replace %s: %w", s.path, err)
	}
	return nil
}

// sorted returns summaries newest first, ties broken by ID.
func (s *JSONStore) sorted() []*Summary {
	out := make([]*Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b *Summary) int {
		if c := b.Start.Compare(a.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *JSONStore) Save(_ context.Context, sum *Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sum.ID == "" {
		sum.ID = uuid.New().String()
	}
	_, replace := s.summaries[sum.ID]
	cp := *sum
	s.summaries[sum.ID] = &cp
	if replace || s.torn {
		if err := s.rewrite(); err != nil {
			return err
		}
		s.torn = false
		return nil
	}
	return s.appendLine(&cp)
}

func (s *JSONStore) Get(_ context.Context, id string) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *sum
	return &cp, nil
}

func (s *JSONStore) List(_ context.Context) ([]*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
}

func (s *JSONStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.summaries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.summaries, id)
	if err := s.rewrite(); err != nil {
		return err
	}
	s.torn = false
	return nil
}

func (s *JSONStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries), nil
}

// Close is a no-op; every write is synced before Save returns.
func (s *JSONStore) Close() error {
	return nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

var _ Store = (*JSONStore)(nil)
