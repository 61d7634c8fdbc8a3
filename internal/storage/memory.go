package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/krobus00/symbol-store/internal/entity"
)

// Memory is an in-process Storage used by tests and dry runs.
type Memory struct {
	mu       sync.RWMutex
	files    map[string][]byte
	failures map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		files:    make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// FailOn makes every read and write of path return err.
func (m *Memory) FailOn(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = err
}

func (m *Memory) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures[path]; ok {
		return nil, fmt.Errorf("read %s: %w: %w", path, entity.ErrStorage, err)
	}

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, entity.ErrNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failures[path]; ok {
		return fmt.Errorf("write %s: %w: %w", path, entity.ErrStorage, err)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	return nil
}

func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[path]
	return ok, nil
}

func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
