package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/krobus00/symbol-store/internal/entity"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Local stores documents on the real filesystem below root.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	return &Local{root: root}
}

func (l *Local) Root() string {
	return l.root
}

var errOutsideRoot = errors.New("path escapes the data directory")

// Resolve returns the filesystem location of a storage path. Paths that clean
// to a location outside root are rejected.
func (l *Local) Resolve(path string) (string, error) {
	target := filepath.Join(l.root, filepath.FromSlash(path))

	rel, err := filepath.Rel(l.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolve %s: %w: %w", path, entity.ErrStorage, errOutsideRoot)
	}

	return target, nil
}

func (l *Local) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w: %w", path, entity.ErrStorage, err)
	}

	return data, nil
}

// Write replaces the document at path, creating parent directories as needed.
func (l *Local) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := l.Resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w: %w", path, entity.ErrStorage, err)
	}

	if err := os.WriteFile(target, data, defaultFilePerm); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, entity.ErrStorage, err)
	}

	return nil
}

func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := l.Resolve(path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w: %w", path, entity.ErrStorage, err)
	}

	return !info.IsDir(), nil
}
