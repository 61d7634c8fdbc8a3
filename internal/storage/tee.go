package storage

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Tee reads from primary and writes to primary and every mirror. A mirror that
// fails to accept a write is logged and does not fail the write.
type Tee struct {
	primary Storage
	mirrors []Writer
	logger  *logrus.Logger
}

func NewTee(logger *logrus.Logger, primary Storage, mirrors ...Writer) *Tee {
	return &Tee{primary: primary, mirrors: mirrors, logger: logger}
}

func (t *Tee) Read(ctx context.Context, path string) ([]byte, error) {
	return t.primary.Read(ctx, path)
}

func (t *Tee) Exists(ctx context.Context, path string) (bool, error) {
	return t.primary.Exists(ctx, path)
}

func (t *Tee) Write(ctx context.Context, path string, data []byte) error {
	if err := t.primary.Write(ctx, path, data); err != nil {
		return err
	}

	for idx, mirror := range t.mirrors {
		if err := mirror.Write(ctx, path, data); err != nil {
			t.logger.WithFields(logrus.Fields{
				"path":   path,
				"mirror": idx,
			}).Warnf("mirror write failed: %v", err)
		}
	}

	return nil
}
