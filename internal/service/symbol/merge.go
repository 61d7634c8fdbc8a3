package symbol

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/storage"
	"github.com/sirupsen/logrus"
)

var errInvalidOutputName = errors.New("output name must be a plain file name")

type mergeOptions struct {
	writer storage.Writer
}

type MergeOption func(*mergeOptions)

// WithMergeWriter sends the merged file to w instead of the store's storage.
func WithMergeWriter(w storage.Writer) MergeOption {
	return func(o *mergeOptions) {
		o.writer = w
	}
}

// MergeAndPersist unions the line files of exchanges into symbols/all/<outputName>,
// sorted and deduplicated by exact match. Exchanges whose file is missing or
// unreadable are skipped and reported in the result; they never fail the merge.
func (s *Store) MergeAndPersist(ctx context.Context, exchanges []entity.ExchangeName, outputName string, opts ...MergeOption) entity.MergeResult {
	o := &mergeOptions{writer: s.storage}
	for _, opt := range opts {
		opt(o)
	}

	outputName = strings.TrimSpace(outputName)
	if outputName == "" {
		outputName = constant.DefaultMergedFile
	}

	result := entity.MergeResult{Output: constant.MergedPath(outputName)}
	logger := s.logger.WithField("output", result.Output)

	if err := validateOutputName(outputName); err != nil {
		result.WriteErr = err
		logger.Errorf("failed to merge symbols: %v", err)
		return result
	}

	set := make(map[string]struct{})
	for _, exchange := range exchanges {
		symbols, err := s.readSymbolLines(ctx, exchange)
		if err != nil {
			result.Skipped = append(result.Skipped, exchange)
			if errors.Is(err, entity.ErrNotFound) {
				logger.WithField("exchange", exchange).Warnf("file not found: %s", constant.SymbolsTextPath(string(exchange)))
				continue
			}
			logger.WithField("exchange", exchange).Errorf("error reading symbols: %v", err)
			continue
		}

		for _, symbol := range symbols {
			set[symbol] = struct{}{}
		}
		result.Merged = append(result.Merged, exchange)
	}

	merged := make([]string, 0, len(set))
	for symbol := range set {
		merged = append(merged, symbol)
	}
	sort.Strings(merged)
	result.Symbols = len(merged)

	if err := o.writer.Write(ctx, result.Output, formatLines(merged)); err != nil {
		result.WriteErr = err
		logger.Errorf("failed to write merged symbols: %v", err)
		return result
	}
	result.Written = true

	logger.WithFields(logrus.Fields{
		"symbols": result.Symbols,
		"merged":  result.Merged,
		"skipped": result.Skipped,
	}).Info("concatenated and deduplicated symbols")

	if s.notifier != nil {
		if err := s.notifier.NotifyMerged(ctx, result, merged); err != nil {
			logger.Warnf("failed to publish merged symbols: %v", err)
		}
	}

	return result
}

func (s *Store) readSymbolLines(ctx context.Context, exchange entity.ExchangeName) ([]string, error) {
	if err := exchange.Validate(); err != nil {
		return nil, err
	}

	path := constant.SymbolsTextPath(string(exchange))
	exists, err := s.storage.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("read %s: %w", path, entity.ErrNotFound)
	}

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	return parseLines(data), nil
}

// LoadMergedSymbols reads the canonical merged file.
func (s *Store) LoadMergedSymbols(ctx context.Context) ([]string, bool) {
	return s.LoadMergedSymbolsFrom(ctx, constant.DefaultMergedFile)
}

// LoadMergedSymbolsFrom reads a merged file written under outputName.
func (s *Store) LoadMergedSymbolsFrom(ctx context.Context, outputName string) ([]string, bool) {
	outputName = strings.TrimSpace(outputName)
	if outputName == "" {
		outputName = constant.DefaultMergedFile
	}

	path := constant.MergedPath(outputName)
	logger := s.logger.WithField("output", path)

	if err := validateOutputName(outputName); err != nil {
		logger.Errorf("failed to load merged symbols: %v", err)
		return nil, false
	}

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			logger.Warn("combined data file not found")
			return nil, false
		}
		logger.Errorf("failed to load merged symbols: %v", err)
		return nil, false
	}

	return parseLines(data), true
}

func validateOutputName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, errInvalidOutputName)
	}

	return nil
}
