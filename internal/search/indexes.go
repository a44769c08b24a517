package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/rs/zerolog"
)

// Indexes holds the open index of every kind.
type Indexes struct {
	byKind map[model.Kind]*BleveIndex
	logger *zerolog.Logger
}

// OpenIndexes opens one index per kind under cfg.Path, or in memory when the
// path is empty.
func OpenIndexes(cfg config.SearchConfig, logger *zerolog.Logger) (*Indexes, error) {
	ix := &Indexes{byKind: make(map[model.Kind]*BleveIndex, len(model.Kinds)), logger: logger}

	for _, kind := range model.Kinds {
		index, err := OpenBleveIndex(cfg.Path, kind, Schemas[kind], logger)
		if err != nil {
			_ = ix.Close()
			return nil, err
		}
		ix.byKind[kind] = index
	}

	location := cfg.Path
	if location == "" {
		location = "memory"
	}
	logger.Info().Str("location", location).Int("indexes", len(ix.byKind)).Msg("search indexes opened")

	return ix, nil
}

// Get returns the index for kind. It panics on an unknown kind.
func (ix *Indexes) Get(kind model.Kind) *BleveIndex {
	index, ok := ix.byKind[kind]
	if !ok {
		panic(fmt.Sprintf("search: no index for kind %q", kind))
	}
	return index
}

// Counts returns the document count of every index.
func (ix *Indexes) Counts(ctx context.Context) (map[model.Kind]uint64, error) {
	counts := make(map[model.Kind]uint64, len(ix.byKind))
	for _, kind := range model.Kinds {
		index, ok := ix.byKind[kind]
		if !ok {
			continue
		}
		n, err := index.Count(ctx)
		if err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, nil
}

func (ix *Indexes) Close() error {
	var closeErrs []error
	for kind, index := range ix.byKind {
		if err := index.Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("close %s index: %w", kind, err))
		}
	}
	return errors.Join(closeErrs...)
}
