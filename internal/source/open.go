package source

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
)

// Open builds the source selected by cfg. The returned close function
// releases the database handle for the postgres source and is a no-op
// otherwise.
func Open(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (Source, func() error, error) {
	kind, err := ParseKind(cfg.Source)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case KindPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQL(db, DefaultProductsQuery, logger)
		return s, s.Close, nil
	default:
		count := cfg.MockCount
		if count <= 0 {
			count = DefaultMockCount
		}
		return NewMock(count, cfg.MockSeed), func() error { return nil }, nil
	}
}

// LoadAll opens the configured source, loads one snapshot within the
// configured timeout and closes the source again.
func LoadAll(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) ([]core.Product, error) {
	if cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
	}

	src, closeFn, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			logger.Warn("close product source", "error", cerr)
		}
	}()

	products, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("products loaded", "source", cfg.Source, "count", len(products))
	return products, nil
}

