// Package source loads the product snapshot a catalog session starts from.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
)

// Source produces a full product snapshot.
type Source interface {
	Load(ctx context.Context) ([]core.Product, error)
}

// Loader adapts a function to the Source interface.
type Loader func(ctx context.Context) ([]core.Product, error)

// Load calls f(ctx).
func (f Loader) Load(ctx context.Context) ([]core.Product, error) {
	return f(ctx)
}

// Static serves a fixed snapshot. Handy for tests and for the CLI when the
// dataset is already in memory.
type Static []core.Product

// Load returns a copy of the snapshot.
func (s Static) Load(context.Context) ([]core.Product, error) {
	return append([]core.Product(nil), s...), nil
}

// Kind names a configured source.
type Kind string

const (
	KindMock     Kind = "mock"
	KindPostgres Kind = "postgres"
)

// ParseKind validates a source name from config or flags.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindMock, KindPostgres:
		return k, nil
	}
	return "", fmt.Errorf("unknown data source %q", s)
}
