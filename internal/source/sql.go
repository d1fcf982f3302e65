package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/JonMunkholm/catalog/internal/core"
)

// DefaultProductsQuery selects the snapshot in id order.
const DefaultProductsQuery = `SELECT id, name, category, price, stock, status FROM products ORDER BY id`

// SQL loads products from a relational table through database/sql.
type SQL struct {
	db     *sql.DB
	query  string
	logger *slog.Logger
}

// NewSQL wraps an open database handle. An empty query selects
// DefaultProductsQuery.
func NewSQL(db *sql.DB, query string, logger *slog.Logger) *SQL {
	if query == "" {
		query = DefaultProductsQuery
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQL{db: db, query: query, logger: logger}
}

// OpenPostgres opens and pings a PostgreSQL database through the pgx driver.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Load reads every row. Rows with an unknown status are skipped with a
// warning; price is rounded to cents and negative stock is clamped to 0.
func (s *SQL) Load(ctx context.Context) ([]core.Product, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	products := []core.Product{}
	skipped := 0
	for rows.Next() {
		var (
			p      core.Product
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &status); err != nil {
			return nil, fmt.Errorf("load products: scan: %w", err)
		}
		st, ok := core.ParseStatus(status)
		if !ok {
			skipped++
			s.logger.Warn("skipping product with unknown status", "product_id", p.ID, "status", status)
			continue
		}
		p.Status = st
		p.Price = roundCents(p.Price)
		p.Stock = max(p.Stock, 0)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	s.logger.Info("products loaded", "count", len(products), "skipped", skipped)
	return products, nil
}

// Close closes the underlying database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}

func roundCents(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}
