package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"product-catalog-browser/internal/domain"
)

// PostgresSource loads the catalog from a PostgreSQL table with the columns
// id, name, price, category, in_stock, description.
type PostgresSource struct {
	db     *sql.DB
	schema string
	table  string
}

// NewPostgresSource creates a new PostgresSource reading schema.table.
func NewPostgresSource(db *sql.DB, schema, table string) *PostgresSource {
	return &PostgresSource{db: db, schema: schema, table: table}
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(`
		SELECT id, name, price, category, in_stock, description
		FROM %s.%s
		ORDER BY id;
	`, pq.QuoteIdentifier(s.schema), pq.QuoteIdentifier(s.table))
}

func (s *PostgresSource) Load(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("store: PostgresSource failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var category string
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &category, &p.InStock, &description); err != nil {
			return nil, fmt.Errorf("store: PostgresSource failed to scan product row: %w", err)
		}
		p.Category = domain.Category(category)
		if description.Valid {
			d := description.String
			p.Description = &d
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: PostgresSource iteration error: %w", err)
	}

	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// Ping checks that the database is reachable.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresSource) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
