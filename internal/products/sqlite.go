package products

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteRepository — каталог из локальной sqlite базы (optcg_prices.db по умолчанию у бэкенда).
type SQLiteRepository struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: живёт в одном соединении
	db.SetMaxOpenConns(1)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Close() error { return r.db.Close() }

func (r *SQLiteRepository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, set_code, set_name, product_type
FROM products
WHERE is_active = 1
ORDER BY set_code, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SetCode, &p.SetName, &p.ProductType); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Retailers(ctx context.Context) ([]Retailer, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, slug
FROM retailers
WHERE is_active = 1
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Retailer
	for rows.Next() {
		var rt Retailer
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Slug); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
