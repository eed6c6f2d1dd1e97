package products

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository читает каталог из той же базы Postgres, что и бэкенд.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const pgProductsQuery = `
SELECT id, set_code, set_name, product_type
FROM products
WHERE is_active
ORDER BY set_code, id
`

const pgRetailersQuery = `
SELECT id, name, slug
FROM retailers
WHERE is_active
ORDER BY id
`

func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, pgProductsQuery)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		var p Product
		err := row.Scan(&p.ID, &p.SetCode, &p.SetName, &p.ProductType)
		return p, err
	})
}

func (r *Repository) Retailers(ctx context.Context) ([]Retailer, error) {
	rows, err := r.db.Query(ctx, pgRetailersQuery)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
