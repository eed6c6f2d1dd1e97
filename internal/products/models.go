package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type Product struct {
	ID          int    `json:"id" yaml:"id"`
	SetCode     string `json:"set_code" yaml:"set_code"`
	SetName     string `json:"set_name" yaml:"set_name"`
	ProductType string `json:"product_type" yaml:"product_type"` // "box" или "case"
}

// Key — идентификатор продукта в API и в разметке.
func (p Product) Key() string { return strconv.Itoa(p.ID) }

// DisplayName renders "OP-05 Awakening of the New Era (Box)".
func (p Product) DisplayName() string {
	return fmt.Sprintf("%s %s (%s)", p.SetCode, p.SetName, titleWord(p.ProductType))
}

type Retailer struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

// Catalog — активные продукты и ритейлеры для построения таблицы.
type Catalog interface {
	Products(ctx context.Context) ([]Product, error)
	Retailers(ctx context.Context) ([]Retailer, error)
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
