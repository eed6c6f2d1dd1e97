package products

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products  []Product  `yaml:"products"`
	Retailers []Retailer `yaml:"retailers"`
}

// StaticCatalog — каталог, загруженный из YAML файла.
type StaticCatalog struct {
	products  []Product
	retailers []Retailer
}

func NewStaticCatalog(products []Product, retailers []Retailer) *StaticCatalog {
	return &StaticCatalog{products: products, retailers: retailers}
}

// LoadCatalogFile reads a YAML catalog. Entries with a repeated id are dropped.
func LoadCatalogFile(path string) (*StaticCatalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf catalogFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	seenP := make(map[int]struct{}, len(cf.Products))
	prods := make([]Product, 0, len(cf.Products))
	for _, p := range cf.Products {
		if p.ID <= 0 {
			continue
		}
		if _, ok := seenP[p.ID]; ok {
			continue
		}
		seenP[p.ID] = struct{}{}
		prods = append(prods, p)
	}
	sort.SliceStable(prods, func(i, j int) bool { return prods[i].SetCode < prods[j].SetCode })

	seenR := make(map[int]struct{}, len(cf.Retailers))
	rets := make([]Retailer, 0, len(cf.Retailers))
	for _, r := range cf.Retailers {
		if r.ID <= 0 {
			continue
		}
		if _, ok := seenR[r.ID]; ok {
			continue
		}
		seenR[r.ID] = struct{}{}
		rets = append(rets, r)
	}
	sort.SliceStable(rets, func(i, j int) bool { return rets[i].ID < rets[j].ID })

	if len(prods) == 0 {
		return nil, fmt.Errorf("no products found in catalog %s", path)
	}
	return NewStaticCatalog(prods, rets), nil
}

func (c *StaticCatalog) Products(context.Context) ([]Product, error) {
	return append([]Product(nil), c.products...), nil
}

func (c *StaticCatalog) Retailers(context.Context) ([]Retailer, error) {
	return append([]Retailer(nil), c.retailers...), nil
}
