package prices

import "github.com/shopspring/decimal"

// SelectBest выбирает лучшую цену: минимум среди товаров в наличии,
// а если в наличии ничего нет — минимум среди всех.
// При равных ценах побеждает первая запись. Пустой список -> false.
func SelectBest(records []PriceRecord) (PriceRecord, bool) {
	if len(records) == 0 {
		return PriceRecord{}, false
	}

	candidates := make([]PriceRecord, 0, len(records))
	for _, r := range records {
		if r.InStock {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		candidates = records
	}

	best := candidates[0]
	for _, r := range candidates[1:] {
		if r.Price.LessThan(best.Price) {
			best = r
		}
	}
	return best, true
}

// FormatUSD renders "$12.34".
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
