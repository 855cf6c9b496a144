package entity

import "github.com/shopspring/decimal"

// Currencies soportadas por el POS (heredadas del catálogo: precio dual CDF/USD)
const (
	CurrencyCDF = "CDF"
	CurrencyUSD = "USD"
)

// Product snapshot mínimo del catálogo usado por el commit de venta.
// El precio autoritativo SIEMPRE sale de aquí, nunca del request del terminal.
type Product struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	PriceCDF  decimal.Decimal `json:"price_cdf"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
}

// UnitPriceIn devuelve el precio unitario autoritativo en la moneda pedida
func (p *Product) UnitPriceIn(currency string) (decimal.Decimal, error) {
	switch currency {
	case CurrencyCDF:
		return p.PriceCDF, nil
	case CurrencyUSD:
		return p.PriceUSD, nil
	default:
		return decimal.Zero, ErrInvalidCurrency
	}
}

// ValidCurrency valida la moneda de una venta
func ValidCurrency(currency string) bool {
	return currency == CurrencyCDF || currency == CurrencyUSD
}
