package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustLine(t *testing.T, productID int64, qty int64, price string) SaleLine {
	t.Helper()
	line, err := NewSaleLine(productID, "REF", qty, decimal.RequireFromString(price), CurrencyCDF)
	if err != nil {
		t.Fatalf("NewSaleLine: %v", err)
	}
	return *line
}

func TestNewSaleComputesTotals(t *testing.T) {
	lines := []SaleLine{
		mustLine(t, 1, 2, "1500"), // 3000
		mustLine(t, 2, 1, "500"),  // 500
	}

	sale, err := NewSale("local-1", 7, 3, lines,
		PaymentModeCash, CurrencyCDF,
		decimal.RequireFromString("10"),   // 10% → 350
		decimal.RequireFromString("4000"), // tendered
		decimal.RequireFromString("2400"),
	)
	if err != nil {
		t.Fatalf("NewSale: %v", err)
	}

	if !sale.Subtotal.Equal(decimal.RequireFromString("3500")) {
		t.Errorf("subtotal = %s, want 3500", sale.Subtotal)
	}
	if !sale.DiscountAmount.Equal(decimal.RequireFromString("350")) {
		t.Errorf("discount = %s, want 350", sale.DiscountAmount)
	}
	if !sale.Total.Equal(decimal.RequireFromString("3150")) {
		t.Errorf("total = %s, want 3150", sale.Total)
	}
	if !sale.Change.Equal(decimal.RequireFromString("850")) {
		t.Errorf("change = %s, want 850", sale.Change)
	}
	if sale.Status != StatusCompleted {
		t.Errorf("status = %s", sale.Status)
	}
}

func TestNewSaleSubtotalEqualsSumOfLines(t *testing.T) {
	lines := []SaleLine{
		mustLine(t, 1, 3, "123.45"),
		mustLine(t, 2, 7, "0.99"),
		mustLine(t, 3, 1, "10000"),
	}

	sale, err := NewSale("local-2", 1, 1, lines,
		PaymentModeMobile, CurrencyCDF,
		decimal.Zero, decimal.Zero, decimal.RequireFromString("2400"))
	if err != nil {
		t.Fatalf("NewSale: %v", err)
	}

	sum := decimal.Zero
	for _, line := range sale.Lines {
		sum = sum.Add(line.LineTotal)
	}
	if !sale.Subtotal.Equal(sum) {
		t.Errorf("subtotal %s != sum of line totals %s", sale.Subtotal, sum)
	}
	if !sale.Total.Equal(sale.Subtotal.Sub(sale.DiscountAmount)) {
		t.Errorf("total %s != subtotal - discount", sale.Total)
	}
}

func TestNewSaleAssignsSaleIDToLines(t *testing.T) {
	lines := []SaleLine{mustLine(t, 1, 1, "100")}
	sale, err := NewSale("local-3", 1, 1, lines,
		PaymentModeCash, CurrencyCDF,
		decimal.Zero, decimal.RequireFromString("100"), decimal.RequireFromString("2400"))
	if err != nil {
		t.Fatalf("NewSale: %v", err)
	}
	for _, line := range sale.Lines {
		if line.SaleID != sale.ID {
			t.Errorf("line.SaleID = %s, want %s", line.SaleID, sale.ID)
		}
	}
}

func TestNewSaleCashRequiresEnoughTendered(t *testing.T) {
	lines := []SaleLine{mustLine(t, 1, 1, "1000")}
	_, err := NewSale("local-4", 1, 1, lines,
		PaymentModeCash, CurrencyCDF,
		decimal.Zero, decimal.RequireFromString("999"), decimal.RequireFromString("2400"))
	if err != ErrInsufficientPayment {
		t.Errorf("err = %v, want ErrInsufficientPayment", err)
	}
}

func TestNewSaleNonCashSkipsTenderedCheck(t *testing.T) {
	lines := []SaleLine{mustLine(t, 1, 1, "1000")}
	sale, err := NewSale("local-5", 1, 1, lines,
		PaymentModeCard, CurrencyCDF,
		decimal.Zero, decimal.Zero, decimal.RequireFromString("2400"))
	if err != nil {
		t.Fatalf("NewSale: %v", err)
	}
	if !sale.Change.IsZero() {
		t.Errorf("change = %s, want 0", sale.Change)
	}
}

func TestNewSaleValidation(t *testing.T) {
	valid := []SaleLine{mustLine(t, 1, 1, "100")}
	tendered := decimal.RequireFromString("100")
	rate := decimal.RequireFromString("2400")

	cases := []struct {
		name      string
		clientRef string
		userID    int64
		storeID   int64
		lines     []SaleLine
		currency  string
		discount  decimal.Decimal
		wantErr   error
	}{
		{"missing client ref", "", 1, 1, valid, CurrencyCDF, decimal.Zero, ErrClientRefRequired},
		{"missing user", "x", 0, 1, valid, CurrencyCDF, decimal.Zero, ErrUserRequired},
		{"missing store", "x", 1, 0, valid, CurrencyCDF, decimal.Zero, ErrStoreRequired},
		{"no lines", "x", 1, 1, nil, CurrencyCDF, decimal.Zero, ErrSaleMustHaveLines},
		{"bad currency", "x", 1, 1, valid, "EUR", decimal.Zero, ErrInvalidCurrency},
		{"discount over 100", "x", 1, 1, valid, CurrencyCDF, decimal.RequireFromString("101"), ErrInvalidDiscount},
		{"negative discount", "x", 1, 1, valid, CurrencyCDF, decimal.RequireFromString("-1"), ErrInvalidDiscount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSale(tc.clientRef, tc.userID, tc.storeID, tc.lines,
				PaymentModeCash, tc.currency, tc.discount, tendered, rate)
			if err != tc.wantErr {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewSaleLineValidation(t *testing.T) {
	price := decimal.RequireFromString("100")

	if _, err := NewSaleLine(0, "R", 1, price, CurrencyCDF); err != ErrProductNotFound {
		t.Errorf("productID=0: err = %v", err)
	}
	if _, err := NewSaleLine(1, "", 1, price, CurrencyCDF); err != ErrReferenceRequired {
		t.Errorf("empty reference: err = %v", err)
	}
	if _, err := NewSaleLine(1, "R", 0, price, CurrencyCDF); err != ErrInvalidQuantity {
		t.Errorf("qty=0: err = %v", err)
	}
	if _, err := NewSaleLine(1, "R", 1, decimal.RequireFromString("-1"), CurrencyCDF); err != ErrInvalidPrice {
		t.Errorf("negative price: err = %v", err)
	}

	line, err := NewSaleLine(1, "R", 3, price, CurrencyCDF)
	if err != nil {
		t.Fatalf("NewSaleLine: %v", err)
	}
	if !line.LineTotal.Equal(decimal.RequireFromString("300")) {
		t.Errorf("line total = %s, want 300", line.LineTotal)
	}
}

func TestProductUnitPriceIn(t *testing.T) {
	p := Product{
		ID:        1,
		Reference: "COLA-33",
		PriceCDF:  decimal.RequireFromString("2400"),
		PriceUSD:  decimal.RequireFromString("1"),
	}

	cdf, err := p.UnitPriceIn(CurrencyCDF)
	if err != nil || !cdf.Equal(p.PriceCDF) {
		t.Errorf("CDF price = %s, err = %v", cdf, err)
	}
	usd, err := p.UnitPriceIn(CurrencyUSD)
	if err != nil || !usd.Equal(p.PriceUSD) {
		t.Errorf("USD price = %s, err = %v", usd, err)
	}
	if _, err := p.UnitPriceIn("EUR"); err != ErrInvalidCurrency {
		t.Errorf("EUR: err = %v", err)
	}
}
