package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ENb08/jh/src/sale/application/request"
	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/infrastructure/cache"
	"github.com/ENb08/jh/src/sale/infrastructure/persistence"
	"github.com/ENb08/jh/src/shared/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = int64(7)
	testStoreID = int64(3)
)

func newCommitEnv() (*persistence.MemorySaleStore, *CommitSaleUseCase) {
	store := persistence.NewMemorySaleStore()
	uc := NewCommitSaleUseCase(store, cache.NewRateCache(), metrics.NewRegistry())
	return store, uc
}

func seedCola(store *persistence.MemorySaleStore, quantity int64) {
	store.SeedProduct(entity.Product{
		ID:        1,
		Reference: "COLA-33",
		PriceCDF:  decimal.RequireFromString("1500"),
		PriceUSD:  decimal.RequireFromString("0.62"),
	}, testStoreID, quantity)
}

func cashRequest(localID string, qty int64) *request.CommitSaleRequest {
	return &request.CommitSaleRequest{
		LocalID:        localID,
		Items:          []request.CommitSaleItem{{ProductID: 1, Qty: qty}},
		PaymentMode:    entity.PaymentModeCash,
		Currency:       entity.CurrencyCDF,
		AmountTendered: decimal.RequireFromString("100000"),
	}
}

func TestCommitSaleHappyPath(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	resp, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-1", 2))
	require.NoError(t, err)

	require.True(t, resp.Success)
	require.False(t, resp.Duplicate)
	require.Equal(t, "local-1", resp.LocalID)
	require.True(t, resp.Subtotal.Equal(decimal.RequireFromString("3000")), "subtotal = %s", resp.Subtotal)
	require.True(t, resp.Total.Equal(decimal.RequireFromString("3000")), "total = %s", resp.Total)
	require.True(t, resp.Change.Equal(decimal.RequireFromString("97000")), "change = %s", resp.Change)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "COLA-33", resp.Items[0].Reference)

	require.Equal(t, int64(8), store.StockOf(1, testStoreID))
}

func TestCommitSaleUsesCatalogPriceNotClientPrice(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	req := cashRequest("local-2", 1)
	req.Items[0].UnitPrice = decimal.RequireFromString("1") // el terminal miente

	resp, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	require.NoError(t, err)
	require.True(t, resp.Items[0].UnitPrice.Equal(decimal.RequireFromString("1500")),
		"unit price = %s, want 1500 (catálogo)", resp.Items[0].UnitPrice)
	require.True(t, resp.Total.Equal(decimal.RequireFromString("1500")))
}

func TestCommitSaleInsufficientStockAfterPartialDrain(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 5)

	// Primera venta consume 3 de 5
	_, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-a", 3))
	require.NoError(t, err)
	require.Equal(t, int64(2), store.StockOf(1, testStoreID))

	// Segunda venta pide 4 con solo 2 disponibles
	_, err = uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-b", 4))
	var rej *entity.StockRejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, int64(1), rej.ProductID)
	require.Equal(t, int64(2), rej.Available)
	require.Equal(t, int64(4), rej.Requested)

	// El rechazo no tocó el ledger
	require.Equal(t, int64(2), store.StockOf(1, testStoreID))
}

func TestCommitSaleRejectionAbortsAllLines(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)
	store.SeedProduct(entity.Product{
		ID:        2,
		Reference: "PAIN-500",
		PriceCDF:  decimal.RequireFromString("800"),
		PriceUSD:  decimal.RequireFromString("0.33"),
	}, testStoreID, 1)

	req := &request.CommitSaleRequest{
		LocalID: "local-multi",
		Items: []request.CommitSaleItem{
			{ProductID: 1, Qty: 2}, // suficiente
			{ProductID: 2, Qty: 5}, // insuficiente
		},
		PaymentMode:    entity.PaymentModeCash,
		AmountTendered: decimal.RequireFromString("100000"),
	}

	_, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	var rej *entity.StockRejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, int64(2), rej.ProductID)

	// Ninguna línea descontó stock
	require.Equal(t, int64(10), store.StockOf(1, testStoreID))
	require.Equal(t, int64(1), store.StockOf(2, testStoreID))
}

func TestCommitSaleIdempotentReplay(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	first, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-retry", 2))
	require.NoError(t, err)
	require.Equal(t, int64(8), store.StockOf(1, testStoreID))

	// Mismo local_id: el terminal reintenta tras perder la respuesta
	second, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-retry", 2))
	require.NoError(t, err)

	require.Equal(t, first.SaleID, second.SaleID)
	require.True(t, second.Duplicate)
	require.True(t, second.Total.Equal(first.Total))

	// El replay no volvió a descontar
	require.Equal(t, int64(8), store.StockOf(1, testStoreID))
}

func TestCommitSaleUnknownProduct(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	req := &request.CommitSaleRequest{
		LocalID: "local-ghost",
		Items: []request.CommitSaleItem{
			{ProductID: 1, Qty: 1},
			{ProductID: 999, Qty: 1},
		},
		AmountTendered: decimal.RequireFromString("100000"),
	}

	_, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	require.ErrorIs(t, err, entity.ErrProductNotFound)
	require.Equal(t, int64(10), store.StockOf(1, testStoreID))
}

func TestCommitSaleProductNotInStore(t *testing.T) {
	store, uc := newCommitEnv()
	// Producto existe en catálogo pero con stock en OTRO magasin
	store.SeedProduct(entity.Product{
		ID:        1,
		Reference: "COLA-33",
		PriceCDF:  decimal.RequireFromString("1500"),
		PriceUSD:  decimal.RequireFromString("0.62"),
	}, testStoreID+1, 10)

	_, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-x", 1))
	require.ErrorIs(t, err, entity.ErrProductNotInStore)
}

func TestCommitSaleDiscountAndChange(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	req := cashRequest("local-disc", 2) // subtotal 3000
	req.DiscountPct = decimal.RequireFromString("10")
	req.AmountTendered = decimal.RequireFromString("3000")

	resp, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	require.NoError(t, err)
	require.True(t, resp.DiscountAmount.Equal(decimal.RequireFromString("300")))
	require.True(t, resp.Total.Equal(decimal.RequireFromString("2700")))
	require.True(t, resp.Change.Equal(decimal.RequireFromString("300")))
}

func TestCommitSaleInsufficientTenderedCash(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	req := cashRequest("local-short", 2) // total 3000
	req.AmountTendered = decimal.RequireFromString("2999")

	_, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	require.ErrorIs(t, err, entity.ErrInsufficientPayment)

	// La transacción quedó revertida: stock intacto
	require.Equal(t, int64(10), store.StockOf(1, testStoreID))
}

func TestCommitSaleUSDPricing(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	req := cashRequest("local-usd", 2)
	req.Currency = entity.CurrencyUSD
	req.AmountTendered = decimal.RequireFromString("5")

	resp, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
	require.NoError(t, err)
	require.True(t, resp.Subtotal.Equal(decimal.RequireFromString("1.24")), "subtotal = %s", resp.Subtotal)
	require.Equal(t, entity.CurrencyUSD, resp.Currency)
}

func TestCommitSaleDefaultsRateFromCache(t *testing.T) {
	store, _ := newCommitEnv()
	seedCola(store, 10)

	rates := cache.NewRateCache()
	rates.Set(decimal.RequireFromString("2650"))
	uc := NewCommitSaleUseCase(store, rates, nil)

	resp, err := uc.Execute(context.Background(), testUserID, testStoreID, cashRequest("local-rate", 1))
	require.NoError(t, err)
	require.True(t, resp.RateUSD.Equal(decimal.RequireFromString("2650")), "rate = %s", resp.RateUSD)
}

func TestCommitSaleValidation(t *testing.T) {
	store, uc := newCommitEnv()
	seedCola(store, 10)

	cases := []struct {
		name    string
		mutate  func(*request.CommitSaleRequest)
		wantErr error
	}{
		{"missing local_id", func(r *request.CommitSaleRequest) { r.LocalID = "" }, entity.ErrClientRefRequired},
		{"empty cart", func(r *request.CommitSaleRequest) { r.Items = nil }, entity.ErrSaleMustHaveLines},
		{"zero qty", func(r *request.CommitSaleRequest) { r.Items[0].Qty = 0 }, entity.ErrInvalidQuantity},
		{"bad currency", func(r *request.CommitSaleRequest) { r.Currency = "EUR" }, entity.ErrInvalidCurrency},
		{"discount out of range", func(r *request.CommitSaleRequest) { r.DiscountPct = decimal.RequireFromString("150") }, entity.ErrInvalidDiscount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := cashRequest("local-bad", 1)
			tc.mutate(req)
			_, err := uc.Execute(context.Background(), testUserID, testStoreID, req)
			require.True(t, errors.Is(err, tc.wantErr), "err = %v, want %v", err, tc.wantErr)
		})
	}
}
