package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ENb08/jh/src/sale/application/response"
	"github.com/ENb08/jh/src/sale/application/usecase"
	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/infrastructure/cache"
	"github.com/ENb08/jh/src/sale/infrastructure/persistence"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *persistence.MemorySaleStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	rates := cache.NewRateCache()
	ctrl := NewSaleController(
		usecase.NewCommitSaleUseCase(store, rates, nil),
		usecase.NewListSalesUseCase(store),
		usecase.NewGetSaleUseCase(store),
		rates,
	)

	router := gin.New()
	v1 := router.Group("/api/v1")
	ctrl.RegisterRoutes(v1)
	return router
}

func seedTestProduct(store *persistence.MemorySaleStore, stock int64) {
	store.SeedProduct(entity.Product{
		ID:        1,
		Reference: "COLA-33",
		PriceCDF:  decimal.RequireFromString("1500"),
		PriceUSD:  decimal.RequireFromString("0.62"),
	}, 3, stock)
}

func commitBody(localID string, qty int64) []byte {
	body, _ := json.Marshal(map[string]any{
		"local_id":        localID,
		"items":           []map[string]any{{"product_id": 1, "qty": qty}},
		"payment_mode":    "cash",
		"currency":        "CDF",
		"amount_tendered": "100000",
	})
	return body
}

func doCommit(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales/commit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-Store-ID", "3")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCommitSaleEndpoint(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 10)
	router := newTestRouter(store)

	rec := doCommit(router, commitBody("local-http-1", 2))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.CommitSaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "local-http-1", resp.LocalID)
	require.True(t, resp.Total.Equal(decimal.RequireFromString("3000")))
	require.Len(t, resp.Items, 1)
	require.Equal(t, int64(8), store.StockOf(1, 3))
}

func TestCommitSaleEndpointIdempotentReplay(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 10)
	router := newTestRouter(store)

	body := commitBody("local-http-retry", 2)

	var first, second response.CommitSaleResponse
	rec := doCommit(router, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doCommit(router, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	require.Equal(t, first.SaleID, second.SaleID)
	require.True(t, second.Duplicate)
	require.Equal(t, int64(8), store.StockOf(1, 3))
}

func TestCommitSaleEndpointInsufficientStock(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 2)
	router := newTestRouter(store)

	rec := doCommit(router, commitBody("local-http-short", 5))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.CommitRejectedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "insufficient_stock", resp.Reason)
	require.Equal(t, int64(1), resp.ProductID)
	require.Equal(t, int64(2), resp.Available)
	require.Equal(t, int64(5), resp.Requested)
	require.Contains(t, resp.Message, "disponible: 2")
}

func TestCommitSaleEndpointUnknownProduct(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	router := newTestRouter(store)

	rec := doCommit(router, commitBody("local-http-ghost", 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.CommitRejectedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "unknown_product", resp.Reason)
}

func TestCommitSaleEndpointRequiresIdentity(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 10)
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales/commit",
		bytes.NewReader(commitBody("local-http-noauth", 1)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, int64(10), store.StockOf(1, 3))
}

func TestCommitSaleEndpointMalformedBody(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	router := newTestRouter(store)

	rec := doCommit(router, []byte(`{"local_id":`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSaleRoundTrip(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 10)
	router := newTestRouter(store)

	var committed response.CommitSaleResponse
	rec := doCommit(router, commitBody("local-http-get", 2))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &committed))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/sales/"+committed.SaleID.String(), nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-Store-ID", "3")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched response.CommitSaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, committed.SaleID, fetched.SaleID)
	require.True(t, fetched.Total.Equal(committed.Total))
	require.Len(t, fetched.Items, len(committed.Items))

	// Otro magasin no ve la venta
	req = httptest.NewRequest(http.MethodGet, "/api/v1/pos/sales/"+committed.SaleID.String(), nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-Store-ID", "99")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSalesEndpoint(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	seedTestProduct(store, 10)
	router := newTestRouter(store)

	for i := 0; i < 2; i++ {
		rec := doCommit(router, commitBody(fmt.Sprintf("local-http-list-%d", i), 1))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/sales", nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-Store-ID", "3")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Items      []response.CommitSaleResponse `json:"items"`
		TotalCount int                           `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Equal(t, 2, listResp.TotalCount)
	require.Len(t, listResp.Items, 2)
}

func TestGetRateUSDEndpoint(t *testing.T) {
	store := persistence.NewMemorySaleStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/usd", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Currency string          `json:"currency"`
		Rate     decimal.Decimal `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "USD", resp.Currency)
	require.True(t, resp.Rate.Equal(decimal.NewFromInt(2400)))
}
