package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ENb08/jh/src/terminal/domain/entity"
	"github.com/ENb08/jh/src/terminal/domain/port"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// commitItem espejo del wire format del servidor
type commitItem struct {
	ProductID int64           `json:"product_id"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

type commitRequest struct {
	LocalID        string          `json:"local_id"`
	Items          []commitItem    `json:"items"`
	PaymentMode    string          `json:"payment_mode"`
	Currency       string          `json:"currency"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	RateUSD        decimal.Decimal `json:"rate_usd"`
}

type commitResponseItem struct {
	ProductID int64           `json:"product_id"`
	Reference string          `json:"reference"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Currency  string          `json:"currency"`
}

type commitResponse struct {
	Success        bool                 `json:"success"`
	SaleID         uuid.UUID            `json:"sale_id"`
	LocalID        string               `json:"local_id"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	Total          decimal.Decimal      `json:"total"`
	AmountTendered decimal.Decimal      `json:"amount_tendered"`
	Change         decimal.Decimal      `json:"change"`
	Currency       string               `json:"currency"`
	PaymentMode    string               `json:"payment_mode"`
	Items          []commitResponseItem `json:"items"`
	CreatedAt      time.Time            `json:"created_at"`

	// campos de rechazo (success=false)
	Reason    string `json:"reason"`
	ProductID int64  `json:"product_id"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
	Message   string `json:"message"`
}

// HTTPCommitClient habla con el servidor POS vía el endpoint de commit.
// El timeout por request lo fija el contexto del sync engine; los
// timeouts y 5xx se reportan como entity.TransientError.
type HTTPCommitClient struct {
	http *resty.Client
}

// NewHTTPCommitClient crea el cliente con la identidad del terminal
func NewHTTPCommitClient(baseURL string, userID, storeID int64, timeout time.Duration) *HTTPCommitClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-User-ID", strconv.FormatInt(userID, 10)).
		SetHeader("X-Store-ID", strconv.FormatInt(storeID, 10))

	return &HTTPCommitClient{http: httpClient}
}

// CommitSale envía la venta con su local_id como clave de idempotencia
func (c *HTTPCommitClient) CommitSale(ctx context.Context, sale *entity.PendingSale) (*port.CommitResult, error) {
	req := commitRequest{
		LocalID:        sale.LocalID.String(),
		PaymentMode:    sale.Payload.PaymentMode,
		Currency:       sale.Payload.Currency,
		DiscountPct:    sale.Payload.DiscountPct,
		AmountTendered: sale.Payload.AmountTendered,
		RateUSD:        sale.Payload.RateUSD,
	}
	for _, item := range sale.Payload.Items {
		req.Items = append(req.Items, commitItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Currency:  item.Currency,
		})
	}

	var body commitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		Post("/api/v1/pos/sales/commit")
	if err != nil {
		return nil, &entity.TransientError{Err: err}
	}

	switch {
	case resp.StatusCode() >= http.StatusInternalServerError:
		return nil, &entity.TransientError{
			Err: fmt.Errorf("server error %s", resp.Status()),
		}
	case resp.StatusCode() == http.StatusRequestTimeout,
		resp.StatusCode() == http.StatusTooManyRequests:
		// El servidor pide reintentar más tarde: la entrada vuelve al pool
		return nil, &entity.TransientError{
			Err: fmt.Errorf("server busy %s", resp.Status()),
		}
	case resp.StatusCode() >= http.StatusBadRequest:
		// Request malformado: reintentarlo igual no puede funcionar
		return &port.CommitResult{
			Rejection: &entity.RejectionError{
				Reason:  "bad_request",
				Message: resp.Status(),
			},
		}, nil
	}

	if !body.Success {
		return &port.CommitResult{
			Rejection: &entity.RejectionError{
				Reason:    body.Reason,
				ProductID: body.ProductID,
				Available: body.Available,
				Requested: body.Requested,
				Message:   body.Message,
			},
		}, nil
	}

	confirmed := &entity.ConfirmedSale{
		SaleID:         body.SaleID,
		LocalID:        sale.LocalID,
		Subtotal:       body.Subtotal,
		DiscountAmount: body.DiscountAmount,
		Total:          body.Total,
		AmountTendered: body.AmountTendered,
		Change:         body.Change,
		Currency:       body.Currency,
		PaymentMode:    body.PaymentMode,
		CreatedAt:      body.CreatedAt,
		SyncedAt:       time.Now(),
	}
	for _, item := range body.Items {
		confirmed.Items = append(confirmed.Items, entity.ConfirmedLine{
			ProductID: item.ProductID,
			Reference: item.Reference,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
			Currency:  item.Currency,
		})
	}

	return &port.CommitResult{Confirmed: confirmed}, nil
}

// Ping sondea la conectividad contra el health check del servidor
func (c *HTTPCommitClient) Ping(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}
