package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ENb08/jh/src/sale/application/request"
	"github.com/ENb08/jh/src/sale/application/response"
	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/domain/port"
	"github.com/ENb08/jh/src/sale/infrastructure/cache"
	"github.com/ENb08/jh/src/shared/infrastructure/metrics"

	"github.com/shopspring/decimal"
)

// CommitSaleUseCase es el commit autoritativo de una venta POS.
//
// Flujo transaccional (una sola unidad atómica contra ledger y ventas):
// 1. Replay idempotente: si el local_id ya produjo una venta, devolverla
// 2. Re-derivar precios de línea desde el catálogo (nunca del terminal)
// 3. Verificar stock de TODAS las líneas; una sola insuficiente aborta todo
// 4. Descontar stock vía el ledger (ApplyDelta, no-negatividad garantizada)
// 5. Insertar header + líneas y confirmar
type CommitSaleUseCase struct {
	sales port.SaleRepository
	rates *cache.RateCache
	met   *metrics.Registry
}

// NewCommitSaleUseCase crea una nueva instancia del caso de uso
func NewCommitSaleUseCase(
	sales port.SaleRepository,
	rates *cache.RateCache,
	met *metrics.Registry,
) *CommitSaleUseCase {
	return &CommitSaleUseCase{
		sales: sales,
		rates: rates,
		met:   met,
	}
}

// Execute commitea una venta. Los rechazos de negocio se devuelven como
// *entity.StockRejection o sentinels de entity; cualquier otro error es
// de infraestructura y la transacción quedó completamente revertida.
func (uc *CommitSaleUseCase) Execute(
	ctx context.Context,
	userID, storeID int64,
	req *request.CommitSaleRequest,
) (*response.CommitSaleResponse, error) {
	start := time.Now()
	log.Printf("🛒 POS commit - local_id=%s items=%d store=%d", req.LocalID, len(req.Items), storeID)

	if err := uc.validate(req); err != nil {
		uc.countRejected("invalid_request")
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = entity.CurrencyCDF
	}
	paymentMode := req.PaymentMode
	if paymentMode == "" {
		paymentMode = entity.PaymentModeCash
	}
	rateUSD := req.RateUSD
	if rateUSD.IsZero() && uc.rates != nil {
		rateUSD = uc.rates.Get()
	}
	if rateUSD.IsZero() {
		rateUSD = cache.DefaultRateUSD
	}

	// Replay idempotente fuera de la transacción: el caso común de un
	// reintento tras respuesta perdida no toca el ledger
	if existing, err := uc.sales.FindByClientRef(ctx, storeID, req.LocalID); err == nil {
		log.Printf("♻️  Replay idempotente local_id=%s → sale_id=%s", req.LocalID, existing.ID)
		if uc.met != nil {
			uc.met.SalesDuplicate.Inc()
		}
		return response.FromSale(existing, true), nil
	} else if !errors.Is(err, entity.ErrSaleNotFound) {
		return nil, fmt.Errorf("error checking idempotency key: %w", err)
	}

	var sale *entity.Sale
	err := uc.sales.WithinTx(ctx, func(tx port.SaleTx) error {
		// Paso 1: precios autoritativos + verificación de stock de todas
		// las líneas antes de descontar nada
		lines := make([]entity.SaleLine, 0, len(req.Items))
		for _, item := range req.Items {
			product, err := tx.FindProduct(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}

			unitPrice, err := product.UnitPriceIn(currency)
			if err != nil {
				return err
			}

			available, err := tx.Get(ctx, item.ProductID, storeID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if available < item.Qty {
				return &entity.StockRejection{
					ProductID: item.ProductID,
					Available: available,
					Requested: item.Qty,
				}
			}

			line, err := entity.NewSaleLine(item.ProductID, product.Reference, item.Qty, unitPrice, currency)
			if err != nil {
				return err
			}
			lines = append(lines, *line)
		}

		// Paso 2: descontar stock línea por línea vía el ledger
		for _, line := range lines {
			if _, err := tx.ApplyDelta(ctx, line.ProductID, storeID, -line.Quantity); err != nil {
				return fmt.Errorf("stock delta for product %d: %w", line.ProductID, err)
			}
		}

		// Paso 3: armar el aggregate con totales del servidor y persistir
		var err error
		sale, err = entity.NewSale(
			req.LocalID,
			userID,
			storeID,
			lines,
			paymentMode,
			currency,
			req.DiscountPct,
			req.AmountTendered,
			rateUSD,
		)
		if err != nil {
			return err
		}

		return tx.InsertSale(ctx, sale)
	})

	if err != nil {
		// Carrera de idempotencia: dos reintentos simultáneos del mismo
		// local_id; el índice único decidió, devolvemos la venta ganadora
		if errors.Is(err, entity.ErrDuplicateClientRef) {
			existing, ferr := uc.sales.FindByClientRef(ctx, storeID, req.LocalID)
			if ferr != nil {
				return nil, fmt.Errorf("duplicate client_ref but sale not readable: %w", ferr)
			}
			log.Printf("♻️  Commit concurrente duplicado local_id=%s → sale_id=%s", req.LocalID, existing.ID)
			if uc.met != nil {
				uc.met.SalesDuplicate.Inc()
			}
			return response.FromSale(existing, true), nil
		}

		var rej *entity.StockRejection
		if errors.As(err, &rej) {
			log.Printf("❌ Stock insuficiente product=%d available=%d requested=%d",
				rej.ProductID, rej.Available, rej.Requested)
			uc.countRejected("insufficient_stock")
			return nil, err
		}
		if errors.Is(err, entity.ErrProductNotFound) || errors.Is(err, entity.ErrProductNotInStore) {
			uc.countRejected("unknown_product")
			return nil, err
		}
		if isValidationErr(err) {
			uc.countRejected("invalid_request")
			return nil, err
		}

		log.Printf("⚠️  Commit failed, transaction rolled back: %v", err)
		return nil, fmt.Errorf("error committing sale: %w", err)
	}

	if uc.met != nil {
		uc.met.SalesCommitted.Inc()
		uc.met.CommitLatencySec.Observe(time.Since(start).Seconds())
	}
	log.Printf("✅ Sale committed: id=%s total=%s %s change=%s",
		sale.ID, sale.Total, sale.Currency, sale.Change)

	return response.FromSale(sale, false), nil
}

func (uc *CommitSaleUseCase) validate(req *request.CommitSaleRequest) error {
	if req.LocalID == "" {
		return entity.ErrClientRefRequired
	}
	if len(req.Items) == 0 {
		return entity.ErrSaleMustHaveLines
	}
	for _, item := range req.Items {
		if item.Qty <= 0 {
			return entity.ErrInvalidQuantity
		}
	}
	if req.Currency != "" && !entity.ValidCurrency(req.Currency) {
		return entity.ErrInvalidCurrency
	}
	if req.DiscountPct.LessThan(decimal.Zero) || req.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return entity.ErrInvalidDiscount
	}
	return nil
}

func (uc *CommitSaleUseCase) countRejected(reason string) {
	if uc.met != nil {
		uc.met.SalesRejected.WithLabelValues(reason).Inc()
	}
}

// isValidationErr agrupa los sentinels de validación del aggregate
func isValidationErr(err error) bool {
	for _, sentinel := range []error{
		entity.ErrClientRefRequired,
		entity.ErrUserRequired,
		entity.ErrStoreRequired,
		entity.ErrSaleMustHaveLines,
		entity.ErrInvalidQuantity,
		entity.ErrInvalidPrice,
		entity.ErrInvalidDiscount,
		entity.ErrInvalidCurrency,
		entity.ErrInsufficientPayment,
		entity.ErrReferenceRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
