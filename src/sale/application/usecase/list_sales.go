package usecase

import (
	"context"

	"github.com/ENb08/jh/src/sale/application/response"
	"github.com/ENb08/jh/src/sale/domain/port"

	"github.com/google/uuid"
)

// ListSalesUseCase lista las ventas commiteadas de un magasin
// (navegación offline del terminal y reportes de caja)
type ListSalesUseCase struct {
	sales port.SaleRepository
}

// NewListSalesUseCase crea una nueva instancia del caso de uso
func NewListSalesUseCase(sales port.SaleRepository) *ListSalesUseCase {
	return &ListSalesUseCase{sales: sales}
}

// Execute retorna las ventas del magasin, más recientes primero
func (uc *ListSalesUseCase) Execute(ctx context.Context, storeID int64) ([]*response.CommitSaleResponse, error) {
	sales, err := uc.sales.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	out := make([]*response.CommitSaleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, response.FromSale(sale, false))
	}
	return out, nil
}

// GetSaleUseCase recupera una venta puntual (reimpresión de recibo)
type GetSaleUseCase struct {
	sales port.SaleRepository
}

// NewGetSaleUseCase crea una nueva instancia del caso de uso
func NewGetSaleUseCase(sales port.SaleRepository) *GetSaleUseCase {
	return &GetSaleUseCase{sales: sales}
}

// Execute retorna la venta con sus líneas o entity.ErrSaleNotFound
func (uc *GetSaleUseCase) Execute(ctx context.Context, storeID int64, saleID uuid.UUID) (*response.CommitSaleResponse, error) {
	sale, err := uc.sales.FindByID(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}
	return response.FromSale(sale, false), nil
}
