package controller

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ENb08/jh/src/sale/application/request"
	"github.com/ENb08/jh/src/sale/application/response"
	"github.com/ENb08/jh/src/sale/application/usecase"
	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/infrastructure/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleController maneja las peticiones HTTP del POS
type SaleController struct {
	commitSaleUC *usecase.CommitSaleUseCase
	listSalesUC  *usecase.ListSalesUseCase
	getSaleUC    *usecase.GetSaleUseCase
	rates        *cache.RateCache
}

// NewSaleController crea una nueva instancia del controlador
func NewSaleController(
	commitSaleUC *usecase.CommitSaleUseCase,
	listSalesUC *usecase.ListSalesUseCase,
	getSaleUC *usecase.GetSaleUseCase,
	rates *cache.RateCache,
) *SaleController {
	return &SaleController{
		commitSaleUC: commitSaleUC,
		listSalesUC:  listSalesUC,
		getSaleUC:    getSaleUC,
		rates:        rates,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *SaleController) RegisterRoutes(router *gin.RouterGroup) {
	pos := router.Group("/pos")
	{
		pos.POST("/sales/commit", c.CommitSale)
		pos.GET("/sales", c.ListSales)
		pos.GET("/sales/:sale_id", c.GetSale)
	}
	router.GET("/rates/usd", c.GetRateUSD)

	log.Println("Rutas POS disponibles:")
	log.Println("  POST   /api/v1/pos/sales/commit  ⭐ (idempotent sale commit)")
	log.Println("  GET    /api/v1/pos/sales")
	log.Println("  GET    /api/v1/pos/sales/:sale_id")
	log.Println("  GET    /api/v1/rates/usd")
}

// identity extrae el contexto autenticado opaco (user, magasin) de los headers.
// La emisión de sesión es un colaborador externo; acá solo se consume.
func identity(ctx *gin.Context) (userID, storeID int64, ok bool) {
	userID, err := strconv.ParseInt(ctx.GetHeader("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return 0, 0, false
	}
	storeID, err = strconv.ParseInt(ctx.GetHeader("X-Store-ID"), 10, 64)
	if err != nil || storeID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Store-ID header is required"})
		return 0, 0, false
	}
	return userID, storeID, true
}

// CommitSale maneja POST /pos/sales/commit.
// HTTP 200 tanto para el éxito como para el rechazo de negocio bien formado;
// 4xx/5xx quedan reservados a requests malformados y errores de infraestructura.
func (c *SaleController) CommitSale(ctx *gin.Context) {
	userID, storeID, ok := identity(ctx)
	if !ok {
		return
	}

	var req request.CommitSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := c.commitSaleUC.Execute(ctx.Request.Context(), userID, storeID, &req)
	if err != nil {
		var rej *entity.StockRejection
		if errors.As(err, &rej) {
			ctx.JSON(http.StatusOK, response.CommitRejectedResponse{
				Success:   false,
				Reason:    "insufficient_stock",
				ProductID: rej.ProductID,
				Available: rej.Available,
				Requested: rej.Requested,
				Message:   rej.Error(),
			})
			return
		}
		if errors.Is(err, entity.ErrProductNotFound) || errors.Is(err, entity.ErrProductNotInStore) {
			ctx.JSON(http.StatusOK, response.CommitRejectedResponse{
				Success: false,
				Reason:  "unknown_product",
				Message: err.Error(),
			})
			return
		}
		if isBusinessValidation(err) {
			ctx.JSON(http.StatusOK, response.CommitRejectedResponse{
				Success: false,
				Reason:  "invalid_sale",
				Message: err.Error(),
			})
			return
		}

		log.Printf("Error committing sale: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error committing sale",
		})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// ListSales lista las ventas del magasin (reporte de caja / cache offline)
func (c *SaleController) ListSales(ctx *gin.Context) {
	_, storeID, ok := identity(ctx)
	if !ok {
		return
	}

	items, err := c.listSalesUC.Execute(ctx.Request.Context(), storeID)
	if err != nil {
		log.Printf("Error listing sales: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": len(items),
	})
}

// GetSale retorna una venta puntual (reimpresión de recibo)
func (c *SaleController) GetSale(ctx *gin.Context) {
	_, storeID, ok := identity(ctx)
	if !ok {
		return
	}

	saleID, err := uuid.Parse(ctx.Param("sale_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale_id format"})
		return
	}

	sale, err := c.getSaleUC.Execute(ctx.Request.Context(), storeID, saleID)
	if err != nil {
		if errors.Is(err, entity.ErrSaleNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		log.Printf("Error getting sale: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, sale)
}

// GetRateUSD retorna el taux de cambio vigente
func (c *SaleController) GetRateUSD(ctx *gin.Context) {
	rate := cache.DefaultRateUSD
	if c.rates != nil {
		rate = c.rates.Get()
	}
	ctx.JSON(http.StatusOK, gin.H{
		"currency": "USD",
		"rate":     rate,
	})
}

// isBusinessValidation agrupa los rechazos de validación del dominio
func isBusinessValidation(err error) bool {
	for _, sentinel := range []error{
		entity.ErrClientRefRequired,
		entity.ErrSaleMustHaveLines,
		entity.ErrInvalidQuantity,
		entity.ErrInvalidPrice,
		entity.ErrInvalidDiscount,
		entity.ErrInvalidCurrency,
		entity.ErrInsufficientPayment,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
