package cache

import (
	"database/sql"
	"log"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultRateUSD es el taux de secours cuando no hay fila en exchange_rates
// ni valor en el request (1 USD = 2400 CDF)
var DefaultRateUSD = decimal.NewFromInt(2400)

// RateCache cache en memoria del taux de cambio USD→CDF.
// Reemplaza el estado de sesión global del sistema anterior: el taux se
// resuelve una vez al bootstrap y se pasa explícito a cada commit.
type RateCache struct {
	mu      sync.RWMutex
	rateUSD decimal.Decimal
}

// NewRateCache crea el cache con el taux por defecto
func NewRateCache() *RateCache {
	return &RateCache{rateUSD: DefaultRateUSD}
}

// LoadFromDB carga el último taux configurado desde la base de datos
func (c *RateCache) LoadFromDB(db *sql.DB) error {
	log.Println("🔄 Loading USD exchange rate into cache...")

	query := `
		SELECT rate
		FROM exchange_rates
		WHERE currency = 'USD'
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var rate decimal.Decimal
	err := db.QueryRow(query).Scan(&rate)
	if err == sql.ErrNoRows {
		log.Printf("⚠️  No exchange rate configured, using default %s CDF/USD", DefaultRateUSD)
		return nil
	}
	if err != nil {
		log.Printf("⚠️  Warning: Could not load exchange rate: %v", err)
		return err
	}

	c.mu.Lock()
	c.rateUSD = rate
	c.mu.Unlock()

	log.Printf("✅ Exchange rate loaded: %s CDF/USD", rate)
	return nil
}

// Get retorna el taux USD→CDF vigente
func (c *RateCache) Get() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateUSD
}

// Set actualiza el taux en memoria (endpoint de administración)
func (c *RateCache) Set(rate decimal.Decimal) {
	c.mu.Lock()
	c.rateUSD = rate
	c.mu.Unlock()
}
