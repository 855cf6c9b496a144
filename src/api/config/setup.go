package config

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIConfig contiene la configuración del módulo API (health + versión)
type APIConfig struct {
	DB      *sql.DB
	Version string
}

// DefaultAPIConfig devuelve una configuración por defecto
func DefaultAPIConfig() APIConfig {
	return APIConfig{Version: "dev"}
}

// SetupAPIModule registra los endpoints de salud y versión.
// GET /health es además la sonda de conectividad de los terminales.
func SetupAPIModule(router *gin.Engine, v1 *gin.RouterGroup, cfg APIConfig) {
	handler := func(ctx *gin.Context) {
		dbStatus := "disabled"
		if cfg.DB != nil {
			dbStatus = "up"
			if err := cfg.DB.Ping(); err != nil {
				dbStatus = "down"
			}
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"version":  cfg.Version,
			"database": dbStatus,
			"time":     time.Now().UTC(),
		})
	}

	router.GET("/health", handler)
	v1.GET("/health", handler)
}
