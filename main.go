package main

import (
	"database/sql"
	"log"

	apiConfig "github.com/ENb08/jh/src/api/config"
	saleUseCase "github.com/ENb08/jh/src/sale/application/usecase"
	saleCache "github.com/ENb08/jh/src/sale/infrastructure/cache"
	saleController "github.com/ENb08/jh/src/sale/infrastructure/controller"
	salePersistence "github.com/ENb08/jh/src/sale/infrastructure/persistence"
	sharedConfig "github.com/ENb08/jh/src/shared/infrastructure/config"
	"github.com/ENb08/jh/src/shared/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // Driver de PostgreSQL
)

func main() {
	log.Println("🚀 JH POS Server - Iniciando...")

	cfg := sharedConfig.LoadServer()

	// Configurar el router con Gin
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Métricas Prometheus del subsistema POS
	met := metrics.NewRegistry()
	if cfg.PrometheusEnabled {
		log.Println("Registering /metrics endpoint for POS server")
		router.GET("/metrics", gin.WrapH(met.Handler()))
	} else {
		log.Println("Prometheus metrics disabled for POS server")
	}

	// Conectar a la base de datos
	log.Printf("Intentando conectar a %s", cfg.DBName)
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		log.Fatalf("❌ Error al conectar a la base de datos: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("❌ Error al verificar la conexión a la base de datos: %v", err)
	}
	log.Println("✅ Conexión a la base de datos establecida con éxito")

	// Cache del taux de cambio (configuración por request o default de proceso)
	rates := saleCache.NewRateCache()
	if err := rates.LoadFromDB(db); err != nil {
		log.Printf("⚠️  Continuando con taux por defecto: %v", err)
	}

	// API v1 grupo de rutas
	v1 := router.Group("/api/v1")

	// Módulo API (health check y versión; /health es la sonda de los terminales)
	apiCfg := apiConfig.DefaultAPIConfig()
	apiCfg.DB = db
	apiCfg.Version = cfg.Version
	apiConfig.SetupAPIModule(router, v1, apiCfg)

	// Módulo Sale (commit idempotente + lecturas)
	setupSaleModule(v1, db, rates, met)

	// Iniciar el servidor
	log.Printf("✅ Servidor POS iniciado en http://localhost:%s", cfg.Port)
	log.Printf("✅ Health endpoint: GET http://localhost:%s/health", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Error del servidor HTTP: %v", err)
	}
}

// setupSaleModule configura el módulo Sale
func setupSaleModule(router *gin.RouterGroup, db *sql.DB, rates *saleCache.RateCache, met *metrics.Registry) {
	log.Println("Configurando módulo Sale...")

	saleRepo := salePersistence.NewSalePostgresRepository(db)

	commitSaleUC := saleUseCase.NewCommitSaleUseCase(saleRepo, rates, met)
	listSalesUC := saleUseCase.NewListSalesUseCase(saleRepo)
	getSaleUC := saleUseCase.NewGetSaleUseCase(saleRepo)

	saleCtrl := saleController.NewSaleController(commitSaleUC, listSalesUC, getSaleUC, rates)
	saleCtrl.RegisterRoutes(router)

	log.Println("Módulo Sale configurado exitosamente")
}
