package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	sharedConfig "github.com/ENb08/jh/src/shared/infrastructure/config"
	"github.com/ENb08/jh/src/shared/infrastructure/metrics"
	terminalUseCase "github.com/ENb08/jh/src/terminal/application/usecase"
	terminalClient "github.com/ENb08/jh/src/terminal/infrastructure/client"
	"github.com/ENb08/jh/src/terminal/infrastructure/connectivity"
	terminalPersistence "github.com/ENb08/jh/src/terminal/infrastructure/persistence"
)

// Daemon de caja: mantiene la cola local durable y la drena contra el
// servidor cada vez que la conectividad lo permite. La captura de ventas
// entra por EnqueueSaleUseCase desde el UI de caja.
func main() {
	log.Println("🖥️  JH POS Terminal - Iniciando daemon de sincronización...")

	cfg := sharedConfig.LoadTerminal()

	queue, err := terminalPersistence.NewBadgerSaleQueue(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Error abriendo la cola local en %s: %v", cfg.DataDir, err)
	}
	defer queue.Close()

	met := metrics.NewRegistry()
	commitClient := terminalClient.NewHTTPCommitClient(cfg.ServerURL, cfg.UserID, cfg.StoreID, cfg.RequestTimeout)
	syncUC := terminalUseCase.NewSyncPendingSalesUseCase(queue, commitClient, cfg.RequestTimeout, met)
	statusUC := terminalUseCase.NewQueueStatusUseCase(queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trigger := func(ctx context.Context) error {
		report, err := syncUC.Execute(ctx)
		if err != nil {
			return err
		}
		if report.Attempted > 0 {
			log.Printf("🔄 Pasada de sync: intentadas=%d confirmadas=%d rechazadas=%d halted=%v",
				report.Attempted, report.Confirmed, report.Rejected, report.Halted)
			logStatus(ctx, statusUC)
		}
		return nil
	}

	monitor := connectivity.NewMonitor(commitClient, trigger, cfg.ProbeInterval)

	log.Printf("✅ Terminal listo - server=%s store=%d data=%s", cfg.ServerURL, cfg.StoreID, cfg.DataDir)
	logStatus(ctx, statusUC)

	monitor.Run(ctx)
	log.Println("👋 Terminal detenido")
}

func logStatus(ctx context.Context, statusUC *terminalUseCase.QueueStatusUseCase) {
	status, err := statusUC.Execute(ctx)
	if err != nil {
		log.Printf("⚠️  No se pudo leer el estado de la cola: %v", err)
		return
	}
	log.Printf("📋 Cola: pending=%d in_flight=%d needs_attention=%d confirmed=%d",
		len(status.Pending), len(status.InFlight), len(status.NeedsAttention), status.ConfirmedCount)
}
