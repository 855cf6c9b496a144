package port

import (
	"context"

	"github.com/ENb08/jh/src/terminal/domain/entity"
)

// CommitResult es el desenlace de un intento de commit: exactamente uno
// de los dos campos viene seteado.
type CommitResult struct {
	Confirmed *entity.ConfirmedSale
	Rejection *entity.RejectionError
}

// CommitClient habla con el endpoint de commit del servidor.
// Un error retornado es SIEMPRE transitorio (red, timeout, 5xx): el
// caller puede reintentar con el mismo local_id sin riesgo de duplicar.
type CommitClient interface {
	CommitSale(ctx context.Context, sale *entity.PendingSale) (*CommitResult, error)

	// Ping es la sonda de conectividad del monitor (GET /health)
	Ping(ctx context.Context) bool
}
