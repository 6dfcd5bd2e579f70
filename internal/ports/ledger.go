package ports

import (
	"context"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

// Ledger es la fachada de solo lectura del contrato PredictionMarketplace.
// Este core nunca escribe al ledger.
type Ledger interface {
	// PollCount devuelve el número total de polls creados.
	PollCount(ctx context.Context) (uint64, error)

	// Poll devuelve la metadata del poll con el índice dado.
	Poll(ctx context.Context, id uint64) (domain.Poll, error)

	// UserWager devuelve los montos YES/NO apostados por el usuario en el
	// poll dado, en enteros crudos del ledger (escala 1e8).
	UserWager(ctx context.Context, id uint64, user string) (domain.Wager, error)
}
