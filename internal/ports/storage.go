package ports

import (
	"context"
	"time"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

// Storage persiste el histórico de ciclos de settlement. Es un colaborador
// opcional: el pipeline nunca lee de aquí, cada ciclo se recalcula entero
// desde el ledger.
type Storage interface {
	// SaveRun persiste el resumen de un ciclo completado y el estado
	// actual de cada apuesta clasificada.
	SaveRun(ctx context.Context, runID string, fetchedAt time.Time, stats domain.Stats) error

	// History devuelve los resúmenes de ciclos dentro del rango dado,
	// más recientes primero.
	History(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
