package ports

import (
	"context"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

// Notifier presenta el resultado de un ciclo de settlement al usuario.
type Notifier interface {
	// Notify muestra las apuestas clasificadas y los totales agregados.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, stats domain.Stats) error
}
