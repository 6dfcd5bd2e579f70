package settler

// settler.go — orquestador del pipeline de settlement.
//
// En cada tick reconstruye desde cero el estado completo del usuario contra
// el ledger: enumeración → clasificación → agregación → publicación. No hay
// estado local más allá del último snapshot publicado.
//
// Política de solapamiento: si un ciclo sigue en vuelo cuando llega el
// siguiente tick, el tick se salta (evita acumular tormentas de lecturas
// RPC contra el ledger en ciclos lentos). Un ciclo cuyo contexto fue
// cancelado descarta su resultado sin publicarlo.

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayush035/syn-Polygon/internal/domain"
	"github.com/ayush035/syn-Polygon/internal/ports"
)

// Config contiene la configuración del settler.
type Config struct {
	RefreshInterval time.Duration
	UserAddress     string
	FetchWorkers    int // goroutines para el fetch por poll (0 = NumCPU*2)
	Once            bool
}

// DefaultConfig devuelve la configuración por defecto (refresco cada 30s,
// el intervalo del frontend original).
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 30 * time.Second,
		FetchWorkers:    8,
	}
}

// Settler ejecuta el pipeline periódicamente y publica el último snapshot.
type Settler struct {
	cfg      Config
	ledger   ports.Ledger
	storage  ports.Storage
	notifier ports.Notifier

	inFlight atomic.Bool

	mu   sync.RWMutex
	snap Snapshot
}

// New crea un Settler con las dependencias inyectadas. storage y notifier
// pueden ser nil (colaboradores opcionales).
func New(cfg Config, ledger ports.Ledger, storage ports.Storage, notifier ports.Notifier) *Settler {
	return &Settler{
		cfg:      cfg,
		ledger:   ledger,
		storage:  storage,
		notifier: notifier,
		snap:     emptySnapshot(true), // loading hasta completar el primer ciclo
	}
}

// Snapshot devuelve el último estado publicado. Antes del primer ciclo
// completado devuelve el estado vacío con Loading=true.
func (s *Settler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Run ejecuta un ciclo inmediatamente y después re-ejecuta el pipeline en
// cada intervalo hasta que el contexto se cancele. Si falta la dirección de
// usuario o el ledger (precondición), publica el snapshot vacío con
// Loading=false y no ejecuta nada.
func (s *Settler) Run(ctx context.Context) error {
	if s.ledger == nil || s.cfg.UserAddress == "" {
		slog.Warn("settler preconditions not met: nothing to run",
			"has_ledger", s.ledger != nil,
			"has_user", s.cfg.UserAddress != "",
		)
		s.publish(emptySnapshot(false))
		return nil
	}

	slog.Info("settler starting",
		"user", s.cfg.UserAddress,
		"interval", s.cfg.RefreshInterval,
		"workers", s.cfg.FetchWorkers,
		"once", s.cfg.Once,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("settlement cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}

	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("settler stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("settlement cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve el snapshot resultante.
func (s *Settler) RunOnce(ctx context.Context) (Snapshot, error) {
	if err := s.runCycle(ctx); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// runCycle ejecuta un ciclo completo y publica/persiste el resultado.
// Si otro ciclo sigue en vuelo, este tick se salta.
func (s *Settler) runCycle(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		slog.Warn("previous cycle still in flight, skipping tick")
		return nil
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	runID := uuid.New().String()

	bets, err := fetchBets(ctx, s.ledger, s.cfg.UserAddress, s.cfg.FetchWorkers)
	if err != nil {
		return err
	}

	stats, err := domain.Aggregate(bets)
	if err != nil {
		return err
	}

	// Un ciclo cancelado no publica: el snapshot vigente sigue siendo el
	// del último ciclo completado antes de la desactivación.
	if ctx.Err() != nil {
		slog.Debug("cycle cancelled, discarding result", "run", runID)
		return ctx.Err()
	}

	snap, err := buildSnapshot(runID, time.Now().UTC(), stats)
	if err != nil {
		return err
	}
	s.publish(snap)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, stats); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, runID, snap.FetchedAt, stats); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("settlement cycle complete",
		"run", runID,
		"active", len(stats.Active),
		"won", len(stats.Won),
		"lost", len(stats.Lost),
		"pnl", stats.TotalPnL.String(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (s *Settler) publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
