package storage

// sqlite.go — histórico ligero de ciclos de settlement.
//
// Estrategia:
//   - `runs`: una fila por ciclo completado (contadores + totales crudos).
//   - `bets`: UNA fila por poll con apuesta del usuario (UPSERT con el
//     último estado clasificado). El pipeline nunca lee de aquí: cada ciclo
//     se reconstruye entero desde el ledger, esto es solo histórico.
//   - Prune automático al arrancar: runs de más de 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

const schema = `
-- Resumen por ciclo de settlement
CREATE TABLE IF NOT EXISTS runs (
    run_id        TEXT PRIMARY KEY,
    fetched_at    DATETIME NOT NULL,
    active        INTEGER  NOT NULL DEFAULT 0,
    won           INTEGER  NOT NULL DEFAULT 0,
    lost          INTEGER  NOT NULL DEFAULT 0,
    total_wagered INTEGER  NOT NULL DEFAULT 0,
    total_won     INTEGER  NOT NULL DEFAULT 0,
    total_pnl     INTEGER  NOT NULL DEFAULT 0
);

-- Último estado clasificado de cada apuesta del usuario
CREATE TABLE IF NOT EXISTS bets (
    poll_id    INTEGER PRIMARY KEY,
    question   TEXT,
    status     TEXT    NOT NULL,
    end_time   INTEGER NOT NULL DEFAULT 0,
    yes_stake  INTEGER NOT NULL DEFAULT 0,
    no_stake   INTEGER NOT NULL DEFAULT 0,
    payout     INTEGER NOT NULL DEFAULT 0,
    profit     INTEGER NOT NULL DEFAULT 0,
    loss       INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_at     ON runs(fetched_at DESC);
CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
`

// retención del histórico de ciclos
const retentionRuns = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia ciclos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el resumen del ciclo y hace upsert del estado de cada
// apuesta clasificada.
func (s *SQLiteStorage) SaveRun(ctx context.Context, runID string, fetchedAt time.Time, stats domain.Stats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, fetched_at, active, won, lost, total_wagered, total_won, total_pnl)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, fetchedAt.UTC(),
		len(stats.Active), len(stats.Won), len(stats.Lost),
		stats.TotalWagered.Raw(), stats.TotalWon.Raw(), stats.TotalPnL.Raw(),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bets (poll_id, question, status, end_time, yes_stake, no_stake, payout, profit, loss, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(poll_id) DO UPDATE SET
			question   = excluded.question,
			status     = excluded.status,
			end_time   = excluded.end_time,
			yes_stake  = excluded.yes_stake,
			no_stake   = excluded.no_stake,
			payout     = excluded.payout,
			profit     = excluded.profit,
			loss       = excluded.loss,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, group := range [][]domain.Bet{stats.Active, stats.Won, stats.Lost} {
		for _, b := range group {
			if _, err := stmt.ExecContext(ctx,
				b.Poll.ID, b.Poll.Question, b.Status.String(), b.Poll.EndTime,
				b.Wager.Yes.Raw(), b.Wager.No.Raw(),
				b.Payout.Raw(), b.Profit.Raw(), b.Loss.Raw(),
				fetchedAt.UTC(),
			); err != nil {
				return fmt.Errorf("storage.SaveRun: upsert bet %d: %w", b.Poll.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// History devuelve los resúmenes de ciclos dentro del rango, más recientes primero.
func (s *SQLiteStorage) History(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, fetched_at, active, won, lost, total_wagered, total_won, total_pnl
		 FROM runs
		 WHERE fetched_at BETWEEN ? AND ?
		 ORDER BY fetched_at DESC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		var wagered, won, pnl int64
		if err := rows.Scan(&r.RunID, &r.FetchedAt, &r.ActiveCount, &r.WonCount, &r.LostCount,
			&wagered, &won, &pnl); err != nil {
			return nil, fmt.Errorf("storage.History: scan: %w", err)
		}
		r.TotalWagered = domain.NewAmount(wagered)
		r.TotalWon = domain.NewAmount(won)
		r.TotalPnL = domain.NewAmount(pnl)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.History: rows: %w", err)
	}
	return out, nil
}

// Close cierra la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra ciclos fuera de la ventana de retención. Best-effort.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	_, _ = s.db.ExecContext(ctx, `DELETE FROM runs WHERE fetched_at < ?`, cutoff)
}
