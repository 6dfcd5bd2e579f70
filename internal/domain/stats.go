package domain

import (
	"fmt"
	"time"
)

// Stats es el snapshot agregado de un ciclo completo: se deriva únicamente
// del conjunto de apuestas clasificadas y nunca se muta por separado de un
// recálculo total.
type Stats struct {
	// Sub-secuencias en orden ascendente de poll ID.
	Active []Bet
	Won    []Bet
	Lost   []Bet

	// TotalWagered = Σ stake total (ambos lados) de TODAS las apuestas.
	TotalWagered Amount
	// TotalWon = Σ payout de las apuestas ganadas.
	TotalWon Amount
	// TotalPnL = TotalWon − TotalWagered (con signo).
	TotalPnL Amount
}

// Aggregate pliega las apuestas clasificadas en un Stats. El orden de
// entrada se preserva dentro de cada sub-secuencia.
func Aggregate(bets []Bet) (Stats, error) {
	var s Stats

	for _, b := range bets {
		stake, err := b.Stake()
		if err != nil {
			return Stats{}, fmt.Errorf("domain.Aggregate: poll %d: %w", b.Poll.ID, err)
		}
		s.TotalWagered, err = s.TotalWagered.Add(stake)
		if err != nil {
			return Stats{}, fmt.Errorf("domain.Aggregate: total wagered: %w", err)
		}

		switch b.Status {
		case StatusActive:
			s.Active = append(s.Active, b)
		case StatusWon:
			s.Won = append(s.Won, b)
			s.TotalWon, err = s.TotalWon.Add(b.Payout)
			if err != nil {
				return Stats{}, fmt.Errorf("domain.Aggregate: total won: %w", err)
			}
		case StatusLost:
			s.Lost = append(s.Lost, b)
		}
	}

	var err error
	s.TotalPnL, err = s.TotalWon.Sub(s.TotalWagered)
	if err != nil {
		return Stats{}, fmt.Errorf("domain.Aggregate: pnl: %w", err)
	}
	return s, nil
}

// ResolvedCount devuelve cuántas apuestas están resueltas (won + lost).
func (s Stats) ResolvedCount() int { return len(s.Won) + len(s.Lost) }

// WinRate devuelve won/(won+lost) en porcentaje. Métrica derivada de
// presentación: 0 si no hay apuestas resueltas.
func (s Stats) WinRate() float64 {
	resolved := s.ResolvedCount()
	if resolved == 0 {
		return 0
	}
	return float64(len(s.Won)) / float64(resolved) * 100
}

// ROI devuelve TotalPnL/TotalWagered en porcentaje. Métrica derivada de
// presentación: 0 si no hay nada apostado.
func (s Stats) ROI() float64 {
	if !s.TotalWagered.IsPositive() {
		return 0
	}
	return float64(s.TotalPnL.Raw()) / float64(s.TotalWagered.Raw()) * 100
}

// RunSummary es la fila de histórico que el storage guarda por ciclo.
type RunSummary struct {
	RunID        string
	FetchedAt    time.Time
	ActiveCount  int
	WonCount     int
	LostCount    int
	TotalWagered Amount
	TotalWon     Amount
	TotalPnL     Amount
}
