package settler

// snapshot.go — proyección de presentación del resultado de un ciclo.
//
// Los montos se renderizan como decimales (truncados, precisión completa
// del ledger) y los timestamps en milisegundos: es la frontera de
// presentación; ningún cálculo parte de estos campos.

import (
	"fmt"
	"time"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

// BetView es la entrada publicada por apuesta.
type BetView struct {
	PollID       uint64 `json:"pollId"`
	Question     string `json:"question"`
	EndTime      int64  `json:"endTime"` // milisegundos
	YesBet       string `json:"yesBet"`
	NoBet        string `json:"noBet"`
	TotalBet     string `json:"totalBet"`
	TargetPrice  string `json:"targetPrice"`
	MaxPrice     string `json:"maxPrice"`
	TotalYesPool string `json:"totalYesPool"`
	TotalNoPool  string `json:"totalNoPool"`
	IsResolved   bool   `json:"isResolved"`
	BetOnYes     bool   `json:"betOnYes"`
	BetOnNo      bool   `json:"betOnNo"`

	// Solo para apuestas resueltas.
	Outcome *bool  `json:"outcome,omitempty"`
	Payout  string `json:"payout,omitempty"`
	Profit  string `json:"profit,omitempty"`
	Loss    string `json:"loss,omitempty"`
}

// Snapshot es el estado publicado del pipeline: inmutable, se reemplaza
// entero en cada ciclo.
type Snapshot struct {
	RunID     string    `json:"runId"`
	FetchedAt time.Time `json:"fetchedAt"`
	Loading   bool      `json:"loading"`

	ActiveBets []BetView `json:"activeBets"`
	WonBets    []BetView `json:"wonBets"`
	LostBets   []BetView `json:"lostBets"`

	TotalWagered string  `json:"totalWagered"`
	TotalWon     string  `json:"totalWon"`
	TotalPnL     string  `json:"totalPnL"`
	WinRate      float64 `json:"winRate"`
	ROI          float64 `json:"roi"`
}

// emptySnapshot devuelve el estado vacío con el flag de carga dado.
func emptySnapshot(loading bool) Snapshot {
	zero := domain.NewAmount(0).Decimal(8)
	return Snapshot{
		Loading:      loading,
		ActiveBets:   []BetView{},
		WonBets:      []BetView{},
		LostBets:     []BetView{},
		TotalWagered: zero,
		TotalWon:     zero,
		TotalPnL:     zero,
	}
}

// buildSnapshot proyecta los stats de un ciclo al formato publicado.
func buildSnapshot(runID string, fetchedAt time.Time, stats domain.Stats) (Snapshot, error) {
	snap := emptySnapshot(false)
	snap.RunID = runID
	snap.FetchedAt = fetchedAt
	snap.TotalWagered = stats.TotalWagered.Decimal(8)
	snap.TotalWon = stats.TotalWon.Decimal(8)
	snap.TotalPnL = stats.TotalPnL.Decimal(8)
	snap.WinRate = stats.WinRate()
	snap.ROI = stats.ROI()

	var err error
	if snap.ActiveBets, err = betViews(stats.Active); err != nil {
		return Snapshot{}, err
	}
	if snap.WonBets, err = betViews(stats.Won); err != nil {
		return Snapshot{}, err
	}
	if snap.LostBets, err = betViews(stats.Lost); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func betViews(bets []domain.Bet) ([]BetView, error) {
	views := make([]BetView, 0, len(bets))
	for _, b := range bets {
		v, err := betView(b)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func betView(b domain.Bet) (BetView, error) {
	total, err := b.Stake()
	if err != nil {
		return BetView{}, fmt.Errorf("settler.betView: poll %d: %w", b.Poll.ID, err)
	}

	v := BetView{
		PollID:       b.Poll.ID,
		Question:     b.Poll.Question,
		EndTime:      b.Poll.EndTime * 1000,
		YesBet:       b.Wager.Yes.Decimal(8),
		NoBet:        b.Wager.No.Decimal(8),
		TotalBet:     total.Decimal(8),
		TargetPrice:  b.Poll.TargetPrice.Decimal(8),
		MaxPrice:     b.Poll.MaxPrice.Decimal(8),
		TotalYesPool: b.Poll.TotalYes.Decimal(8),
		TotalNoPool:  b.Poll.TotalNo.Decimal(8),
		IsResolved:   b.Poll.Resolved,
		BetOnYes:     b.Wager.Yes.IsPositive(),
		BetOnNo:      b.Wager.No.IsPositive(),
	}

	switch b.Status {
	case domain.StatusWon:
		outcome := b.Outcome
		v.Outcome = &outcome
		v.Payout = b.Payout.Decimal(8)
		v.Profit = b.Profit.Decimal(8)
	case domain.StatusLost:
		outcome := b.Outcome
		v.Outcome = &outcome
		v.Loss = b.Loss.Decimal(8)
	}
	return v, nil
}
