package domain

// settlement.go — clasificación y payout, espejo exacto de la aritmética
// del contrato.
//
// Reglas del PredictionMarketplace:
//   - outcome = maxPrice >= targetPrice (la igualdad resuelve YES).
//   - fee total = totalPool × 3 / 100 en UNA división truncante
//     (conceptualmente 2% host + 1% plataforma, pero el contrato deduce el
//     3% combinado; truncar 2% y 1% por separado diverge del ledger).
//   - volumen mínimo = totalPool × 4 / 100: si cualquiera de los dos pools
//     queda por debajo, el payout es 0 para todo ganador (circuit-breaker
//     del contrato ante pools sin liquidez opuesta).
//   - payout = stake × remainingPool / winningPool, multiplicar-luego-dividir
//     en un solo paso truncante. No reasociar.

import "fmt"

// PollOutcome devuelve el resultado canónico de un poll resuelto:
// true = gana YES, false = gana NO. La comparación es inclusiva: un máximo
// exactamente igual al target resuelve YES.
func PollOutcome(p Poll) bool {
	return p.MaxPrice.Cmp(p.TargetPrice) >= 0
}

// Classify determina el estado de la apuesta del usuario en un poll.
// Es una función pura: mismo estado del ledger, misma clasificación.
// Un error (overflow) invalida solo este poll; el caller lo descarta.
func Classify(p Poll, w Wager) (Bet, error) {
	bet := Bet{Poll: p, Wager: w}

	if !p.Resolved {
		bet.Status = StatusActive
		return bet, nil
	}

	outcome := PollOutcome(p)
	bet.Outcome = outcome

	userWon := (outcome && w.Yes.IsPositive()) || (!outcome && w.No.IsPositive())
	if !userWon {
		loss, err := w.Total()
		if err != nil {
			return Bet{}, fmt.Errorf("domain.Classify: poll %d: %w", p.ID, err)
		}
		bet.Status = StatusLost
		bet.Loss = loss
		return bet, nil
	}

	payout, err := ComputePayout(p, w, outcome)
	if err != nil {
		return Bet{}, fmt.Errorf("domain.Classify: poll %d: %w", p.ID, err)
	}

	stake := w.Yes
	if !outcome {
		stake = w.No
	}
	profit, err := payout.Sub(stake)
	if err != nil {
		return Bet{}, fmt.Errorf("domain.Classify: poll %d: %w", p.ID, err)
	}

	bet.Status = StatusWon
	bet.Payout = payout
	bet.Profit = profit
	return bet, nil
}

// ComputePayout calcula el payout de un ganador replicando la expresión
// entera del contrato paso a paso. Devuelve solo el payout; el profit se
// deriva en el caller como payout − stake del lado ganador.
func ComputePayout(p Poll, w Wager, outcome bool) (Amount, error) {
	totalPool, err := p.TotalPool()
	if err != nil {
		return 0, fmt.Errorf("domain.ComputePayout: total pool: %w", err)
	}

	fees, err := totalPool.MulQuo(3, 100)
	if err != nil {
		return 0, fmt.Errorf("domain.ComputePayout: fees: %w", err)
	}
	remainingPool, err := totalPool.Sub(fees)
	if err != nil {
		return 0, fmt.Errorf("domain.ComputePayout: remaining pool: %w", err)
	}

	winningPool := p.TotalYes
	stake := w.Yes
	if !outcome {
		winningPool = p.TotalNo
		stake = w.No
	}

	minVolume, err := totalPool.MulQuo(4, 100)
	if err != nil {
		return 0, fmt.Errorf("domain.ComputePayout: min volume: %w", err)
	}
	meetsMinimum := p.TotalYes.Cmp(minVolume) >= 0 && p.TotalNo.Cmp(minVolume) >= 0

	if !meetsMinimum || !winningPool.IsPositive() {
		return 0, nil
	}

	payout, err := stake.MulDiv(remainingPool, winningPool)
	if err != nil {
		return 0, fmt.Errorf("domain.ComputePayout: payout: %w", err)
	}
	return payout, nil
}
