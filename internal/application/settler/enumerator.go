package settler

// enumerator.go — recorrido concurrente del índice completo de polls.
//
// Cada fetch por poll es independiente y de solo lectura: un worker pool
// los ejecuta en paralelo y el resultado se reordena por índice ascendente,
// de modo que la concurrencia no afecta al orden publicado. Un fallo en el
// poll i (red, decode, overflow) descarta solo ese poll y la enumeración
// sigue con el resto; el siguiente tick lo reintenta.

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/ayush035/syn-Polygon/internal/domain"
	"github.com/ayush035/syn-Polygon/internal/ports"
)

// fetchBets enumera los polls 0..pollCount-1, trae la apuesta del usuario y
// la metadata de cada poll, y devuelve las apuestas clasificadas en orden
// ascendente de índice. Los polls sin participación (wager cero en ambos
// lados) se excluyen.
func fetchBets(ctx context.Context, ledger ports.Ledger, user string, workers int) ([]domain.Bet, error) {
	count, err := ledger.PollCount(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if uint64(workers) > count {
		workers = int(count)
	}

	idxCh := make(chan uint64, count)
	resultCh := make(chan domain.Bet, count)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idxCh {
				bet, ok := fetchOne(ctx, ledger, user, id)
				if ok {
					resultCh <- bet
				}
			}
		}()
	}

	for id := uint64(0); id < count; id++ {
		idxCh <- id
	}
	close(idxCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	bets := make([]domain.Bet, 0, count)
	for bet := range resultCh {
		bets = append(bets, bet)
	}

	// Los workers terminan en cualquier orden: el orden publicado es
	// siempre por índice de poll.
	sort.Slice(bets, func(i, j int) bool { return bets[i].Poll.ID < bets[j].Poll.ID })

	slog.Debug("poll enumeration complete",
		"polls", count,
		"bets", len(bets),
		"workers", workers,
	)
	return bets, nil
}

// fetchOne trae y clasifica un único poll. Devuelve ok=false si el usuario
// no participa o si el poll falla (el fallo se loguea y el poll se salta).
func fetchOne(ctx context.Context, ledger ports.Ledger, user string, id uint64) (domain.Bet, bool) {
	wager, err := ledger.UserWager(ctx, id, user)
	if err != nil {
		slog.Warn("skipping poll: wager fetch failed", "poll", id, "err", err)
		return domain.Bet{}, false
	}
	if wager.IsZero() {
		return domain.Bet{}, false // sin participación
	}

	poll, err := ledger.Poll(ctx, id)
	if err != nil {
		slog.Warn("skipping poll: metadata fetch failed", "poll", id, "err", err)
		return domain.Bet{}, false
	}

	bet, err := domain.Classify(poll, wager)
	if err != nil {
		slog.Warn("skipping poll: classification failed", "poll", id, "err", err)
		return domain.Bet{}, false
	}
	return bet, true
}
