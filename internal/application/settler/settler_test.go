package settler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

const testUser = "0x2222222222222222222222222222222222222222"

// fakeLedger sirve polls y wagers desde memoria. failPolls simula fallos
// transitorios de fetch en polls concretos.
type fakeLedger struct {
	count     uint64
	polls     map[uint64]domain.Poll
	wagers    map[uint64]domain.Wager
	failPolls map[uint64]bool
}

func (f *fakeLedger) PollCount(context.Context) (uint64, error) { return f.count, nil }

func (f *fakeLedger) Poll(_ context.Context, id uint64) (domain.Poll, error) {
	if f.failPolls[id] {
		return domain.Poll{}, errors.New("rpc timeout")
	}
	return f.polls[id], nil
}

func (f *fakeLedger) UserWager(_ context.Context, id uint64, _ string) (domain.Wager, error) {
	return f.wagers[id], nil
}

// scenarioLedger es el escenario de tres polls: uno activo, uno ganado con
// el vector de payout conocido y uno perdido.
func scenarioLedger() *fakeLedger {
	return &fakeLedger{
		count: 3,
		polls: map[uint64]domain.Poll{
			0: {
				ID: 0, Question: "Unresolved poll", EndTime: 1_800_000_000,
				TargetPrice: domain.NewAmount(100_000_000),
				Resolved:    false,
			},
			1: {
				ID: 1, Question: "Resolved YES", EndTime: 1_700_000_000,
				TargetPrice: domain.NewAmount(100_000_000),
				MaxPrice:    domain.NewAmount(110_000_000),
				TotalYes:    domain.NewAmount(600_000_000),
				TotalNo:     domain.NewAmount(400_000_000),
				Resolved:    true,
			},
			2: {
				ID: 2, Question: "Resolved NO", EndTime: 1_700_000_000,
				TargetPrice: domain.NewAmount(100_000_000),
				MaxPrice:    domain.NewAmount(50_000_000),
				TotalYes:    domain.NewAmount(500_000_000),
				TotalNo:     domain.NewAmount(500_000_000),
				Resolved:    true,
			},
		},
		wagers: map[uint64]domain.Wager{
			0: {PollID: 0, Yes: domain.NewAmount(50_000_000)},
			1: {PollID: 1, Yes: domain.NewAmount(200_000_000)},
			2: {PollID: 2, Yes: domain.NewAmount(150_000_000)},
		},
	}
}

func newTestSettler(ledger *fakeLedger) *Settler {
	cfg := DefaultConfig()
	cfg.UserAddress = testUser
	cfg.Once = true
	return New(cfg, ledger, nil, nil)
}

func TestSettler_LoadingBeforeFirstCycle(t *testing.T) {
	s := newTestSettler(scenarioLedger())
	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.ActiveBets)
	assert.Empty(t, snap.WonBets)
	assert.Empty(t, snap.LostBets)
}

func TestSettler_EndToEndScenario(t *testing.T) {
	s := newTestSettler(scenarioLedger())

	snap, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Loading)
	assert.NotEmpty(t, snap.RunID)
	require.Len(t, snap.ActiveBets, 1)
	require.Len(t, snap.WonBets, 1)
	require.Len(t, snap.LostBets, 1)

	active := snap.ActiveBets[0]
	assert.Equal(t, uint64(0), active.PollID)
	assert.False(t, active.IsResolved)
	assert.Nil(t, active.Outcome)
	assert.Equal(t, int64(1_800_000_000_000), active.EndTime, "end time en milisegundos")

	// payout = 2.0 × 9.7 / 6.0 = 3.23333333 (truncado)
	won := snap.WonBets[0]
	assert.Equal(t, uint64(1), won.PollID)
	require.NotNil(t, won.Outcome)
	assert.True(t, *won.Outcome)
	assert.Equal(t, "3.23333333", won.Payout)
	assert.Equal(t, "1.23333333", won.Profit)

	lost := snap.LostBets[0]
	assert.Equal(t, uint64(2), lost.PollID)
	require.NotNil(t, lost.Outcome)
	assert.False(t, *lost.Outcome)
	assert.Equal(t, "1.50000000", lost.Loss)

	// wagered = 0.5 + 2.0 + 1.5 = 4.0; won = 3.23333333; pnl = −0.76666667
	assert.Equal(t, "4.00000000", snap.TotalWagered)
	assert.Equal(t, "3.23333333", snap.TotalWon)
	assert.Equal(t, "-0.76666667", snap.TotalPnL)
}

func TestSettler_ZeroWagerExcluded(t *testing.T) {
	ledger := scenarioLedger()
	ledger.wagers[0] = domain.Wager{PollID: 0} // ambos lados a cero

	s := newTestSettler(ledger)
	snap, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, snap.ActiveBets, "wager cero no es participación")
	assert.Len(t, snap.WonBets, 1)
	assert.Len(t, snap.LostBets, 1)
}

func TestSettler_FailingPollSkipped(t *testing.T) {
	ledger := scenarioLedger()
	ledger.failPolls = map[uint64]bool{1: true}

	s := newTestSettler(ledger)
	snap, err := s.RunOnce(context.Background())
	require.NoError(t, err, "un poll que falla nunca tumba el ciclo")

	// El poll 1 no aparece en ningún conjunto; el resto se publica.
	assert.Len(t, snap.ActiveBets, 1)
	assert.Empty(t, snap.WonBets)
	assert.Len(t, snap.LostBets, 1)
}

func TestSettler_AscendingOrderWithConcurrentFetches(t *testing.T) {
	ledger := &fakeLedger{
		count:  50,
		polls:  make(map[uint64]domain.Poll),
		wagers: make(map[uint64]domain.Wager),
	}
	for i := uint64(0); i < 50; i++ {
		ledger.polls[i] = domain.Poll{ID: i, Question: "q"}
		ledger.wagers[i] = domain.Wager{PollID: i, Yes: domain.NewAmount(1_000_000)}
	}

	cfg := DefaultConfig()
	cfg.UserAddress = testUser
	cfg.FetchWorkers = 8
	s := New(cfg, ledger, nil, nil)

	snap, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.ActiveBets, 50)
	for i, v := range snap.ActiveBets {
		assert.Equal(t, uint64(i), v.PollID)
	}
}

func TestSettler_PreconditionsMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAddress = "" // sin dirección: el pipeline no corre
	s := New(cfg, scenarioLedger(), nil, nil)

	err := s.Run(context.Background())
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.ActiveBets)
	assert.Equal(t, "0.00000000", snap.TotalWagered)
}

func TestSettler_CancelledCycleNotPublished(t *testing.T) {
	s := newTestSettler(scenarioLedger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RunOnce(ctx)
	require.Error(t, err)

	// El snapshot vigente sigue siendo el estado inicial: el resultado del
	// ciclo cancelado se descartó sin publicar.
	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.WonBets)
}

func TestSettler_IdempotentAgainstStaticLedger(t *testing.T) {
	s := newTestSettler(scenarioLedger())

	first, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	second, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	// Mismo ledger ⇒ mismos conjuntos y totales (solo difieren run id y timestamp).
	first.RunID, second.RunID = "", ""
	first.FetchedAt, second.FetchedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestSettler_RunStopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAddress = testUser
	cfg.RefreshInterval = 10 * time.Millisecond
	s := New(cfg, scenarioLedger(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Dejar completar al menos el ciclo inmediato.
	require.Eventually(t, func() bool {
		return !s.Snapshot().Loading
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("settler did not stop after cancellation")
	}
}
