package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePoll construye un poll resuelto cuyos pools cumplen el volumen mínimo.
func makePoll(id uint64, yesPool, noPool int64, resolved bool) Poll {
	return Poll{
		ID:          id,
		Question:    "Will MATIC hit the target?",
		EndTime:     1_700_000_000,
		TargetPrice: NewAmount(90_000_000),
		MaxPrice:    NewAmount(100_000_000),
		TotalYes:    NewAmount(yesPool),
		TotalNo:     NewAmount(noPool),
		Resolved:    resolved,
	}
}

func TestClassify_UnresolvedIsActive(t *testing.T) {
	// Mientras el poll no esté resuelto, los campos de precio son irrelevantes.
	p := makePoll(1, 600_000_000, 400_000_000, false)
	p.MaxPrice = NewAmount(0)
	w := Wager{PollID: 1, Yes: NewAmount(100_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, bet.Status)
	assert.True(t, bet.Payout.IsZero())
	assert.True(t, bet.Loss.IsZero())
}

func TestPollOutcome_EqualityResolvesYes(t *testing.T) {
	// Empate exacto maxPrice == targetPrice ⇒ gana YES. Inclusivo por contrato.
	p := makePoll(1, 0, 0, true)
	p.TargetPrice = NewAmount(500_000_000)
	p.MaxPrice = NewAmount(500_000_000)
	assert.True(t, PollOutcome(p))

	p.MaxPrice = NewAmount(499_999_999)
	assert.False(t, PollOutcome(p))
}

func TestClassify_WonYes_SpecVector(t *testing.T) {
	// totalPool = 10.0: fee 0.3, remaining 9.7, winning 6.0, stake 1.0
	// ⇒ payout 1.61666666, profit 0.61666666.
	p := makePoll(1, 600_000_000, 400_000_000, true)
	w := Wager{PollID: 1, Yes: NewAmount(100_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, bet.Status)
	assert.True(t, bet.Outcome)
	assert.Equal(t, int64(161_666_666), bet.Payout.Raw())
	assert.Equal(t, int64(61_666_666), bet.Profit.Raw())
}

func TestClassify_WonNo(t *testing.T) {
	p := makePoll(2, 400_000_000, 600_000_000, true)
	p.MaxPrice = NewAmount(10_000_000) // por debajo del target ⇒ gana NO
	w := Wager{PollID: 2, No: NewAmount(200_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, bet.Status)
	assert.False(t, bet.Outcome)
	// payout = 2.0 × 9.7 / 6.0 = 3.23333333
	assert.Equal(t, int64(323_333_333), bet.Payout.Raw())
	assert.Equal(t, int64(123_333_333), bet.Profit.Raw())
}

func TestClassify_LostForfeitsWholeStake(t *testing.T) {
	// Outcome NO, usuario apostó solo YES ⇒ pierde el stake completo.
	p := makePoll(3, 600_000_000, 400_000_000, true)
	p.MaxPrice = NewAmount(10_000_000)
	w := Wager{PollID: 3, Yes: NewAmount(150_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, bet.Status)
	assert.Equal(t, int64(150_000_000), bet.Loss.Raw())
}

func TestClassify_LostOnNoSide(t *testing.T) {
	p := makePoll(4, 600_000_000, 400_000_000, true) // gana YES
	w := Wager{PollID: 4, No: NewAmount(100_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, bet.Status)
	assert.Equal(t, int64(100_000_000), bet.Loss.Raw())
}

func TestClassify_BothSidesWinnerUsesWinningStake(t *testing.T) {
	// Con stake en ambos lados el usuario siempre "gana": el payout usa solo
	// el stake del lado ganador, el profit se mide contra ese mismo stake.
	p := makePoll(5, 600_000_000, 400_000_000, true) // gana YES
	w := Wager{PollID: 5, Yes: NewAmount(100_000_000), No: NewAmount(50_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, bet.Status)
	assert.Equal(t, int64(161_666_666), bet.Payout.Raw())
	assert.Equal(t, int64(61_666_666), bet.Profit.Raw())
}

func TestComputePayout_MinVolumeGate(t *testing.T) {
	// totalPool = 10.0 ⇒ minVolume = 0.4. El pool NO (0.3) queda por debajo:
	// payout 0 para todo ganador aunque su lado haya acertado.
	p := makePoll(6, 970_000_000, 30_000_000, true)
	w := Wager{PollID: 6, Yes: NewAmount(100_000_000)}

	payout, err := ComputePayout(p, w, true)
	require.NoError(t, err)
	assert.True(t, payout.IsZero())
}

func TestComputePayout_MinVolumeGateBoundary(t *testing.T) {
	// Exactamente en el 4% el gate pasa (comparación >=).
	p := makePoll(7, 960_000_000, 40_000_000, true)
	w := Wager{PollID: 7, Yes: NewAmount(100_000_000)}

	payout, err := ComputePayout(p, w, true)
	require.NoError(t, err)
	assert.True(t, payout.IsPositive())
}

func TestComputePayout_EmptyWinningPool(t *testing.T) {
	p := makePoll(8, 0, 500_000_000, true)
	w := Wager{PollID: 8, Yes: NewAmount(100_000_000)}

	payout, err := ComputePayout(p, w, true)
	require.NoError(t, err)
	assert.True(t, payout.IsZero())
}

func TestClassify_WonWithZeroPayoutHasNegativeProfit(t *testing.T) {
	// Gate de volumen fallido: el ganador cobra 0 y su profit es −stake.
	p := makePoll(9, 970_000_000, 30_000_000, true)
	w := Wager{PollID: 9, Yes: NewAmount(100_000_000)}

	bet, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, bet.Status)
	assert.True(t, bet.Payout.IsZero())
	assert.Equal(t, int64(-100_000_000), bet.Profit.Raw())
}

func TestClassify_OverflowSurfaces(t *testing.T) {
	// Pools en el límite de int64: la suma desborda y la clasificación del
	// poll falla de forma explícita (el caller lo salta y loguea).
	p := makePoll(10, math.MaxInt64, 1, true)
	w := Wager{PollID: 10, Yes: NewAmount(100)}

	_, err := Classify(p, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestClassify_IsPure(t *testing.T) {
	p := makePoll(11, 600_000_000, 400_000_000, true)
	w := Wager{PollID: 11, Yes: NewAmount(100_000_000)}

	first, err := Classify(p, w)
	require.NoError(t, err)
	second, err := Classify(p, w)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
