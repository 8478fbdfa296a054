package quote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuanbr/escrow-order-service/internal/domain"
)

func TestConvertYuanToBrl(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, nil)

	q, err := calc.Convert(1000, "buyer-1")
	require.NoError(t, err)

	require.InDelta(t, 820.00, q.BaseAmount, 1e-9)
	require.InDelta(t, 41.00, q.FeeAmount, 1e-9)
	require.InDelta(t, 861.00, q.TotalAmount, 1e-9)
}

func TestInvertRecoversSource(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, nil)

	q, err := calc.Invert(861.00, "buyer-1")
	require.NoError(t, err)

	require.InDelta(t, 1000.00, q.SourceAmount, 1e-9)
	require.InDelta(t, 41.00, q.FeeAmount, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, nil)

	for _, source := range []float64{0, 0.01, 1, 499.99, 1000, 123456.78} {
		fwd, err := calc.Convert(source, "b")
		require.NoError(t, err)

		inv, err := calc.Invert(fwd.TotalAmount, "b")
		require.NoError(t, err)

		require.InDelta(t, source, inv.SourceAmount, 1e-6)
		require.InDelta(t, fwd.FeeAmount, inv.FeeAmount, 1e-6)
	}
}

func TestZeroInput(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, nil)

	q, err := calc.Convert(0, "b")
	require.NoError(t, err)
	require.Zero(t, q.TotalAmount)
	require.Zero(t, q.FeeAmount)
}

func TestInvalidInput(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, nil)

	for _, amount := range []float64{-1, -0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := calc.Convert(amount, "b")
		require.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = calc.Invert(amount, "b")
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestBuyerFeeOverride(t *testing.T) {
	calc := NewCalculator(0.82, 0.05, map[string]float64{"vip": 0.03})

	q, err := calc.Convert(1000, "vip")
	require.NoError(t, err)
	require.InDelta(t, 820.00*0.03, q.FeeAmount, 1e-9)

	q, err = calc.Convert(1000, "regular")
	require.NoError(t, err)
	require.InDelta(t, 41.00, q.FeeAmount, 1e-9)
}

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(86100), MinorUnits(861.00))
	require.Equal(t, int64(100), MinorUnits(0.999999))
	require.Equal(t, int64(0), MinorUnits(0))
	require.Equal(t, int64(4100), MinorUnits(41.004))
}
