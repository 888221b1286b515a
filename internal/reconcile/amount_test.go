package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAmountsExact(t *testing.T) {
	t.Parallel()

	require.True(t, AmountsExact(dec("-45.00"), dec("45.00")))
	require.True(t, AmountsExact(dec("45"), dec("45.00")))
	require.False(t, AmountsExact(dec("-45.00"), dec("45.01")))
}

func TestAmountsWithinTolerance(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		tx, ledger string
		want       bool
	}{
		"exact is trivially within": {"-45.00", "45.00", true},
		// tolerance = max(99.50*0.01, 1.00) = 1.00; diff 0.50
		"flat floor applies": {"-100.00", "99.50", true},
		"outside the floor":  {"-100.00", "97.00", false},
		"at the boundary":    {"-100.00", "99.00", true},
		// tolerance = max(5000*0.01, 1.00) = 50.00
		"percentage beats floor":  {"-5040.00", "5000.00", true},
		"percentage exceeded":     {"-5051.00", "5000.00", false},
		"small amounts use floor": {"-2.00", "1.50", true},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, AmountsWithinTolerance(dec(tc.tx), dec(tc.ledger)))
		})
	}
}
