package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapper_DefaultTable(t *testing.T) {
	t.Parallel()

	m := NewMapper(nil)

	cases := map[string]string{
		"NASDAQ:AAPL":   "AAPL",
		"CME_MINI:ES1!": "ES=F",
		"TVC:SPX":       "^GSPC",
		"OANDA:EURUSD":  "EURUSD=X",
		"NYMEX:CL1!":    "CL=F",
		"TVC:GOLD":      "GC=F",
	}
	for qualified, plain := range cases {
		require.Equal(t, plain, m.ToProviderSymbol(qualified), qualified)
	}
}

func TestMapper_IdentityFallback(t *testing.T) {
	t.Parallel()

	m := NewMapper(nil)

	require.Equal(t, "NYSE:IBM", m.ToProviderSymbol("NYSE:IBM"))
	require.Equal(t, "IBM", m.ToProviderSymbol("IBM"))
	require.Equal(t, "", m.ToProviderSymbol(""))
}

func TestMapper_Idempotent(t *testing.T) {
	t.Parallel()

	m := NewMapper(nil)

	for _, q := range append(DefaultWatchList(), "NYSE:IBM", "BINANCE:BTCUSDT") {
		first := m.ToProviderSymbol(q)
		second := m.ToProviderSymbol(q)
		require.Equal(t, first, second)
	}
}

func TestMapper_OverridesAndReverse(t *testing.T) {
	t.Parallel()

	m := NewMapper(map[string]string{
		"NYSE:IBM":    "IBM",
		"NASDAQ:AAPL": "AAPL.US",
		" ":           "ignored",
	})

	require.Equal(t, "IBM", m.ToProviderSymbol("NYSE:IBM"))
	require.Equal(t, "AAPL.US", m.ToProviderSymbol("NASDAQ:AAPL"))

	q, ok := m.ToQualified("AAPL.US")
	require.True(t, ok)
	require.Equal(t, "NASDAQ:AAPL", q)

	_, ok = m.ToQualified("AAPL")
	require.False(t, ok)

	q, ok = m.ToQualified("^GSPC")
	require.True(t, ok)
	require.Equal(t, "TVC:SPX", q)
}

func TestMapper_ToProviderSymbolsKeepsOrder(t *testing.T) {
	t.Parallel()

	m := NewMapper(nil)

	got := m.ToProviderSymbols([]string{"TVC:GOLD", "NYSE:IBM", "NASDAQ:MSFT"})

	require.Equal(t, []string{"GC=F", "NYSE:IBM", "MSFT"}, got)
}

func TestDefaultWatchList(t *testing.T) {
	t.Parallel()

	list := DefaultWatchList()
	require.Len(t, list, 12)
	require.Equal(t, "NASDAQ:AAPL", list[0])
	require.Equal(t, "NYMEX:CL1!", list[11])

	list[0] = "mutated"
	require.Equal(t, "NASDAQ:AAPL", DefaultWatchList()[0])
}

func TestSplitAndNormalize(t *testing.T) {
	t.Parallel()

	ex, tk := Split("CME_MINI:ES1!")
	require.Equal(t, "CME_MINI", ex)
	require.Equal(t, "ES1!", tk)

	ex, tk = Split("AAPL")
	require.Empty(t, ex)
	require.Equal(t, "AAPL", tk)

	require.Equal(t,
		[]string{"NASDAQ:AAPL", "TVC:SPX"},
		Normalize([]string{" nasdaq:aapl", "", "TVC:SPX", "NASDAQ:AAPL"}),
	)
}

func TestMapper_ReverseLookupIsStableForSharedPlainSymbols(t *testing.T) {
	t.Parallel()

	overrides := map[string]string{
		"XETR:SAP":   "SAP",
		"NYSE:SAP":   "SAP",
		"LSE:SAP":    "SAP",
		"NASDAQ:SAP": "SAP",
		"CBOE:SPX":   "^GSPC",
	}

	for range 20 {
		m := NewMapper(overrides)

		q, ok := m.ToQualified("SAP")
		require.True(t, ok)
		require.Equal(t, "LSE:SAP", q)
		require.Equal(t, "SAP", m.ToProviderSymbol("XETR:SAP"))

		// The default table keeps the plain symbol it claimed first.
		q, ok = m.ToQualified("^GSPC")
		require.True(t, ok)
		require.Equal(t, "TVC:SPX", q)
		require.Equal(t, "^GSPC", m.ToProviderSymbol("CBOE:SPX"))
	}
}
