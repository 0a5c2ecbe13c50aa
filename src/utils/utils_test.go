package utils

import (
	"io"
	"testing"
	"time"

	"market-dashboard/src/logger"

	"github.com/stretchr/testify/require"
)

func TestRingBuffer_WrapsAndKeepsOrder(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[int](3)
	require.Empty(t, rb.GetAll())

	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}

	require.True(t, rb.IsFull())
	require.Equal(t, 3, rb.Size())
	require.Equal(t, []int{3, 4, 5}, rb.GetAll())
	require.Equal(t, []int{4, 5}, rb.GetLatest(2))
	require.Equal(t, []int{3, 4, 5}, rb.GetLatest(10))

	rb.Clear()
	require.Equal(t, 0, rb.Size())
	require.Equal(t, 3, rb.Capacity())
}

func TestLastN(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"c", "d"}, LastN([]string{"a", "b", "c", "d"}, 2))
	require.Equal(t, []string{"a"}, LastN([]string{"a"}, 5))
}

func TestDefaultsHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultRefreshInterval, SecondsOr(0, DefaultRefreshInterval))
	require.Equal(t, 5*time.Second, SecondsOr(5, DefaultRefreshInterval))
	require.Equal(t, DefaultChartFanOutCap, IntOr(-1, DefaultChartFanOutCap))
	require.Equal(t, 3, IntOr(3, DefaultChartFanOutCap))
}

func TestFXCalendar_WeekBoundaries(t *testing.T) {
	t.Parallel()

	cal := GetCalendar("OANDA:EURUSD")
	require.Equal(t, SessionFX, cal.Kind)
	ny := cal.Timezone

	// 2024-06-08 is a Saturday.
	require.False(t, cal.IsOpenOnMinute(time.Date(2024, 6, 8, 12, 0, 0, 0, ny)))
	require.False(t, cal.IsOpenOnMinute(time.Date(2024, 6, 9, 16, 59, 0, 0, ny)))
	require.True(t, cal.IsOpenOnMinute(time.Date(2024, 6, 9, 17, 0, 0, 0, ny)))
	require.True(t, cal.IsOpenOnMinute(time.Date(2024, 6, 12, 17, 30, 0, 0, ny)))
	require.False(t, cal.IsOpenOnMinute(time.Date(2024, 6, 14, 17, 0, 0, 0, ny)))
}

func TestFuturesCalendar_DailyHalt(t *testing.T) {
	t.Parallel()

	cal := GetCalendar("CME_MINI:ES1!")
	require.Equal(t, SessionFutures, cal.Kind)
	ny := cal.Timezone

	require.False(t, cal.IsOpenOnMinute(time.Date(2024, 6, 12, 17, 30, 0, 0, ny)))
	require.True(t, cal.IsOpenOnMinute(time.Date(2024, 6, 12, 18, 0, 0, 0, ny)))
	require.False(t, cal.IsOpenOnMinute(time.Date(2024, 6, 9, 17, 30, 0, 0, ny)))
}

func TestMarketScheduler_SessionsCoversEverySymbol(t *testing.T) {
	t.Parallel()

	log := logger.NewLoggerWithWriter(io.Discard, "ERROR", "test")
	ms := NewMarketScheduler([]string{"OANDA:EURUSD"}, log)
	// Saturday noon in New York: everything closed.
	ms.now = func() time.Time { return time.Date(2024, 6, 8, 16, 0, 0, 0, time.UTC) }

	got := ms.Sessions([]string{"OANDA:EURUSD", "NYMEX:CL1!"})

	require.Equal(t, map[string]bool{"OANDA:EURUSD": false, "NYMEX:CL1!": false}, got)
	require.False(t, ms.AnyMarketOpen())
}
