package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestComputeNetWorth(t *testing.T) {
	nw := ComputeNetWorth(
		[]core.Asset{{Value: dec("5000")}, {Value: dec("250.50")}},
		[]core.Liability{{Amount: dec("1200"), MinimumPayment: dec("35")}},
	)
	assert.True(t, nw.Assets.Equal(dec("5250.5")))
	assert.True(t, nw.NetWorth.Equal(dec("4050.5")))
	assert.True(t, nw.MonthlyDebtPayments.Equal(dec("35")))
}

func TestRecordSnapshot_ReplacesSameDay(t *testing.T) {
	history := []core.NetWorthEntry{
		{Date: date(2024, 3, 2), NetWorth: dec("10")},
		{Date: time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), NetWorth: dec("20")},
		{Date: date(2024, 3, 1), NetWorth: dec("5")},
	}
	now := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	got := RecordSnapshot(history, NetWorth{NetWorth: dec("30")}, now)
	require.Len(t, got, 3)
	assert.Equal(t, date(2024, 3, 1), got[0].Date)
	assert.True(t, got[2].NetWorth.Equal(dec("30")))
	assert.Len(t, history, 3, "input history must not shrink")
}

func TestRunningBalance(t *testing.T) {
	rows := RunningBalance([]core.Transaction{
		tx("40", core.Expense, "Food", date(2024, 1, 20)),
		tx("100", core.Income, "Salary", date(2024, 1, 15)),
		tx("70", core.Expense, "Fun", date(2024, 1, 25)),
	})
	require.Len(t, rows, 3)
	assert.True(t, rows[0].RunningBalance.Equal(dec("100")))
	assert.True(t, rows[1].RunningBalance.Equal(dec("60")))
	assert.True(t, rows[2].RunningBalance.Equal(dec("-10")))
}
