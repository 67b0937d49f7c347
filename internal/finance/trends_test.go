package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestComputeSpendingTrends(t *testing.T) {
	txs := []core.Transaction{
		tx("100", core.Expense, "Food", date(2024, 1, 5)),
		tx("150", core.Expense, "food", date(2024, 2, 5)),
		tx("1000", core.Expense, "Rent", date(2024, 1, 1)),
		tx("1000", core.Expense, "Rent", date(2024, 2, 1)),
		tx("100", core.Expense, "Fun", date(2024, 1, 10)),
		tx("50", core.Expense, "Fun", date(2024, 2, 10)),
		tx("20", core.Expense, "Books", date(2024, 2, 11)),
		tx("70", core.Expense, "Old", date(2023, 12, 11)),
		tx("5000", core.Income, "Salary", date(2024, 2, 1)),
	}
	got := ComputeSpendingTrends(txs, date(2024, 2, 15))
	require.Len(t, got, 4)

	byCat := map[string]SpendingTrend{}
	for _, s := range got {
		byCat[s.Category] = s
	}
	assert.Equal(t, TrendUp, byCat["Food"].Trend)
	assert.InDelta(t, 50.0, byCat["Food"].Change, 1e-9)
	assert.Equal(t, TrendStable, byCat["Rent"].Trend)
	assert.Equal(t, TrendDown, byCat["Fun"].Trend)
	assert.Equal(t, TrendStable, byCat["Books"].Trend)
	assert.Equal(t, 0.0, byCat["Books"].Change)
	assert.NotContains(t, byCat, "Old")

	assert.Equal(t, "Rent", got[0].Category)
}

func TestComputeSpendingTrends_JanuaryComparesDecember(t *testing.T) {
	txs := []core.Transaction{
		tx("100", core.Expense, "Food", date(2023, 12, 20)),
		tx("80", core.Expense, "Food", date(2024, 1, 3)),
	}
	got := ComputeSpendingTrends(txs, date(2024, 1, 10))
	require.Len(t, got, 1)
	assert.InDelta(t, -20.0, got[0].Change, 1e-9)
	assert.Equal(t, TrendDown, got[0].Trend)
}
