package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestSummarizeByCategory_Scenario(t *testing.T) {
	got := SummarizeByCategory(scenario(), core.Expense)
	require.Len(t, got, 1)
	assert.Equal(t, "Food", got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("40")))
	assert.Equal(t, 1, got[0].Count)
}

func TestSummarizeByCategory_OrderingAndGrouping(t *testing.T) {
	txs := []core.Transaction{
		tx("10", core.Expense, "Food", date(2024, 1, 1)),
		tx("25", core.Expense, " food ", date(2024, 1, 2)),
		tx("50", core.Expense, "Rent", date(2024, 1, 3)),
		tx("35", core.Expense, "Fun", date(2024, 1, 4)),
		tx("999", core.Income, "Food", date(2024, 1, 5)),
	}
	got := SummarizeByCategory(txs, core.Expense)
	require.Len(t, got, 3)

	assert.Equal(t, "Rent", got[0].Category)
	// tie on 35: label ascending
	assert.Equal(t, "Food", got[1].Category)
	assert.True(t, got[1].Amount.Equal(dec("35")))
	assert.Equal(t, 2, got[1].Count)
	assert.True(t, got[1].AvgAmount.Equal(dec("17.5")))
	assert.Equal(t, "Fun", got[2].Category)
}

func TestSummarizeByCategory_Empty(t *testing.T) {
	got := SummarizeByCategory(nil, core.Income)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarizeByCategory_Conservation(t *testing.T) {
	txs := sampleLedger()
	for _, typ := range []core.TransactionType{core.Income, core.Expense} {
		sum := dec("0")
		for _, s := range SummarizeByCategory(txs, typ) {
			sum = sum.Add(s.Amount)
		}
		want := dec("0")
		for _, tx := range FilterByType(txs, typ) {
			want = want.Add(tx.Amount)
		}
		assert.True(t, sum.Equal(want), "%s: got %s want %s", typ, sum, want)
	}
}

func TestSummarizeByMonth_Scenario(t *testing.T) {
	got := SummarizeByMonth(scenario())
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01", got[0].Month)
	assert.True(t, got[0].Income.Equal(dec("100")))
	assert.True(t, got[0].Expenses.Equal(dec("40")))
	assert.True(t, got[0].Balance.Equal(dec("60")))
}

func TestSummarizeByMonth_SortedAndConserved(t *testing.T) {
	txs := sampleLedger()
	got := SummarizeByMonth(txs)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Month, got[i].Month)
	}
	totals := ComputeTotals(txs)
	income, expenses := dec("0"), dec("0")
	for _, m := range got {
		income = income.Add(m.Income)
		expenses = expenses.Add(m.Expenses)
		assert.True(t, m.Balance.Equal(m.Income.Sub(m.Expenses)))
	}
	assert.True(t, income.Equal(totals.Income))
	assert.True(t, expenses.Equal(totals.Expenses))
}

func TestAvailableMonths(t *testing.T) {
	got := AvailableMonths(sampleLedger())
	assert.Equal(t, []string{"2024-02", "2024-01", "2023-12"}, got)
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		tx("3000", core.Income, "Salary", date(2023, 12, 1)),
		tx("1200", core.Expense, "Rent", date(2023, 12, 3)),
		tx("80.25", core.Expense, "Food", date(2023, 12, 31)),
		tx("3000", core.Income, "Salary", date(2024, 1, 1)),
		tx("1200", core.Expense, "Rent", date(2024, 1, 3)),
		tx("45.10", core.Expense, "food", date(2024, 1, 18)),
		tx("200", core.Income, "Freelance", date(2024, 2, 2)),
		tx("60", core.Expense, "Fun", date(2024, 2, 14)),
	}
}
