package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestClassifyBill(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		bill core.Bill
		want BillStatus
	}{
		{"paid wins", core.Bill{DueDate: date(2024, 3, 1), Paid: true}, BillPaid},
		{"overdue", core.Bill{DueDate: date(2024, 3, 9)}, BillOverdue},
		{"due today after midnight", core.Bill{DueDate: date(2024, 3, 10)}, BillDueToday},
		{"due tomorrow", core.Bill{DueDate: date(2024, 3, 11)}, BillDueTomorrow},
		{"due soon", core.Bill{DueDate: date(2024, 3, 17)}, BillDueSoon},
		{"upcoming", core.Bill{DueDate: date(2024, 3, 18)}, BillUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBill(tt.bill, now))
		})
	}
}

func TestUpcomingBillsAndReminders(t *testing.T) {
	now := date(2024, 3, 10)
	bills := []core.Bill{
		{ID: "late", DueDate: date(2024, 4, 30)},
		{ID: "paid", DueDate: date(2024, 3, 11), Paid: true},
		{ID: "soon", DueDate: date(2024, 3, 12)},
		{ID: "over", DueDate: date(2024, 3, 1)},
	}
	up := UpcomingBills(bills, now)
	require.Len(t, up, 3)
	assert.Equal(t, []string{"over", "soon", "late"}, []string{up[0].ID, up[1].ID, up[2].ID})

	rem := BillsNeedingReminder(bills, now)
	require.Len(t, rem, 2)
	assert.Equal(t, BillOverdue, rem[0].Status)
	assert.Equal(t, 2, rem[1].DaysLeft)
}

func TestPayBill(t *testing.T) {
	one, err := PayBill(core.Bill{DueDate: date(2024, 3, 1)})
	require.NoError(t, err)
	assert.True(t, one.Paid)

	rec, err := PayBill(core.Bill{DueDate: date(2024, 1, 31), Recurring: true, Frequency: core.Monthly})
	require.NoError(t, err)
	assert.False(t, rec.Paid)
	assert.Equal(t, date(2024, 2, 29), rec.DueDate)

	_, err = PayBill(core.Bill{DueDate: date(2024, 1, 31), Recurring: true})
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}
