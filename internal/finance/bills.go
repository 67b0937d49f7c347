package finance

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

type BillStatus string

const (
	BillPaid        BillStatus = "paid"
	BillOverdue     BillStatus = "overdue"
	BillDueToday    BillStatus = "due-today"
	BillDueTomorrow BillStatus = "due-tomorrow"
	BillDueSoon     BillStatus = "due-soon"
	BillUpcoming    BillStatus = "upcoming"
)

// DueSoonDays is the horizon of the due-soon status and of bill reminders.
const DueSoonDays = 7

// ClassifyBill derives the status of b on the calendar day of now.
func ClassifyBill(b core.Bill, now time.Time) BillStatus {
	if b.Paid {
		return BillPaid
	}
	switch days := core.DaysBetween(now, b.DueDate); {
	case days < 0:
		return BillOverdue
	case days == 0:
		return BillDueToday
	case days == 1:
		return BillDueTomorrow
	case days <= DueSoonDays:
		return BillDueSoon
	}
	return BillUpcoming
}

// BillView pairs a bill with its status.
type BillView struct {
	core.Bill
	Status   BillStatus `json:"status"`
	DaysLeft int        `json:"daysLeft"`
}

// UpcomingBills returns the unpaid bills ordered by due date.
func UpcomingBills(bills []core.Bill, now time.Time) []BillView {
	out := []BillView{}
	for _, b := range bills {
		if b.Paid {
			continue
		}
		out = append(out, BillView{Bill: b, Status: ClassifyBill(b, now), DaysLeft: core.DaysBetween(now, b.DueDate)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

// BillsNeedingReminder returns the unpaid bills that are overdue or due within
// DueSoonDays.
func BillsNeedingReminder(bills []core.Bill, now time.Time) []BillView {
	var out []BillView
	for _, v := range UpcomingBills(bills, now) {
		if v.Status != BillUpcoming {
			out = append(out, v)
		}
	}
	return out
}

// PayBill marks b paid. A recurring bill is rolled forward instead: its due
// date advances one period and it stays unpaid.
func PayBill(b core.Bill) (core.Bill, error) {
	if !b.Recurring {
		b.Paid = true
		return b, nil
	}
	next, err := core.Advance(b.DueDate, b.Frequency)
	if err != nil {
		return b, err
	}
	b.DueDate = next
	b.Paid = false
	return b, nil
}
