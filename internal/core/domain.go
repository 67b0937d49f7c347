package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	GoalEmergency GoalType = "emergency"
	GoalVacation  GoalType = "vacation"
	GoalHouse     GoalType = "house"
	GoalCar       GoalType = "car"
	GoalCustom    GoalType = "custom"
)

const (
	AssetCash       AssetType = "cash"
	AssetInvestment AssetType = "investment"
	AssetProperty   AssetType = "property"
	AssetOther      AssetType = "other"
)

const (
	LiabilityCreditCard LiabilityType = "credit_card"
	LiabilityLoan       LiabilityType = "loan"
	LiabilityMortgage   LiabilityType = "mortgage"
	LiabilityOther      LiabilityType = "other"
)

// DefaultBillCategory is used for bills created without a category.
const DefaultBillCategory = "Bills"

// MaxDescriptionLength is the longest description, in bytes, a transaction
// or recurring entry may carry.
const MaxDescriptionLength = 200

type (
	TransactionType string

	// Period is both the evaluation window of budgets and limits and the
	// repetition step of recurring entries.
	Period string

	GoalType      string
	AssetType     string
	LiabilityType string

	// Transaction is immutable once stored. Amount is always positive, the
	// direction is carried by Type.
	Transaction struct {
		ID                 string          `json:"id"`
		Amount             decimal.Decimal `json:"amount"`
		Type               TransactionType `json:"type"`
		Category           string          `json:"category"`
		Description        string          `json:"description,omitempty"`
		Date               time.Time       `json:"date"`
		Tags               []string        `json:"tags,omitempty"`
		Recurring          bool            `json:"recurring,omitempty"`
		RecurringFrequency Period          `json:"recurringFrequency,omitempty"`
		Notes              string          `json:"notes,omitempty"`
		ReceiptURL         string          `json:"receiptUrl,omitempty"`
		TaxDeductible      bool            `json:"taxDeductible,omitempty"`
		Currency           string          `json:"currency,omitempty"`
		ExchangeRate       decimal.Decimal `json:"exchangeRate,omitempty"`
		CreatedAt          time.Time       `json:"createdAt"`
	}

	// Budget.Spent is a stale advisory field; the evaluator recomputes it.
	Budget struct {
		ID       string          `json:"id"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Period   Period          `json:"period"`
		Spent    decimal.Decimal `json:"spent"`
	}

	SpendingLimit struct {
		ID            string          `json:"id"`
		Category      string          `json:"category"`
		Amount        decimal.Decimal `json:"amount"`
		Period        Period          `json:"period"`
		Spent         decimal.Decimal `json:"spent"`
		Notifications bool            `json:"notifications"`
	}

	Milestone struct {
		ID       string          `json:"id"`
		Amount   decimal.Decimal `json:"amount"`
		Label    string          `json:"label"`
		Achieved bool            `json:"achieved"`
	}

	Goal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    time.Time       `json:"targetDate"`
		Category      string          `json:"category"`
		TrackIncome   bool            `json:"trackIncome"`
		Type          GoalType        `json:"type,omitempty"`
		Milestones    []Milestone     `json:"milestones,omitempty"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	Bill struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		DueDate   time.Time       `json:"dueDate"`
		Category  string          `json:"category"`
		Recurring bool            `json:"recurring"`
		Frequency Period          `json:"frequency,omitempty"`
		Paid      bool            `json:"paid"`
		Notes     string          `json:"notes,omitempty"`
	}

	RecurringTransaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description"`
		Frequency   Period          `json:"frequency"`
		NextDate    time.Time       `json:"nextDate"`
		Active      bool            `json:"active"`
	}

	TransactionTemplate struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description"`
	}

	Asset struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Value       decimal.Decimal `json:"value"`
		Type        AssetType       `json:"type"`
		LastUpdated time.Time       `json:"lastUpdated"`
	}

	Liability struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Amount         decimal.Decimal `json:"amount"`
		Type           LiabilityType   `json:"type"`
		InterestRate   decimal.Decimal `json:"interestRate,omitempty"`
		MinimumPayment decimal.Decimal `json:"minimumPayment,omitempty"`
		LastUpdated    time.Time       `json:"lastUpdated"`
	}

	NetWorthEntry struct {
		Date        time.Time       `json:"date"`
		Assets      decimal.Decimal `json:"assets"`
		Liabilities decimal.Decimal `json:"liabilities"`
		NetWorth    decimal.Decimal `json:"netWorth"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidMonthKey    = errors.New("invalid month key")
	ErrInvalidGoalType    = errors.New("invalid goal type")
	ErrInvalidAssetType   = errors.New("invalid asset type")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (p Period) Validate() error {
	switch p {
	case Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidPeriod
}

func validateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateCategory(c string) error {
	if strings.TrimSpace(c) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := validateCategory(t.Category); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if t.RecurringFrequency != "" {
		if err := t.RecurringFrequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if err := validateCategory(b.Category); err != nil {
		return err
	}
	if err := validateAmount(b.Amount); err != nil {
		return err
	}
	if b.Period != Monthly && b.Period != Yearly {
		return ErrInvalidPeriod
	}
	return nil
}

func (l SpendingLimit) Validate() error {
	if err := validateCategory(l.Category); err != nil {
		return err
	}
	if err := validateAmount(l.Amount); err != nil {
		return err
	}
	return l.Period.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(g.TargetAmount); err != nil {
		return err
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if g.TargetDate.IsZero() {
		return ErrInvalidDate
	}
	if g.TrackIncome {
		if err := validateCategory(g.Category); err != nil {
			return err
		}
	}
	switch g.Type {
	case "", GoalEmergency, GoalVacation, GoalHouse, GoalCar, GoalCustom:
	default:
		return ErrInvalidGoalType
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(b.Amount); err != nil {
		return err
	}
	if b.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if b.Recurring && b.Frequency != Monthly && b.Frequency != Yearly {
		return ErrInvalidPeriod
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := validateCategory(r.Category); err != nil {
		return err
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if len(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if r.NextDate.IsZero() {
		return ErrInvalidDate
	}
	return r.Frequency.Validate()
}

func (t TransactionTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return validateCategory(t.Category)
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Value.IsNegative() {
		return ErrInvalidAmount
	}
	switch a.Type {
	case AssetCash, AssetInvestment, AssetProperty, AssetOther:
		return nil
	}
	return ErrInvalidAssetType
}

func (l Liability) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if l.Amount.IsNegative() || l.MinimumPayment.IsNegative() || l.InterestRate.IsNegative() {
		return ErrInvalidAmount
	}
	switch l.Type {
	case LiabilityCreditCard, LiabilityLoan, LiabilityMortgage, LiabilityOther:
		return nil
	}
	return ErrInvalidAssetType
}

// Instantiate builds a new transaction from the template, dated at the given time.
func (t TransactionTemplate) Instantiate(at time.Time) Transaction {
	return Transaction{
		ID:          NewID(),
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
		Date:        at,
		CreatedAt:   at,
	}
}
