package models

import "time"

// ExpenseCategory enumerates the accepted expense categories.
type ExpenseCategory string

const (
	CategoryGroceries ExpenseCategory = "Lebensmittel"
	CategoryDelivery  ExpenseCategory = "Lieferservice"
	CategoryDrugstore ExpenseCategory = "Drogerieartikel"
	CategoryVacation  ExpenseCategory = "Urlaubsreisen"
	CategoryClothing  ExpenseCategory = "Kleidung"
	CategoryOther     ExpenseCategory = "Sonstiges"
)

// Valid reports whether c is one of the known categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryGroceries, CategoryDelivery, CategoryDrugstore,
		CategoryVacation, CategoryClothing, CategoryOther:
		return true
	}
	return false
}

// ValidCurrencies is the set of accepted ISO 4217 currency codes.
var ValidCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {},
	"AUD": {}, "CAD": {}, "CHF": {}, "CNY": {},
}

// Expense is a single expense recorded by a user. ReceiptKey is the object
// storage key of the attached receipt, empty when none was uploaded.
type Expense struct {
	ID          string
	UserID      string
	Title       string
	Amount      float64
	Currency    string
	Description string
	Category    ExpenseCategory
	ExpenseDate time.Time
	Vendor      string
	ReceiptKey  string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
