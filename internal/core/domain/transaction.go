// internal/core/domain/transaction.go
package domain

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes purchases (stock in) from sales (stock out).
type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
	TypeSale     TransactionType = "sale"
)

// Prefix returns the transaction ID prefix for the type.
func (t TransactionType) Prefix() string {
	if t == TypePurchase {
		return "PUR"
	}
	return "SAL"
}

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypePurchase || t == TypeSale
}

// TransactionIDPattern is the shape every stored transaction ID must match:
// {PUR|SAL}-{YYYYMMDD}-{RANDOM6}.
var TransactionIDPattern = regexp.MustCompile(`^(PUR|SAL)-\d{8}-[A-Z0-9]{6}$`)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTransactionID builds a new human-readable transaction identifier.
// Collisions are possible with a 6-character random suffix; the record store
// retries on duplicate-key rather than assuming uniqueness.
func GenerateTransactionID(t TransactionType, date time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for ID generation
		panic(fmt.Sprintf("transaction id generation: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", t.Prefix(), date.Format("20060102"), string(buf))
}

// TransactionItem is one immutable line of a transaction. TotalPrice is
// derived from quantity and unit price and recomputed on write whenever it
// drifts beyond AmountEpsilon.
type TransactionItem struct {
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Category   string          `json:"category,omitempty"`
}

// Party identifies the counterparty of a transaction: the supplier of a
// purchase or the customer of a sale.
type Party struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Transaction is a purchase or sale record. Line items are immutable once
// written; status fields (notes, parties) are mutable. The record store is
// the source of truth for what happened: stock levels must always be
// re-derivable by replaying transactions.
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	Type          TransactionType   `json:"type"`
	Date          time.Time         `json:"date"`
	Items         []TransactionItem `json:"items"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Notes         string            `json:"notes,omitempty"`
	Supplier      *Party            `json:"supplier,omitempty"`
	Customer      *Party            `json:"customer,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// maxFutureDate is how far ahead a transaction date may lie.
const maxFutureDate = 24 * time.Hour

// Validate performs domain validation. It is called before any store
// mutation so that bad input never produces partial writes.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return NewValidationError("type", "must be purchase or sale")
	}
	if t.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	if t.Date.After(time.Now().Add(maxFutureDate)) {
		return NewValidationError("date", "cannot be more than one day in the future")
	}
	if len(t.Items) == 0 {
		return NewValidationError("items", "at least one item is required")
	}
	for idx, item := range t.Items {
		if item.ItemName == "" {
			return NewValidationError(fmt.Sprintf("items[%d].item_name", idx), "is required")
		}
		if item.Quantity <= 0 {
			return NewValidationError(fmt.Sprintf("items[%d].quantity", idx), "must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return NewValidationError(fmt.Sprintf("items[%d].unit_price", idx), "cannot be negative")
		}
	}
	if t.Type == TypePurchase {
		if t.Supplier == nil || t.Supplier.Name == "" {
			return NewValidationError("supplier", "is required for purchase transactions")
		}
	}
	return nil
}

// RecomputeTotals re-derives every line total and the transaction total.
// Values within AmountEpsilon of the stored ones are kept as supplied.
func (t *Transaction) RecomputeTotals() {
	sum := decimal.Zero
	for i := range t.Items {
		expected := MulQuantity(t.Items[i].UnitPrice, t.Items[i].Quantity)
		if !AmountsEqual(t.Items[i].TotalPrice, expected) {
			t.Items[i].TotalPrice = expected
		}
		sum = sum.Add(t.Items[i].TotalPrice)
	}
	sum = RoundAmount(sum)
	if !AmountsEqual(t.TotalAmount, sum) {
		t.TotalAmount = sum
	}
}

// PrepareForStorage assigns an identifier if missing, recomputes totals and
// stamps timestamps. Customer data is dropped from purchases and supplier
// data from sales, where they carry no meaning.
func (t *Transaction) PrepareForStorage() {
	if t.TransactionID == "" {
		t.TransactionID = GenerateTransactionID(t.Type, t.Date)
	}

	t.RecomputeTotals()

	switch t.Type {
	case TypePurchase:
		t.Customer = nil
	case TypeSale:
		t.Supplier = nil
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Clone returns a deep copy. Services hand copies to the reconciler so a
// later patch cannot mutate the item set a reversal pass is built from.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	cp.Items = make([]TransactionItem, len(t.Items))
	copy(cp.Items, t.Items)
	if t.Supplier != nil {
		s := *t.Supplier
		cp.Supplier = &s
	}
	if t.Customer != nil {
		c := *t.Customer
		cp.Customer = &c
	}
	return &cp
}
