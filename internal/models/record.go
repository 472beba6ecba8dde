// Package models defines the domain types for Centavo.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by Record.Date.
const DateLayout = "2006-01-02"

// MonthLayout is the YYYY-MM prefix used to scope records to a calendar month.
const MonthLayout = "2006-01"

// RecordType tags a Record with the transaction kind it represents.
type RecordType string

// Record types.
const (
	TypeExpense            RecordType = "EXPENSE"
	TypeIncome             RecordType = "INCOME"
	TypeAccount            RecordType = "ACCOUNT"
	TypeCategory           RecordType = "CATEGORY"
	TypePaymentMethod      RecordType = "PAYMENT_METHOD"
	TypePayable            RecordType = "PAYABLE"
	TypeReceivable         RecordType = "RECEIVABLE"
	TypeBudgetDistribution RecordType = "BUDGET_DISTRIBUTION"
	TypeSubscription       RecordType = "SUBSCRIPTION"
	TypeSalaryConfig       RecordType = "SALARY_CONFIG"
)

// Status marks whether a PAYABLE or RECEIVABLE has been settled.
type Status string

// Settlement statuses.
const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Record is the single flat entity underlying every transaction kind.
// Different kinds use different subsets of the optional fields; references
// (Category, Account, PaymentMethod, RelatedID) point at other Records by id
// and are not enforced as foreign keys; readers resolve dangling references
// to a placeholder label instead of rejecting them.
type Record struct {
	ID            string          `json:"id"`
	Type          RecordType      `json:"type"`
	Date          string          `json:"date,omitempty"` // YYYY-MM-DD
	Description   string          `json:"description,omitempty"`
	Value         decimal.Decimal `json:"value"`
	Category      string          `json:"category,omitempty"`
	Account       string          `json:"account,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        Status          `json:"status,omitempty"`
	BillingDay    int             `json:"billingDay,omitempty"` // 1-31, SUBSCRIPTION only
	Active        bool            `json:"active,omitempty"`     // SUBSCRIPTION / SALARY_CONFIG
	RelatedID     string          `json:"relatedId,omitempty"`  // generator that produced this record
	Notes         string          `json:"notes,omitempty"`
}

// Validate checks the fields a Record of its type is expected to carry.
func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(
			TypeExpense, TypeIncome, TypeAccount, TypeCategory, TypePaymentMethod,
			TypePayable, TypeReceivable, TypeBudgetDistribution, TypeSubscription, TypeSalaryConfig,
		)),
		validation.Field(&r.Date, validation.When(r.Date != "", validation.Date(DateLayout))),
		validation.Field(&r.Status, validation.When(r.Status != "", validation.In(StatusPending, StatusPaid))),
		validation.Field(&r.BillingDay, validation.When(r.Type == TypeSubscription,
			validation.Required, validation.Min(1), validation.Max(31))),
	)
}

// RecordPatch carries a partial update; nil fields are left untouched.
type RecordPatch struct {
	Date          *string          `json:"date,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Value         *decimal.Decimal `json:"value,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Account       *string          `json:"account,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	Status        *Status          `json:"status,omitempty"`
	BillingDay    *int             `json:"billingDay,omitempty"`
	Active        *bool            `json:"active,omitempty"`
	RelatedID     *string          `json:"relatedId,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// Apply merges the set fields of the patch into r. ID and Type are immutable.
func (p RecordPatch) Apply(r *Record) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Value != nil {
		r.Value = *p.Value
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Account != nil {
		r.Account = *p.Account
	}
	if p.PaymentMethod != nil {
		r.PaymentMethod = *p.PaymentMethod
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.BillingDay != nil {
		r.BillingDay = *p.BillingDay
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
	if p.RelatedID != nil {
		r.RelatedID = *p.RelatedID
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

// RecordSet is the full in-memory collection of records. Insertion order is
// preserved for display; correctness never depends on it.
type RecordSet []Record

// Clone returns an independent copy of the set.
func (s RecordSet) Clone() RecordSet {
	if s == nil {
		return nil
	}
	out := make(RecordSet, len(s))
	copy(out, s)
	return out
}

// ByID returns the record with the given id, if present.
func (s RecordSet) ByID(id string) (Record, bool) {
	for _, r := range s {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// OfType returns all records of the given type, in set order.
func (s RecordSet) OfType(t RecordType) RecordSet {
	var out RecordSet
	for _, r := range s {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// InMonth returns all records whose date falls in the given YYYY-MM month.
func (s RecordSet) InMonth(month string) RecordSet {
	var out RecordSet
	for _, r := range s {
		if len(r.Date) >= len(month) && r.Date[:len(month)] == month {
			out = append(out, r)
		}
	}
	return out
}
