// Package report computes read-side projections over a record snapshot. All
// functions are pure; nothing here mutates or persists.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
)

// UnknownLabel stands in for references to records that no longer exist, such
// as expenses pointing at a deleted category.
const UnknownLabel = "(unknown)"

// CategoryTotal is one slice of the month's expense breakdown.
type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Label      string          `json:"label"`
	Total      decimal.Decimal `json:"total"`
}

// BudgetLine compares a category's budget against its accumulated spending.
// Actuals are all-time, matching how budgets are tracked on the ledger side.
type BudgetLine struct {
	CategoryID string          `json:"categoryId"`
	Label      string          `json:"label"`
	Budget     decimal.Decimal `json:"budget"`
	Actual     decimal.Decimal `json:"actual"`
	UsagePct   float64         `json:"usagePct"`
}

// Summary is the month's financial overview.
type Summary struct {
	Month             string          `json:"month"`
	Income            decimal.Decimal `json:"income"`
	Expenses          decimal.Decimal `json:"expenses"`
	Balance           decimal.Decimal `json:"balance"`
	Categories        []CategoryTotal `json:"categories"`
	Budget            []BudgetLine    `json:"budget"`
	PendingPayable    decimal.Decimal `json:"pendingPayable"`
	PendingReceivable decimal.Decimal `json:"pendingReceivable"`
}

// MonthSummary projects the snapshot for one YYYY-MM month. Income, expense
// and category figures are month-filtered; budget actuals and pending ledger
// totals are not, since a payable stays owed regardless of which month it
// belongs to.
func MonthSummary(set models.RecordSet, month string) Summary {
	s := Summary{
		Month:             month,
		Income:            decimal.Zero,
		Expenses:          decimal.Zero,
		PendingPayable:    decimal.Zero,
		PendingReceivable: decimal.Zero,
	}

	labels := categoryLabels(set)
	byCategory := map[string]decimal.Decimal{}

	for _, r := range set {
		switch r.Type {
		case models.TypeIncome:
			if strings.HasPrefix(r.Date, month) {
				s.Income = s.Income.Add(r.Value)
			}
		case models.TypeExpense:
			if strings.HasPrefix(r.Date, month) {
				s.Expenses = s.Expenses.Add(r.Value)
				byCategory[r.Category] = byCategory[r.Category].Add(r.Value)
			}
		case models.TypePayable:
			if r.Status == models.StatusPending {
				s.PendingPayable = s.PendingPayable.Add(r.Value)
			}
		case models.TypeReceivable:
			if r.Status == models.StatusPending {
				s.PendingReceivable = s.PendingReceivable.Add(r.Value)
			}
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)

	for id, total := range byCategory {
		if total.IsZero() {
			continue
		}
		s.Categories = append(s.Categories, CategoryTotal{
			CategoryID: id,
			Label:      labelFor(labels, id),
			Total:      total,
		})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		return s.Categories[j].Total.LessThan(s.Categories[i].Total)
	})

	s.Budget = budgetLines(set, labels)
	return s
}

// budgetLines builds one line per category, comparing its budget to all-time
// expense totals. Categories without a budget record show a zero budget.
func budgetLines(set models.RecordSet, labels map[string]string) []BudgetLine {
	budgets := map[string]decimal.Decimal{}
	for _, r := range set.OfType(models.TypeBudgetDistribution) {
		budgets[r.Category] = r.Value
	}

	actuals := map[string]decimal.Decimal{}
	for _, r := range set.OfType(models.TypeExpense) {
		actuals[r.Category] = actuals[r.Category].Add(r.Value)
	}

	var lines []BudgetLine
	for _, cat := range set.OfType(models.TypeCategory) {
		budget := budgets[cat.ID]
		actual := actuals[cat.ID]
		line := BudgetLine{
			CategoryID: cat.ID,
			Label:      labelFor(labels, cat.ID),
			Budget:     budget,
			Actual:     actual,
		}
		if budget.IsPositive() {
			pct, _ := actual.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
			line.UsagePct = pct
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Label < lines[j].Label })
	return lines
}

func categoryLabels(set models.RecordSet) map[string]string {
	labels := map[string]string{}
	for _, r := range set.OfType(models.TypeCategory) {
		labels[r.ID] = r.Description
	}
	return labels
}

func labelFor(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return UnknownLabel
}
