// Package recurring derives the records that active generators (subscriptions
// and the salary config) owe for the current billing period.
package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/centavo-app/centavo/internal/models"
)

// Notes attached to generated records.
const (
	subscriptionNote = "Generated automatically from subscription"
	salaryNote       = "Generated automatically from salary config"
)

// Missing is a pure function of the record set and the current date. It
// returns the generated records that are due but absent, at most one per
// generator per calendar month: an EXPENSE for each active SUBSCRIPTION whose
// billing day has arrived, and an INCOME for the active SALARY_CONFIG once the
// month's last business day has been reached.
//
// Idempotency is keyed on (relatedId, YYYY-MM) against the set itself, so
// re-running after folding the output back in yields nothing new, within a
// session and across restarts.
func Missing(set models.RecordSet, now time.Time) []models.Record {
	month := now.Format(models.MonthLayout)
	var out []models.Record

	for _, sub := range set.OfType(models.TypeSubscription) {
		if !sub.Active {
			continue
		}
		if hasGenerated(set, models.TypeExpense, sub.ID, month) {
			continue
		}
		day := clampDay(sub.BillingDay, now)
		if now.Day() < day {
			continue
		}
		out = append(out, models.Record{
			Type:        models.TypeExpense,
			Date:        fmt.Sprintf("%s-%02d", month, day),
			Description: sub.Description,
			Value:       sub.Value,
			Category:    sub.Category,
			Account:     sub.Account,
			RelatedID:   sub.ID,
			Notes:       subscriptionNote,
		})
	}

	for _, cfg := range set.OfType(models.TypeSalaryConfig) {
		if !cfg.Active {
			continue
		}
		if hasGenerated(set, models.TypeIncome, cfg.ID, month) {
			break
		}
		payday := LastBusinessDay(now)
		// Compare full dates within the month, not bare day-of-month numbers.
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if today.Before(payday) {
			break
		}
		out = append(out, models.Record{
			Type:        models.TypeIncome,
			Date:        payday.Format(models.DateLayout),
			Description: cfg.Description,
			Value:       cfg.Value,
			Account:     cfg.Account,
			RelatedID:   cfg.ID,
			Notes:       salaryNote,
		})
		break // a single salary config drives generation
	}

	return out
}

// LastBusinessDay returns the last business day of t's month: the last
// calendar day, shifted back to the preceding Friday when it falls on a
// Saturday or Sunday.
func LastBusinessDay(t time.Time) time.Time {
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	switch last.Weekday() {
	case time.Saturday:
		last = last.AddDate(0, 0, -1)
	case time.Sunday:
		last = last.AddDate(0, 0, -2)
	}
	return last
}

// hasGenerated reports whether a generated record for this generator already
// exists in the given month.
func hasGenerated(set models.RecordSet, typ models.RecordType, relatedID, month string) bool {
	for _, r := range set {
		if r.Type == typ && r.RelatedID == relatedID && strings.HasPrefix(r.Date, month) {
			return true
		}
	}
	return false
}

// clampDay keeps a configured billing day inside the current month. Days past
// the month's end charge on the last day; misconfigured values below 1 charge
// on the 1st (best-effort, never rejected).
func clampDay(day int, now time.Time) int {
	if day < 1 {
		return 1
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}
