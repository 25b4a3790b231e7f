// Package parser classifies free-text budgeting commands.
package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Intent is the classified user goal for one turn.
type Intent string

const (
	IntentAddExpense  Intent = "add_expense"
	IntentAddIncome   Intent = "add_income"
	IntentShowSummary Intent = "show_summary"
	IntentUnknown     Intent = "unknown"
)

// Command is the outcome of parsing one user turn. Amount is zero when no
// numeric token was found in the text.
type Command struct {
	Intent Intent
	Amount decimal.Decimal
}

var (
	markupTagRe = regexp.MustCompile(`<[^>]*>`)
	amountRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parse normalizes text and detects the first matching intent. Matching is
// first-match-wins in priority order: add expense, add income, summary. Text
// containing several keywords resolves to the first matched branch.
func Parse(text string) Command {
	normalized := Normalize(text)

	switch {
	case strings.Contains(normalized, "add expense"):
		return Command{Intent: IntentAddExpense, Amount: extractAmount(normalized)}
	case strings.Contains(normalized, "add income"):
		return Command{Intent: IntentAddIncome, Amount: extractAmount(normalized)}
	case strings.Contains(normalized, "summary"):
		return Command{Intent: IntentShowSummary}
	default:
		return Command{Intent: IntentUnknown}
	}
}

// Normalize strips markup tags, unescapes HTML entities, collapses whitespace
// and lowercases the input.
func Normalize(text string) string {
	text = markupTagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")

	return strings.ToLower(text)
}

// extractAmount returns the first contiguous numeric token as a decimal, after
// stripping thousands-separator commas. Zero means no amount was detected.
func extractAmount(text string) decimal.Decimal {
	token := amountRe.FindString(strings.ReplaceAll(text, ",", ""))
	if token == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero
	}

	return amount
}
