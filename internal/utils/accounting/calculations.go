package accounting

import (
	"fmt"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateLine checks the single-leg invariant: exactly one of debit/credit is
// greater than zero and the other is exactly zero, both non-negative.
func ValidateLine(line domain.EntryLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("line amounts must be non-negative for account %s", line.AccountCode)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("exactly one of debit/credit must be positive for account %s (debit=%s credit=%s)",
			line.AccountCode, line.Debit.String(), line.Credit.String())
	}
	return nil
}

// ValidateBalancedLines checks the entry balance invariant: every line is
// well-formed and sum(debit) == sum(credit).
func ValidateBalancedLines(lines []domain.EntryLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("entry must have at least one line")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("entry does not balance: total debit is %s and total credit is %s",
			totalDebit.String(), totalCredit.String())
	}
	return nil
}

// Totals returns (sum of debits, sum of credits) over the lines.
func Totals(lines []domain.EntryLine) (decimal.Decimal, decimal.Decimal) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	return totalDebit, totalCredit
}

// MirrorLines produces the reversal legs for the given posted lines: debits
// become credits and credits become debits. When partialAmount is non-nil the
// legs are scaled by partialAmount/originalTotal, rounded to 2 decimal places,
// with any rounding remainder folded into the last debit and last credit leg
// so the mirrored set still balances exactly.
func MirrorLines(lines []domain.EntryLine, partialAmount *decimal.Decimal) ([]domain.EntryLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("cannot mirror an entry with no lines")
	}

	originalTotal, _ := Totals(lines)
	ratio := decimal.NewFromInt(1)
	target := originalTotal
	if partialAmount != nil {
		if partialAmount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("partial amount must be positive, got %s", partialAmount.String())
		}
		if partialAmount.GreaterThan(originalTotal) {
			return nil, fmt.Errorf("partial amount %s exceeds original total %s", partialAmount.String(), originalTotal.String())
		}
		ratio = partialAmount.Div(originalTotal)
		target = *partialAmount
	}

	mirrored := make([]domain.EntryLine, len(lines))
	lastDebitIdx, lastCreditIdx := -1, -1
	debitSum, creditSum := decimal.Zero, decimal.Zero
	for i, line := range lines {
		m := domain.EntryLine{
			AccountCode: line.AccountCode,
			Description: line.Description,
			CostCenter:  line.CostCenter,
			Project:     line.Project,
			// Legs swap sides on reversal.
			Debit:  line.Credit.Mul(ratio).Round(2),
			Credit: line.Debit.Mul(ratio).Round(2),
		}
		if m.Debit.IsPositive() {
			lastDebitIdx = i
			debitSum = debitSum.Add(m.Debit)
		}
		if m.Credit.IsPositive() {
			lastCreditIdx = i
			creditSum = creditSum.Add(m.Credit)
		}
		mirrored[i] = m
	}

	// Fold scaling remainders into the last leg of each side so the mirrored
	// set hits the target total exactly.
	if lastDebitIdx >= 0 {
		mirrored[lastDebitIdx].Debit = mirrored[lastDebitIdx].Debit.Add(target.Sub(debitSum))
	}
	if lastCreditIdx >= 0 {
		mirrored[lastCreditIdx].Credit = mirrored[lastCreditIdx].Credit.Add(target.Sub(creditSum))
	}

	if err := ValidateBalancedLines(mirrored); err != nil {
		return nil, fmt.Errorf("mirrored lines do not balance: %w", err)
	}
	return mirrored, nil
}
