package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ReplaceBudgetLines swaps the stored budget of one period for the
// given set, in one transaction.
func (s *Store) ReplaceBudgetLines(period model.Period, entries []model.LedgerEntry, sourceFile string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM budget_lines WHERE year = ? AND month = ?`,
		period.Year, period.Month,
	); err != nil {
		return fmt.Errorf("failed to clear budget for %s: %w", period, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO budget_lines (unit_code, voice_code, year, month, amount, source_file)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.Unit, string(e.Voice), e.Period.Year, e.Period.Month,
			e.Amount.String(), sourceFile,
		); err != nil {
			return fmt.Errorf("failed to insert budget line %s/%s: %w", e.Unit, e.Voice, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// BudgetLines loads the budget of one period, ordered by unit and voice.
func (s *Store) BudgetLines(period model.Period) ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT unit_code, voice_code, year, month, amount
		FROM budget_lines
		WHERE year = ? AND month = ?
		ORDER BY unit_code, voice_code
	`, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget for %s: %w", period, err)
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var (
			e      model.LedgerEntry
			voice  string
			amount string
		)
		if err := rows.Scan(&e.Unit, &voice, &e.Period.Year, &e.Period.Month, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget line: %w", err)
		}
		e.Voice = model.VoiceCode(voice)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt budget amount %q: %w", amount, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget lines: %w", err)
	}
	return out, nil
}
