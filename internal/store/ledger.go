package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ReplaceLedgerEntries swaps the stored ledger of one period for the
// given set, in one transaction. A re-import of the same workbook is
// therefore idempotent.
func (s *Store) ReplaceLedgerEntries(period model.Period, entries []model.LedgerEntry, sourceFile string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM ledger_entries WHERE year = ? AND month = ?`,
		period.Year, period.Month,
	); err != nil {
		return fmt.Errorf("failed to clear ledger for %s: %w", period, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ledger_entries (unit_code, voice_code, year, month, amount, quantity, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var qty interface{}
		if e.Quantity != nil {
			qty = *e.Quantity
		}
		if _, err := stmt.Exec(
			e.Unit, string(e.Voice), e.Period.Year, e.Period.Month,
			e.Amount.String(), qty, sourceFile,
		); err != nil {
			return fmt.Errorf("failed to insert ledger entry %s/%s: %w", e.Unit, e.Voice, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LedgerEntries loads the ledger of one period, ordered by unit and voice.
func (s *Store) LedgerEntries(period model.Period) ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT unit_code, voice_code, year, month, amount, quantity
		FROM ledger_entries
		WHERE year = ? AND month = ?
		ORDER BY unit_code, voice_code
	`, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for %s: %w", period, err)
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var (
			e      model.LedgerEntry
			voice  string
			amount string
			qty    sql.NullFloat64
		)
		if err := rows.Scan(&e.Unit, &voice, &e.Period.Year, &e.Period.Month, &amount, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Voice = model.VoiceCode(voice)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt ledger amount %q: %w", amount, err)
		}
		if qty.Valid {
			q := qty.Float64
			e.Quantity = &q
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return out, nil
}
