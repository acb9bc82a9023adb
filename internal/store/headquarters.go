package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ReplaceHQItems swaps the stored headquarters items of one period.
func (s *Store) ReplaceHQItems(period model.Period, items []model.HeadquartersCostItem, sourceFile string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM hq_cost_items WHERE year = ? AND month = ?`,
		period.Year, period.Month,
	); err != nil {
		return fmt.Errorf("failed to clear hq items for %s: %w", period, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO hq_cost_items (voice_code, year, month, amount, driver, income, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(
			string(it.Voice), it.Period.Year, it.Period.Month,
			it.Amount.String(), string(it.Driver), boolToInt(it.Income), sourceFile,
		); err != nil {
			return fmt.Errorf("failed to insert hq item %s: %w", it.Voice, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HQItems loads the headquarters items of one period.
func (s *Store) HQItems(period model.Period) ([]model.HeadquartersCostItem, error) {
	rows, err := s.db.Query(`
		SELECT voice_code, year, month, amount, driver, income
		FROM hq_cost_items
		WHERE year = ? AND month = ?
		ORDER BY voice_code, income
	`, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query hq items for %s: %w", period, err)
	}
	defer rows.Close()

	var out []model.HeadquartersCostItem
	for rows.Next() {
		var (
			it     model.HeadquartersCostItem
			voice  string
			amount string
			driver string
			income int
		)
		if err := rows.Scan(&voice, &it.Period.Year, &it.Period.Month, &amount, &driver, &income); err != nil {
			return nil, fmt.Errorf("failed to scan hq item: %w", err)
		}
		it.Voice = model.VoiceCode(voice)
		it.Driver = model.Driver(driver)
		it.Income = income != 0
		if it.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt hq amount %q: %w", amount, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hq items: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
