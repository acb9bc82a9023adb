package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ReplaceSchedule swaps the whole treasury schedule. The schedule is a
// live forward-looking document, not period data, so it is replaced in
// full on every import.
func (s *Store) ReplaceSchedule(items []model.ScheduleItem, sourceFile string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedule_items`); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO schedule_items (due_date, inflow, category, amount, counterparty, confirmed, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(
			it.DueDate, boolToInt(it.Inflow), it.Category,
			it.Amount.String(), it.Counterparty, boolToInt(it.Confirmed), sourceFile,
		); err != nil {
			return fmt.Errorf("failed to insert schedule item %s: %w", it.DueDate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Schedule loads every schedule item between the two ISO dates
// (inclusive), ordered by due date.
func (s *Store) Schedule(fromDate, toDate string) ([]model.ScheduleItem, error) {
	rows, err := s.db.Query(`
		SELECT due_date, inflow, category, amount, counterparty, confirmed
		FROM schedule_items
		WHERE due_date >= ? AND due_date <= ?
		ORDER BY due_date
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var out []model.ScheduleItem
	for rows.Next() {
		var (
			it                model.ScheduleItem
			inflow, confirmed int
			amount            string
		)
		if err := rows.Scan(&it.DueDate, &inflow, &it.Category, &amount, &it.Counterparty, &confirmed); err != nil {
			return nil, fmt.Errorf("failed to scan schedule item: %w", err)
		}
		it.Inflow = inflow != 0
		it.Confirmed = confirmed != 0
		if it.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt schedule amount %q: %w", amount, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule items: %w", err)
	}
	return out, nil
}
