package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ReplaceOperationalFigures swaps the per-unit measurements of one period.
func (s *Store) ReplaceOperationalFigures(period model.Period, figures []model.OperationalFigures) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM operational_figures WHERE year = ? AND month = ?`,
		period.Year, period.Month,
	); err != nil {
		return fmt.Errorf("failed to clear operational figures for %s: %w", period, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO operational_figures (
			unit_code, year, month,
			bed_days_served, bed_days_avail, headcount,
			payslips, invoices, workstations, nurse_aide_hours, purchases_eur
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range figures {
		if _, err := stmt.Exec(
			f.Unit, f.Period.Year, f.Period.Month,
			f.BedDaysServed, f.BedDaysAvail, f.Headcount,
			f.Payslips, f.Invoices, f.Workstations, f.NurseAideHrs, f.PurchasesEUR,
		); err != nil {
			return fmt.Errorf("failed to insert operational figures %s: %w", f.Unit, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// OperationalFigures loads the per-unit measurements of one period,
// keyed by unit code.
func (s *Store) OperationalFigures(period model.Period) (map[string]model.OperationalFigures, error) {
	rows, err := s.db.Query(`
		SELECT unit_code, year, month,
			bed_days_served, bed_days_avail, headcount,
			payslips, invoices, workstations, nurse_aide_hours, purchases_eur
		FROM operational_figures
		WHERE year = ? AND month = ?
	`, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query operational figures for %s: %w", period, err)
	}
	defer rows.Close()

	out := make(map[string]model.OperationalFigures)
	for rows.Next() {
		var f model.OperationalFigures
		if err := rows.Scan(
			&f.Unit, &f.Period.Year, &f.Period.Month,
			&f.BedDaysServed, &f.BedDaysAvail, &f.Headcount,
			&f.Payslips, &f.Invoices, &f.Workstations, &f.NurseAideHrs, &f.PurchasesEUR,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operational figures: %w", err)
		}
		out[f.Unit] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operational figures: %w", err)
	}
	return out, nil
}

// SaveFinanceFigures upserts the group balances of one period.
func (s *Store) SaveFinanceFigures(f model.FinanceFigures) error {
	_, err := s.db.Exec(`
		INSERT INTO finance_figures (
			year, month, receivables_public, receivables_private,
			payables, cash, avg_monthly_outflow, annual_debt_service
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (year, month) DO UPDATE SET
			receivables_public = excluded.receivables_public,
			receivables_private = excluded.receivables_private,
			payables = excluded.payables,
			cash = excluded.cash,
			avg_monthly_outflow = excluded.avg_monthly_outflow,
			annual_debt_service = excluded.annual_debt_service
	`, f.Period.Year, f.Period.Month,
		f.ReceivablesPublic.String(), f.ReceivablesPrivate.String(),
		f.Payables.String(), f.Cash.String(),
		f.AvgMonthlyOutflow.String(), f.AnnualDebtService.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save finance figures for %s: %w", f.Period, err)
	}
	return nil
}

// FinanceFigures loads the group balances of one period; nil when the
// period has none.
func (s *Store) FinanceFigures(period model.Period) (*model.FinanceFigures, error) {
	row := s.db.QueryRow(`
		SELECT year, month, receivables_public, receivables_private,
			payables, cash, avg_monthly_outflow, annual_debt_service
		FROM finance_figures
		WHERE year = ? AND month = ?
	`, period.Year, period.Month)

	var (
		f                                 model.FinanceFigures
		recPub, recPriv, pay, cash, out, debt string
	)
	err := row.Scan(&f.Period.Year, &f.Period.Month, &recPub, &recPriv, &pay, &cash, &out, &debt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query finance figures for %s: %w", period, err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&f.ReceivablesPublic, recPub}, {&f.ReceivablesPrivate, recPriv},
		{&f.Payables, pay}, {&f.Cash, cash},
		{&f.AvgMonthlyOutflow, out}, {&f.AnnualDebtService, debt},
	}
	for _, fd := range fields {
		if *fd.dst, err = decimal.NewFromString(fd.src); err != nil {
			return nil, fmt.Errorf("corrupt finance amount %q: %w", fd.src, err)
		}
	}
	return &f, nil
}
