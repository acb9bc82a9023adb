package store

import (
	"fmt"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// PeriodStat counts the stored rows of one period.
type PeriodStat struct {
	Period       model.Period `json:"period"`
	LedgerRows   int          `json:"ledgerRows"`
	HQRows       int          `json:"hqRows"`
	FigureRows   int          `json:"figureRows"`
	TotalRecords int          `json:"totalRecords"`
}

// ListAvailablePeriods lists every period with stored data, most
// recent first.
func (s *Store) ListAvailablePeriods() ([]PeriodStat, error) {
	rows, err := s.db.Query(`
		WITH ym AS (
			SELECT DISTINCT year AS y, month AS m FROM ledger_entries
			UNION
			SELECT DISTINCT year AS y, month AS m FROM hq_cost_items
			UNION
			SELECT DISTINCT year AS y, month AS m FROM operational_figures
		)
		SELECT
			ym.y,
			ym.m,
			(SELECT COUNT(1) FROM ledger_entries WHERE year = ym.y AND month = ym.m) AS ledger_rows,
			(SELECT COUNT(1) FROM hq_cost_items WHERE year = ym.y AND month = ym.m) AS hq_rows,
			(SELECT COUNT(1) FROM operational_figures WHERE year = ym.y AND month = ym.m) AS figure_rows
		FROM ym
		ORDER BY ym.y DESC, ym.m DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query available periods: %w", err)
	}
	defer rows.Close()

	var out []PeriodStat
	for rows.Next() {
		var st PeriodStat
		if err := rows.Scan(&st.Period.Year, &st.Period.Month, &st.LedgerRows, &st.HQRows, &st.FigureRows); err != nil {
			return nil, fmt.Errorf("failed to scan period stat: %w", err)
		}
		st.TotalRecords = st.LedgerRows + st.HQRows + st.FigureRows
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate period stats: %w", err)
	}
	return out, nil
}
