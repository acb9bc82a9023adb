// Package pnl computes the industrial and managed profit-and-loss
// statements per operating unit and the group consolidation.
package pnl

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Industrial aggregates a period's ledger entries into one pre-allocation
// P&L line per registered active unit. Units without activity still get a
// zero line, so downstream consumers can rely on complete coverage.
// Entries referencing unknown units or voices abort the period.
func Industrial(cfg *config.Config, period model.Period, entries []model.LedgerEntry) ([]model.IndustrialLine, error) {
	units := cfg.ActiveUnits()
	byUnit := make(map[string]*model.IndustrialLine, len(units))
	for _, code := range units {
		byUnit[code] = newIndustrialLine(code, period)
	}

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if e.Period != period {
			return nil, &model.DataIntegrityError{
				Period: e.Period, Unit: e.Unit, Voice: string(e.Voice),
				Reason: "entry outside requested period " + period.String(),
			}
		}
		line, ok := byUnit[e.Unit]
		if !ok {
			return nil, &model.DataIntegrityError{
				Period: period, Unit: e.Unit, Voice: string(e.Voice),
				Reason: "unit not in registry",
			}
		}

		cat, _ := e.Voice.Category()
		switch cat {
		case model.VoiceRevenue:
			line.RevenueDetail[e.Voice] = line.RevenueDetail[e.Voice].Add(e.Amount)
		case model.VoiceDirectCost:
			line.CostDetail[e.Voice] = line.CostDetail[e.Voice].Add(e.Amount)
		default:
			return nil, &model.DataIntegrityError{
				Period: period, Unit: e.Unit, Voice: string(e.Voice),
				Reason: "voice is not a unit ledger voice (revenue or direct cost)",
			}
		}
	}

	lines := make([]model.IndustrialLine, 0, len(byUnit))
	for _, code := range units {
		line := byUnit[code]
		closeIndustrialLine(line)
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Unit < lines[j].Unit })
	return lines, nil
}

func newIndustrialLine(unit string, period model.Period) *model.IndustrialLine {
	return &model.IndustrialLine{
		Unit:          unit,
		Period:        period,
		RevenueDetail: make(map[model.VoiceCode]decimal.Decimal),
		CostDetail:    make(map[model.VoiceCode]decimal.Decimal),
	}
}

// closeIndustrialLine fills the macro-group subtotals and the margin.
func closeIndustrialLine(line *model.IndustrialLine) {
	line.RevenueConvention = sumVoices(line.RevenueDetail, model.RevenueConvention)
	line.RevenuePrivate = sumVoices(line.RevenueDetail, model.RevenuePrivate)
	line.RevenueOther = sumVoices(line.RevenueDetail, model.RevenueOther)
	line.TotalRevenue = line.RevenueConvention.Add(line.RevenuePrivate).Add(line.RevenueOther)

	line.CostPersonnel = sumVoices(line.CostDetail, model.DirectPersonnel)
	line.CostPurchases = sumVoices(line.CostDetail, model.DirectPurchases)
	line.CostServices = sumVoices(line.CostDetail, model.DirectServices)
	line.CostDepreciation = sumVoices(line.CostDetail, model.DirectDepreciation)
	line.TotalDirectCost = line.CostPersonnel.Add(line.CostPurchases).
		Add(line.CostServices).Add(line.CostDepreciation)

	line.Margin = line.TotalRevenue.Sub(line.TotalDirectCost)
	line.MarginPct = ratio(line.Margin, line.TotalRevenue)
}

func sumVoices(detail map[model.VoiceCode]decimal.Decimal, voices []model.VoiceCode) decimal.Decimal {
	total := decimal.Zero
	for _, v := range voices {
		if amt, ok := detail[v]; ok {
			total = total.Add(amt)
		}
	}
	return total
}

// ratio returns num/den as a float, zero-guarded. A zero denominator is a
// valid business case (inactive unit), not an error.
func ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	f, _ := num.Div(den).Float64()
	return f
}
