package pnl

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Managed combines each unit's industrial line with its allocated
// headquarters shares and other-cost attributions. The margin identity
// holds exactly: MOL-G = MOL-I - allocated HQ cost + allocated HQ income.
// otherCosts carries the AC-voice amounts attributed per unit and may be
// nil when the period has none.
func Managed(industrial []model.IndustrialLine, alloc *model.AllocationSet, otherCosts map[string]map[model.VoiceCode]decimal.Decimal) ([]model.ManagedLine, error) {
	costByUnit := alloc.CostByUnit()
	incomeByUnit := alloc.IncomeByUnit()

	// Allocation rows must never target a unit outside the industrial
	// coverage; that would mean the allocator and the calculator saw
	// different registries.
	covered := make(map[string]struct{}, len(industrial))
	for _, line := range industrial {
		covered[line.Unit] = struct{}{}
	}
	for _, r := range alloc.Results {
		if _, ok := covered[r.Unit]; !ok {
			return nil, &model.DataIntegrityError{
				Period: alloc.Period, Unit: r.Unit, Voice: string(r.Voice),
				Reason: "allocation targets unit without an industrial line",
			}
		}
	}

	lines := make([]model.ManagedLine, 0, len(industrial))
	for _, ind := range industrial {
		hqDetail := alloc.VoiceByUnit(ind.Unit)
		hqCost := costByUnit[ind.Unit]
		hqIncome := incomeByUnit[ind.Unit]

		m := model.ManagedLine{
			Unit:             ind.Unit,
			Period:           ind.Period,
			TotalRevenue:     ind.TotalRevenue,
			TotalDirectCost:  ind.TotalDirectCost,
			IndustrialMargin: ind.Margin,

			HQDetail:          hqDetail,
			HQCentralServices: sumVoices(hqDetail, model.HQCentralServices),
			HQGovernance:      sumVoices(hqDetail, model.HQGovernance),
			HQCommon:          sumVoices(hqDetail, model.HQCommonVoices),
			HQCostAllocated:   hqCost,
			HQIncomeAllocated: hqIncome,
		}

		m.Margin = ind.Margin.Sub(hqCost).Add(hqIncome)
		m.MarginPct = ratio(m.Margin, m.TotalRevenue)

		detail := otherCosts[ind.Unit]
		m.OtherDetail = make(map[model.VoiceCode]decimal.Decimal, len(detail))
		for v, amt := range detail {
			if cat, ok := v.Category(); !ok || cat != model.VoiceOtherCost {
				return nil, &model.DataIntegrityError{
					Period: ind.Period, Unit: ind.Unit, Voice: string(v),
					Reason: "not an other-cost (AC) voice",
				}
			}
			m.OtherDetail[v] = amt
		}
		m.OtherCosts = sumVoices(m.OtherDetail, model.OtherCosts)
		m.NetResult = m.Margin.Sub(m.OtherCosts)
		m.NetMarginPct = ratio(m.NetResult, m.TotalRevenue)

		lines = append(lines, m)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Unit < lines[j].Unit })
	return lines, nil
}

// Consolidate sums the unit managed lines into the group statement and
// deducts the headquarters items that stayed unallocated. Unallocated
// amounts never touch a unit line; they appear only here.
func Consolidate(period model.Period, managed []model.ManagedLine, alloc *model.AllocationSet) model.ConsolidatedPnL {
	c := model.ConsolidatedPnL{
		Period:            period,
		Units:             len(managed),
		UnallocatedDetail: make(map[model.VoiceCode]decimal.Decimal, len(alloc.Unallocated)),
	}

	for _, m := range managed {
		c.TotalRevenue = c.TotalRevenue.Add(m.TotalRevenue)
		c.TotalDirectCost = c.TotalDirectCost.Add(m.TotalDirectCost)
		c.IndustrialMargin = c.IndustrialMargin.Add(m.IndustrialMargin)
		c.HQCostAllocated = c.HQCostAllocated.Add(m.HQCostAllocated)
		c.HQIncomeAllocated = c.HQIncomeAllocated.Add(m.HQIncomeAllocated)
		c.ManagedMargin = c.ManagedMargin.Add(m.Margin)
		c.OtherCosts = c.OtherCosts.Add(m.OtherCosts)
	}

	for voice, amt := range alloc.Unallocated {
		c.UnallocatedDetail[voice] = amt
	}
	c.UnallocatedHQ = alloc.TotalUnallocated()
	c.MarginAfterUnalloc = c.ManagedMargin.Sub(c.UnallocatedHQ).Add(alloc.TotalUnallocatedIncome())
	c.NetResult = c.MarginAfterUnalloc.Sub(c.OtherCosts)
	c.NetMarginPct = ratio(c.NetResult, c.TotalRevenue)
	return c
}

// Compare sets a unit's industrial line against its managed line,
// quantifying the margin erosion caused by the headquarters charge.
func Compare(ind model.IndustrialLine, man model.ManagedLine) model.PnLComparison {
	erosion := ind.Margin.Sub(man.Margin)
	return model.PnLComparison{
		Unit:             ind.Unit,
		Period:           ind.Period,
		IndustrialMargin: ind.Margin,
		ManagedMargin:    man.Margin,
		HQCharge:         man.HQCostAllocated,
		MarginErosion:    erosion,
		MarginErosionPct: ratio(erosion, ind.Margin),
		HQWeightPct:      ratio(man.HQCostAllocated, ind.TotalRevenue),
	}
}
