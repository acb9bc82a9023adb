// Package kpi derives the controlling indicator catalog from the P&L
// outputs and externally measured figures, and classifies each value
// against the configured traffic-light thresholds.
package kpi

import (
	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Classify evaluates a raw value against a threshold pair. A nil
// threshold yields StatusUndetermined; callers never receive a guessed
// color for an unconfigured code.
func Classify(value float64, th *model.Threshold) model.Status {
	if th == nil {
		return model.StatusUndetermined
	}
	if th.Direction == model.LowerIsBetter {
		switch {
		case value <= th.Green:
			return model.StatusGreen
		case value <= th.Yellow:
			return model.StatusYellow
		default:
			return model.StatusRed
		}
	}
	switch {
	case value >= th.Green:
		return model.StatusGreen
	case value >= th.Yellow:
		return model.StatusYellow
	default:
		return model.StatusRed
	}
}

func build(cfg *config.Config, code model.KPICode, unit string, period model.Period, value float64) model.KPI {
	k := model.KPI{
		Code:   code,
		Name:   code.Name(),
		Unit:   unit,
		Period: period,
		Value:  value,
	}
	if th, ok := cfg.ThresholdFor(code); ok {
		k.Threshold = &th
		k.Status = Classify(value, &th)
	} else {
		k.Status = model.StatusUndetermined
	}
	return k
}

// Operational computes the per-unit indicator block: occupancy, revenue
// and personnel cost per bed-day, industrial margin ratio, and care
// hours per patient day. The bed-day and hour figures are external
// measurements, never inferred from the ledger.
func Operational(cfg *config.Config, ind *model.IndustrialLine, fig model.OperationalFigures) []model.KPI {
	served := float64(fig.BedDaysServed)
	avail := float64(fig.BedDaysAvail)

	occupancy := 0.0
	if avail > 0 {
		occupancy = served / avail
	}

	inpatient := ind.RevenueDetail[model.RevSSNInpatient].
		Add(ind.RevenueDetail[model.RevPrivInpatient])
	revenuePerDay := 0.0
	personnelPerDay := 0.0
	hoursPerPatient := 0.0
	if served > 0 {
		revenuePerDay = toFloat(inpatient) / served
		personnelPerDay = toFloat(ind.CostPersonnel) / served
		hoursPerPatient = fig.NurseAideHrs / served
	}

	return []model.KPI{
		build(cfg, model.KPIOccupancy, ind.Unit, ind.Period, occupancy),
		build(cfg, model.KPIRevenuePerDay, ind.Unit, ind.Period, revenuePerDay),
		build(cfg, model.KPIPersonnelPerDay, ind.Unit, ind.Period, personnelPerDay),
		build(cfg, model.KPIIndustrialMgn, ind.Unit, ind.Period, ind.MarginPct),
		build(cfg, model.KPIHoursPerPatient, ind.Unit, ind.Period, hoursPerPatient),
	}
}

// EconomicInput carries the consolidated figures the economic block
// needs beyond the consolidated statement itself.
type EconomicInput struct {
	PersonnelCost     decimal.Decimal // group direct personnel, CD01-CD05
	HQCostTotal       decimal.Decimal // allocated plus unallocated headquarters cost
	EBITDA            decimal.Decimal
	AnnualDebtService decimal.Decimal
}

// Economic computes the consolidated margin, headquarters-weight,
// personnel-ratio and debt-service indicators.
func Economic(cfg *config.Config, cons *model.ConsolidatedPnL, in EconomicInput) []model.KPI {
	revenue := toFloat(cons.TotalRevenue)

	molPct := 0.0
	hqWeight := 0.0
	persPct := 0.0
	if revenue > 0 {
		molPct = toFloat(cons.ManagedMargin) / revenue
		hqWeight = toFloat(in.HQCostTotal) / revenue
		persPct = toFloat(in.PersonnelCost) / revenue
	}

	debtService := toFloat(in.AnnualDebtService)
	dscr := 0.0
	if debtService > 0 {
		dscr = toFloat(in.EBITDA) / debtService
	} else if in.EBITDA.Sign() > 0 {
		// No debt to service: coverage is unbounded, capped for display.
		dscr = 999.99
	}

	return []model.KPI{
		build(cfg, model.KPIManagedMgn, model.ConsolidatedCode, cons.Period, molPct),
		build(cfg, model.KPIHQWeight, model.ConsolidatedCode, cons.Period, hqWeight),
		build(cfg, model.KPIPersonnelPct, model.ConsolidatedCode, cons.Period, persPct),
		build(cfg, model.KPIDSCR, model.ConsolidatedCode, cons.Period, dscr),
	}
}

// FinancialInput carries the receivable/payable turnover bases for the
// financial block. Revenue figures cover the same span as PeriodDays.
type FinancialInput struct {
	Figures        model.FinanceFigures
	RevenuePublic  decimal.Decimal
	RevenuePrivate decimal.Decimal
	Purchases      decimal.Decimal
	PeriodDays     int
}

// Financial computes the working-capital and liquidity indicators:
// DSO by payer class, DPO, available cash and coverage months.
func Financial(cfg *config.Config, period model.Period, in FinancialInput) []model.KPI {
	days := float64(in.PeriodDays)
	if days <= 0 {
		days = 365
	}

	dsoPublic := turnoverDays(in.Figures.ReceivablesPublic, in.RevenuePublic, days)
	dsoPrivate := turnoverDays(in.Figures.ReceivablesPrivate, in.RevenuePrivate, days)
	dpo := turnoverDays(in.Figures.Payables, in.Purchases, days)

	cash := toFloat(in.Figures.Cash)
	coverage := CoverageMonths(in.Figures.Cash, in.Figures.AvgMonthlyOutflow)

	return []model.KPI{
		build(cfg, model.KPIDSOPublic, model.ConsolidatedCode, period, dsoPublic),
		build(cfg, model.KPIDSOPrivate, model.ConsolidatedCode, period, dsoPrivate),
		build(cfg, model.KPIDPO, model.ConsolidatedCode, period, dpo),
		build(cfg, model.KPICashBalance, model.ConsolidatedCode, period, cash),
		build(cfg, model.KPICashCoverage, model.ConsolidatedCode, period, coverage),
	}
}

// turnoverDays is the shared DSO/DPO formula: balance / flow * days.
// A zero flow yields zero days rather than a division error; an empty
// turnover base is a reportable anomaly, not a failure.
func turnoverDays(balance, flow decimal.Decimal, days float64) float64 {
	f := toFloat(flow)
	if f <= 0 {
		return 0
	}
	return toFloat(balance) / f * days
}

// CoverageMonths reports how many months of average outflow the cash
// balance covers, capped at 999.9 when there is no outflow.
func CoverageMonths(cash, avgMonthlyOutflow decimal.Decimal) float64 {
	out := toFloat(avgMonthlyOutflow)
	if out <= 0 {
		if cash.Sign() > 0 {
			return 999.9
		}
		return 0
	}
	return toFloat(cash) / out
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
