// Package batch assembles a period's validated snapshot and runs the
// full computation chain: industrial P&L, headquarters allocation,
// managed P&L, KPIs and the cash projection.
package batch

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/allocation"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/cashflow"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/kpi"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/pnl"
)

// Input is one period's immutable snapshot. The batch never reads
// anything outside it except the shared read-only configuration.
type Input struct {
	Period      model.Period
	Entries     []model.LedgerEntry
	HQItems     []model.HeadquartersCostItem
	Operational map[string]model.OperationalFigures
	Finance     *model.FinanceFigures
	Schedule    []model.ScheduleItem
	OtherCosts  map[string]map[model.VoiceCode]decimal.Decimal
	Budget      []model.LedgerEntry
}

// Result carries every derived set for one period.
type Result struct {
	Period       model.Period               `json:"period"`
	Industrial   []model.IndustrialLine     `json:"industrial"`
	Allocation   *model.AllocationSet       `json:"allocation"`
	Managed      []model.ManagedLine        `json:"managed"`
	Consolidated model.ConsolidatedPnL      `json:"consolidated"`
	Comparisons  []model.PnLComparison      `json:"comparisons"`
	Variances    []model.BudgetVariance     `json:"variances,omitempty"`
	KPIs         []model.KPI                `json:"kpis"`
	CashPoints   []model.CashProjectionPoint `json:"cashPoints,omitempty"`
	Scenarios    []model.ScenarioProjection `json:"scenarios,omitempty"`
	Alerts       []model.CashAlert          `json:"alerts,omitempty"`
	Payroll      *model.PayrollEstimate     `json:"payroll,omitempty"`
	Burn         *model.BurnRate            `json:"burn,omitempty"`
	Annual       []model.AnnualFlowPoint    `json:"annual,omitempty"`
}

// Runner coordinates period runs against one configuration.
type Runner struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run computes the full result set for one period. Any structural
// fault aborts the period; nothing partial is returned.
func (r *Runner) Run(in Input) (*Result, error) {
	r.log.Infow("period run started", "period", in.Period.String(),
		"entries", len(in.Entries), "hq_items", len(in.HQItems))

	industrial, err := pnl.Industrial(r.cfg, in.Period, in.Entries)
	if err != nil {
		return nil, fmt.Errorf("industrial statement %s: %w", in.Period, err)
	}

	figures := UnitFigures(r.cfg, industrial, in.Operational)
	alloc, err := allocation.Allocate(r.cfg, in.Period, in.HQItems, figures)
	if err != nil {
		return nil, fmt.Errorf("headquarters allocation %s: %w", in.Period, err)
	}

	managed, err := pnl.Managed(industrial, alloc, in.OtherCosts)
	if err != nil {
		return nil, fmt.Errorf("managed statement %s: %w", in.Period, err)
	}
	consolidated := pnl.Consolidate(in.Period, managed, alloc)

	res := &Result{
		Period:       in.Period,
		Industrial:   industrial,
		Allocation:   alloc,
		Managed:      managed,
		Consolidated: consolidated,
	}

	managedByUnit := make(map[string]model.ManagedLine, len(managed))
	for _, m := range managed {
		managedByUnit[m.Unit] = m
	}
	for _, ind := range industrial {
		res.Comparisons = append(res.Comparisons, pnl.Compare(ind, managedByUnit[ind.Unit]))
	}

	if len(in.Budget) > 0 {
		budgetLines, err := pnl.Industrial(r.cfg, in.Period, in.Budget)
		if err != nil {
			return nil, fmt.Errorf("budget statement %s: %w", in.Period, err)
		}
		budgetByUnit := make(map[string]model.IndustrialLine, len(budgetLines))
		for _, b := range budgetLines {
			budgetByUnit[b.Unit] = b
		}
		for _, ind := range industrial {
			b, ok := budgetByUnit[ind.Unit]
			// A unit with no budgeted activity has nothing to compare.
			if !ok || (b.TotalRevenue.IsZero() && b.TotalDirectCost.IsZero()) {
				continue
			}
			res.Variances = append(res.Variances, pnl.VarianceAgainstBudget(ind, b))
		}
	}

	res.Annual = r.annualProjection(in, consolidated)

	res.KPIs = r.computeKPIs(in, industrial, alloc, consolidated)

	if err := r.projectCash(in, res); err != nil {
		return nil, err
	}

	r.log.Infow("period run finished", "period", in.Period.String(),
		"units", len(industrial), "kpis", len(res.KPIs))
	return res, nil
}

// RunMany computes several periods in parallel. Periods are
// independent: each goroutine reads its own input slot and writes its
// own result slot, with only the read-only configuration shared.
func (r *Runner) RunMany(inputs []Input) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Run(inputs[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// UnitFigures projects the industrial lines and operational figures
// onto the allocator's driver dimensions. Bed counts come from the
// registry; everything else from the period's measurements.
func UnitFigures(cfg *config.Config, industrial []model.IndustrialLine, operational map[string]model.OperationalFigures) map[string]allocation.UnitFigures {
	figures := make(map[string]allocation.UnitFigures, len(industrial))
	for _, line := range industrial {
		f := allocation.UnitFigures{Revenue: line.TotalRevenue}
		if uo, ok := cfg.Unit(line.Unit); ok {
			f.Beds = uo.Beds
		}
		if op, ok := operational[line.Unit]; ok {
			f.Headcount = op.Headcount
			f.Invoices = op.Invoices
			f.Payslips = op.Payslips
			f.Purchases = op.PurchasesEUR
			f.Workstations = op.Workstations
		}
		figures[line.Unit] = f
	}
	return figures
}

func (r *Runner) computeKPIs(in Input, industrial []model.IndustrialLine, alloc *model.AllocationSet, cons model.ConsolidatedPnL) []model.KPI {
	var kpis []model.KPI

	personnelTotal := decimal.Zero
	purchasesTotal := decimal.Zero
	revenuePublic := decimal.Zero
	revenuePrivate := decimal.Zero
	for _, ind := range industrial {
		personnelTotal = personnelTotal.Add(ind.CostPersonnel)
		purchasesTotal = purchasesTotal.Add(ind.CostPurchases)
		revenuePublic = revenuePublic.Add(ind.RevenueConvention)
		revenuePrivate = revenuePrivate.Add(ind.RevenuePrivate)

		fig := in.Operational[ind.Unit]
		kpis = append(kpis, kpi.Operational(r.cfg, &ind, fig)...)
	}

	hqTotal := cons.HQCostAllocated.Add(cons.UnallocatedHQ)
	eco := kpi.EconomicInput{
		PersonnelCost: personnelTotal,
		HQCostTotal:   hqTotal,
		EBITDA:        cons.MarginAfterUnalloc,
	}
	if in.Finance != nil {
		eco.AnnualDebtService = in.Finance.AnnualDebtService
	}
	kpis = append(kpis, kpi.Economic(r.cfg, &cons, eco)...)

	if in.Finance != nil {
		kpis = append(kpis, kpi.Financial(r.cfg, in.Period, kpi.FinancialInput{
			Figures:        *in.Finance,
			RevenuePublic:  revenuePublic,
			RevenuePrivate: revenuePrivate,
			Purchases:      purchasesTotal,
			PeriodDays:     in.Period.Days(),
		})...)
	}
	return kpis
}

func (r *Runner) projectCash(in Input, res *Result) error {
	if len(in.Schedule) == 0 {
		return nil
	}

	personnel := decimal.Zero
	revenue := decimal.Zero
	for _, ind := range res.Industrial {
		personnel = personnel.Add(ind.CostPersonnel)
		revenue = revenue.Add(ind.TotalRevenue)
	}
	payroll := cashflow.PayrollEstimate(r.cfg.Cash.SocialChargeRate, personnel)
	res.Payroll = &payroll

	from := time.Date(in.Period.Year, time.Month(in.Period.Month), 1, 0, 0, 0, 0, time.UTC)
	schedule := r.supplementSchedule(in.Schedule, from, payroll.Total, revenue)

	estimates, err := cashflow.WeeklyEstimates(from, r.cfg.Cash.ProjectionWeeks, schedule)
	if err != nil {
		return fmt.Errorf("cash projection %s: %w", in.Period, err)
	}

	start := decimal.NewFromFloat(r.cfg.Cash.StartingBalance)
	if in.Finance != nil && !in.Finance.Cash.IsZero() {
		start = in.Finance.Cash
	}
	minimum := decimal.NewFromFloat(r.cfg.Cash.MinimumBalance)

	res.CashPoints = cashflow.Project(start, minimum, estimates)
	res.Alerts = cashflow.Alerts(minimum, res.CashPoints)

	monthly, runway := cashflow.BurnRate(start, res.CashPoints)
	burn := model.BurnRate{Monthly: monthly}
	if !math.IsInf(runway, 1) {
		burn.RunwayMonths = &runway
	}
	res.Burn = &burn

	res.Scenarios, err = cashflow.Scenarios(r.cfg, start, minimum, estimates)
	if err != nil {
		return fmt.Errorf("cash scenarios %s: %w", in.Period, err)
	}
	return nil
}

// supplementSchedule adds estimated payroll and fiscal outflows for
// the projection window when the scadenzario does not already carry
// items of those categories.
func (r *Runner) supplementSchedule(schedule []model.ScheduleItem, from time.Time, payrollTotal, monthlyRevenue decimal.Decimal) []model.ScheduleItem {
	hasPayroll, hasFiscal := false, false
	for _, item := range schedule {
		cat := strings.ToLower(item.Category)
		if strings.Contains(cat, "stipendi") || strings.Contains(cat, "payroll") {
			hasPayroll = true
		}
		if strings.Contains(cat, "fiscale") {
			hasFiscal = true
		}
	}

	out := make([]model.ScheduleItem, len(schedule), len(schedule)+16)
	copy(out, schedule)

	if !hasPayroll && payrollTotal.Sign() > 0 {
		months := r.cfg.Cash.ProjectionWeeks/4 + 2
		out = append(out, cashflow.PayrollSchedule(from, months, payrollTotal)...)
	}
	if !hasFiscal && monthlyRevenue.Sign() > 0 {
		out = append(out, cashflow.FiscalDeadlines(from.Year(), monthlyRevenue)...)
		// A window opened late in the year spills into January.
		out = append(out, cashflow.FiscalDeadlines(from.Year()+1, monthlyRevenue)...)
	}
	return out
}

// annualProjection runs the strategic multi-year projection off the
// consolidated monthly result, annualized. Growth follows the base
// scenario; taxes are estimated from annual revenue.
func (r *Runner) annualProjection(in Input, cons model.ConsolidatedPnL) []model.AnnualFlowPoint {
	if r.cfg.Cash.ProjectionYears <= 0 {
		return nil
	}
	twelve := decimal.NewFromInt(12)
	ain := cashflow.AnnualInput{
		EBITDA:       cons.MarginAfterUnalloc.Mul(twelve),
		Taxes:        cashflow.TaxEstimate(cons.TotalRevenue.Mul(twelve)),
		Years:        r.cfg.Cash.ProjectionYears,
		EBITDAGrowth: r.cfg.Scenarios[string(model.ScenarioBase)].RevenueGrowth,
	}
	if in.Finance != nil {
		ain.DebtService = in.Finance.AnnualDebtService
	}
	return cashflow.Annual(ain)
}
