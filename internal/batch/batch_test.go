package batch

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Registry = []model.OperatingUnit{
		{Code: "VLB", Name: "Villa Bianca", Beds: 44, Active: true},
		{Code: "CTA", Name: "Citta Alta", Beds: 40, Active: true},
	}
	return cfg
}

func testInput(period model.Period) Input {
	return Input{
		Period: period,
		Entries: []model.LedgerEntry{
			{Unit: "VLB", Voice: model.RevSSNInpatient, Period: period, Amount: dec("100000")},
			{Unit: "VLB", Voice: model.CostNurses, Period: period, Amount: dec("60000")},
			{Unit: "CTA", Voice: model.RevSSNInpatient, Period: period, Amount: dec("200000")},
			{Unit: "CTA", Voice: model.CostNurses, Period: period, Amount: dec("110000")},
		},
		HQItems: []model.HeadquartersCostItem{
			{Voice: model.HQManagement, Period: period, Amount: dec("30000"), Driver: model.DriverRevenue},
			{Voice: model.HQCommon, Period: period, Amount: dec("5000"), Driver: model.DriverUnallocable},
		},
		Operational: map[string]model.OperationalFigures{
			"VLB": {Unit: "VLB", Period: period, BedDaysServed: 1200, BedDaysAvail: 1364, Payslips: 80},
			"CTA": {Unit: "CTA", Period: period, BedDaysServed: 1100, BedDaysAvail: 1240, Payslips: 70},
		},
		Finance: &model.FinanceFigures{
			Period:            period,
			ReceivablesPublic: dec("900000"),
			Cash:              dec("400000"),
			AvgMonthlyOutflow: dec("180000"),
			AnnualDebtService: dec("120000"),
		},
		Schedule: []model.ScheduleItem{
			{DueDate: "2025-03-07", Inflow: true, Amount: dec("150000"), Category: "incasso ASP"},
			{DueDate: "2025-03-14", Inflow: false, Amount: dec("90000"), Category: "stipendi"},
		},
	}
}

func TestRunFullChain(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	res, err := runner.Run(testInput(period))
	require.NoError(t, err)

	require.Len(t, res.Industrial, 2)
	require.Len(t, res.Managed, 2)
	require.Len(t, res.Comparisons, 2)

	// Revenue-share allocation: 100k/300k and 200k/300k of 30000.
	byUnit := res.Allocation.CostByUnit()
	assert.True(t, byUnit["VLB"].Equal(dec("10000")), "got %s", byUnit["VLB"])
	assert.True(t, byUnit["CTA"].Equal(dec("20000")), "got %s", byUnit["CTA"])

	// Margin identity holds for every unit.
	managedByUnit := map[string]model.ManagedLine{}
	for _, m := range res.Managed {
		managedByUnit[m.Unit] = m
	}
	for _, ind := range res.Industrial {
		m := managedByUnit[ind.Unit]
		want := ind.Margin.Sub(m.HQCostAllocated).Add(m.HQIncomeAllocated)
		assert.Truef(t, m.Margin.Equal(want), "unit %s margin %s != %s", ind.Unit, m.Margin, want)
	}

	// Unallocable stays at group level only.
	assert.True(t, res.Consolidated.UnallocatedHQ.Equal(dec("5000")))

	// All three KPI families present.
	codes := map[model.KPICode]bool{}
	for _, k := range res.KPIs {
		codes[k.Code] = true
	}
	assert.True(t, codes[model.KPIOccupancy])
	assert.True(t, codes[model.KPIManagedMgn])
	assert.True(t, codes[model.KPIDSOPublic])

	// Cash projection chained from the finance cash balance.
	require.NotEmpty(t, res.CashPoints)
	assert.True(t, res.CashPoints[0].Opening.Equal(dec("400000")))
	require.Len(t, res.Scenarios, 3)
}

func TestRunIdempotent(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	first, err := runner.Run(testInput(period))
	require.NoError(t, err)
	second, err := runner.Run(testInput(period))
	require.NoError(t, err)

	assert.Equal(t, first.Allocation.Results, second.Allocation.Results)
	assert.Equal(t, first.Consolidated, second.Consolidated)
	assert.Equal(t, first.KPIs, second.KPIs)
}

func TestRunBudgetVariance(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	in := testInput(period)
	in.Budget = []model.LedgerEntry{
		{Unit: "VLB", Voice: model.RevSSNInpatient, Period: period, Amount: dec("110000")},
		{Unit: "VLB", Voice: model.CostNurses, Period: period, Amount: dec("60000")},
	}

	res, err := runner.Run(in)
	require.NoError(t, err)

	// Only VLB carries a budget; CTA has nothing to compare against.
	require.Len(t, res.Variances, 1)
	assert.Equal(t, "VLB", res.Variances[0].Unit)

	var revenueDelta decimal.Decimal
	for _, line := range res.Variances[0].Lines {
		if line.Key == "totale_ricavi" {
			revenueDelta = line.Delta
		}
	}
	assert.True(t, revenueDelta.Equal(dec("-10000")), "revenue delta %s", revenueDelta)
}

func TestRunAnnualProjection(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	res, err := runner.Run(testInput(period))
	require.NoError(t, err)

	require.Len(t, res.Annual, cfg.Cash.ProjectionYears)

	// Monthly MOL-G 95000 annualized, less debt service 120000 and the
	// 3% revenue tax estimate 108000.
	first := res.Annual[0]
	assert.True(t, first.EBITDA.Equal(dec("1140000")), "EBITDA %s", first.EBITDA)
	assert.True(t, first.NetFlow.Equal(dec("912000")), "net flow %s", first.NetFlow)

	last := res.Annual[len(res.Annual)-1]
	assert.True(t, last.Cumulative.Equal(dec("4560000")), "cumulative %s", last.Cumulative)
}

func TestRunSupplementsFiscalOutflows(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	res, err := runner.Run(testInput(period))
	require.NoError(t, err)

	// The scadenzario already carries payroll, so only the fiscal
	// estimates are added: F24 for March through May (4% of 300000
	// monthly revenue each) plus the Q1 VAT settlement (2.5% of the
	// quarter's revenue).
	totalOut := decimal.Zero
	totalIn := decimal.Zero
	for _, p := range res.CashPoints {
		totalOut = totalOut.Add(p.Outflows)
		totalIn = totalIn.Add(p.Inflows)
	}
	assert.True(t, totalIn.Equal(dec("150000")), "inflows %s", totalIn)
	assert.True(t, totalOut.Equal(dec("148500")), "outflows %s", totalOut)

	require.NotNil(t, res.Payroll)
	assert.True(t, res.Payroll.Gross.Equal(dec("170000")), "gross %s", res.Payroll.Gross)
	assert.True(t, res.Payroll.Total.Equal(dec("226100")), "total %s", res.Payroll.Total)

	require.NotNil(t, res.Burn)
	assert.Nil(t, res.Burn.RunwayMonths, "net positive projection has no finite runway")
}

func TestRunBurnRateFiniteRunway(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	in := testInput(period)
	in.Schedule = append(in.Schedule, model.ScheduleItem{
		DueDate: "2025-03-21", Inflow: false, Amount: dec("400000"), Category: "Fiscale - concordato",
	})

	res, err := runner.Run(in)
	require.NoError(t, err)

	require.NotNil(t, res.Burn)
	assert.True(t, res.Burn.Monthly.Sign() > 0, "monthly burn %s", res.Burn.Monthly)
	require.NotNil(t, res.Burn.RunwayMonths)
	assert.Greater(t, *res.Burn.RunwayMonths, 0.0)
}

func TestRunFailsOnUnknownVoice(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())
	period := model.Period{Year: 2025, Month: 3}

	in := testInput(period)
	in.Entries = append(in.Entries, model.LedgerEntry{
		Unit: "VLB", Voice: "R99", Period: period, Amount: dec("1"),
	})

	_, err := runner.Run(in)
	var integrity *model.DataIntegrityError
	require.ErrorAs(t, err, &integrity)
}

func TestRunManyParallelPeriods(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())

	inputs := make([]Input, 0, 6)
	for m := 1; m <= 6; m++ {
		period := model.Period{Year: 2025, Month: m}
		in := testInput(period)
		for i := range in.Entries {
			in.Entries[i].Period = period
		}
		for i := range in.HQItems {
			in.HQItems[i].Period = period
		}
		for code, fig := range in.Operational {
			fig.Period = period
			in.Operational[code] = fig
		}
		in.Schedule = nil // schedule dates are March-specific
		inputs = append(inputs, in)
	}

	results, err := runner.RunMany(inputs)
	require.NoError(t, err)
	require.Len(t, results, 6)
	for i, res := range results {
		assert.Equal(t, inputs[i].Period, res.Period)
		assert.True(t, res.Consolidated.TotalRevenue.Equal(dec("300000")))
	}
}

func TestRunManyPropagatesError(t *testing.T) {
	cfg := testConfig()
	runner := New(cfg, zap.NewNop().Sugar())

	good := testInput(model.Period{Year: 2025, Month: 3})
	bad := testInput(model.Period{Year: 2025, Month: 4})
	bad.Entries[0].Period = model.Period{Year: 2025, Month: 3} // outside its period

	_, err := runner.RunMany([]Input{good, bad})
	require.Error(t, err)
}
