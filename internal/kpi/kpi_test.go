package kpi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestClassifyHigherIsBetter(t *testing.T) {
	th := &model.Threshold{Green: 0.90, Yellow: 0.80, Direction: model.HigherIsBetter}

	tests := []struct {
		name  string
		value float64
		want  model.Status
	}{
		{"above green", 0.912, model.StatusGreen},
		{"exactly green", 0.90, model.StatusGreen},
		{"between", 0.85, model.StatusYellow},
		{"exactly yellow", 0.80, model.StatusYellow},
		{"below yellow", 0.79, model.StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, th))
		})
	}
}

func TestClassifyLowerIsBetter(t *testing.T) {
	th := &model.Threshold{Green: 0.55, Yellow: 0.60, Direction: model.LowerIsBetter}

	tests := []struct {
		name  string
		value float64
		want  model.Status
	}{
		{"below green", 0.50, model.StatusGreen},
		{"exactly green", 0.55, model.StatusGreen},
		{"between", 0.58, model.StatusYellow},
		{"above yellow", 0.65, model.StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, th))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	th := &model.Threshold{Green: 0.90, Yellow: 0.80, Direction: model.HigherIsBetter}
	rank := map[model.Status]int{model.StatusRed: 0, model.StatusYellow: 1, model.StatusGreen: 2}

	prev := -1
	for v := 0.0; v <= 1.0; v += 0.01 {
		r := rank[Classify(v, th)]
		require.GreaterOrEqual(t, r, prev, "status downgraded while the value improved at %.2f", v)
		prev = r
	}
}

func TestClassifyNilThresholdUndetermined(t *testing.T) {
	assert.Equal(t, model.StatusUndetermined, Classify(0.5, nil))
}

func TestOperationalKPIs(t *testing.T) {
	cfg := config.Default()
	period := model.Period{Year: 2025, Month: 3}
	ind := &model.IndustrialLine{
		Unit:   "VLB",
		Period: period,
		RevenueDetail: map[model.VoiceCode]decimal.Decimal{
			model.RevSSNInpatient:  dec("120000"),
			model.RevPrivInpatient: dec("16400"),
		},
		TotalRevenue:  dec("150000"),
		CostPersonnel: dec("68200"),
		MarginPct:     0.16,
	}
	fig := model.OperationalFigures{
		Unit: "VLB", Period: period,
		BedDaysServed: 1240, BedDaysAvail: 1364,
		NurseAideHrs: 3400,
	}

	out := Operational(cfg, ind, fig)
	require.Len(t, out, 5)
	byCode := map[model.KPICode]model.KPI{}
	for _, k := range out {
		byCode[k.Code] = k
	}

	occ := byCode[model.KPIOccupancy]
	assert.InDelta(t, 0.909, occ.Value, 0.001)
	assert.Equal(t, model.StatusGreen, occ.Status)

	assert.InDelta(t, 110.0, byCode[model.KPIRevenuePerDay].Value, 0.01)
	assert.InDelta(t, 55.0, byCode[model.KPIPersonnelPerDay].Value, 0.01)
	assert.InDelta(t, 2.74, byCode[model.KPIHoursPerPatient].Value, 0.01)

	// No thresholds shipped for the per-day codes.
	assert.Equal(t, model.StatusUndetermined, byCode[model.KPIRevenuePerDay].Status)

	mol := byCode[model.KPIIndustrialMgn]
	assert.Equal(t, model.StatusGreen, mol.Status)
}

func TestOperationalZeroActivity(t *testing.T) {
	cfg := config.Default()
	period := model.Period{Year: 2025, Month: 3}
	ind := &model.IndustrialLine{
		Unit: "LAB", Period: period,
		RevenueDetail: map[model.VoiceCode]decimal.Decimal{},
	}

	out := Operational(cfg, ind, model.OperationalFigures{Unit: "LAB", Period: period})
	for _, k := range out {
		assert.Zerof(t, k.Value, "%s should be zero with no activity", k.Code)
	}
}

func TestEconomicKPIs(t *testing.T) {
	cfg := config.Default()
	cons := &model.ConsolidatedPnL{
		Period:        model.Period{Year: 2025, Month: 3},
		TotalRevenue:  dec("1000000"),
		ManagedMargin: dec("100000"),
	}
	in := EconomicInput{
		PersonnelCost:     dec("560000"),
		HQCostTotal:       dec("150000"),
		EBITDA:            dec("110000"),
		AnnualDebtService: dec("100000"),
	}

	out := Economic(cfg, cons, in)
	require.Len(t, out, 4)
	byCode := map[model.KPICode]model.KPI{}
	for _, k := range out {
		byCode[k.Code] = k
	}

	assert.InDelta(t, 0.10, byCode[model.KPIManagedMgn].Value, 1e-9)
	assert.Equal(t, model.StatusYellow, byCode[model.KPIManagedMgn].Status)

	assert.InDelta(t, 0.15, byCode[model.KPIHQWeight].Value, 1e-9)
	assert.Equal(t, model.StatusGreen, byCode[model.KPIHQWeight].Status)

	assert.InDelta(t, 0.56, byCode[model.KPIPersonnelPct].Value, 1e-9)
	assert.Equal(t, model.StatusYellow, byCode[model.KPIPersonnelPct].Status)

	assert.InDelta(t, 1.1, byCode[model.KPIDSCR].Value, 1e-9)
	assert.Equal(t, model.StatusYellow, byCode[model.KPIDSCR].Status)

	assert.Equal(t, model.ConsolidatedCode, byCode[model.KPIDSCR].Unit)
}

func TestEconomicDSCRNoDebt(t *testing.T) {
	cfg := config.Default()
	cons := &model.ConsolidatedPnL{TotalRevenue: dec("100")}
	out := Economic(cfg, cons, EconomicInput{EBITDA: dec("50")})
	for _, k := range out {
		if k.Code == model.KPIDSCR {
			assert.Equal(t, 999.99, k.Value)
			assert.Equal(t, model.StatusGreen, k.Status)
		}
	}
}

func TestFinancialKPIs(t *testing.T) {
	cfg := config.Default()
	period := model.Period{Year: 2025, Month: 3}
	in := FinancialInput{
		Figures: model.FinanceFigures{
			Period:             period,
			ReceivablesPublic:  dec("1200000"),
			ReceivablesPrivate: dec("80000"),
			Payables:           dec("400000"),
			Cash:               dec("350000"),
			AvgMonthlyOutflow:  dec("200000"),
		},
		RevenuePublic:  dec("3650000"),
		RevenuePrivate: dec("730000"),
		Purchases:      dec("1460000"),
		PeriodDays:     365,
	}

	out := Financial(cfg, period, in)
	require.Len(t, out, 5)
	byCode := map[model.KPICode]model.KPI{}
	for _, k := range out {
		byCode[k.Code] = k
	}

	// 1.2M / 3.65M * 365 = 120 days, on the green boundary.
	assert.InDelta(t, 120, byCode[model.KPIDSOPublic].Value, 1e-9)
	assert.Equal(t, model.StatusGreen, byCode[model.KPIDSOPublic].Status)

	assert.InDelta(t, 40, byCode[model.KPIDSOPrivate].Value, 1e-9)
	assert.Equal(t, model.StatusGreen, byCode[model.KPIDSOPrivate].Status)

	assert.InDelta(t, 100, byCode[model.KPIDPO].Value, 1e-9)
	assert.Equal(t, model.StatusYellow, byCode[model.KPIDPO].Status)

	assert.Equal(t, model.StatusGreen, byCode[model.KPICashBalance].Status)

	assert.InDelta(t, 1.75, byCode[model.KPICashCoverage].Value, 1e-9)
	assert.Equal(t, model.StatusYellow, byCode[model.KPICashCoverage].Status)
}

func TestCoverageMonthsNoOutflow(t *testing.T) {
	assert.Equal(t, 999.9, CoverageMonths(dec("1000"), decimal.Zero))
	assert.Equal(t, 0.0, CoverageMonths(decimal.Zero, decimal.Zero))
}
