package exporter

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/batch"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleResult() *batch.Result {
	period := model.Period{Year: 2025, Month: 3}
	return &batch.Result{
		Period: period,
		Industrial: []model.IndustrialLine{
			{
				Unit: "VLB", Period: period,
				RevenueConvention: dec("80000"), RevenuePrivate: dec("20000"),
				TotalRevenue: dec("100000"), CostPersonnel: dec("55000"),
				TotalDirectCost: dec("70000"), Margin: dec("30000"), MarginPct: 0.30,
			},
			{
				Unit: "CTA", Period: period,
				RevenueConvention: dec("50000"), TotalRevenue: dec("50000"),
				TotalDirectCost: dec("40000"), Margin: dec("10000"), MarginPct: 0.20,
			},
		},
		Allocation: &model.AllocationSet{
			Period: period,
			Results: []model.AllocationResult{
				{Voice: model.HQManagement, Unit: "VLB", Period: period, Amount: dec("12000"), Driver: model.DriverRevenue, Share: 2.0 / 3},
				{Voice: model.HQManagement, Unit: "CTA", Period: period, Amount: dec("6000"), Driver: model.DriverRevenue, Share: 1.0 / 3},
			},
			Unallocated: map[model.VoiceCode]decimal.Decimal{
				model.HQStrategy: dec("4000"),
			},
		},
		Managed: []model.ManagedLine{
			{
				Unit: "VLB", Period: period,
				TotalRevenue: dec("100000"), TotalDirectCost: dec("70000"),
				IndustrialMargin: dec("30000"), HQCostAllocated: dec("12000"),
				Margin: dec("18000"), MarginPct: 0.18, NetResult: dec("18000"),
			},
			{
				Unit: "CTA", Period: period,
				TotalRevenue: dec("50000"), TotalDirectCost: dec("40000"),
				IndustrialMargin: dec("10000"), HQCostAllocated: dec("6000"),
				Margin: dec("4000"), MarginPct: 0.08, NetResult: dec("4000"),
			},
		},
		Consolidated: model.ConsolidatedPnL{
			Period: period, Units: 2,
			TotalRevenue: dec("150000"), TotalDirectCost: dec("110000"),
			IndustrialMargin: dec("40000"), HQCostAllocated: dec("18000"),
			ManagedMargin: dec("22000"), UnallocatedHQ: dec("4000"),
			MarginAfterUnalloc: dec("18000"), NetResult: dec("18000"), NetMarginPct: 0.12,
		},
		KPIs: []model.KPI{
			{Code: model.KPIOccupancy, Name: model.KPIOccupancy.Name(), Unit: "VLB",
				Period: period, Value: 0.92, Status: model.StatusGreen,
				Threshold: &model.Threshold{Green: 0.90, Yellow: 0.80, Direction: model.HigherIsBetter}},
			{Code: model.KPIManagedMgn, Name: model.KPIManagedMgn.Name(), Unit: model.ConsolidatedCode,
				Period: period, Value: 0.05, Status: model.StatusRed,
				Threshold: &model.Threshold{Green: 0.12, Yellow: 0.08, Direction: model.HigherIsBetter}},
		},
		CashPoints: []model.CashProjectionPoint{
			{Label: "W01 2025-03-03", Opening: dec("300000"), Inflows: dec("50000"),
				Outflows: dec("70000"), Closing: dec("280000")},
			{Label: "W02 2025-03-10", Opening: dec("280000"), Inflows: dec("10000"),
				Outflows: dec("260000"), Closing: dec("30000"), BelowMinimum: true},
		},
		Alerts: []model.CashAlert{
			{Level: model.AlertRed, Label: "W02 2025-03-10",
				Message: "saldo sotto la soglia minima", Value: dec("30000"), Limit: dec("100000")},
		},
	}
}

func TestExportBuildsAllSheets(t *testing.T) {
	f, err := New("").Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{
		SheetIndustrial, SheetManaged, SheetAllocation, SheetKPI, SheetCash,
	}, sheets)
}

func TestExportIndustrialSheet(t *testing.T) {
	f, err := New("").Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	unit, err := f.GetCellValue(SheetIndustrial, "A2")
	require.NoError(t, err)
	assert.Equal(t, "VLB", unit)

	margin, err := f.GetCellValue(SheetIndustrial, "K2")
	require.NoError(t, err)
	assert.Equal(t, "30000", margin)

	pct, err := f.GetCellValue(SheetIndustrial, "L2")
	require.NoError(t, err)
	assert.Equal(t, "30.0%", pct)
}

func TestExportAllocationMatrix(t *testing.T) {
	f, err := New("").Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetAllocation)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, []string{"Voce", "Driver", "CTA", "VLB", "Totale"}, rows[0])
	assert.Equal(t, "CS10", rows[1][0])
	assert.Equal(t, "6000", rows[1][2])
	assert.Equal(t, "12000", rows[1][3])
	assert.Equal(t, "18000", rows[1][4])

	// Unallocated voice keeps its full amount in the totals column.
	assert.Equal(t, "CS12", rows[2][0])
	assert.Equal(t, "unallocable", rows[2][1])
	assert.Equal(t, "4000", rows[2][4])
}

func TestExportKPISemaphore(t *testing.T) {
	f, err := New("").Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	status, err := f.GetCellValue(SheetKPI, "E2")
	require.NoError(t, err)
	assert.Equal(t, "green", status)

	scope, err := f.GetCellValue(SheetKPI, "C3")
	require.NoError(t, err)
	assert.Equal(t, model.ConsolidatedCode, scope)
}

func TestExportCashSheetFlagsBreaches(t *testing.T) {
	f, err := New("").Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	flag, err := f.GetCellValue(SheetCash, "F3")
	require.NoError(t, err)
	assert.Equal(t, "SI", flag)

	alert, err := f.GetCellValue(SheetCash, "A6")
	require.NoError(t, err)
	assert.Equal(t, "rosso", alert)
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risultati.xlsx")
	require.NoError(t, New("").ExportToFile(sampleResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetManaged)
}

func TestExportOnTemplateKeepsItsSheets(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "template.xlsx")
	tpl := excelize.NewFile()
	_, err := tpl.NewSheet("Copertina")
	require.NoError(t, err)
	require.NoError(t, tpl.SetCellValue("Copertina", "A1", "Gruppo Karol"))
	require.NoError(t, tpl.SaveAs(templatePath))
	require.NoError(t, tpl.Close())

	f, err := New(templatePath).Export(sampleResult())
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Copertina")
	assert.Contains(t, f.GetSheetList(), SheetIndustrial)

	title, err := f.GetCellValue("Copertina", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Gruppo Karol", title)
}

func TestExportMissingTemplateFails(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "assente.xlsx")).Export(sampleResult())
	require.Error(t, err)
}
