package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/store"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(config.Default(), st, zap.NewNop().Sugar()), st
}

func writeMasterWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()

	setSheet := func(name string, rows [][]interface{}) {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	setSheet(SheetRevenue, [][]interface{}{
		{"unita", "voce", "anno", "mese", "importo", "quantita"},
		{"VLB", "R01", "2025", "3", "60.000,00", "600"},
		{"VLB", "R01", "2025", "3", "40.000,00", "400"},
		{"CTA", "R04", "2025", "3", "25.500,50", ""},
	})
	setSheet(SheetCosts, [][]interface{}{
		{"unita", "voce", "anno", "mese", "importo"},
		{"VLB", "CD01", "2025", "3", "35.000,00"},
		{"CTA", "CD01", "2025", "3", "12.000,00"},
	})
	setSheet(SheetBudget, [][]interface{}{
		{"unita", "voce", "anno", "mese", "importo"},
		{"VLB", "R01", "2025", "3", "110.000,00"},
		{"VLB", "CD01", "2025", "3", "32.000,00"},
	})
	setSheet(SheetHQ, [][]interface{}{
		{"voce", "anno", "mese", "importo", "driver", "provento"},
		{"CS10", "2025", "3", "18.000,00", "revenue", "N"},
		{"CS12", "2025", "3", "4.000,00", "", "N"},
	})
	setSheet(SheetProduction, [][]interface{}{
		{"unita", "anno", "mese", "giornate_erogate", "giornate_disponibili",
			"organico_fte", "cedolini", "fatture", "postazioni", "ore_oss_inf", "acquisti_eur"},
		{"VLB", "2025", "3", "900", "1000", "42,5", "45", "120", "12", "2400", "15.000,00"},
		{"CTA", "2025", "3", "550", "600", "20", "22", "80", "6", "1100", "8.000,00"},
	})
	setSheet(SheetFinance, [][]interface{}{
		{"anno", "mese", "crediti_asp", "crediti_privati", "debiti_fornitori",
			"cassa", "uscite_medie_mensili", "servizio_debito_annuale"},
		{"2025", "3", "800.000,00", "120.000,00", "450.000,00",
			"300.000,00", "200.000,00", "180.000,00"},
	})
	setSheet(SheetSchedule, [][]interface{}{
		{"data", "tipo", "categoria", "importo", "controparte", "confermato"},
		{"2025-03-10", "incasso", "asp", "50.000,00", "ASP Palermo", "S"},
		{"15/03/2025", "pagamento", "fornitori", "20.000,00", "", "N"},
	})

	require.NoError(t, f.DeleteSheet("Sheet1"))
	path := filepath.Join(dir, "master.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestImportMaster(t *testing.T) {
	im, st := newTestImporter(t)
	path := writeMasterWorkbook(t, t.TempDir())

	report, err := im.ImportMaster(path)
	require.NoError(t, err)

	period := model.Period{Year: 2025, Month: 3}
	assert.Equal(t, []model.Period{period}, report.Periods)
	assert.NotEmpty(t, report.BatchID)

	entries, err := st.LedgerEntries(period)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// The two VLB/R01 raw rows collapse into one aggregated entry.
	byKey := make(map[string]model.LedgerEntry)
	for _, e := range entries {
		byKey[e.Unit+"/"+string(e.Voice)] = e
	}
	r01 := byKey["VLB/R01"]
	assert.Equal(t, "100000", r01.Amount.String())
	require.NotNil(t, r01.Quantity)
	assert.Equal(t, 1000.0, *r01.Quantity)
	assert.Equal(t, "25500.5", byKey["CTA/R04"].Amount.String())

	assert.Contains(t, report.Sheets, SheetBudget)
	budget, err := st.BudgetLines(period)
	require.NoError(t, err)
	require.Len(t, budget, 2)
	assert.Equal(t, "32000", budget[0].Amount.String())
	assert.Equal(t, "110000", budget[1].Amount.String())

	items, err := st.HQItems(period)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.DriverRevenue, items[0].Driver)
	assert.Equal(t, model.Driver(""), items[1].Driver)

	figures, err := st.OperationalFigures(period)
	require.NoError(t, err)
	require.Len(t, figures, 2)
	assert.Equal(t, 900, figures["VLB"].BedDaysServed)
	assert.Equal(t, 42.5, figures["VLB"].Headcount)

	fin, err := st.FinanceFigures(period)
	require.NoError(t, err)
	require.NotNil(t, fin)
	assert.Equal(t, "300000", fin.Cash.String())

	schedule, err := st.Schedule("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.True(t, schedule[0].Inflow)
	assert.True(t, schedule[0].Confirmed)
	assert.Equal(t, "2025-03-15", schedule[1].DueDate)

	history, err := st.ImportHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "completed", history[0].Status)
}

func TestImportMasterIsIdempotent(t *testing.T) {
	im, st := newTestImporter(t)
	path := writeMasterWorkbook(t, t.TempDir())

	_, err := im.ImportMaster(path)
	require.NoError(t, err)
	_, err = im.ImportMaster(path)
	require.NoError(t, err)

	entries, err := st.LedgerEntries(model.Period{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestImportMasterRejectsUnknownUnit(t *testing.T) {
	im, _ := newTestImporter(t)
	dir := t.TempDir()

	f := excelize.NewFile()
	_, err := f.NewSheet(SheetRevenue)
	require.NoError(t, err)
	header := []interface{}{"unita", "voce", "anno", "mese", "importo"}
	require.NoError(t, f.SetSheetRow(SheetRevenue, "A1", &header))
	row := []interface{}{"XXX", "R01", "2025", "3", "100"}
	require.NoError(t, f.SetSheetRow(SheetRevenue, "A2", &row))
	path := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = im.ImportMaster(path)
	var die *model.DataIntegrityError
	require.ErrorAs(t, err, &die)
	assert.Equal(t, "XXX", die.Unit)
}

func TestImportMasterRejectsUnknownVoice(t *testing.T) {
	im, _ := newTestImporter(t)
	dir := t.TempDir()

	f := excelize.NewFile()
	_, err := f.NewSheet(SheetCosts)
	require.NoError(t, err)
	header := []interface{}{"unita", "voce", "anno", "mese", "importo"}
	require.NoError(t, f.SetSheetRow(SheetCosts, "A1", &header))
	row := []interface{}{"VLB", "ZZ99", "2025", "3", "100"}
	require.NoError(t, f.SetSheetRow(SheetCosts, "A2", &row))
	path := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = im.ImportMaster(path)
	var die *model.DataIntegrityError
	require.ErrorAs(t, err, &die)
}

func TestImportMasterRejectsMalformedProductionCell(t *testing.T) {
	im, st := newTestImporter(t)
	dir := t.TempDir()

	f := excelize.NewFile()
	_, err := f.NewSheet(SheetProduction)
	require.NoError(t, err)
	header := []interface{}{"unita", "anno", "mese", "giornate_erogate", "giornate_disponibili",
		"organico_fte", "cedolini", "fatture", "postazioni", "ore_oss_inf", "acquisti_eur"}
	require.NoError(t, f.SetSheetRow(SheetProduction, "A1", &header))
	row := []interface{}{"VLB", "2025", "3", "900", "n/d", "42,5", "45", "120", "12", "2400", "15.000,00"}
	require.NoError(t, f.SetSheetRow(SheetProduction, "A2", &row))
	path := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = im.ImportMaster(path)
	var die *model.DataIntegrityError
	require.ErrorAs(t, err, &die)
	assert.Equal(t, "giornate_disponibili", die.Field)

	history, err := st.ImportHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0].Status)
}

func TestImportMasterLogsFailure(t *testing.T) {
	im, st := newTestImporter(t)

	_, err := im.ImportMaster(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	history, err := st.ImportHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0].Status)
}

func TestImportLedgerCSV(t *testing.T) {
	im, st := newTestImporter(t)
	dir := t.TempDir()

	csv := "unita;voce;anno;mese;importo\n" +
		"VLB;R01;2025;4;75.000,00\n" +
		"VLB;R01;2025;4;5.000,00\n" +
		"CTA;CD01;2025;4;-1.250,75\n"
	path := filepath.Join(dir, "contabilita.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	report, err := im.ImportLedgerCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.ImportedRows)

	entries, err := st.LedgerEntries(model.Period{Year: 2025, Month: 4})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "-1250.75", entries[0].Amount.String())
	assert.Equal(t, "80000", entries[1].Amount.String())
}
