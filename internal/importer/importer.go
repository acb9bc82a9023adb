// Package importer reads the master workbook and vendor CSV exports
// into validated, typed records and stores them per period. All locale
// quirks (Italian number formatting, S/N flags, `;`-separated CSV) are
// absorbed here; nothing downstream sees a raw cell.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/store"
)

// Master workbook sheet names.
const (
	SheetRevenue    = "CE_Ricavi"
	SheetCosts      = "CE_Costi"
	SheetBudget     = "CE_Budget"
	SheetHQ         = "Costi_Sede"
	SheetProduction = "Produzione"
	SheetFinance    = "Finanza"
	SheetSchedule   = "Scadenzario"
)

// Importer parses source files and persists their records.
type Importer struct {
	cfg   *config.Config
	store *store.Store
	log   *zap.SugaredLogger
}

func New(cfg *config.Config, st *store.Store, log *zap.SugaredLogger) *Importer {
	return &Importer{cfg: cfg, store: st, log: log}
}

// Report summarizes one import run.
type Report struct {
	BatchID      string         `json:"batchId"`
	Filename     string         `json:"filename"`
	Sheets       []string       `json:"sheets"`
	Periods      []model.Period `json:"periods"`
	TotalRows    int            `json:"totalRows"`
	ImportedRows int            `json:"importedRows"`
}

// ImportMaster reads every recognized sheet of the master workbook and
// replaces the stored records of each period found. The run is logged
// under a fresh batch id; any structural fault aborts it whole.
func (im *Importer) ImportMaster(path string) (*Report, error) {
	batchID := uuid.New().String()
	filename := filepath.Base(path)
	im.log.Infow("master import started", "file", filename, "batch", batchID)

	var fileSize int64
	if info, err := os.Stat(path); err == nil {
		fileSize = info.Size()
	}
	logID, err := im.store.CreateImportLog(batchID, filename, path, fileSize)
	if err != nil {
		return nil, err
	}

	report, err := im.doImportMaster(path, batchID, filename)
	if err != nil {
		_ = im.store.CompleteImportLog(logID, 0, 0, 0, "failed", err.Error())
		return nil, err
	}

	if err := im.store.CompleteImportLog(logID, report.TotalRows, report.ImportedRows, 0, "completed", ""); err != nil {
		return nil, err
	}
	im.log.Infow("master import finished", "file", filename,
		"rows", report.ImportedRows, "periods", len(report.Periods))
	return report, nil
}

func (im *Importer) doImportMaster(path, batchID, filename string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	report := &Report{BatchID: batchID, Filename: filename}

	entries, rows, err := im.parseLedgerSheets(f, SheetRevenue, SheetCosts)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	budget, rows, err := im.parseLedgerSheets(f, SheetBudget)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	hqItems, rows, err := im.parseHQSheet(f)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	operational, rows, err := im.parseProductionSheet(f)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	finance, rows, err := im.parseFinanceSheet(f)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	schedule, rows, err := im.parseScheduleSheet(f)
	if err != nil {
		return nil, err
	}
	report.TotalRows += rows

	// Persist period by period so a re-import replaces cleanly.
	periods := collectPeriods(entries, hqItems, operational)
	for _, p := range periods {
		if err := im.store.ReplaceLedgerEntries(p, filterEntries(entries, p), filename); err != nil {
			return nil, err
		}
		if err := im.store.ReplaceHQItems(p, filterHQ(hqItems, p), filename); err != nil {
			return nil, err
		}
		if err := im.store.ReplaceOperationalFigures(p, filterFigures(operational, p)); err != nil {
			return nil, err
		}
	}
	for _, p := range collectPeriods(budget, nil, nil) {
		if err := im.store.ReplaceBudgetLines(p, filterEntries(budget, p), filename); err != nil {
			return nil, err
		}
	}
	for _, fin := range finance {
		if err := im.store.SaveFinanceFigures(fin); err != nil {
			return nil, err
		}
	}
	if len(schedule) > 0 {
		if err := im.store.ReplaceSchedule(schedule, filename); err != nil {
			return nil, err
		}
	}

	report.Periods = periods
	report.ImportedRows = len(entries) + len(budget) + len(hqItems) + len(operational) + len(finance) + len(schedule)
	for _, name := range []string{SheetRevenue, SheetCosts, SheetBudget, SheetHQ, SheetProduction, SheetFinance, SheetSchedule} {
		if idx, _ := f.GetSheetIndex(name); idx >= 0 {
			report.Sheets = append(report.Sheets, name)
		}
	}
	return report, nil
}

// parseLedgerSheets reads ledger-shaped sheets (CE_Ricavi, CE_Costi,
// CE_Budget). Raw rows for the same unit/voice/period collapse into one
// aggregated entry.
func (im *Importer) parseLedgerSheets(f *excelize.File, sheets ...string) ([]model.LedgerEntry, int, error) {
	type key struct {
		unit   string
		voice  model.VoiceCode
		period model.Period
	}
	agg := make(map[key]*model.LedgerEntry)
	totalRows := 0

	for _, sheet := range sheets {
		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, 0, err
		}
		if rows == nil {
			continue
		}
		idx := headerIndex(rows[0])
		for n, row := range rows[1:] {
			if isBlankRow(row) {
				continue
			}
			totalRows++

			unit := cell(row, idx, "unita")
			if _, ok := im.cfg.Unit(unit); !ok {
				return nil, 0, &model.DataIntegrityError{
					Unit: unit, Field: "unita",
					Reason: fmt.Sprintf("%s row %d: unit not in registry", sheet, n+2),
				}
			}
			voice, err := model.ParseVoice(cell(row, idx, "voce"))
			if err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", sheet, n+2, err)
			}
			period, err := parsePeriodCells(row, idx)
			if err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", sheet, n+2, err)
			}
			amount, err := ParseAmount(cell(row, idx, "importo"))
			if err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", sheet, n+2, err)
			}

			entry := model.LedgerEntry{Unit: unit, Voice: voice, Period: period, Amount: amount}
			if q := cell(row, idx, "quantita"); q != "" {
				qd, err := ParseAmount(q)
				if err != nil {
					return nil, 0, fmt.Errorf("%s row %d: %w", sheet, n+2, err)
				}
				qf, _ := qd.Float64()
				entry.Quantity = &qf
			}
			if err := entry.Validate(); err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", sheet, n+2, err)
			}

			k := key{unit: unit, voice: voice, period: period}
			if prev, ok := agg[k]; ok {
				prev.Amount = prev.Amount.Add(entry.Amount)
				if entry.Quantity != nil {
					if prev.Quantity == nil {
						prev.Quantity = entry.Quantity
					} else {
						sum := *prev.Quantity + *entry.Quantity
						prev.Quantity = &sum
					}
				}
			} else {
				e := entry
				agg[k] = &e
			}
		}
	}

	out := make([]model.LedgerEntry, 0, len(agg))
	for _, e := range agg {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Voice < out[j].Voice
	})
	return out, totalRows, nil
}

func (im *Importer) parseHQSheet(f *excelize.File) ([]model.HeadquartersCostItem, int, error) {
	rows, err := sheetRows(f, SheetHQ)
	if err != nil || rows == nil {
		return nil, 0, err
	}
	idx := headerIndex(rows[0])

	var items []model.HeadquartersCostItem
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		voice, err := model.ParseVoice(cell(row, idx, "voce"))
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetHQ, n+2, err)
		}
		period, err := parsePeriodCells(row, idx)
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetHQ, n+2, err)
		}
		amount, err := ParseAmount(cell(row, idx, "importo"))
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetHQ, n+2, err)
		}

		item := model.HeadquartersCostItem{
			Voice:  voice,
			Period: period,
			Amount: amount,
			Income: parseFlag(cell(row, idx, "provento")),
		}
		if d := cell(row, idx, "driver"); d != "" {
			driver, err := model.ParseDriver(d)
			if err != nil {
				return nil, 0, fmt.Errorf("%s row %d: %w", SheetHQ, n+2, err)
			}
			item.Driver = driver
		}
		if err := item.Validate(); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetHQ, n+2, err)
		}
		items = append(items, item)
	}
	return items, len(items), nil
}

func (im *Importer) parseProductionSheet(f *excelize.File) ([]model.OperationalFigures, int, error) {
	rows, err := sheetRows(f, SheetProduction)
	if err != nil || rows == nil {
		return nil, 0, err
	}
	idx := headerIndex(rows[0])

	var figures []model.OperationalFigures
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		period, err := parsePeriodCells(row, idx)
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		fig := model.OperationalFigures{
			Unit:   cell(row, idx, "unita"),
			Period: period,
		}
		if _, ok := im.cfg.Unit(fig.Unit); !ok {
			return nil, 0, &model.DataIntegrityError{
				Unit: fig.Unit, Period: period, Field: "unita",
				Reason: fmt.Sprintf("%s row %d: unit not in registry", SheetProduction, n+2),
			}
		}
		if fig.BedDaysServed, err = parseIntCell(row, idx, "giornate_erogate"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.BedDaysAvail, err = parseIntCell(row, idx, "giornate_disponibili"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.Headcount, err = parseFloatCell(row, idx, "organico_fte"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.Payslips, err = parseIntCell(row, idx, "cedolini"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.Invoices, err = parseIntCell(row, idx, "fatture"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.Workstations, err = parseIntCell(row, idx, "postazioni"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.NurseAideHrs, err = parseFloatCell(row, idx, "ore_oss_inf"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		if fig.PurchasesEUR, err = parseFloatCell(row, idx, "acquisti_eur"); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetProduction, n+2, err)
		}
		figures = append(figures, fig)
	}
	return figures, len(figures), nil
}

func (im *Importer) parseFinanceSheet(f *excelize.File) ([]model.FinanceFigures, int, error) {
	rows, err := sheetRows(f, SheetFinance)
	if err != nil || rows == nil {
		return nil, 0, err
	}
	idx := headerIndex(rows[0])

	var out []model.FinanceFigures
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		period, err := parsePeriodCells(row, idx)
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		fin := model.FinanceFigures{Period: period}
		if fin.ReceivablesPublic, err = ParseAmount(cell(row, idx, "crediti_asp")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		if fin.ReceivablesPrivate, err = ParseAmount(cell(row, idx, "crediti_privati")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		if fin.Payables, err = ParseAmount(cell(row, idx, "debiti_fornitori")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		if fin.Cash, err = ParseAmount(cell(row, idx, "cassa")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		if fin.AvgMonthlyOutflow, err = ParseAmount(cell(row, idx, "uscite_medie_mensili")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		if fin.AnnualDebtService, err = ParseAmount(cell(row, idx, "servizio_debito_annuale")); err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetFinance, n+2, err)
		}
		out = append(out, fin)
	}
	return out, len(out), nil
}

func (im *Importer) parseScheduleSheet(f *excelize.File) ([]model.ScheduleItem, int, error) {
	rows, err := sheetRows(f, SheetSchedule)
	if err != nil || rows == nil {
		return nil, 0, err
	}
	idx := headerIndex(rows[0])

	var items []model.ScheduleItem
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		amount, err := ParseAmount(cell(row, idx, "importo"))
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetSchedule, n+2, err)
		}
		due, err := parseDate(cell(row, idx, "data"))
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: %w", SheetSchedule, n+2, err)
		}
		items = append(items, model.ScheduleItem{
			DueDate:      due,
			Inflow:       cell(row, idx, "tipo") == "incasso",
			Category:     cell(row, idx, "categoria"),
			Amount:       amount,
			Counterparty: cell(row, idx, "controparte"),
			Confirmed:    parseFlag(cell(row, idx, "confermato")),
		})
	}
	return items, len(items), nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func parsePeriodCells(row []string, idx map[string]int) (model.Period, error) {
	year, err := strconv.Atoi(cell(row, idx, "anno"))
	if err != nil {
		return model.Period{}, &model.DataIntegrityError{Field: "anno", Reason: "missing or non-numeric year"}
	}
	month, err := strconv.Atoi(cell(row, idx, "mese"))
	if err != nil {
		return model.Period{}, &model.DataIntegrityError{Field: "mese", Reason: "missing or non-numeric month"}
	}
	p := model.Period{Year: year, Month: month}
	return p, p.Validate()
}

// parseIntCell treats an empty cell as zero; a non-empty cell that does
// not parse fails the row rather than silently zeroing a denominator.
func parseIntCell(row []string, idx map[string]int, name string) (int, error) {
	raw := cell(row, idx, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.DataIntegrityError{
			Field:  name,
			Reason: fmt.Sprintf("non-numeric value %q", raw),
		}
	}
	return v, nil
}

func parseFloatCell(row []string, idx map[string]int, name string) (float64, error) {
	raw := cell(row, idx, name)
	if raw == "" {
		return 0, nil
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return 0, &model.DataIntegrityError{
			Field:  name,
			Reason: fmt.Sprintf("non-numeric value %q", raw),
		}
	}
	f, _ := d.Float64()
	return f, nil
}

func collectPeriods(entries []model.LedgerEntry, items []model.HeadquartersCostItem, figures []model.OperationalFigures) []model.Period {
	seen := make(map[model.Period]struct{})
	for _, e := range entries {
		seen[e.Period] = struct{}{}
	}
	for _, it := range items {
		seen[it.Period] = struct{}{}
	}
	for _, f := range figures {
		seen[f.Period] = struct{}{}
	}
	out := make([]model.Period, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func filterEntries(entries []model.LedgerEntry, p model.Period) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if e.Period == p {
			out = append(out, e)
		}
	}
	return out
}

func filterHQ(items []model.HeadquartersCostItem, p model.Period) []model.HeadquartersCostItem {
	var out []model.HeadquartersCostItem
	for _, it := range items {
		if it.Period == p {
			out = append(out, it)
		}
	}
	return out
}

func filterFigures(figures []model.OperationalFigures, p model.Period) []model.OperationalFigures {
	var out []model.OperationalFigures
	for _, f := range figures {
		if f.Period == p {
			out = append(out, f)
		}
	}
	return out
}
