// Package exporter renders one period's result set into a results
// workbook for the controllers: industrial and managed statements,
// the allocation matrix, the KPI semaphore and the cash projection.
package exporter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/batch"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Workbook sheet names.
const (
	SheetIndustrial = "CE Industriale"
	SheetManaged    = "CE Gestionale"
	SheetAllocation = "Allocazione Sede"
	SheetKPI        = "KPI"
	SheetCash       = "Proiezione Cassa"
)

// Exporter renders result workbooks, optionally on top of a styled
// template workbook instead of a blank file.
type Exporter struct {
	templatePath string
}

func New(templatePath string) *Exporter {
	return &Exporter{templatePath: templatePath}
}

// Export builds the results workbook for one computed period. When a
// template is configured its sheets are kept and the result sheets are
// written into it.
func (e *Exporter) Export(res *batch.Result) (*excelize.File, error) {
	f, err := e.openBase()
	if err != nil {
		return nil, err
	}
	st := newStyles(f)

	if err := e.fillIndustrial(f, st, res); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillManaged(f, st, res); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillAllocation(f, st, res); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillKPI(f, st, res); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillCash(f, st, res); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, err
	}
	if idx, err := f.GetSheetIndex(SheetIndustrial); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func (e *Exporter) openBase() (*excelize.File, error) {
	if e.templatePath == "" {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(e.templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", e.templatePath, err)
	}
	return f, nil
}

// ExportToFile writes the workbook to disk.
func (e *Exporter) ExportToFile(res *batch.Result, path string) error {
	f, err := e.Export(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

type styles struct {
	header int
	money  int
	green  int
	yellow int
	red    int
}

func newStyles(f *excelize.File) styles {
	header, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	green, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	yellow, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
	})
	red, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})
	return styles{header: header, money: money, green: green, yellow: yellow, red: red}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func (e *Exporter) fillIndustrial(f *excelize.File, st styles, res *batch.Result) error {
	if _, err := f.NewSheet(SheetIndustrial); err != nil {
		return err
	}
	if err := writeRow(f, SheetIndustrial, 1, []interface{}{
		"Unità", "Ricavi convenzione", "Ricavi privati", "Altri ricavi", "Ricavi totali",
		"Personale", "Acquisti", "Servizi", "Ammortamenti", "Costi diretti",
		"MOL-I", "MOL-I %",
	}); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetIndustrial, 1, 1, st.header)

	for i, line := range res.Industrial {
		if err := writeRow(f, SheetIndustrial, i+2, []interface{}{
			line.Unit,
			line.RevenueConvention.InexactFloat64(),
			line.RevenuePrivate.InexactFloat64(),
			line.RevenueOther.InexactFloat64(),
			line.TotalRevenue.InexactFloat64(),
			line.CostPersonnel.InexactFloat64(),
			line.CostPurchases.InexactFloat64(),
			line.CostServices.InexactFloat64(),
			line.CostDepreciation.InexactFloat64(),
			line.TotalDirectCost.InexactFloat64(),
			line.Margin.InexactFloat64(),
			fmt.Sprintf("%.1f%%", line.MarginPct*100),
		}); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetIndustrial, "A", "A", 10)
	_ = f.SetColWidth(SheetIndustrial, "B", "L", 16)
	return nil
}

func (e *Exporter) fillManaged(f *excelize.File, st styles, res *batch.Result) error {
	if _, err := f.NewSheet(SheetManaged); err != nil {
		return err
	}
	if err := writeRow(f, SheetManaged, 1, []interface{}{
		"Unità", "Ricavi totali", "Costi diretti", "MOL-I",
		"Servizi centrali", "Governance", "Costi comuni", "Sede allocata", "Proventi sede",
		"MOL-G", "MOL-G %", "Altri costi", "Risultato netto",
	}); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetManaged, 1, 1, st.header)

	row := 2
	for _, line := range res.Managed {
		if err := writeRow(f, SheetManaged, row, []interface{}{
			line.Unit,
			line.TotalRevenue.InexactFloat64(),
			line.TotalDirectCost.InexactFloat64(),
			line.IndustrialMargin.InexactFloat64(),
			line.HQCentralServices.InexactFloat64(),
			line.HQGovernance.InexactFloat64(),
			line.HQCommon.InexactFloat64(),
			line.HQCostAllocated.InexactFloat64(),
			line.HQIncomeAllocated.InexactFloat64(),
			line.Margin.InexactFloat64(),
			fmt.Sprintf("%.1f%%", line.MarginPct*100),
			line.OtherCosts.InexactFloat64(),
			line.NetResult.InexactFloat64(),
		}); err != nil {
			return err
		}
		row++
	}

	// Group line with the headquarters items that stayed unallocated.
	cons := res.Consolidated
	if err := writeRow(f, SheetManaged, row+1, []interface{}{
		"CONSOLIDATO",
		cons.TotalRevenue.InexactFloat64(),
		cons.TotalDirectCost.InexactFloat64(),
		cons.IndustrialMargin.InexactFloat64(),
		"", "", "",
		cons.HQCostAllocated.InexactFloat64(),
		cons.HQIncomeAllocated.InexactFloat64(),
		cons.ManagedMargin.InexactFloat64(),
		fmt.Sprintf("%.1f%%", cons.NetMarginPct*100),
		cons.OtherCosts.InexactFloat64(),
		cons.NetResult.InexactFloat64(),
	}); err != nil {
		return err
	}
	if err := writeRow(f, SheetManaged, row+2, []interface{}{
		"Sede non allocata", cons.UnallocatedHQ.InexactFloat64(),
	}); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetManaged, row+1, row+1, st.header)

	_ = f.SetColWidth(SheetManaged, "A", "A", 16)
	_ = f.SetColWidth(SheetManaged, "B", "M", 16)
	return nil
}

// fillAllocation renders the voice-by-unit allocation matrix. Each cost
// row of one voice sums to the source amount; income rows are signed
// negative to read as credits.
func (e *Exporter) fillAllocation(f *excelize.File, st styles, res *batch.Result) error {
	if _, err := f.NewSheet(SheetAllocation); err != nil {
		return err
	}
	if res.Allocation == nil {
		return nil
	}

	units := make([]string, 0)
	seenUnit := make(map[string]bool)
	voices := make([]model.VoiceCode, 0)
	seenVoice := make(map[model.VoiceCode]bool)
	cells := make(map[model.VoiceCode]map[string]float64)
	totals := make(map[model.VoiceCode]float64)
	drivers := make(map[model.VoiceCode]model.Driver)

	for _, r := range res.Allocation.Results {
		if !seenUnit[r.Unit] {
			seenUnit[r.Unit] = true
			units = append(units, r.Unit)
		}
		if !seenVoice[r.Voice] {
			seenVoice[r.Voice] = true
			voices = append(voices, r.Voice)
			cells[r.Voice] = make(map[string]float64)
		}
		amount := r.Amount.InexactFloat64()
		if r.Income {
			amount = -amount
		}
		cells[r.Voice][r.Unit] += amount
		totals[r.Voice] += amount
		drivers[r.Voice] = r.Driver
	}
	sort.Strings(units)
	sort.Slice(voices, func(i, j int) bool { return voices[i] < voices[j] })

	header := []interface{}{"Voce", "Driver"}
	for _, u := range units {
		header = append(header, u)
	}
	header = append(header, "Totale")
	if err := writeRow(f, SheetAllocation, 1, header); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetAllocation, 1, 1, st.header)

	row := 2
	for _, v := range voices {
		line := []interface{}{string(v), string(drivers[v])}
		for _, u := range units {
			line = append(line, cells[v][u])
		}
		line = append(line, totals[v])
		if err := writeRow(f, SheetAllocation, row, line); err != nil {
			return err
		}
		row++
	}

	// Unallocated voices keep their full amount in the totals column.
	unallocVoices := make([]model.VoiceCode, 0, len(res.Allocation.Unallocated))
	for v := range res.Allocation.Unallocated {
		unallocVoices = append(unallocVoices, v)
	}
	sort.Slice(unallocVoices, func(i, j int) bool { return unallocVoices[i] < unallocVoices[j] })
	for _, v := range unallocVoices {
		line := []interface{}{string(v), string(model.DriverUnallocable)}
		for range units {
			line = append(line, "")
		}
		line = append(line, res.Allocation.Unallocated[v].InexactFloat64())
		if err := writeRow(f, SheetAllocation, row, line); err != nil {
			return err
		}
		row++
	}

	_ = f.SetColWidth(SheetAllocation, "A", "B", 14)
	return nil
}

func (e *Exporter) fillKPI(f *excelize.File, st styles, res *batch.Result) error {
	if _, err := f.NewSheet(SheetKPI); err != nil {
		return err
	}
	if err := writeRow(f, SheetKPI, 1, []interface{}{
		"Codice", "Indicatore", "Ambito", "Valore", "Semaforo", "Soglia verde", "Soglia gialla",
	}); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetKPI, 1, 1, st.header)

	for i, k := range res.KPIs {
		row := i + 2
		values := []interface{}{string(k.Code), k.Name, k.Unit, k.Value, string(k.Status)}
		if k.Threshold != nil {
			values = append(values, k.Threshold.Green, k.Threshold.Yellow)
		}
		if err := writeRow(f, SheetKPI, row, values); err != nil {
			return err
		}

		statusCell, err := excelize.CoordinatesToCellName(5, row)
		if err != nil {
			return err
		}
		switch k.Status {
		case model.StatusGreen:
			_ = f.SetCellStyle(SheetKPI, statusCell, statusCell, st.green)
		case model.StatusYellow:
			_ = f.SetCellStyle(SheetKPI, statusCell, statusCell, st.yellow)
		case model.StatusRed:
			_ = f.SetCellStyle(SheetKPI, statusCell, statusCell, st.red)
		}
	}

	_ = f.SetColWidth(SheetKPI, "A", "A", 14)
	_ = f.SetColWidth(SheetKPI, "B", "B", 36)
	_ = f.SetColWidth(SheetKPI, "C", "G", 14)
	return nil
}

func (e *Exporter) fillCash(f *excelize.File, st styles, res *batch.Result) error {
	if _, err := f.NewSheet(SheetCash); err != nil {
		return err
	}
	if len(res.CashPoints) == 0 {
		return nil
	}

	if err := writeRow(f, SheetCash, 1, []interface{}{
		"Settimana", "Apertura", "Incassi", "Pagamenti", "Chiusura", "Sotto soglia",
	}); err != nil {
		return err
	}
	_ = f.SetRowStyle(SheetCash, 1, 1, st.header)

	row := 2
	for _, p := range res.CashPoints {
		flag := ""
		if p.BelowMinimum {
			flag = "SI"
		}
		if err := writeRow(f, SheetCash, row, []interface{}{
			p.Label,
			p.Opening.InexactFloat64(),
			p.Inflows.InexactFloat64(),
			p.Outflows.InexactFloat64(),
			p.Closing.InexactFloat64(),
			flag,
		}); err != nil {
			return err
		}
		if p.BelowMinimum {
			from, _ := excelize.CoordinatesToCellName(1, row)
			to, _ := excelize.CoordinatesToCellName(6, row)
			_ = f.SetCellStyle(SheetCash, from, to, st.red)
		}
		row++
	}

	if len(res.Alerts) > 0 {
		row++
		if err := writeRow(f, SheetCash, row, []interface{}{"Allerta", "Settimana", "Messaggio", "Valore"}); err != nil {
			return err
		}
		_ = f.SetRowStyle(SheetCash, row, row, st.header)
		row++
		for _, a := range res.Alerts {
			if err := writeRow(f, SheetCash, row, []interface{}{
				string(a.Level), a.Label, a.Message, a.Value.InexactFloat64(),
			}); err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(SheetCash, "A", "A", 16)
	_ = f.SetColWidth(SheetCash, "B", "F", 15)
	return nil
}
