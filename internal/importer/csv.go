package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ImportLedgerCSV reads a vendor accounting export. The file carries the
// same columns as the workbook ledger sheets (unita;voce;anno;mese;
// importo;quantita) but arrives semicolon-separated with Italian number
// formatting. Rows replace the stored ledger of every period they touch.
func (im *Importer) ImportLedgerCSV(path string) (*Report, error) {
	batchID := uuid.New().String()
	filename := filepath.Base(path)
	im.log.Infow("csv import started", "file", filename, "batch", batchID)

	logID, err := im.store.CreateImportLog(batchID, filename, path, 0)
	if err != nil {
		return nil, err
	}

	entries, totalRows, err := readLedgerCSV(path, filename)
	if err == nil {
		for _, e := range entries {
			if _, ok := im.cfg.Unit(e.Unit); !ok {
				err = &model.DataIntegrityError{
					Unit: e.Unit, Period: e.Period, Field: "unita",
					Reason: "unit not in registry",
				}
				break
			}
		}
	}
	if err != nil {
		_ = im.store.CompleteImportLog(logID, totalRows, 0, 0, "failed", err.Error())
		return nil, err
	}

	periods := collectPeriods(entries, nil, nil)
	for _, p := range periods {
		if err := im.store.ReplaceLedgerEntries(p, filterEntries(entries, p), filename); err != nil {
			_ = im.store.CompleteImportLog(logID, totalRows, 0, 0, "failed", err.Error())
			return nil, err
		}
	}

	if err := im.store.CompleteImportLog(logID, totalRows, len(entries), 0, "completed", ""); err != nil {
		return nil, err
	}
	im.log.Infow("csv import finished", "file", filename,
		"rows", len(entries), "periods", len(periods))
	return &Report{
		BatchID:      batchID,
		Filename:     filename,
		Periods:      periods,
		TotalRows:    totalRows,
		ImportedRows: len(entries),
	}, nil
}

func readLedgerCSV(path, filename string) ([]model.LedgerEntry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open csv %s: %w", filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse csv %s: %w", filename, err)
	}
	if len(records) < 2 {
		return nil, 0, &model.DataIntegrityError{
			Field: "csv", Reason: fmt.Sprintf("%s: no data rows", filename),
		}
	}
	idx := headerIndex(records[0])

	type key struct {
		unit   string
		voice  model.VoiceCode
		period model.Period
	}
	agg := make(map[key]*model.LedgerEntry)
	totalRows := 0

	for n, row := range records[1:] {
		if isBlankRow(row) {
			continue
		}
		totalRows++

		voice, err := model.ParseVoice(cell(row, idx, "voce"))
		if err != nil {
			return nil, totalRows, fmt.Errorf("%s row %d: %w", filename, n+2, err)
		}
		period, err := parsePeriodCells(row, idx)
		if err != nil {
			return nil, totalRows, fmt.Errorf("%s row %d: %w", filename, n+2, err)
		}
		amount, err := ParseAmount(cell(row, idx, "importo"))
		if err != nil {
			return nil, totalRows, fmt.Errorf("%s row %d: %w", filename, n+2, err)
		}
		entry := model.LedgerEntry{
			Unit:   cell(row, idx, "unita"),
			Voice:  voice,
			Period: period,
			Amount: amount,
		}
		if q := cell(row, idx, "quantita"); q != "" {
			qd, err := ParseAmount(q)
			if err != nil {
				return nil, totalRows, fmt.Errorf("%s row %d: %w", filename, n+2, err)
			}
			qf, _ := qd.Float64()
			entry.Quantity = &qf
		}
		if err := entry.Validate(); err != nil {
			return nil, totalRows, fmt.Errorf("%s row %d: %w", filename, n+2, err)
		}

		k := key{unit: entry.Unit, voice: voice, period: period}
		if prev, ok := agg[k]; ok {
			prev.Amount = prev.Amount.Add(entry.Amount)
		} else {
			e := entry
			agg[k] = &e
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
