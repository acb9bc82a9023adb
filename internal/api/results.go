package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/allocation"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/batch"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/exporter"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/pnl"
)

// GetResults computes the full result set for one period: industrial
// and managed statements, allocation, comparisons, KPIs and the cash
// projection with scenarios.
// GET /api/periods/:period/results
func (h *Handler) GetResults(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}

	cfg := h.config()
	in, err := h.loadInput(cfg, period)
	if err != nil {
		fail(c, err)
		return
	}
	if len(in.Entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for period %s", period)})
		return
	}

	res, err := batch.New(cfg, h.log).Run(in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportWorkbook computes the period and streams the results workbook.
// GET /api/periods/:period/export
func (h *Handler) ExportWorkbook(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}

	cfg := h.config()
	in, err := h.loadInput(cfg, period)
	if err != nil {
		fail(c, err)
		return
	}
	if len(in.Entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for period %s", period)})
		return
	}

	res, err := batch.New(cfg, h.log).Run(in)
	if err != nil {
		fail(c, err)
		return
	}

	f, err := exporter.New(cfg.Excel.TemplatePath).Export(res)
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("cruscotto_%s.xlsx", period)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

type whatIfRequest struct {
	Drop      string                     `json:"drop,omitempty"`
	NewAmount map[string]decimal.Decimal `json:"newAmount,omitempty"`
	NewDriver map[string]string          `json:"newDriver,omitempty"`
	Add       []model.HeadquartersCostItem `json:"add,omitempty"`
}

// SimulateAllocation reruns the headquarters allocation with a modified
// rule set and reports the per-unit delta. The stored data is untouched.
// POST /api/periods/:period/whatif
func (h *Handler) SimulateAllocation(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}

	var req whatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	change := allocation.WhatIfChange{Add: req.Add}
	if req.Drop != "" {
		voice, err := model.ParseVoice(req.Drop)
		if err != nil {
			fail(c, err)
			return
		}
		change.Drop = &voice
	}
	if len(req.NewAmount) > 0 {
		change.NewAmount = make(map[model.VoiceCode]decimal.Decimal, len(req.NewAmount))
		for code, amount := range req.NewAmount {
			voice, err := model.ParseVoice(code)
			if err != nil {
				fail(c, err)
				return
			}
			change.NewAmount[voice] = amount
		}
	}
	if len(req.NewDriver) > 0 {
		change.NewDriver = make(map[model.VoiceCode]model.Driver, len(req.NewDriver))
		for code, name := range req.NewDriver {
			voice, err := model.ParseVoice(code)
			if err != nil {
				fail(c, err)
				return
			}
			driver, err := model.ParseDriver(name)
			if err != nil {
				fail(c, err)
				return
			}
			change.NewDriver[voice] = driver
		}
	}

	cfg := h.config()
	in, err := h.loadInput(cfg, period)
	if err != nil {
		fail(c, err)
		return
	}
	if len(in.Entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no data for period %s", period)})
		return
	}

	industrial, err := pnl.Industrial(cfg, period, in.Entries)
	if err != nil {
		fail(c, err)
		return
	}
	figures := batch.UnitFigures(cfg, industrial, in.Operational)

	result, err := allocation.WhatIf(cfg, period, in.HQItems, figures, change)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
