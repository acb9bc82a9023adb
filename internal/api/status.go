package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/store"
)

// StatusResponse describes what the panel can work with right now.
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`
	Periods        int    `json:"periods"`
	LatestPeriod   string `json:"latestPeriod,omitempty"`
	Units          int    `json:"units"`
	LastImportTime string `json:"lastImportTime,omitempty"`
	LastImportFile string `json:"lastImportFile,omitempty"`
}

// GetStatus reports whether data has been imported and how much.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	stats, err := h.store.ListAvailablePeriods()
	if err != nil {
		fail(c, err)
		return
	}

	resp := StatusResponse{
		Initialized: len(stats) > 0,
		Periods:     len(stats),
		Units:       len(h.cfg.ActiveUnits()),
	}
	if len(stats) > 0 {
		resp.LatestPeriod = stats[0].Period.String()
	}

	if history, err := h.store.ImportHistory(1); err == nil && len(history) > 0 {
		resp.LastImportTime = history[0].CreatedAt
		resp.LastImportFile = history[0].Filename
	}

	c.JSON(http.StatusOK, resp)
}

type periodsResponse struct {
	Items []store.PeriodStat `json:"items"`
}

// ListPeriods lists every period with imported data, newest first.
// GET /api/periods
func (h *Handler) ListPeriods(c *gin.Context) {
	stats, err := h.store.ListAvailablePeriods()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, periodsResponse{Items: stats})
}
