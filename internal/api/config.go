package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// ConfigResponse is the editable slice of the configuration. Server and
// data-directory settings stay out: changing those needs a restart.
type ConfigResponse struct {
	Units            []model.OperatingUnit           `json:"units"`
	Drivers          map[string]string               `json:"drivers"`
	AllocateHQIncome bool                            `json:"allocateHqIncome"`
	Thresholds       map[string]model.Threshold      `json:"thresholds"`
	Scenarios        map[string]model.ScenarioParams `json:"scenarios"`
	Cash             config.CashConfig               `json:"cash"`
}

// GetConfig returns the current registry, driver map, thresholds,
// scenarios and cash parameters.
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := h.config()
	c.JSON(http.StatusOK, ConfigResponse{
		Units:            cfg.Registry,
		Drivers:          cfg.Allocation.Drivers,
		AllocateHQIncome: cfg.Allocation.AllocateHQIncome,
		Thresholds:       cfg.Thresholds,
		Scenarios:        cfg.Scenarios,
		Cash:             cfg.Cash,
	})
}

type updateConfigRequest struct {
	Drivers          map[string]string               `json:"drivers"`
	AllocateHQIncome *bool                           `json:"allocateHqIncome"`
	Thresholds       map[string]model.Threshold      `json:"thresholds"`
	Scenarios        map[string]model.ScenarioParams `json:"scenarios"`
	Cash             *config.CashConfig              `json:"cash"`
}

// UpdateConfig overlays the submitted fields, validates the merged
// configuration and persists it. A rejected merge leaves the running
// configuration untouched.
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	merged := *h.config()
	if req.Drivers != nil {
		merged.Allocation.Drivers = req.Drivers
	}
	if req.AllocateHQIncome != nil {
		merged.Allocation.AllocateHQIncome = *req.AllocateHQIncome
	}
	if req.Thresholds != nil {
		merged.Thresholds = req.Thresholds
	}
	if req.Scenarios != nil {
		merged.Scenarios = req.Scenarios
	}
	if req.Cash != nil {
		merged.Cash = *req.Cash
	}

	if err := merged.Validate(); err != nil {
		fail(c, err)
		return
	}

	h.swapConfig(&merged)
	if err := config.Save(&merged); err != nil {
		h.log.Warnw("config not persisted", "error", err)
	}
	h.GetConfig(c)
}
