// Package api exposes the control-panel JSON API: import, per-period
// results, allocation simulation, configuration and workbook export.
package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/batch"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/store"
)

// Handler serves the JSON API against one store and one configuration.
// The configuration is swapped copy-on-write by UpdateConfig, so every
// request works on the immutable snapshot it took at entry.
type Handler struct {
	mu    sync.RWMutex
	cfg   *config.Config
	store *store.Store
	log   *zap.SugaredLogger
}

func NewHandler(cfg *config.Config, st *store.Store, log *zap.SugaredLogger) *Handler {
	return &Handler{
		cfg:   cfg,
		store: st,
		log:   log,
	}
}

// config returns the current configuration snapshot. Callers hold the
// returned pointer for the whole request and never mutate it.
func (h *Handler) config() *config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// swapConfig installs a new configuration for subsequent requests.
func (h *Handler) swapConfig(cfg *config.Config) {
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
}

// RegisterRoutes mounts the API under the given group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/periods", h.ListPeriods)

	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	router.POST("/import", h.ImportMaster)
	router.POST("/import/csv", h.ImportCSV)
	router.GET("/imports", h.ImportHistory)

	router.GET("/periods/:period/results", h.GetResults)
	router.GET("/periods/:period/export", h.ExportWorkbook)
	router.POST("/periods/:period/whatif", h.SimulateAllocation)
}

// fail maps the error taxonomy onto HTTP statuses: configuration faults
// are client errors, data and allocation faults are unprocessable input,
// everything else is a server error.
func fail(c *gin.Context, err error) {
	var (
		dataErr   *model.DataIntegrityError
		allocErr  *model.AllocationError
		configErr *model.ConfigurationError
	)
	switch {
	case errors.As(err, &configErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "configuration"})
	case errors.As(err, &dataErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": "data"})
	case errors.As(err, &allocErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": "allocation"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) period(c *gin.Context) (model.Period, bool) {
	p, err := model.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Period{}, false
	}
	return p, true
}

// loadInput assembles a period's snapshot from the store. The schedule
// window opens on the first day of the period and spans the configured
// projection horizon.
func (h *Handler) loadInput(cfg *config.Config, period model.Period) (batch.Input, error) {
	in := batch.Input{Period: period}

	var err error
	if in.Entries, err = h.store.LedgerEntries(period); err != nil {
		return in, err
	}
	if in.Budget, err = h.store.BudgetLines(period); err != nil {
		return in, err
	}
	if in.HQItems, err = h.store.HQItems(period); err != nil {
		return in, err
	}
	if in.Operational, err = h.store.OperationalFigures(period); err != nil {
		return in, err
	}
	if in.Finance, err = h.store.FinanceFigures(period); err != nil {
		return in, err
	}

	from := time.Date(period.Year, time.Month(period.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, cfg.Cash.ProjectionWeeks*7)
	if in.Schedule, err = h.store.Schedule(from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return in, err
	}
	return in, nil
}
