package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/importer"
)

// ImportMaster receives the master workbook as a multipart upload and
// runs the full import. Records of the touched periods are replaced.
// POST /api/import
func (h *Handler) ImportMaster(c *gin.Context) {
	h.runImport(c, importer.New(h.config(), h.store, h.log).ImportMaster)
}

// ImportCSV receives a vendor ledger export (semicolon-separated,
// Italian locale) and replaces the ledger of the periods it covers.
// POST /api/import/csv
func (h *Handler) ImportCSV(c *gin.Context) {
	h.runImport(c, importer.New(h.config(), h.store, h.log).ImportLedgerCSV)
}

func (h *Handler) runImport(c *gin.Context, run func(path string) (*importer.Report, error)) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no uploaded file"})
		return
	}

	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("cruscotto_import_%d_%s", time.Now().Unix(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.Remove(tempPath)

	report, err := run(tempPath)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ImportHistory lists recent import runs, newest first.
// GET /api/imports
func (h *Handler) ImportHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	history, err := h.store.ImportHistory(limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": history})
}
