package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/spreadsheet"
)

// ResultHandler exposes stored exam results to the admin.
type ResultHandler struct {
	scoringService *service.ScoringService
	log            zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(scoringService *service.ScoringService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		scoringService: scoringService,
		log:            log.With().Str("component", "result_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/admin/results
// Lists every stored result in submission order.
func (h *ResultHandler) ListResults(c *gin.Context) {
	results, err := h.scoringService.ListResults(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list results")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.ResultRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ExportResults godoc
// GET /api/admin/results/export
// Downloads all results as an Excel workbook.
func (h *ResultHandler) ExportResults(c *gin.Context) {
	results, err := h.scoringService.ListResults(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list results")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportResults(&buf, results); err != nil {
		h.log.Error().Err(err).Msg("Failed to build results workbook")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	sendWorkbook(c, fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102-150405")), &buf)
}
