package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams live proctoring events to admins.
type MonitorHandler struct {
	proctorService *service.ProctorService
	scoringService *service.ScoringService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(
	proctorService *service.ProctorService,
	scoringService *service.ScoringService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		proctorService: proctorService,
		scoringService: scoringService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSSE godoc
// GET /api/admin/monitor
// Streams live proctoring events: joins, warnings, departures and submissions.
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	events, err := h.proctorService.Subscribe(reqCtx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to subscribe to proctor events")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendSnapshot(c)

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Msg("Admin attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from live monitor SSE")
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("message", ev)
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot writes the stored result totals as the first event.
func (h *MonitorHandler) sendSnapshot(c *gin.Context) {
	results, err := h.scoringService.ListResults(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load results for monitor snapshot")
		results = nil
	}

	var warned int
	var sum float64
	for _, r := range results {
		if len(r.Warnings) > 0 {
			warned++
		}
		sum += r.Percentage
	}
	var average float64
	if len(results) > 0 {
		average = sum / float64(len(results))
	}

	recent := results
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	summaries := make([]map[string]interface{}, 0, len(recent))
	for _, r := range recent {
		summaries = append(summaries, map[string]interface{}{
			"id":            r.ID,
			"userName":      r.UserName,
			"email":         r.Email,
			"percentage":    r.Percentage,
			"warning_count": len(r.Warnings),
			"submitted_at":  r.SubmittedAt,
		})
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": map[string]interface{}{
			"stats": map[string]interface{}{
				"total_submitted":    len(results),
				"total_with_warning": warned,
				"average_percentage": math.Round(average*100) / 100,
			},
			"recent": summaries,
		},
	})
	c.Writer.Flush()
}
