package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/validator"
	ws "github.com/stemsi/exstem-proctor/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler relays exam-side proctoring signals to the live monitor.
type WSHandler struct {
	proctorService *service.ProctorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(proctorService *service.ProctorService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		proctorService: proctorService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/exam?name=...&email=...
// Upgrades to WebSocket for live warning reports during an exam.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	who := service.Identity{
		UserName: strings.TrimSpace(c.Query("name")),
		Email:    strings.TrimSpace(c.Query("email")),
	}
	if who.UserName == "" || !validator.IsEmail(who.Email) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	who.ConnID = uuid.NewString()
	wsLog := h.log.With().
		Str("conn_id", who.ConnID).
		Str("email", who.Email).
		Logger()

	// Events outlive the request context once the client is gone.
	ctx := context.WithoutCancel(c.Request.Context())
	h.proctorService.RecordJoined(ctx, who)
	defer h.proctorService.RecordLeft(ctx, who)

	wsLog.Info().Msg("Exam client connected")

	// Server shutdown cancels the request context; closing the conn
	// unblocks the read loop below.
	stop := context.AfterFunc(c.Request.Context(), func() { conn.Close() })
	defer stop()

	for {
		action, raw, err := ws.ReadRaw(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionWarning:
			h.handleWarning(ctx, conn, who, raw)
		default:
			wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(action))
		}
	}
}

// handleWarning forwards one counted warning to the monitor.
func (h *WSHandler) handleWarning(ctx context.Context, conn *websocket.Conn, who service.Identity, raw json.RawMessage) {
	var msg ws.WarningRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, "invalid warning payload")
		return
	}

	reason := strings.TrimSpace(msg.Reason)
	if reason == "" || msg.Count < 1 {
		ws.WriteError(conn, "reason and a positive count are required")
		return
	}
	if len(reason) > ws.MaxReasonLength {
		reason = truncateUTF8(reason, ws.MaxReasonLength)
	}

	h.proctorService.RecordWarning(ctx, who, reason, msg.Count)
	ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventAck, WarningCount: msg.Count})
}

func truncateUTF8(s string, max int) string {
	for len(s) > max {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
