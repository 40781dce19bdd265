package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	ws "github.com/stemsi/exstem-proctor/internal/websocket"
)

const pingInterval = 30 * time.Second

// ProctorConn reports counted warnings to the live monitor. Reporting is
// best-effort; the exam never waits on it.
type ProctorConn struct {
	conn *websocket.Conn
	log  zerolog.Logger

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// DialProctor opens the exam WebSocket for the given identity.
func (c *Client) DialProctor(ctx context.Context, name, email string) (*ProctorConn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/exam"
	u.RawQuery = url.Values{"name": {name}, "email": {email}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial proctor socket: %w", err)
	}

	p := &ProctorConn{
		conn: conn,
		log:  c.log.With().Str("component", "proctor_conn").Logger(),
		done: make(chan struct{}),
	}
	go p.readLoop()
	go p.pingLoop()
	return p, nil
}

// Warn reports one counted warning.
func (p *ProctorConn) Warn(reason string, count int) error {
	return p.write(ws.WarningRequest{Action: ws.ActionWarning, Reason: reason, Count: count})
}

// Close ends the connection.
func (p *ProctorConn) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		p.writeMu.Lock()
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "exam finished"),
			time.Now().Add(time.Second))
		p.writeMu.Unlock()
		err = p.conn.Close()
	})
	return err
}

func (p *ProctorConn) write(v interface{}) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return ws.WriteTyped(p.conn, v)
}

func (p *ProctorConn) readLoop() {
	for {
		var ev struct {
			Event ws.Event `json:"event"`
			Error string   `json:"error"`
		}
		if err := p.conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Event == ws.EventError {
			p.log.Warn().Str("error", ev.Error).Msg("Proctor socket reported an error")
		}
	}
}

func (p *ProctorConn) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if err := p.write(ws.PingRequest{Action: ws.ActionPing}); err != nil {
				p.log.Debug().Err(err).Msg("Proctor ping failed")
				return
			}
		}
	}
}
