package live

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readLimit  = 64 << 10
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// VehicleUpdate is one live position report from the route-monitoring feed.
type VehicleUpdate struct {
	VehicleID int64     `json:"vehicleId"`
	RouteID   int64     `json:"routeId"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Progress  float64   `json:"progress"`
	SentAt    time.Time `json:"sentAt"`
}

// Feed is a subscription to the backend's WebSocket route-monitoring stream.
// Updates arrive on Updates() until the connection drops or Close is called;
// the channel is closed either way.
type Feed struct {
	conn    *websocket.Conn
	updates chan VehicleUpdate

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the feed at wsURL, authenticating with the bearer token.
func Dial(ctx context.Context, wsURL, token string) (*Feed, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial feed %s: %w", wsURL, err)
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	f := &Feed{
		conn:    conn,
		updates: make(chan VehicleUpdate, 16),
		done:    make(chan struct{}),
	}
	go f.readLoop()
	go f.pingLoop()
	return f, nil
}

// Updates delivers position reports. The channel closes when the feed ends.
func (f *Feed) Updates() <-chan VehicleUpdate {
	return f.updates
}

// Close tears down the connection and the read loop.
func (f *Feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.done)
		f.conn.SetWriteDeadline(time.Now().Add(writeWait))
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = f.conn.Close()
	})
	return err
}

func (f *Feed) readLoop() {
	defer close(f.updates)
	for {
		var update VehicleUpdate
		if err := f.conn.ReadJSON(&update); err != nil {
			select {
			case <-f.done:
				// Deliberate close, not worth logging.
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[live] feed closed: %v", err)
				}
			}
			return
		}

		select {
		case f.updates <- update:
		case <-f.done:
			return
		}
	}
}

func (f *Feed) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
