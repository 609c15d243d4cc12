package realtime

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"tripboard/internal/models"
)

// Scope identifies one filtered change feed: a table narrowed to a group,
// post, or user id.
type Scope struct {
	Table   string
	ScopeID string
}

// TokenSource fetches the short-lived realtime credential from the backend.
type TokenSource interface {
	RealtimeToken(ctx context.Context) (string, error)
}

// Channel is one live connection to the change feed. Events terminates when
// the connection drops; the cause is delivered on Errors.
type Channel interface {
	Subscribe(scope Scope) error
	Events() <-chan models.ChangeEvent
	Errors() <-chan error
	Close() error
}

// Transport dials the change feed with a credential.
type Transport interface {
	Dial(ctx context.Context, token string) (Channel, error)
}

// WSTransport dials the backend's websocket feed endpoint.
type WSTransport struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewWSTransport builds a transport for the given ws:// or wss:// endpoint.
func NewWSTransport(endpoint string) *WSTransport {
	return &WSTransport{URL: endpoint, Dialer: websocket.DefaultDialer}
}

// Dial connects and authenticates with the token as a query parameter.
func (t *WSTransport) Dial(ctx context.Context, token string) (Channel, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	ch := &wsChannel{
		conn:   conn,
		events: make(chan models.ChangeEvent, 64),
		errs:   make(chan error, 1),
	}
	go ch.readLoop()
	return ch, nil
}

type wsChannel struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	events  chan models.ChangeEvent
	errs    chan error
}

func (c *wsChannel) Subscribe(scope Scope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(models.SubscribeFrame{Table: scope.Table, ScopeID: scope.ScopeID})
}

func (c *wsChannel) Events() <-chan models.ChangeEvent { return c.events }

func (c *wsChannel) Errors() <-chan error { return c.errs }

func (c *wsChannel) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *wsChannel) readLoop() {
	defer close(c.events)
	for {
		var ev models.ChangeEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			select {
			case c.errs <- err:
			default:
			}
			return
		}
		c.events <- ev
	}
}
