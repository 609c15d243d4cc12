package realtime

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"tripboard/internal/models"
	"tripboard/internal/observability"
)

// Status is the lifecycle state of the subscriber's underlying connection.
type Status string

const (
	StatusUnauthenticated Status = "UNAUTHENTICATED"
	StatusAuthenticating  Status = "AUTHENTICATING"
	StatusSubscribed      Status = "SUBSCRIBED"
	StatusChannelError    Status = "CHANNEL_ERROR"
	StatusTimedOut        Status = "TIMED_OUT"
	StatusClosed          Status = "CLOSED"
	StatusReconnecting    Status = "RECONNECTING"
)

const (
	// DefaultReconnectBackoff delays the single scheduled reconnect after a
	// dropped channel.
	DefaultReconnectBackoff = time.Second
	// DefaultTokenRefreshInterval re-fetches the realtime credential ahead of
	// its expiry, independent of subscription lifecycle.
	DefaultTokenRefreshInterval = 45 * time.Minute

	tokenFetchTimeout = 10 * time.Second
)

type subscription struct {
	scope     Scope
	onEvent   func(models.ChangeEvent)
	cancelled atomic.Bool
}

// Subscriber multiplexes scope subscriptions over one change-feed channel.
// Realtime is an enhancement: when the credential cannot be fetched the
// subscriber stays UNAUTHENTICATED and delivers nothing, and callers fall
// back to manual refreshes.
type Subscriber struct {
	transport    Transport
	tokens       TokenSource
	backoff      time.Duration
	refreshEvery time.Duration
	log          *logrus.Entry

	mu             sync.Mutex
	subs           map[*subscription]struct{}
	status         Status
	channel        Channel
	gen            int
	connecting     bool
	reconnectTimer *time.Timer
	refreshStop    chan struct{}
	closed         bool
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithBackoff overrides the reconnect backoff.
func WithBackoff(d time.Duration) Option {
	return func(s *Subscriber) { s.backoff = d }
}

// WithTokenRefreshInterval overrides the credential refresh interval.
func WithTokenRefreshInterval(d time.Duration) Option {
	return func(s *Subscriber) { s.refreshEvery = d }
}

// WithLogger overrides the package logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Subscriber) { s.log = log }
}

// NewSubscriber builds a subscriber over the given transport and credential
// source.
func NewSubscriber(transport Transport, tokens TokenSource, opts ...Option) *Subscriber {
	s := &Subscriber{
		transport:    transport,
		tokens:       tokens,
		backoff:      DefaultReconnectBackoff,
		refreshEvery: DefaultTokenRefreshInterval,
		log:          logrus.WithField("component", "realtime"),
		subs:         make(map[*subscription]struct{}),
		status:       StatusUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports the current connection state.
func (s *Subscriber) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe attaches onEvent to the given scope and returns the matching
// unsubscribe. After unsubscribe returns, onEvent is never invoked again.
// When the last subscription for the subscriber is removed the underlying
// channel and all timers are torn down.
func (s *Subscriber) Subscribe(scope Scope, onEvent func(models.ChangeEvent)) func() {
	sub := &subscription{scope: scope, onEvent: onEvent}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	s.subs[sub] = struct{}{}
	if s.refreshStop == nil {
		s.refreshStop = make(chan struct{})
		go s.refreshLoop(s.refreshStop)
	}
	if s.channel != nil {
		ch := s.channel
		s.mu.Unlock()
		if err := ch.Subscribe(scope); err != nil {
			s.log.WithError(err).Debug("subscribe frame failed")
		}
	} else {
		s.startConnectLocked(true)
		s.mu.Unlock()
	}

	return func() {
		sub.cancelled.Store(true)
		s.mu.Lock()
		delete(s.subs, sub)
		empty := len(s.subs) == 0
		if empty {
			s.teardownLocked()
		}
		s.mu.Unlock()
	}
}

// Close tears the subscriber down permanently.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[*subscription]struct{})
	s.teardownLocked()
}

// startConnectLocked launches the connect goroutine unless one is running.
// initial distinguishes the first attempt, which gives up silently on a
// credential failure, from reconnects, which keep retrying.
func (s *Subscriber) startConnectLocked(initial bool) {
	if s.connecting {
		return
	}
	s.connecting = true
	s.status = StatusAuthenticating
	go s.connect(initial)
}

func (s *Subscriber) connect(initial bool) {
	ctx, cancel := context.WithTimeout(context.Background(), tokenFetchTimeout)
	token, err := s.tokens.RealtimeToken(ctx)
	cancel()
	if err != nil {
		s.log.WithError(err).Debug("realtime token fetch failed")
		s.mu.Lock()
		s.connecting = false
		if initial {
			// no credential, no realtime: the app still works via fetches
			s.status = StatusUnauthenticated
		} else {
			s.scheduleReconnectLocked(StatusChannelError)
		}
		s.mu.Unlock()
		return
	}

	ctx, cancel = context.WithTimeout(context.Background(), tokenFetchTimeout)
	ch, err := s.transport.Dial(ctx, token)
	cancel()

	s.mu.Lock()
	s.connecting = false
	if s.closed || len(s.subs) == 0 {
		s.mu.Unlock()
		if ch != nil {
			ch.Close()
		}
		return
	}
	if err != nil {
		s.scheduleReconnectLocked(statusForError(err))
		s.mu.Unlock()
		return
	}

	if s.channel != nil {
		s.channel.Close()
	}
	s.gen++
	gen := s.gen
	s.channel = ch
	s.status = StatusSubscribed
	scopes := make([]Scope, 0, len(s.subs))
	for sub := range s.subs {
		scopes = append(scopes, sub.scope)
	}
	s.mu.Unlock()

	for _, scope := range scopes {
		if err := ch.Subscribe(scope); err != nil {
			s.log.WithError(err).Debug("subscribe frame failed")
		}
	}
	observability.IncRealtimeConnect()
	go s.pump(ch, gen)
}

func (s *Subscriber) pump(ch Channel, gen int) {
	for {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				// a failed read reports on Errors before Events closes, and
				// both cases can be ready at once; prefer the error's
				// classification over a clean close
				select {
				case err := <-ch.Errors():
					s.disconnected(gen, statusForError(err))
				default:
					s.disconnected(gen, StatusClosed)
				}
				return
			}
			s.deliver(ev)
		case err := <-ch.Errors():
			s.disconnected(gen, statusForError(err))
			return
		}
	}
}

func (s *Subscriber) deliver(ev models.ChangeEvent) {
	s.mu.Lock()
	targets := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		if sub.scope.Table == ev.Table && sub.scope.ScopeID == ev.ScopeID {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		if sub.cancelled.Load() {
			continue
		}
		observability.IncRealtimeEvent(ev.Table, ev.Type)
		sub.onEvent(ev)
	}
}

func (s *Subscriber) disconnected(gen int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
	if len(s.subs) == 0 {
		s.status = StatusClosed
		return
	}
	s.scheduleReconnectLocked(status)
}

// scheduleReconnectLocked arms exactly one pending reconnect, replacing any
// previously scheduled one.
func (s *Subscriber) scheduleReconnectLocked(status Status) {
	s.status = status
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
	}
	observability.IncRealtimeReconnect()
	s.reconnectTimer = time.AfterFunc(s.backoff, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reconnectTimer = nil
		if s.closed || len(s.subs) == 0 {
			return
		}
		s.status = StatusReconnecting
		s.startConnectLocked(false)
	})
}

// refreshLoop swaps in a freshly authenticated channel on a fixed interval
// so the credential never reaches its expiry while subscriptions are alive.
func (s *Subscriber) refreshLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			alive := !s.closed && len(s.subs) > 0 && s.channel != nil
			if alive {
				s.startConnectLocked(false)
			}
			s.mu.Unlock()
		}
	}
}

func (s *Subscriber) teardownLocked() {
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.refreshStop != nil {
		close(s.refreshStop)
		s.refreshStop = nil
	}
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
	s.gen++
	s.status = StatusClosed
}

func statusForError(err error) Status {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return StatusTimedOut
	}
	return StatusChannelError
}
