package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

// Service is the subscriber connection manager of one consumer process. It keeps the
// push channel to the relay open and owns the retrying submission path.
type Service struct {
	cfg       Config
	requester Requester
	dialer    Dialer
	logger    *slog.Logger

	// MessageReceived receives the tagged payload of every pushed message.
	MessageReceived Event[string]
	// ErrorOccurred receives a human readable notification when the channel or
	// submissions degrade.
	ErrorOccurred Event[string]
	// Reconnecting is raised when the push channel drops and reconnection starts.
	Reconnecting Event[error]
	// Reconnected is raised with the new connection id once the channel is back.
	Reconnected Event[string]
	// StateChanged is raised on every state transition.
	StateChanged Event[State]

	initMu sync.Mutex

	mu    sync.Mutex
	state State
	conn  PushConnection
	gen   uint64
}

// Option configures a Service.
type Option func(*Service)

func WithRequester(r Requester) Option {
	return func(s *Service) {
		if r != nil {
			s.requester = r
		}
	}
}

func WithDialer(d Dialer) Option {
	return func(s *Service) {
		if d != nil {
			s.dialer = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a disconnected Service. By default submissions go through net/http and
// the push channel through a HubDialer following cfg.ReconnectDelays.
func New(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg.withDefaults(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.requester == nil {
		s.requester = NewHTTPRequester(&http.Client{Timeout: s.cfg.RequestTimeout})
	}
	if s.dialer == nil {
		s.dialer = NewHubDialer(
			WithReconnectDelays(s.cfg.ReconnectDelays...),
			WithDialerLogger(s.logger),
		)
	}
	return s
}

// State returns the current push channel state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionID returns the id of the live push connection, or "" when there is none.
func (s *Service) ConnectionID() string {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ""
	}
	return conn.ConnectionID()
}

// Initialize opens the push channel. It is a no-op while a connection exists.
// A failed handshake is not retried; the caller may call Initialize again.
func (s *Service) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.transition(Connecting)

	url, err := s.hubURL()
	if err != nil {
		s.transition(Disconnected)
		s.ErrorOccurred.emit(MsgConnectFailed)
		return err
	}

	conn, err := s.dialer.Dial(ctx, url, s.pushHandlers(gen))
	if err != nil {
		s.transition(Disconnected)
		if ctx.Err() != nil {
			s.logger.InfoContext(ctx, "push channel connect canceled", logger.Error(err))
			return message.Canceled(ctx.Err())
		}
		s.logger.ErrorContext(ctx, "failed to open push channel", logger.Error(err))
		s.ErrorOccurred.emit(MsgConnectFailed)
		return fmt.Errorf("%w: %w", message.ErrTransport, err)
	}

	s.mu.Lock()
	if s.gen != gen {
		// Closed while dialing.
		s.mu.Unlock()
		_ = conn.Close()
		return message.Canceled(context.Canceled)
	}
	s.conn = conn
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "push channel connected", logger.ConnectionID(conn.ConnectionID()))
	s.transition(Connected)
	return nil
}

// Close releases the push channel. Safe to call repeatedly.
func (s *Service) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	// Late callbacks from the released connection are ignored.
	s.gen++
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	s.transition(Disconnected)
	return err
}

// SendMessage submits text to the ingress endpoint, retrying failed attempts after a
// fixed delay. It returns nil on the first 2xx response, ErrValidation for blank text,
// ErrCanceled when ctx ends, and ErrTransport once every attempt has failed.
func (s *Service) SendMessage(ctx context.Context, text string, opts ...SendOption) error {
	if message.IsBlank(text) {
		return fmt.Errorf("%w: text must not be empty", message.ErrValidation)
	}

	o := sendOptions{
		maxRetries: s.cfg.MaxRetries,
		retryDelay: s.cfg.RetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1, got %d", message.ErrValidation, o.maxRetries)
	}
	if o.idempotencyKey == "" {
		o.idempotencyKey = uuid.NewString()
	}

	url := s.messagesURL()
	sub := Submission{Text: text, IdempotencyKey: o.idempotencyKey}
	log := s.logger.With(logger.IdempotencyKey(o.idempotencyKey))

	var lastErr error
	for n := 1; n <= o.maxRetries; n++ {
		if err := ctx.Err(); err != nil {
			return message.Canceled(err)
		}

		a := s.attempt(ctx, n, url, sub)
		if a.Outcome == OutcomeSuccess {
			o.report(a)
			return nil
		}
		if a.Outcome == OutcomeCanceled {
			o.report(a)
			return message.Canceled(ctx.Err())
		}

		lastErr = a.Err
		if n < o.maxRetries {
			a.Backoff = o.retryDelay
		}
		log.WarnContext(ctx, "message submission attempt failed",
			logger.Attempt(n),
			logger.Result(string(a.Outcome)),
			logger.StatusCode(a.Status),
			logger.Backoff(a.Backoff),
			logger.Error(a.Err),
		)
		o.report(a)

		if n < o.maxRetries {
			if err := sleep(ctx, o.retryDelay); err != nil {
				return message.Canceled(err)
			}
		}
	}

	s.ErrorOccurred.emit(MsgServerUnavailable)
	return fmt.Errorf("%w: %d attempts failed: %w", message.ErrTransport, o.maxRetries, lastErr)
}

func (s *Service) attempt(ctx context.Context, n int, url string, sub Submission) Attempt {
	actx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	a := Attempt{Number: n}
	status, err := s.requester.Post(actx, url, sub)
	a.Status = status

	switch {
	case ctx.Err() != nil:
		a.Outcome = OutcomeCanceled
		a.Err = ctx.Err()
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || actx.Err() != nil):
		a.Outcome = OutcomeTimeout
		a.Err = err
	case err != nil:
		a.Outcome = OutcomeFailure
		a.Err = err
	case status < 200 || status > 299:
		a.Outcome = OutcomeFailure
		a.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	default:
		a.Outcome = OutcomeSuccess
	}
	return a
}

func (o sendOptions) report(a Attempt) {
	if o.onAttempt != nil {
		o.onAttempt(a)
	}
}

// pushHandlers binds connection callbacks to generation gen.
func (s *Service) pushHandlers(gen uint64) PushHandlers {
	return PushHandlers{
		OnMessage: func(payload string) {
			if s.current(gen) {
				s.MessageReceived.emit(payload)
			}
		},
		OnReconnecting: func(err error) {
			if !s.current(gen) {
				return
			}
			s.transition(Reconnecting)
			s.Reconnecting.emit(err)
		},
		OnReconnected: func(id string) {
			if !s.current(gen) {
				return
			}
			s.transition(Connected)
			s.Reconnected.emit(id)
		},
		OnClosed: func(err error) {
			if err == nil {
				return
			}
			s.mu.Lock()
			if s.gen != gen {
				s.mu.Unlock()
				return
			}
			s.conn = nil
			s.mu.Unlock()

			s.logger.Warn("push channel lost", logger.Error(err))
			s.transition(Disconnected)
			s.ErrorOccurred.emit(MsgConnectionLost)
		},
	}
}

func (s *Service) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Service) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	if from != to {
		s.logger.Debug("push channel state changed",
			logger.Key("from", from.String()),
			logger.Key("to", to.String()),
		)
		s.StateChanged.emit(to)
	}
}

func (s *Service) hubURL() (string, error) {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
	default:
		return "", fmt.Errorf("%w: unsupported relay url %q", message.ErrValidation, s.cfg.BaseURL)
	}
	return base + s.cfg.HubPath, nil
}

func (s *Service) messagesURL() string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + s.cfg.MessagesPath
}
