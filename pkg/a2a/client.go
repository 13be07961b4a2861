package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/skyward/skyguide/pkg/logger"
	"github.com/skyward/skyguide/pkg/sse"
)

// Client speaks JSON-RPC 2.0 over HTTP POST to one agent endpoint.
// It imposes no timeouts of its own; callers bound operations through the
// context or a custom http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the client logger.
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the agent at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		log:        logger.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) post(ctx context.Context, rpcReq Request, accept string) (*http.Response, error) {
	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, &TransportError{Op: rpcReq.Method, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: rpcReq.Method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: rpcReq.Method, Err: err}
	}
	return resp, nil
}

// call performs a unary request/response exchange.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	resp, err := c.post(ctx, NewRequest(method, params), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		// Some servers still wrap failures in a JSON-RPC error envelope.
		if result, derr := DecodeResponse(body); derr != nil {
			var perr *ProtocolError
			if errors.As(derr, &perr) {
				return nil, perr
			}
			_ = result
		}
		return nil, &TransportError{Op: method, Err: errors.New(resp.Status)}
	}
	return DecodeResponse(body)
}

// GetTask fetches a task snapshot including its stored history.
func (c *Client) GetTask(ctx context.Context, id string, historyLength int) (*Task, error) {
	raw, err := c.call(ctx, MethodTasksGet, TaskQueryParams{ID: id, HistoryLength: historyLength})
	if err != nil {
		return nil, err
	}
	result := Classify(raw)
	if result.Kind != KindTask {
		return nil, &DecodeError{Err: errors.New("tasks/get returned " + result.Kind.String() + " instead of a task")}
	}
	return result.Task, nil
}

// SendMessage performs a non-streaming message/send exchange and classifies
// the single result.
func (c *Client) SendMessage(ctx context.Context, msg Message) (Result, error) {
	raw, err := c.call(ctx, MethodMessageSend, MessageSendParams{Message: msg})
	if err != nil {
		return Result{}, err
	}
	return Classify(raw), nil
}

// Stream opens a message/stream call and returns the live result stream.
// The caller must Close the stream.
func (c *Client) Stream(ctx context.Context, msg Message) (*ResultStream, error) {
	resp, err := c.post(ctx, NewRequest(MethodMessageStream, MessageSendParams{Message: msg}), "text/event-stream")
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode != http.StatusOK || mediaType != "text/event-stream" {
		defer resp.Body.Close()
		body, rerr := io.ReadAll(resp.Body)
		if rerr == nil {
			if _, derr := DecodeResponse(body); derr != nil {
				var perr *ProtocolError
				if errors.As(derr, &perr) {
					return nil, perr
				}
			}
		}
		return nil, &TransportError{Op: MethodMessageStream, Err: errors.New(resp.Status)}
	}

	return &ResultStream{
		body:   resp.Body,
		events: sse.NewReader(resp.Body),
		log:    c.log,
	}, nil
}

// ResultStream yields classified results from an open SSE connection.
// Each event's data payload is itself a JSON-RPC response; malformed payloads
// are frame-local and skipped, a server error object ends the stream.
type ResultStream struct {
	body   io.ReadCloser
	events *sse.Reader
	log    *logger.Logger
}

// Next returns the next classified result. It returns io.EOF when the server
// closes the stream cleanly, a *ProtocolError if an event carries a JSON-RPC
// error, and a *TransportError for connection failures mid-stream.
func (s *ResultStream) Next() (Result, error) {
	for {
		ev, err := s.events.Next()
		if err != nil {
			if err == io.EOF {
				return Result{}, io.EOF
			}
			return Result{}, &TransportError{Op: MethodMessageStream, Err: err}
		}

		raw, err := DecodeResponse([]byte(ev.Data))
		if err != nil {
			var perr *ProtocolError
			if errors.As(err, &perr) {
				return Result{}, perr
			}
			s.log.Warn("dropping malformed frame (event %q): %v", ev.Name, err)
			continue
		}
		return Classify(raw), nil
	}
}

// Close releases the underlying connection. Buffered decoder state is
// discarded; cancellation does not flush partial lines.
func (s *ResultStream) Close() error {
	return s.body.Close()
}
