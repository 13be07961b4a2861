package analyze

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/skyward/skyguide/pkg/logger"
	"github.com/skyward/skyguide/pkg/sse"
)

// Client uploads images to the analysis backend and follows the multi-stage
// progress stream it emits. The merge semantics here are the degenerate case
// of the conversational pipeline: stages replace, payloads accumulate, no
// text reconciliation is needed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the client logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the analysis backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
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

// Analyze uploads the image at imagePath and returns the live progress
// stream. language is the ISO code for the narration. The caller must Close
// the stream.
func (c *Client) Analyze(ctx context.Context, imagePath, language string) (*ProgressStream, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}

	// The writer goroutine owns the file handle: the request may come back
	// before the body is fully consumed, so Analyze must not close the file
	// out from under the copy.
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		defer file.Close()
		part, err := form.CreateFormFile("image", filepath.Base(imagePath))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.WriteField("language", language)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pr.Close()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		pr.Close()
		return nil, errors.New("analyze request failed: " + resp.Status)
	}

	return &ProgressStream{
		body:   resp.Body,
		events: sse.NewReader(resp.Body),
		log:    c.log,
	}, nil
}

// ProgressStream yields one ProgressEvent per pipeline stage.
type ProgressStream struct {
	body   io.ReadCloser
	events *sse.Reader
	log    *logger.Logger
	result Result
	failed bool
}

// Next returns the next stage event, or io.EOF once the stream ends.
// An error stage is delivered as an event with Err set; the stream ends
// after it. Unknown stages are dropped and the stream continues.
func (p *ProgressStream) Next() (ProgressEvent, error) {
	if p.failed {
		return ProgressEvent{}, io.EOF
	}
	for {
		ev, err := p.events.Next()
		if err != nil {
			return ProgressEvent{}, err
		}

		stage := Stage(ev.Name)
		ok, stageErr := p.result.merge(stage, ev.Data)
		if !ok {
			p.log.Debug("dropping unknown analysis stage %q", ev.Name)
			continue
		}
		if stageErr != nil {
			p.failed = true
			return ProgressEvent{Stage: StageError, Result: p.result, Err: stageErr}, nil
		}
		return ProgressEvent{Stage: stage, Result: p.result}, nil
	}
}

// Result returns the accumulated result so far.
func (p *ProgressStream) Result() Result {
	return p.result
}

// Close releases the underlying connection.
func (p *ProgressStream) Close() error {
	return p.body.Close()
}
