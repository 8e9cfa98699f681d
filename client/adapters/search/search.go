package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"yadro.com/comicsearch/client/core"
)

const (
	maxErrorBody    = 64 << 10
	codeSyntaxError = "syntax_error"
)

type TokenSource interface {
	Token() (string, error)
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("empty base url")
	}
	c := &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResp struct {
	Count     int             `json:"count"`
	Results   []core.ComicRef `json:"results"`
	QueryTime float64         `json:"query_time"`
}

type healthResp struct {
	Version string `json:"version"`
}

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) Search(ctx context.Context, q core.Query) (core.SearchResult, error) {
	var sr searchResp
	if err := c.getJSON(ctx, q.Encode(), &sr); err != nil {
		return core.SearchResult{}, err
	}
	if sr.Results == nil {
		sr.Results = []core.ComicRef{}
	}
	if sr.Count < 0 {
		return core.SearchResult{}, &core.Error{Kind: core.KindDecode, Msg: "negative result count"}
	}
	return core.SearchResult{
		Count:  sr.Count,
		Comics: sr.Results,
		Time:   sr.QueryTime,
	}, nil
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	var hr healthResp
	if err := c.getJSON(ctx, "/health", &hr); err != nil {
		return "", err
	}
	return hr.Version, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &core.Error{Kind: core.KindTransport, Msg: "build request", Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Token "+tok)
	}

	c.log.Debug("sending request", "path", path, "request_id", reqID)
	resp, err := c.http.Do(req)
	if err != nil {
		return &core.Error{Kind: core.KindTransport, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("close response body failed", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &core.Error{Kind: core.KindTransport, Err: ctx.Err()}
		}
		return &core.Error{Kind: core.KindDecode, Msg: "decode response", Err: err}
	}
	return nil
}

// statusError reads the {"error", "code"} payload. Without a usable body the
// status text is the message.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var er errorResp
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	switch {
	case er.Code == codeSyntaxError:
		return &core.Error{Kind: core.KindInvalidQuery, Msg: "invalid query syntax", Err: errors.New(msg)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &core.Error{Kind: core.KindUnauthorized, Status: resp.StatusCode, Msg: msg}
	default:
		return &core.Error{Kind: core.KindStatus, Status: resp.StatusCode, Msg: msg}
	}
}
