// Package syncclient is the client side of the snapshot sync protocol.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wealthtrack/internal/models"
)

// DefaultTimeout bounds every request when the caller does not set one.
const DefaultTimeout = 10 * time.Second

// Kind classifies a transport failure.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindStatus
	KindDecode
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}

var (
	// ErrTimeout matches any *Error of KindTimeout.
	ErrTimeout = errors.New("sync request timed out")
	// ErrNotFound matches any *Error of KindNotFound.
	ErrNotFound = errors.New("no snapshot stored for this identifier")
)

// Error is returned by every Client method.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Client talks to a sync server rooted at baseURL (for example
// http://localhost:3001/api). It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A non-positive timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type registerResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type uploadRequest struct {
	UserID string           `json:"userId"`
	Data   *models.Snapshot `json:"data"`
}

type uploadResponse struct {
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
}

type downloadResponse struct {
	Success   bool             `json:"success"`
	Data      *models.Snapshot `json:"data"`
	Timestamp int64            `json:"timestamp"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Register asks the server for a fresh sync identifier.
func (c *Client) Register(ctx context.Context) (string, error) {
	var out registerResponse
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", &Error{Op: "register", Kind: KindDecode, Message: "response carried no identifier"}
	}
	return out.UserID, nil
}

// Upload replaces the snapshot stored under id and returns the server timestamp.
func (c *Client) Upload(ctx context.Context, id string, snap *models.Snapshot) (int64, error) {
	var out uploadResponse
	body := uploadRequest{UserID: id, Data: snap}
	if err := c.do(ctx, "upload", http.MethodPost, "/data/upload", body, &out); err != nil {
		return 0, err
	}
	return out.Timestamp, nil
}

// Download fetches the snapshot stored under id. A missing snapshot yields an
// error matching ErrNotFound.
func (c *Client) Download(ctx context.Context, id string) (*models.Snapshot, error) {
	var out downloadResponse
	if err := c.do(ctx, "download", http.MethodGet, "/data/download/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, &Error{Op: "download", Kind: KindDecode, Message: "response carried no data"}
	}
	if err := out.Data.Validate(); err != nil {
		return nil, &Error{Op: "download", Kind: KindDecode, Err: err}
	}
	return out.Data, nil
}

// Delete removes the snapshot stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/data/delete/"+url.PathEscape(id), nil, nil)
}

// HealthCheck reports whether the server answers its liveness probe.
func (c *Client) HealthCheck(ctx context.Context) bool {
	var out healthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return false
	}
	return out.Status == "ok"
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindDecode, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Kind: KindNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: transportKind(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindStatus
		if resp.StatusCode == http.StatusNotFound {
			kind = KindNotFound
		}
		return &Error{Op: op, Kind: kind, Status: resp.StatusCode, Message: serverMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: transportKindOr(err, KindDecode), Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// serverMessage pulls the message out of an error body, if there is one.
func serverMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorResponse
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return ""
}

func transportKind(err error) Kind {
	return transportKindOr(err, KindNetwork)
}

func transportKindOr(err error, fallback Kind) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return fallback
}
