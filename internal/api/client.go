package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valeevte/PriceDashboard/internal/prices"
)

const DefaultHistoryDays = 30

type Kind int

const (
	KindTransport Kind = iota + 1
	KindStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error — ошибка обращения к price API с указанием класса сбоя.
type Error struct {
	Kind      Kind
	Op        string
	ProductID string
	Status    int
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s product=%s: %s", e.Op, e.ProductID, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (http %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of an *Error anywhere in err's chain, or 0.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient accepts the backend root, e.g. "http://localhost:5000".
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// PriceHistory — GET /api/prices/{id}?days=N
func (c *Client) PriceHistory(ctx context.Context, productID string, days int) (prices.ChartData, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out prices.ChartData
	err := c.getJSON(ctx, "price history", productID, "/api/prices/"+url.PathEscape(productID), q, &out)
	return out, err
}

// Comparison — GET /api/prices/compare?product_id={id}
func (c *Client) Comparison(ctx context.Context, productID string) (prices.ChartData, error) {
	q := url.Values{}
	q.Set("product_id", productID)

	var out prices.ChartData
	err := c.getJSON(ctx, "comparison", productID, "/api/prices/compare", q, &out)
	return out, err
}

// Latest — GET /api/products/{id}/latest
func (c *Client) Latest(ctx context.Context, productID string) (prices.LatestPrices, error) {
	var out prices.LatestPrices
	err := c.getJSON(ctx, "latest prices", productID, "/api/products/"+url.PathEscape(productID)+"/latest", nil, &out)
	return out, err
}

// endpoint expects an already escaped path.
func (c *Client) endpoint(escapedPath string, q url.Values) string {
	u := *c.base
	ep := strings.TrimRight(c.base.EscapedPath(), "/") + escapedPath
	u.RawPath = ep
	u.Path, _ = url.PathUnescape(ep)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, op, productID, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, ProductID: productID, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, ProductID: productID, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, ProductID: productID, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindStatus, Op: op, ProductID: productID, Status: resp.StatusCode, Err: errors.New(snippet(b))}
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return &Error{Kind: KindDecode, Op: op, ProductID: productID, Status: resp.StatusCode, Err: fmt.Errorf("%w snippet=%q", err, snippet(b))}
	}
	return nil
}

func snippet(b []byte) string {
	s := string(bytes.TrimSpace(b))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}
