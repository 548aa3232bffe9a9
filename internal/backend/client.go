package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	csrfCookieName  = "csrftoken"
	csrfHeader      = "X-CSRFToken"
	requestIDHeader = "X-Request-ID"

	maxBodySize = 10 << 20
)

type Options struct {
	BaseURL  string
	Language string
	// CSRFToken, when set, is sent instead of the csrftoken cookie.
	CSRFToken string
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client talks to the Briefly backend. It keeps Django's session and
// csrftoken cookies in its own jar.
type Client struct {
	base     *url.URL
	language string
	token    string
	http     *http.Client
	jar      http.CookieJar
	log      *zap.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		base:     base,
		language: strings.Trim(opts.Language, "/"),
		token:    opts.CSRFToken,
		http: &http.Client{
			Timeout:   timeout,
			Transport: opts.Transport,
			Jar:       jar,
		},
		jar: jar,
		log: log.Named("backend"),
	}, nil
}

// Cookies returns the cookies the jar holds for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.base)
}

// SetCookies restores cookies saved from an earlier session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.base, cookies)
}

// pageURL builds a language-prefixed URL: {base}/{lang}/{path}.
func (c *Client) pageURL(path string) string {
	if c.language == "" {
		return c.rootURL(path)
	}
	return c.base.String() + "/" + c.language + "/" + strings.TrimLeft(path, "/")
}

// rootURL builds an unprefixed URL, used by the admin CRUD endpoints.
func (c *Client) rootURL(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// csrfToken returns the anti-forgery token, fetching the login page once to
// have Django set the cookie when the jar does not hold one yet.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}
	if tok := c.cookie(csrfCookieName); tok != "" {
		return tok, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL("login/"), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching csrf cookie: %w", ErrNetwork, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	resp.Body.Close()

	tok := c.cookie(csrfCookieName)
	if tok == "" {
		c.log.Warn("backend did not set a csrf cookie", zap.Int("status", resp.StatusCode))
	}
	return tok, nil
}

// send performs one request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) send(ctx context.Context, method, rawURL string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, rawURL, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, rawURL, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if method != http.MethodGet && method != http.MethodHead {
		tok, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.Header.Set(csrfHeader, tok)
		}
		// Django rejects HTTPS posts without a same-origin Referer.
		req.Header.Set("Referer", c.pageURL(""))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, rawURL, err)
	}

	c.log.Debug("request done",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return resp, nil
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, rawURL, body, contentType, out)
}

func newHTTPError(status int, body []byte) *HTTPError {
	var payload struct {
		Error string `json:"error"`
	}
	herr := &HTTPError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		herr.Message = payload.Error
	}
	return herr
}

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == status
}
