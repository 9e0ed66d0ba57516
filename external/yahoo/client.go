package yahoo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/platform/resilience"
	"github.com/jordan-day/harambot/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL      = "https://fantasysports.yahooapis.com/fantasy/v2"
	defaultRetryBackoff = time.Second
	maxResponseBytes    = 6 << 20
)

var bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
var errYahooTransient = crerr.New("yahoo transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	Clock          clock.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client issues authenticated GETs against the Yahoo Fantasy v2 API and
// returns the decoded "fantasy_content" object.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   maxInt(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker, cfg.Clock),
	}
}

// getContent fetches path (relative to the API root, without format) and
// returns the "fantasy_content" object.
func (c *Client) getContent(ctx context.Context, token *oauth2.Token, path string) (map[string]any, error) {
	if token == nil || strings.TrimSpace(token.AccessToken) == "" {
		return nil, fmt.Errorf("%w: missing access token", usecase.ErrUnauthorized)
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "yahoo circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fantasy provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if strings.Contains(path, "?") {
		fullURL += "&format=json"
	} else {
		fullURL += "?format=json"
	}

	out, err, _ := c.flight.Do(credentialKey(token)+" "+path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, token, fullURL)
		if c.breaker != nil {
			if reqErr != nil && isYahooCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	var envelope struct {
		FantasyContent map[string]any `json:"fantasy_content"`
	}
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode yahoo payload: %w", err)
	}
	if envelope.FantasyContent == nil {
		return nil, fmt.Errorf("yahoo payload has no fantasy_content: %s", abbreviateBody(raw))
	}
	return envelope.FantasyContent, nil
}

func (c *Client) executeRequest(ctx context.Context, token *oauth2.Token, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		token.SetAuthHeader(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errYahooTransient, sanitizeSensitiveText(err.Error(), token.AccessToken))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errYahooTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: yahoo status=%d body=%s", usecase.ErrUnauthorized, resp.StatusCode, abbreviateBody(raw))
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: yahoo status=%d body=%s", errYahooTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("yahoo status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := resilience.Wait(ctx, resilience.LinearBackoff(c.retryBackoff, attempt)); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("yahoo request failed")
	}
	c.logger.WarnContext(ctx, "yahoo request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// credentialKey keeps single-flight sharing within one credential.
func credentialKey(token *oauth2.Token) string {
	sum := sha256.Sum256([]byte(token.AccessToken))
	return hex.EncodeToString(sum[:8])
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return bearerRegex.ReplaceAllString(value, "Bearer REDACTED")
}

func isYahooCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errYahooTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
