package discord

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/platform/resilience"
	"github.com/jordan-day/harambot/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://discord.com/api/v10"

var errDiscordTransient = crerr.New("discord transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	BotToken       string
	Timeout        time.Duration
	Clock          clock.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts channel messages through the Discord REST API.
type Client struct {
	client   *http.Client
	baseURL  string
	botToken string
	logger   *logging.Logger
	breaker  *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL, err := validateHTTPBaseURL(baseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid DISCORD_BASE_URL")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		client:   httpClient,
		baseURL:  baseURL,
		botToken: strings.TrimSpace(cfg.BotToken),
		logger:   logger,
		breaker:  resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker, cfg.Clock),
	}, nil
}

// Announce renders the transaction embed and posts it to the announcement's
// channel.
func (c *Client) Announce(ctx context.Context, announcement usecase.Announcement) error {
	embed, err := RenderTransaction(announcement.Transaction, announcement.HeadshotURL)
	if err != nil {
		return err
	}
	return c.SendEmbed(ctx, announcement.ChannelID, embed)
}

func (c *Client) SendEmbed(ctx context.Context, channelID string, embeds ...Embed) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("%w: channel id is required", usecase.ErrInvalidInput)
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "discord circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: discord is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(messagePayload{Embeds: embeds}); err != nil {
		return crerr.Wrap(err, "marshal discord message")
	}

	endpoint := c.baseURL + "/channels/" + url.PathEscape(channelID) + "/messages"
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("discord.channel_id", channelID),
			attribute.Int("discord.embeds", len(embeds)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return crerr.Wrap(err, "create discord request")
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post discord message channel=%s: %v", errDiscordTransient, channelID, err)
		c.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("post discord message status=%d channel=%s body=%s", resp.StatusCode, channelID, strings.TrimSpace(string(raw)))
		if isDiscordRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errDiscordTransient, callErr)
		}
		c.logger.WarnContext(ctx, "discord message rejected", "channel_id", channelID, "status", resp.StatusCode)
		c.recordCircuitResult(callErr)
		return callErr
	}

	c.logger.DebugContext(ctx, "discord message posted", "channel_id", channelID)
	c.recordCircuitResult(nil)
	return nil
}

func (c *Client) recordCircuitResult(err error) {
	if c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errDiscordTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isDiscordRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
