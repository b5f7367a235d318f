package pixgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pixlink/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://pixgo.org/api/v1"
	apiKeyHeader   = "X-API-Key"
	defaultBurst   = 10
)

// Gateway is the subset of the PixGo API the checkout needs.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	CheckStatus(ctx context.Context, paymentID string) (*StatusResponse, error)
	GetDetails(ctx context.Context, paymentID string) (*StatusResponse, error)
}

type Options struct {
	APIKey  string
	BaseURL string
	// RateLimit caps outbound requests per second; <= 0 disables pacing.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the underlying client, mostly for tests.
	HTTPClient *http.Client
}

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

var _ Gateway = (*Client)(nil)

// NewClient binds the API key once; it is never read from anywhere else.
func NewClient(opts Options) *Client {
	if opts.APIKey == "" {
		logger.L().Warn("PixGo API key is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetHeader(apiKeyHeader, opts.APIKey).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Client{
		http:    rc,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ----------------- CreatePayment -----------------

// CreatePayment returns business failures (success=false) as the envelope
// with a nil error. Only a missing response is an error.
func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("external_id", req.ExternalID),
		zap.String("amount", req.Amount.String()),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "create", Err: err}
	}

	log.Info("Sending payment request to PixGo")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/payment/create")
	if err != nil {
		log.Error("PixGo request failed", zap.Error(err))
		return nil, &TransportError{Op: "create", Err: err}
	}

	var out CreateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		if resp.IsError() {
			log.Error("PixGo returned non-JSON error",
				zap.Int("status", resp.StatusCode()),
				zap.ByteString("response", resp.Body()),
			)
			return &CreateResponse{Success: false, Message: resp.Status()}, nil
		}
		// an unreadable success body is a failed creation, not a transport error
		log.Error("Failed decoding PixGo response", zap.Error(err))
		return &CreateResponse{Success: false}, nil
	}

	if resp.IsError() {
		// an error status still carries the gateway's envelope
		out.Success = false
		if out.Message == "" {
			out.Message = out.Error
		}
	}

	if !out.Success {
		log.Warn("PixGo rejected payment",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", out.Message),
		)
		return &out, nil
	}

	log.Info("PixGo payment created",
		zap.String("payment_id", out.Data.PaymentID),
		zap.String("status", string(out.Data.Status)),
	)
	return &out, nil
}

// ----------------- CheckStatus / GetDetails -----------------

func (c *Client) CheckStatus(ctx context.Context, paymentID string) (*StatusResponse, error) {
	return c.getStatus(ctx, "status", "/payment/{payment_id}/status", paymentID)
}

// GetDetails fetches the full record. It is meant for out-of-band inspection,
// not for the polling loop.
func (c *Client) GetDetails(ctx context.Context, paymentID string) (*StatusResponse, error) {
	return c.getStatus(ctx, "details", "/payment/{payment_id}", paymentID)
}

func (c *Client) getStatus(ctx context.Context, op, path, paymentID string) (*StatusResponse, error) {
	log := logger.FromCtx(ctx).With(zap.String("payment_id", paymentID), zap.String("op", op))

	if strings.TrimSpace(paymentID) == "" {
		return nil, ErrEmptyPaymentID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("payment_id", paymentID).
		Get(path)
	if err != nil {
		log.Error("PixGo request failed", zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.IsError() {
		log.Error("PixGo returned error",
			zap.Int("http_status", resp.StatusCode()),
			zap.ByteString("response", resp.Body()),
		)
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var out StatusResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		log.Error("Failed decoding PixGo response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	log.Debug("PixGo status fetched", zap.String("status", string(out.Data.Status)), zap.Bool("success", out.Success))
	return &out, nil
}
