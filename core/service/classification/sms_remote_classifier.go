package classification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"sms_classifier/core/domain"
	"sms_classifier/pkg/httputil"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/resilience"
)

// =============================================================================
// Remote Classifier
// =============================================================================

// RemoteConfig configures the remote classification service client.
type RemoteConfig struct {
	BaseURL        string
	AttemptTimeout time.Duration // bounds one HTTP attempt
	Attempts       int
	BackoffBase    time.Duration // doubled after each failed attempt
}

func DefaultRemoteConfig(baseURL string) RemoteConfig {
	return RemoteConfig{
		BaseURL:        baseURL,
		AttemptTimeout: 10 * time.Second,
		Attempts:       3,
		BackoffBase:    time.Second,
	}
}

// classifyRequest is the POST {base}/classify body.
type classifyRequest struct {
	Text     string             `json:"text"`
	Sender   *string            `json:"sender,omitempty"`
	Features map[string]float32 `json:"features,omitempty"`
}

// classifyResponse is the service reply. Absent verdicts decode as nil.
type classifyResponse struct {
	IsOTP      *bool    `json:"isOtp"`
	OTPIntent  *string  `json:"otpIntent"`
	IsPhishing *bool    `json:"isPhishing"`
	PhishScore float32  `json:"phishScore"`
	Reasons    []string `json:"reasons"`
}

// RemoteClassifier delegates classification to an HTTP service with retry and
// exponential backoff. Transport failures never escape Predict.
type RemoteClassifier struct {
	baseURL        string
	attemptTimeout time.Duration
	client         *http.Client
	attempts       int
	backoffBase    time.Duration
	wrapBackoff    func(retry.Backoff) retry.Backoff
	cb             *gobreaker.CircuitBreaker
	log            zerolog.Logger
}

// RemoteOption customises a RemoteClassifier.
type RemoteOption func(*RemoteClassifier)

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteClassifier) { r.client = c }
}

// WithBackoffWrapper decorates the per-call backoff policy.
func WithBackoffWrapper(wrap func(retry.Backoff) retry.Backoff) RemoteOption {
	return func(r *RemoteClassifier) { r.wrapBackoff = wrap }
}

func NewRemoteClassifier(cfg RemoteConfig, opts ...RemoteOption) *RemoteClassifier {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}

	r := &RemoteClassifier{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		attemptTimeout: cfg.AttemptTimeout,
		client:         httputil.NewOptimizedClient(httputil.ClassifierClientConfig(cfg.AttemptTimeout)),
		attempts:       cfg.Attempts,
		backoffBase:    cfg.BackoffBase,
		log:            logger.Component("remote_classifier"),
	}
	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-classifier",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Predict posts the message to {base}/classify. After the final failed
// attempt it returns an all-Unknown prediction naming the last error.
func (r *RemoteClassifier) Predict(ctx context.Context, features *domain.MessageFeatures) *domain.Prediction {
	start := time.Now()

	body, err := json.Marshal(newClassifyRequest(features))
	if err != nil {
		return domain.UnknownPrediction("Error: "+err.Error(), time.Since(start).Milliseconds())
	}

	var (
		resp    *classifyResponse
		lastErr error
	)
	err = retry.Do(ctx, r.backoff(&lastErr), func(ctx context.Context) error {
		out, err := r.cb.Execute(func() (interface{}, error) {
			return r.post(ctx, body)
		})
		if err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		resp = out.(*classifyResponse)
		return nil
	})
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		r.log.Error().Err(err).Int64("elapsed_ms", elapsed).Msg("all classify attempts failed")
		return domain.UnknownPrediction("Server error: "+err.Error(), elapsed)
	}

	reasons := resp.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return &domain.Prediction{
		IsOTP:           domain.FromPtr(resp.IsOTP),
		OTPIntent:       resp.OTPIntent,
		IsPhishing:      domain.FromPtr(resp.IsPhishing),
		PhishScore:      resp.PhishScore,
		Reasons:         reasons,
		InferenceTimeMs: elapsed,
	}
}

// backoff builds the policy for one Predict call: attempts-1 retries at
// base, 2*base, ... Each retry is logged with the failure that caused it.
func (r *RemoteClassifier) backoff(lastErr *error) retry.Backoff {
	b := resilience.Observe(resilience.Exponential(r.backoffBase, uint64(r.attempts-1)), func(n int, d time.Duration) {
		r.log.Warn().Err(*lastErr).Int("attempt", n).Dur("backoff", d).Msg("classify attempt failed")
	})
	if r.wrapBackoff != nil {
		b = r.wrapBackoff(b)
	}
	return b
}

// post performs one bounded attempt. Any non-2xx status is a failure.
func (r *RemoteClassifier) post(ctx context.Context, body []byte) (*classifyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithContext(ctx, r.client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// IsAvailable is false only while the circuit breaker is open.
func (r *RemoteClassifier) IsAvailable(_ context.Context) bool {
	return r.cb.State() != gobreaker.StateOpen
}

func newClassifyRequest(f *domain.MessageFeatures) *classifyRequest {
	req := &classifyRequest{Text: f.Text, Sender: f.Sender}
	if len(f.HeuristicFeatures) > 0 {
		req.Features = make(map[string]float32, len(f.HeuristicFeatures))
		for i, v := range f.HeuristicFeatures {
			req.Features["feature_"+strconv.Itoa(i)] = v
		}
	}
	return req
}
