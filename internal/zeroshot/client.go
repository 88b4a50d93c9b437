// Package zeroshot calls a hosted zero-shot classification model to
// rank candidate spending categories for a text fragment. Calls are
// cached, retried and guarded by a circuit breaker so the pipeline
// keeps working when the hosted model does not.
package zeroshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zhuantitest/ledgerparse/internal/breaker"
	"github.com/zhuantitest/ledgerparse/internal/common"
	"github.com/zhuantitest/ledgerparse/internal/model"
)

const (
	// DefaultEndpoint is the hosted inference endpoint for the
	// multilingual NLI model used for zero-shot classification.
	DefaultEndpoint = "https://api-inference.huggingface.co/models/MoritzLaurer/mDeBERTa-v3-base-mnli-xnli"

	// DefaultTemplate is the Traditional Chinese hypothesis template.
	// The model substitutes each candidate label for {}.
	DefaultTemplate = "這段描述屬於「{}」。"

	// DefaultInputPrefix anchors short item names in a spending context
	// so the NLI model does not treat them as free-floating nouns.
	DefaultInputPrefix = "消費項目："

	DefaultTimeout = 20 * time.Second
)

// DefaultRetry is the backoff schedule for transient provider errors.
var DefaultRetry = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 300 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// Config configures a Classifier. Zero values fall back to defaults;
// Token may be empty for unauthenticated (rate-limited) access.
type Config struct {
	Endpoint    string
	Token       string
	Template    string
	InputPrefix string
	Timeout     time.Duration
	CacheTTL    time.Duration
	CacheMax    int
	MultiLabel  bool
	Retry       common.RetryOptions
}

// Classifier ranks candidate labels for a text via the hosted model.
type Classifier struct {
	cfg     Config
	client  *http.Client
	cache   *resultCache
	breaker *breaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClassifier creates a Classifier from cfg.
func NewClassifier(cfg Config) *Classifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetry
	}
	return &Classifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		cache:   newResultCache(cfg.CacheTTL, cfg.CacheMax),
		breaker: breaker.New(breaker.DefaultFailureThreshold, breaker.DefaultCooldown),
		logger:  slog.Default().With("component", "zeroshot"),
	}
}

// Available reports whether the circuit currently admits calls.
func (c *Classifier) Available() bool {
	return c.breaker.Allow()
}

type request struct {
	Inputs     string            `json:"inputs"`
	Parameters requestParameters `json:"parameters"`
}

type requestParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template"`
	MultiLabel         bool     `json:"multi_label"`
}

type response struct {
	Sequence      string    `json:"sequence"`
	Labels        []string  `json:"labels"`
	Scores        []float64 `json:"scores"`
	Error         string    `json:"error"`
	EstimatedTime float64   `json:"estimated_time"`
}

// Rank asks the hosted model to score every candidate label for text
// and returns the rankings sorted best-first. Identical requests within
// the cache TTL are served locally without a network call.
func (c *Classifier) Rank(ctx context.Context, text string, labels []string) (model.LabelRankings, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyInput
	}
	if len(labels) == 0 {
		return nil, common.ErrNoLabels
	}

	key := c.cacheKey(text, labels)
	if rankings, ok := c.cache.get(key); ok {
		c.logger.Debug("Cache hit", "text", text)
		return rankings, nil
	}

	if !c.breaker.Allow() {
		return nil, fmt.Errorf("zero-shot classifier: %w", common.ErrCircuitOpen)
	}

	var rankings model.LabelRankings
	err := common.WithRetry(ctx, func() error {
		var callErr error
		rankings, callErr = c.call(ctx, text, labels)
		return callErr
	}, c.cfg.Retry)
	if err != nil {
		c.breaker.Failure()
		return nil, err
	}

	c.breaker.Success()
	c.cache.put(key, rankings)
	return rankings, nil
}

// Best returns the single highest-scoring label for text. When the
// provider is unreachable it degrades to the neutral category at zero
// confidence instead of failing.
func (c *Classifier) Best(ctx context.Context, text string, labels []string) model.LabelScore {
	rankings, err := c.Rank(ctx, text, labels)
	if err != nil {
		common.LogDebug("Zero-shot ranking failed, using neutral fallback",
			common.Fields{"text": text, "error": err.Error()})
		return model.LabelScore{Label: model.CategoryOther, Score: 0}
	}
	top := rankings.Top()
	if top == nil {
		return model.LabelScore{Label: model.CategoryOther, Score: 0}
	}
	return *top
}

func (c *Classifier) call(ctx context.Context, text string, labels []string) (model.LabelRankings, error) {
	payload := request{
		Inputs: c.cfg.InputPrefix + text,
		Parameters: requestParameters{
			CandidateLabels:    labels,
			HypothesisTemplate: c.cfg.Template,
			MultiLabel:         c.cfg.MultiLabel,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding below.
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrRateLimit
	case resp.StatusCode == http.StatusServiceUnavailable:
		// The hosted model is still loading; worth retrying.
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("model loading (status %d): %s", resp.StatusCode, truncate(respBody)),
			Retryable: true,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("classifier rejected request (status %d): %s", resp.StatusCode, truncate(respBody)),
			Retryable: false,
		}
	default:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, truncate(respBody)),
			Retryable: true,
		}
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
	}
	if parsed.Error != "" {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("classifier reported: %s", parsed.Error),
			Retryable: parsed.EstimatedTime > 0,
		}
	}
	if len(parsed.Labels) == 0 || len(parsed.Labels) != len(parsed.Scores) {
		return nil, fmt.Errorf("%w: %d labels, %d scores", common.ErrMalformedReply, len(parsed.Labels), len(parsed.Scores))
	}

	rankings := make(model.LabelRankings, len(parsed.Labels))
	for i, label := range parsed.Labels {
		rankings[i] = model.LabelScore{Label: label, Score: parsed.Scores[i]}
	}
	if err := rankings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedReply, err)
	}
	rankings.Sort()
	return rankings, nil
}

// cacheKey covers every request field that changes the model's answer.
func (c *Classifier) cacheKey(text string, labels []string) string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%t",
		c.cfg.InputPrefix+text, strings.Join(labels, "\x1e"), c.cfg.Template, c.cfg.MultiLabel)
}

func truncate(b []byte) string {
	const max = 200
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
