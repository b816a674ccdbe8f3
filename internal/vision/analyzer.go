package vision

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// Quota exhaustion starts at this backoff and doubles per attempt.
const quotaBaseBackoff = 16 * time.Second

// Analyzer drives a vision provider with quota-aware retries. A run that
// exhausts its quota budget degrades to a heuristic-only sentinel record
// instead of failing, so one rate-limited URL does not sink a batch.
type Analyzer struct {
	provider    interfaces.VisionProvider
	maxAttempts int
	logger      arbor.ILogger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewAnalyzer creates a vision analyzer.
func NewAnalyzer(provider interfaces.VisionProvider, maxAttempts int, logger arbor.ILogger) *Analyzer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Analyzer{
		provider:    provider,
		maxAttempts: maxAttempts,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Analyze extracts a full record from a post screenshot. The returned result
// is never nil on a nil error: quota exhaustion yields the sentinel fallback
// built from heuristic values.
func (a *Analyzer) Analyze(ctx context.Context, jpeg []byte, heuristic *models.PartialMetadata, fallbackName string) (*models.VisionResult, error) {
	return a.generate(ctx, BuildPrompt(heuristic), jpeg, heuristic, fallbackName)
}

// AnalyzeField extracts a single field, used by targeted repair passes.
func (a *Analyzer) AnalyzeField(ctx context.Context, jpeg []byte, field models.RepairField) (*models.VisionResult, error) {
	return a.generate(ctx, BuildFieldPrompt(field), jpeg, nil, "")
}

func (a *Analyzer) generate(ctx context.Context, prompt string, jpeg []byte, heuristic *models.PartialMetadata, fallbackName string) (*models.VisionResult, error) {
	var lastQuotaErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		raw, err := a.provider.Generate(ctx, prompt, jpeg)
		if err == nil {
			jsonStr, err := ExtractJSON(raw)
			if err != nil {
				return nil, err
			}
			return DecodeResult(jsonStr), nil
		}

		if !IsQuotaError(err) {
			return nil, err
		}
		lastQuotaErr = err

		if attempt < a.maxAttempts {
			backoff := quotaBaseBackoff << (attempt - 1)
			a.logger.Warn().
				Err(err).
				Str("provider", a.provider.Name()).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Vision quota hit, backing off")
			if err := a.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	a.logger.Warn().
		Err(lastQuotaErr).
		Str("provider", a.provider.Name()).
		Int("attempts", a.maxAttempts).
		Msg("Vision quota exhausted, emitting fallback record")
	return models.QuotaFallback(fallbackName, heuristic), nil
}

// IsQuotaError classifies provider errors that mean "come back later" rather
// than "this request is broken".
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
