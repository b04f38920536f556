package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/grading"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"google.golang.org/genai"
)

const (
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// contentGenerator is the slice of *genai.Models used by Judge.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Judge is a grading.SemanticGrader backed by a Gemini model.
type Judge struct {
	models      contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	logger      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ grading.SemanticGrader = (*Judge)(nil)

// NewJudge creates a Judge with a Gemini API client configured from cfg.
func NewJudge(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Judge, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newJudge(client.Models, cfg, logger)
}

func newJudge(models contentGenerator, cfg config.LLMConfig, log *slog.Logger) (*Judge, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	retryDelay := time.Duration(cfg.RetryDelayMS) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Judge{
		models:      models,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		logger:      log.With(slog.String("component", "gemini_judge")),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// JudgeAnswer implements grading.SemanticGrader. An empty answer scores 0
// without calling the model.
func (j *Judge) JudgeAnswer(ctx context.Context, question, expected, answer string) (grading.Result, error) {
	if strings.TrimSpace(answer) == "" {
		return grading.Result{Score: domain.MinScore, Explanation: "No answer provided."}, nil
	}

	prompt, err := renderPrompt(promptData{Question: question, Expected: expected, Answer: answer})
	if err != nil {
		return grading.Result{}, err
	}

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	v, err := j.callWithRetry(ctx, prompt)
	if err != nil {
		return grading.Result{}, err
	}

	return grading.Result{
		Score:       clamp(*v.Score),
		Explanation: strings.TrimSpace(v.Explanation),
	}, nil
}

func (j *Judge) callWithRetry(ctx context.Context, prompt string) (*verdict, error) {
	log := logger.FromContextOrDefault(ctx, j.logger)
	temperature := j.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema(),
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	for attempt := 0; ; attempt++ {
		resp, err := j.models.GenerateContent(ctx, j.model, contents, genConfig)
		if err == nil {
			var v *verdict
			v, err = parseVerdict(resp)
			if err == nil {
				log.Debug("semantic grading succeeded",
					slog.Int("attempt", attempt+1),
					slog.Int("score", *v.Score))
				return v, nil
			}
		}

		if !retryable(err) {
			log.Warn("semantic grading failed",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			return nil, classify(err)
		}
		if attempt >= j.maxRetries {
			log.Warn("semantic grading retries exhausted",
				slog.Int("attempts", attempt+1),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, j.maxRetries, err)
		}

		delay := j.backoff(attempt)
		log.Info("retrying semantic grading",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns retryDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (j *Judge) backoff(attempt int) time.Duration {
	j.mu.Lock()
	jitter := 0.5 + j.rng.Float64()*0.5
	j.mu.Unlock()

	d := time.Duration(float64(j.retryDelay) * math.Pow(2, float64(attempt)) * jitter)
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func parseVerdict(resp *genai.GenerateContentResponse) (*verdict, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: reply blocked", ErrContentBlocked)
	}
	if cand.Content == nil {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var v verdict
	if err := json.Unmarshal([]byte(text.String()), &v); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON reply: %v", ErrInvalidResponse, err)
	}
	if v.Score == nil {
		return nil, fmt.Errorf("%w: reply has no score", ErrInvalidResponse)
	}
	return &v, nil
}

// retryable reports whether err may succeed on a later attempt.
func retryable(err error) bool {
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrContentBlocked) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return true
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	if _, ok := apiErrorCode(err); ok {
		return fmt.Errorf("%w: %v", ErrPermanentFailure, err)
	}
	return err
}

func apiErrorCode(err error) (int, bool) {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}

func clamp(score int) int {
	if score < domain.MinScore {
		return domain.MinScore
	}
	if score > domain.MaxScore {
		return domain.MaxScore
	}
	return score
}
