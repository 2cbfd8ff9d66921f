package classify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/d23ai/sahay-gateway/internal/llm"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/metrics"
)

// Result is the outcome of classifying one message.
type Result struct {
	Intent     string
	Confidence float64
	Entities   map[string]any
	Language   string
}

// Classifier turns raw text into an intent, entities and a language.
// Classification is pure with respect to conversation state; follow-up
// upgrades using cached context happen in the orchestrator.
//
// Layers run in strict precedence order:
//  1. structural extraction (fixed-format tokens next to a trigger word)
//  2. localized keyword tables in fixed priority order
//  3. LLM fallback constrained to the known intent enum
type Classifier struct {
	llm       llm.Client
	model     string
	timeout   time.Duration
	threshold float64
	logger    *slog.Logger
}

// New creates a classifier. client may be nil, in which case the LLM
// layer is skipped and unmatched messages read as chat. upgradeThreshold
// tunes the follow-up policy (see MaybeUpgrade); zero picks the default.
func New(client llm.Client, model string, timeout time.Duration, upgradeThreshold float64) *Classifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if upgradeThreshold <= 0 {
		upgradeThreshold = defaultUpgradeThreshold
	}
	return &Classifier{
		llm:       client,
		model:     model,
		timeout:   timeout,
		threshold: upgradeThreshold,
		logger:    logging.WithComponent("classifier"),
	}
}

// Classify classifies one message. It never returns an error: every
// failure mode degrades to the generic chat intent.
func (c *Classifier) Classify(ctx context.Context, text, languageHint string) Result {
	language := languageHint
	if language == "" {
		language = DetectLanguage(text)
	}

	if strings.TrimSpace(text) == "" {
		return Result{Intent: IntentChat, Confidence: 1.0, Entities: map[string]any{}, Language: language}
	}

	if r := matchStructural(text); r != nil {
		metrics.ClassifierLayer.WithLabelValues("structural").Inc()
		r.Language = language
		return *r
	}

	if r := matchKeywords(text); r != nil {
		metrics.ClassifierLayer.WithLabelValues("keyword").Inc()
		r.Language = language
		return *r
	}

	r := c.classifyWithLLM(ctx, text)
	r.Language = language
	return r
}

// trainTriggers mark a 4-5 digit token as a train number rather than an
// arbitrary numeric token.
var trainTriggers = []string{
	"train", "running status", "where is",
	"ट्रेन", "गाड़ी", "रेलगाड़ी", "ট্রেন", "ரயில்", "రైలు", "ರೈಲು",
	"ട്രെയിൻ", "ટ્રેન", "ਟ੍ਰੇਨ", "ଟ୍ରେନ୍",
}

// matchStructural recognizes fixed-format payloads co-located with a
// trigger keyword. These short-circuit to a high-confidence result
// before any keyword table runs.
func matchStructural(text string) *Result {
	lower := strings.ToLower(text)

	if pnr := ExtractPNR(text); pnr != "" {
		compact := strings.ReplaceAll(text, " ", "")
		if strings.Contains(lower, "pnr") || len(compact) <= 15 {
			return &Result{
				Intent:     IntentPNRStatus,
				Confidence: 0.95,
				Entities:   map[string]any{"pnr": pnr},
			}
		}
	}

	if trainNumber := ExtractTrainNumber(text); trainNumber != "" {
		for _, trigger := range trainTriggers {
			if strings.Contains(lower, trigger) || strings.Contains(text, trigger) {
				return &Result{
					Intent:     IntentTrainStatus,
					Confidence: 0.9,
					Entities:   map[string]any{"train_number": trainNumber},
				}
			}
		}
	}

	return nil
}
