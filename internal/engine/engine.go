// Package engine implements the deterministic thread analysis pipeline:
// urgency and sentiment classification, extractive summarization,
// conversation insights, priority scoring and triage. It performs no I/O;
// the optional abstractive augmenter is an injected function invoked with
// a bounded timeout.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/models"
)

// KeywordTable maps a flag category to the terms that trigger it. It is
// injected configuration so operators can tune vocabulary without code
// changes.
type KeywordTable map[string][]string

const (
	CategoryUrgent    = "urgent"
	CategoryDelay     = "delay"
	CategoryTransport = "transport"
	CategoryCustoms   = "customs"
)

// DefaultKeywords is the built-in vocabulary for the four thread flags.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		CategoryUrgent:    {"urgent", "asap", "emergency", "critical", "immediate"},
		CategoryDelay:     {"delay", "delayed", "postponed", "late", "waiting"},
		CategoryTransport: {"truck", "driver", "transport", "delivery", "shipment", "pickup", "arrival"},
		CategoryCustoms:   {"customs", "carinska", "border", "clearance"},
	}
}

func (t KeywordTable) terms(category string) []string {
	if t != nil {
		if terms, ok := t[category]; ok && len(terms) > 0 {
			return terms
		}
	}
	return DefaultKeywords()[category]
}

// Options holds the tunable constants of the pipeline. The defaults are
// empirical, not contractual.
type Options struct {
	MMRDiversity      float64
	MediumThreshold   int
	HighThreshold     int
	CriticalThreshold int
	DueSoonWindow     time.Duration
	DueTolerance      time.Duration
	AugmentTimeout    time.Duration
}

func DefaultOptions() Options {
	return Options{
		MMRDiversity:      0.65,
		MediumThreshold:   30,
		HighThreshold:     50,
		CriticalThreshold: 70,
		DueSoonWindow:     48 * time.Hour,
		DueTolerance:      24 * time.Hour,
		AugmentTimeout:    10 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MMRDiversity <= 0 || o.MMRDiversity >= 1 {
		o.MMRDiversity = d.MMRDiversity
	}
	if o.MediumThreshold <= 0 {
		o.MediumThreshold = d.MediumThreshold
	}
	if o.HighThreshold <= 0 {
		o.HighThreshold = d.HighThreshold
	}
	if o.CriticalThreshold <= 0 {
		o.CriticalThreshold = d.CriticalThreshold
	}
	if o.DueSoonWindow <= 0 {
		o.DueSoonWindow = d.DueSoonWindow
	}
	if o.DueTolerance <= 0 {
		o.DueTolerance = d.DueTolerance
	}
	if o.AugmentTimeout <= 0 {
		o.AugmentTimeout = d.AugmentTimeout
	}
	return o
}

// SentimentScorer is the pluggable lexicon backend. Implementations must
// be safe for concurrent use; the engine never constructs one itself.
type SentimentScorer interface {
	Score(text string) (models.SentimentScore, error)
}

// Augmenter is the optional abstractive summarization function. A nil
// Augmenter means the extractive summary is final.
type Augmenter func(ctx context.Context, text string) (string, error)

type Engine struct {
	opts      Options
	keywords  KeywordTable
	sentiment SentimentScorer
	augment   Augmenter
	logger    zerolog.Logger
}

// New builds an engine. sentiment may be nil (neutral scores) and augment
// may be nil (extractive summaries only).
func New(keywords KeywordTable, sentiment SentimentScorer, augment Augmenter, opts Options, logger zerolog.Logger) *Engine {
	if sentiment == nil {
		sentiment = NeutralScorer{}
	}
	return &Engine{
		opts:      opts.withDefaults(),
		keywords:  keywords,
		sentiment: sentiment,
		augment:   augment,
		logger:    logger,
	}
}

// Keywords exposes the engine's vocabulary so callers derive metadata
// flags from the same table the pipeline scores with.
func (e *Engine) Keywords() KeywordTable {
	return e.keywords
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
