package engine

import (
	govader "github.com/jonreiter/govader"

	"github.com/threadintel/backend/internal/models"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// NeutralScorer is the no-op backend used when no lexicon is configured.
type NeutralScorer struct{}

func (NeutralScorer) Score(string) (models.SentimentScore, error) {
	return models.SentimentScore{Neutral: 1.0, Label: SentimentNeutral}, nil
}

// VaderScorer wraps the govader lexicon analyzer. Construct once and
// share; PolarityScores is read-only after construction.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *VaderScorer) Score(text string) (models.SentimentScore, error) {
	scores := s.analyzer.PolarityScores(text)
	return models.SentimentScore{
		Compound: round3(scores.Compound),
		Positive: round3(scores.Positive),
		Neutral:  round3(scores.Neutral),
		Negative: round3(scores.Negative),
		Label:    sentimentLabel(scores.Compound),
	}, nil
}

func sentimentLabel(compound float64) string {
	switch {
	case compound >= 0.05:
		return SentimentPositive
	case compound <= -0.05:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// messageSentiment runs the configured backend, degrading to neutral on
// failure so one bad message never fails the thread.
func (e *Engine) messageSentiment(text string) models.SentimentScore {
	score, err := e.sentiment.Score(text)
	if err != nil {
		e.logger.Warn().Err(err).Msg("sentiment backend failed, using neutral")
		return models.SentimentScore{Neutral: 1.0, Label: SentimentNeutral}
	}
	return score
}

// aggregateSentiment averages compounds and compares the first half of
// the thread against the second for the trend.
func aggregateSentiment(scores []models.SentimentScore) models.ThreadSentiment {
	agg := models.ThreadSentiment{Label: SentimentNeutral, Trend: TrendStable}
	if len(scores) == 0 {
		return agg
	}

	total := 0.0
	for _, s := range scores {
		total += s.Compound
	}
	agg.AverageCompound = round3(total / float64(len(scores)))
	agg.Label = sentimentLabel(agg.AverageCompound)

	if len(scores) < 2 {
		return agg
	}
	mid := len(scores) / 2
	firstHalf := 0.0
	for _, s := range scores[:mid] {
		firstHalf += s.Compound
	}
	secondHalf := 0.0
	for _, s := range scores[mid:] {
		secondHalf += s.Compound
	}
	change := secondHalf/float64(len(scores)-mid) - firstHalf/float64(mid)
	agg.TrendChange = round3(change)
	switch {
	case change > 0.1:
		agg.Trend = TrendImproving
	case change < -0.1:
		agg.Trend = TrendDeclining
	}
	return agg
}
