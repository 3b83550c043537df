package engine

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/threadintel/backend/internal/lexical"
	"github.com/threadintel/backend/internal/models"
)

const (
	summaryMessageWindow = 6
	minSentenceLen       = 40
	maxSentenceLen       = 220
	recencyUpweight      = 0.5
)

type candidate struct {
	text  string
	order int
	vec   map[string]float64
	norm  float64
}

// extractiveSummary selects a short, diverse set of sentences from the
// most recent messages: TF-IDF sentence vectors, a recency-weighted
// document centroid, then Maximal Marginal Relevance selection. Sentences
// come back in chronological order.
func (e *Engine) extractiveSummary(sorted []models.Message) []string {
	candidates := collectCandidates(sorted)
	n := len(candidates)
	if n == 0 {
		return []string{}
	}

	vectorize(candidates)
	centroid := buildCentroid(candidates)

	k := int(math.Round(0.2 * float64(n)))
	if k < 2 {
		k = 2
	}
	if k > 6 {
		k = 6
	}
	if n <= k {
		out := make([]string, 0, n)
		for _, c := range candidates {
			out = append(out, c.text)
		}
		return out
	}

	selected := e.selectMMR(candidates, centroid, k)
	sort.Slice(selected, func(i, j int) bool { return selected[i].order < selected[j].order })
	out := make([]string, 0, len(selected))
	for _, c := range selected {
		out = append(out, c.text)
	}
	return out
}

func collectCandidates(sorted []models.Message) []*candidate {
	recent := sorted
	if len(recent) > summaryMessageWindow {
		recent = recent[len(recent)-summaryMessageWindow:]
	}

	var candidates []*candidate
	seen := map[string]struct{}{}
	order := 0
	add := func(text string) {
		text = strings.TrimSpace(text)
		if n := utf8.RuneCountInString(text); n < minSentenceLen || n > maxSentenceLen {
			return
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, &candidate{text: text, order: order})
		order++
	}

	for _, msg := range recent {
		add(msg.Subject)
		for _, s := range lexical.SplitSentences(lexical.StripQuotes(msg.Body)) {
			add(s)
		}
	}
	return candidates
}

// vectorize fills sparse TF-IDF vectors: idf(t) = ln((1+N)/(1+df(t))) + 1.
func vectorize(candidates []*candidate) {
	n := len(candidates)
	df := map[string]int{}
	tokenized := make([][]string, n)
	for i, c := range candidates {
		tokens := lexical.Tokenize(c.text)
		tokenized[i] = tokens
		inDoc := map[string]struct{}{}
		for _, t := range tokens {
			if _, ok := inDoc[t]; !ok {
				inDoc[t] = struct{}{}
				df[t]++
			}
		}
	}

	for i, c := range candidates {
		vec := map[string]float64{}
		for _, t := range tokenized[i] {
			vec[t]++
		}
		norm := 0.0
		for t, tf := range vec {
			idf := math.Log(float64(1+n)/float64(1+df[t])) + 1
			w := tf * idf
			vec[t] = w
			norm += w * w
		}
		c.vec = vec
		c.norm = math.Sqrt(norm)
	}
}

// buildCentroid sums all sentence vectors, up-weighting later sentences
// by up to +50%.
func buildCentroid(candidates []*candidate) *candidate {
	n := len(candidates)
	vec := map[string]float64{}
	for i, c := range candidates {
		weight := 1.0
		if n > 1 {
			weight += recencyUpweight * float64(i) / float64(n-1)
		}
		for t, w := range c.vec {
			vec[t] += weight * w
		}
	}
	norm := 0.0
	for _, w := range vec {
		norm += w * w
	}
	return &candidate{vec: vec, norm: math.Sqrt(norm)}
}

// selectMMR picks k sentences maximizing
// (1-lambda)*cos(s, centroid) - lambda*max_j cos(s, selected_j).
func (e *Engine) selectMMR(candidates []*candidate, centroid *candidate, k int) []*candidate {
	lambda := e.opts.MMRDiversity
	remaining := append([]*candidate(nil), candidates...)
	var selected []*candidate

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, c := range remaining {
			relevance := cosine(c, centroid)
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosine(c, s); sim > redundancy {
					redundancy = sim
				}
			}
			score := (1-lambda)*relevance - lambda*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func cosine(a, b *candidate) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	// iterate the smaller vector
	small, large := a, b
	if len(b.vec) < len(a.vec) {
		small, large = b, a
	}
	dot := 0.0
	for t, w := range small.vec {
		dot += w * large.vec[t]
	}
	return dot / (a.norm * b.norm)
}
