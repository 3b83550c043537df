// Package lexical holds the pure text transforms shared by the analysis
// engine: tokenization, sentence splitting, and quoted-reply stripping.
package lexical

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
	sentencePattern = regexp.MustCompile(`[.!?]\s+|\n+`)

	originalMarkerPattern = regexp.MustCompile(`(?i)^\s*(-{2,}\s*original message|from:\s|on .+ wrote:)`)
	signoffPattern        = regexp.MustCompile(`(?i)^\s*(best regards|kind regards|regards,|thanks,|thank you,|cheers,|br,|sent from my|get outlook for)`)
)

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "man", "new", "now", "old", "see", "two", "way", "who", "its",
		"did", "yes", "she", "may", "say", "each", "which", "their", "will",
		"about", "there", "them", "then", "than", "this", "that", "these",
		"those", "with", "have", "from", "they", "been", "were", "said",
		"what", "when", "where", "your", "into", "more", "some", "could",
		"would", "should", "also", "just", "only", "over", "such", "very",
		"here", "after", "before", "between", "both", "because", "does",
		"doing", "during", "further", "had", "having", "most", "other",
		"same", "since", "still", "through", "under", "until", "while",
		"again", "against", "being", "below", "above", "once", "itself",
		"per", "via", "upon",
		// email boilerplate
		"regards", "thanks", "thank", "hello", "dear", "sincerely", "best",
		"kind", "please", "asap", "sent", "email", "mail", "subject", "fwd",
		"cc", "bcc", "wrote", "original", "message", "attached", "attachment",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lower-cases, strips URLs and non-alphanumeric runs, and drops
// short tokens and stopwords. Used for term weighting, never for the
// keyword matchers which run on raw lowercased text.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	lowered = urlPattern.ReplaceAllString(lowered, " ")
	lowered = nonAlnumPattern.ReplaceAllString(lowered, " ")

	fields := strings.Fields(lowered)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopword reports whether the lowercased token is in the fixed set.
func IsStopword(token string) bool {
	_, ok := stopwords[strings.ToLower(token)]
	return ok
}

// SplitSentences splits text on sentence terminators and newlines,
// trimming fragments and discarding empties.
func SplitSentences(text string) []string {
	cleaned := strings.ReplaceAll(text, "\r", "")
	parts := sentencePattern.Split(cleaned, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// TruncateRunes shortens s to at most n runes. Cutting by byte index
// could split a multi-byte character and leak invalid UTF-8 into JSON
// output.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// StripQuotes truncates a message body at the first quoted-reply marker
// and drops quote lines and common sign-offs, keeping only the text the
// sender actually wrote.
func StripQuotes(body string) string {
	cleaned := strings.ReplaceAll(body, "\r\n", "\n")
	var kept []string
	for _, line := range strings.Split(cleaned, "\n") {
		if originalMarkerPattern.MatchString(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		if signoffPattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
