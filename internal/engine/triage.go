package engine

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/threadintel/backend/internal/lexical"
	"github.com/threadintel/backend/internal/models"
)

const (
	triageWindow      = 5
	maxTriageActions  = 8
	maxDescriptionLen = 240
	minActionLineLen  = 10
	dueHour           = 17
)

var actionTerms = []string{
	"please", "need", "required", "must", "confirm",
	"send", "provide", "attach", "deliver", "ship",
}

var (
	// The leading group keeps dd-mm from matching inside an ISO date
	// such as 2026-02-10.
	explicitDatePattern = regexp.MustCompile(`(^|[^0-9./-])(\d{1,2})[./-](\d{1,2})(?:[./-](\d{2,4}))?\b`)
	isoDatePattern      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// Slice, not map: a line naming two weekdays must resolve the same way
// on every run.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday}, {"tuesday", time.Tuesday}, {"wednesday", time.Wednesday},
	{"thursday", time.Thursday}, {"friday", time.Friday},
	{"saturday", time.Saturday}, {"sunday", time.Sunday},
}

// dueRules are tried in a fixed priority order; the first hit wins.
// Invalid calendar dates fail the rule silently so later rules still run.
var dueRules = []struct {
	name    string
	resolve func(line string, base time.Time) (time.Time, bool)
}{
	{"eod", resolveEOD},
	{"tomorrow", resolveTomorrow},
	{"explicit", resolveExplicitDate},
	{"iso", resolveISODate},
	{"weekday", resolveWeekday},
}

// buildTriage scans recent messages for actionable lines, infers due
// dates and decides whether the thread should escalate.
func (e *Engine) buildTriage(sorted []models.Message, meta models.ThreadMetadata, insight models.ConversationInsight, now time.Time) models.TriageResult {
	result := models.TriageResult{Actions: []models.TriageAction{}}

	start := len(sorted) - triageWindow
	if start < 0 {
		start = 0
	}
	seen := map[string]struct{}{}
	for _, msg := range sorted[start:] {
		for _, line := range strings.Split(lexical.StripQuotes(msg.Body), "\n") {
			line = strings.TrimSpace(line)
			if utf8.RuneCountInString(line) < minActionLineLen || !isActionable(line) {
				continue
			}
			desc := lexical.TruncateRunes(line, maxDescriptionLen)
			key := strings.ToLower(desc)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			action := models.TriageAction{
				Description: desc,
				RequestedBy: msg.Sender,
				OwnerGuess:  guessOwner(sorted, msg.Sender),
			}
			if due, ok := e.inferDueDate(line, msg.ReceivedAt); ok {
				action.DueDate = &due
				if due.Sub(now) <= e.opts.DueSoonWindow {
					result.DueSoon = true
				}
			}
			result.Actions = append(result.Actions, action)
			if len(result.Actions) >= maxTriageActions {
				break
			}
		}
		if len(result.Actions) >= maxTriageActions {
			break
		}
	}

	result.Escalate = meta.IsUrgent || meta.HasDelay
	if !result.Escalate && len(sorted) > 0 {
		lastAt := sorted[len(sorted)-1].ReceivedAt
		if now.Sub(lastAt) >= 48*time.Hour && insight.ResponseNeeded {
			result.Escalate = true
		}
	}

	switch {
	case insight.NextAction != "":
		result.SuggestedNextStep = insight.NextAction
	case len(result.Actions) > 0:
		result.SuggestedNextStep = result.Actions[0].Description
	default:
		result.SuggestedNextStep = "Monitor thread"
	}
	return result
}

func isActionable(line string) bool {
	if strings.Contains(line, "?") {
		return true
	}
	lowered := strings.ToLower(line)
	for _, term := range actionTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// guessOwner picks the most recent sender other than the requester.
func guessOwner(sorted []models.Message, requester string) string {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Sender != requester {
			return sorted[i].Sender
		}
	}
	return ""
}

// inferDueDate applies the rule list to the lowercased line. Dates more
// than the tolerance before the triggering message are discarded.
func (e *Engine) inferDueDate(line string, base time.Time) (time.Time, bool) {
	lowered := strings.ToLower(line)
	for _, rule := range dueRules {
		due, ok := rule.resolve(lowered, base)
		if !ok {
			continue
		}
		if due.Before(base.Add(-e.opts.DueTolerance)) {
			continue
		}
		return due, true
	}
	return time.Time{}, false
}

func resolveEOD(line string, base time.Time) (time.Time, bool) {
	if !strings.Contains(line, "eod") && !strings.Contains(line, "end of day") {
		return time.Time{}, false
	}
	return atHour(base, dueHour), true
}

func resolveTomorrow(line string, base time.Time) (time.Time, bool) {
	if !strings.Contains(line, "tomorrow") {
		return time.Time{}, false
	}
	return atHour(base.AddDate(0, 0, 1), dueHour), true
}

// resolveExplicitDate handles dd[./-]mm with an optional 2- or 4-digit
// year. A missing year resolves in the base year, rolling forward when
// that lands in the past.
func resolveExplicitDate(line string, base time.Time) (time.Time, bool) {
	m := explicitDatePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	day := atoiSafe(m[2])
	month := atoiSafe(m[3])
	year := base.Year()
	hasYear := m[4] != ""
	if hasYear {
		year = atoiSafe(m[4])
		if year < 100 {
			year += 2000
		}
	}
	due, ok := validDate(year, month, day, base.Location())
	if !ok {
		return time.Time{}, false
	}
	if !hasYear && due.Before(base.AddDate(0, 0, -1)) {
		due = due.AddDate(1, 0, 0)
	}
	return due, true
}

func resolveISODate(line string, base time.Time) (time.Time, bool) {
	m := isoDatePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	due, ok := validDate(atoiSafe(m[1]), atoiSafe(m[2]), atoiSafe(m[3]), base.Location())
	return due, ok
}

// resolveWeekday returns the next occurrence of a named weekday, today
// excluded.
func resolveWeekday(line string, base time.Time) (time.Time, bool) {
	for _, wd := range weekdays {
		if !containsWord(line, wd.name) {
			continue
		}
		delta := (int(wd.day) - int(base.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return atHour(base.AddDate(0, 0, delta), dueHour), true
	}
	return time.Time{}, false
}

func validDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1970 || year > 9999 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, dueHour, 0, 0, 0, loc)
	// time.Date normalizes overflow (e.g. Feb 30); reject anything that moved
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func containsWord(line, word string) bool {
	idx := strings.Index(line, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(line[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(line) || !isLetter(line[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(line[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
