package leave

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PartialRequest is the slot-filling state for a leave request, collected
// across conversation turns. Zero-value fields are still unfilled.
type PartialRequest struct {
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (p *PartialRequest) Complete() bool {
	return p.StartDate != "" && p.EndDate != "" && p.Reason != ""
}

// Missing names the first unfilled slot, for prompting the user.
func (p *PartialRequest) Missing() string {
	switch {
	case p.StartDate == "":
		return "start date"
	case p.EndDate == "":
		return "end date"
	case p.Reason == "":
		return "reason"
	default:
		return ""
	}
}

var (
	isoDate   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	wordDate  = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	reasonRe  = regexp.MustCompile(`(?i)\b(?:because of|because|due to|for)\s+(?:a\s+|an\s+|my\s+)?([^.,;]+)`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDates extracts calendar dates from free text, normalized to
// YYYY-MM-DD, in order of appearance. Word dates without a year assume the
// year of 'now'.
func ParseDates(text string, now time.Time) []string {
	type match struct {
		pos  int
		date string
	}
	var found []match

	for _, m := range isoDate.FindAllStringSubmatchIndex(text, -1) {
		found = append(found, match{pos: m[0], date: text[m[0]:m[1]]})
	}
	for _, m := range slashDate.FindAllStringSubmatch(text, -1) {
		pos := strings.Index(text, m[0])
		day, mon, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if mon >= 1 && mon <= 12 && day >= 1 && day <= 31 {
			found = append(found, match{
				pos:  pos,
				date: fmt.Sprintf("%04d-%02d-%02d", year, mon, day),
			})
		}
	}
	for _, m := range wordDate.FindAllStringSubmatch(text, -1) {
		pos := strings.Index(strings.ToLower(text), strings.ToLower(m[0]))
		mon, ok := monthIndex[strings.ToLower(m[1][:3])]
		if !ok {
			continue
		}
		day := atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		if day >= 1 && day <= 31 {
			found = append(found, match{
				pos:  pos,
				date: fmt.Sprintf("%04d-%02d-%02d", year, mon, day),
			})
		}
	}

	// order of appearance
	for i := 0; i < len(found); i++ {
		for j := i + 1; j < len(found); j++ {
			if found[j].pos < found[i].pos {
				found[i], found[j] = found[j], found[i]
			}
		}
	}

	dates := make([]string, 0, len(found))
	seen := make(map[string]struct{})
	for _, f := range found {
		if _, dup := seen[f.date]; dup {
			continue
		}
		seen[f.date] = struct{}{}
		dates = append(dates, f.date)
	}
	return dates
}

// ParseReason extracts a short reason clause ("for a family event",
// "because I am unwell") from the utterance.
func ParseReason(text string) string {
	m := reasonRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	reason := strings.TrimSpace(m[1])
	// A trailing date range often rides along; cut it off
	reason = isoDate.Split(reason, 2)[0]
	reason = strings.TrimSpace(strings.TrimSuffix(reason, "from"))
	if reason == "" || strings.EqualFold(reason, "leave") {
		return ""
	}
	return reason
}

// Apply folds one utterance into the partial request and reports whether any
// slot was filled by it.
func (p *PartialRequest) Apply(text string, now time.Time) bool {
	filled := false

	dates := ParseDates(text, now)
	for _, d := range dates {
		switch {
		case p.StartDate == "":
			p.StartDate = d
			filled = true
		case p.EndDate == "":
			p.EndDate = d
			filled = true
		}
	}
	// A single date fills both ends for a one-day leave only when stated
	// with no second date pending and the start was just set by this turn.
	if p.StartDate != "" && p.EndDate == "" && len(dates) == 1 && strings.Contains(strings.ToLower(text), "one day") {
		p.EndDate = p.StartDate
		filled = true
	}

	if p.Reason == "" {
		if reason := ParseReason(text); reason != "" {
			p.Reason = reason
			filled = true
		}
	}

	return filled
}

// Render produces the leave-request template for a completed request.
func (p *PartialRequest) Render() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject: Leave Request (%s to %s)\n\n", p.StartDate, p.EndDate))
	sb.WriteString("Dear Manager,\n\n")
	sb.WriteString(fmt.Sprintf(
		"I would like to request leave from %s to %s. Reason: %s.\n\n",
		p.StartDate, p.EndDate, p.Reason))
	sb.WriteString("I will ensure all my responsibilities are handed over before my leave begins. ")
	sb.WriteString("Please let me know if any further information is required for approval.\n\n")
	sb.WriteString("Kind regards")
	return sb.String()
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
