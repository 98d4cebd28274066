// Package intent classifies an incoming utterance into one of a closed set
// of handling paths. Classification never fails; the worst case is Unknown
// with confidence 0.
package intent

import (
	"math"
	"regexp"
	"strings"
	"time"

	"hr-assistant-be/pkg/leave"
)

type Type string

const (
	PolicyQuestion      Type = "policy_question"
	LeaveRequest        Type = "leave_request"
	InterviewScheduling Type = "interview_scheduling"
	Unknown             Type = "unknown"
)

// Intent is the classification result for one utterance.
type Intent struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Context is the slice of session state the router is allowed to see. A set
// PendingFlow biases classification toward continuing that flow.
type Context struct {
	PendingFlow Type
}

// Router scores utterances with keyword rules layered over
// similarity-to-exemplar scoring. Adding an intent means adding its keyword
// set and exemplars here, nothing else.
type Router struct {
	floor     float64
	keywords  map[Type][]string
	exemplars map[Type][]map[string]float64
	tokenRe   *regexp.Regexp
}

func NewRouter(confidenceFloor float64) *Router {
	r := &Router{
		floor:   confidenceFloor,
		tokenRe: regexp.MustCompile(`\p{L}+|\p{N}+`),
		keywords: map[Type][]string{
			PolicyQuestion: {
				"policy", "policies", "leave days", "sick days", "benefit",
				"benefits", "holiday", "holidays", "insurance", "allowance",
				"entitled", "entitlement", "probation", "notice period",
				"working hours", "dress code", "remote work", "how many",
			},
			LeaveRequest: {
				"leave request", "request leave", "apply for leave",
				"take leave", "time off", "day off", "days off", "vacation",
				"annual leave", "sick leave", "leave application",
			},
			InterviewScheduling: {
				"interview", "schedule", "reschedule", "slot", "slots",
				"meeting", "availability", "available", "book", "calendar",
				"candidate",
			},
		},
	}

	r.exemplars = map[Type][]map[string]float64{
		PolicyQuestion: r.bags(
			"How many leave days do I get per year?",
			"What is the company policy on remote work?",
			"Am I entitled to health insurance benefits?",
			"What are the official working hours?",
			"How does the probation period work?",
		),
		LeaveRequest: r.bags(
			"I want to apply for leave next week",
			"Please prepare a leave request for me",
			"I need time off from the 10th to the 14th",
			"Can I take vacation in August?",
		),
		InterviewScheduling: r.bags(
			"Schedule an interview with the backend team",
			"Find a slot for a candidate interview tomorrow",
			"When are the interviewers available next week?",
			"Book a meeting with the hiring panel",
		),
	}

	return r
}

// Classify scores the utterance against every intent and returns the winner
// if it clears the confidence floor, else Unknown.
func (r *Router) Classify(queryText string, sctx Context) Intent {
	text := strings.TrimSpace(queryText)
	if text == "" {
		return Intent{Type: Unknown, Confidence: 0, Reason: "empty utterance"}
	}

	// Stickiness: a pending slot-fill keeps short continuations (a bare
	// date, a one-line reason) in the active flow instead of reclassifying.
	if sctx.PendingFlow != "" && sctx.PendingFlow != Unknown {
		if r.looksLikeContinuation(text) {
			return Intent{
				Type:       sctx.PendingFlow,
				Confidence: 0.9,
				Reason:     "continuing pending flow",
			}
		}
	}

	best := Intent{Type: Unknown, Confidence: 0, Reason: "no intent cleared the confidence floor"}
	for _, t := range []Type{PolicyQuestion, LeaveRequest, InterviewScheduling} {
		score := r.score(text, t)
		if score > best.Confidence {
			best = Intent{Type: t, Confidence: score, Reason: "keyword and exemplar scoring"}
		}
	}

	if best.Confidence < r.floor {
		return Intent{Type: Unknown, Confidence: best.Confidence, Reason: "below confidence floor"}
	}
	return best
}

// score blends rule hits with the best exemplar similarity.
func (r *Router) score(text string, t Type) float64 {
	lower := strings.ToLower(text)

	hits := 0
	for _, kw := range r.keywords[t] {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	// First hit is a strong signal, later hits saturate
	keywordScore := 0.0
	if hits > 0 {
		keywordScore = 0.55 + 0.15*float64(hits-1)
		if keywordScore > 0.95 {
			keywordScore = 0.95
		}
	}

	queryBag := r.bag(lower)
	exemplarScore := 0.0
	for _, ex := range r.exemplars[t] {
		if sim := cosine(queryBag, ex); sim > exemplarScore {
			exemplarScore = sim
		}
	}

	score := keywordScore
	if exemplarScore > score {
		score = exemplarScore
	}
	return score
}

// looksLikeContinuation detects utterances that carry slot values rather
// than a fresh request: bare dates, short fragments, reason clauses.
func (r *Router) looksLikeContinuation(text string) bool {
	if len(leave.ParseDates(text, time.Now())) > 0 {
		return true
	}
	if leave.ParseReason(text) != "" {
		return true
	}
	// Very short fragments ("5 days", "next monday works") rarely open a
	// new topic
	return len(r.tokenRe.FindAllString(text, -1)) <= 4
}

func (r *Router) bags(texts ...string) []map[string]float64 {
	out := make([]map[string]float64, 0, len(texts))
	for _, t := range texts {
		out = append(out, r.bag(strings.ToLower(t)))
	}
	return out
}

func (r *Router) bag(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range r.tokenRe.FindAllString(text, -1) {
		counts[tok]++
	}
	return counts
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dot := 0.0
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (normOf(a) * normOf(b))
}

func normOf(m map[string]float64) float64 {
	sum := 0.0
	for _, v := range m {
		sum += v * v
	}
	return math.Sqrt(sum)
}
