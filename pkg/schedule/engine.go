// Package schedule computes feasible interview slots from multi-party
// availability. The engine is a pure function of its inputs; booking
// persistence lives with the caller.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"
)

var (
	// ErrNoAvailability is reported when the participants share no free
	// interval inside the horizon. Retrying with the same inputs cannot
	// succeed.
	ErrNoAvailability = errors.New("no common availability window in the requested horizon")

	// ErrSearchBudget is reported when the horizon/granularity combination
	// would exceed the configured iteration budget. The caller should
	// narrow the horizon or coarsen the granularity.
	ErrSearchBudget = errors.New("slot search space exceeds the iteration budget")
)

// SlotCandidate is a feasible meeting interval for every participant.
type SlotCandidate struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	ParticipantIDs []string  `json:"participant_ids"`
	Rank           int       `json:"rank"`
}

type Config struct {
	Granularity    time.Duration
	MaxResults     int
	SearchBudget   int
	PreferredStart int // hour of day
	PreferredEnd   int
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Granularity <= 0 {
		cfg.Granularity = 15 * time.Minute
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.SearchBudget <= 0 {
		cfg.SearchBudget = 50000
	}
	if cfg.PreferredEnd <= cfg.PreferredStart {
		cfg.PreferredStart, cfg.PreferredEnd = 9, 17
	}
	return &Engine{cfg: cfg}
}

// FindSlots intersects the availability of the requester and all
// interviewers within the horizon and returns ranked candidates whose
// duration fits entirely inside one intersected interval.
func (e *Engine) FindSlots(
	ctx context.Context,
	requester Participant,
	interviewers []Participant,
	duration time.Duration,
	horizonStart, horizonEnd time.Time,
	maxResults int,
) ([]SlotCandidate, error) {

	if duration <= 0 {
		return nil, fmt.Errorf("invalid meeting duration %s", duration)
	}
	if !horizonEnd.After(horizonStart) {
		return nil, fmt.Errorf("horizon end %s is not after start %s", horizonEnd, horizonStart)
	}
	if maxResults <= 0 || maxResults > e.cfg.MaxResults {
		maxResults = e.cfg.MaxResults
	}

	// The search space is validated before any work: a pathological
	// horizon/granularity pair must fail fast rather than spin.
	if est := int(horizonEnd.Sub(horizonStart) / e.cfg.Granularity); est > e.cfg.SearchBudget {
		return nil, ErrSearchBudget
	}

	participants := append([]Participant{requester}, interviewers...)
	ids := make([]string, 0, len(participants))
	common := clamp(NormalizeWindows(requester.Windows), horizonStart, horizonEnd)
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	for _, p := range interviewers {
		common = intersect(common, NormalizeWindows(p.Windows))
	}
	if len(common) == 0 {
		return nil, ErrNoAvailability
	}

	var candidates []SlotCandidate
	found := false
	for _, win := range common {
		for start := alignUp(win.Start, e.cfg.Granularity); ; start = start.Add(e.cfg.Granularity) {
			end := start.Add(duration)
			if end.After(win.End) {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			found = true
			candidates = append(candidates, SlotCandidate{
				Start:          start,
				End:            end,
				ParticipantIDs: ids,
			})
		}
	}
	if !found {
		// Common free time exists but no aligned start fits the duration
		return nil, ErrNoAvailability
	}

	e.rank(requester.ID, candidates)
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// rank orders candidates by earliest start, then by how many participants
// the slot pushes outside preferred hours, then by a requester-derived hash
// so reruns produce byte-identical output.
func (e *Engine) rank(requesterID string, candidates []SlotCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		sa, sb := e.shifted(a), e.shifted(b)
		if sa != sb {
			return sa < sb
		}
		return slotHash(requesterID, a.Start) < slotHash(requesterID, b.Start)
	})
}

// shifted counts participants the slot pulls outside the preferred-hours
// window.
func (e *Engine) shifted(c SlotCandidate) int {
	startHour := c.Start.Hour()
	endHour := c.End.Hour()
	if c.End.Minute() > 0 || c.End.Second() > 0 {
		endHour++
	}
	if startHour >= e.cfg.PreferredStart && endHour <= e.cfg.PreferredEnd {
		return 0
	}
	return len(c.ParticipantIDs)
}

func slotHash(requesterID string, start time.Time) uint64 {
	h := fnv.New64a()
	h.Write([]byte(requesterID))
	h.Write([]byte(start.UTC().Format(time.RFC3339)))
	return h.Sum64()
}

// alignUp rounds t up to the next granularity boundary.
func alignUp(t time.Time, granularity time.Duration) time.Time {
	aligned := t.Truncate(granularity)
	if aligned.Before(t) {
		aligned = aligned.Add(granularity)
	}
	return aligned
}
