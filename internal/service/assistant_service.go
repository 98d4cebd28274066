package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hr-assistant-be/internal/config"
	"hr-assistant-be/internal/dto"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/pkg/answer"
	"hr-assistant-be/pkg/index"
	"hr-assistant-be/pkg/intent"
	"hr-assistant-be/pkg/leave"
	"hr-assistant-be/pkg/schedule"
	"hr-assistant-be/pkg/session"
	"hr-assistant-be/pkg/store"
)

type IAssistantService interface {
	HandleTurn(ctx context.Context, req *dto.TurnRequest) (*dto.TurnResponse, error)
}

type assistantService struct {
	idx            *index.Index
	router         *intent.Router
	synthesizer    *answer.Synthesizer
	engine         *schedule.Engine
	directory      schedule.AvailabilityProvider
	sessionManager *session.Manager
	cfg            *config.Config
	logger         logger.ILogger

	// now is swappable so turn processing stays deterministic under test
	now func() time.Time

	durationRe *regexp.Regexp
}

func NewAssistantService(
	idx *index.Index,
	router *intent.Router,
	synthesizer *answer.Synthesizer,
	engine *schedule.Engine,
	directory schedule.AvailabilityProvider,
	sessionManager *session.Manager,
	cfg *config.Config,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		idx:            idx,
		router:         router,
		synthesizer:    synthesizer,
		engine:         engine,
		directory:      directory,
		sessionManager: sessionManager,
		cfg:            cfg,
		logger:         log,
		now:            time.Now,
		durationRe:     regexp.MustCompile(`(?i)(\d+)\s*(minutes?|mins?|hours?|hrs?)`),
	}
}

func (s *assistantService) HandleTurn(ctx context.Context, req *dto.TurnRequest) (*dto.TurnResponse, error) {
	var resp *dto.TurnResponse

	err := s.sessionManager.WithLock(req.SessionId, func() error {
		sess := s.sessionManager.GetOrCreate(req.SessionId)

		classified := s.router.Classify(req.Text, intent.Context{
			PendingFlow: intent.Type(sess.PendingFlow),
		})

		var result store.TurnResult
		switch classified.Type {
		case intent.PolicyQuestion:
			result = s.handlePolicyQuestion(ctx, req.Text)
		case intent.LeaveRequest:
			result = s.handleLeaveRequest(req.SessionId, sess, req.Text)
		case intent.InterviewScheduling:
			result = s.handleScheduling(ctx, req, sess)
		default:
			result = store.TurnResult{
				Kind:    store.ResultMessage,
				Message: "I'm not sure what you need. I can answer HR policy questions, draft a leave request, or propose interview slots.",
			}
		}

		query := store.Query{
			SessionID: req.SessionId,
			RawText:   req.Text,
			Timestamp: s.now(),
		}
		if err := s.sessionManager.AppendTurn(ctx, req.SessionId, query, result); err != nil {
			return err
		}

		sess, _ = s.sessionManager.Get(req.SessionId)
		resp = s.toResponse(req.SessionId, classified, result, sess)
		return nil
	})
	if err != nil {
		s.logger.Error("assistant_service", "Turn processing failed", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	return resp, nil
}

func (s *assistantService) handlePolicyQuestion(ctx context.Context, text string) store.TurnResult {
	result, err := s.idx.Retrieve(ctx, text, s.cfg.Assistant.TopK)
	if err != nil {
		if errors.Is(err, index.ErrIndexEmpty) {
			return store.TurnResult{
				Kind:    store.ResultMessage,
				Message: "No policy documents are loaded yet. Ask an administrator to ingest the HR corpus first.",
			}
		}
		s.logger.Error("assistant_service", "Retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
		return store.TurnResult{
			Kind:    store.ResultMessage,
			Message: "Something went wrong while searching the policy documents. Please try again.",
		}
	}

	chunks := make([]index.Chunk, 0, len(result.Scored))
	for _, sc := range result.Scored {
		if c, ok := s.idx.Chunk(sc.ChunkID); ok {
			chunks = append(chunks, c)
		}
	}

	ans := s.synthesizer.Synthesize(text, result, chunks)
	return store.TurnResult{Kind: store.ResultAnswer, Answer: &ans}
}

func (s *assistantService) handleLeaveRequest(sessionID string, sess *store.Session, text string) store.TurnResult {
	partial := sess.PendingLeave
	if partial == nil {
		partial = &leave.PartialRequest{}
	}
	partial.Apply(text, s.now())

	if !partial.Complete() {
		if err := s.sessionManager.SetPending(sessionID, string(intent.LeaveRequest), partial); err != nil {
			return store.TurnResult{Kind: store.ResultMessage, Message: "Your session expired. Please start the leave request again."}
		}
		return store.TurnResult{
			Kind:    store.ResultMessage,
			Message: fmt.Sprintf("To draft your leave request I still need the %s.", partial.Missing()),
		}
	}

	// All slots filled; render and clear the scratchpad.
	if err := s.sessionManager.SetPending(sessionID, "", nil); err != nil {
		return store.TurnResult{Kind: store.ResultMessage, Message: "Your session expired. Please start the leave request again."}
	}
	return store.TurnResult{Kind: store.ResultTemplate, Message: partial.Render()}
}

func (s *assistantService) handleScheduling(ctx context.Context, req *dto.TurnRequest, sess *store.Session) store.TurnResult {
	interviewerIDs := s.matchParticipants(req.Text, req.RequesterId)
	if len(interviewerIDs) == 0 {
		return store.TurnResult{
			Kind:    store.ResultMessage,
			Message: "Who should attend the interview? Name one or more interviewers from the directory.",
		}
	}

	interviewers, err := s.directory.Participants(interviewerIDs)
	if err != nil {
		return store.TurnResult{
			Kind:    store.ResultMessage,
			Message: "One of the named interviewers is not in the availability directory.",
		}
	}

	horizonStart := s.now()
	horizonEnd := horizonStart.Add(7 * 24 * time.Hour)
	requester := s.requesterFor(req.RequesterId, horizonStart, horizonEnd)

	slots, err := s.engine.FindSlots(ctx, requester, interviewers,
		s.parseDuration(req.Text), horizonStart, horizonEnd, s.cfg.Schedule.MaxSlotResults)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrNoAvailability):
			return store.TurnResult{
				Kind:    store.ResultMessage,
				Message: "There is no shared free time in the next 7 days. Try a shorter meeting or different interviewers.",
			}
		case errors.Is(err, schedule.ErrSearchBudget):
			return store.TurnResult{
				Kind:    store.ResultMessage,
				Message: "That search window is too large to scan. Please narrow the request.",
			}
		default:
			s.logger.Error("assistant_service", "Slot search failed", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
			return store.TurnResult{
				Kind:    store.ResultMessage,
				Message: "Something went wrong while searching for interview slots. Please try again.",
			}
		}
	}

	return store.TurnResult{Kind: store.ResultSlots, Slots: slots}
}

// matchParticipants finds directory ids mentioned in the utterance. The
// requester is never their own interviewer.
func (s *assistantService) matchParticipants(text, requesterID string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, id := range s.directory.IDs() {
		if id == requesterID {
			continue
		}
		if strings.Contains(lower, strings.ToLower(id)) {
			out = append(out, id)
		}
	}
	return out
}

// requesterFor resolves the speaker's availability. Unknown speakers are
// treated as fully free across the horizon: the directory only constrains
// people it knows about.
func (s *assistantService) requesterFor(requesterID string, horizonStart, horizonEnd time.Time) schedule.Participant {
	if requesterID != "" {
		if p, err := s.directory.Participant(requesterID); err == nil {
			return p
		}
	}
	return schedule.Participant{
		ID:      requesterID,
		Windows: []schedule.Window{{Start: horizonStart, End: horizonEnd}},
	}
}

func (s *assistantService) parseDuration(text string) time.Duration {
	m := s.durationRe.FindStringSubmatch(text)
	if m == nil {
		return 60 * time.Minute
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 60 * time.Minute
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Minute
}

func (s *assistantService) toResponse(sessionID string, classified intent.Intent, result store.TurnResult, sess *store.Session) *dto.TurnResponse {
	resp := &dto.TurnResponse{
		SessionId: sessionID,
		Intent: dto.IntentDTO{
			Type:       string(classified.Type),
			Confidence: classified.Confidence,
		},
		Kind:    result.Kind,
		Message: result.Message,
	}

	if result.Answer != nil {
		resp.Answer = &dto.AnswerDTO{
			Text:          result.Answer.Text,
			CitedChunkIds: result.Answer.CitedChunkIDs,
			Confidence:    result.Answer.Confidence,
			Refused:       result.Answer.Refused,
		}
	}
	for _, slot := range result.Slots {
		resp.Slots = append(resp.Slots, dto.SlotDTO{
			Start:          slot.Start,
			End:            slot.End,
			ParticipantIds: slot.ParticipantIDs,
			Rank:           slot.Rank,
		})
	}
	if sess != nil {
		resp.Session = dto.SessionSummaryDTO{
			Id:           sess.ID,
			Turns:        len(sess.Turns),
			PendingFlow:  sess.PendingFlow,
			LastActiveAt: sess.LastActiveAt,
		}
	}
	return resp
}
