package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuy1125/vin2/internal/diff"
	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/tools"
)

func (s *Service) generate(t *turn, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(t.ctx, s.opts.GenerateTimeout)
	defer cancel()
	out, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.NewUpstreamError("generation", err)
	}
	return strings.TrimSpace(out), nil
}

// handleAnswer replies directly, without a capability.
func (s *Service) handleAnswer(t *turn) string {
	reply, err := s.generate(t, answerPrompt(t, nil))
	if err != nil || reply == "" {
		s.logger.Warn("answer generation failed", "session_id", t.state.SessionID, "error", err)
		return replyUnavailable
	}
	return reply
}

// handleSearch runs a web search for the message and answers from the hits.
func (s *Service) handleSearch(t *turn) string {
	out, err := s.tools.Search(t.ctx, tools.SearchInput{Query: t.text})
	s.record(t, domain.ToolSearch, out)
	if err != nil {
		s.logger.Warn("capability failed", "session_id", t.state.SessionID, "tool", domain.ToolSearch, "error", err)
		return replySearchFailed
	}

	reply, err := s.generate(t, answerPrompt(t, out.Results))
	if err != nil || reply == "" {
		s.logger.Warn("answer generation failed", "session_id", t.state.SessionID, "error", err)
		return listResults(out.Results)
	}
	return reply
}

// listResults is the degraded reply used when search worked but generation did not.
func listResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "Tôi không tìm thấy thông tin phù hợp."
	}
	lines := []string{"Đây là một số thông tin tôi tìm được:"}
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", r.Title, r.Snippet, r.URL))
	}
	return strings.Join(lines, "\n")
}

// handleCreate drafts an itinerary from the conversation and stores it.
func (s *Service) handleCreate(t *turn) string {
	raw, err := s.generate(t, createPrompt(t))
	if err != nil {
		s.logger.Warn("itinerary generation failed", "session_id", t.state.SessionID, "error", err)
		return replyUnavailable
	}
	draft, err := parseDraft(raw)
	if err != nil {
		s.logger.Warn("unreadable itinerary draft", "session_id", t.state.SessionID, "error", err)
		return replyInvalidPlan
	}

	in := draft.createInput(t.state.UserID)
	out, err := s.tools.CreateItinerary(t.ctx, in)
	s.record(t, domain.ToolAddItinerary, out)
	if err != nil {
		s.logger.Warn("capability failed", "session_id", t.state.SessionID, "tool", domain.ToolAddItinerary, "error", err)
		if errors.Is(err, domain.ErrValidation) {
			return replyInvalidPlan
		}
		return replyFor(err, out.Message)
	}

	t.state.ActiveItineraryID = out.ItineraryID
	return out.Message + "\n" + renderItinerary(in.Itinerary())
}

// handleFind lists the user's itineraries and keeps them as candidates for
// the next turn.
func (s *Service) handleFind(t *turn) string {
	out, err := s.tools.FindItineraries(t.ctx, tools.FindItinerariesInput{UserID: t.state.UserID})
	s.record(t, domain.ToolFindItineraries, out)
	if err != nil {
		s.logger.Warn("capability failed", "session_id", t.state.SessionID, "tool", domain.ToolFindItineraries, "error", err)
		return out.Message
	}
	if !out.Success {
		return out.Message
	}

	t.state.ActiveItineraryID = ""
	t.state.Pending = &domain.PendingAction{Candidates: out.Refs}
	return out.Message + "\n" + out.ReadableList
}

// handleUpdate resolves which itinerary to change, drafts the new version and
// shows the diff. Nothing is stored until the user confirms.
func (s *Service) handleUpdate(t *turn) string {
	id := t.state.ActiveItineraryID
	if id == "" && len(t.candidates) > 0 {
		ref, err := resolveSelection(t.text, t.candidates)
		if err != nil {
			s.logger.Info("selection unresolved", "session_id", t.state.SessionID, "error", err)
			t.state.Pending = &domain.PendingAction{Candidates: t.candidates}
			return clarifySelection(t.candidates)
		}
		id = ref.ID
		t.state.ActiveItineraryID = id
	}
	if id == "" {
		err := &domain.AmbiguousReferenceError{Reference: t.text}
		s.logger.Info("selection unresolved", "session_id", t.state.SessionID, "error", err)
		return replyNoSelection
	}

	current, err := s.tools.LoadForUpdate(t.ctx, t.state.UserID, id)
	if err != nil {
		s.logger.Warn("load for update failed", "session_id", t.state.SessionID, "itinerary_id", id, "error", err)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			t.state.ActiveItineraryID = ""
		}
		return replyFor(err, replyUnavailable)
	}

	prompt, err := updatePrompt(t, current)
	if err != nil {
		s.logger.Error("update prompt failed", "session_id", t.state.SessionID, "error", err)
		return replyUnavailable
	}
	raw, err := s.generate(t, prompt)
	if err != nil {
		s.logger.Warn("itinerary generation failed", "session_id", t.state.SessionID, "error", err)
		return replyUnavailable
	}
	draft, err := parseDraft(raw)
	if err != nil {
		s.logger.Warn("unreadable itinerary draft", "session_id", t.state.SessionID, "error", err)
		return replyInvalidPlan
	}

	proposal, err := s.tools.ProposeUpdate(t.ctx, tools.ProposeUpdateInput{
		UserID:      t.state.UserID,
		ItineraryID: id,
		Proposed:    draft.itinerary(t.state.UserID),
	})
	if err != nil {
		s.logger.Warn("update proposal failed", "session_id", t.state.SessionID, "itinerary_id", id, "error", err)
		if errors.Is(err, domain.ErrValidation) {
			return replyInvalidPlan
		}
		return replyFor(err, replyUnavailable)
	}
	s.record(t, domain.ToolUpdateItinerary, proposal.Changes)
	if len(proposal.Changes) == 0 {
		return replyNoChanges
	}

	summary := diff.Lines(proposal.Changes)
	t.state.Pending = &domain.PendingAction{Proposal: proposal.Proposed, Summary: summary}
	return fmt.Sprintf("Đây là các thay đổi đề xuất cho lịch trình %s:\n%s\n%s",
		proposal.Proposed.Destination, strings.Join(summary, "\n"), replyConfirmSuffix)
}

// confirm commits or discards the pending proposal. A failed commit keeps the
// proposal so the user can confirm again.
func (s *Service) confirm(t *turn, accepted bool) string {
	p := t.pending
	if !accepted {
		s.logger.Info("update declined", "session_id", t.state.SessionID, "itinerary_id", p.Proposal.ID)
		return replyDeclined
	}

	res, err := s.tools.CommitUpdate(t.ctx, tools.CommitUpdateInput{
		UserID:    t.state.UserID,
		Proposed:  p.Proposal,
		Summary:   p.Summary,
		Confirmed: true,
	})
	s.record(t, domain.ToolUpdateItinerary, res)
	if err != nil {
		s.logger.Warn("commit failed", "session_id", t.state.SessionID, "itinerary_id", p.Proposal.ID, "error", err)
		switch {
		case errors.Is(err, domain.ErrUpstream):
			t.state.Pending = p
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
			t.state.ActiveItineraryID = ""
		}
		return res.Message
	}
	t.state.ActiveItineraryID = p.Proposal.ID
	return res.Message
}

func clarifySelection(candidates []domain.ItineraryRef) string {
	lines := []string{"Tôi chưa xác định được bạn muốn chọn lịch trình nào. Bạn hãy chọn theo số thứ tự hoặc điểm đến:"}
	for _, ref := range candidates {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", ref.Index, ref.Destination, ref.Duration))
	}
	return strings.Join(lines, "\n")
}

// renderItinerary formats a plan day by day for the chat.
func renderItinerary(it *domain.Itinerary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", it.Destination, it.Duration)
	for _, day := range it.Days {
		fmt.Fprintf(&b, "\nNgày %d:", day.DayNumber)
		for _, p := range domain.Periods {
			if desc := domain.DescribePeriod(day.Block(p)); desc != "" {
				fmt.Fprintf(&b, "\n  - %s: %s", p.Label(), desc)
			}
		}
	}
	fmt.Fprintf(&b, "\nTổng chi phí dự kiến: %.0fđ", domain.TotalCost(it))
	return b.String()
}

// itineraryDraft is the document the generator is asked to produce.
type itineraryDraft struct {
	Destination string       `json:"destination"`
	Duration    string       `json:"duration"`
	StartDate   string       `json:"start_date,omitempty"`
	Days        []domain.Day `json:"days"`
}

func draftFrom(it *domain.Itinerary) itineraryDraft {
	d := itineraryDraft{Destination: it.Destination, Duration: it.Duration, Days: it.Days}
	if it.StartDate != nil {
		d.StartDate = it.StartDate.Format(time.DateOnly)
	}
	return d
}

func (d itineraryDraft) startDate() *time.Time {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if ts, err := time.Parse(layout, d.StartDate); err == nil {
			return &ts
		}
	}
	return nil
}

func (d itineraryDraft) createInput(userID string) tools.CreateItineraryInput {
	return tools.CreateItineraryInput{
		UserID:      userID,
		Destination: d.Destination,
		Duration:    d.Duration,
		StartDate:   d.startDate(),
		Days:        d.Days,
	}
}

func (d itineraryDraft) itinerary(userID string) *domain.Itinerary {
	return d.createInput(userID).Itinerary()
}

// parseDraft reads the first JSON object found in raw.
func parseDraft(raw string) (itineraryDraft, error) {
	var d itineraryDraft
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return d, fmt.Errorf("no JSON object in generator output")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &d); err != nil {
		return d, fmt.Errorf("failed to parse itinerary draft: %w", err)
	}
	if len(d.Days) == 0 {
		return d, fmt.Errorf("itinerary draft has no days")
	}
	return d, nil
}
