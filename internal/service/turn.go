package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/history"
)

const (
	replyClarify       = "Xin lỗi, tôi chưa hiểu rõ yêu cầu của bạn. Bạn có thể nói rõ hơn được không?"
	replyUnavailable   = "Xin lỗi, hiện tôi không thể trả lời. Bạn vui lòng thử lại sau nhé."
	replySearchFailed  = "Xin lỗi, tôi không thể tìm kiếm thông tin lúc này. Bạn vui lòng thử lại sau nhé."
	replyDeclined      = "Đã huỷ các thay đổi. Lịch trình của bạn vẫn được giữ nguyên."
	replyNoSelection   = "Bạn muốn cập nhật lịch trình nào? Hãy nhắn \"lịch trình của tôi\" để xem danh sách các lịch trình đã lưu."
	replyNoChanges     = "Tôi chưa thấy thay đổi nào so với lịch trình hiện tại. Bạn muốn thay đổi điều gì?"
	replyInvalidPlan   = "Tôi chưa tạo được lịch trình hợp lệ. Bạn có thể cho biết điểm đến và số ngày dự định không?"
	replyGone          = "Lịch trình này không còn tồn tại."
	replyForbidden     = "Bạn không có quyền thao tác trên lịch trình này."
	replyConfirmSuffix = "Bạn có muốn lưu các thay đổi này không? (có/không)"
)

// turn is the working copy of one ProcessTurn call.
type turn struct {
	ctx        context.Context
	prev       domain.ConversationState
	state      domain.ConversationState
	text       string
	recent     []domain.Message
	pending    *domain.PendingAction
	candidates []domain.ItineraryRef
	toolMsgs   []domain.Message
}

// record appends a tool output message to the turn.
func (s *Service) record(t *turn, name domain.ToolName, payload any) {
	content, err := json.Marshal(payload)
	if err != nil {
		content = []byte(`null`)
	}
	t.toolMsgs = append(t.toolMsgs, domain.Message{
		MessageID: s.newID(),
		Role:      domain.RoleTool,
		ToolName:  string(name),
		Content:   string(content),
		CreatedAt: s.now().UTC(),
	})
}

// ProcessTurn runs one turn against state and returns the next state with the
// assistant reply. state is not modified. Collaborator failures become reply
// text; only invalid input is returned as an error.
func (s *Service) ProcessTurn(ctx context.Context, state domain.ConversationState, msg domain.Message) (domain.ConversationState, domain.Message, error) {
	text := strings.TrimSpace(msg.Text())
	if text == "" {
		return state, domain.Message{}, domain.NewValidationError("content", "message content is required")
	}
	if state.UserID == "" {
		return state, domain.Message{}, domain.NewValidationError("user_id", "user id is required")
	}

	msg.Role = domain.RoleUser
	if msg.MessageID == "" {
		msg.MessageID = s.newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}

	t := &turn{
		ctx:     ctx,
		prev:    state,
		state:   state.Clone(),
		text:    text,
		recent:  history.RecentTurns(state.Messages, s.opts.HistoryTurns),
		pending: state.Clone().Pending,
	}
	t.state.Messages = append(t.state.Messages, msg)
	t.state.Pending = nil
	if t.pending != nil && (state.LastIntent == domain.IntentFindItinerary || state.LastIntent == domain.IntentUpdateItinerary) {
		t.candidates = t.pending.Candidates
	}

	var (
		intent domain.Intent
		reply  string
	)
	if ans := parseConfirmation(text); t.pending.AwaitingConfirmation() && ans != answerNone {
		intent = domain.IntentUpdateItinerary
		reply = s.confirm(t, ans == answerYes)
	} else {
		var ok bool
		intent, ok = s.classify(t)
		if ok {
			reply = s.routes[intent](s, t)
		} else {
			reply = replyClarify
		}
	}

	t.state.Intent = intent
	t.state.LastIntent = intent
	t.state.Messages = append(t.state.Messages, t.toolMsgs...)
	out := domain.Message{
		MessageID: s.newID(),
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: s.now().UTC(),
	}
	t.state.Messages = history.Trim(append(t.state.Messages, out), s.opts.MaxMessages)
	t.state.UpdatedAt = s.now().UTC()

	s.logger.Info("turn processed",
		"session_id", state.SessionID,
		"intent", intent,
		"tools", len(t.toolMsgs),
		"awaiting_confirmation", t.state.Pending.AwaitingConfirmation(),
	)
	return t.state, out, nil
}

// classify asks the generator for the intent of the turn. A failed or
// unreadable answer yields General and ok == false.
func (s *Service) classify(t *turn) (domain.Intent, bool) {
	ctx, cancel := context.WithTimeout(t.ctx, s.opts.ClassifyTimeout)
	defer cancel()

	raw, err := s.llm.Generate(ctx, classifyPrompt(t))
	if err != nil {
		s.logger.Warn("classification failed", "session_id", t.state.SessionID, "error", err)
		return domain.IntentGeneral, false
	}
	intent, ok := parseIntent(raw)
	if !ok {
		s.logger.Warn("unreadable classification", "session_id", t.state.SessionID, "raw", raw)
		return domain.IntentGeneral, false
	}
	return intent, true
}

// parseIntent accepts either a bare label or a sentence containing one.
func parseIntent(raw string) (domain.Intent, bool) {
	if intent, ok := domain.ParseIntent(raw); ok {
		return intent, true
	}
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if intent, ok := domain.ParseIntent(w); ok {
			return intent, true
		}
	}
	return "", false
}

// replyFor turns a capability error into the message shown to the user.
func replyFor(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return replyGone
	case errors.Is(err, domain.ErrForbidden):
		return replyForbidden
	}
	return fallback
}
