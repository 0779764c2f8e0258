// Package tools implements the capabilities the orchestrator may invoke:
// web search, itinerary creation, itinerary lookup and the two-step
// itinerary update (propose, then commit after confirmation).
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/phuy1125/vin2/internal/adapter/search"
	"github.com/phuy1125/vin2/internal/diff"
	"github.com/phuy1125/vin2/internal/domain"
	store "github.com/phuy1125/vin2/internal/repository"
	"github.com/phuy1125/vin2/policy"
)

// DefaultSearchResults bounds the number of search hits per query.
const DefaultSearchResults = 3

// Timeouts bounds each capability call.
type Timeouts struct {
	Search time.Duration
	Store  time.Duration
	Commit time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{Search: 10 * time.Second, Store: 5 * time.Second, Commit: 10 * time.Second}
}

// Toolbox binds the capabilities to their collaborators.
type Toolbox struct {
	store      store.ItineraryStore
	search     search.Provider
	policy     *policy.Engine
	timeouts   Timeouts
	maxResults int
	now        func() time.Time
	newID      func() string
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithTimeouts overrides DefaultTimeouts.
func WithTimeouts(t Timeouts) Option {
	return func(tb *Toolbox) { tb.timeouts = t }
}

// WithMaxResults overrides DefaultSearchResults.
func WithMaxResults(n int) Option {
	return func(tb *Toolbox) {
		if n > 0 {
			tb.maxResults = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(tb *Toolbox) { tb.now = now }
}

// NewToolbox creates a Toolbox. A nil policy engine allows every call.
func NewToolbox(itineraries store.ItineraryStore, provider search.Provider, engine *policy.Engine, opts ...Option) *Toolbox {
	tb := &Toolbox{
		store:      itineraries,
		search:     provider,
		policy:     engine,
		timeouts:   DefaultTimeouts(),
		maxResults: DefaultSearchResults,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(tb)
	}
	return tb
}

// Result is the outcome every capability reports to the conversation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SearchInput is the input of Search.
type SearchInput struct {
	Query string `json:"query"`
}

func (in SearchInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Query, validation.Required, validation.Length(1, 400)),
	)
}

// SearchOutput carries the hits of a successful search.
type SearchOutput struct {
	Result
	Results []domain.SearchResult `json:"results"`
}

// Search runs a web search.
func (tb *Toolbox) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	if err := domain.AsValidationError(in.Validate()); err != nil {
		return &SearchOutput{Result: Result{Message: "Câu hỏi tìm kiếm không hợp lệ."}}, err
	}

	ctx, cancel := context.WithTimeout(ctx, tb.timeouts.Search)
	defer cancel()

	results, err := tb.search.Search(ctx, strings.TrimSpace(in.Query), tb.maxResults)
	if err != nil {
		return &SearchOutput{Result: Result{Message: "Không thể tìm kiếm thông tin lúc này."}},
			domain.NewUpstreamError("search", err)
	}
	if len(results) > tb.maxResults {
		results = results[:tb.maxResults]
	}
	return &SearchOutput{
		Result:  Result{Success: true, Message: fmt.Sprintf("Tìm thấy %d kết quả.", len(results))},
		Results: results,
	}, nil
}

// CreateItineraryInput is the input of CreateItinerary.
type CreateItineraryInput struct {
	UserID      string       `json:"user_id"`
	Destination string       `json:"destination"`
	Duration    string       `json:"duration"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	Days        []domain.Day `json:"days"`
}

// Itinerary builds the document described by the input, without id or timestamps.
func (in CreateItineraryInput) Itinerary() *domain.Itinerary {
	return &domain.Itinerary{
		OwnerUserID: in.UserID,
		Destination: strings.TrimSpace(in.Destination),
		Duration:    strings.TrimSpace(in.Duration),
		StartDate:   in.StartDate,
		Days:        in.Days,
	}
}

// CreateOutput reports the id of the stored itinerary on success.
type CreateOutput struct {
	Result
	ItineraryID string `json:"itinerary_id,omitempty"`
}

// CreateItinerary validates and persists a new itinerary owned by in.UserID.
func (tb *Toolbox) CreateItinerary(ctx context.Context, in CreateItineraryInput) (*CreateOutput, error) {
	it := in.Itinerary()
	failed := &CreateOutput{Result: Result{Message: fmt.Sprintf("Có lỗi xảy ra khi lưu lịch trình cho %s.", it.Destination)}}

	if err := domain.AsValidationError(it.Validate()); err != nil {
		return failed, err
	}
	caller := CallerOr(ctx, in.UserID)
	if err := tb.authorize(ctx, policy.Input{Capability: domain.ToolAddItinerary, UserID: caller, OwnerID: in.UserID}); err != nil {
		return failed, err
	}

	now := tb.now().UTC()
	it.ID = tb.newID()
	it.CreatedAt = now
	it.UpdatedAt = now

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tb.timeouts.Store)
	defer cancel()
	if err := tb.store.Create(ctx, it); err != nil {
		return failed, domain.NewUpstreamError("itinerary store", err)
	}

	return &CreateOutput{
		Result:      Result{Success: true, Message: fmt.Sprintf("Lịch trình cho %s đã được thêm thành công.", it.Destination)},
		ItineraryID: it.ID,
	}, nil
}

// FindItinerariesInput is the input of FindItineraries.
type FindItinerariesInput struct {
	UserID string `json:"user_id"`
}

func (in FindItinerariesInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
	)
}

// FindOutput is the selectable listing of a user's itineraries.
type FindOutput struct {
	Result
	ReadableList string                `json:"readable_list,omitempty"`
	Tags         string                `json:"xml_tags,omitempty"`
	Refs         []domain.ItineraryRef `json:"itineraries,omitempty"`
}

// FindItineraries lists the itineraries owned by in.UserID, numbered from 1.
func (tb *Toolbox) FindItineraries(ctx context.Context, in FindItinerariesInput) (*FindOutput, error) {
	if err := domain.AsValidationError(in.Validate()); err != nil {
		return &FindOutput{Result: Result{Message: "Thiếu thông tin người dùng."}}, err
	}
	return tb.findFor(ctx, CallerOr(ctx, in.UserID), in.UserID)
}

func (tb *Toolbox) findFor(ctx context.Context, caller, owner string) (*FindOutput, error) {
	if err := tb.authorize(ctx, policy.Input{Capability: domain.ToolFindItineraries, UserID: caller, OwnerID: owner}); err != nil {
		return &FindOutput{Result: Result{Message: "Bạn không có quyền xem các lịch trình này."}}, err
	}

	ctx, cancel := context.WithTimeout(ctx, tb.timeouts.Store)
	defer cancel()
	list, err := tb.store.ListByOwner(ctx, owner)
	if err != nil {
		return &FindOutput{Result: Result{Message: "Không thể tải danh sách lịch trình lúc này."}},
			domain.NewUpstreamError("itinerary store", err)
	}
	if len(list) == 0 {
		return &FindOutput{Result: Result{Message: "Không tìm thấy lịch trình nào cho người dùng này."}}, nil
	}

	out := &FindOutput{
		Result: Result{
			Success: true,
			Message: fmt.Sprintf("Tôi đã tìm thấy %d lịch trình. Bạn muốn chọn lịch trình nào để cập nhật?", len(list)),
		},
		Refs: make([]domain.ItineraryRef, len(list)),
	}
	readable := make([]string, len(list))
	tags := make([]string, len(list))
	for i, it := range list {
		ref := domain.ItineraryRef{ID: it.ID, Index: i + 1, Destination: it.Destination, Duration: it.Duration}
		out.Refs[i] = ref
		readable[i] = fmt.Sprintf("- %s - %s", ref.Destination, ref.Duration)
		tags[i] = Tag(ref)
	}
	out.ReadableList = strings.Join(readable, "\n")
	out.Tags = strings.Join(tags, "\n")
	return out, nil
}

// Tag renders a listing entry in the form handed to the generation step.
func Tag(ref domain.ItineraryRef) string {
	return fmt.Sprintf(`<itinerary index=%d id="%s">%s - %s</itinerary>`, ref.Index, ref.ID, ref.Destination, ref.Duration)
}

// ProposeUpdateInput is the input of ProposeUpdate.
type ProposeUpdateInput struct {
	UserID      string
	ItineraryID string
	Proposed    *domain.Itinerary
}

func (in ProposeUpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.ItineraryID, validation.Required),
		validation.Field(&in.Proposed, validation.Required, validation.Skip),
	)
}

// Proposal is an update that has been diffed but not stored.
type Proposal struct {
	Current  *domain.Itinerary
	Proposed *domain.Itinerary
	Changes  []diff.Change
}

// LoadForUpdate fetches an itinerary the user may update.
func (tb *Toolbox) LoadForUpdate(ctx context.Context, userID, itineraryID string) (*domain.Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, tb.timeouts.Store)
	defer cancel()

	current, err := tb.store.Get(ctx, itineraryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewUpstreamError("itinerary store", err)
	}
	if err := tb.authorize(ctx, policy.Input{Capability: domain.ToolUpdateItinerary, UserID: userID, OwnerID: current.OwnerUserID}); err != nil {
		return nil, err
	}
	return current, nil
}

// ProposeUpdate loads the stored itinerary, normalizes the proposed version
// and diffs the two. Nothing is written.
func (tb *Toolbox) ProposeUpdate(ctx context.Context, in ProposeUpdateInput) (*Proposal, error) {
	if err := domain.AsValidationError(in.Validate()); err != nil {
		return nil, err
	}
	current, err := tb.LoadForUpdate(ctx, in.UserID, in.ItineraryID)
	if err != nil {
		return nil, err
	}

	proposed := in.Proposed.Clone()
	proposed.ID = current.ID
	proposed.OwnerUserID = current.OwnerUserID
	proposed.CreatedAt = current.CreatedAt
	proposed.UpdatedAt = current.UpdatedAt
	if proposed.Destination == "" {
		proposed.Destination = current.Destination
	}
	if err := domain.AsValidationError(proposed.Validate()); err != nil {
		return nil, err
	}

	return &Proposal{
		Current:  current,
		Proposed: proposed,
		Changes:  diff.Compute(current, proposed),
	}, nil
}

// CommitUpdateInput is the input of CommitUpdate. Summary is the change list
// that was shown to the user; a commit without one is rejected.
type CommitUpdateInput struct {
	UserID    string
	Proposed  *domain.Itinerary
	Summary   []string
	Confirmed bool
}

func (in CommitUpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.Proposed, validation.Required, validation.Skip),
		validation.Field(&in.Summary, validation.Required.Error("the change summary must be shown before committing")),
		validation.Field(&in.Confirmed, validation.Required.Error("an explicit confirmation is required")),
	)
}

// CommitUpdate stores a confirmed proposal. The write runs detached from the
// caller's cancellation so a disconnect cannot leave it half done. A proposal
// built on an older version than the stored one is rejected with
// domain.ErrConflict.
func (tb *Toolbox) CommitUpdate(ctx context.Context, in CommitUpdateInput) (*Result, error) {
	failed := &Result{Message: "Không thể lưu thay đổi lúc này. Bạn có thể xác nhận lại để thử lại."}
	stale := &Result{Message: "Lịch trình đã được thay đổi sau khi đề xuất được tạo. Hãy yêu cầu cập nhật lại để xem các thay đổi mới."}
	if err := domain.AsValidationError(in.Validate()); err != nil {
		return failed, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tb.timeouts.Commit)
	defer cancel()

	current, err := tb.store.Get(ctx, in.Proposed.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Result{Message: "Lịch trình này không còn tồn tại."}, err
		}
		return failed, domain.NewUpstreamError("itinerary store", err)
	}
	err = tb.authorize(ctx, policy.Input{
		Capability: domain.ToolUpdateItinerary,
		UserID:     in.UserID,
		OwnerID:    current.OwnerUserID,
		Confirmed:  in.Confirmed,
	})
	if err != nil {
		return &Result{Message: "Bạn không có quyền cập nhật lịch trình này."}, err
	}
	if !current.UpdatedAt.Equal(in.Proposed.UpdatedAt) {
		return stale, fmt.Errorf("itinerary %s changed after the proposal: %w", current.ID, domain.ErrConflict)
	}

	next := in.Proposed.Clone()
	next.OwnerUserID = current.OwnerUserID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = tb.now().UTC()
	if err := domain.AsValidationError(next.Validate()); err != nil {
		return failed, err
	}
	if err := tb.store.Replace(ctx, next, current.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return &Result{Message: "Lịch trình này không còn tồn tại."}, err
		case errors.Is(err, domain.ErrConflict):
			return stale, err
		}
		return failed, domain.NewUpstreamError("itinerary store", err)
	}

	return &Result{Success: true, Message: fmt.Sprintf("Lịch trình cho %s đã được cập nhật thành công.", next.Destination)}, nil
}

// DeleteItinerary removes an itinerary owned by userID.
func (tb *Toolbox) DeleteItinerary(ctx context.Context, userID, itineraryID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tb.timeouts.Store)
	defer cancel()

	current, err := tb.store.Get(ctx, itineraryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.NewUpstreamError("itinerary store", err)
	}
	err = tb.authorize(ctx, policy.Input{
		Capability: domain.ToolDeleteItinerary,
		UserID:     userID,
		OwnerID:    current.OwnerUserID,
		Confirmed:  true,
	})
	if err != nil {
		return err
	}
	if err := tb.store.Delete(ctx, itineraryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.NewUpstreamError("itinerary store", err)
	}
	return nil
}

// authorize evaluates the capability policy. Only block is an error here;
// require_confirmation is enforced by the update flow itself.
func (tb *Toolbox) authorize(ctx context.Context, in policy.Input) error {
	if tb.policy == nil {
		if in.OwnerID != "" && in.OwnerID != in.UserID {
			return fmt.Errorf("%s: %w", in.Capability, domain.ErrForbidden)
		}
		return nil
	}
	decision, err := tb.policy.Evaluate(ctx, in)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if decision == domain.PolicyBlock {
		return fmt.Errorf("%s: %w", in.Capability, domain.ErrForbidden)
	}
	return nil
}
