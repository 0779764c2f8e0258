package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuy1125/vin2/internal/adapter/search"
	"github.com/phuy1125/vin2/internal/diff"
	"github.com/phuy1125/vin2/internal/domain"
	store "github.com/phuy1125/vin2/internal/repository"
	"github.com/phuy1125/vin2/policy"
	"github.com/phuy1125/vin2/tests/helpers"
)

func blk(acts ...domain.Activity) *domain.TimeBlock {
	return &domain.TimeBlock{Activities: append([]domain.Activity{}, acts...)}
}

func sampleDays() []domain.Day {
	return []domain.Day{
		{DayNumber: 1, Morning: blk(domain.Activity{Description: "Đồi chè", Cost: 50000}), Afternoon: blk(), Evening: blk()},
		{DayNumber: 2, Morning: blk(), Afternoon: blk(domain.Activity{Description: "Hồ Tuyền Lâm", Cost: 0}), Evening: blk()},
	}
}

func noSearch() search.Provider {
	return search.ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		return nil, nil
	})
}

func newToolbox(t *testing.T, s store.ItineraryStore, p search.Provider, opts ...Option) *Toolbox {
	t.Helper()
	engine, err := policy.NewDefaultEngine(context.Background())
	require.NoError(t, err)
	return NewToolbox(s, p, engine, opts...)
}

type failingStore struct {
	store.ItineraryStore
	err error
}

func (f failingStore) Create(ctx context.Context, it *domain.Itinerary) error { return f.err }

func (f failingStore) Replace(ctx context.Context, it *domain.Itinerary, expected time.Time) error {
	return f.err
}

func TestCreateItinerary(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())

	out, err := tb.CreateItinerary(ctx, CreateItineraryInput{
		UserID: "u1", Destination: "Đà Lạt", Duration: "2 ngày 1 đêm", Days: sampleDays(),
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "Lịch trình cho Đà Lạt đã được thêm thành công.", out.Message)
	require.NotEmpty(t, out.ItineraryID)

	got, err := s.Get(ctx, out.ItineraryID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerUserID)
	assert.Equal(t, 50000.0, domain.TotalCost(got))
}

func TestCreateItineraryRejectsInvalidShape(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())

	days := sampleDays()
	days[0].Morning.Activities[0].Cost = -1
	days[1].Evening = nil

	out, err := tb.CreateItinerary(ctx, CreateItineraryInput{UserID: "u1", Destination: "Huế", Duration: "2 ngày", Days: days})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.False(t, out.Success)
	assert.Equal(t, "Có lỗi xảy ra khi lưu lịch trình cho Huế.", out.Message)

	list, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateItineraryStoreFailure(t *testing.T) {
	tb := newToolbox(t, failingStore{err: errors.New("disk full")}, noSearch())

	out, err := tb.CreateItinerary(context.Background(), CreateItineraryInput{
		UserID: "u1", Destination: "Huế", Duration: "2 ngày", Days: sampleDays(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.False(t, out.Success)
	assert.Empty(t, out.ItineraryID)
}

func TestFindItinerariesNone(t *testing.T) {
	tb := newToolbox(t, helpers.NewTestSQLiteStore(t), noSearch())

	out, err := tb.FindItineraries(context.Background(), FindItinerariesInput{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Không tìm thấy lịch trình nào cho người dùng này.", out.Message)
	assert.Empty(t, out.Refs)
}

func TestFindItinerariesListing(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := newToolbox(t, s, noSearch(), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	first, err := tb.CreateItinerary(ctx, CreateItineraryInput{UserID: "u1", Destination: "Đà Lạt", Duration: "2 ngày", Days: sampleDays()})
	require.NoError(t, err)
	second, err := tb.CreateItinerary(ctx, CreateItineraryInput{UserID: "u1", Destination: "Huế", Duration: "3 ngày", Days: sampleDays()})
	require.NoError(t, err)

	out, err := tb.FindItineraries(ctx, FindItinerariesInput{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "Tôi đã tìm thấy 2 lịch trình. Bạn muốn chọn lịch trình nào để cập nhật?", out.Message)
	assert.Equal(t, "- Đà Lạt - 2 ngày\n- Huế - 3 ngày", out.ReadableList)
	assert.Equal(t, []domain.ItineraryRef{
		{ID: first.ItineraryID, Index: 1, Destination: "Đà Lạt", Duration: "2 ngày"},
		{ID: second.ItineraryID, Index: 2, Destination: "Huế", Duration: "3 ngày"},
	}, out.Refs)
	assert.Contains(t, out.Tags, `<itinerary index=2 id="`+second.ItineraryID+`">Huế - 3 ngày</itinerary>`)
}

func TestFindItinerariesRequiresUser(t *testing.T) {
	tb := newToolbox(t, helpers.NewTestSQLiteStore(t), noSearch())
	_, err := tb.FindItineraries(context.Background(), FindItinerariesInput{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSearchBoundsResults(t *testing.T) {
	provider := search.ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		assert.Equal(t, "thời tiết Sa Pa", query)
		assert.Equal(t, 3, maxResults)
		return []domain.SearchResult{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}}, nil
	})
	tb := newToolbox(t, helpers.NewTestSQLiteStore(t), provider)

	out, err := tb.Search(context.Background(), SearchInput{Query: "  thời tiết Sa Pa "})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Len(t, out.Results, 3)

	_, err = tb.Search(context.Background(), SearchInput{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSearchTimeoutIsUpstreamFailure(t *testing.T) {
	provider := search.ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	tb := newToolbox(t, helpers.NewTestSQLiteStore(t), provider,
		WithTimeouts(Timeouts{Search: 20 * time.Millisecond, Store: time.Second, Commit: time.Second}))

	out, err := tb.Search(context.Background(), SearchInput{Query: "Phú Quốc"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, out.Success)
}

func createOne(t *testing.T, tb *Toolbox, user string) string {
	t.Helper()
	out, err := tb.CreateItinerary(context.Background(), CreateItineraryInput{
		UserID: user, Destination: "Đà Lạt", Duration: "2 ngày 1 đêm", Days: sampleDays(),
	})
	require.NoError(t, err)
	return out.ItineraryID
}

func TestProposeThenCommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())
	id := createOne(t, tb, "u1")

	edited := &domain.Itinerary{Destination: "Đà Lạt", Duration: "3 ngày 2 đêm", Days: append(sampleDays(), domain.Day{
		DayNumber: 3, Morning: blk(domain.Activity{Description: "Đi chợ", Cost: 50000}), Afternoon: blk(), Evening: blk(),
	})}
	proposal, err := tb.ProposeUpdate(ctx, ProposeUpdateInput{UserID: "u1", ItineraryID: id, Proposed: edited})
	require.NoError(t, err)
	require.Len(t, proposal.Changes, 3)
	assert.Equal(t, diff.KindDurationChanged, proposal.Changes[0].Kind)
	assert.Equal(t, diff.KindDayAdded, proposal.Changes[1].Kind)
	assert.Equal(t, diff.KindActivityAdded, proposal.Changes[2].Kind)

	before, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2 ngày 1 đêm", before.Duration, "proposing must not write")

	res, err := tb.CommitUpdate(ctx, CommitUpdateInput{
		UserID: "u1", Proposed: proposal.Proposed, Summary: diff.Lines(proposal.Changes), Confirmed: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	after, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, diff.Compute(proposal.Proposed, after))
	assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
}

func TestCommitRequiresConfirmationAndSummary(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())
	id := createOne(t, tb, "u1")
	current, err := s.Get(ctx, id)
	require.NoError(t, err)

	proposed := current.Clone()
	proposed.Duration = "10 ngày"

	_, err = tb.CommitUpdate(ctx, CommitUpdateInput{UserID: "u1", Proposed: proposed, Summary: []string{"x"}})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = tb.CommitUpdate(ctx, CommitUpdateInput{UserID: "u1", Proposed: proposed, Confirmed: true})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	after, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, diff.Compute(current, after))
}

func TestCommitStoreFailureLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	id := createOne(t, newToolbox(t, s, noSearch()), "u1")
	current, err := s.Get(ctx, id)
	require.NoError(t, err)

	tb := newToolbox(t, failingStore{ItineraryStore: s, err: errors.New("connection reset")}, noSearch())
	proposed := current.Clone()
	proposed.Duration = "10 ngày"
	res, err := tb.CommitUpdate(ctx, CommitUpdateInput{UserID: "u1", Proposed: proposed, Summary: []string{"x"}, Confirmed: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "xác nhận lại")

	after, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2 ngày 1 đêm", after.Duration)
}

func TestCommitRejectsProposalBuiltOnOlderVersion(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())
	id := createOne(t, tb, "u1")

	withDay := &domain.Itinerary{Destination: "Đà Lạt", Duration: "3 ngày 2 đêm", Days: append(sampleDays(), domain.Day{
		DayNumber: 3, Morning: blk(domain.Activity{Description: "Đi chợ", Cost: 50000}), Afternoon: blk(), Evening: blk(),
	})}
	renamed := &domain.Itinerary{Destination: "Đà Lạt", Duration: "2 ngày 2 đêm", Days: sampleDays()}

	first, err := tb.ProposeUpdate(ctx, ProposeUpdateInput{UserID: "u1", ItineraryID: id, Proposed: withDay})
	require.NoError(t, err)
	second, err := tb.ProposeUpdate(ctx, ProposeUpdateInput{UserID: "u1", ItineraryID: id, Proposed: renamed})
	require.NoError(t, err)

	res, err := tb.CommitUpdate(ctx, CommitUpdateInput{
		UserID: "u1", Proposed: first.Proposed, Summary: diff.Lines(first.Changes), Confirmed: true,
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = tb.CommitUpdate(ctx, CommitUpdateInput{
		UserID: "u1", Proposed: second.Proposed, Summary: diff.Lines(second.Changes), Confirmed: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "yêu cầu cập nhật lại")

	stored, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "3 ngày 2 đêm", stored.Duration)
	assert.Len(t, stored.Days, 3)
}

func TestUpdateOfForeignItineraryIsForbidden(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())
	id := createOne(t, tb, "owner")

	_, err := tb.ProposeUpdate(ctx, ProposeUpdateInput{UserID: "intruder", ItineraryID: id, Proposed: &domain.Itinerary{Duration: "1 ngày", Days: sampleDays()}})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	current, _ := s.Get(ctx, id)
	_, err = tb.CommitUpdate(ctx, CommitUpdateInput{UserID: "intruder", Proposed: current, Summary: []string{"x"}, Confirmed: true})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDeleteItinerary(t *testing.T) {
	ctx := context.Background()
	s := helpers.NewTestSQLiteStore(t)
	tb := newToolbox(t, s, noSearch())
	id := createOne(t, tb, "owner")

	assert.True(t, errors.Is(tb.DeleteItinerary(ctx, "intruder", id), domain.ErrForbidden))
	require.NoError(t, tb.DeleteItinerary(ctx, "owner", id))
	assert.True(t, errors.Is(tb.DeleteItinerary(ctx, "owner", id), domain.ErrNotFound))
}

func TestRegistryExecute(t *testing.T) {
	ctx := context.Background()
	tb := newToolbox(t, helpers.NewTestSQLiteStore(t), noSearch())
	reg := NewRegistryFor(tb)

	tools := reg.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, domain.ToolAddItinerary, tools[0].Name)
	assert.True(t, json.Valid(tools[0].Schema))

	args, err := json.Marshal(CreateItineraryInput{UserID: "u1", Destination: "Hội An", Duration: "1 ngày", Days: sampleDays()[:1]})
	require.NoError(t, err)
	raw, err := reg.Execute(ctx, domain.ToolAddItinerary, args)
	require.NoError(t, err)
	var created CreateOutput
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.True(t, created.Success)

	raw, err = reg.Execute(WithCaller(ctx, "u1"), domain.ToolFindItineraries, json.RawMessage(`{"user_id":"u1"}`))
	require.NoError(t, err)
	var found FindOutput
	require.NoError(t, json.Unmarshal(raw, &found))
	require.Len(t, found.Refs, 1)
	assert.Equal(t, created.ItineraryID, found.Refs[0].ID)

	_, err = reg.Execute(WithCaller(ctx, "someone-else"), domain.ToolFindItineraries, json.RawMessage(`{"user_id":"u1"}`))
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = reg.Execute(ctx, domain.ToolUpdateItinerary, nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = reg.Execute(ctx, domain.ToolSearch, json.RawMessage(`{"query":`))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
