package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuy1125/vin2/internal/domain"
)

func blk(acts ...domain.Activity) *domain.TimeBlock {
	return &domain.TimeBlock{Activities: acts}
}

func act(desc string, cost float64) domain.Activity {
	return domain.Activity{Description: desc, Cost: cost}
}

func twoDayTrip() *domain.Itinerary {
	return &domain.Itinerary{
		ID:          "it1",
		OwnerUserID: "u1",
		Destination: "Đà Lạt",
		Duration:    "2 ngày 1 đêm",
		Days: []domain.Day{
			{DayNumber: 1, Morning: blk(act("Đồi chè", 50000)), Afternoon: blk(), Evening: blk(act("Chợ đêm", 100000))},
			{DayNumber: 2, Morning: blk(act("Hồ Xuân Hương", 0)), Afternoon: blk(), Evening: blk()},
		},
	}
}

func TestComputeIdenticalIsEmpty(t *testing.T) {
	it := twoDayTrip()
	assert.Empty(t, Compute(it, it))
	assert.Empty(t, Compute(it, it.Clone()))

	empty := &domain.Itinerary{Duration: "1 ngày", Days: []domain.Day{{DayNumber: 1}}}
	assert.Empty(t, Compute(empty, empty.Clone()))
	assert.Empty(t, Compute(nil, nil))
}

func TestComputeNilAndEmptyBlocksAreEqual(t *testing.T) {
	a := twoDayTrip()
	b := a.Clone()
	b.Days[1].Afternoon = nil
	b.Days[1].Evening = &domain.TimeBlock{}
	assert.Empty(t, Compute(a, b))
}

func TestComputeDayAddedScenario(t *testing.T) {
	old := twoDayTrip()
	proposed := old.Clone()
	proposed.Days = append(proposed.Days, domain.Day{
		DayNumber: 3,
		Morning:   blk(act("Đi chợ", 50000)),
		Afternoon: blk(),
		Evening:   blk(),
	})

	changes := Compute(old, proposed)
	require.Len(t, changes, 2)
	assert.Equal(t, KindDayAdded, changes[0].Kind)
	assert.Equal(t, 3, changes[0].Day)
	assert.Equal(t, KindActivityAdded, changes[1].Kind)
	assert.Equal(t, domain.PeriodMorning, changes[1].Period)
	assert.Contains(t, changes[1].Text, "Đi chợ")
	assert.Contains(t, changes[1].Text, "50000đ")
}

func TestComputeDayAddedExpandsEveryBlock(t *testing.T) {
	old := &domain.Itinerary{Duration: "1 ngày"}
	proposed := &domain.Itinerary{Duration: "1 ngày", Days: []domain.Day{{
		DayNumber: 1,
		Morning:   blk(act("A", 1), act("B", 2)),
		Evening:   blk(act("C", 3)),
	}}}

	lines := Lines(Compute(old, proposed))
	assert.Equal(t, []string{
		"🆕 Thêm ngày 1 với các hoạt động sau:",
		"🕒 Ngày 1 - buổi sáng: • A (Chi phí: 1đ) • B (Chi phí: 2đ)",
		"🕒 Ngày 1 - buổi tối: • C (Chi phí: 3đ)",
	}, lines)
}

func TestComputeDayRemovedIsNotExpanded(t *testing.T) {
	old := twoDayTrip()
	proposed := old.Clone()
	proposed.Days = proposed.Days[:1]

	changes := Compute(old, proposed)
	require.Len(t, changes, 1)
	assert.Equal(t, KindDayRemoved, changes[0].Kind)
	assert.Equal(t, "🗑️ Xoá ngày 2 khỏi lịch trình.", changes[0].Text)
}

func TestComputeOrderingFixture(t *testing.T) {
	old := twoDayTrip()
	proposed := old.Clone()
	proposed.Duration = "3 ngày 2 đêm"
	proposed.Days[0].Morning = blk(act("Đồi chè", 60000), act("Cà phê Mê Linh", 40000))
	proposed.Days[0].Evening = blk()
	proposed.Days[1].Morning = blk(act("Thung lũng Tình Yêu", 0))

	assert.Equal(t, []string{
		`⏱️ Thời gian: "2 ngày 1 đêm" → "3 ngày 2 đêm"`,
		"🔄 Ngày 1 - buổi sáng:",
		`✏️ Thay đổi: "Đồi chè" → "Đồi chè" (Chi phí: 50000đ → 60000đ)`,
		`➕ Thêm: "Cà phê Mê Linh" (Chi phí: 40000đ)`,
		"🔄 Ngày 1 - buổi tối:",
		`➖ Xoá: "Chợ đêm"`,
		"🔄 Ngày 2 - buổi sáng:",
		`✏️ Thay đổi: "Hồ Xuân Hương" → "Thung lũng Tình Yêu" (Chi phí: 0đ → 0đ)`,
	}, Lines(Compute(old, proposed)))

	kinds := make([]Kind, 0)
	for _, c := range Compute(old, proposed) {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []Kind{
		KindDurationChanged,
		KindBlockChanged, KindActivityChanged, KindActivityAdded,
		KindBlockChanged, KindActivityRemoved,
		KindBlockChanged, KindActivityChanged,
	}, kinds)
}

func TestComputePairsDaysByPosition(t *testing.T) {
	old := twoDayTrip()
	// Same day numbers, shifted content: pairing is positional, so day 1 now
	// differs everywhere even though old day 2 still exists in the new list.
	proposed := &domain.Itinerary{
		Duration: old.Duration,
		Days:     []domain.Day{old.Clone().Days[1]},
	}

	changes := Compute(old, proposed)
	require.NotEmpty(t, changes)
	assert.Equal(t, KindBlockChanged, changes[0].Kind)
	assert.Equal(t, 1, changes[0].Day)
	assert.Equal(t, KindDayRemoved, changes[len(changes)-1].Kind)
	assert.Equal(t, 2, changes[len(changes)-1].Day)
}

func TestComputeIdenticalPositionsProduceNoEntry(t *testing.T) {
	old := &domain.Itinerary{Days: []domain.Day{{DayNumber: 1, Morning: blk(act("A", 1), act("B", 2), act("C", 3))}}}
	proposed := old.Clone()
	proposed.Days[0].Morning.Activities[1] = act("B2", 2)

	changes := Compute(old, proposed)
	require.Len(t, changes, 2)
	assert.Equal(t, KindBlockChanged, changes[0].Kind)
	assert.Equal(t, KindActivityChanged, changes[1].Kind)
	assert.Equal(t, 1, changes[1].Index)
}
