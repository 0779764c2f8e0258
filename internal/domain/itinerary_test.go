package domain

import (
	"errors"
	"testing"
)

func block(acts ...Activity) *TimeBlock {
	return &TimeBlock{Activities: acts}
}

func sampleItinerary() *Itinerary {
	return &Itinerary{
		ID:          "it1",
		OwnerUserID: "u1",
		Destination: "Đà Lạt",
		Duration:    "2 ngày 1 đêm",
		Days: []Day{
			{
				DayNumber: 1,
				Morning:   block(Activity{"Đồi chè Cầu Đất", 50000}, Activity{"Cà phê", 30000}),
				Afternoon: block(),
				Evening:   block(Activity{"Chợ đêm", 100000}),
			},
			{
				DayNumber: 2,
				Morning:   block(Activity{"Hồ Xuân Hương", 0}),
				Afternoon: nil,
				Evening:   block(Activity{"Lẩu gà lá é", 250000}),
			},
		},
	}
}

func TestTotalCostSumsEveryActivity(t *testing.T) {
	it := sampleItinerary()

	var perDay float64
	for _, d := range it.Days {
		perDay += DayCost(d)
	}
	var perActivity float64
	for _, d := range it.Days {
		for _, p := range Periods {
			if b := d.Block(p); b != nil {
				for _, a := range b.Activities {
					perActivity += a.Cost
				}
			}
		}
	}

	if got := TotalCost(it); got != 430000 {
		t.Fatalf("expected 430000, got %v", got)
	}
	if TotalCost(it) != perDay || perDay != perActivity {
		t.Fatalf("totals disagree: total=%v perDay=%v perActivity=%v", TotalCost(it), perDay, perActivity)
	}
}

func TestCostFunctionsTreatAbsentAsZero(t *testing.T) {
	if got := TotalCost(nil); got != 0 {
		t.Fatalf("nil itinerary: expected 0, got %v", got)
	}
	if got := TotalCost(&Itinerary{}); got != 0 {
		t.Fatalf("no days: expected 0, got %v", got)
	}
	if got := PeriodCost(nil); got != 0 {
		t.Fatalf("nil block: expected 0, got %v", got)
	}
	if got := DayCost(Day{DayNumber: 1}); got != 0 {
		t.Fatalf("empty day: expected 0, got %v", got)
	}
}

func TestDescribePeriod(t *testing.T) {
	it := sampleItinerary()
	if got := DescribePeriod(it.Days[0].Morning); got != "Đồi chè Cầu Đất, Cà phê" {
		t.Fatalf("unexpected description: %q", got)
	}
	if got := DescribePeriod(it.Days[0].Afternoon); got != "" {
		t.Fatalf("empty block: expected empty string, got %q", got)
	}
	if got := DescribePeriod(nil); got != "" {
		t.Fatalf("nil block: expected empty string, got %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	it := sampleItinerary()
	cp := it.Clone()
	cp.Days[0].Morning.Activities[0].Cost = 1
	cp.Days = append(cp.Days, Day{DayNumber: 3})

	if it.Days[0].Morning.Activities[0].Cost != 50000 {
		t.Fatalf("clone aliases activities")
	}
	if len(it.Days) != 2 {
		t.Fatalf("clone aliases days")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleItinerary())
	if s.DayCount != 2 || s.TotalCost != 430000 || s.Destination != "Đà Lạt" {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestItineraryValidate(t *testing.T) {
	it := sampleItinerary()
	it.Days[1].Afternoon = block()
	if err := AsValidationError(it.Validate()); err != nil {
		t.Fatalf("expected valid itinerary, got %v", err)
	}

	bad := sampleItinerary()
	bad.Days[1].Afternoon = nil
	bad.Days[0].Evening.Activities[0].Cost = -5
	err := AsValidationError(bad.Validate())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	if !fields["days.0.evening.activities.0.cost"] || !fields["days.1.afternoon"] {
		t.Fatalf("unexpected fields: %+v", verr.Errors)
	}
}

func TestItineraryValidateDayNumbers(t *testing.T) {
	it := sampleItinerary()
	it.Days[1].Afternoon = block()
	it.Days[1].DayNumber = 3
	if err := AsValidationError(it.Validate()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for gap in day numbers, got %v", err)
	}
}

func TestMessageTextDropsNonTextParts(t *testing.T) {
	m := Message{Role: RoleUser, Parts: []Part{
		{Type: PartTypeText, Text: "xin chào"},
		{Type: PartTypeImage, URL: "https://example.com/a.png"},
		{Type: PartTypeText, Text: "Đà Lạt"},
	}}
	if got := m.Text(); got != "xin chào\nĐà Lạt" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestParseIntent(t *testing.T) {
	cases := map[string]Intent{
		"updateItinerary":   IntentUpdateItinerary,
		" FINDITINERARY. ":  IntentFindItinerary,
		"\"weather\"":       IntentWeather,
		"addItinerary":      IntentCreateItinerary,
		"generateItinerary": IntentGenerateItinerary,
	}
	for in, want := range cases {
		got, ok := ParseIntent(in)
		if !ok || got != want {
			t.Fatalf("ParseIntent(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseIntent("booking"); ok {
		t.Fatalf("expected unknown intent to fail")
	}
}

func TestStateCloneDoesNotAlias(t *testing.T) {
	s := NewConversationState("s1", "u1")
	s.Messages = []Message{{Role: RoleUser, Content: "a"}}
	s.Pending = &PendingAction{Candidates: []ItineraryRef{{ID: "x", Index: 1}}}

	cp := s.Clone()
	cp.Messages = append(cp.Messages, Message{Role: RoleAssistant, Content: "b"})
	cp.Messages[0].Content = "changed"
	cp.Pending.Candidates[0].ID = "y"

	if len(s.Messages) != 1 || s.Messages[0].Content != "a" {
		t.Fatalf("messages aliased: %+v", s.Messages)
	}
	if s.Pending.Candidates[0].ID != "x" {
		t.Fatalf("pending aliased")
	}
}
