package domain

import (
	"strings"
	"time"
)

// Activity is a single planned item with its estimated cost.
type Activity struct {
	Description string  `json:"description" bson:"description"`
	Cost        float64 `json:"cost" bson:"cost"`
}

// TimeBlock holds the ordered activities of one period of a day.
type TimeBlock struct {
	Activities []Activity `json:"activities" bson:"activities"`
}

// Day is one day of an itinerary. A nil block means the period is empty.
type Day struct {
	DayNumber int        `json:"day" bson:"day"`
	Morning   *TimeBlock `json:"morning,omitempty" bson:"morning,omitempty"`
	Afternoon *TimeBlock `json:"afternoon,omitempty" bson:"afternoon,omitempty"`
	Evening   *TimeBlock `json:"evening,omitempty" bson:"evening,omitempty"`
}

// Block returns the time-block for the given period, which may be nil.
func (d Day) Block(p Period) *TimeBlock {
	switch p {
	case PeriodMorning:
		return d.Morning
	case PeriodAfternoon:
		return d.Afternoon
	case PeriodEvening:
		return d.Evening
	}
	return nil
}

// Itinerary is a multi-day trip plan owned by a single user.
type Itinerary struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerUserID string     `json:"user_id" bson:"user"`
	Destination string     `json:"destination" bson:"destination"`
	Duration    string     `json:"duration" bson:"duration"`
	StartDate   *time.Time `json:"start_date,omitempty" bson:"start_date,omitempty"`
	Days        []Day      `json:"days" bson:"itinerary"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy so callers can edit a proposal without touching the original.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	out := *it
	if it.StartDate != nil {
		start := *it.StartDate
		out.StartDate = &start
	}
	out.Days = make([]Day, len(it.Days))
	for i, day := range it.Days {
		out.Days[i] = Day{
			DayNumber: day.DayNumber,
			Morning:   cloneBlock(day.Morning),
			Afternoon: cloneBlock(day.Afternoon),
			Evening:   cloneBlock(day.Evening),
		}
	}
	return &out
}

func cloneBlock(b *TimeBlock) *TimeBlock {
	if b == nil {
		return nil
	}
	return &TimeBlock{Activities: append([]Activity(nil), b.Activities...)}
}

// ItineraryRef is the machine-addressable entry of a FindItineraries listing.
// Index is 1-based and follows the listing order.
type ItineraryRef struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
}

// ItinerarySummary is the read model used by list views.
type ItinerarySummary struct {
	ID          string     `json:"id"`
	Destination string     `json:"destination"`
	Duration    string     `json:"duration"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DayCount    int        `json:"day_count"`
	TotalCost   float64    `json:"total_cost"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Summarize builds the list view of an itinerary.
func Summarize(it *Itinerary) ItinerarySummary {
	return ItinerarySummary{
		ID:          it.ID,
		Destination: it.Destination,
		Duration:    it.Duration,
		StartDate:   it.StartDate,
		DayCount:    len(it.Days),
		TotalCost:   TotalCost(it),
		CreatedAt:   it.CreatedAt,
	}
}

// PeriodSeparator joins activity descriptions in DescribePeriod.
const PeriodSeparator = ", "

// PeriodCost sums the activity costs of a block. A nil block costs 0.
func PeriodCost(b *TimeBlock) float64 {
	if b == nil {
		return 0
	}
	var total float64
	for _, a := range b.Activities {
		total += a.Cost
	}
	return total
}

// DayCost sums the three periods of a day.
func DayCost(d Day) float64 {
	return PeriodCost(d.Morning) + PeriodCost(d.Afternoon) + PeriodCost(d.Evening)
}

// TotalCost is derived, never stored: the sum of every activity cost.
func TotalCost(it *Itinerary) float64 {
	if it == nil {
		return 0
	}
	var total float64
	for _, d := range it.Days {
		total += DayCost(d)
	}
	return total
}

// DescribePeriod joins the activity descriptions of a block.
func DescribePeriod(b *TimeBlock) string {
	if b == nil || len(b.Activities) == 0 {
		return ""
	}
	parts := make([]string, len(b.Activities))
	for i, a := range b.Activities {
		parts[i] = a.Description
	}
	return strings.Join(parts, PeriodSeparator)
}
