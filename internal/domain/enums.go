// Package domain defines the core domain models for the travel assistant.
package domain

import "strings"

// Intent classifies the purpose of a conversational turn.
type Intent string

const (
	IntentGeneral           Intent = "general"
	IntentSearch            Intent = "search"
	IntentGreeting          Intent = "greeting"
	IntentAccommodation     Intent = "accommodation"
	IntentDestination       Intent = "destination"
	IntentTransportation    Intent = "transportation"
	IntentActivities        Intent = "activities"
	IntentWeather           Intent = "weather"
	IntentCreateItinerary   Intent = "addItinerary"
	IntentGenerateItinerary Intent = "generateItinerary"
	IntentFindItinerary     Intent = "findItinerary"
	IntentUpdateItinerary   Intent = "updateItinerary"
)

// Intents lists every intent in declaration order.
var Intents = []Intent{
	IntentGeneral,
	IntentSearch,
	IntentGreeting,
	IntentAccommodation,
	IntentDestination,
	IntentTransportation,
	IntentActivities,
	IntentWeather,
	IntentCreateItinerary,
	IntentGenerateItinerary,
	IntentFindItinerary,
	IntentUpdateItinerary,
}

// ParseIntent matches s against the known intent values, ignoring case and
// surrounding whitespace or punctuation.
func ParseIntent(s string) (Intent, bool) {
	s = strings.Trim(strings.TrimSpace(s), "\"'`.,:;")
	for _, intent := range Intents {
		if strings.EqualFold(s, string(intent)) {
			return intent, true
		}
	}
	return "", false
}

// IsSearch reports whether the intent is answered from web search results.
func (i Intent) IsSearch() bool {
	switch i {
	case IntentSearch, IntentAccommodation, IntentDestination,
		IntentTransportation, IntentActivities, IntentWeather:
		return true
	}
	return false
}

// Role tags the author of a message. It is assigned when the message is built.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// PartType tags a content part of a multi-part message.
type PartType string

const (
	PartTypeText  PartType = "text"
	PartTypeImage PartType = "image_url"
)

// Period names a time-block within a day.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Periods lists the time-blocks of a day in presentation order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

// Label returns the Vietnamese label used in user-facing text.
func (p Period) Label() string {
	switch p {
	case PeriodMorning:
		return "buổi sáng"
	case PeriodAfternoon:
		return "buổi chiều"
	case PeriodEvening:
		return "buổi tối"
	}
	return string(p)
}
