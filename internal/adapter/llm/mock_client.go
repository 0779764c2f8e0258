package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MessageMarker precedes the user's latest message inside a prompt.
const MessageMarker = "### MESSAGE"

// MockClient is a deterministic Generator for local runs and tests.
// It never calls a model: classification is keyword based and itinerary
// prompts receive a fixed, valid document.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// mockKeywords is checked in order; the first hit wins.
var mockKeywords = []struct {
	intent   string
	keywords []string
}{
	{"updateItinerary", []string{"cập nhật", "sửa", "thay đổi", "update"}},
	{"findItinerary", []string{"lịch trình của tôi", "tìm lịch trình", "my itineraries"}},
	{"generateItinerary", []string{"tạo lịch trình", "lên lịch trình", "plan a trip"}},
	{"weather", []string{"thời tiết", "weather"}},
	{"accommodation", []string{"khách sạn", "homestay", "hotel"}},
	{"transportation", []string{"xe khách", "máy bay", "di chuyển"}},
	{"greeting", []string{"xin chào", "chào", "hello"}},
}

// Generate implements Generator.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(prompt, TaskClassify):
		return m.classify(lastMessage(prompt)), nil
	case strings.HasPrefix(prompt, TaskItinerary):
		return m.itinerary(prompt), nil
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(lastMessage(prompt), 100)), nil
}

func (m *MockClient) classify(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range mockKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent
			}
		}
	}
	return "general"
}

// itinerary echoes the current itinerary found in the prompt with one extra
// free day, or returns a one-day plan when there is none.
func (m *MockClient) itinerary(prompt string) string {
	type activity struct {
		Description string  `json:"description"`
		Cost        float64 `json:"cost"`
	}
	type block struct {
		Activities []activity `json:"activities"`
	}
	type day struct {
		Day       int    `json:"day"`
		Morning   *block `json:"morning"`
		Afternoon *block `json:"afternoon"`
		Evening   *block `json:"evening"`
	}
	type document struct {
		Destination string `json:"destination"`
		Duration    string `json:"duration"`
		Days        []day  `json:"days"`
	}

	var doc document
	if start, end := strings.Index(prompt, "{"), strings.LastIndex(prompt, "}"); start >= 0 && end > start {
		_ = json.Unmarshal([]byte(prompt[start:end+1]), &doc)
	}
	if len(doc.Days) == 0 {
		doc = document{Destination: "Đà Lạt", Duration: "1 ngày"}
	}
	doc.Days = append(doc.Days, day{
		Day:       len(doc.Days) + 1,
		Morning:   &block{Activities: []activity{{Description: "Tự do khám phá", Cost: 0}}},
		Afternoon: &block{Activities: []activity{}},
		Evening:   &block{Activities: []activity{}},
	})

	out, _ := json.Marshal(doc)
	return string(out)
}

func lastMessage(prompt string) string {
	if i := strings.LastIndex(prompt, MessageMarker); i >= 0 {
		return strings.TrimSpace(prompt[i+len(MessageMarker):])
	}
	return strings.TrimSpace(prompt)
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
