package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/phuy1125/vin2/internal/adapter/llm"
	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/history"
	"github.com/phuy1125/vin2/internal/tools"
)

var intentGuide = []struct {
	intent domain.Intent
	when   string
}{
	{domain.IntentGreeting, "lời chào hỏi"},
	{domain.IntentGeneral, "câu hỏi chung, không cần tra cứu"},
	{domain.IntentSearch, "cần tìm thông tin trên mạng"},
	{domain.IntentAccommodation, "khách sạn, homestay, chỗ ở"},
	{domain.IntentDestination, "gợi ý điểm đến"},
	{domain.IntentTransportation, "phương tiện di chuyển"},
	{domain.IntentActivities, "hoạt động, trải nghiệm"},
	{domain.IntentWeather, "thời tiết"},
	{domain.IntentCreateItinerary, "lưu một lịch trình đã thống nhất"},
	{domain.IntentGenerateItinerary, "tạo lịch trình mới"},
	{domain.IntentFindItinerary, "xem các lịch trình đã lưu"},
	{domain.IntentUpdateItinerary, "chọn hoặc sửa một lịch trình đã lưu"},
}

// itineraryFormat describes the expected JSON document without quoting one,
// so that the only JSON object in an update prompt is the current itinerary.
const itineraryFormat = `Trả về DUY NHẤT một đối tượng JSON, không kèm giải thích, với các khóa:
destination (chuỗi), duration (chuỗi, ví dụ "3 ngày 2 đêm"), start_date (tuỳ chọn, YYYY-MM-DD), days (danh sách).
Mỗi phần tử của days có day (số thứ tự từ 1), morning, afternoon, evening.
Mỗi buổi có activities là danh sách các hoạt động gồm description (chuỗi) và cost (số tiền VND, không âm).
Buổi không có hoạt động nào vẫn phải có activities là danh sách rỗng.`

func writeHistory(b *strings.Builder, recent []domain.Message) {
	if len(recent) == 0 {
		return
	}
	b.WriteString("\nLịch sử hội thoại gần đây:\n")
	b.WriteString(history.FormatForPrompt(recent))
	b.WriteString("\n")
}

func writeMessage(b *strings.Builder, text string) {
	b.WriteString("\n")
	b.WriteString(llm.MessageMarker)
	b.WriteString("\n")
	b.WriteString(text)
}

func classifyPrompt(t *turn) string {
	var b strings.Builder
	b.WriteString(llm.TaskClassify)
	b.WriteString("\nBạn là bộ phân loại ý định của một trợ lý du lịch. Chỉ trả về đúng một nhãn trong danh sách sau:\n")
	for _, g := range intentGuide {
		fmt.Fprintf(&b, "- %s: %s\n", g.intent, g.when)
	}
	fmt.Fprintf(&b, "\nÝ định của lượt trước: %s\n", t.prev.LastIntent)
	if t.prev.ActiveItineraryID != "" {
		fmt.Fprintf(&b, "Lịch trình đang được chọn: %s\n", t.prev.ActiveItineraryID)
	}
	if len(t.candidates) > 0 {
		b.WriteString("Người dùng vừa được xem các lịch trình sau; nếu họ chọn một trong số đó thì nhãn là updateItinerary:\n")
		b.WriteString(strings.Join(lo.Map(t.candidates, func(ref domain.ItineraryRef, _ int) string {
			return tools.Tag(ref)
		}), "\n"))
		b.WriteString("\n")
	}
	writeHistory(&b, t.recent)
	writeMessage(&b, t.text)
	return b.String()
}

func answerPrompt(t *turn, results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(llm.TaskAnswer)
	b.WriteString("\nBạn là trợ lý du lịch thân thiện. Trả lời ngắn gọn bằng tiếng Việt.\n")
	if len(results) > 0 {
		b.WriteString("\nKết quả tìm kiếm:\n")
		for i, r := range results {
			fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", i+1, r.Title, r.URL, r.Snippet)
		}
		b.WriteString("Chỉ dùng thông tin trong kết quả tìm kiếm và dẫn nguồn khi cần.\n")
	}
	writeHistory(&b, t.recent)
	writeMessage(&b, t.text)
	return b.String()
}

func createPrompt(t *turn) string {
	var b strings.Builder
	b.WriteString(llm.TaskItinerary)
	b.WriteString("\nDựa trên cuộc hội thoại, hãy lập một lịch trình du lịch chi tiết theo từng ngày.\n")
	b.WriteString(itineraryFormat)
	b.WriteString("\n")
	writeHistory(&b, t.recent)
	writeMessage(&b, t.text)
	return b.String()
}

func updatePrompt(t *turn, current *domain.Itinerary) (string, error) {
	doc, err := json.MarshalIndent(draftFrom(current), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	var b strings.Builder
	b.WriteString(llm.TaskItinerary)
	b.WriteString("\nHãy chỉnh sửa lịch trình hiện tại theo yêu cầu của người dùng. Giữ nguyên những phần không được nhắc tới.\n")
	b.WriteString(itineraryFormat)
	b.WriteString("\n\nLịch trình hiện tại:\n")
	b.Write(doc)
	b.WriteString("\n")
	writeHistory(&b, t.recent)
	writeMessage(&b, t.text)
	return b.String(), nil
}
