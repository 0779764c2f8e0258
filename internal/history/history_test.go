package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuy1125/vin2/internal/domain"
)

func msg(role domain.Role, content string) domain.Message {
	return domain.Message{Role: role, Content: content}
}

func TestRecentTurnsSkipsToolMessages(t *testing.T) {
	var messages []domain.Message
	for i := 0; i < 10; i++ {
		switch i % 3 {
		case 0:
			messages = append(messages, msg(domain.RoleUser, fmt.Sprintf("u%d", i)))
		case 1:
			messages = append(messages, msg(domain.RoleTool, fmt.Sprintf("t%d", i)))
		default:
			messages = append(messages, msg(domain.RoleAssistant, fmt.Sprintf("a%d", i)))
		}
	}
	require.Len(t, messages, 10)

	got := RecentTurns(messages, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "u6", got[0].Content)
	assert.Equal(t, "a8", got[1].Content)
	assert.Equal(t, "u9", got[2].Content)

	// Restartable: same input, same output, input untouched.
	assert.Equal(t, got, RecentTurns(messages, 3))
	assert.Equal(t, "u0", messages[0].Content)
}

func TestRecentTurnsShortHistory(t *testing.T) {
	messages := []domain.Message{
		msg(domain.RoleSystem, "sys"),
		msg(domain.RoleUser, "xin chào"),
	}
	got := RecentTurns(messages, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "xin chào", got[0].Content)

	assert.Empty(t, RecentTurns(messages, 0))
	assert.Empty(t, RecentTurns(nil, 3))
}

func TestFormatForPrompt(t *testing.T) {
	messages := []domain.Message{
		msg(domain.RoleUser, "Tìm lịch trình của tôi"),
		{Role: domain.RoleAssistant, Parts: []domain.Part{
			{Type: domain.PartTypeText, Text: "Tôi đã tìm thấy 2 lịch trình."},
			{Type: domain.PartTypeImage, URL: "https://example.com/map.png"},
			{Type: domain.PartTypeText, Text: "- Đà Lạt - 3 ngày"},
		}},
	}

	want := "<user index=\"0\">\nTìm lịch trình của tôi\n</user>\n" +
		"<assistant index=\"1\">\nTôi đã tìm thấy 2 lịch trình.\n- Đà Lạt - 3 ngày\n</assistant>"
	assert.Equal(t, want, FormatForPrompt(messages))
	assert.Equal(t, "", FormatForPrompt(nil))
}

func TestTrim(t *testing.T) {
	messages := []domain.Message{msg(domain.RoleUser, "1"), msg(domain.RoleAssistant, "2"), msg(domain.RoleUser, "3")}
	got := Trim(messages, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Content)
	assert.Len(t, Trim(messages, 0), 3)
}
