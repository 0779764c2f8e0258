// Package history bounds conversation context and renders it for prompts.
package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/phuy1125/vin2/internal/domain"
)

// DefaultTurns is the number of exchange turns handed to the generation step.
const DefaultTurns = 3

// IsExchange reports whether the message was authored by the user or the assistant.
func IsExchange(m domain.Message) bool {
	return m.Role == domain.RoleUser || m.Role == domain.RoleAssistant
}

// RecentTurns returns at most maxCount user/assistant messages, scanning from
// the newest, in chronological order. System and tool messages are skipped.
func RecentTurns(messages []domain.Message, maxCount int) []domain.Message {
	if maxCount <= 0 {
		return nil
	}
	recent := make([]domain.Message, 0, maxCount)
	for i := len(messages) - 1; i >= 0 && len(recent) < maxCount; i-- {
		if IsExchange(messages[i]) {
			recent = append(recent, messages[i])
		}
	}
	slices.Reverse(recent)
	return recent
}

// FormatForPrompt renders each message as a tagged block:
//
//	<user index="0">
//	content
//	</user>
func FormatForPrompt(messages []domain.Message) string {
	blocks := lo.Map(messages, func(m domain.Message, idx int) string {
		return fmt.Sprintf("<%s index=\"%d\">\n%s\n</%s>", m.Role, idx, m.Text(), m.Role)
	})
	return strings.Join(blocks, "\n")
}

// Trim keeps the newest max messages. A non-positive max keeps everything.
func Trim(messages []domain.Message, max int) []domain.Message {
	if max <= 0 || len(messages) <= max {
		return messages
	}
	return append([]domain.Message(nil), messages[len(messages)-max:]...)
}
