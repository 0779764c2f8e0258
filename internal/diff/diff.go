// Package diff computes the ordered, human-readable change list between two
// versions of an itinerary.
//
// Days are paired by position, not by day number: a day present at index i in
// one version and missing at index i in the other is reported as wholly added
// or removed.
package diff

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/phuy1125/vin2/internal/domain"
)

// Kind tags a change entry.
type Kind string

const (
	KindDurationChanged Kind = "duration-change"
	KindDayAdded        Kind = "day-added"
	KindDayRemoved      Kind = "day-removed"
	KindBlockChanged    Kind = "block-changed"
	KindActivityAdded   Kind = "activity-added"
	KindActivityRemoved Kind = "activity-removed"
	KindActivityChanged Kind = "activity-changed"
)

// Change is one entry of a diff. Day is 1-based and Index is the activity
// position within the block; both are zero when not applicable.
type Change struct {
	Kind   Kind          `json:"kind"`
	Day    int           `json:"day,omitempty"`
	Period domain.Period `json:"period,omitempty"`
	Index  int           `json:"index,omitempty"`
	Text   string        `json:"text"`
}

// Compute returns the changes from old to new in emission order: duration,
// then days top to bottom, then morning, afternoon, evening, then activity
// index. A nil itinerary is treated as one with no days.
func Compute(old, new *domain.Itinerary) []Change {
	var changes []Change

	oldDuration, newDuration := duration(old), duration(new)
	if oldDuration != newDuration {
		changes = append(changes, Change{
			Kind: KindDurationChanged,
			Text: fmt.Sprintf("⏱️ Thời gian: %q → %q", oldDuration, newDuration),
		})
	}

	oldDays, newDays := days(old), days(new)
	for i := 0; i < max(len(oldDays), len(newDays)); i++ {
		dayNum := i + 1
		switch {
		case i >= len(oldDays):
			changes = append(changes, Change{
				Kind: KindDayAdded,
				Day:  dayNum,
				Text: fmt.Sprintf("🆕 Thêm ngày %d với các hoạt động sau:", dayNum),
			})
			changes = append(changes, expandDay(newDays[i], dayNum)...)
		case i >= len(newDays):
			changes = append(changes, Change{
				Kind: KindDayRemoved,
				Day:  dayNum,
				Text: fmt.Sprintf("🗑️ Xoá ngày %d khỏi lịch trình.", dayNum),
			})
		default:
			changes = append(changes, compareDay(oldDays[i], newDays[i], dayNum)...)
		}
	}

	return changes
}

// Lines renders the change texts in order, ready to show as a confirmation summary.
func Lines(changes []Change) []string {
	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = c.Text
	}
	return lines
}

// expandDay lists every activity of an added day, one entry per non-empty block.
func expandDay(day domain.Day, dayNum int) []Change {
	var changes []Change
	for _, p := range domain.Periods {
		acts := activities(day.Block(p))
		if len(acts) == 0 {
			continue
		}
		items := make([]string, len(acts))
		for j, a := range acts {
			items[j] = fmt.Sprintf("• %s (Chi phí: %sđ)", a.Description, formatCost(a.Cost))
		}
		changes = append(changes, Change{
			Kind:   KindActivityAdded,
			Day:    dayNum,
			Period: p,
			Text:   fmt.Sprintf("🕒 Ngày %d - %s: %s", dayNum, p.Label(), strings.Join(items, " ")),
		})
	}
	return changes
}

func compareDay(oldDay, newDay domain.Day, dayNum int) []Change {
	var changes []Change
	for _, p := range domain.Periods {
		oldActs, newActs := activities(oldDay.Block(p)), activities(newDay.Block(p))
		if slices.Equal(oldActs, newActs) {
			continue
		}

		changes = append(changes, Change{
			Kind:   KindBlockChanged,
			Day:    dayNum,
			Period: p,
			Text:   fmt.Sprintf("🔄 Ngày %d - %s:", dayNum, p.Label()),
		})

		for j := 0; j < max(len(oldActs), len(newActs)); j++ {
			switch {
			case j >= len(oldActs):
				a := newActs[j]
				changes = append(changes, Change{
					Kind: KindActivityAdded, Day: dayNum, Period: p, Index: j,
					Text: fmt.Sprintf("➕ Thêm: %q (Chi phí: %sđ)", a.Description, formatCost(a.Cost)),
				})
			case j >= len(newActs):
				a := oldActs[j]
				changes = append(changes, Change{
					Kind: KindActivityRemoved, Day: dayNum, Period: p, Index: j,
					Text: fmt.Sprintf("➖ Xoá: %q", a.Description),
				})
			case oldActs[j] != newActs[j]:
				o, n := oldActs[j], newActs[j]
				changes = append(changes, Change{
					Kind: KindActivityChanged, Day: dayNum, Period: p, Index: j,
					Text: fmt.Sprintf("✏️ Thay đổi: %q → %q (Chi phí: %sđ → %sđ)",
						o.Description, n.Description, formatCost(o.Cost), formatCost(n.Cost)),
				})
			}
		}
	}
	return changes
}

func duration(it *domain.Itinerary) string {
	if it == nil {
		return ""
	}
	return it.Duration
}

func days(it *domain.Itinerary) []domain.Day {
	if it == nil {
		return nil
	}
	return it.Days
}

func activities(b *domain.TimeBlock) []domain.Activity {
	if b == nil {
		return nil
	}
	return b.Activities
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
