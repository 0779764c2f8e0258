package service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/phuy1125/vin2/internal/domain"
)

// fold lowercases s, strips diacritics and collapses punctuation to single
// spaces so that "Đà Lạt!" and "da lat" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("đ", "d", "Đ", "d").Replace(strings.ToLower(out))
	fields := strings.FieldsFunc(out, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '#'
	})
	return strings.Join(fields, " ")
}

// ordinals are matched against folded text as whole phrases. Index -1 means
// the last entry.
var ordinals = []struct {
	phrase string
	index  int
}{
	{"dau tien", 1},
	{"thu nhat", 1},
	{"first", 1},
	{"thu hai", 2},
	{"second", 2},
	{"thu ba", 3},
	{"third", 3},
	{"thu tu", 4},
	{"fourth", 4},
	{"thu nam", 5},
	{"fifth", 5},
	{"cuoi cung", -1},
	{"last", -1},
}

var (
	numberedRe = regexp.MustCompile(`(?:^|\s)(?:so thu tu|thu tu|so|#|thu|number|no)\s*(\d+)(?:\s|$)`)
	bareRe     = regexp.MustCompile(`^(\d+)$`)

	// "thứ tự" (order) folds to the same text as "thứ tư" (fourth).
	orderWord = strings.NewReplacer("thứ tự", "số")
)

// resolveSelection maps a reference such as "cái thứ hai" or "lịch trình Đà
// Lạt" to exactly one candidate. Zero or several matches are an
// AmbiguousReferenceError; a default is never picked.
func resolveSelection(text string, candidates []domain.ItineraryRef) (domain.ItineraryRef, error) {
	ambiguous := &domain.AmbiguousReferenceError{Reference: text, Candidates: candidates}
	if len(candidates) == 0 {
		return domain.ItineraryRef{}, ambiguous
	}
	folded := fold(orderWord.Replace(norm.NFC.String(strings.ToLower(text))))

	byDestination := lo.Filter(candidates, func(ref domain.ItineraryRef, _ int) bool {
		return mentionsDestination(folded, ref.Destination)
	})
	pool := candidates
	switch len(byDestination) {
	case 1:
		return byDestination[0], nil
	case 0:
	default:
		ambiguous.Candidates = byDestination
		pool = byDestination
	}

	// A number always refers to the listing index.
	if n, found := numberedIndex(folded); found {
		if ref, ok := lo.Find(pool, func(ref domain.ItineraryRef) bool { return ref.Index == n }); ok {
			return ref, nil
		}
		return domain.ItineraryRef{}, ambiguous
	}

	o, found := wordOrdinal(folded)
	if !found {
		return domain.ItineraryRef{}, ambiguous
	}
	listed, inListing := atOrdinal(candidates, o)
	if inListing && !lo.ContainsBy(pool, func(ref domain.ItineraryRef) bool { return ref.ID == listed.ID }) {
		inListing = false
	}
	if len(byDestination) == 0 {
		if inListing {
			return listed, nil
		}
		return domain.ItineraryRef{}, ambiguous
	}

	// "Đà Lạt thứ hai" may count within the listing or within the matches.
	within, inMatches := atOrdinal(pool, o)
	switch {
	case inListing && inMatches && listed.ID != within.ID:
		return domain.ItineraryRef{}, ambiguous
	case inListing:
		return listed, nil
	case inMatches:
		return within, nil
	}
	return domain.ItineraryRef{}, ambiguous
}

func mentionsDestination(folded, destination string) bool {
	dest := fold(destination)
	if dest == "" {
		return false
	}
	padded := " " + folded + " "
	if strings.Contains(padded, " "+dest+" ") {
		return true
	}
	compact := strings.ReplaceAll(dest, " ", "")
	for _, word := range strings.Fields(folded) {
		if word == compact {
			return true
		}
	}
	return false
}

// numberedIndex finds "số 2", "#2", "thứ 2" or a bare "2". found is true
// even when the number is out of range.
func numberedIndex(folded string) (n int, found bool) {
	for _, re := range []*regexp.Regexp{numberedRe, bareRe} {
		if m := re.FindStringSubmatch(folded); m != nil {
			n, err := strconv.Atoi(m[1])
			return n, err == nil
		}
	}
	return 0, false
}

func wordOrdinal(folded string) (int, bool) {
	padded := " " + folded + " "
	for _, o := range ordinals {
		if strings.Contains(padded, " "+o.phrase+" ") {
			return o.index, true
		}
	}
	return 0, false
}

// atOrdinal returns the o-th entry of refs, 1-based, with -1 for the last.
func atOrdinal(refs []domain.ItineraryRef, o int) (domain.ItineraryRef, bool) {
	if o < 0 {
		o = len(refs)
	}
	if o < 1 || o > len(refs) {
		return domain.ItineraryRef{}, false
	}
	return refs[o-1], true
}

type answer int

const (
	answerNone answer = iota
	answerYes
	answerNo
)

// maxConfirmationWords bounds how long a yes or no reply may be. Longer
// messages are new requests even when they start with "có".
const maxConfirmationWords = 5

// Vocabulary keeps diacritics: folding would read "thời tiết" as "thôi".
var (
	affirmatives = []string{"có", "đồng ý", "ok", "okay", "oke", "xác nhận", "lưu", "yes", "confirm", "co", "dong y", "xac nhan", "luu"}
	negatives    = []string{"không", "hủy", "huỷ", "thôi", "no", "cancel", "khong", "huy"}
	notAnswers   = []string{"có thể", "co the", "không biết", "khong biet"}

	// "có đắt không" is a question, and "ok nhưng đổi bữa tối" asks for more changes.
	questionTails = []string{"không", "khong", "chưa", "chua", "ko", "hông"}
	contrasts     = []string{"nhưng", "nhung", "but", "tuy", "trừ", "tru", "except"}
)

// parseConfirmation reads a yes or no from the start of a short reply.
// Questions and qualified answers are neither.
func parseConfirmation(text string) answer {
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return answerNone
	}
	words := strings.FieldsFunc(norm.NFC.String(strings.ToLower(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 || len(words) > maxConfirmationWords {
		return answerNone
	}
	if lo.Some(words, contrasts) {
		return answerNone
	}
	joined := strings.Join(words, " ")
	starts := func(phrase string) bool {
		return joined == phrase || strings.HasPrefix(joined, phrase+" ")
	}
	switch {
	case lo.ContainsBy(notAnswers, starts):
		return answerNone
	case lo.ContainsBy(negatives, starts):
		return answerNo
	case lo.ContainsBy(affirmatives, starts):
		if len(words) > 1 && lo.Contains(questionTails, words[len(words)-1]) {
			return answerNone
		}
		return answerYes
	}
	return answerNone
}
