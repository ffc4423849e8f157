package question

import (
	"fmt"
	"strconv"
	"strings"

	"vize-study-service/internal/domain"
)

// Normalize converts one raw catalog record into a canonical Question.
// Fields are coerced defensively: strings are trimmed, numbers stringified,
// anything else dropped. fallbackIndex backs the generated id when the record
// has none, so batches never collide as long as indices are unique.
func Normalize(raw any, fallbackIndex int) domain.Question {
	source, _ := raw.(map[string]any)

	options := sanitizeOptions(source["secenekler"])
	konu := stringOr(firstPresent(source, "konu", "kategori", "category"), "Genel")
	zorluk := stringOr(source["zorluk"], "Belirtilmedi")
	tip := trimmedString(source["tip"])
	soruMetni := trimmedString(source["soruMetni"])
	aciklama := trimmedString(source["aciklama"])
	id := stringOr(source["id"], fmt.Sprintf("auto-%d", fallbackIndex))
	answerText := trimmedString(source["dogruCevap"])
	answerIndex, hasAnswerIndex := intValue(source["dogruCevapIndex"])

	// Resolve the correct answer before shuffling: text match first, then a
	// valid index, then the first option.
	correctIndex := -1
	lowered := strings.ToLower(answerText)
	for i, option := range options {
		if strings.ToLower(option) == lowered {
			correctIndex = i
			break
		}
	}
	if correctIndex == -1 && hasAnswerIndex && answerIndex >= 0 && answerIndex < len(options) {
		correctIndex = answerIndex
	}
	if correctIndex == -1 && len(options) > 0 {
		correctIndex = 0
	}

	safeIndex := 0
	if len(options) > 0 {
		safeIndex = clamp(correctIndex, 0, len(options)-1)
	}

	correctText := answerText
	if len(options) > 0 {
		correctText = options[safeIndex]
	}

	shuffled := shuffleOptions(id, options)

	newIndex := -1
	for i, option := range shuffled {
		if option == correctText {
			newIndex = i
			break
		}
	}

	finalOptions := shuffled
	if len(finalOptions) == 0 && correctText != "" {
		finalOptions = []string{correctText}
	}
	finalIndex := safeIndex
	if newIndex >= 0 {
		finalIndex = newIndex
	}

	return domain.Question{
		ID:              id,
		Konu:            konu,
		Zorluk:          zorluk,
		Tip:             tip,
		SoruMetni:       soruMetni,
		Secenekler:      finalOptions,
		DogruCevap:      correctText,
		DogruCevapIndex: finalIndex,
		Aciklama:        aciklama,
	}
}

// NormalizeAll converts a batch of raw records, dropping any that still lack
// an id, a stem, or options after normalization.
func NormalizeAll(raws []any) []domain.Question {
	questions := make([]domain.Question, 0, len(raws))
	for i, raw := range raws {
		q := Normalize(raw, i)
		if q.ID == "" || q.SoruMetni == "" || len(q.Secenekler) == 0 {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func firstPresent(source map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := source[key]; ok {
			if trimmedString(value) != "" {
				return value
			}
		}
	}
	return nil
}

// trimmedString coerces strings and numbers; everything else becomes "".
func trimmedString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func stringOr(value any, fallback string) string {
	if s := trimmedString(value); s != "" {
		return s
	}
	return fallback
}

func sanitizeOptions(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	options := make([]string, 0, len(items))
	for _, item := range items {
		if s := trimmedString(item); s != "" {
			options = append(options, s)
		}
	}
	return options
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
