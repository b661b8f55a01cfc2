package scheduler

import (
	"strconv"
	"strings"
	"unicode"
)

var romanValues = map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100}

// GradeOrdinal converts a grade label such as "10", "Grade 9", "10th" or "XII"
// into a comparable number. ok is false when the label carries no number.
func GradeOrdinal(grade string) (int, bool) {
	trimmed := strings.TrimSpace(grade)
	if trimmed == "" {
		return 0, false
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() > 0 {
		n, err := strconv.Atoi(digits.String())
		if err == nil {
			return n, true
		}
	}

	fields := strings.Fields(strings.ToUpper(trimmed))
	return parseRoman(fields[len(fields)-1])
}

func parseRoman(raw string) (int, bool) {
	total := 0
	prev := 0
	for i := len(raw) - 1; i >= 0; i-- {
		value, ok := romanValues[rune(raw[i])]
		if !ok {
			return 0, false
		}
		if value < prev {
			total -= value
		} else {
			total += value
			prev = value
		}
	}
	return total, total > 0
}

// GradeRange restricts generation to classes whose grade falls within From..To
// inclusive. An empty bound is open.
type GradeRange struct {
	From string
	To   string
}

// Contains reports whether grade lies within the range. Grades without a
// numeric reading only match a bound they equal literally.
func (r *GradeRange) Contains(grade string) bool {
	if r == nil {
		return true
	}
	value, ok := GradeOrdinal(grade)
	if !ok {
		return strings.EqualFold(grade, r.From) || strings.EqualFold(grade, r.To)
	}
	if r.From != "" {
		if from, ok := GradeOrdinal(r.From); ok && value < from {
			return false
		}
	}
	if r.To != "" {
		if to, ok := GradeOrdinal(r.To); ok && value > to {
			return false
		}
	}
	return true
}
