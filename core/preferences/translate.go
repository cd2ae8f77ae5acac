package preferences

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/courtsched/core/model"
)

// SurveyRow is one player's answers from a preference survey export, keyed by
// column header.
type SurveyRow struct {
	Player  string
	Answers map[string]string
}

// Translator converts survey answers into day-portion preferences.
type Translator struct {
	// Columns maps a survey column header to a day portion id.
	Columns map[string]string `json:"columns"`
	// Answers maps an answer text to a preference value in {-1, 0, 1}.
	// Matching ignores case and surrounding spaces.
	Answers map[string]int `json:"answers"`
	// Ignore lists columns that carry no preference, such as the player name.
	Ignore []string `json:"ignore_columns"`
}

// DefaultAnswers is used when no answer mapping is configured.
var DefaultAnswers = map[string]int{
	"yes":     1,
	"like":    1,
	"neutral": 0,
	"no":      -1,
	"dislike": -1,
}

// Validate checks that every answer maps to a value in {-1, 0, 1}.
func (t Translator) Validate() error {
	for answer, v := range t.Answers {
		if v < -1 || v > 1 {
			return fmt.Errorf("%w: answer %q maps to %d, want -1, 0 or 1", model.ErrInvalidConfig, answer, v)
		}
	}
	return nil
}

// Translate returns one preference per player and mapped column. Unknown
// answers are neutral. A column that is neither mapped nor ignored is an
// input error since it would silently drop preferences.
func (t Translator) Translate(rows []SurveyRow) ([]model.RawPreference, error) {
	answers := t.Answers
	if len(answers) == 0 {
		answers = DefaultAnswers
	}
	norm := make(map[string]int, len(answers))
	for k, v := range answers {
		norm[normalize(k)] = v
	}
	ignore := make(map[string]struct{}, len(t.Ignore))
	for _, c := range t.Ignore {
		ignore[normalize(c)] = struct{}{}
	}

	var out []model.RawPreference
	for _, row := range rows {
		cols := make([]string, 0, len(row.Answers))
		for c := range row.Answers {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, col := range cols {
			if _, skip := ignore[normalize(col)]; skip {
				continue
			}
			portion, ok := t.Columns[col]
			if !ok {
				return nil, fmt.Errorf("%w: survey column %q is not mapped to a day portion", model.ErrInvalidInput, col)
			}
			out = append(out, model.RawPreference{
				Player:  row.Player,
				Portion: portion,
				Value:   norm[normalize(row.Answers[col])],
			})
		}
	}
	return out, nil
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
