package config

import (
	"fmt"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/preferences"
)

// InputConfig locates the roster.
type InputConfig struct {
	// Path is an .xlsx workbook or a .yaml/.json roster document.
	Path string `json:"path"`
}

// SetDefaults applies the default workbook name.
func (c *InputConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "tennis.xlsx"
	}
}

// OutputConfig lists the files written after a successful run. Empty optional
// paths are skipped.
type OutputConfig struct {
	Path string `json:"path"`
	CSV  string `json:"csv"`
	JSON string `json:"json"`
	PDF  string `json:"pdf"`
	// Summary prints the schedule as a terminal table.
	Summary bool `json:"summary"`
}

// SetDefaults applies the default workbook name.
func (c *OutputConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "tennis_schedules.xlsx"
	}
}

// ColumnMapping assigns a survey column to a day portion.
type ColumnMapping struct {
	Column  string `json:"column"`
	Portion string `json:"day_portion_id"`
}

// AnswerMapping assigns a survey answer to a preference value.
type AnswerMapping struct {
	Answer string `json:"answer"`
	Value  int    `json:"value"`
}

// PreferencesConfig drives survey translation. Mappings are lists because
// survey headers often contain dots.
type PreferencesConfig struct {
	Columns       []ColumnMapping `json:"columns"`
	Answers       []AnswerMapping `json:"answers"`
	IgnoreColumns []string        `json:"ignore_columns"`
}

// SetDefaults ignores the identity columns of the survey export.
func (c *PreferencesConfig) SetDefaults() {
	if len(c.IgnoreColumns) == 0 {
		c.IgnoreColumns = []string{"name", "player_id"}
	}
}

// Validate rejects duplicate columns.
func (c PreferencesConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Columns))
	for _, m := range c.Columns {
		if m.Column == "" || m.Portion == "" {
			return fmt.Errorf("%w: preferences column mapping needs column and day_portion_id", model.ErrInvalidConfig)
		}
		if _, dup := seen[m.Column]; dup {
			return fmt.Errorf("%w: preferences column %q mapped twice", model.ErrInvalidConfig, m.Column)
		}
		seen[m.Column] = struct{}{}
	}
	return c.Translator().Validate()
}

// Translator builds the survey translator.
func (c PreferencesConfig) Translator() preferences.Translator {
	t := preferences.Translator{Columns: make(map[string]string, len(c.Columns)), Ignore: c.IgnoreColumns}
	for _, m := range c.Columns {
		t.Columns[m.Column] = m.Portion
	}
	if len(c.Answers) > 0 {
		t.Answers = make(map[string]int, len(c.Answers))
		for _, a := range c.Answers {
			t.Answers[a.Answer] = a.Value
		}
	}
	return t
}
