package export

import (
	"encoding/json"
	"io"

	"github.com/kilianp07/courtsched/core/roundrobin"
	"github.com/kilianp07/courtsched/core/scheduler"
)

// Document is the JSON form of a scheduling run.
type Document struct {
	RunID       string                 `json:"run_id"`
	Groups      []roundrobin.Group     `json:"groups"`
	Assignments []scheduler.Assignment `json:"assignments"`
	Diagnostics scheduler.Diagnostics  `json:"diagnostics"`
}

// WriteJSON writes the run to w in indented JSON format.
func WriteJSON(w io.Writer, res *scheduler.Result) error {
	doc := Document{RunID: res.RunID, Groups: res.Groups, Diagnostics: res.Diagnostics}
	if res.Schedule != nil {
		doc.Assignments = res.Schedule.Assignments
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
