// Package events defines the progress events published while a scheduling
// run moves through its stages.
package events

import "time"

// Stage names a step of a scheduling run.
type Stage string

const (
	StageGrouped    Stage = "grouped"
	StageModelBuilt Stage = "model_built"
	StageSolved     Stage = "solved"
	StageScheduled  Stage = "scheduled"
	StageFailed     Stage = "failed"
)

// StageEvent reports that a run reached a stage.
type StageEvent struct {
	RunID  string
	Stage  Stage
	Detail string
	At     time.Time
}
