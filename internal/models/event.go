package models

import "time"

// EventType identifies a lifecycle event emitted by the engine.
type EventType string

const (
	EventProjectSubmitted EventType = "ProjectSubmitted"
	EventProjectReviewed  EventType = "ProjectReviewed"
	EventProjectVersioned EventType = "ProjectVersioned"
)

// ProjectEvent is the payload published to the notification sink on every
// lifecycle transition. Delivery is out of scope for the engine; it only
// emits.
type ProjectEvent struct {
	Type           EventType     `json:"type"`
	ProjectID      string        `json:"project_id"`
	ProjectGroupID string        `json:"project_group_id"`
	ProjectName    string        `json:"project_name"`
	Version        int           `json:"version"`
	Status         ProjectStatus `json:"status"`
	ActorID        string        `json:"actor_id"`
	SubmitterID    string        `json:"submitter_id"`
	ReviewAction   ReviewAction  `json:"review_action,omitempty"`
	Comments       string        `json:"comments,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
