// Package project implements the owner-scoped persistence service for
// saved projects.
//
// Every operation takes the caller's user id. A project that exists but
// belongs to another user is reported exactly like a missing one.
package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/teamkit/internal/store"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"

	// StatusActive is the legacy value some older deployments wrote. It is
	// accepted on read and update and never produced.
	StatusActive Status = "active"
)

// DefaultStatus is assigned on create.
const DefaultStatus = StatusNotStarted

// Statuses lists the current (non-legacy) statuses.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusOnHold, StatusCompleted}

// ParseStatus validates s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNotStarted, StatusInProgress, StatusOnHold, StatusCompleted, StatusActive:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status %q (want not_started, in_progress, on_hold or completed)", s)
	}
}

// Project is a saved project as returned to callers.
type Project struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	ProjectName  string          `json:"projectName"`
	TeamConfig   json.RawMessage `json:"teamConfig"`
	ConfigDigest string          `json:"configDigest"`
	SprintPlan   *string         `json:"sprintPlan,omitempty"`
	RACIChart    *string         `json:"raciChart,omitempty"`
	ADRDocument  *string         `json:"adrDocument,omitempty"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Documents are the optional free-text bodies stored alongside a
// configuration. Nil means "not supplied".
type Documents struct {
	SprintPlan  *string `json:"sprintPlan,omitempty"`
	RACIChart   *string `json:"raciChart,omitempty"`
	ADRDocument *string `json:"adrDocument,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	TeamConfig json.RawMessage `json:"teamConfig,omitempty"`
	Documents
	Status *string `json:"status,omitempty"`
}

func fromRecord(r store.Project) Project {
	return Project{
		ID:           r.ID,
		UserID:       r.UserID,
		ProjectName:  r.ProjectName,
		TeamConfig:   r.TeamConfig,
		ConfigDigest: r.ConfigDigest,
		SprintPlan:   r.SprintPlan,
		RACIChart:    r.RACIChart,
		ADRDocument:  r.ADRDocument,
		Status:       Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
