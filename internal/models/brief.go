package models

import (
	"time"

	"github.com/google/uuid"
)

// Brief is the stored result of analyzing one case document.
type Brief struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	SourceType    string    `json:"source_type,omitempty" db:"source_type"`
	Tier          string    `json:"tier" db:"tier"`
	Summary       string    `json:"summary" db:"summary"`
	Issues        []string  `json:"issues" db:"issues"`
	Highlighted   string    `json:"highlighted,omitempty" db:"highlighted"`
	Question      string    `json:"question,omitempty" db:"question"`
	Answer        string    `json:"answer,omitempty" db:"answer"`
	SummaryMaxLen int       `json:"summary_max_len" db:"summary_max_len"`
	Chunks        int       `json:"chunks" db:"chunks"`
	Degraded      bool      `json:"degraded" db:"degraded"`
	TextChars     int       `json:"text_chars" db:"text_chars"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Job tracks an asynchronous analysis. Its ID is also the brief ID.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)
