package db

import (
	"encoding/json"
	"time"

	"github.com/jonathan/cvfeed/internal/types"
)

// Candidate is one row of cv_profiles
type Candidate struct {
	ID             int64
	CreatedAt      *time.Time
	UpdatedAt      *time.Time
	Source         *string
	SourceFileName *string
	Raw            json.RawMessage
	Data           types.CandidateData
}

// Navigation holds the nearest existing ids around a candidate
type Navigation struct {
	Prev *int64
	Next *int64
}

// Document is the raw data column of a row
type Document struct {
	ID  int64
	Raw json.RawMessage
}
