package models

import "time"

// QueryFilter narrows a quiz result query. Zero fields do not filter.
type QueryFilter struct {
	SubjectID string
	Since     time.Time
	Limit     int // newest first when set
}
