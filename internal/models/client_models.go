package models

import "time"

// Client represents a customer of the salon.
// Phone holds digits only and is the deduplication key.
type Client struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Phone       string     `json:"phone" db:"phone"`
	Email       *string    `json:"email" db:"email"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastVisit   *time.Time `json:"last_visit" db:"last_visit"`
	TotalVisits int        `json:"total_visits" db:"total_visits"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}

// IsArchived reports whether staff archived the client.
func (c *Client) IsArchived() bool {
	return c.ArchivedAt != nil
}

// ClientFilters drives client search. Query is matched against name, phone and email.
type ClientFilters struct {
	Query           string
	IncludeArchived bool
	Page            int
	PageSize        int
}
