package models

import (
	"time"
)

// ClientStatus tracks where a client sits in the booking pipeline
type ClientStatus string

const (
	ClientLead   ClientStatus = "lead"
	ClientWarm   ClientStatus = "warm"
	ClientHot    ClientStatus = "hot"
	ClientBooked ClientStatus = "booked"
	ClientPast   ClientStatus = "past"
)

// IsValid reports whether the status is known
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientLead, ClientWarm, ClientHot, ClientBooked, ClientPast:
		return true
	}
	return false
}

// Client is a customer record owned by an organization
type Client struct {
	ID             string       `json:"id" db:"id"`
	OrganizationID string       `json:"organization_id" db:"organization_id"`
	Name           string       `json:"name" db:"name"`
	Email          string       `json:"email" db:"email"`
	Status         ClientStatus `json:"status" db:"status"`
	LastContactAt  *time.Time   `json:"last_contact_at,omitempty" db:"last_contact_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// IsStale reports whether the last contact is older than threshold.
// A client never contacted is measured from creation.
func (c *Client) IsStale(now time.Time, threshold time.Duration) bool {
	last := c.CreatedAt
	if c.LastContactAt != nil {
		last = *c.LastContactAt
	}
	return now.Sub(last) > threshold
}

// ClientView is a client with its computed staleness flag
type ClientView struct {
	Client
	IsStale bool `json:"is_stale"`
}
