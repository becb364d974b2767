package models

import (
	"time"
)

type PartyStatus string

const (
	StatusScheduled PartyStatus = "scheduled"
	StatusOngoing   PartyStatus = "ongoing"
	StatusEnded     PartyStatus = "ended"
	StatusCancelled PartyStatus = "cancelled"
)

type Party struct {
	ID          int64  `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name" validate:"required"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// HostID references a Host record, not a User.
	HostID int64 `bson:"host_id" json:"host_id"`

	// Encoded id list of attending users, see idlist.go.
	AttendeeIDs string `bson:"attendee_ids" json:"-"`

	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address   string   `bson:"address,omitempty" json:"address,omitempty"`

	StartTime    *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime      *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	MaxAttendees *int       `bson:"max_attendees,omitempty" json:"max_attendees,omitempty"`

	// Comma or space separated hashtag string, e.g. "#rooftop #nyc".
	Hashtags string `bson:"hashtags,omitempty" json:"hashtags,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCoordinates reports whether the party has a usable location. Latitude
// and longitude are stored as a pair; one without the other never passes
// service validation.
func (p *Party) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// AttendeeCount returns the number of users currently attending.
func (p *Party) AttendeeCount() int {
	return len(DecodeIDList(p.AttendeeIDs))
}

// Status derives the party lifecycle state from its timestamps relative to
// now. A cancelled party is marked by start_time == end_time, which wins over
// every other reading. A party whose end has passed (or equals now) is ended.
// Otherwise it is scheduled until its start and ongoing after; a party with
// no start yet, or no timestamps at all, reads as scheduled. An ongoing party
// without an end time stays ongoing until ended explicitly.
func (p *Party) Status(now time.Time) PartyStatus {
	if p.StartTime != nil && p.EndTime != nil && p.StartTime.Equal(*p.EndTime) {
		return StatusCancelled
	}
	if p.EndTime != nil && !p.EndTime.After(now) {
		return StatusEnded
	}
	if p.StartTime == nil || now.Before(*p.StartTime) {
		return StatusScheduled
	}
	return StatusOngoing
}

// EndNow ends the party by moving its end time to now. Safe to retry: a
// second call moves end_time again, which still reads as ended. Ownership is
// the caller's concern; only the owning host may reach this.
func (p *Party) EndNow(now time.Time) {
	t := now
	p.EndTime = &t
}

// Cancel marks the party cancelled by setting end_time equal to start_time.
// There is no un-cancel.
func (p *Party) Cancel() {
	if p.StartTime == nil {
		p.EndTime = nil
		return
	}
	t := *p.StartTime
	p.EndTime = &t
}
