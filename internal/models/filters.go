package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const DefaultRadiusKm = 10.0

// PartyFilters is the discovery filter specification. Every field is
// optional; a nil (or empty) field means the predicate is not applied.
type PartyFilters struct {
	Hashtags       []string        `json:"hashtags,omitempty"`
	LocationRadius *LocationRadius `json:"location_radius,omitempty"`
	PartyType      string          `json:"party_type,omitempty"` // "upcoming", "ended", "cancelled"
	DateRange      *DateRange      `json:"date_range,omitempty"`
	HostID         *int64          `json:"host_id,omitempty"`
	MaxAttendees   *AttendeeBounds `json:"max_attendees,omitempty"`
}

type LocationRadius struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	RadiusKm float64  `json:"radius_km"`
}

// DateRange bounds a party's start_time, inclusive on both ends. Values are
// RFC 3339 timestamps or plain dates ("2025-09-15").
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// AttendeeBounds filters on a party's max_attendees capacity.
type AttendeeBounds struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Validate rejects filter shapes that cannot be evaluated, most importantly
// a radius point missing one of its coordinates.
func (f *PartyFilters) Validate() error {
	if f.LocationRadius != nil {
		lr := f.LocationRadius
		if (lr.Lat == nil) != (lr.Lng == nil) {
			return fmt.Errorf("%w: location_radius requires both lat and lng", ErrInvalidInput)
		}
	}
	switch f.PartyType {
	case "", "upcoming", "ended", "cancelled":
	default:
		return fmt.Errorf("%w: unknown party_type %q", ErrInvalidInput, f.PartyType)
	}
	if f.DateRange != nil {
		if _, err := parseFilterTime(f.DateRange.Start); err != nil {
			return fmt.Errorf("%w: bad date_range.start: %v", ErrInvalidInput, err)
		}
		if _, err := parseFilterTime(f.DateRange.End); err != nil {
			return fmt.Errorf("%w: bad date_range.end: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// GeoActive reports whether a usable radius predicate was supplied. It must
// only be called after Validate.
func (f *PartyFilters) GeoActive() bool {
	return f.LocationRadius != nil && f.LocationRadius.Lat != nil && f.LocationRadius.Lng != nil
}

// Radius returns the query radius in km, defaulting when unset.
func (lr *LocationRadius) Radius() float64 {
	if lr.RadiusKm <= 0 {
		return DefaultRadiusKm
	}
	return lr.RadiusKm
}

// NormalizeHashtag ensures a query tag carries its leading '#'.
func NormalizeHashtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}

// Query builds the store-level predicate set: hashtags, party type, date
// range, host and capacity bounds all push down to the datastore so the
// candidate set is as small as possible before the geo post-filter runs.
// The radius predicate is deliberately absent here; distance needs a
// per-candidate float computation the store cannot evaluate.
func (f *PartyFilters) Query(now time.Time) bson.M {
	query := bson.M{}

	if len(f.Hashtags) > 0 {
		or := make([]bson.M, 0, len(f.Hashtags))
		for _, tag := range f.Hashtags {
			tag = NormalizeHashtag(tag)
			if tag == "" {
				continue
			}
			// Substring containment; any tag matching admits the party.
			or = append(or, bson.M{"hashtags": bson.M{"$regex": regexp.QuoteMeta(tag)}})
		}
		if len(or) > 0 {
			query["$or"] = or
		}
	}

	// party_type and date_range both constrain start_time; their operators
	// accumulate into one document so the predicates AND instead of the
	// later assignment clobbering the earlier one.
	startBounds := bson.M{}

	switch f.PartyType {
	case "upcoming":
		startBounds["$gt"] = now
	case "ended":
		query["end_time"] = bson.M{"$lt": now}
	case "cancelled":
		startBounds["$ne"] = nil
		query["$expr"] = bson.M{"$eq": bson.A{"$start_time", "$end_time"}}
	}

	if f.DateRange != nil {
		if start, _ := parseFilterTime(f.DateRange.Start); start != nil {
			startBounds["$gte"] = *start
		}
		if end, _ := parseFilterTime(f.DateRange.End); end != nil {
			startBounds["$lte"] = *end
		}
	}
	if len(startBounds) > 0 {
		query["start_time"] = startBounds
	}

	if f.HostID != nil {
		query["host_id"] = *f.HostID
	}

	if f.MaxAttendees != nil {
		bounds := bson.M{}
		if f.MaxAttendees.Min != nil {
			bounds["$gte"] = *f.MaxAttendees.Min
		}
		if f.MaxAttendees.Max != nil {
			bounds["$lte"] = *f.MaxAttendees.Max
		}
		if len(bounds) > 0 {
			query["max_attendees"] = bounds
		}
	}

	return query
}

// FilterByRadius applies the geo predicate over candidates already reduced
// by the store query, keeping store order. Parties without coordinates are
// excluded whenever a radius filter is active. The returned distances slice
// is parallel to the surviving parties.
func FilterByRadius(parties []*Party, lr *LocationRadius) ([]*Party, []float64) {
	radius := lr.Radius()
	kept := make([]*Party, 0, len(parties))
	distances := make([]float64, 0, len(parties))
	for _, p := range parties {
		if !p.HasCoordinates() {
			continue
		}
		d := DistanceKm(*lr.Lat, *lr.Lng, *p.Latitude, *p.Longitude)
		if d <= radius {
			kept = append(kept, p)
			distances = append(distances, d)
		}
	}
	return kept, distances
}

func parseFilterTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PartySummary is the discovery/list response shape: the party plus its
// computed fields. Distance is zero unless a geo filter was applied.
type PartySummary struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Hashtags      string       `json:"hashtags,omitempty"`
	Host          *UserSummary `json:"host,omitempty"`
	AttendeeCount int          `json:"attendee_count"`
	Latitude      *float64     `json:"latitude,omitempty"`
	Longitude     *float64     `json:"longitude,omitempty"`
	Address       string       `json:"address,omitempty"`
	StartTime     *time.Time   `json:"start_time,omitempty"`
	EndTime       *time.Time   `json:"end_time,omitempty"`
	MaxAttendees  *int         `json:"max_attendees,omitempty"`
	Status        PartyStatus  `json:"status"`
	DistanceKm    float64      `json:"distance_km"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Summarize attaches the computed fields to a surviving record. host may be
// nil when the owning host's profile is gone.
func Summarize(p *Party, host *UserSummary, distance float64, now time.Time) PartySummary {
	return PartySummary{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Hashtags:      p.Hashtags,
		Host:          host,
		AttendeeCount: p.AttendeeCount(),
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Address:       p.Address,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		MaxAttendees:  p.MaxAttendees,
		Status:        p.Status(now),
		DistanceKm:    distance,
		CreatedAt:     p.CreatedAt,
	}
}
