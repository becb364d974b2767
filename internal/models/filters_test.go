package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func int64Ptr(i int64) *int64     { return &i }

func TestNormalizeHashtag(t *testing.T) {
	assert.Equal(t, "#nyc", NormalizeHashtag("nyc"))
	assert.Equal(t, "#nyc", NormalizeHashtag("#nyc"))
	assert.Equal(t, "#nyc", NormalizeHashtag("  nyc "))
	assert.Equal(t, "", NormalizeHashtag("  "))
}

func TestFiltersValidate(t *testing.T) {
	t.Run("empty filters are valid", func(t *testing.T) {
		require.NoError(t, (&PartyFilters{}).Validate())
	})

	t.Run("lat without lng is invalid", func(t *testing.T) {
		f := &PartyFilters{LocationRadius: &LocationRadius{Lat: floatPtr(40.0)}}
		err := f.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("lng without lat is invalid", func(t *testing.T) {
		f := &PartyFilters{LocationRadius: &LocationRadius{Lng: floatPtr(-74.0)}}
		assert.ErrorIs(t, f.Validate(), ErrInvalidInput)
	})

	t.Run("unknown party type is invalid", func(t *testing.T) {
		f := &PartyFilters{PartyType: "someday"}
		assert.ErrorIs(t, f.Validate(), ErrInvalidInput)
	})

	t.Run("bad date is invalid", func(t *testing.T) {
		f := &PartyFilters{DateRange: &DateRange{Start: "next tuesday"}}
		assert.ErrorIs(t, f.Validate(), ErrInvalidInput)
	})

	t.Run("date-only bounds are accepted", func(t *testing.T) {
		f := &PartyFilters{DateRange: &DateRange{Start: "2025-09-01", End: "2025-09-30"}}
		require.NoError(t, f.Validate())
	})
}

func TestFiltersQuery(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no filters means match everything", func(t *testing.T) {
		q := (&PartyFilters{}).Query(now)
		assert.Empty(t, q)
	})

	t.Run("hashtags become an or of contains matches", func(t *testing.T) {
		q := (&PartyFilters{Hashtags: []string{"nyc", "#rooftop"}}).Query(now)
		or, ok := q["$or"].([]bson.M)
		require.True(t, ok)
		require.Len(t, or, 2)
		assert.Equal(t, bson.M{"$regex": "#nyc"}, or[0]["hashtags"])
		assert.Equal(t, bson.M{"$regex": "#rooftop"}, or[1]["hashtags"])
	})

	t.Run("geo radius is never pushed to the store", func(t *testing.T) {
		f := &PartyFilters{LocationRadius: &LocationRadius{Lat: floatPtr(40.73), Lng: floatPtr(-74.0)}}
		q := f.Query(now)
		assert.Empty(t, q)
	})

	t.Run("date range bounds start_time inclusively", func(t *testing.T) {
		f := &PartyFilters{DateRange: &DateRange{Start: "2025-09-01", End: "2025-09-30"}}
		q := f.Query(now)
		bounds, ok := q["start_time"].(bson.M)
		require.True(t, ok)
		assert.Contains(t, bounds, "$gte")
		assert.Contains(t, bounds, "$lte")
	})

	t.Run("host and capacity push down", func(t *testing.T) {
		f := &PartyFilters{
			HostID:       int64Ptr(9),
			MaxAttendees: &AttendeeBounds{Min: intPtr(5), Max: intPtr(50)},
		}
		q := f.Query(now)
		assert.Equal(t, int64(9), q["host_id"])
		assert.Equal(t, bson.M{"$gte": 5, "$lte": 50}, q["max_attendees"])
	})

	t.Run("upcoming party type", func(t *testing.T) {
		q := (&PartyFilters{PartyType: "upcoming"}).Query(now)
		assert.Equal(t, bson.M{"$gt": now}, q["start_time"])
	})

	t.Run("cancelled party type compares the timestamps", func(t *testing.T) {
		q := (&PartyFilters{PartyType: "cancelled"}).Query(now)
		assert.Contains(t, q, "$expr")
		assert.Equal(t, bson.M{"$ne": nil}, q["start_time"])
	})

	t.Run("upcoming and date range AND on start_time", func(t *testing.T) {
		f := &PartyFilters{
			PartyType: "upcoming",
			DateRange: &DateRange{Start: "2025-09-01", End: "2025-09-30"},
		}
		q := f.Query(now)
		bounds, ok := q["start_time"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, now, bounds["$gt"])
		assert.Contains(t, bounds, "$gte")
		assert.Contains(t, bounds, "$lte")
	})

	t.Run("cancelled and date range keep the nil guard", func(t *testing.T) {
		f := &PartyFilters{
			PartyType: "cancelled",
			DateRange: &DateRange{Start: "2025-09-01"},
		}
		q := f.Query(now)
		bounds, ok := q["start_time"].(bson.M)
		require.True(t, ok)
		assert.Contains(t, bounds, "$ne")
		assert.Contains(t, bounds, "$gte")
		assert.Contains(t, q, "$expr")
	})
}

func TestFilterByRadius(t *testing.T) {
	nyc := &Party{ID: 1, Latitude: floatPtr(40.7128), Longitude: floatPtr(-74.0060)}
	la := &Party{ID: 2, Latitude: floatPtr(34.0522), Longitude: floatPtr(-118.2437)}
	nowhere := &Party{ID: 3}

	t.Run("admits only parties inside the radius", func(t *testing.T) {
		lr := &LocationRadius{Lat: floatPtr(40.73), Lng: floatPtr(-74.00), RadiusKm: 50}
		kept, distances := FilterByRadius([]*Party{nyc, la}, lr)
		require.Len(t, kept, 1)
		assert.Equal(t, int64(1), kept[0].ID)
		require.Len(t, distances, 1)
		assert.Less(t, distances[0], 50.0)
		assert.Greater(t, distances[0], 0.0)
	})

	t.Run("excludes parties without coordinates", func(t *testing.T) {
		lr := &LocationRadius{Lat: floatPtr(40.73), Lng: floatPtr(-74.00), RadiusKm: 50}
		kept, _ := FilterByRadius([]*Party{nowhere, nyc}, lr)
		require.Len(t, kept, 1)
		assert.Equal(t, int64(1), kept[0].ID)
	})

	t.Run("zero radius falls back to the default", func(t *testing.T) {
		lr := &LocationRadius{Lat: floatPtr(40.7128), Lng: floatPtr(-74.0060)}
		assert.Equal(t, DefaultRadiusKm, lr.Radius())
		kept, _ := FilterByRadius([]*Party{nyc, la}, lr)
		require.Len(t, kept, 1)
	})
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	p := &Party{
		ID:          4,
		Name:        "Rooftop Chill",
		HostID:      2,
		AttendeeIDs: EncodeIDList([]int64{10, 11}),
		StartTime:   &start,
		EndTime:     &end,
		Hashtags:    "#rooftop #chill",
	}
	host := &UserSummary{ID: 2, Username: "ada"}

	s := Summarize(p, host, 3.2, now)
	assert.Equal(t, int64(4), s.ID)
	assert.Equal(t, 2, s.AttendeeCount)
	assert.Equal(t, StatusOngoing, s.Status)
	assert.Equal(t, 3.2, s.DistanceKm)
	assert.Equal(t, host, s.Host)
}
