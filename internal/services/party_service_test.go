package services

import (
	"context"
	"testing"
	"time"

	"github.com/partylinehq/partyline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test time %q: %v", s, err)
	}
	return parsed
}

func fptr(f float64) *float64 { return &f }

func partyFixture() (*PartyService, *fakePartyRepo, *fakeUserRepo, *models.User, *models.Host) {
	partyRepo := newFakePartyRepo()
	userRepo := newFakeUserRepo()
	owner := userRepo.addUser(&models.User{Username: "ama", DisplayName: "Ama", Email: "ama@example.com", AuthID: "auth-owner"})
	host := userRepo.addHost(owner.ID)
	return NewPartyService(partyRepo, userRepo), partyRepo, userRepo, owner, host
}

func TestCreateParty(t *testing.T) {
	ctx := context.Background()

	t.Run("host creates a party owned by the host record", func(t *testing.T) {
		ps, _, _, owner, host := partyFixture()

		party, err := ps.CreateParty(ctx, owner.ID, &models.Party{Name: "Brunch Beats"})
		require.NoError(t, err)
		assert.Equal(t, host.ID, party.HostID)
		assert.NotZero(t, party.ID)
	})

	t.Run("non-host cannot create", func(t *testing.T) {
		ps, _, userRepo, _, _ := partyFixture()
		guest := userRepo.addUser(&models.User{Username: "kojo", DisplayName: "Kojo", Email: "kojo@example.com", AuthID: "auth-guest"})

		_, err := ps.CreateParty(ctx, guest.ID, &models.Party{Name: "Brunch Beats"})
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("half a coordinate pair is rejected", func(t *testing.T) {
		ps, _, _, owner, _ := partyFixture()

		_, err := ps.CreateParty(ctx, owner.ID, &models.Party{Name: "Brunch Beats", Latitude: fptr(40.7)})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestEndParty(t *testing.T) {
	ctx := context.Background()

	t.Run("owning host ends the party", func(t *testing.T) {
		ps, partyRepo, _, owner, _ := partyFixture()
		party, err := ps.CreateParty(ctx, owner.ID, &models.Party{Name: "Arcade Takeover"})
		require.NoError(t, err)

		ended, err := ps.EndParty(ctx, owner.ID, party.ID)
		require.NoError(t, err)
		require.NotNil(t, ended.EndTime)
		assert.Equal(t, models.StatusEnded, partyRepo.parties[party.ID].Status(time.Now().UTC().Add(time.Second)))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		ps, _, userRepo, owner, _ := partyFixture()
		party, err := ps.CreateParty(ctx, owner.ID, &models.Party{Name: "Arcade Takeover"})
		require.NoError(t, err)

		other := userRepo.addUser(&models.User{Username: "esi", DisplayName: "Esi", Email: "esi@example.com", AuthID: "auth-esi"})
		userRepo.addHost(other.ID)

		_, err = ps.EndParty(ctx, other.ID, party.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("missing party is not-found", func(t *testing.T) {
		ps, _, _, owner, _ := partyFixture()
		_, err := ps.EndParty(ctx, owner.ID, 777)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCancelParty(t *testing.T) {
	ctx := context.Background()
	ps, partyRepo, _, owner, _ := partyFixture()

	start := mustTime(t, "2025-09-15T00:05:00Z")
	end := mustTime(t, "2025-09-16T00:05:00Z")
	party, err := ps.CreateParty(ctx, owner.ID, &models.Party{Name: "Techno Tram", StartTime: &start, EndTime: &end})
	require.NoError(t, err)

	_, err = ps.CancelParty(ctx, owner.ID, party.ID)
	require.NoError(t, err)

	stored := partyRepo.parties[party.ID]
	require.NotNil(t, stored.EndTime)
	assert.True(t, stored.StartTime.Equal(*stored.EndTime))
	assert.Equal(t, models.StatusCancelled, stored.Status(mustTime(t, "2030-01-01T00:00:00Z")))
}

func TestFilterParties(t *testing.T) {
	ctx := context.Background()

	t.Run("geo radius admits only nearby parties and attaches distance", func(t *testing.T) {
		ps, partyRepo, _, _, host := partyFixture()
		partyRepo.addParty(&models.Party{Name: "LES All-Nighter", HostID: host.ID, Latitude: fptr(40.7128), Longitude: fptr(-74.0060)})
		partyRepo.addParty(&models.Party{Name: "Downtown Crawl", HostID: host.ID, Latitude: fptr(34.0522), Longitude: fptr(-118.2437)})

		got, err := ps.FilterParties(ctx, &models.PartyFilters{
			LocationRadius: &models.LocationRadius{Lat: fptr(40.73), Lng: fptr(-74.00), RadiusKm: 50},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "LES All-Nighter", got[0].Name)
		assert.Greater(t, got[0].DistanceKm, 0.0)
		assert.Less(t, got[0].DistanceKm, 50.0)
	})

	t.Run("no geo filter keeps coordinate-less parties with zero distance", func(t *testing.T) {
		ps, partyRepo, _, _, host := partyFixture()
		partyRepo.addParty(&models.Party{Name: "Mystery Spot", HostID: host.ID})

		got, err := ps.FilterParties(ctx, &models.PartyFilters{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 0.0, got[0].DistanceKm)
	})

	t.Run("host profiles are attached by host id", func(t *testing.T) {
		ps, partyRepo, _, _, host := partyFixture()
		partyRepo.addParty(&models.Party{Name: "Riverfront Jam", HostID: host.ID})

		got, err := ps.FilterParties(ctx, &models.PartyFilters{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].Host)
		assert.Equal(t, host.ID, got[0].Host.ID)
		assert.Equal(t, "ama", got[0].Host.Username)
	})

	t.Run("invalid radius point is rejected", func(t *testing.T) {
		ps, _, _, _, _ := partyFixture()
		_, err := ps.FilterParties(ctx, &models.PartyFilters{
			LocationRadius: &models.LocationRadius{Lat: fptr(40.73)},
		})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("attendee counts are computed per party", func(t *testing.T) {
		ps, partyRepo, _, _, host := partyFixture()
		p := partyRepo.addParty(&models.Party{Name: "Neon Splash", HostID: host.ID})
		partyRepo.parties[p.ID].AttendeeIDs = models.EncodeIDList([]int64{5, 6, 7})

		got, err := ps.FilterParties(ctx, &models.PartyFilters{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].AttendeeCount)
	})
}

func TestGetParty(t *testing.T) {
	ctx := context.Background()
	ps, partyRepo, userRepo, owner, host := partyFixture()

	attendee := userRepo.addUser(&models.User{Username: "yaw", DisplayName: "Yaw", Email: "yaw@example.com", AuthID: "auth-yaw"})
	p := partyRepo.addParty(&models.Party{Name: "Night Market", HostID: host.ID})
	partyRepo.parties[p.ID].AttendeeIDs = models.EncodeIDList([]int64{attendee.ID, 9999})

	detail, err := ps.GetParty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, detail.Party.ID)
	require.NotNil(t, detail.Party.Host)
	assert.Equal(t, owner.Username, detail.Party.Host.Username)

	// The vanished attendee id is skipped, not an error.
	require.Len(t, detail.Attendees, 1)
	assert.Equal(t, "yaw", detail.Attendees[0].Username)
	assert.Equal(t, 2, detail.Party.AttendeeCount)
}

func TestListParties(t *testing.T) {
	ctx := context.Background()
	ps, partyRepo, _, _, host := partyFixture()
	for _, name := range []string{"One", "Two", "Three"} {
		partyRepo.addParty(&models.Party{Name: name, HostID: host.ID})
	}

	page, total, err := ps.ListParties(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Two", page[0].Name)

	_, _, err = ps.ListParties(ctx, -1, 2)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
