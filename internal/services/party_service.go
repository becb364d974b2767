package services

import (
	"context"
	"fmt"
	"time"

	"github.com/partylinehq/partyline/internal/models"
)

type PartyService struct {
	partyRepo models.PartyRepo
	userRepo  models.UserRepo
}

func NewPartyService(partyRepo models.PartyRepo, userRepo models.UserRepo) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		userRepo:  userRepo,
	}
}

// PartyDetail is the single-party response: the record, its host profile and
// the expanded attendee profiles.
type PartyDetail struct {
	Party     models.PartySummary  `json:"party"`
	Attendees []models.UserSummary `json:"attendees"`
}

// CreateParty creates a party owned by the caller's host record. Only hosts
// may create parties; the stored host reference is the Host id.
func (ps *PartyService) CreateParty(ctx context.Context, userID int64, party *models.Party) (*models.Party, error) {
	host, err := ps.userRepo.GetHostByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("only hosts can create parties: %w", models.ErrForbidden)
	}

	if err := models.Validate.Struct(party); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	// Coordinates travel as a pair.
	if (party.Latitude == nil) != (party.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must both be set or both be empty", models.ErrInvalidInput)
	}

	party.HostID = host.ID
	return ps.partyRepo.CreateParty(ctx, party)
}

func (ps *PartyService) GetParty(ctx context.Context, partyID int64) (*PartyDetail, error) {
	if partyID <= 0 {
		return nil, fmt.Errorf("%w: invalid party id", models.ErrInvalidInput)
	}
	party, err := ps.partyRepo.GetPartyByID(ctx, partyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	hostInfo := hostSummaries(ctx, ps.userRepo, []*models.Party{party})[party.HostID]

	attendeeUsers, err := ps.userRepo.GetUsersByIDs(ctx, models.DecodeIDList(party.AttendeeIDs))
	if err != nil {
		return nil, err
	}
	attendees := make([]models.UserSummary, 0, len(attendeeUsers))
	for _, u := range attendeeUsers {
		attendees = append(attendees, u.Summary())
	}

	return &PartyDetail{
		Party:     models.Summarize(party, hostInfo, 0, now),
		Attendees: attendees,
	}, nil
}

func (ps *PartyService) ListParties(ctx context.Context, offset, limit int) ([]models.PartySummary, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", models.ErrInvalidInput)
	}
	parties, total, err := ps.partyRepo.ListParties(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	hosts := hostSummaries(ctx, ps.userRepo, parties)
	summaries := make([]models.PartySummary, 0, len(parties))
	for _, p := range parties {
		summaries = append(summaries, models.Summarize(p, hosts[p.HostID], 0, now))
	}
	return summaries, total, nil
}

// FilterParties runs the discovery pipeline: the store evaluates every
// pushable predicate first, the geo radius is post-filtered over the reduced
// candidates, and the survivors get their computed fields attached. Order is
// the store's insertion order throughout.
func (ps *PartyService) FilterParties(ctx context.Context, filters *models.PartyFilters) ([]models.PartySummary, error) {
	if filters == nil {
		filters = &models.PartyFilters{}
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	parties, err := ps.partyRepo.FilterParties(ctx, filters.Query(now))
	if err != nil {
		return nil, err
	}

	var distances []float64
	if filters.GeoActive() {
		parties, distances = models.FilterByRadius(parties, filters.LocationRadius)
	}

	hosts := hostSummaries(ctx, ps.userRepo, parties)
	summaries := make([]models.PartySummary, 0, len(parties))
	for i, p := range parties {
		var d float64
		if distances != nil {
			d = distances[i]
		}
		summaries = append(summaries, models.Summarize(p, hosts[p.HostID], d, now))
	}
	return summaries, nil
}

// EndParty ends a party immediately. Only the owning host may end it; the
// ownership check happens here at the boundary, not in the lifecycle code.
func (ps *PartyService) EndParty(ctx context.Context, userID, partyID int64) (*models.Party, error) {
	party, err := ps.ownedParty(ctx, userID, partyID)
	if err != nil {
		return nil, err
	}
	party.EndNow(time.Now().UTC())
	if err := ps.partyRepo.SetPartyTimes(ctx, party.ID, party.StartTime, party.EndTime); err != nil {
		return nil, err
	}
	return party, nil
}

// CancelParty cancels a party by collapsing its end time onto its start
// time. Irreversible. Only the owning host may cancel.
func (ps *PartyService) CancelParty(ctx context.Context, userID, partyID int64) (*models.Party, error) {
	party, err := ps.ownedParty(ctx, userID, partyID)
	if err != nil {
		return nil, err
	}
	party.Cancel()
	if err := ps.partyRepo.SetPartyTimes(ctx, party.ID, party.StartTime, party.EndTime); err != nil {
		return nil, err
	}
	return party, nil
}

func (ps *PartyService) ownedParty(ctx context.Context, userID, partyID int64) (*models.Party, error) {
	party, err := ps.partyRepo.GetPartyByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	host, err := ps.userRepo.GetHostByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("only the host can modify the party: %w", models.ErrForbidden)
	}
	if party.HostID != host.ID {
		return nil, fmt.Errorf("only the host can modify the party: %w", models.ErrForbidden)
	}
	return party, nil
}

// hostSummaries resolves the host records behind a set of parties to the
// owning users' profile summaries. Lookup failures degrade to absent hosts
// rather than failing the listing. Shared by every response that carries a
// host profile.
func hostSummaries(ctx context.Context, userRepo models.UserRepo, parties []*models.Party) map[int64]*models.UserSummary {
	out := make(map[int64]*models.UserSummary)
	if len(parties) == 0 {
		return out
	}

	hostIDs := make([]int64, 0, len(parties))
	seen := make(map[int64]bool)
	for _, p := range parties {
		if !seen[p.HostID] {
			seen[p.HostID] = true
			hostIDs = append(hostIDs, p.HostID)
		}
	}

	hosts, err := userRepo.GetHostsByIDs(ctx, hostIDs)
	if err != nil {
		return out
	}
	userIDs := make([]int64, 0, len(hosts))
	hostToUser := make(map[int64]int64, len(hosts))
	for _, h := range hosts {
		hostToUser[h.ID] = h.UserID
		userIDs = append(userIDs, h.UserID)
	}

	users, err := userRepo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return out
	}
	byUserID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byUserID[u.ID] = u
	}

	for hostID, userID := range hostToUser {
		if u, ok := byUserID[userID]; ok {
			s := u.Summary()
			s.ID = hostID // party responses carry the host id, not the user id
			out[hostID] = &s
		}
	}
	return out
}
