package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/partylinehq/partyline/internal/models"
)

// swapRetries bounds compare-and-swap retries against concurrent writers.
const swapRetries = 3

// contention reports a compare-and-swap that kept losing until the retry
// budget ran out. It does not wrap ErrConflict: persistent write contention
// is a transient server condition, not a membership-state no-op, and must
// not surface to clients as one.
func contention(err error) error {
	return fmt.Errorf("update contention persisted after %d attempts: %v", swapRetries, err)
}

// MembershipService drives the set-like mutations: party attendance and a
// user's saved-party list. Both run the same read-decode-mutate-encode-write
// sequence with the store's compare-and-swap providing isolation.
type MembershipService struct {
	partyRepo models.PartyRepo
	userRepo  models.UserRepo
}

func NewMembershipService(partyRepo models.PartyRepo, userRepo models.UserRepo) *MembershipService {
	return &MembershipService{
		partyRepo: partyRepo,
		userRepo:  userRepo,
	}
}

// JoinParty adds the user to the party's attendee list. Already attending is
// a conflict, a missing party is not-found; clients branch on the
// difference. Capacity is advisory and never enforced here, and a user may
// join an ended or cancelled party.
func (ms *MembershipService) JoinParty(ctx context.Context, partyID, userID int64) error {
	var lastErr error
	for attempt := 0; attempt < swapRetries; attempt++ {
		party, err := ms.partyRepo.GetPartyByID(ctx, partyID)
		if err != nil {
			return err
		}
		newRaw, changed := models.AddID(party.AttendeeIDs, userID)
		if !changed {
			return fmt.Errorf("already attending this party: %w", models.ErrConflict)
		}
		err = ms.partyRepo.SwapAttendees(ctx, partyID, party.AttendeeIDs, newRaw)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		lastErr = err // lost the race, re-read and retry
	}
	return contention(lastErr)
}

// LeaveParty removes the user from the attendee list; not attending is a
// conflict.
func (ms *MembershipService) LeaveParty(ctx context.Context, partyID, userID int64) error {
	var lastErr error
	for attempt := 0; attempt < swapRetries; attempt++ {
		party, err := ms.partyRepo.GetPartyByID(ctx, partyID)
		if err != nil {
			return err
		}
		newRaw, changed := models.RemoveID(party.AttendeeIDs, userID)
		if !changed {
			return fmt.Errorf("not attending this party: %w", models.ErrConflict)
		}
		err = ms.partyRepo.SwapAttendees(ctx, partyID, party.AttendeeIDs, newRaw)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return contention(lastErr)
}

// SaveParty bookmarks a party on the user's saved list. The party must
// exist; saving it twice is a conflict.
func (ms *MembershipService) SaveParty(ctx context.Context, userID, partyID int64) error {
	if _, err := ms.partyRepo.GetPartyByID(ctx, partyID); err != nil {
		return err
	}
	var lastErr error
	for attempt := 0; attempt < swapRetries; attempt++ {
		user, err := ms.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		newRaw, changed := models.AddID(user.SavedPartyIDs, partyID)
		if !changed {
			return fmt.Errorf("party already saved: %w", models.ErrConflict)
		}
		err = ms.userRepo.SwapSavedParties(ctx, userID, user.SavedPartyIDs, newRaw)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return contention(lastErr)
}

// UnsaveParty removes a bookmark; an absent bookmark is a conflict.
func (ms *MembershipService) UnsaveParty(ctx context.Context, userID, partyID int64) error {
	var lastErr error
	for attempt := 0; attempt < swapRetries; attempt++ {
		user, err := ms.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		newRaw, changed := models.RemoveID(user.SavedPartyIDs, partyID)
		if !changed {
			return fmt.Errorf("party not saved: %w", models.ErrConflict)
		}
		err = ms.userRepo.SwapSavedParties(ctx, userID, user.SavedPartyIDs, newRaw)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return contention(lastErr)
}

// ListSavedParties resolves the user's saved list into summaries in saved
// order. Saved ids whose party no longer exists are skipped.
func (ms *MembershipService) ListSavedParties(ctx context.Context, userID int64) ([]models.PartySummary, error) {
	user, err := ms.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	parties, err := ms.partyRepo.GetPartiesByIDs(ctx, models.DecodeIDList(user.SavedPartyIDs))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	hosts := hostSummaries(ctx, ms.userRepo, parties)
	summaries := make([]models.PartySummary, 0, len(parties))
	for _, p := range parties {
		summaries = append(summaries, models.Summarize(p, hosts[p.HostID], 0, now))
	}
	return summaries, nil
}
