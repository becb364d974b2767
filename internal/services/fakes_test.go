package services

import (
	"context"
	"fmt"
	"time"

	"github.com/partylinehq/partyline/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// In-memory repos implementing the models interfaces, standing in for the
// datastore. Swap methods honor the compare-and-swap contract so the
// services' retry paths are exercised for real.

type fakeUserRepo struct {
	users  map[int64]*models.User
	hosts  map[int64]*models.Host
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[int64]*models.User),
		hosts: make(map[int64]*models.Host),
	}
}

func (f *fakeUserRepo) addUser(u *models.User) *models.User {
	f.nextID++
	u.ID = f.nextID
	if u.SavedPartyIDs == "" {
		u.SavedPartyIDs = models.EncodeIDList(nil)
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) addHost(userID int64) *models.Host {
	f.nextID++
	h := &models.Host{ID: f.nextID, UserID: userID, CreatedAt: time.Now()}
	f.hosts[h.ID] = h
	if u, ok := f.users[userID]; ok {
		u.IsHost = true
	}
	return h
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.AuthID == user.AuthID {
			return nil, fmt.Errorf("user already registered: %w", models.ErrConflict)
		}
	}
	return f.addUser(user), nil
}

func (f *fakeUserRepo) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	for _, u := range f.users {
		if u.AuthID == authID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", models.ErrNotFound)
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
}

func (f *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SetAvatarURL(ctx context.Context, userID int64, url string) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	u.AvatarURL = url
	return nil
}

func (f *fakeUserRepo) SwapSavedParties(ctx context.Context, userID int64, oldRaw, newRaw string) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if u.SavedPartyIDs != oldRaw {
		return fmt.Errorf("saved parties changed concurrently: %w", models.ErrConflict)
	}
	u.SavedPartyIDs = newRaw
	return nil
}

func (f *fakeUserRepo) CreateHost(ctx context.Context, userID int64) (*models.Host, error) {
	for _, h := range f.hosts {
		if h.UserID == userID {
			return nil, fmt.Errorf("already a host: %w", models.ErrConflict)
		}
	}
	return f.addHost(userID), nil
}

func (f *fakeUserRepo) GetHostByID(ctx context.Context, id int64) (*models.Host, error) {
	if h, ok := f.hosts[id]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("host %d: %w", id, models.ErrNotFound)
}

func (f *fakeUserRepo) GetHostByUserID(ctx context.Context, userID int64) (*models.Host, error) {
	for _, h := range f.hosts {
		if h.UserID == userID {
			return h, nil
		}
	}
	return nil, fmt.Errorf("host for user %d: %w", userID, models.ErrNotFound)
}

func (f *fakeUserRepo) GetHostsByIDs(ctx context.Context, ids []int64) ([]*models.Host, error) {
	out := []*models.Host{}
	for _, id := range ids {
		if h, ok := f.hosts[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakePartyRepo struct {
	parties map[int64]*models.Party
	order   []int64
	nextID  int64

	// results returned by FilterParties regardless of query; the store-side
	// predicate evaluation is Mongo's job, not the service's.
	filterResult []*models.Party

	// swapConflicts makes every SwapAttendees lose the race, simulating a
	// writer that keeps winning.
	swapConflicts bool
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{parties: make(map[int64]*models.Party)}
}

func (f *fakePartyRepo) addParty(p *models.Party) *models.Party {
	f.nextID++
	p.ID = f.nextID
	if p.AttendeeIDs == "" {
		p.AttendeeIDs = models.EncodeIDList(nil)
	}
	f.parties[p.ID] = p
	f.order = append(f.order, p.ID)
	return p
}

func (f *fakePartyRepo) CreateParty(ctx context.Context, party *models.Party) (*models.Party, error) {
	return f.addParty(party), nil
}

func (f *fakePartyRepo) GetPartyByID(ctx context.Context, id int64) (*models.Party, error) {
	if p, ok := f.parties[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("party %d: %w", id, models.ErrNotFound)
}

func (f *fakePartyRepo) GetPartiesByIDs(ctx context.Context, ids []int64) ([]*models.Party, error) {
	out := []*models.Party{}
	for _, id := range ids {
		if p, ok := f.parties[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePartyRepo) ListParties(ctx context.Context, offset, limit int) ([]*models.Party, int, error) {
	out := []*models.Party{}
	for i := offset; i < len(f.order) && len(out) < limit; i++ {
		out = append(out, f.parties[f.order[i]])
	}
	return out, len(f.order), nil
}

func (f *fakePartyRepo) FilterParties(ctx context.Context, query bson.M) ([]*models.Party, error) {
	if f.filterResult != nil {
		return f.filterResult, nil
	}
	out := []*models.Party{}
	for _, id := range f.order {
		out = append(out, f.parties[id])
	}
	return out, nil
}

func (f *fakePartyRepo) SetPartyTimes(ctx context.Context, id int64, start, end *time.Time) error {
	p, ok := f.parties[id]
	if !ok {
		return fmt.Errorf("party %d: %w", id, models.ErrNotFound)
	}
	p.StartTime = start
	p.EndTime = end
	return nil
}

func (f *fakePartyRepo) SwapAttendees(ctx context.Context, partyID int64, oldRaw, newRaw string) error {
	p, ok := f.parties[partyID]
	if !ok {
		return fmt.Errorf("party %d: %w", partyID, models.ErrNotFound)
	}
	if f.swapConflicts || p.AttendeeIDs != oldRaw {
		return fmt.Errorf("attendee list changed concurrently: %w", models.ErrConflict)
	}
	p.AttendeeIDs = newRaw
	return nil
}
