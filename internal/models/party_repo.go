package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PartyRepo interface {
	CreateParty(ctx context.Context, party *Party) (*Party, error)
	GetPartyByID(ctx context.Context, id int64) (*Party, error)
	GetPartiesByIDs(ctx context.Context, ids []int64) ([]*Party, error)
	ListParties(ctx context.Context, offset, limit int) ([]*Party, int, error)
	FilterParties(ctx context.Context, query bson.M) ([]*Party, error)
	SetPartyTimes(ctx context.Context, id int64, start, end *time.Time) error
	SwapAttendees(ctx context.Context, partyID int64, oldRaw, newRaw string) error
}

func (mdb *MongodbRepo) CreateParty(ctx context.Context, party *Party) (*Party, error) {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	id, err := mdb.NextID(ctx, PartiesColName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	party.ID = id
	party.AttendeeIDs = EncodeIDList(nil)
	party.CreatedAt = now
	party.UpdatedAt = now

	if _, err := col.InsertOne(ctx, party); err != nil {
		return nil, fmt.Errorf("error inserting party: %v", err)
	}
	return party, nil
}

func (mdb *MongodbRepo) GetPartyByID(ctx context.Context, id int64) (*Party, error) {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var party Party
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&party)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("party %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding party: %v", err)
	}
	return &party, nil
}

// GetPartiesByIDs preserves the order of ids, skipping any that no longer
// exist. A user's saved list may reference deleted parties.
func (mdb *MongodbRepo) GetPartiesByIDs(ctx context.Context, ids []int64) ([]*Party, error) {
	if len(ids) == 0 {
		return []*Party{}, nil
	}
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding parties: %v", err)
	}
	defer cursor.Close(ctx)

	var found []*Party
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("error decoding parties: %v", err)
	}

	byID := make(map[int64]*Party, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	parties := make([]*Party, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			parties = append(parties, p)
		}
	}
	return parties, nil
}

func (mdb *MongodbRepo) ListParties(ctx context.Context, offset, limit int) ([]*Party, int, error) {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("error counting parties: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding parties: %v", err)
	}
	defer cursor.Close(ctx)

	var parties []*Party
	if err := cursor.All(ctx, &parties); err != nil {
		return nil, 0, fmt.Errorf("error decoding parties: %v", err)
	}
	return parties, int(total), nil
}

// FilterParties evaluates the store-pushable predicate set built by
// PartyFilters.Query. Results come back in insertion order; the geo
// post-filter and computed fields are the service's job.
func (mdb *MongodbRepo) FilterParties(ctx context.Context, query bson.M) ([]*Party, error) {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error filtering parties: %v", err)
	}
	defer cursor.Close(ctx)

	var parties []*Party
	if err := cursor.All(ctx, &parties); err != nil {
		return nil, fmt.Errorf("error decoding parties: %v", err)
	}
	return parties, nil
}

// SetPartyTimes persists a lifecycle mutation (end-now or cancel).
func (mdb *MongodbRepo) SetPartyTimes(ctx context.Context, id int64, start, end *time.Time) error {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"start_time": start,
			"end_time":   end,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("error updating party times: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("party %d: %w", id, ErrNotFound)
	}
	return nil
}

// SwapAttendees writes a new encoded attendee list, matching on the value
// read by the caller. The compare-and-swap gives the read-decode-mutate-
// encode-write sequence its atomicity; on a concurrent change the match
// fails and the caller retries from a fresh read.
func (mdb *MongodbRepo) SwapAttendees(ctx context.Context, partyID int64, oldRaw, newRaw string) error {
	col, err := mdb.GetCollection(PartiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": partyID, "attendee_ids": oldRaw},
		bson.M{"$set": bson.M{"attendee_ids": newRaw, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error updating attendees: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("attendee list changed concurrently: %w", ErrConflict)
	}
	return nil
}
