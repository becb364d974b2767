package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*User, error)
	SetAvatarURL(ctx context.Context, userID int64, url string) error
	SwapSavedParties(ctx context.Context, userID int64, oldRaw, newRaw string) error
	CreateHost(ctx context.Context, userID int64) (*Host, error)
	GetHostByID(ctx context.Context, id int64) (*Host, error)
	GetHostByUserID(ctx context.Context, userID int64) (*Host, error)
	GetHostsByIDs(ctx context.Context, ids []int64) ([]*Host, error)
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// One profile per verified identity.
	count, err := col.CountDocuments(ctx, bson.M{"auth_id": user.AuthID})
	if err != nil {
		return nil, fmt.Errorf("error checking existing profile: %v", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("user already registered: %w", ErrConflict)
	}

	id, err := mdb.NextID(ctx, UsersColName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.ID = id
	user.SavedPartyIDs = EncodeIDList(nil)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user already registered: %w", ErrConflict)
		}
		return nil, fmt.Errorf("error inserting user: %v", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var user User
	err = col.FindOne(ctx, bson.M{"auth_id": authID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding user: %v", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id int64) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var user User
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding user: %v", err)
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist among ids; missing ids are
// silently skipped, which party detail relies on.
func (mdb *MongodbRepo) GetUsersByIDs(ctx context.Context, ids []int64) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error decoding users: %v", err)
	}
	return users, nil
}

func (mdb *MongodbRepo) SetAvatarURL(ctx context.Context, userID int64, url string) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"avatar_url": url, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error updating avatar: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// SwapSavedParties writes a new encoded saved-party list, but only if the
// stored value still matches what the caller read. A concurrent writer makes
// the match fail, and the caller re-reads and retries.
func (mdb *MongodbRepo) SwapSavedParties(ctx context.Context, userID int64, oldRaw, newRaw string) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": userID, "saved_party_ids": oldRaw},
		bson.M{"$set": bson.M{"saved_party_ids": newRaw, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error updating saved parties: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("saved parties changed concurrently: %w", ErrConflict)
	}
	return nil
}

func (mdb *MongodbRepo) CreateHost(ctx context.Context, userID int64) (*Host, error) {
	users, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	hosts, err := mdb.GetCollection(HostsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := hosts.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("error checking existing host: %v", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("already a host: %w", ErrConflict)
	}

	id, err := mdb.NextID(ctx, HostsColName)
	if err != nil {
		return nil, err
	}

	host := &Host{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := hosts.InsertOne(ctx, host); err != nil {
		return nil, fmt.Errorf("error inserting host: %v", err)
	}

	// Keep the user's host flag in sync with the capability record.
	res, err := users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"is_host": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return nil, fmt.Errorf("error flagging user as host: %v", err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return host, nil
}

func (mdb *MongodbRepo) GetHostByID(ctx context.Context, id int64) (*Host, error) {
	col, err := mdb.GetCollection(HostsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var host Host
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&host)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("host %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding host: %v", err)
	}
	return &host, nil
}

func (mdb *MongodbRepo) GetHostByUserID(ctx context.Context, userID int64) (*Host, error) {
	col, err := mdb.GetCollection(HostsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var host Host
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&host)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("host for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding host: %v", err)
	}
	return &host, nil
}

func (mdb *MongodbRepo) GetHostsByIDs(ctx context.Context, ids []int64) ([]*Host, error) {
	if len(ids) == 0 {
		return []*Host{}, nil
	}
	col, err := mdb.GetCollection(HostsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding hosts: %v", err)
	}
	defer cursor.Close(ctx)

	var hosts []*Host
	if err := cursor.All(ctx, &hosts); err != nil {
		return nil, fmt.Errorf("error decoding hosts: %v", err)
	}
	return hosts, nil
}
