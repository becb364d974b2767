package models

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

const (
	DBName          = "partyline"
	UsersColName    = "users"
	HostsColName    = "hosts"
	PartiesColName  = "parties"
	CountersColName = "counters"
)

// SupabaseRepo talks to the identity provider. It never sees party or user
// records; those live in Mongo.
type SupabaseRepo struct {
	supabaseClient *supabase.Client
}

func SupabaseNewRepo(supabaseClient *supabase.Client) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
	}
}

// MongodbRepo is the record store handle. It is passed explicitly through
// the container; nothing reads a package-level client.
type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}

func (mdb *MongodbRepo) GetCollection(name string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(DBName).Collection(name), nil
}

// NextID issues the next integer id for the named sequence. The counter doc
// is created on first use; $inc under FindOneAndUpdate makes the sequence
// safe for concurrent callers.
func (mdb *MongodbRepo) NextID(ctx context.Context, sequence string) (int64, error) {
	col, err := mdb.GetCollection(CountersColName)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err = col.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error advancing %s sequence: %v", sequence, err)
	}
	return counter.Seq, nil
}
