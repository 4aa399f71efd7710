package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/shule/core"
)

// Collection names
const (
	Users          = "users"
	Roles          = "roles"
	Schools        = "schools"
	Educations     = "educations"
	Sectors        = "sectors"
	Trades         = "trades"
	ClassRoomTypes = "classroom_types"
	ClassRooms     = "classrooms"
	Classes        = "classes"
	ClassGroups    = "class_groups"
	SubjectTypes   = "subject_types"
	Subjects       = "subjects"
	FileTypes      = "file_types"
	Files          = "files"
	Conversations  = "conversations"
	Messages       = "messages"
	RequestTypes   = "request_types"
	Requests       = "requests"
)

// Index describes an index on a single field of a collection.
// Sparse unique indexes only apply to documents holding the field.
type Index struct {
	Collection string
	Field      string
	Unique     bool
	Sparse     bool
}

// Indexes lists every index of the database: the unique ones back the uniqueness checks,
// the others speed up the lookups of documents by reference.
var Indexes = []Index{
	{Collection: Users, Field: "email", Unique: true},
	{Collection: Users, Field: "username", Unique: true, Sparse: true},
	{Collection: Users, Field: "role"},
	{Collection: Roles, Field: "role", Unique: true},
	{Collection: Schools, Field: "username", Unique: true},
	{Collection: Schools, Field: "owner"},
	{Collection: Educations, Field: "username", Unique: true},
	{Collection: Sectors, Field: "username", Unique: true},
	{Collection: Sectors, Field: "education"},
	{Collection: Trades, Field: "username", Unique: true},
	{Collection: Trades, Field: "sector"},
	{Collection: ClassRoomTypes, Field: "username", Unique: true},
	{Collection: ClassRooms, Field: "username", Unique: true},
	{Collection: ClassRooms, Field: "trade"},
	{Collection: ClassRooms, Field: "sector"},
	{Collection: Classes, Field: "username", Unique: true},
	{Collection: Classes, Field: "teacher"},
	{Collection: Classes, Field: "students"},
	{Collection: ClassGroups, Field: "class"},
	{Collection: SubjectTypes, Field: "username", Unique: true},
	{Collection: Subjects, Field: "username", Unique: true},
	{Collection: Subjects, Field: "class_room"},
	{Collection: FileTypes, Field: "username", Unique: true},
	{Collection: Files, Field: "type"},
	{Collection: Conversations, Field: "members"},
	{Collection: Messages, Field: "conversation"},
	{Collection: RequestTypes, Field: "role", Unique: true},
	{Collection: Requests, Field: "role"},
}

// Open connects to the MongoDB server and waits for it to answer.
func Open(ctx context.Context, conf *core.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetConnectTimeout(conf.Database.ConnectTimeout).
		SetAppName(conf.AppName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = client.Ping(ctx, nil)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// EnsureIndexes creates the missing Indexes. Existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range Indexes {
		opts := options.Index().SetUnique(idx.Unique)
		if idx.Sparse {
			opts.SetSparse(true)
		}
		model := mongo.IndexModel{Keys: bson.D{{Key: idx.Field, Value: 1}}, Options: opts}
		if _, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return errors.Wrapf(err, "creating index on %s.%s", idx.Collection, idx.Field)
		}
	}
	return nil
}
