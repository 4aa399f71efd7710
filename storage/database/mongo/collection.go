// Package mongostore implements core.Collection on top of MongoDB collections.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/shule/core"
)

type Collection[T core.Document] struct {
	entity string
	coll   *mongo.Collection
}

// NewCollection wraps the `name` collection of db, holding documents of `entity`.
func NewCollection[T core.Document](db *mongo.Database, name, entity string) *Collection[T] {
	return &Collection[T]{entity: entity, coll: db.Collection(name)}
}

func (c *Collection[T]) Name() string { return c.entity }

func (c *Collection[T]) Create(ctx context.Context, doc T) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, c.trapErr(err, "inserting")
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, core.NewError(core.KindStoreFailure, "inserting %s: unexpected id %v", c.entity, res.InsertedID)
	}
	return id, nil
}

func (c *Collection[T]) Get(ctx context.Context, id primitive.ObjectID) (T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, bson.M{string(core.FieldID): id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
		}
		return doc, c.trapErr(err, "finding")
	}
	return doc, nil
}

func (c *Collection[T]) GetMany(ctx context.Context, filter *core.Filter) ([]T, error) {
	cur, err := c.coll.Find(ctx, toBSON(filter), options.Find().SetSort(bson.D{{Key: string(core.FieldID), Value: 1}}))
	if err != nil {
		return nil, c.trapErr(err, "querying")
	}
	docs := make([]T, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, c.trapErr(err, "decoding")
	}
	return docs, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter *core.Filter) (T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, toBSON(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, core.NewError(core.KindNotFound, "%s not found", c.entity)
		}
		return doc, c.trapErr(err, "finding")
	}
	return doc, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter *core.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, c.trapErr(err, "counting")
	}
	return n, nil
}

func (c *Collection[T]) Update(ctx context.Context, id primitive.ObjectID, patch *core.Patch) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, bson.M{string(core.FieldID): id}, toUpdate(patch, time.Now().UTC()))
	if err != nil {
		return false, c.trapErr(err, "updating")
	}
	if res.MatchedCount == 0 {
		return false, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
	}
	return res.ModifiedCount > 0, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) (T, error) {
	var doc T
	if err := c.coll.FindOneAndDelete(ctx, bson.M{string(core.FieldID): id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
		}
		return doc, c.trapErr(err, "deleting")
	}
	return doc, nil
}

// trapErr converts unique index violations into conflicts and anything else into store failures.
func (c *Collection[T]) trapErr(err error, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return &core.Error{Kind: core.KindConflict, Message: "a " + c.entity + " with the same unique value already exists", Err: err}
	}
	return core.StoreFailure(err, action+" "+c.entity)
}

func toBSON(filter *core.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M{string(filter.Field): filter.Value}
}

func toUpdate(patch *core.Patch, now time.Time) bson.M {
	set := bson.M{string(core.FieldUpdatedAt): now}
	for f, v := range patch.Fields {
		set[string(f)] = v
	}
	update := bson.M{"$set": set}

	if len(patch.Cleared) > 0 {
		unset := bson.M{}
		for _, f := range patch.Cleared {
			unset[string(f)] = ""
		}
		update["$unset"] = unset
	}
	if len(patch.Added) > 0 {
		add := bson.M{}
		for f, vals := range patch.Added {
			add[string(f)] = bson.M{"$each": vals}
		}
		update["$addToSet"] = add
	}
	if len(patch.Removed) > 0 {
		pull := bson.M{}
		for f, vals := range patch.Removed {
			pull[string(f)] = bson.M{"$in": vals}
		}
		update["$pull"] = pull
	}
	return update
}
