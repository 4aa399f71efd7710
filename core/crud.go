package core

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fetch parses raw and returns the matching document of coll.
func Fetch[T Document](ctx context.Context, coll Collection[T], raw string) (T, error) {
	id, err := ParseID(coll.Name(), raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return coll.Get(ctx, id)
}

// Insert stores doc and reads it back.
func Insert[T Document](ctx context.Context, coll Collection[T], doc T) (T, error) {
	id, err := coll.Create(ctx, doc)
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "inserting %s", coll.Name())
	}
	return coll.Get(ctx, id)
}

// ApplyPatch updates the document identified by id, unless patch is empty, and reads it back.
func ApplyPatch[T Document](ctx context.Context, coll Collection[T], id primitive.ObjectID, patch *Patch) (T, error) {
	if !patch.IsEmpty() {
		if _, err := coll.Update(ctx, id, patch); err != nil {
			var zero T
			return zero, errors.Wrapf(err, "updating %s", coll.Name())
		}
	}
	return coll.Get(ctx, id)
}

// Remove deletes the document identified by raw once none of deps references it.
func Remove[T Document](ctx context.Context, coll Collection[T], raw string, deps ...Dependent) (T, error) {
	var zero T
	doc, err := Fetch(ctx, coll, raw)
	if err != nil {
		return zero, err
	}
	if err = CheckDependents(ctx, coll.Name(), doc.DocID(), deps...); err != nil {
		return zero, err
	}
	doc, err = coll.Delete(ctx, doc.DocID())
	if err != nil {
		return zero, errors.Wrapf(err, "deleting %s", coll.Name())
	}
	return doc, nil
}

// FormatAll hydrates every document of docs, in order.
func FormatAll[T any, V any](ctx context.Context, docs []T, format func(context.Context, T) (V, error)) ([]V, error) {
	views := make([]V, 0, len(docs))
	for _, doc := range docs {
		view, err := format(ctx, doc)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ListBy returns the documents of coll referencing the document identified by raw through field.
// The reference itself must resolve.
func ListBy[T Document, P Document](ctx context.Context, coll Collection[T], field Field, parent Ref[P], raw string) ([]T, error) {
	id, err := parent.ResolveID(ctx, raw)
	if err != nil {
		return nil, err
	}
	docs, err := coll.GetMany(ctx, Where(field, id))
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s by %s", coll.Name(), parent.Field)
	}
	return docs, nil
}

// AddRefs resolves raws through ref and adds them, once, to the `field` list of the document
// identified by raw.
func AddRefs[T Document, R Document](
	ctx context.Context,
	coll Collection[T],
	raw string,
	field Field,
	ref Ref[R],
	raws []string,
) (T, error) {
	doc, err := Fetch(ctx, coll, raw)
	if err != nil {
		return doc, err
	}
	ids, err := ref.ResolveIDs(ctx, raws)
	if err != nil {
		var zero T
		return zero, err
	}
	return ApplyPatch(ctx, coll, doc.DocID(), NewPatch().Add(field, ids...))
}

// RemoveRefs removes raws from the `field` list of the document identified by raw.
// The removed references need not exist anymore.
func RemoveRefs[T Document](ctx context.Context, coll Collection[T], raw string, field Field, raws []string) (T, error) {
	doc, err := Fetch(ctx, coll, raw)
	if err != nil {
		return doc, err
	}
	ids := make([]primitive.ObjectID, 0, len(raws))
	for _, r := range raws {
		id, err := ParseID(string(field), r)
		if err != nil {
			var zero T
			return zero, err
		}
		ids = append(ids, id)
	}
	return ApplyPatch(ctx, coll, doc.DocID(), NewPatch().Remove(field, ids...))
}
