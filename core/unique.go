package core

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckUnique confirms that no document other than `exclude` holds `value` in `field`.
// lookup returns the identifier of the document holding value, or a not_found error.
// Any other lookup failure is returned as is: a broken store never reports a value as available.
//
// The check is not atomic with the write that follows it; the unique index on the same field
// turns a lost race into a conflict at insert time.
func CheckUnique(
	ctx context.Context,
	entity, field string,
	value interface{},
	exclude primitive.ObjectID,
	lookup func(ctx context.Context) (primitive.ObjectID, error),
) error {
	id, err := lookup(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return errors.Wrapf(err, "checking %s %s uniqueness", entity, field)
	}
	if exclude.IsZero() || id != exclude {
		return NewError(KindConflict, "a %s with this %s already exists: %v", entity, field, value)
	}
	return nil
}

// ValidateUnique is CheckUnique looking `value` up in coll.
func ValidateUnique[T Document](
	ctx context.Context,
	coll Collection[T],
	field Field,
	value interface{},
	exclude primitive.ObjectID,
) error {
	return CheckUnique(ctx, coll.Name(), string(field), value, exclude, func(ctx context.Context) (primitive.ObjectID, error) {
		doc, err := coll.FindOne(ctx, Where(field, value))
		if err != nil {
			return primitive.NilObjectID, err
		}
		return doc.DocID(), nil
	})
}

// GenerateUsername derives a unique username from name: its slug, suffixed with _2, _3...
// until no document of coll holds it.
func GenerateUsername[T Document](ctx context.Context, coll Collection[T], field Field, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = Slugify(coll.Name())
	}
	candidate := base
	for i := 2; ; i++ {
		_, err := coll.FindOne(ctx, Where(field, candidate))
		if IsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", errors.Wrapf(err, "generating %s %s", coll.Name(), field)
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
}

// ClaimUsername returns username once checked free in coll, or a username generated from name
// when username is empty.
func ClaimUsername[T Document](ctx context.Context, coll Collection[T], username, name string) (string, error) {
	if username == "" {
		return GenerateUsername(ctx, coll, FieldUsername, name)
	}
	if err := ValidateUnique(ctx, coll, FieldUsername, username, primitive.NilObjectID); err != nil {
		return "", err
	}
	return username, nil
}
