package core

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref resolves the raw identifiers a payload uses to reference documents of Coll.
// Field is the payload field name, used in error messages.
type Ref[T Document] struct {
	Field string
	Coll  Collection[T]
}

func NewRef[T Document](field string, coll Collection[T]) Ref[T] {
	return Ref[T]{Field: field, Coll: coll}
}

// Resolve parses raw and fetches the referenced document.
func (r Ref[T]) Resolve(ctx context.Context, raw string) (T, error) {
	var zero T
	id, err := ParseID(r.Field, raw)
	if err != nil {
		return zero, err
	}
	doc, err := r.Coll.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return zero, NewError(KindNotFound, "%s not found: %q", r.Field, raw)
		}
		return zero, errors.Wrapf(err, "resolving %s %q", r.Field, raw)
	}
	return doc, nil
}

// ResolveID is Resolve returning only the identifier.
func (r Ref[T]) ResolveID(ctx context.Context, raw string) (primitive.ObjectID, error) {
	doc, err := r.Resolve(ctx, raw)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return doc.DocID(), nil
}

// ResolveOptional resolves raw unless it is empty, in which case it returns nil.
func (r Ref[T]) ResolveOptional(ctx context.Context, raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := r.ResolveID(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ResolveIDs resolves every raw identifier. Duplicates are dropped, keeping the first-seen order.
func (r Ref[T]) ResolveIDs(ctx context.Context, raws []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raws))
	seen := make(map[primitive.ObjectID]struct{}, len(raws))
	for _, raw := range raws {
		id, err := r.ResolveID(ctx, raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// Apply records an optional reference update into patch:
// nil leaves `field` untouched, "" clears it and anything else must resolve.
// The resolved document is returned when the reference is set.
func (r Ref[T]) Apply(ctx context.Context, patch *Patch, field Field, raw *string) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	if *raw == "" {
		patch.Unset(field)
		return nil, nil
	}
	doc, err := r.Resolve(ctx, *raw)
	if err != nil {
		return nil, err
	}
	patch.Set(field, doc.DocID())
	return &doc, nil
}

// Name hydrates a stored reference into the display name of the referenced document.
// Unset references yield "". References to documents that no longer exist yield their hex id.
func (r Ref[T]) Name(ctx context.Context, id *primitive.ObjectID) (string, error) {
	if id == nil || id.IsZero() {
		return "", nil
	}
	doc, err := r.Coll.Get(ctx, *id)
	if err != nil {
		if IsNotFound(err) {
			return id.Hex(), nil
		}
		return "", errors.Wrapf(err, "hydrating %s", r.Field)
	}
	return doc.DisplayName(), nil
}

// Names hydrates every reference of ids.
func (r Ref[T]) Names(ctx context.Context, ids []primitive.ObjectID) ([]string, error) {
	names := make([]string, 0, len(ids))
	for i := range ids {
		name, err := r.Name(ctx, &ids[i])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// CheckCapacity rejects a new child of `parent` once the number of `children` referencing it
// through `field` has reached limit. A nil limit means unbounded.
func CheckCapacity[C Document, P Document](
	ctx context.Context,
	children Collection[C],
	field Field,
	parent P,
	limit *int,
) error {
	if limit == nil {
		return nil
	}
	count, err := children.Count(ctx, Where(field, parent.DocID()))
	if err != nil {
		return errors.Wrapf(err, "counting %s of %s", children.Name(), parent.DisplayName())
	}
	if count >= int64(*limit) {
		return NewError(
			KindCapacityExceeded,
			"%q cannot hold more %s: limit of %d reached", parent.DisplayName(), children.Name(), *limit,
		)
	}
	return nil
}

// Dependent counts the documents of an entity referencing a given identifier.
type Dependent struct {
	Entity string
	Count  func(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// DependentOf declares that documents of coll reference other documents through field.
func DependentOf[T Document](coll Collection[T], field Field) Dependent {
	return Dependent{
		Entity: coll.Name(),
		Count: func(ctx context.Context, id primitive.ObjectID) (int64, error) {
			return coll.Count(ctx, Where(field, id))
		},
	}
}

// CheckDependents refuses the deletion of the `entity` identified by id while any of deps
// still references it.
func CheckDependents(ctx context.Context, entity string, id primitive.ObjectID, deps ...Dependent) error {
	for _, dep := range deps {
		count, err := dep.Count(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "counting %s referencing %s", dep.Entity, entity)
		}
		if count > 0 {
			return NewError(
				KindDependencyExists,
				"cannot delete %s %s: still referenced by %d %s", entity, id.Hex(), count, dep.Entity,
			)
		}
	}
	return nil
}

// IDList is the payload of the operations adding documents to, or removing them from, a list
// of references.
type IDList struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

func (l *IDList) Validate(validate *validator.Validate) error {
	for i := range l.IDs {
		l.IDs[i] = CleanString(l.IDs[i])
	}
	return validate.Struct(l)
}
