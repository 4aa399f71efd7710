package core

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field is the stored name of a document field. Entity packages declare one constant per
// field they filter or patch on, so a misspelled field name does not compile.
type Field string

const (
	FieldID        Field = "_id"
	FieldCreatedAt Field = "created_at"
	FieldUpdatedAt Field = "updated_at"

	FieldName        Field = "name"
	FieldUsername    Field = "username"
	FieldDescription Field = "description"
)

type (
	// Document is a stored entity.
	Document interface {
		DocID() primitive.ObjectID
		// DisplayName is used when hydrating references to the document.
		DisplayName() string
	}

	// Collection is a store of documents of a single entity.
	Collection[T Document] interface {
		// Name is the entity name used in error messages.
		Name() string
		Create(ctx context.Context, doc T) (primitive.ObjectID, error)
		Get(ctx context.Context, id primitive.ObjectID) (T, error)
		// GetMany returns all the documents matching filter, in insertion order.
		// A nil filter matches every document.
		GetMany(ctx context.Context, filter *Filter) ([]T, error)
		FindOne(ctx context.Context, filter *Filter) (T, error)
		Count(ctx context.Context, filter *Filter) (int64, error)
		// Update applies patch to the document and stamps its updated_at field.
		Update(ctx context.Context, id primitive.ObjectID, patch *Patch) (bool, error)
		// Delete removes the document and returns its last stored state.
		Delete(ctx context.Context, id primitive.ObjectID) (T, error)
	}
)

// Filter is a single-field equality filter.
// Matching an array field matches documents holding the value as one of its elements.
type Filter struct {
	Field Field
	Value interface{}
}

func Where(field Field, value interface{}) *Filter {
	return &Filter{Field: field, Value: value}
}

// Patch describes a partial update. Fields absent from a patch are left untouched.
type Patch struct {
	Fields  map[Field]interface{}   // $set
	Cleared []Field                 // $unset
	Added   map[Field][]interface{} // $addToSet
	Removed map[Field][]interface{} // $pull
}

func NewPatch() *Patch {
	return &Patch{
		Fields:  make(map[Field]interface{}),
		Added:   make(map[Field][]interface{}),
		Removed: make(map[Field][]interface{}),
	}
}

func (p *Patch) Set(field Field, value interface{}) *Patch {
	p.Fields[field] = value
	return p
}

// SetString sets field when value is provided.
func (p *Patch) SetString(field Field, value *string) *Patch {
	if value != nil {
		p.Fields[field] = *value
	}
	return p
}

func (p *Patch) Unset(field Field) *Patch {
	p.Cleared = append(p.Cleared, field)
	return p
}

func (p *Patch) Add(field Field, ids ...primitive.ObjectID) *Patch {
	for _, id := range ids {
		p.Added[field] = append(p.Added[field], id)
	}
	return p
}

func (p *Patch) Remove(field Field, ids ...primitive.ObjectID) *Patch {
	for _, id := range ids {
		p.Removed[field] = append(p.Removed[field], id)
	}
	return p
}

func (p *Patch) IsEmpty() bool {
	return len(p.Fields) == 0 && len(p.Cleared) == 0 && len(p.Added) == 0 && len(p.Removed) == 0
}

// ParseID parses the hex encoded identifier of a `field` reference.
func ParseID(field, s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, NewError(KindInvalidID, "invalid %s id: %q", field, s)
	}
	return id, nil
}

// IDPtr returns nil for the zero ObjectID.
func IDPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// HexIDs encodes ids as strings, never returning nil.
func HexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
