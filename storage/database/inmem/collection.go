// Package inmemdb implements core.Collection in memory. Documents are kept in their BSON form
// so filters, partial updates and unique fields behave the way they do in MongoDB.
package inmemdb

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type Collection[T core.Document] struct {
	sync.RWMutex
	entity string
	unique []core.Field
	docs   map[primitive.ObjectID]bson.M
	order  []primitive.ObjectID // insertion order
}

// NewCollection returns an empty collection of `entity` documents.
// unique lists the fields behaving like a unique sparse index.
func NewCollection[T core.Document](entity string, unique ...core.Field) *Collection[T] {
	return &Collection[T]{
		entity: entity,
		unique: unique,
		docs:   make(map[primitive.ObjectID]bson.M),
	}
}

func (c *Collection[T]) Name() string { return c.entity }

func (c *Collection[T]) Create(_ context.Context, doc T) (primitive.ObjectID, error) {
	m, err := encode(doc)
	if err != nil {
		return primitive.NilObjectID, core.StoreFailure(err, "inserting "+c.entity)
	}
	id, ok := m[string(core.FieldID)].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m[string(core.FieldID)] = id
	}

	c.Lock()
	defer c.Unlock()

	if _, exists := c.docs[id]; exists {
		return primitive.NilObjectID, c.duplicateErr(core.FieldID)
	}
	if err = c.checkUnique(id, m); err != nil {
		return primitive.NilObjectID, err
	}
	c.docs[id] = m
	c.order = append(c.order, id)
	return id, nil
}

func (c *Collection[T]) Get(_ context.Context, id primitive.ObjectID) (T, error) {
	c.RLock()
	defer c.RUnlock()

	m, ok := c.docs[id]
	if !ok {
		var zero T
		return zero, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
	}
	return c.decode(m)
}

func (c *Collection[T]) GetMany(_ context.Context, filter *core.Filter) ([]T, error) {
	c.RLock()
	defer c.RUnlock()

	docs := make([]T, 0)
	for _, id := range c.order {
		m := c.docs[id]
		if !matches(m, filter) {
			continue
		}
		doc, err := c.decode(m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Collection[T]) FindOne(_ context.Context, filter *core.Filter) (T, error) {
	c.RLock()
	defer c.RUnlock()

	for _, id := range c.order {
		if m := c.docs[id]; matches(m, filter) {
			return c.decode(m)
		}
	}
	var zero T
	return zero, core.NewError(core.KindNotFound, "%s not found", c.entity)
}

func (c *Collection[T]) Count(_ context.Context, filter *core.Filter) (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var n int64
	for _, m := range c.docs {
		if matches(m, filter) {
			n++
		}
	}
	return n, nil
}

func (c *Collection[T]) Update(_ context.Context, id primitive.ObjectID, patch *core.Patch) (bool, error) {
	c.Lock()
	defer c.Unlock()

	orig, ok := c.docs[id]
	if !ok {
		return false, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
	}

	m := make(bson.M, len(orig)+1)
	for k, v := range orig {
		m[k] = v
	}
	if err := apply(m, patch, time.Now().UTC()); err != nil {
		return false, core.StoreFailure(err, "updating "+c.entity)
	}
	if err := c.checkUnique(id, m); err != nil {
		return false, err
	}
	c.docs[id] = m
	return true, nil
}

func (c *Collection[T]) Delete(_ context.Context, id primitive.ObjectID) (T, error) {
	c.Lock()
	defer c.Unlock()

	m, ok := c.docs[id]
	if !ok {
		var zero T
		return zero, core.NewError(core.KindNotFound, "%s not found: %s", c.entity, id.Hex())
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return c.decode(m)
}

// checkUnique must be called with the write lock held.
func (c *Collection[T]) checkUnique(id primitive.ObjectID, m bson.M) error {
	for _, field := range c.unique {
		val, ok := m[string(field)]
		if !ok || val == nil {
			continue // sparse
		}
		for oid, other := range c.docs {
			if oid == id {
				continue
			}
			if otherVal, ok := other[string(field)]; ok && equal(val, otherVal) {
				return c.duplicateErr(field)
			}
		}
	}
	return nil
}

func (c *Collection[T]) duplicateErr(field core.Field) error {
	return core.NewError(core.KindConflict, "a %s with this %s already exists", c.entity, field)
}

func (c *Collection[T]) decode(m bson.M) (T, error) {
	var doc T
	raw, err := bson.Marshal(m)
	if err != nil {
		return doc, core.StoreFailure(err, "encoding "+c.entity)
	}
	if err = bson.Unmarshal(raw, &doc); err != nil {
		return doc, core.StoreFailure(err, "decoding "+c.entity)
	}
	return doc, nil
}

func encode(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err = bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize gives v the representation it would have once read back from the store.
func normalize(v interface{}) (interface{}, error) {
	m, err := encode(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func equal(a, b interface{}) bool {
	ta, da, errA := bson.MarshalValue(a)
	tb, db, errB := bson.MarshalValue(b)
	return errA == nil && errB == nil && ta == tb && bytes.Equal(da, db)
}

func matches(m bson.M, filter *core.Filter) bool {
	if filter == nil {
		return true
	}
	val, ok := m[string(filter.Field)]
	if !ok {
		return filter.Value == nil
	}
	if arr, ok := val.(primitive.A); ok {
		for _, el := range arr {
			if equal(el, filter.Value) {
				return true
			}
		}
		return false
	}
	return equal(val, filter.Value)
}

func apply(m bson.M, patch *core.Patch, now time.Time) error {
	for f, v := range patch.Fields {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		m[string(f)] = nv
	}
	for _, f := range patch.Cleared {
		delete(m, string(f))
	}
	for f, vals := range patch.Added {
		arr, err := array(m, f)
		if err != nil {
			return err
		}
		for _, v := range vals {
			if !contains(arr, v) {
				arr = append(arr, v)
			}
		}
		m[string(f)] = arr
	}
	for f, vals := range patch.Removed {
		arr, err := array(m, f)
		if err != nil {
			return err
		}
		kept := make(primitive.A, 0, len(arr))
		for _, el := range arr {
			if !contains(primitive.A(vals), el) {
				kept = append(kept, el)
			}
		}
		m[string(f)] = kept
	}
	m[string(core.FieldUpdatedAt)] = primitive.NewDateTimeFromTime(now)
	return nil
}

func array(m bson.M, f core.Field) (primitive.A, error) {
	switch v := m[string(f)].(type) {
	case nil:
		return primitive.A{}, nil
	case primitive.A:
		return v, nil
	default:
		return nil, fmt.Errorf("field %s is not an array", f)
	}
}

func contains(arr primitive.A, v interface{}) bool {
	for _, el := range arr {
		if equal(el, v) {
			return true
		}
	}
	return false
}
