package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

const (
	fieldParent core.Field = "parent"
	fieldTags   core.Field = "tags"
)

type parent struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username,omitempty"`
	Name     string             `bson:"name"`
}

func (p parent) DocID() primitive.ObjectID { return p.ID }
func (p parent) DisplayName() string       { return p.Name }

type child struct {
	ID     primitive.ObjectID   `bson:"_id"`
	Name   string               `bson:"name"`
	Parent primitive.ObjectID   `bson:"parent"`
	Tags   []primitive.ObjectID `bson:"tags"`
}

func (c child) DocID() primitive.ObjectID { return c.ID }
func (c child) DisplayName() string       { return c.Name }

func newParents() *inmemdb.Collection[parent] {
	return inmemdb.NewCollection[parent]("parent", core.FieldUsername)
}

func insertParent(t *testing.T, coll core.Collection[parent], name, username string) parent {
	t.Helper()
	p, err := core.Insert[parent](context.Background(), coll, parent{ID: primitive.NewObjectID(), Name: name, Username: username})
	require.NoError(t, err)
	return p
}

func TestRefResolve(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	p := insertParent(t, parents, "Science", "science")
	ref := core.NewRef[parent]("parent", parents)

	got, err := ref.Resolve(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Science", got.Name)

	_, err = ref.Resolve(ctx, "lol")
	assert.True(t, core.IsKind(err, core.KindInvalidID), "got %v", err)
	assert.Contains(t, err.Error(), "invalid parent id")

	_, err = ref.Resolve(ctx, primitive.NewObjectID().Hex())
	assert.True(t, core.IsNotFound(err), "got %v", err)

	opt, err := ref.ResolveOptional(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, opt)

	ids, err := ref.ResolveIDs(ctx, []string{p.ID.Hex(), p.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p.ID}, ids)
}

func TestRefApply(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	p := insertParent(t, parents, "Science", "science")
	ref := core.NewRef[parent]("parent", parents)

	patch := core.NewPatch()
	doc, err := ref.Apply(ctx, patch, fieldParent, nil)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.True(t, patch.IsEmpty())

	empty := ""
	_, err = ref.Apply(ctx, patch, fieldParent, &empty)
	require.NoError(t, err)
	assert.Equal(t, []core.Field{fieldParent}, patch.Cleared)

	raw := p.ID.Hex()
	patch = core.NewPatch()
	doc, err = ref.Apply(ctx, patch, fieldParent, &raw)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, p.ID, patch.Fields[fieldParent])
}

func TestRefNames(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	p := insertParent(t, parents, "Science", "science")
	ref := core.NewRef[parent]("parent", parents)

	name, err := ref.Name(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, name)

	gone := primitive.NewObjectID()
	names, err := ref.Names(ctx, []primitive.ObjectID{p.ID, gone})
	require.NoError(t, err)
	assert.Equal(t, []string{"Science", gone.Hex()}, names)
}

func TestCheckCapacity(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	children := inmemdb.NewCollection[child]("child")
	p := insertParent(t, parents, "Science", "science")

	assert.NoError(t, core.CheckCapacity[child, parent](ctx, children, fieldParent, p, nil))

	limit := 2
	for i := 0; i < limit; i++ {
		require.NoError(t, core.CheckCapacity[child, parent](ctx, children, fieldParent, p, &limit))
		_, err := children.Create(ctx, child{ID: primitive.NewObjectID(), Parent: p.ID})
		require.NoError(t, err)
	}
	err := core.CheckCapacity[child, parent](ctx, children, fieldParent, p, &limit)
	assert.True(t, core.IsKind(err, core.KindCapacityExceeded), "got %v", err)

	zero := 0
	other := insertParent(t, parents, "Arts", "arts")
	err = core.CheckCapacity[child, parent](ctx, children, fieldParent, other, &zero)
	assert.True(t, core.IsKind(err, core.KindCapacityExceeded), "got %v", err)
}

func TestRemoveWithDependents(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	children := inmemdb.NewCollection[child]("child")
	p := insertParent(t, parents, "Science", "science")
	c, err := core.Insert[child](ctx, children, child{ID: primitive.NewObjectID(), Parent: p.ID})
	require.NoError(t, err)

	deps := []core.Dependent{core.DependentOf[child](children, fieldParent)}
	_, err = core.Remove[parent](ctx, parents, p.ID.Hex(), deps...)
	assert.True(t, core.IsKind(err, core.KindDependencyExists), "got %v", err)
	assert.Contains(t, err.Error(), "still referenced by 1 child")

	_, err = children.Delete(ctx, c.ID)
	require.NoError(t, err)
	removed, err := core.Remove[parent](ctx, parents, p.ID.Hex(), deps...)
	require.NoError(t, err)
	assert.Equal(t, p.ID, removed.ID)

	_, err = core.Remove[parent](ctx, parents, p.ID.Hex(), deps...)
	assert.True(t, core.IsNotFound(err), "got %v", err)
}

func TestAddRemoveRefs(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	children := inmemdb.NewCollection[child]("child")
	a := insertParent(t, parents, "A", "a")
	b := insertParent(t, parents, "B", "b")
	c, err := core.Insert[child](ctx, children, child{ID: primitive.NewObjectID(), Tags: []primitive.ObjectID{}})
	require.NoError(t, err)
	ref := core.NewRef[parent]("tags", parents)

	c, err = core.AddRefs[child, parent](ctx, children, c.ID.Hex(), fieldTags, ref, []string{a.ID.Hex(), b.ID.Hex(), a.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a.ID, b.ID}, c.Tags)

	c, err = core.AddRefs[child, parent](ctx, children, c.ID.Hex(), fieldTags, ref, []string{a.ID.Hex()})
	require.NoError(t, err)
	assert.Len(t, c.Tags, 2)

	_, err = core.AddRefs[child, parent](ctx, children, c.ID.Hex(), fieldTags, ref, []string{primitive.NewObjectID().Hex()})
	assert.True(t, core.IsNotFound(err), "got %v", err)

	c, err = core.RemoveRefs[child](ctx, children, c.ID.Hex(), fieldTags, []string{a.ID.Hex(), primitive.NewObjectID().Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID}, c.Tags)
}
