package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

func TestValidateUnique(t *testing.T) {
	ctx := context.Background()
	parents := newParents()
	p := insertParent(t, parents, "Science", "science")

	tests := []struct {
		name    string
		value   string
		exclude primitive.ObjectID
		wantErr bool
	}{
		{name: "free value", value: "arts"},
		{name: "taken value", value: "science", wantErr: true},
		{name: "taken by the excluded document", value: "science", exclude: p.ID},
		{name: "taken, other document excluded", value: "science", exclude: primitive.NewObjectID(), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateUnique[parent](ctx, parents, core.FieldUsername, tt.value, tt.exclude)
			if tt.wantErr {
				assert.True(t, core.IsKind(err, core.KindConflict), "got %v", err)
				assert.Contains(t, err.Error(), "a parent with this username already exists")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckUniqueLookupFailure(t *testing.T) {
	broken := errors.New("connection reset")
	err := core.CheckUnique(context.Background(), "parent", "username", "x", primitive.NilObjectID,
		func(context.Context) (primitive.ObjectID, error) { return primitive.NilObjectID, broken },
	)
	require.Error(t, err)
	assert.Equal(t, broken, errors.Unwrap(errors.Unwrap(err)))
}

func TestClaimUsername(t *testing.T) {
	ctx := context.Background()
	parents := newParents()

	uname, err := core.ClaimUsername[parent](ctx, parents, "", "Primary School")
	require.NoError(t, err)
	assert.Equal(t, "primary_school", uname)
	insertParent(t, parents, "Primary School", uname)

	uname, err = core.ClaimUsername[parent](ctx, parents, "", "Primary  School!")
	require.NoError(t, err)
	assert.Equal(t, "primary_school_2", uname)
	insertParent(t, parents, "Primary School", uname)

	uname, err = core.ClaimUsername[parent](ctx, parents, "", "primary school")
	require.NoError(t, err)
	assert.Equal(t, "primary_school_3", uname)

	_, err = core.ClaimUsername[parent](ctx, parents, "primary_school", "whatever")
	assert.True(t, core.IsKind(err, core.KindConflict), "got %v", err)

	uname, err = core.ClaimUsername[parent](ctx, parents, "", "!!!")
	require.NoError(t, err)
	assert.Equal(t, "parent", uname)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"  Hello World  ": "hello_world",
		"Éducation":       "education",
		"Énergie":         "energie",
		"Ça Görüş Ñandú":  "ca_gorus_nandu",
		"Ελλάδα":          "",
		"Math Ω 2":        "math_2",
		"a--b__c":         "a_b_c",
		"__":              "",
		"Class 6-B":       "class_6_b",
	}
	for in, want := range tests {
		assert.Equal(t, want, core.Slugify(in), in)
	}
}

func TestClaimUsernameIsValidUsername(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	parents := newParents()
	for _, name := range []string{"Énergie", "Énergie", "Ελλάδα", "Ça Görüş", "Class 6-B"} {
		uname, err := core.ClaimUsername[parent](ctx, parents, "", name)
		require.NoError(t, err)
		assert.NoError(t, validate.Var(uname, "username"), "%q gave %q", name, uname)
		insertParent(t, parents, name, uname)
	}
	uname, err := core.ClaimUsername[parent](ctx, parents, "", "Energie")
	require.NoError(t, err)
	assert.Equal(t, "energie_3", uname)
}
