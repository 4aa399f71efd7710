package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestEducationSectorScenario(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	edu := env.create(t, "/api/education", token, map[string]interface{}{"name": "Primary School", "username": "primary"})
	eduID := edu["id"].(string)
	sector := env.create(t, "/api/sector", token, map[string]interface{}{"name": "Sciences", "education": eduID})
	sectorID := sector["id"].(string)

	env.run(t, []httpTest{
		{name: "auth required", path: "/api/education", wantCode: http.StatusUnauthorized},
		{name: "list educations", path: "/api/education", token: token, check: hasLen(1)},
		{
			name: "get education", path: "/api/education/" + eduID, token: token,
			check: hasFields(map[string]interface{}{"name": "Primary School", "username": "primary"}),
		},
		{
			name: "sector hydrates its education", path: "/api/sector/" + sectorID, token: token,
			check: hasFields(map[string]interface{}{"name": "Sciences", "username": "sciences", "education": "primary"}),
		},
		{name: "sectors by education", path: "/api/sector/education/" + eduID, token: token, check: hasLen(1)},
		{
			name: "sector with unknown education", method: http.MethodPost, path: "/api/sector", token: token,
			body:     map[string]interface{}{"name": "Arts", "education": "5f1b0c2e9d3e4a0001a1b2c3"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "sector with malformed education", method: http.MethodPost, path: "/api/sector", token: token,
			body:     map[string]interface{}{"name": "Arts", "education": "nope"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "sector without education", method: http.MethodPost, path: "/api/sector", token: token,
			body:     map[string]interface{}{"name": "Arts"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
			check: func(t *testing.T, data interface{}) {
				fields := data.(map[string]interface{})["fields"].(map[string]interface{})
				assert.Contains(t, fields, "education")
			},
		},
		{
			name: "education referenced by a sector", method: http.MethodDelete, path: "/api/education/" + eduID,
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{
			name: "update sector", method: http.MethodPut, path: "/api/sector/" + sectorID, token: token,
			body:  map[string]interface{}{"description": "Maths & Physics"},
			check: hasFields(map[string]interface{}{"name": "Sciences", "description": "Maths & Physics"}),
		},
		{
			name: "update is idempotent", method: http.MethodPut, path: "/api/sector/" + sectorID, token: token,
			body:  map[string]interface{}{"description": "Maths & Physics"},
			check: hasFields(map[string]interface{}{"name": "Sciences", "description": "Maths & Physics"}),
		},
		{
			name: "delete sector", method: http.MethodDelete, path: "/api/sector/" + sectorID, token: token,
			check: hasFields(map[string]interface{}{"id": sectorID, "education": "primary"}),
		},
		{
			name: "deleted sector", path: "/api/sector/" + sectorID, token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{name: "delete education", method: http.MethodDelete, path: "/api/education/" + eduID, token: token},
		{name: "no more educations", path: "/api/education", token: token, check: hasLen(0)},
	})
}

func TestIdentifiersAndUniqueness(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))
	env.create(t, "/api/education", token, map[string]interface{}{"name": "Secondary", "username": "secondary"})

	env.run(t, []httpTest{
		{
			name: "malformed id", path: "/api/education/123", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "unknown id", path: "/api/education/5f1b0c2e9d3e4a0001a1b2c3", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/api/education", token: token,
			body:     map[string]interface{}{"name": "Another", "username": "secondary"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "generated username", method: http.MethodPost, path: "/api/education", token: token,
			body: map[string]interface{}{"name": "Secondary"}, wantCode: http.StatusCreated,
			check: func(t *testing.T, data interface{}) {
				assert.Equal(t, "secondary_2", data.(map[string]interface{})["username"])
			},
		},
		{
			name: "invalid username", method: http.MethodPost, path: "/api/education", token: token,
			body:     map[string]interface{}{"name": "Tertiary", "username": "Not Valid!"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
	})
}

func TestTradeCapacity(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	edu := env.create(t, "/api/education", token, map[string]interface{}{"name": "Secondary"})
	sector := env.create(t, "/api/sector", token, map[string]interface{}{"name": "Technique", "education": edu["id"]})
	small := env.create(t, "/api/trade", token, map[string]interface{}{
		"name": "Electricity", "username": "electricity", "sector": sector["id"], "class_rooms": 1,
	})
	big := env.create(t, "/api/trade", token, map[string]interface{}{
		"name": "Mechanics", "username": "mechanics", "sector": sector["id"],
	})

	first := env.create(t, "/api/classroom", token, map[string]interface{}{
		"name": "1st Electricity", "username": "elec1", "trade": small["id"], "sector": sector["id"],
	})
	other := env.create(t, "/api/classroom", token, map[string]interface{}{
		"name": "1st Mechanics", "username": "meca1", "trade": big["id"],
	})

	env.run(t, []httpTest{
		{
			name: "classroom hydrates its references", path: "/api/classroom/" + first["id"].(string), token: token,
			check: hasFields(map[string]interface{}{"trade": "electricity", "sector": "technique", "symbol": ""}),
		},
		{
			name: "trade full", method: http.MethodPost, path: "/api/classroom", token: token,
			body:     map[string]interface{}{"name": "2nd Electricity", "username": "elec2", "trade": small["id"]},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindCapacityExceeded),
		},
		{
			name: "moving into a full trade", method: http.MethodPut, path: "/api/classroom/" + other["id"].(string),
			token: token, body: map[string]interface{}{"trade": small["id"]},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindCapacityExceeded),
		},
		{
			name: "updating a classroom of a full trade", method: http.MethodPut, path: "/api/classroom/" + first["id"].(string),
			token: token, body: map[string]interface{}{"trade": small["id"], "description": "morning"},
			check: hasFields(map[string]interface{}{"trade": "electricity", "description": "morning"}),
		},
		{
			name: "empty string clears the reference", method: http.MethodPut, path: "/api/classroom/" + first["id"].(string),
			token: token, body: map[string]interface{}{"sector": ""},
			check: hasFields(map[string]interface{}{"sector": "", "trade": "electricity"}),
		},
		{
			name: "raise capacity", method: http.MethodPut, path: "/api/trade/" + small["id"].(string), token: token,
			body: map[string]interface{}{"class_rooms": 2}, check: hasFields(map[string]interface{}{"class_rooms": float64(2)}),
		},
		{
			name: "trade has room again", method: http.MethodPost, path: "/api/classroom", token: token,
			body:     map[string]interface{}{"name": "2nd Electricity", "username": "elec2", "trade": small["id"]},
			wantCode: http.StatusCreated,
		},
		{name: "classrooms by trade", path: "/api/classroom/trade/" + small["id"].(string), token: token, check: hasLen(2)},
		{name: "trades by sector", path: "/api/trade/sector/" + sector["id"].(string), token: token, check: hasLen(2)},
		{
			name: "trade referenced by classrooms", method: http.MethodDelete, path: "/api/trade/" + small["id"].(string),
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{
			name: "classroom username missing", method: http.MethodPost, path: "/api/classroom", token: token,
			body:     map[string]interface{}{"name": "No Username"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
			check: func(t *testing.T, data interface{}) {
				fields := data.(map[string]interface{})["fields"].(map[string]interface{})
				assert.Equal(t, "username is missing", fields["username"])
			},
		},
	})
}

func TestClassRoomSymbolUpload(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	rec := env.upload(t, http.MethodPost, "/api/classroom", token,
		map[string]string{"name": "Lab", "username": "lab"}, "symbol", "lab.png", "png-data")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeObj(t, rec)
	assert.Regexp(t, `^http://localhost:8000/media/files/.+\.png$`, c["symbol"])

	rec = env.do(t, http.MethodGet, "/api/file", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	files := decodeList(t, rec)
	require.Len(t, files, 1)
	assert.Equal(t, c["symbol"], files[0]["url"])

	// the symbol cannot go while the classroom uses it
	rec = env.do(t, http.MethodDelete, "/api/file/"+files[0]["id"].(string), token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(core.KindDependencyExists), decodeObj(t, rec)["code"])

	rec = env.upload(t, http.MethodPut, "/api/classroom/"+c["id"].(string), token,
		map[string]string{"description": "chemistry"}, "", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeObj(t, rec)
	assert.Equal(t, "chemistry", updated["description"])
	assert.Equal(t, "Lab", updated["name"])
	assert.Equal(t, c["symbol"], updated["symbol"])
}

func TestAccentedNameUsername(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	edu := env.create(t, "/api/education", token, map[string]interface{}{"name": "Secondary"})
	sector := env.create(t, "/api/sector", token, map[string]interface{}{"name": "Énergie", "education": edu["id"]})
	sectorID := sector["id"].(string)
	require.Equal(t, "energie", sector["username"])

	env.run(t, []httpTest{
		{
			name: "generated username round-trips", method: http.MethodPut, path: "/api/sector/" + sectorID, token: token,
			body:  map[string]interface{}{"username": sector["username"]},
			check: hasFields(map[string]interface{}{"name": "Énergie", "username": "energie"}),
		},
		{
			name: "accented username rejected", method: http.MethodPut, path: "/api/sector/" + sectorID, token: token,
			body:     map[string]interface{}{"username": "énergie"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "folded collision is suffixed", method: http.MethodPost, path: "/api/sector", token: token,
			body: map[string]interface{}{"name": "Energie", "education": edu["id"]}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"username": "energie_2"}),
		},
		{
			name: "non-latin name falls back to the collection", method: http.MethodPost, path: "/api/education", token: token,
			body: map[string]interface{}{"name": "Εκπαίδευση"}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"username": "education"}),
		},
	})
}

func TestClassRoomTypes(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	t.Run("single winner", func(t *testing.T) {
		env.singleWinner(t, "/api/classroom-type", token, map[string]interface{}{"name": "Workshop", "username": "workshop"})
	})

	lab := env.create(t, "/api/classroom-type", token, map[string]interface{}{"name": "Laboratory", "description": "Wet lab"})
	labID := lab["id"].(string)
	assert.Equal(t, "laboratory", lab["username"])
	room := env.create(t, "/api/classroom", token, map[string]interface{}{
		"name": "Chemistry Lab", "username": "chem", "class_room_type": labID,
	})
	roomID := room["id"].(string)
	assert.Equal(t, "laboratory", room["class_room_type"])

	env.run(t, []httpTest{
		{
			name: "type round-trips", path: "/api/classroom-type/" + labID, token: token,
			check: hasFields(map[string]interface{}{"name": "Laboratory", "username": "laboratory", "description": "Wet lab"}),
		},
		{name: "list types", path: "/api/classroom-type", token: token, check: hasLen(2)},
		{
			name: "generated username is suffixed", method: http.MethodPost, path: "/api/classroom-type", token: token,
			body: map[string]interface{}{"name": "Laboratory"}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"username": "laboratory_2"}),
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/api/classroom-type", token: token,
			body:     map[string]interface{}{"name": "Atelier", "username": "workshop"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "invalid name", method: http.MethodPost, path: "/api/classroom-type", token: token,
			body:     map[string]interface{}{"name": "Lab #1"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{name: "classrooms by type", path: "/api/classroom/type/" + labID, token: token, check: hasLen(1)},
		{
			name: "classrooms by malformed type", path: "/api/classroom/type/laboratory", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "classrooms by unknown type", path: "/api/classroom/type/5f1b0c2e9d3e4a0001a1b2c3", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "classroom with malformed type", method: http.MethodPost, path: "/api/classroom", token: token,
			body:     map[string]interface{}{"name": "Physics Lab", "username": "phys", "class_room_type": "laboratory"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "type used by a classroom", method: http.MethodDelete, path: "/api/classroom-type/" + labID,
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{
			name: "empty string clears the type", method: http.MethodPut, path: "/api/classroom/" + roomID, token: token,
			body:  map[string]interface{}{"class_room_type": ""},
			check: hasFields(map[string]interface{}{"class_room_type": "", "username": "chem"}),
		},
		{name: "cleared type", path: "/api/classroom/type/" + labID, token: token, check: hasLen(0)},
		{
			name: "rename to a taken username", method: http.MethodPut, path: "/api/classroom-type/" + labID, token: token,
			body:     map[string]interface{}{"username": "workshop"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "clear the description", method: http.MethodPut, path: "/api/classroom-type/" + labID, token: token,
			body:  map[string]interface{}{"description": ""},
			check: hasFields(map[string]interface{}{"name": "Laboratory", "description": ""}),
		},
		{
			name: "malformed id", path: "/api/classroom-type/laboratory", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "delete malformed id", method: http.MethodDelete, path: "/api/classroom-type/laboratory", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "delete type", method: http.MethodDelete, path: "/api/classroom-type/" + labID, token: token,
			check: hasFields(map[string]interface{}{"id": labID, "username": "laboratory"}),
		},
		{
			name: "deleted type", path: "/api/classroom-type/" + labID, token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "classroom keeps no dangling type", path: "/api/classroom/" + roomID, token: token,
			check: hasFields(map[string]interface{}{"class_room_type": ""}),
		},
	})
}
