package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
)

func TestClassRosters(t *testing.T) {
	env := setup(t)
	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false)
	student := env.createUser(t, "Student", "student", "student@test.cd", false)
	token := env.token(t, teacher)

	school := env.create(t, "/api/school", token, map[string]interface{}{"name": "Lycee Wima", "username": "wima"})
	assert.Equal(t, "teacher", school["owner"], "the creator owns the school")

	class := env.create(t, "/api/class", token, map[string]interface{}{
		"name": "Grade 6", "username": "grade6", "school": school["id"], "teacher": teacher.ID.Hex(),
	})
	classID := class["id"].(string)
	group := env.create(t, "/api/class-group", token, map[string]interface{}{"name": "Group A", "class": classID})
	groupID := group["id"].(string)

	env.run(t, []httpTest{
		{
			name: "add students", method: http.MethodPost, path: "/api/class/" + classID + "/students", token: token,
			body: map[string]interface{}{"ids": []string{student.ID.Hex(), student.ID.Hex()}},
			check: func(t *testing.T, data interface{}) {
				assert.Equal(t, []interface{}{"student"}, data.(map[string]interface{})["students"])
			},
		},
		{
			name: "add malformed student", method: http.MethodPost, path: "/api/class/" + classID + "/students", token: token,
			body:     map[string]interface{}{"ids": []string{"nope"}},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "add nobody", method: http.MethodPost, path: "/api/class/" + classID + "/students", token: token,
			body:     map[string]interface{}{"ids": []string{}},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{name: "classes by student", path: "/api/class/student/" + student.ID.Hex(), token: token, check: hasLen(1)},
		{name: "classes by teacher", path: "/api/class/teacher/" + teacher.ID.Hex(), token: token, check: hasLen(1)},
		{name: "classes by school", path: "/api/class/school/" + school["id"].(string), token: token, check: hasLen(1)},
		{name: "schools by owner", path: "/api/school/owner/" + teacher.ID.Hex(), token: token, check: hasLen(1)},
		{
			name: "add group students", method: http.MethodPost, path: "/api/class-group/" + groupID + "/students", token: token,
			body: map[string]interface{}{"ids": []string{student.ID.Hex()}},
			check: func(t *testing.T, data interface{}) {
				assert.Equal(t, []interface{}{"student"}, data.(map[string]interface{})["students"])
			},
		},
		{name: "groups by class", path: "/api/class-group/class/" + classID, token: token, check: hasLen(1)},
		{
			name: "class holding groups", method: http.MethodDelete, path: "/api/class/" + classID, token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{
			name: "remove students", method: http.MethodDelete, path: "/api/class/" + classID + "/students", token: token,
			body: map[string]interface{}{"ids": []string{student.ID.Hex()}},
			check: func(t *testing.T, data interface{}) {
				assert.Empty(t, data.(map[string]interface{})["students"])
			},
		},
		{
			name: "school holding classes", method: http.MethodDelete, path: "/api/school/" + school["id"].(string),
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{name: "delete group", method: http.MethodDelete, path: "/api/class-group/" + groupID, token: token},
		{name: "delete class", method: http.MethodDelete, path: "/api/class/" + classID, token: token},
	})
}
