package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	emailsvc "github.com/trezcool/shule/services/email"
)

func TestAuth(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "Admin", "admin", "admin@test.cd", true)
	usr := env.createUser(t, "User", "user", "user@test.cd", false)
	adminToken := env.token(t, admin)
	usrToken := env.token(t, usr)

	gotToken := func(t *testing.T, data interface{}) {
		assert.NotEmpty(t, data.(map[string]interface{})["token"])
	}
	login := func(username, password string) map[string]interface{} {
		return map[string]interface{}{"username": username, "password": password}
	}

	env.run(t, []httpTest{
		{name: "welcome", path: "/"},
		{name: "missing token", path: "/api/user/me", wantCode: http.StatusUnauthorized, wantErr: "unauthorized"},
		{name: "invalid token", path: "/api/user/me", token: "nope", wantCode: http.StatusUnauthorized, wantErr: "unauthorized"},
		{
			name: "login by email", method: http.MethodPost, path: "/api/user/login",
			body: login("USER@test.cd", testPassword), check: gotToken,
		},
		{
			name: "login by username", method: http.MethodPost, path: "/api/user/login",
			body: login("user", testPassword), check: gotToken,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/user/login",
			body: login("user", "wrong"), wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/api/user/login",
			body: login("ghost", testPassword), wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "me", path: "/api/user/me", token: usrToken,
			check: hasFields(map[string]interface{}{"username": "user", "role": ""}),
		},
		{name: "refresh", method: http.MethodPost, path: "/api/user/token-refresh", token: usrToken, check: gotToken},
		{name: "admin required", path: "/api/user", token: usrToken, wantCode: http.StatusForbidden, wantErr: "forbidden"},
		{name: "admin lists users", path: "/api/user", token: adminToken, check: hasLen(2)},
		{
			name: "other user", path: "/api/user/" + admin.ID.Hex(), token: usrToken,
			wantCode: http.StatusForbidden, wantErr: "forbidden",
		},
		{
			name: "self", path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			check: hasFields(map[string]interface{}{"email": "user@test.cd"}),
		},
		{
			name: "update self", method: http.MethodPut, path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			body: map[string]interface{}{"name": "Renamed"}, check: hasFields(map[string]interface{}{"name": "Renamed"}),
		},
		{
			name: "empty email", method: http.MethodPut, path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			body:     map[string]interface{}{"email": ""},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
			check: func(t *testing.T, data interface{}) {
				fields := data.(map[string]interface{})["fields"].(map[string]interface{})
				assert.Contains(t, fields, "email")
			},
		},
		{
			name: "blank email", method: http.MethodPut, path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			body:     map[string]interface{}{"email": "   "},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "email kept", path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			check: hasFields(map[string]interface{}{"email": "user@test.cd"}),
		},
		{
			name: "self activation", method: http.MethodPut, path: "/api/user/" + usr.ID.Hex(), token: usrToken,
			body: map[string]interface{}{"is_active": true}, wantCode: http.StatusForbidden,
		},
		{
			name: "admin cannot delete themselves", method: http.MethodDelete, path: "/api/user/" + admin.ID.Hex(),
			token: adminToken, wantCode: http.StatusForbidden,
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/user", token: adminToken,
			body: map[string]interface{}{
				"name": "Copy", "email": "user@test.cd", "password": testPassword, "password_confirm": testPassword,
			},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/api/user", token: adminToken,
			body: map[string]interface{}{
				"name": "Weak", "email": "weak@test.cd", "password": "12345678", "password_confirm": "12345678",
			},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "deactivate", method: http.MethodPut, path: "/api/user/" + usr.ID.Hex(), token: adminToken,
			body: map[string]interface{}{"is_active": false}, check: hasFields(map[string]interface{}{"is_active": false}),
		},
		{
			name: "deactivated login", method: http.MethodPost, path: "/api/user/login",
			body: login("user", testPassword), wantCode: http.StatusForbidden,
		},
	})
}

func TestRoles(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "Admin", "admin", "admin@test.cd", true)
	adminToken := env.token(t, admin)
	usrToken := env.token(t, env.createUser(t, "User", "user", "user@test.cd", false))

	rec := env.do(t, http.MethodGet, "/api/role", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roles := decodeList(t, rec)
	require.Len(t, roles, 1)
	adminRoleID := roles[0]["id"].(string)

	env.run(t, []httpTest{
		{name: "admin required", path: "/api/role", token: usrToken, wantCode: http.StatusForbidden},
		{
			name: "create role", method: http.MethodPost, path: "/api/role", token: adminToken,
			body: map[string]interface{}{"role": "teacher"}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"role": "teacher"}),
		},
		{
			name: "duplicate role", method: http.MethodPost, path: "/api/role", token: adminToken,
			body: map[string]interface{}{"role": "teacher"}, wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{name: "users by role", path: "/api/user/role/" + adminRoleID, token: adminToken, check: hasLen(1)},
		{
			name: "role in use", method: http.MethodDelete, path: "/api/role/" + adminRoleID, token: adminToken,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
	})
}

func TestPasswordReset(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "User", "user", "user@test.cd", false)

	rec := env.do(t, http.MethodPost, "/api/user/password-reset", "", map[string]interface{}{"email": "ghost@test.cd"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, emailsvc.SentMessages(), "unknown emails are silently ignored")

	rec = env.do(t, http.MethodPost, "/api/user/password-reset", "", map[string]interface{}{"email": usr.Email})
	require.Equal(t, http.StatusOK, rec.Code)
	sent := emailsvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)
	data := sent[0].TemplateData.(map[string]string)
	assert.Contains(t, sent[0].TextContent, data["Token"])

	newPwd := "N3w-S3cret!pwd"
	env.run(t, []httpTest{
		{
			name: "bad token", method: http.MethodPost, path: "/api/user/password-reset-confirm",
			body: map[string]interface{}{
				"uid": data["UID"], "token": "bad-token", "password": newPwd, "password_confirm": newPwd,
			},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "reset", method: http.MethodPost, path: "/api/user/password-reset-confirm",
			body: map[string]interface{}{
				"uid": data["UID"], "token": data["Token"], "password": newPwd, "password_confirm": newPwd,
			},
		},
		{
			name: "token used", method: http.MethodPost, path: "/api/user/password-reset-confirm",
			body: map[string]interface{}{
				"uid": data["UID"], "token": data["Token"], "password": newPwd, "password_confirm": newPwd,
			},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "login with the new password", method: http.MethodPost, path: "/api/user/login",
			body: map[string]interface{}{"username": "user", "password": newPwd},
		},
	})
}

func TestUserImages(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "User", "user", "user@test.cd", false)
	token := env.token(t, usr)

	rec := env.upload(t, http.MethodPost, "/api/user/"+usr.ID.Hex()+"/image", token, nil, "image", "me.jpg", "jpg")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeObj(t, rec)
	require.Len(t, first["images"], 1)

	rec = env.upload(t, http.MethodPost, "/api/user/"+usr.ID.Hex()+"/image", token, nil, "image", "me2.jpg", "jpg")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decodeObj(t, rec)
	require.Len(t, second["images"], 2)
	assert.Equal(t, second["images"].([]interface{})[0], second["image"], "latest image first")
	assert.NotEqual(t, first["image"], second["image"])

	rec = env.upload(t, http.MethodPost, "/api/user/"+usr.ID.Hex()+"/image", token, nil, "", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
