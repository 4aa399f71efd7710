package echoapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestFileScenario(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	books := env.create(t, "/api/file-type", token, map[string]interface{}{"name": "Books"})
	booksID := books["id"].(string)
	assert.Equal(t, "books", books["username"])
	images := env.create(t, "/api/file-type", token, map[string]interface{}{"name": "Images", "username": "images"})
	imagesID := images["id"].(string)

	rec := env.upload(t, http.MethodPost, "/api/file", token,
		map[string]string{"name": "Algebra", "type": booksID}, "file", "Algebra.PDF", "algebra")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	algebra := decodeObj(t, rec)
	algebraID := algebra["id"].(string)
	assert.Equal(t, "Algebra", algebra["name"])
	assert.Equal(t, "books", algebra["type"])
	assert.Equal(t, float64(len("algebra")), algebra["size"])
	assert.Regexp(t, `^http://localhost:8000/media/files/.+\.pdf$`, algebra["url"])

	notes := env.createFile(t, token, nil, "notes.txt", "notes")
	assert.Equal(t, "notes.txt", notes["name"], "name defaults to the file name")
	assert.Equal(t, "", notes["type"])

	key := strings.TrimPrefix(algebra["url"].(string), "http://localhost:8000/media/")
	_, err := os.Stat(filepath.Join(env.conf.Storage.LocalDir, key))
	require.NoError(t, err, "content stored")

	env.run(t, []httpTest{
		{
			name: "file round-trips", path: "/api/file/" + algebraID, token: token,
			check: hasFields(map[string]interface{}{"name": "Algebra", "type": "books", "url": algebra["url"]}),
		},
		{name: "files by type", path: "/api/file/type/" + booksID, token: token, check: hasLen(1)},
		{name: "files by other type", path: "/api/file/type/" + imagesID, token: token, check: hasLen(0)},
		{
			name: "files by malformed type", path: "/api/file/type/books", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "files by unknown type", path: "/api/file/type/5f1b0c2e9d3e4a0001a1b2c3", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "upload without content", method: http.MethodPost, path: "/api/file", token: token,
			body:     map[string]interface{}{"name": "Empty"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
			check: func(t *testing.T, data interface{}) {
				fields := data.(map[string]interface{})["fields"].(map[string]interface{})
				assert.Contains(t, fields, "file")
			},
		},
		{
			name: "file type used by a file", method: http.MethodDelete, path: "/api/file-type/" + booksID,
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
		{
			name: "retype", method: http.MethodPut, path: "/api/file/" + algebraID, token: token,
			body: map[string]interface{}{"type": imagesID}, check: hasFields(map[string]interface{}{"type": "images"}),
		},
		{
			name: "retype to unknown type", method: http.MethodPut, path: "/api/file/" + algebraID, token: token,
			body:     map[string]interface{}{"type": "5f1b0c2e9d3e4a0001a1b2c3"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "empty string clears the type", method: http.MethodPut, path: "/api/file/" + algebraID, token: token,
			body:  map[string]interface{}{"type": ""},
			check: hasFields(map[string]interface{}{"name": "Algebra", "type": ""}),
		},
		{name: "cleared type", path: "/api/file/type/" + imagesID, token: token, check: hasLen(0)},
		{
			name: "empty name", method: http.MethodPut, path: "/api/file/" + algebraID, token: token,
			body:     map[string]interface{}{"name": ""},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "malformed id", path: "/api/file/algebra", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{
			name: "delete malformed id", method: http.MethodDelete, path: "/api/file/algebra", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{name: "file type can go", method: http.MethodDelete, path: "/api/file-type/" + booksID, token: token},
		{
			name: "delete file", method: http.MethodDelete, path: "/api/file/" + algebraID, token: token,
			check: hasFields(map[string]interface{}{"id": algebraID, "name": "Algebra"}),
		},
		{
			name: "deleted file", path: "/api/file/" + algebraID, token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
	})

	_, err = os.Stat(filepath.Join(env.conf.Storage.LocalDir, key))
	assert.True(t, os.IsNotExist(err), "content deleted, got %v", err)
}

func TestFileUploadReferences(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	tests := []struct {
		name    string
		typ     string
		wantErr core.Kind
	}{
		{name: "malformed type", typ: "books", wantErr: core.KindInvalidID},
		{name: "unknown type", typ: "5f1b0c2e9d3e4a0001a1b2c3", wantErr: core.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.upload(t, http.MethodPost, "/api/file", token, map[string]string{"type": tt.typ}, "file", "a.txt", "a")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(tt.wantErr), decodeObj(t, rec)["code"])
		})
	}

	// nothing was stored for the rejected uploads
	rec := env.do(t, http.MethodGet, "/api/file", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestFileTypes(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.createUser(t, "Teacher", "teacher", "teacher@test.cd", false))

	t.Run("single winner", func(t *testing.T) {
		env.singleWinner(t, "/api/file-type", token, map[string]interface{}{"name": "Videos", "username": "videos"})
	})

	report := env.create(t, "/api/file-type", token, map[string]interface{}{
		"name": "Report Cards", "description": "Term reports",
	})
	reportID := report["id"].(string)

	env.run(t, []httpTest{
		{
			name: "generated username", path: "/api/file-type/" + reportID, token: token,
			check: hasFields(map[string]interface{}{
				"name": "Report Cards", "username": "report_cards", "description": "Term reports",
			}),
		},
		{
			name: "generated username is suffixed", method: http.MethodPost, path: "/api/file-type", token: token,
			body: map[string]interface{}{"name": "Report  Cards"}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"username": "report_cards_2"}),
		},
		{
			name: "name made of separators", method: http.MethodPost, path: "/api/file-type", token: token,
			body: map[string]interface{}{"name": "__"}, wantCode: http.StatusCreated,
			check: hasFields(map[string]interface{}{"username": "file_type"}),
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/api/file-type", token: token,
			body:     map[string]interface{}{"name": "Clips", "username": "videos"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "invalid name", method: http.MethodPost, path: "/api/file-type", token: token,
			body:     map[string]interface{}{"name": "Report-Cards"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "rename and clear the description", method: http.MethodPut, path: "/api/file-type/" + reportID,
			token: token, body: map[string]interface{}{"username": "reports", "description": ""},
			check: hasFields(map[string]interface{}{"username": "reports", "description": ""}),
		},
		{
			name: "rename round-trips", path: "/api/file-type/" + reportID, token: token,
			check: hasFields(map[string]interface{}{"username": "reports", "name": "Report Cards", "description": ""}),
		},
		{
			name: "rename to a taken username", method: http.MethodPut, path: "/api/file-type/" + reportID, token: token,
			body:     map[string]interface{}{"username": "videos"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindConflict),
		},
		{
			name: "malformed id", path: "/api/file-type/reports", token: token,
			wantCode: http.StatusBadRequest, wantErr: string(core.KindInvalidID),
		},
		{name: "list types", path: "/api/file-type", token: token, check: hasLen(4)},
	})

	// files show their type by username
	f := env.createFile(t, token, map[string]string{"type": reportID}, "term1.pdf", "term 1")
	assert.Equal(t, "reports", f["type"])
}
