package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/apps/api/di"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	blobsvc "github.com/trezcool/shule/services/blob"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
)

const testPassword = "Sup3r-S3cret!"

type testEnv struct {
	srv    *server
	svcs   *di.Services
	stores *di.Stores
	conf   *core.Config
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	conf.Storage.LocalDir = t.TempDir()
	conf.Storage.PublicURL = "http://localhost:8000/media"

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	stores := di.NewMemoryStores()
	svcs := di.NewServices(
		stores,
		blobsvc.NewDiskStore(conf),
		emailsvc.NewConsoleServiceMock(conf, logger),
		validate,
		conf,
	)
	srv := NewServer(&Options{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Services:   svcs,
	})
	return &testEnv{srv: srv.(*server), svcs: svcs, stores: stores, conf: conf}
}

// createUser creates an active user, an admin when admin is set.
func (env *testEnv) createUser(t *testing.T, name, username, email string, admin bool) user.User {
	t.Helper()
	ctx := context.Background()
	nu := user.NewUser{
		Name:            name,
		Username:        username,
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	}
	if admin {
		roleID, err := env.svcs.Role.Ensure(ctx, user.RoleAdmin)
		require.NoError(t, err)
		nu.Role = roleID
	}
	view, err := env.svcs.User.Create(ctx, nu)
	require.NoError(t, err)
	usr, err := env.svcs.User.GetByID(ctx, view.ID)
	require.NoError(t, err)
	return usr
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	t.Helper()
	claims, err := env.srv.auth.userClaims(context.Background(), usr)
	require.NoError(t, err)
	token, err := env.srv.auth.generateToken(claims)
	require.NoError(t, err)
	return token
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantErr  string // error code
	check    func(t *testing.T, data interface{})
}

func (env *testEnv) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := env.do(t, method, tt.path, tt.token, tt.body)
			checkResponse(t, tt, rec)
		})
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

// upload sends a multipart form holding fields and a `part` file.
func (env *testEnv) upload(
	t *testing.T, method, path, token string, fields map[string]string, part, filename, content string,
) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if part != "" {
		fw, err := w.CreateFormFile(part, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

// create POSTs body to path and returns the created document.
func (env *testEnv) create(t *testing.T, path, token string, body interface{}) map[string]interface{} {
	t.Helper()
	rec := env.do(t, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObj(t, rec)
}

// createFile uploads content as filename through /api/file and returns the stored file.
func (env *testEnv) createFile(t *testing.T, token string, fields map[string]string, filename, content string) map[string]interface{} {
	t.Helper()
	rec := env.upload(t, http.MethodPost, "/api/file", token, fields, "file", filename, content)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObj(t, rec)
}

// createConcurrently POSTs body to path from n goroutines at once. It returns the number of
// created documents and the error codes of the rejected requests.
func (env *testEnv) createConcurrently(t *testing.T, path, token string, body interface{}, n int) (int, map[string]int) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	recs := make([]*httptest.ResponseRecorder, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			recs[i] = httptest.NewRecorder()
			env.srv.ServeHTTP(recs[i], req)
		}(i)
	}
	wg.Wait()

	created := 0
	codes := make(map[string]int)
	for _, rec := range recs {
		if rec.Code == http.StatusCreated {
			created++
			continue
		}
		codes[decodeObj(t, rec)["code"].(string)]++
	}
	return created, codes
}

// singleWinner asserts that, out of n concurrent creations of body, exactly one succeeds and
// the others conflict.
func (env *testEnv) singleWinner(t *testing.T, path, token string, body interface{}) {
	t.Helper()
	const n = 8
	created, codes := env.createConcurrently(t, path, token, body, n)
	assert.Equal(t, 1, created)
	assert.Equal(t, map[string]int{string(core.KindConflict): n - 1}, codes)
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if !assert.Equal(t, wantCode, rec.Code, rec.Body.String()) {
		return
	}

	if tt.wantErr == "" && tt.check == nil {
		return
	}
	var data interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data), rec.Body.String())
	if tt.wantErr != "" {
		obj, ok := data.(map[string]interface{})
		require.True(t, ok, rec.Body.String())
		assert.Equal(t, tt.wantErr, obj["code"], rec.Body.String())
	}
	if tt.check != nil {
		tt.check(t, data)
	}
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj), rec.Body.String())
	return obj
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var objs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objs), rec.Body.String())
	return objs
}

// hasFields returns a check asserting the response object holds the wanted values.
func hasFields(want map[string]interface{}) func(t *testing.T, data interface{}) {
	return func(t *testing.T, data interface{}) {
		obj, ok := data.(map[string]interface{})
		require.True(t, ok)
		for k, v := range want {
			assert.Equal(t, v, obj[k], k)
		}
	}
}

// hasLen returns a check asserting the response list holds n items.
func hasLen(n int) func(t *testing.T, data interface{}) {
	return func(t *testing.T, data interface{}) {
		objs, ok := data.([]interface{})
		require.True(t, ok)
		assert.Len(t, objs, n)
	}
}
