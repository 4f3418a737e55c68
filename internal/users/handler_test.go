package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(nil, newTestService(newMemoryRepo())).MountRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSignupTwiceConflicts(t *testing.T) {
	router := newTestRouter(t)
	body := `{"username":"ana","email":"ana@shop.test","password":"s3cret","phone":"555"}`

	rr := doJSON(t, router, http.MethodPost, "/signup", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/signup", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "user already exists")
}

func TestSignupMissingField(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/signup", `{"username":"ana","email":"ana@shop.test","password":"s3cret"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "phone is required")
}

func TestLoginStatuses(t *testing.T) {
	router := newTestRouter(t)
	rr := doJSON(t, router, http.MethodPost, "/signup", `{"username":"ana","email":"ana@shop.test","password":"s3cret","phone":"555"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"success", `{"username":"ana","password":"s3cret"}`, http.StatusOK},
		{"wrong password", `{"username":"ana","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"zed","password":"s3cret"}`, http.StatusBadRequest},
		{"malformed body", `{"username":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/login", tc.body)
			require.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}
}

func TestListUsersOmitsPassword(t *testing.T) {
	router := newTestRouter(t)
	for _, name := range []string{"ana", "bob"} {
		rr := doJSON(t, router, http.MethodPost, "/signup", `{"username":"`+name+`","email":"`+name+`@shop.test","password":"pw","phone":"1"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.NotContains(t, doc, "password")
		assert.NotEmpty(t, doc["_id"])
		assert.NotEmpty(t, doc["username"])
	}
}

func TestSignupAndLoginWithLongPassword(t *testing.T) {
	router := newTestRouter(t)
	password := strings.Repeat("k", 80)

	rr := doJSON(t, router, http.MethodPost, "/signup", `{"username":"ana","email":"ana@shop.test","password":"`+password+`","phone":"555"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/login", `{"username":"ana","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}
