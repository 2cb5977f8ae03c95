package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBadToken = errors.New("bad token")

type fakeTokenizer struct {
	valid  string
	claims map[string]interface{}
}

func (f *fakeTokenizer) Generate(map[string]interface{}, time.Duration) (string, error) {
	return f.valid, nil
}

func (f *fakeTokenizer) Decode(token string) (map[string]interface{}, error) {
	if token != f.valid {
		return nil, errBadToken
	}
	return f.claims, nil
}

type fakeAuth struct {
	registerErr error
	user        *dmn.User
	token       string
}

func (a *fakeAuth) Register(username, password string) error {
	return a.registerErr
}

func (a *fakeAuth) SignIn(username, password string) (*dmn.User, string, error) {
	if a.user == nil || a.user.Username != username {
		return nil, "", errors.New("invalid username or password")
	}
	return a.user, a.token, nil
}

func TestAuthoriz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	player := uuid.New()
	ts := &fakeTokenizer{valid: "good", claims: map[string]interface{}{"userID": player.String()}}

	engine := gin.New()
	engine.GET("/me", Authoriz(ts), func(c *gin.Context) {
		id, ok := PlayerID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{name: "bearer header", header: "Bearer good", code: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", code: http.StatusOK},
		{name: "query token", query: "?token=good", code: http.StatusOK},
		{name: "missing token", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", code: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, player.String(), w.Body.String())
			}
		})
	}
}

func TestPlayerID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(claims interface{}) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if claims != nil {
			c.Set(ContextUserClaims, claims)
		}
		return c
	}

	id := uuid.New()
	got, ok := PlayerID(newContext(map[string]interface{}{"userID": id.String()}))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = PlayerID(newContext(nil))
	assert.False(t, ok)

	_, ok = PlayerID(newContext("claims"))
	assert.False(t, ok)

	_, ok = PlayerID(newContext(map[string]interface{}{"userID": "nope"}))
	assert.False(t, ok)

	_, ok = PlayerID(newContext(map[string]interface{}{"userID": 7}))
	assert.False(t, ok)
}

func postJSON(engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestIdentityServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &dmn.User{ID: uuid.New(), Username: "runner", LevelsCompleted: 3}
	auth := &fakeAuth{user: user, token: "signed"}

	engine := gin.New()
	NewIdentityServer(auth).RegisterPublic(engine.Group("/v1"))

	t.Run("register", func(t *testing.T) {
		w := postJSON(engine, "/v1/auth/register", AuthRequest{Username: "runner", Password: "x"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("register rejected", func(t *testing.T) {
		auth.registerErr = dmn.ErrWeakPassword
		defer func() { auth.registerErr = nil }()

		w := postJSON(engine, "/v1/auth/register", AuthRequest{Username: "runner", Password: "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("register missing fields", func(t *testing.T) {
		w := postJSON(engine, "/v1/auth/register", map[string]string{"username": "runner"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login", func(t *testing.T) {
		w := postJSON(engine, "/v1/auth/login", AuthRequest{Username: "runner", Password: "x"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, 3, resp.LevelsCompleted)
		assert.Equal(t, "signed", resp.Token)
	})

	t.Run("login unknown user", func(t *testing.T) {
		w := postJSON(engine, "/v1/auth/login", AuthRequest{Username: "ghost", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
