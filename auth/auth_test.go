package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodjournal/render"
)

func testAuth(t *testing.T) *Auth {
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}).Error)

	store := sessions.NewCookieStore([]byte("test-secret"))
	rn := render.New(store, logrus.New(), false)

	return New(db, rn, store)
}

func makeUser(t *testing.T, a *Auth, username, password string) User {
	user := User{Username: username}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, a.DB.Create(&user).Error)
	return user
}

func TestPasswordRoundtrip(t *testing.T) {
	var user User
	require.NoError(t, user.SetPassword("testpassword123"))

	assert.True(t, user.CheckPassword("testpassword123"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.NotContains(t, user.PasswordHash, "testpassword123")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", User{Username: "alice"}.DisplayName())
	assert.Equal(t, "Alice A.", User{Username: "alice", Name: "Alice A."}.DisplayName())
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/entries?search=tea", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next="+url.QueryEscape("/entries?search=tea"), w.Header().Get("Location"))
}

func TestRequireUserPassesAuthenticated(t *testing.T) {
	called := false
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "alice", CurrentUser(r).Username)
	}))

	r := httptest.NewRequest("GET", "/entries", nil)
	r = r.WithContext(WithUser(r.Context(), User{Username: "alice"}))

	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, called)
}

func TestLoginSetsSessionAndRedirects(t *testing.T) {
	a := testAuth(t)
	makeUser(t, a, "alice", "testpassword123")

	values := url.Values{
		"username": {"alice"},
		"password": {"testpassword123"},
		"next":     {"/entries/create"},
	}

	r := httptest.NewRequest("POST", "/login", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.ServeMux().ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/entries/create", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := testAuth(t)
	makeUser(t, a, "alice", "testpassword123")

	for _, values := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"testpassword123"}},
	} {
		r := httptest.NewRequest("POST", "/login", strings.NewReader(values.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		a.ServeMux().ServeHTTP(w, r)

		// Transport succeeds, the operation does not.
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/entries", safeNext(""))
	assert.Equal(t, "/entries", safeNext("https://evil.example"))
	assert.Equal(t, "/entries", safeNext("//evil.example"))
	assert.Equal(t, "/entries/5", safeNext("/entries/5"))
}
