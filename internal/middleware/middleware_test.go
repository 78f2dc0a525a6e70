package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	require.NoError(t, err)
	return c, rec
}

func TestSessionMiddleware_AssignsCookie(t *testing.T) {
	c, rec := run(t, SessionMiddleware(time.Hour, false), httptest.NewRequest(http.MethodGet, "/", nil))

	sid := SessionID(c)
	_, err := uuid.Parse(sid)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, sid, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionMiddleware_KeepsValidCookie(t *testing.T) {
	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: existing})

	c, _ := run(t, SessionMiddleware(time.Hour, false), req)
	assert.Equal(t, existing, SessionID(c))
}

func TestSessionMiddleware_ReplacesGarbageCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc/passwd"})

	c, _ := run(t, SessionMiddleware(time.Hour, false), req)
	assert.NotEqual(t, "../../etc/passwd", SessionID(c))
	_, err := uuid.Parse(SessionID(c))
	assert.NoError(t, err)
}

func TestAuthMiddleware_Headers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "u-42")
	req.Header.Set("X-User-First-Name", "Sari")
	req.Header.Set("X-User-Email", "sari@example.com")

	c, _ := run(t, AuthMiddleware(), req)
	assert.Equal(t, &model.User{ID: "u-42", FirstName: "Sari", Email: "sari@example.com"}, CurrentUser(c))
}

func TestAuthMiddleware_DemoUser(t *testing.T) {
	c, _ := run(t, AuthMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, demoUserID, CurrentUser(c).ID)
}
