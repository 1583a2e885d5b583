package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/builder"
	"github.com/padraicbc/multibuilder/session"
)

var testKey = []byte("test-secret")

func newSessionEcho(t *testing.T, store *session.Store) (*echo.Echo, *[]*builder.Controller) {
	t.Helper()
	var seen []*builder.Controller
	e := echo.New()
	e.Use(Session(SessionConfig{Store: store, Key: testKey, TTL: time.Hour, Logger: zap.NewNop()}))
	e.GET("/", func(c echo.Context) error {
		ctrl, ok := Controller(c)
		if !ok {
			t.Fatal("no controller in context")
		}
		if SessionID(c) == "" {
			t.Fatal("no session id in context")
		}
		seen = append(seen, ctrl)
		return c.NoContent(http.StatusOK)
	})
	return e, &seen
}

func newSessionStore() *session.Store {
	return session.NewStore(time.Hour, func(id string) *builder.Controller {
		return builder.New(nil, builder.Options{SessionID: id, Logger: zap.NewNop()})
	}, zap.NewNop())
}

func serve(e *echo.Echo, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSessionReusesController(t *testing.T) {
	store := newSessionStore()
	e, seen := newSessionEcho(t, store)

	first := serve(e, nil)
	ck := sessionCookie(t, first)
	if !ck.HttpOnly || ck.MaxAge != 3600 {
		t.Errorf("cookie = %+v", ck)
	}
	serve(e, ck)

	if len(*seen) != 2 || (*seen)[0] != (*seen)[1] {
		t.Fatal("second request got a different controller")
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", store.Len())
	}
}

func TestSessionRejectsBadCookies(t *testing.T) {
	forged, err := SignSession("whatever", []byte("other-key"), time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	expired, err := SignSession("whatever", testKey, time.Hour, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	unknown, err := SignSession("evicted-session", testKey, time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", forged},
		{"expired", expired},
		{"unknown session", unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSessionStore()
			e, seen := newSessionEcho(t, store)

			rec := serve(e, &http.Cookie{Name: CookieName, Value: tt.value})
			if len(*seen) != 1 || store.Len() != 1 {
				t.Fatalf("expected a fresh session, store has %d", store.Len())
			}
			id, err := ParseSession(sessionCookie(t, rec).Value, testKey)
			if err != nil || id == "evicted-session" {
				t.Fatalf("reissued cookie = %q, %v", id, err)
			}
		})
	}
}

func TestParseSessionRejectsOtherAlgorithms(t *testing.T) {
	tok, err := SignSession("abc", testKey, time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if id, err := ParseSession(tok, testKey); err != nil || id != "abc" {
		t.Fatalf("ParseSession() = %q, %v", id, err)
	}
	if _, err := ParseSession("eyJhbGciOiJub25lIn0.eyJzdWIiOiJhYmMifQ.", testKey); err == nil {
		t.Fatal("unsigned token accepted")
	}
}
