package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-rest-common/apitest"
	"github.com/MKhiriev/go-rest-common/auth"
	"github.com/MKhiriev/go-rest-common/internal/mock"
	"github.com/MKhiriev/go-rest-common/models"
	"github.com/MKhiriev/go-rest-common/querylog"
)

type lookupFunc func(ctx context.Context, key string) (models.User, error)

func (f lookupFunc) FindUserByToken(ctx context.Context, key string) (models.User, error) {
	return f(ctx, key)
}

// newTestAuditor returns an auditor whose clock advances 500ms per reading.
func newTestAuditor(tokens TokenLookup) (*Auditor, *bytes.Buffer) {
	var buf bytes.Buffer
	a := New(Config{}, tokens, zerolog.New(&buf))

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		t0 = t0.Add(500 * time.Millisecond)
		return t0
	}
	return a, &buf
}

func lines(t *testing.T, buf fmt.Stringer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func onlyMessage(t *testing.T, buf fmt.Stringer) string {
	t.Helper()
	ls := lines(t, buf)
	require.Len(t, ls, 1)
	return ls[0]["message"].(string)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
})

func TestMiddleware_GetRendersQuery(t *testing.T) {
	a, buf := newTestAuditor(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/widgets?color=red", nil)
	a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t,
		"/api/widgets (GET, time: 0.5, user id: -, db queries: 0): DATA: {'color': 'red'}",
		onlyMessage(t, buf))
}

func TestMiddleware_StructuredFields(t *testing.T) {
	a, buf := newTestAuditor(nil)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	})
	r := httptest.NewRequest(http.MethodGet, "/api/pot", nil)
	a.Middleware(h).ServeHTTP(httptest.NewRecorder(), r)

	l := lines(t, buf)[0]
	assert.Equal(t, DefaultLoggerName, l["logger"])
	assert.Equal(t, "info", l["level"])
	assert.EqualValues(t, http.StatusTeapot, l["status"])
	assert.EqualValues(t, 5, l["size"])
	assert.Equal(t, r.RemoteAddr, l["remote_addr"])
}

func TestMiddleware_NonAPIPathIsNotAudited(t *testing.T) {
	a, buf := newTestAuditor(nil)

	for _, path := range []string{"/", "/admin/", "/apix", "/api"} {
		w := httptest.NewRecorder()
		a.Middleware(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "ok", w.Body.String())
	}

	assert.Empty(t, buf.String())
}

func TestMiddleware_BodySummary(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
		wantBody    string
	}{
		{name: "get sorted, last value wins", method: http.MethodGet, target: "/api/x?b=2&a=1&a=3", wantBody: "DATA: {'a': '3', 'b': '2'}"},
		{name: "get without params", method: http.MethodGet, target: "/api/x", wantBody: "DATA: {}"},
		{name: "post form", method: http.MethodPost, target: "/api/x", body: "name=x&tag=y", contentType: "application/x-www-form-urlencoded", wantBody: "DATA: {'name': 'x', 'tag': 'y'}"},
		{name: "post json is not a form", method: http.MethodPost, target: "/api/x", body: `{"name":"x"}`, contentType: "application/json", wantBody: "DATA: {}"},
		{name: "put raw", method: http.MethodPut, target: "/api/x", body: `{"name": "x"}`, wantBody: `DATA: {"name": "x"}`},
		{name: "patch raw", method: http.MethodPatch, target: "/api/x", body: `{"name": "x"}`, wantBody: `DATA: {"name": "x"}`},
		{name: "delete raw", method: http.MethodDelete, target: "/api/x", body: "bye", wantBody: "DATA: bye"},
		{name: "options empty", method: http.MethodOptions, target: "/api/x", wantBody: "DATA: "},
		{name: "head has no summary", method: http.MethodHead, target: "/api/x", wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, buf := newTestAuditor(nil)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			r := httptest.NewRequest(tt.method, tt.target, body)
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), r)

			msg := onlyMessage(t, buf)
			assert.True(t, strings.HasSuffix(msg, "): "+tt.wantBody), msg)
		})
	}
}

func TestMiddleware_BodyIsRestoredForHandler(t *testing.T) {
	a, _ := newTestAuditor(nil)

	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(b)
	})

	r := httptest.NewRequest(http.MethodPatch, "/api/widgets/1", strings.NewReader(`{"name":"x"}`))
	a.Middleware(h).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, `{"name":"x"}`, seen)
}

func TestMiddleware_FormIsAvailableToHandler(t *testing.T) {
	a, _ := newTestAuditor(nil)

	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.PostFormValue("name")
	})

	r := httptest.NewRequest(http.MethodPost, "/api/widgets", strings.NewReader("name=x"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.Middleware(h).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "x", seen)
}

func TestMiddleware_UserFromAuthentication(t *testing.T) {
	// no expectations: an attached user makes the token lookup unnecessary
	tokens := mock.NewMockTokenRepository(gomock.NewController(t))
	a, buf := newTestAuditor(tokens)

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &models.User{UserID: 7})))
		})
	}

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Token abc")
	a.Middleware(authenticate(okHandler)).ServeHTTP(httptest.NewRecorder(), r)

	assert.Contains(t, onlyMessage(t, buf), "user id: 7,")
}

func TestMiddleware_UserFromTokenHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := mock.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindUserByToken(gomock.Any(), "abc").Return(models.User{UserID: 9}, nil)

	a, buf := newTestAuditor(tokens)

	r := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
	r.Header.Set("Authorization", "Token abc")
	a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), r)

	assert.Contains(t, onlyMessage(t, buf), "user id: 9,")
}

func TestMiddleware_UnresolvableUserIsSentinel(t *testing.T) {
	tests := []struct {
		name   string
		header string
		lookup lookupFunc
	}{
		{name: "no header", header: ""},
		{name: "no key", header: "Token"},
		{name: "unknown key", header: "Token nope", lookup: func(context.Context, string) (models.User, error) {
			return models.User{}, errors.New("token was not found")
		}},
		{name: "lookup panics", header: "Token boom", lookup: func(context.Context, string) (models.User, error) {
			panic("driver exploded")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := tt.lookup
			if lookup == nil {
				lookup = func(context.Context, string) (models.User, error) {
					t.Fatal("lookup must not be called")
					return models.User{}, nil
				}
			}
			a, buf := newTestAuditor(lookup)

			r := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			a.Middleware(okHandler).ServeHTTP(w, r)

			assert.Equal(t, "ok", w.Body.String())
			assert.Contains(t, onlyMessage(t, buf), "user id: -,")
		})
	}
}

func TestMiddleware_CountsQueriesIncludingTokenLookup(t *testing.T) {
	lookup := lookupFunc(func(ctx context.Context, key string) (models.User, error) {
		querylog.Record(ctx, "SELECT user")
		return models.User{UserID: 1}, nil
	})
	a, buf := newTestAuditor(lookup)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		querylog.Record(r.Context(), "SELECT 1")
		querylog.Record(r.Context(), "SELECT 2")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
	r.Header.Set("Authorization", "Token abc")
	a.Middleware(h).ServeHTTP(httptest.NewRecorder(), r)

	assert.Contains(t, onlyMessage(t, buf), "user id: 1, db queries: 3)")
}

func TestStartFinish_Placeholders(t *testing.T) {
	a, buf := newTestAuditor(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	e, r := a.Start(r)
	require.NotNil(t, e)
	assert.Equal(t, UnknownTime, e.Time)
	assert.Equal(t, Unresolved, e.UserID)
	assert.Equal(t, Unresolved, e.DBQueries)

	// an entry without a start timestamp keeps its time placeholder
	e.start = time.Time{}
	a.Finish(r, e, 0, 0)

	l := lines(t, buf)[0]
	assert.Equal(t, "/api/x (GET, time: unknown, user id: -, db queries: 0): DATA: {}", l["message"])
	assert.EqualValues(t, http.StatusOK, l["status"])
}

func TestStartFinish_OutsidePrefix(t *testing.T) {
	a, buf := newTestAuditor(nil)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	e, r2 := a.Start(r)
	assert.Nil(t, e)
	assert.Same(t, r, r2)

	a.Finish(r2, e, http.StatusOK, 0)
	a.Finish(r2, &Entry{}, http.StatusOK, 0)
	assert.Empty(t, buf.String())
}

func TestNew_CustomConfig(t *testing.T) {
	var buf bytes.Buffer
	a := New(Config{LoggerName: "audit", APIPrefix: "/v1/"}, nil, zerolog.New(&buf))

	a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Empty(t, buf.String())

	a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/x", nil))
	l := lines(t, &buf)
	require.Len(t, l, 1)
	assert.Equal(t, "audit", l[0]["logger"])
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0.5", formatSeconds(500*time.Millisecond))
	assert.Equal(t, "1.25", formatSeconds(1250*time.Millisecond))
	assert.Equal(t, "0", formatSeconds(0))
}

func TestMiddleware_PanicIsAuditedAsServerError(t *testing.T) {
	a, buf := newTestAuditor(nil)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/widgets?color=red", nil)
	middleware.Recoverer(a.Middleware(panicking)).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	l := lines(t, buf)
	require.Len(t, l, 1)
	assert.EqualValues(t, http.StatusInternalServerError, l[0]["status"])
	assert.Equal(t,
		"/api/widgets (GET, time: 0.5, user id: -, db queries: 0): DATA: {'color': 'red'}",
		l[0]["message"])
}

func TestMiddleware_LargeBodyIsCappedButForwarded(t *testing.T) {
	a, buf := newTestAuditor(nil)

	body := strings.Repeat("a", MaxBodySummary) + strings.Repeat("b", 100)
	var seen []byte
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = io.ReadAll(r.Body)
	})
	r := httptest.NewRequest(http.MethodPut, "/api/widgets/1", strings.NewReader(body))
	a.Middleware(h).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, body, string(seen))
	assert.True(t, strings.HasSuffix(onlyMessage(t, buf), DataPrefix+strings.Repeat("a", MaxBodySummary)))
}

func TestMiddleware_UsesRequestLogger(t *testing.T) {
	a, buf := newTestAuditor(nil)

	var reqBuf bytes.Buffer
	reqLog := zerolog.New(&reqBuf).With().Str("trace_id", "t-1").Logger()
	r := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
	r = r.WithContext(reqLog.WithContext(r.Context()))
	a.Middleware(okHandler).ServeHTTP(httptest.NewRecorder(), r)

	assert.Empty(t, buf.String())
	l := lines(t, &reqBuf)
	require.Len(t, l, 1)
	assert.Equal(t, "t-1", l[0]["trace_id"])
	assert.Equal(t, DefaultLoggerName, l[0]["logger"])
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMiddleware_ThroughTestHarness(t *testing.T) {
	var buf syncBuffer
	a := New(Config{}, nil, zerolog.New(&buf))

	echoBody := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.Write(b)
	})
	var api apitest.API
	api.Init(t, a.Middleware(echoBody))

	resp := api.Options("/api/widgets", map[string]any{"name": "x"}, apitest.WithStatus(http.StatusOK))
	assert.Equal(t, `{"name":"x"}`, resp.String())
	api.Put("/api/widgets/1", "plain", apitest.WithContentType("text/plain"), apitest.WithStatus(http.StatusOK))
	api.Get("/api/widgets", apitest.WithQuery("color", "red"), apitest.WithStatus(http.StatusOK))
	api.Get("/health", apitest.WithStatus(http.StatusOK))

	l := lines(t, &buf)
	require.Len(t, l, 3)

	want := []struct{ prefix, suffix string }{
		{"/api/widgets (OPTIONS, time: ", `, user id: -, db queries: 0): DATA: {"name":"x"}`},
		{"/api/widgets/1 (PUT, time: ", ", user id: -, db queries: 0): DATA: plain"},
		{"/api/widgets (GET, time: ", ", user id: -, db queries: 0): DATA: {'color': 'red'}"},
	}
	for i, w := range want {
		msg := l[i]["message"].(string)
		assert.True(t, strings.HasPrefix(msg, w.prefix), msg)
		assert.True(t, strings.HasSuffix(msg, w.suffix), msg)
		assert.NotContains(t, msg, UnknownTime)
	}
}
