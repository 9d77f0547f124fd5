package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo reports what it received as JSON.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"method":        r.Method,
		"path":          r.URL.Path,
		"query":         r.URL.RawQuery,
		"content_type":  r.Header.Get("Content-Type"),
		"authorization": r.Header.Get("Authorization"),
		"body":          string(body),
	})
})

// recordingT fails by panicking so a failed assertion can be observed.
type recordingT struct {
	*testing.T
	errors []string
}

type failNow struct{}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow() {
	panic(failNow{})
}

func (r *recordingT) failed(f func()) (failed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(failNow); !ok {
				panic(rec)
			}
			failed = true
		}
	}()
	f()
	return false
}

func TestPatch_DefaultsToJSONAndInjectsToken(t *testing.T) {
	var api API
	api.Init(t, echo)
	api.Token = "abc"

	resp := api.Patch("/api/widgets/1", map[string]any{"name": "x"})

	got := resp.Map()
	assert.Equal(t, http.MethodPatch, got["method"])
	assert.Equal(t, "application/json", got["content_type"])
	assert.JSONEq(t, `{"name":"x"}`, got["body"].(string))
	assert.Equal(t, "Token abc", got["authorization"])
	assert.Same(t, resp, api.Response)
}

func TestSend_TokenOverridesCallerHeader(t *testing.T) {
	var api API
	api.Init(t, echo)
	api.Token = "fixture"

	resp := api.Get("/api/x", WithHeader("Authorization", "Token caller"))
	assert.Equal(t, "Token fixture", resp.Map()["authorization"])
}

func TestSend_NoTokenKeepsCallerHeader(t *testing.T) {
	var api API
	api.Init(t, echo)

	resp := api.Get("/api/x", WithHeader("Authorization", "Token caller"))
	assert.Equal(t, "Token caller", resp.Map()["authorization"])
}

func TestGet_DataBecomesQuery(t *testing.T) {
	var api API
	api.Init(t, echo)

	resp := api.Get("/api/widgets", WithData(map[string]string{"color": "red"}), WithStatus(http.StatusOK))

	got := resp.Map()
	assert.Equal(t, "color=red", got["query"])
	assert.Empty(t, got["content_type"], "GET has no default content type")
	assert.Empty(t, got["body"])
}

func TestSend_ExplicitContentType(t *testing.T) {
	var api API
	api.Init(t, echo)

	form := api.Post("/api/x", map[string]string{"a": "1"}, WithContentType("application/x-www-form-urlencoded"))
	assert.Equal(t, "a=1", form.Map()["body"])

	raw := api.Put("/api/x", "plain body", WithContentType("text/plain"))
	assert.Equal(t, "plain body", raw.Map()["body"])
	assert.Equal(t, "text/plain", raw.Map()["content_type"])
}

func TestSend_NoDataSendsEmptyBody(t *testing.T) {
	var api API
	api.Init(t, echo)

	resp := api.Delete("/api/widgets/1")
	assert.Equal(t, http.MethodDelete, resp.Map()["method"])
	assert.Equal(t, "application/json", resp.Map()["content_type"])
	assert.Empty(t, resp.Map()["body"])

	resp = api.Options("/api/widgets", nil)
	assert.Equal(t, http.MethodOptions, resp.Map()["method"])
	assert.Empty(t, resp.Map()["body"])
}

func TestOptions_SendsJSONBody(t *testing.T) {
	var api API
	api.Init(t, echo)

	resp := api.Options("/api/widgets", map[string]any{"name": "x"})
	assert.Equal(t, http.MethodOptions, resp.Map()["method"])
	assert.Equal(t, "application/json", resp.Map()["content_type"])
	assert.Equal(t, `{"name":"x"}`, resp.Map()["body"])

	resp = api.Send(http.MethodOptions, "/api/widgets", WithData("raw"), WithContentType("text/plain"))
	assert.Equal(t, "raw", resp.Map()["body"])
}

func TestSend_BeforeInitPanics(t *testing.T) {
	var api API

	assert.PanicsWithValue(t, ErrNotInitialized, func() { api.Get("/api/widgets") })
	assert.PanicsWithValue(t, ErrNotInitialized, func() { api.Send(http.MethodPost, "/api/widgets") })
}

func TestSend_StatusMismatchFails(t *testing.T) {
	rt := &recordingT{T: t}

	var api API
	api.Init(rt, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	failed := rt.failed(func() {
		api.Get("/api/widgets/1", WithStatus(http.StatusNotFound))
	})

	require.True(t, failed)
	require.Len(t, rt.errors, 1)
	assert.Contains(t, rt.errors[0], "200 != 404")
}

func TestSend_StatusMatch(t *testing.T) {
	rt := &recordingT{T: t}

	var api API
	api.Init(rt, http.NotFoundHandler())

	failed := rt.failed(func() {
		api.Get("/missing", WithStatus(http.StatusNotFound))
	})
	assert.False(t, failed)
	assert.Empty(t, rt.errors)
}

func TestSend_EncodeErrorFails(t *testing.T) {
	rt := &recordingT{T: t}

	var api API
	api.Init(rt, echo)

	failed := rt.failed(func() {
		api.Post("/api/x", map[string]any{"ch": make(chan int)})
	})
	assert.True(t, failed)
}

func TestResponse_JSONView(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        any
	}{
		{name: "object", contentType: "application/json", body: `{"a":1}`, want: map[string]any{"a": float64(1)}},
		{name: "array", contentType: "application/json; charset=utf-8", body: `[1,2]`, want: []any{float64(1), float64(2)}},
		{name: "problem json", contentType: "application/problem+json", body: `{"title":"x"}`, want: map[string]any{"title": "x"}},
		{name: "empty json body", contentType: "application/json", body: "", want: map[string]any{}},
		{name: "not json", contentType: "text/plain", body: "1.0.0", want: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var api API
			api.Init(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				io.WriteString(w, tt.body)
			}))

			resp := api.Get("/api/x")
			assert.Equal(t, tt.want, resp.JSON)
			assert.Equal(t, tt.body, resp.String())
		})
	}
}

func TestInit_EnablesDebugLogging(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var api API
	api.Init(t, echo)

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.NotNil(t, api.Client)
	assert.True(t, strings.HasPrefix(api.Server.URL, "http://"))
}

func TestInit_KeepsCustomEncoder(t *testing.T) {
	api := API{Encode: func(any) ([]byte, error) { return []byte(`"custom"`), nil }}
	api.Init(t, echo)

	resp := api.Post("/api/x", map[string]any{"ignored": true})
	assert.Equal(t, `"custom"`, resp.Map()["body"])
}
