package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-rest-common/internal/logger"
)

const contentTypeJSON = "application/json"

// TestingT is the part of *testing.T used by [API].
type TestingT interface {
	require.TestingT
	Helper()
	Cleanup(func())
}

// API is a test fixture sending requests to a handler under test. Init must
// be called before any request is sent.
type API struct {
	// Token, when set, is sent as "Authorization: Token <Token>" with every
	// request, replacing any Authorization header given by the caller.
	Token string

	// Encode serializes JSON bodies. Defaults to [MarshalJSON].
	Encode func(any) ([]byte, error)

	Client *Client
	Server *httptest.Server

	// Response is the last response received.
	Response *Response

	t TestingT
}

// Init enables debug logging and serves handler from a test server that is
// closed when the test finishes.
func (a *API) Init(t TestingT, handler http.Handler) {
	t.Helper()
	logger.SetDebug(true)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a.t = t
	a.Server = srv
	a.Client = NewClient(srv.URL)
	if a.Encode == nil {
		a.Encode = MarshalJSON
	}
}

// ErrNotInitialized is the panic value of calls made before [API.Init].
var ErrNotInitialized = errors.New("apitest: API.Init must be called before sending requests")

func (a *API) mustInit() {
	if a.t == nil || a.Client == nil {
		panic(ErrNotInitialized)
	}
}

// Option adjusts a single call.
type Option func(*call)

type call struct {
	data        any
	hasData     bool
	contentType string
	status      int
	header      http.Header
	query       url.Values
}

// WithData sets the payload. It is JSON-encoded for non-GET JSON requests and
// becomes query parameters for GET.
func WithData(data any) Option {
	return func(c *call) {
		c.data = data
		c.hasData = data != nil
	}
}

// WithContentType sets the request content type. Non-GET requests default
// to application/json.
func WithContentType(contentType string) Option {
	return func(c *call) { c.contentType = contentType }
}

// WithStatus makes the call fail the test unless the response has status.
func WithStatus(status int) Option {
	return func(c *call) { c.status = status }
}

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(c *call) {
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Add(key, value)
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) Option {
	return func(c *call) {
		if c.query == nil {
			c.query = url.Values{}
		}
		c.query.Add(key, value)
	}
}

// Send dispatches a request and returns its response. The expected status
// given by [WithStatus] is asserted, failing the test with
// "<actual> != <expected>".
func (a *API) Send(method, path string, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()

	c := &call{}
	for _, opt := range opts {
		opt(c)
	}

	method = strings.ToUpper(method)
	isGet := method == http.MethodGet

	if c.contentType == "" && !isGet {
		c.contentType = contentTypeJSON
	}

	var body any
	switch {
	case c.hasData && isGet:
		query, err := toValues(c.data)
		require.NoError(a.t, err)
		c.query = mergeValues(c.query, query)
	case c.hasData && c.contentType == contentTypeJSON:
		encoded, err := a.Encode(c.data)
		require.NoError(a.t, err)
		body = encoded
	case c.hasData && strings.HasPrefix(c.contentType, "application/x-www-form-urlencoded"):
		form, err := toValues(c.data)
		require.NoError(a.t, err)
		body = form.Encode()
	case c.hasData:
		body = c.data
	}

	header := c.header.Clone()
	if a.Token != "" {
		if header == nil {
			header = http.Header{}
		}
		header.Set("Authorization", "Token "+a.Token)
	}

	raw, err := a.Client.Do(Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: c.contentType,
		Header:      header,
		Query:       c.query,
	})
	require.NoError(a.t, err)

	resp, err := newResponse(raw)
	require.NoError(a.t, err)
	a.Response = resp

	if c.status != 0 {
		require.Equalf(a.t, c.status, resp.StatusCode(), "%d != %d", resp.StatusCode(), c.status)
	}

	return resp
}

func (a *API) Get(path string, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodGet, path, opts...)
}

func (a *API) Post(path string, data any, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodPost, path, append([]Option{WithData(data)}, opts...)...)
}

func (a *API) Put(path string, data any, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodPut, path, append([]Option{WithData(data)}, opts...)...)
}

func (a *API) Patch(path string, data any, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodPatch, path, append([]Option{WithData(data)}, opts...)...)
}

func (a *API) Delete(path string, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodDelete, path, opts...)
}

func (a *API) Options(path string, data any, opts ...Option) *Response {
	a.mustInit()
	a.t.Helper()
	return a.Send(http.MethodOptions, path, append([]Option{WithData(data)}, opts...)...)
}

// toValues converts form-like data to url.Values.
func toValues(data any) (url.Values, error) {
	switch v := data.(type) {
	case url.Values:
		return v, nil
	case map[string][]string:
		return url.Values(v), nil
	case map[string]string:
		values := url.Values{}
		for k, s := range v {
			values.Set(k, s)
		}
		return values, nil
	case map[string]any:
		values := url.Values{}
		for k, x := range v {
			values.Set(k, fmt.Sprint(x))
		}
		return values, nil
	default:
		return nil, fmt.Errorf("apitest: cannot use %T as parameters", data)
	}
}

func mergeValues(dst, src url.Values) url.Values {
	if dst == nil {
		dst = url.Values{}
	}
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	return dst
}
