// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package apitest provides helpers for integration tests of JSON APIs.
//
// [API] serves the handler under test from an httptest server and offers one
// method per HTTP verb. Bodies are JSON-encoded with [MarshalJSON], the
// fixture token is sent as "Authorization: Token <token>", and an expected
// status is asserted when given:
//
//	func TestWidgets(t *testing.T) {
//		var api apitest.API
//		api.Init(t, router)
//		api.Token = "abc"
//
//		resp := api.Patch("/api/widgets/1", map[string]any{"name": "x"}, apitest.WithStatus(http.StatusOK))
//		assert.Equal(t, "x", resp.Map()["name"])
//	}
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
)

type rawBodyKey struct{}

// Client dispatches requests of any method against a base URL. Redirects
// are returned to the caller instead of being followed.
type Client struct {
	rc *resty.Client
}

// Request describes a single call made through [Client.Do].
type Request struct {
	Method      string
	Path        string
	Body        any
	ContentType string
	Header      http.Header
	Query       url.Values
}

// NewClient returns a Client for baseURL.
func NewClient(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		SetPreRequestHook(attachRawBody)

	return &Client{rc: rc}
}

// payloadDropped reports whether resty sends no body for method.
func payloadDropped(method string) bool {
	return method == http.MethodOptions || method == http.MethodHead
}

// Do sends req.
func (c *Client) Do(req Request) (*resty.Response, error) {
	r := c.rc.R()
	if req.Header != nil {
		r.SetHeaderMultiValues(req.Header)
	}
	if req.Query != nil {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.ContentType != "" {
		r.SetHeader("Content-Type", req.ContentType)
	}
	if req.Body != nil {
		if payloadDropped(req.Method) {
			body, err := encodeBody(req.Body)
			if err != nil {
				return nil, err
			}
			r.SetContext(context.WithValue(context.Background(), rawBodyKey{}, body))
		} else {
			r.SetBody(req.Body)
		}
	}

	return r.Execute(req.Method, req.Path)
}

// attachRawBody sets the body resty refused to send for the request's method.
func attachRawBody(_ *resty.Client, req *http.Request) error {
	body, ok := req.Context().Value(rawBodyKey{}).([]byte)
	if !ok {
		return nil
	}

	if len(body) == 0 {
		req.Body = http.NoBody
		return nil
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
	return nil
}

// encodeBody turns a payload into bytes the way resty does: raw for bytes,
// strings and readers, JSON otherwise.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		return json.Marshal(b)
	}
}

// Generic sends a request with an arbitrary method.
func (c *Client) Generic(method, path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Do(Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
		Header:      header,
	})
}

func (c *Client) Get(path string, query url.Values, header http.Header) (*resty.Response, error) {
	return c.Do(Request{Method: http.MethodGet, Path: path, Query: query, Header: header})
}

func (c *Client) Post(path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Generic(http.MethodPost, path, body, contentType, header)
}

func (c *Client) Put(path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Generic(http.MethodPut, path, body, contentType, header)
}

func (c *Client) Delete(path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Generic(http.MethodDelete, path, body, contentType, header)
}

// Patch sends a PATCH request.
func (c *Client) Patch(path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Generic(http.MethodPatch, path, body, contentType, header)
}

// Options sends an OPTIONS request.
func (c *Client) Options(path string, body any, contentType string, header http.Header) (*resty.Response, error) {
	return c.Generic(http.MethodOptions, path, body, contentType, header)
}
