package apitest

import (
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Response is a resty response with its body decoded as JSON.
type Response struct {
	*resty.Response

	// JSON is the decoded body, or an empty map when the response is not
	// JSON or has no body.
	JSON any
}

func newResponse(raw *resty.Response) (*Response, error) {
	resp := &Response{Response: raw, JSON: map[string]any{}}

	body := raw.Body()
	if !strings.Contains(raw.Header().Get("Content-Type"), "json") || len(body) == 0 {
		return resp, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	resp.JSON = v
	return resp, nil
}

// Map returns JSON as an object, or nil when it is not one.
func (r *Response) Map() map[string]any {
	m, _ := r.JSON.(map[string]any)
	return m
}
