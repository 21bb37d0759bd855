package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches, via errors.Is, any APIError with status 401. The
// session has already been torn down by the time a caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Code    string
	Errors  []string
	Body    []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if len(e.Errors) > 0 {
		msg = e.Errors[0]
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is reports ErrUnauthorized for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns the first structured error message of the response
// body, or "" when the body carried none.
func (e *APIError) UserMessage() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0]
}

// errorBody is the backend's error envelope. errors is usually a list of
// strings but is decoded leniently.
type errorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Errors  json.RawMessage `json:"errors"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method: method,
		Path:   path,
		Status: status,
		Body:   body,
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	apiErr.Message = eb.Message
	apiErr.Code = eb.Code
	apiErr.Errors = decodeErrorList(eb.Errors)
	return apiErr
}

// decodeErrorList accepts ["a","b"], "a" or [{"message":"a"}]. Anything else
// yields nil so callers fall back to a generic message.
func decodeErrorList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonEmpty(list)
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return nonEmpty([]string{single})
	}

	var objects []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		list = make([]string, 0, len(objects))
		for _, o := range objects {
			list = append(list, o.Message)
		}
		return nonEmpty(list)
	}

	return nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
