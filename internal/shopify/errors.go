package shopify

import (
	"fmt"
	"strings"
)

// HTTPError is a non-retryable HTTP failure from the Admin API
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("shopify API error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("shopify API error (status %d)", e.StatusCode)
}

// GraphQLError wraps top-level GraphQL errors that are not throttling
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "shopify GraphQL errors: " + strings.Join(e.Messages, ", ")
}

// UserError is a per-field validation error returned by a mutation
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// String renders the error as "field.path: message"
func (e UserError) String() string {
	if len(e.Field) == 0 {
		return e.Message
	}
	return strings.Join(e.Field, ".") + ": " + e.Message
}

// UserErrors is the list of user errors returned by one mutation
type UserErrors []UserError

func (e UserErrors) Error() string {
	return strings.Join(e.Strings(), ", ")
}

// Strings renders every error with String
func (e UserErrors) Strings() []string {
	out := make([]string, 0, len(e))
	for _, ue := range e {
		out = append(out, ue.String())
	}
	return out
}

// Messages returns only the message part of every error
func (e UserErrors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, ue := range e {
		out = append(out, ue.Message)
	}
	return out
}

// Err returns e as an error, or nil when empty
func (e UserErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
