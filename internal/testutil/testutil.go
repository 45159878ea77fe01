package testutil

import (
	"testing"

	"github.com/seventv/common/errors"
)

func Assert[T comparable](t *testing.T, expected T, value T, message string) {
	if expected != value {
		t.Fatalf("%s: expected %v got %v", message, expected, value)
	}
}

func AssertErr(t *testing.T, expected error, value error, message string) {
	if expected == nil && value == nil {
		return
	}

	if expected == nil || value == nil || expected.Error() != value.Error() {
		t.Fatalf("%s: expected %v got %v", message, expected, value)
	}
}

func IsNil(t *testing.T, value interface{}, message string) {
	if value != nil {
		t.Fatalf("%s: expected nil got %v", message, value)
	}
}

func IsNotNil(t *testing.T, value interface{}, message string) {
	if value == nil {
		t.Fatalf("%s: expected not nil got nil", message)
	}
}

// AssertCode checks that err is an API error carrying the code of expected
func AssertCode(t *testing.T, expected errors.APIError, err error, message string) {
	t.Helper()

	apiErr, ok := err.(errors.APIError)
	if !ok {
		t.Fatalf("%s: expected api error %d got %v", message, expected.Code(), err)
	}

	if apiErr.Code() != expected.Code() {
		t.Fatalf("%s: expected error code %d got %d (%s)", message, expected.Code(), apiErr.Code(), apiErr.Message())
	}
}
