package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		err      error
		matches  error
		excludes []error
	}{
		{Validationf("bad input"), ErrValidation, []error{ErrNotFound, ErrStore}},
		{NotFoundf("note %s", "42"), ErrNotFound, []error{ErrValidation, ErrStore}},
		{Storef(500, "boom"), ErrStore, []error{ErrValidation, ErrNotFound}},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.matches) {
			t.Errorf("%v should match %v", tc.err, tc.matches)
		}
		for _, other := range tc.excludes {
			if errors.Is(tc.err, other) {
				t.Errorf("%v should not match %v", tc.err, other)
			}
		}
	}
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", Storef(502, "upstream down"))
	if !errors.Is(err, ErrStore) {
		t.Error("wrapped store error lost its kind")
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed")
	}
	if appErr.Status != 502 {
		t.Errorf("status = %d", appErr.Status)
	}
}

func TestMessageFormatting(t *testing.T) {
	err := NotFoundf("tag not found: %s", "inbox")
	if err.Error() != "tag not found: inbox" {
		t.Errorf("message = %q", err.Error())
	}
}
