package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NotFound("missing"), KindNotFound},
		{Forbidden("nope"), KindForbidden},
		{Conflict("already done"), KindConflict},
		{Validation("bad input"), KindValidation},
		{Unauthenticated("no token"), KindUnauthenticated},
		{AccountDisabled("disabled"), KindAccountDisabled},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("inner"))
	if !IsNotFound(err) {
		t.Fatal("expected wrapped error to keep its kind")
	}
	err = Wrap(KindConflict, "transition refused", errors.New("db detail"))
	if !IsConflict(err) {
		t.Fatal("expected conflict kind")
	}
	if err.Error() != "transition refused: db detail" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
