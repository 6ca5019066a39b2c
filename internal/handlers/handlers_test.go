package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agendaly/agendaly-api/internal/apperr"
)

func readerOf(s string) io.Reader { return strings.NewReader(s) }

func TestStatusFor(t *testing.T) {
	cases := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindUnauthenticated, http.StatusUnauthorized},
		{apperr.KindAccountDisabled, http.StatusForbidden},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.kind); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if _, err := bearerToken(req); err == nil {
		t.Fatal("missing header should error")
	}

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, err := bearerToken(req)
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("bearerToken = (%q, %v)", token, err)
	}

	// scheme matching is case-insensitive
	req.Header.Set("Authorization", "bearer xyz")
	if token, err = bearerToken(req); err != nil || token != "xyz" {
		t.Fatalf("bearerToken = (%q, %v)", token, err)
	}

	for _, bad := range []string{"Bearer", "Bearer ", "Basic abc", "abc"} {
		req.Header.Set("Authorization", bad)
		if _, err := bearerToken(req); err == nil {
			t.Fatalf("header %q should be rejected", bad)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		readerOf(`{"email": "x@example.com",`))
	var body loginRequest
	if err := decode(req, &body); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("truncated body should fail validation, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		readerOf(`{"email": "x@example.com", "password": "pw"}`))
	if err := decode(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "x@example.com" || body.Password != "pw" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
