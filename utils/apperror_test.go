package utils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewNotFoundError("gone"), fiber.StatusNotFound},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewInvalidStateError("locked"), fiber.StatusConflict},
		{NewConflictError("raced"), fiber.StatusConflict},
		{NewInsufficientQuantityError("short"), fiber.StatusUnprocessableEntity},
		{NewAllocationError("contended"), fiber.StatusServiceUnavailable},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestIsKindUnwrapsOnlyAppErrors(t *testing.T) {
	if !IsKind(NewConflictError("raced"), ErrKindConflict) {
		t.Fatal("IsKind should match the conflict kind")
	}
	if IsKind(NewConflictError("raced"), ErrKindNotFound) {
		t.Fatal("IsKind matched the wrong kind")
	}
	if IsKind(errors.New("plain"), ErrKindConflict) {
		t.Fatal("IsKind matched a non-app error")
	}
	if IsKind(nil, ErrKindConflict) {
		t.Fatal("IsKind matched nil")
	}
}
