package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		http     int
		grpcCode codes.Code
		message  string
	}{
		{"validation", ValidationErrors{{Field: "latitude", Message: "is required"}}, http.StatusBadRequest, codes.InvalidArgument, "validation failed: latitude: is required"},
		{"conflict", ConflictError("already clocked in"), http.StatusBadRequest, codes.FailedPrecondition, "already clocked in"},
		{"not found", NotFoundErrorf("estimate %s not found", "abc"), http.StatusNotFound, codes.NotFound, "estimate abc not found"},
		{"internal", InternalError("insert timesheet", errors.New("pq: boom")), http.StatusInternalServerError, codes.Internal, "internal server error"},
		{"wrapped conflict", fmt.Errorf("clock in: %w", ConflictError("already clocked in")), http.StatusBadRequest, codes.FailedPrecondition, "already clocked in"},
		{"retryable", RetryableError("estimate number taken", errors.New("23505")), http.StatusServiceUnavailable, codes.Aborted, "estimate number taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.http {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.http)
			}
			st, _ := status.FromError(ToStatus(tt.err))
			if st.Code() != tt.grpcCode {
				t.Errorf("grpc code = %v, want %v", st.Code(), tt.grpcCode)
			}
			if got := PublicMessage(tt.err); got != tt.message {
				t.Errorf("PublicMessage = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := InternalError("list estimates", cause)
	if !errors.Is(err, cause) {
		t.Error("cause should stay in the chain for logging")
	}
	if !errors.Is(err, ErrInternal) {
		t.Error("expected ErrInternal in chain")
	}
	if IsRetryable(err) {
		t.Error("internal error must not be retryable")
	}
}

func TestDatabaseErrorIsInternal(t *testing.T) {
	err := DatabaseError("failed to list timesheets", errors.New("no such table: timesheets"))
	if !errors.Is(err, ErrDatabase) || !errors.Is(err, ErrInternal) {
		t.Fatalf("chain of %v lacks ErrDatabase/ErrInternal", err)
	}
	if got := HTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d", got)
	}
	if got := PublicMessage(err); got != "internal server error" {
		t.Errorf("PublicMessage = %q, driver detail must not leak", got)
	}
}
