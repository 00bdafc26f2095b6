package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/fmelink-dev/fmelink/internal/validate"
)

// fakeNetError implements net.Error for transport failure cases.
type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: connection refused" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestMap_StatusCodes(t *testing.T) {
	tests := []struct {
		status    int
		wantKind  Kind
		wantField validate.Field
	}{
		{status: 401, wantKind: KindUnauthorized, wantField: validate.FieldToken},
		{status: 403, wantKind: KindUnauthorized, wantField: validate.FieldToken},
		{status: 404, wantKind: KindNotFound, wantField: validate.FieldServerURL},
		{status: 408, wantKind: KindTimeout, wantField: validate.FieldServerURL},
		{status: 429, wantKind: KindRateLimited, wantField: validate.FieldNone},
		{status: 502, wantKind: KindGateway, wantField: validate.FieldServerURL},
		{status: 503, wantKind: KindServiceUnavailable, wantField: validate.FieldServerURL},
		{status: 504, wantKind: KindTimeout, wantField: validate.FieldServerURL},
		{status: 500, wantKind: KindServer, wantField: validate.FieldNone},
		{status: 599, wantKind: KindServer, wantField: validate.FieldNone},
		{status: 0, wantKind: KindNetwork, wantField: validate.FieldServerURL},
		{status: 418, wantKind: KindGeneric, wantField: validate.FieldNone},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			got := Map(&HTTPError{Status: tt.status, Message: "boom"})

			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", got.Field, tt.wantField)
			}
			if got.Message == "" {
				t.Error("Message should never be empty for a failure")
			}
		})
	}
}

func TestMap_ApplicationCodesOverrideStatus(t *testing.T) {
	got := Map(&HTTPError{Status: 500, Code: CodeBadResponse, Message: "garbage body"})
	if got.Kind != KindBadResponse {
		t.Errorf("Kind = %v, want %v", got.Kind, KindBadResponse)
	}
	if got.Field != validate.FieldServerURL {
		t.Errorf("Field = %q, want %q", got.Field, validate.FieldServerURL)
	}

	got = Map(&HTTPError{Status: 500, Code: CodeRepositoryList})
	if got.Kind != KindRepositoryList {
		t.Errorf("Kind = %v, want %v", got.Kind, KindRepositoryList)
	}
	if got.Field != validate.FieldNone {
		t.Errorf("Field = %q, want banner-only attribution", got.Field)
	}
}

func TestMap_TransportErrors(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		got := Map(context.Canceled)
		if got.Kind != KindCancelled {
			t.Errorf("Kind = %v, want %v", got.Kind, KindCancelled)
		}
	})

	t.Run("wrapped cancelled", func(t *testing.T) {
		got := Map(fmt.Errorf("do request: %w", context.Canceled))
		if got.Kind != KindCancelled {
			t.Errorf("Kind = %v, want %v", got.Kind, KindCancelled)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		got := Map(context.DeadlineExceeded)
		if got.Kind != KindTimeout {
			t.Errorf("Kind = %v, want %v", got.Kind, KindTimeout)
		}
	})

	t.Run("net timeout", func(t *testing.T) {
		var err error = &fakeNetError{timeout: true}
		got := Map(err)
		if got.Kind != KindTimeout {
			t.Errorf("Kind = %v, want %v", got.Kind, KindTimeout)
		}
	})

	t.Run("net refused", func(t *testing.T) {
		got := Map(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
		if got.Kind != KindNetwork {
			t.Errorf("Kind = %v, want %v", got.Kind, KindNetwork)
		}
		if got.Field != validate.FieldServerURL {
			t.Errorf("Field = %q, want %q", got.Field, validate.FieldServerURL)
		}
	})

	t.Run("unknown error", func(t *testing.T) {
		got := Map(errors.New("something odd"))
		if got.Kind != KindGeneric {
			t.Errorf("Kind = %v, want %v", got.Kind, KindGeneric)
		}
		if got.Field != validate.FieldNone {
			t.Errorf("Field = %q, want no attribution", got.Field)
		}
	})
}

func TestMap_Total(t *testing.T) {
	// Map must classify anything without panicking, including nil.
	inputs := []error{
		nil,
		errors.New(""),
		&HTTPError{},
		&HTTPError{Status: -1},
		&HTTPError{Status: 1000},
		fmt.Errorf("wrap: %w", &HTTPError{Status: 503}),
		&net.DNSError{Err: "no such host", Name: "flow.example.com", IsTimeout: false},
	}

	for i, err := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Map panicked on input %d: %v", i, r)
				}
			}()
			_ = Map(err)
		}()
	}

	// And a real expired context error from the wild.
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if got := Map(ctx.Err()); got.Kind != KindTimeout {
		t.Errorf("expired context Kind = %v, want %v", got.Kind, KindTimeout)
	}
}
