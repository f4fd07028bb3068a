package api

import (
	"testing"

	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
)

func TestUnmarshalEnvelope(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("plain envelope", func(t *testing.T) {
		var out payload
		if err := unmarshalEnvelope([]byte(`{"data":{"name":"revuelta"}}`), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Name != "revuelta" {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("one inner rewrap accepted", func(t *testing.T) {
		var out []payload
		if err := unmarshalEnvelope([]byte(`{"data":{"data":[{"name":"queso"}]}}`), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 1 || out[0].Name != "queso" {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("missing data key", func(t *testing.T) {
		var out payload
		err := unmarshalEnvelope([]byte(`{"name":"revuelta"}`), &out)
		if !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("mismatched shape", func(t *testing.T) {
		var out []payload
		err := unmarshalEnvelope([]byte(`{"data":{"name":"not a list"}}`), &out)
		if !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("not json", func(t *testing.T) {
		var out payload
		err := unmarshalEnvelope([]byte(`<html>gateway error</html>`), &out)
		if !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
			t.Fatalf("expected decode error, got %v", err)
		}
	})
}

func TestErrorFromResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		code    pkgerrors.Code
		message string
	}{
		{"string error body", 401, `{"error":"token revoked"}`, pkgerrors.CodeUnauthorized, "token revoked"},
		{"structured error body", 404, `{"error":{"code":"NOT_FOUND","message":"order not found"}}`, pkgerrors.CodeNotFound, "order not found"},
		{"message fallback", 409, `{"message":"duplicate email"}`, pkgerrors.CodeConflict, "duplicate email"},
		{"generic 4xx is validation", 422, `{"error":"quantity must be positive"}`, pkgerrors.CodeValidation, "quantity must be positive"},
		{"5xx is server", 503, ``, pkgerrors.CodeServer, pkgerrors.MetadataFor(pkgerrors.CodeServer).PublicMessage},
		{"unparseable body falls back", 500, `not json`, pkgerrors.CodeServer, pkgerrors.MetadataFor(pkgerrors.CodeServer).PublicMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := errorFromResponse(tc.status, []byte(tc.body))
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
			if got := pkgerrors.UserMessage(err); got != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, got)
			}
		})
	}
}
