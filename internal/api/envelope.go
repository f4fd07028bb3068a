package api

import (
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/dmcastellon/pupusapos/pkg/errors"
	"github.com/dmcastellon/pupusapos/pkg/types"
)

// unmarshalEnvelope decodes a `{ "data": ... }` success body into out.
// Some list endpoints historically wrap the payload a second time
// (`{"data":{"data":[...]}}`); exactly one inner re-wrap is accepted.
// Anything else is a decode error, not silently-empty data.
func unmarshalEnvelope(raw []byte, out any) error {
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "response is not a data envelope")
	}
	if envelope.Data == nil {
		return pkgerrors.New(pkgerrors.CodeDecode, "response envelope has no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err == nil {
		return nil
	}
	var inner types.SuccessEnvelope
	if innerErr := json.Unmarshal(envelope.Data, &inner); innerErr == nil && inner.Data != nil {
		if err := json.Unmarshal(inner.Data, out); err == nil {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeDecode, "response data has an unexpected shape")
}

// errorFromResponse maps a non-2xx status and body onto the client error
// taxonomy, passing server-reported messages through verbatim.
func errorFromResponse(status int, body []byte) error {
	message := serverMessage(body)

	code := pkgerrors.CodeServer
	switch {
	case status == http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		code = pkgerrors.CodeConflict
	case status >= 400 && status < 500:
		code = pkgerrors.CodeValidation
	}
	if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	return pkgerrors.New(code, message)
}

// serverMessage digs the human-readable message out of the two error
// body shapes the backend emits: {"error":"..."} / {"error":{"code","message"}}
// plus a top-level {"message":"..."} fallback.
func serverMessage(body []byte) string {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Error) > 0 {
		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil {
			return strings.TrimSpace(plain)
		}
		var structured types.APIError
		if err := json.Unmarshal(envelope.Error, &structured); err == nil && structured.Message != "" {
			return strings.TrimSpace(structured.Message)
		}
	}
	return strings.TrimSpace(envelope.Message)
}
