package uploader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/moyoez/deeddesk-go/types"
)

const (
	ValidationMessage = "select at least one image"
	TransportMessage  = "the upload could not be completed, check the connection and try again"
)

var ErrMalformedJSON = errors.New("response declared application/json but could not be parsed")

// ServerFailureMessage is shown for a non-2xx response without a usable server message.
func ServerFailureMessage(status int) string {
	return fmt.Sprintf("server request failed (HTTP %d)", status)
}

// IsJSONContentType reports whether the declared content type selects JSON parsing.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// NormalizeBody parses body as JSON when the content type says so, otherwise keeps it as text.
// A JSON declaration is trusted: a body that does not parse is an error, never text.
func NormalizeBody(contentType string, body []byte) (types.Payload, error) {
	if !IsJSONContentType(contentType) {
		return types.TextPayload(string(body)), nil
	}
	var v any
	if err := sonic.Unmarshal(body, &v); err != nil {
		return types.Payload{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return types.JSONPayload(v), nil
}

// settlement is the outcome of one request, ready to be applied to the controller.
type settlement struct {
	state  types.SubmitState
	reason types.FailureReason
	detail string
}

// settle turns a transport result into Succeeded or Failed.
func settle(resp *types.RawResponse, sendErr error) settlement {
	if sendErr != nil {
		return settlement{
			state:  types.FailedState(TransportMessage),
			reason: types.ReasonTransport,
			detail: sendErr.Error(),
		}
	}

	payload, err := NormalizeBody(resp.ContentType, resp.Body)
	if err != nil {
		return settlement{
			state:  types.FailedState(TransportMessage),
			reason: types.ReasonTransport,
			detail: err.Error(),
		}
	}

	if !resp.OK() {
		message := serverMessage(payload)
		if message == "" {
			message = ServerFailureMessage(resp.StatusCode)
		}
		return settlement{
			state:  types.FailedState(message),
			reason: types.ReasonServer,
			detail: resp.Status,
		}
	}
	return settlement{state: types.SucceededState(payload)}
}

// serverMessage picks "message", then "error", from a JSON object body. The first key
// present with a non-null value wins, even when it is empty. Numbers and booleans are
// shown as written, objects and arrays as compact JSON.
func serverMessage(payload types.Payload) string {
	if payload.Kind != types.PayloadJSON {
		return ""
	}
	obj, ok := payload.JSON.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		v, present := obj[key]
		if !present || v == nil {
			continue
		}
		return messageText(v)
	}
	return ""
}

func messageText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		out, err := sonic.MarshalString(t)
		if err != nil {
			return ""
		}
		return out
	}
}
