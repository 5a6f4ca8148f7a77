package uploader

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/types"
)

func TestIsJSONContentType(t *testing.T) {
	cases := map[string]bool{
		"application/json":                true,
		"Application/JSON; charset=utf-8": true,
		"application/problem+json":        false,
		"text/plain":                      false,
		"":                                false,
	}
	for ct, want := range cases {
		assert.Equalf(t, want, IsJSONContentType(ct), "content type %q", ct)
	}
}

func TestNormalizeBody(t *testing.T) {
	p, err := NormalizeBody("application/json", []byte(`{"ok":true,"n":2}`))
	require.NoError(t, err)
	assert.Equal(t, types.PayloadJSON, p.Kind)
	assert.Equal(t, map[string]any{"ok": true, "n": float64(2)}, p.JSON)

	p, err = NormalizeBody("text/plain", []byte(`{"looks":"like json"}`))
	require.NoError(t, err)
	assert.Equal(t, types.TextPayload(`{"looks":"like json"}`), p)

	p, err = NormalizeBody("", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TextPayload(""), p)

	_, err = NormalizeBody("application/json", []byte("done"))
	assert.True(t, errors.Is(err, ErrMalformedJSON))
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name    string
		resp    *types.RawResponse
		sendErr error
		phase   types.SubmitPhase
		reason  types.FailureReason
		message string
	}{
		{
			name:   "json success",
			resp:   &types.RawResponse{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)},
			phase:  types.PhaseSucceeded,
			reason: types.ReasonNone,
		},
		{
			name:   "text success with 201",
			resp:   &types.RawResponse{StatusCode: 201, ContentType: "text/plain", Body: []byte("done")},
			phase:  types.PhaseSucceeded,
			reason: types.ReasonNone,
		},
		{
			name:    "message wins over error",
			resp:    &types.RawResponse{StatusCode: 500, ContentType: "application/json", Body: []byte(`{"message":"too large","error":"ignored"}`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: "too large",
		},
		{
			name:    "error when message is null",
			resp:    &types.RawResponse{StatusCode: 422, ContentType: "application/json", Body: []byte(`{"message":null,"error":"bad image"}`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: "bad image",
		},
		{
			name:    "numeric message shown as written",
			resp:    &types.RawResponse{StatusCode: 413, ContentType: "application/json", Body: []byte(`{"message":413,"error":"too big"}`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: "413",
		},
		{
			name:    "object error shown as json",
			resp:    &types.RawResponse{StatusCode: 400, ContentType: "application/json", Body: []byte(`{"error":{"code":"E_SIZE"}}`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: `{"code":"E_SIZE"}`,
		},
		{
			name:    "empty message falls back",
			resp:    &types.RawResponse{StatusCode: 400, ContentType: "application/json", Body: []byte(`{"message":"","error":"ignored"}`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: ServerFailureMessage(400),
		},
		{
			name:    "json array body",
			resp:    &types.RawResponse{StatusCode: 503, ContentType: "application/json", Body: []byte(`["down"]`)},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: ServerFailureMessage(503),
		},
		{
			name:    "text error body",
			resp:    &types.RawResponse{StatusCode: 404, ContentType: "text/html", Body: []byte("not found")},
			phase:   types.PhaseFailed,
			reason:  types.ReasonServer,
			message: ServerFailureMessage(http.StatusNotFound),
		},
		{
			name:    "malformed json",
			resp:    &types.RawResponse{StatusCode: 200, ContentType: "application/json", Body: []byte("{")},
			phase:   types.PhaseFailed,
			reason:  types.ReasonTransport,
			message: TransportMessage,
		},
		{
			name:    "transport error",
			sendErr: errors.New("connection refused"),
			phase:   types.PhaseFailed,
			reason:  types.ReasonTransport,
			message: TransportMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := settle(tt.resp, tt.sendErr)
			assert.Equal(t, tt.phase, out.state.Phase)
			assert.Equal(t, tt.reason, out.reason)
			if tt.phase == types.PhaseFailed {
				assert.Equal(t, tt.message, out.state.Message)
				assert.Nil(t, out.state.Payload)
			} else {
				assert.NotNil(t, out.state.Payload)
			}
		})
	}
}

func TestSettle_TransportDetailKept(t *testing.T) {
	out := settle(nil, errors.New("dial tcp 127.0.0.1:8000: connection refused"))
	assert.Equal(t, TransportMessage, out.state.Message)
	assert.Contains(t, out.detail, "connection refused")
}
