package types

import "time"

// SubmitPhase is the active state of the submit controller.
type SubmitPhase string

const (
	PhaseIdle      SubmitPhase = "idle"
	PhaseUploading SubmitPhase = "uploading"
	PhaseSucceeded SubmitPhase = "succeeded"
	PhaseFailed    SubmitPhase = "failed"
)

// SubmitState is exactly one of Idle, Uploading, Succeeded(payload) or Failed(message).
type SubmitState struct {
	Phase   SubmitPhase `json:"phase"`
	Payload *Payload    `json:"payload,omitempty"` // only when Succeeded
	Message string      `json:"message,omitempty"` // only when Failed
}

func IdleState() SubmitState {
	return SubmitState{Phase: PhaseIdle}
}

func UploadingState() SubmitState {
	return SubmitState{Phase: PhaseUploading}
}

func SucceededState(payload Payload) SubmitState {
	return SubmitState{Phase: PhaseSucceeded, Payload: &payload}
}

func FailedState(message string) SubmitState {
	return SubmitState{Phase: PhaseFailed, Message: message}
}

// FailureReason classifies why a submit did not succeed.
type FailureReason string

const (
	ReasonNone       FailureReason = ""
	ReasonValidation FailureReason = "validation" // nothing selected, no request sent
	ReasonBusy       FailureReason = "busy"       // a request is already in flight
	ReasonTransport  FailureReason = "transport"  // network failure or unparsable JSON body
	ReasonServer     FailureReason = "server"     // non-2xx status
	ReasonClosed     FailureReason = "closed"     // manager already torn down
)

// SubmitResult is what a submit trigger returns. Reason is ReasonNone on success
// and while a background submit is still running.
type SubmitResult struct {
	State     SubmitState   `json:"state"`
	Reason    FailureReason `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	ReceiptID string        `json:"receiptId,omitempty"`
}

// RawResponse is a settled HTTP response with its body fully read.
type RawResponse struct {
	StatusCode  int
	Status      string
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UploadReceipt records one settled submit.
type UploadReceipt struct {
	ID         string         `json:"id"`
	UploadURL  string         `json:"uploadUrl"`
	FileCount  int            `json:"fileCount"`
	TotalBytes int64          `json:"totalBytes"`
	StatusCode int            `json:"statusCode,omitempty"`
	Outcome    SubmitPhase    `json:"outcome"`
	Reason     FailureReason  `json:"reason,omitempty"`
	Message    string         `json:"message,omitempty"`
	Detail     string         `json:"detail,omitempty"` // underlying transport error, if any
	Payload    *Payload       `json:"payload,omitempty"`
	Summary    *UploadSummary `json:"summary,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// UploadSummary is the per-file digest of an extraction response shaped like
// {"results":[{"filename":..,"text":..,"saved_as":..}],"batch_folder":..,"total_processed":..}.
type UploadSummary struct {
	TotalProcessed int                 `json:"total_processed"`
	BatchFolder    string              `json:"batch_folder,omitempty"`
	Results        []UploadSummaryItem `json:"results"`
}

type UploadSummaryItem struct {
	FileName string `json:"filename"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
	SavedAs  string `json:"saved_as,omitempty"`
}

// Failed counts items that carry an error.
func (s *UploadSummary) Failed() int {
	n := 0
	for _, item := range s.Results {
		if item.Error != "" {
			n++
		}
	}
	return n
}
