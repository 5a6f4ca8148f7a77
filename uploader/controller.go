package uploader

import (
	"errors"

	"github.com/moyoez/deeddesk-go/types"
)

var (
	ErrNoFiles          = errors.New(ValidationMessage)
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrClosed           = errors.New("upload manager is closed")
)

// Controller is the submit state machine. Succeeded and Failed stay until the next
// submit or reset; selection edits never move it.
type Controller struct {
	state      types.SubmitState
	validation string
}

func NewController() *Controller {
	return &Controller{state: types.IdleState()}
}

func (c *Controller) State() types.SubmitState {
	return c.state
}

// Validation is the inline message from the last rejected submit, if any.
func (c *Controller) Validation() string {
	return c.validation
}

// Begin applies a submit trigger for a selection of n files. On nil error the
// controller is Uploading with prior error and response cleared.
func (c *Controller) Begin(n int) error {
	if c.state.Phase == types.PhaseUploading {
		return ErrUploadInProgress
	}
	if n == 0 {
		c.validation = ValidationMessage
		return ErrNoFiles
	}
	c.validation = ""
	c.state = types.UploadingState()
	return nil
}

// Settle moves Uploading to the settled state. It is ignored in any other phase.
func (c *Controller) Settle(state types.SubmitState) bool {
	if c.state.Phase != types.PhaseUploading {
		return false
	}
	if state.Phase != types.PhaseSucceeded && state.Phase != types.PhaseFailed {
		return false
	}
	c.state = state
	return true
}

// Reset returns a settled or idle controller to Idle and clears the inline message.
func (c *Controller) Reset() bool {
	if c.state.Phase == types.PhaseUploading {
		return false
	}
	c.state = types.IdleState()
	c.validation = ""
	return true
}

// ReasonFor maps a Begin error to the reported reason.
func ReasonFor(err error) types.FailureReason {
	switch {
	case err == nil:
		return types.ReasonNone
	case errors.Is(err, ErrNoFiles):
		return types.ReasonValidation
	case errors.Is(err, ErrUploadInProgress):
		return types.ReasonBusy
	case errors.Is(err, ErrClosed):
		return types.ReasonClosed
	default:
		return types.ReasonTransport
	}
}

// ErrFor is the inverse of ReasonFor for rejections. Settled failures carry no error.
func ErrFor(reason types.FailureReason) error {
	switch reason {
	case types.ReasonValidation:
		return ErrNoFiles
	case types.ReasonBusy:
		return ErrUploadInProgress
	case types.ReasonClosed:
		return ErrClosed
	default:
		return nil
	}
}
