package types

// Snapshot is everything the display layer needs to render the upload page.
type Snapshot struct {
	Previews          []PreviewDescriptor `json:"previews"`
	FileCount         int                 `json:"fileCount"`
	TotalSize         int64               `json:"totalSize"`
	TotalSizeText     string              `json:"totalSizeText"`
	State             SubmitState         `json:"state"`
	ValidationMessage string              `json:"validationMessage,omitempty"`
	PayloadText       string              `json:"payloadText,omitempty"`
	UploadURL         string              `json:"uploadUrl"`
	CanSubmit         bool                `json:"canSubmit"`
	LastReceiptID     string              `json:"lastReceiptId,omitempty"`
}

// ErrorMessage is the single inline error line: a validation message or the Failed message.
func (s Snapshot) ErrorMessage() string {
	if s.ValidationMessage != "" {
		return s.ValidationMessage
	}
	if s.State.Phase == PhaseFailed {
		return s.State.Message
	}
	return ""
}
