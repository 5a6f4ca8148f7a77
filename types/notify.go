package types

const (
	NotifyTypeStateChanged = "state_changed"
	NotifyTypeUploadStart  = "upload_start"
	NotifyTypeUploadEnd    = "upload_end"
)

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // "state_changed", "upload_start", "upload_end"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

// NotifyHub receives every notification the upload manager emits.
type NotifyHub interface {
	Broadcast(notification *Notification)
}
