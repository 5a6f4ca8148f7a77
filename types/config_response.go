package types

// ConfigResponse is the JSON shape for GET/PATCH /api/self/v1/config.
type ConfigResponse struct {
	APIBaseURL            string            `json:"apiBaseUrl"`
	UploadEndpoint        string            `json:"uploadEndpoint"`
	UploadURL             string            `json:"uploadUrl"` // effective, after joining
	ListenPort            int               `json:"listenPort"`
	RequestTimeoutSeconds int               `json:"requestTimeoutSeconds"`
	FormFields            map[string]string `json:"formFields"`
	ReceiptTTLMinutes     int               `json:"receiptTTLMinutes"`
	SubmitRatePerSecond   float64           `json:"submitRatePerSecond"`
	NotifySocketEnabled   bool              `json:"notifySocketEnabled"`
}

// ConfigPatchRequest is the JSON body for PATCH /api/self/v1/config (partial update, all fields optional).
// Only the upload target and the extra form fields can change at runtime.
type ConfigPatchRequest struct {
	APIBaseURL     *string            `json:"apiBaseUrl"`
	UploadEndpoint *string            `json:"uploadEndpoint"`
	FormFields     *map[string]string `json:"formFields"`
}
