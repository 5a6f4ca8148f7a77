package uploader

import (
	"github.com/bytedance/sonic"

	"github.com/moyoez/deeddesk-go/types"
)

// Summarize extracts the per-file digest from an extraction response. It returns nil
// for text payloads and for JSON that does not carry a results list.
func Summarize(payload types.Payload) *types.UploadSummary {
	if payload.Kind != types.PayloadJSON {
		return nil
	}
	obj, ok := payload.JSON.(map[string]any)
	if !ok {
		return nil
	}
	if _, ok := obj["results"].([]any); !ok {
		return nil
	}
	raw, err := sonic.Marshal(obj)
	if err != nil {
		return nil
	}
	var summary types.UploadSummary
	if err := sonic.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	if summary.TotalProcessed == 0 {
		summary.TotalProcessed = len(summary.Results)
	}
	return &summary
}
