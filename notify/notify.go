// Package notify fans manager notifications out to the WebSocket hub and, for
// upload_end, to a local Unix socket listener.
package notify

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
)

// NotifyWriteChunkSize is the chunk size when writing payload to Unix socket (avoid large single write).
// It is also the largest payload accepted.
const NotifyWriteChunkSize = 32 * 1024 // 32KB

// MaxNotifyMessageLen caps the server message carried in upload_end.
const MaxNotifyMessageLen = 512

// UnixSocketTimeout is the timeout for Unix socket operations
var UnixSocketTimeout = 3 * time.Second

// Dispatcher implements types.NotifyHub.
type Dispatcher struct {
	hub        types.NotifyHub
	socketPath string
}

// NewDispatcher forwards everything to hub (may be nil) and upload_end to socketPath
// when it is not empty.
func NewDispatcher(hub types.NotifyHub, socketPath string) *Dispatcher {
	return &Dispatcher{hub: hub, socketPath: socketPath}
}

func (d *Dispatcher) Broadcast(notification *types.Notification) {
	if notification == nil {
		return
	}
	if d.hub != nil {
		d.hub.Broadcast(notification)
	}
	if d.socketPath == "" || notification.Type != types.NotifyTypeUploadEnd {
		return
	}
	if err := SendNotification(compactUploadEnd(notification), d.socketPath); err != nil {
		tool.DefaultLogger.Warnf("[Notify] Failed to send upload_end to %s: %v", d.socketPath, err)
	}
}

// compactUploadEnd replaces the full receipt with a bounded digest; the payload can be
// arbitrarily large and stays available at /uploads/:id.
func compactUploadEnd(n *types.Notification) *types.Notification {
	out := &types.Notification{
		Type:    n.Type,
		Title:   n.Title,
		Message: truncate(n.Message, MaxNotifyMessageLen),
		Data:    map[string]any{},
	}
	receipt, ok := n.Data["receipt"].(types.UploadReceipt)
	if !ok {
		return out
	}
	out.Data["receiptId"] = receipt.ID
	out.Data["outcome"] = receipt.Outcome
	out.Data["reason"] = receipt.Reason
	out.Data["uploadUrl"] = receipt.UploadURL
	out.Data["fileCount"] = receipt.FileCount
	out.Data["totalBytes"] = receipt.TotalBytes
	out.Data["statusCode"] = receipt.StatusCode
	if receipt.Summary != nil {
		out.Data["totalProcessed"] = receipt.Summary.TotalProcessed
		out.Data["failedFiles"] = receipt.Summary.Failed()
		out.Data["batchFolder"] = receipt.Summary.BatchFolder
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SendNotification writes notification to the Unix socket at socketPath as a 4-byte
// little-endian length followed by JSON, then reads an optional JSON reply.
func SendNotification(notification *types.Notification, socketPath string) error {
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return fmt.Errorf("unix socket not found: %s", socketPath)
	}

	payload := []byte("{}")
	if notification != nil {
		var err error
		payload, err = sonic.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to serialize notification data: %v", err)
		}
	}
	if len(payload) > NotifyWriteChunkSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), NotifyWriteChunkSize)
	}

	conn, err := net.DialTimeout("unix", socketPath, UnixSocketTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to Unix socket %s: %v", socketPath, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close Unix socket connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(UnixSocketTimeout)); err != nil {
		tool.DefaultLogger.Errorf("Failed to set deadline: %v", err)
	}

	lengthBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthBuf, uint32(len(payload)))
	if _, err := conn.Write(lengthBuf); err != nil {
		return fmt.Errorf("failed to write length to Unix socket: %v", err)
	}
	tool.DefaultLogger.Debugf("Sending notification to Unix socket (len=%d)", len(payload))
	for off := 0; off < len(payload); {
		end := min(off+NotifyWriteChunkSize, len(payload))
		nw, err := conn.Write(payload[off:end])
		if err != nil {
			return fmt.Errorf("failed to write payload to Unix socket: %v", err)
		}
		off += nw
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read response from Unix socket: %v", err)
	}
	if n > 0 {
		var response map[string]any
		if err := sonic.Unmarshal(buf[:n], &response); err != nil {
			tool.DefaultLogger.Debugf("Unix socket response (raw): %s", string(buf[:n]))
		} else if errMsg, ok := response["error"].(string); ok && errMsg != "" {
			return fmt.Errorf("server returned error: %s", errMsg)
		}
	}

	if notification != nil {
		tool.DefaultLogger.Infof("[UnixSocket] Notification sent: %s - %s", notification.Type, notification.Title)
	}
	return nil
}
