package notify

import (
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/types"
)

type captureHub struct {
	got []*types.Notification
}

func (h *captureHub) Broadcast(n *types.Notification) {
	h.got = append(h.got, n)
}

// listen starts a Unix socket peer that decodes one framed notification per connection
// and answers with reply.
func listen(t *testing.T, reply string) (string, <-chan types.Notification) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received := make(chan types.Notification, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			lengthBuf := make([]byte, 4)
			if _, err := io.ReadFull(conn, lengthBuf); err == nil {
				payload := make([]byte, binary.LittleEndian.Uint32(lengthBuf))
				if _, err := io.ReadFull(conn, payload); err == nil {
					var n types.Notification
					if sonic.Unmarshal(payload, &n) == nil {
						received <- n
					}
				}
			}
			_, _ = conn.Write([]byte(reply))
			_ = conn.Close()
		}
	}()
	return path, received
}

func TestDispatcher_UploadEndReachesSocket(t *testing.T) {
	path, received := listen(t, `{"ok":true}`)
	hub := &captureHub{}
	d := NewDispatcher(hub, path)

	d.Broadcast(&types.Notification{Type: types.NotifyTypeStateChanged})
	d.Broadcast(&types.Notification{
		Type:  types.NotifyTypeUploadEnd,
		Title: "Upload succeeded",
		Data: map[string]any{"receipt": types.UploadReceipt{
			ID:        "r-1",
			Outcome:   types.PhaseSucceeded,
			FileCount: 3,
			Payload:   &types.Payload{Kind: types.PayloadText, Text: "very long body"},
			Summary:   &types.UploadSummary{TotalProcessed: 3, Results: []types.UploadSummaryItem{{Error: "x"}}},
		}},
	})
	assert.Len(t, hub.got, 2)

	select {
	case n := <-received:
		assert.Equal(t, types.NotifyTypeUploadEnd, n.Type)
		assert.Equal(t, "r-1", n.Data["receiptId"])
		assert.Equal(t, float64(3), n.Data["fileCount"])
		assert.Equal(t, float64(1), n.Data["failedFiles"])
		assert.NotContains(t, n.Data, "payload")
	case <-time.After(2 * time.Second):
		t.Fatal("upload_end not delivered")
	}
	assert.Empty(t, received, "state_changed must not reach the socket")
}

func TestSendNotification_Errors(t *testing.T) {
	err := SendNotification(&types.Notification{Type: types.NotifyTypeUploadEnd}, filepath.Join(t.TempDir(), "absent.sock"))
	assert.ErrorContains(t, err, "unix socket not found")

	path, _ := listen(t, `{"error":"busy"}`)
	err = SendNotification(&types.Notification{Type: types.NotifyTypeUploadEnd}, path)
	assert.ErrorContains(t, err, "server returned error: busy")
}

func TestCompactUploadEnd_TruncatesMessage(t *testing.T) {
	long := make([]byte, MaxNotifyMessageLen+10)
	for i := range long {
		long[i] = 'a'
	}
	n := compactUploadEnd(&types.Notification{Type: types.NotifyTypeUploadEnd, Message: string(long)})
	assert.Len(t, n.Message, MaxNotifyMessageLen+3)
	assert.Empty(t, n.Data)
}
