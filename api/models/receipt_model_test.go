package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/types"
)

func TestReceiptCache(t *testing.T) {
	InitReceiptCache(time.Minute)

	_, ok := LookupReceipt("missing")
	assert.False(t, ok)

	StoreReceipt(types.UploadReceipt{ID: "r-1", FileCount: 2, Outcome: types.PhaseSucceeded})
	StoreReceipt(types.UploadReceipt{FileCount: 9})

	got, ok := LookupReceipt("r-1")
	require.True(t, ok)
	assert.Equal(t, 2, got.FileCount)
	assert.Equal(t, types.PhaseSucceeded, got.Outcome)

	_, ok = LookupReceipt("")
	assert.False(t, ok)
}
