package models

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/deeddesk-go/types"
)

// DefaultReceiptTTL is how long a settled upload stays queryable.
const DefaultReceiptTTL = time.Hour

var (
	receiptMu sync.RWMutex
	receipts  = ttlworker.NewCache[string, *types.UploadReceipt](DefaultReceiptTTL)
)

// InitReceiptCache replaces the receipt cache with one using ttl. Receipts already stored are dropped.
func InitReceiptCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultReceiptTTL
	}
	receiptMu.Lock()
	defer receiptMu.Unlock()
	receipts = ttlworker.NewCache[string, *types.UploadReceipt](ttl)
}

// StoreReceipt caches a copy of receipt under its id.
func StoreReceipt(receipt types.UploadReceipt) {
	if receipt.ID == "" {
		return
	}
	receiptMu.RLock()
	defer receiptMu.RUnlock()
	receipts.Set(receipt.ID, &receipt)
}

func LookupReceipt(id string) (types.UploadReceipt, bool) {
	receiptMu.RLock()
	defer receiptMu.RUnlock()
	receipt := receipts.Get(id)
	if receipt == nil {
		return types.UploadReceipt{}, false
	}
	return *receipt, true
}
