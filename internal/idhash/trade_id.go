package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(legislator|ticker|transaction_date|type_text)
// The inputs are the deduplication identity, so the same disclosure gets the
// same ID across runs and sources. Returns hex-encoded hash (64 characters).
func ComputeTradeID(legislator, ticker, transactionDate, typeText string) string {
	data := strings.Join([]string{legislator, ticker, transactionDate, typeText}, "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
