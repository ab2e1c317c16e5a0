package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ChainHash computes the hex-encoded SHA-256 hash linking an entry into its
// state's hash chain. The hash covers the previous hash, the execution id,
// the state id, and the JSON encoding of the change-set, so any alteration
// of a recorded entry breaks every later link.
func ChainHash(previousHash string, e *Entry) string {
	h := sha256.New()
	h.Write([]byte(previousHash))
	h.Write([]byte(e.ExecutionID))
	h.Write([]byte(e.StateID))
	if e.Changes != nil {
		changes, _ := json.Marshal(e.Changes)
		h.Write(changes)
	}
	return hex.EncodeToString(h.Sum(nil))
}
