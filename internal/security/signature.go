package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// StatementSigner signs outgoing learning statements with HMAC-SHA256 so
// the record store can verify they originated here. Signatures are
// deterministic for a given payload and secret, so no shared state is
// required across replicas.
type StatementSigner struct {
	secret []byte
}

// NewStatementSigner creates a new HMAC-based statement signer
func NewStatementSigner(secret string) *StatementSigner {
	return &StatementSigner{secret: []byte(secret)}
}

// Sign returns the hex-encoded signature for the given payload
func (s *StatementSigner) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the valid signature for payload
func (s *StatementSigner) Verify(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := s.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
