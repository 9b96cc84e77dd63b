package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
)

// warnedTokens dedupes the SECURITY WARNING log (spec §6: "the first
// time it does so per token"). Grows for the life of the process; a
// migration aid is expected to be short-lived, not run forever.
var warnedTokens sync.Map

func warnUnverified(token string) {
	if _, already := warnedTokens.LoadOrStore(tokenFingerprint(token), true); already {
		return
	}
	slog.Warn("SECURITY WARNING: trustUnverified decoded a JWT without verifying its signature",
		"tokenFingerprint", tokenFingerprint(token))
}

// tokenFingerprint avoids logging the raw token: a short hash of the
// whole token, distinct per token, is enough to dedupe repeat calls.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
