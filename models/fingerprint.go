package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// fingerprintMessageLen is the number of leading message characters
// (Unicode code points) folded
// into a fingerprint. Changing it breaks suppression across tool
// versions.
const fingerprintMessageLen = 50

// fingerprintLen is the number of base64 characters kept from the
// encoded tuple.
const fingerprintLen = 16

// Fingerprint derives the stable cross-run identity of a violation at
// (rule, filePath, line). It is deliberately insensitive to severity,
// confidence, and message tail so that cosmetic message changes don't
// orphan an existing suppression.
//
// Algorithm (must stay bit-for-bit reproducible across implementations):
//  1. compose the ordered tuple (rule, filePath, line-or-"unknown", first
//     50 characters of message)
//  2. join with the literal separator "|"
//  3. base64-encode the UTF-8 bytes (standard alphabet, with padding)
//  4. truncate to the first 16 characters
func Fingerprint(rule, filePath string, line int, message string) string {
	lineStr := "unknown"
	if line > 0 {
		lineStr = fmt.Sprintf("%d", line)
	}

	msg := message
	if runes := []rune(msg); len(runes) > fingerprintMessageLen {
		msg = string(runes[:fingerprintMessageLen])
	}

	tuple := strings.Join([]string{rule, filePath, lineStr, msg}, "|")
	encoded := base64.StdEncoding.EncodeToString([]byte(tuple))

	if len(encoded) > fingerprintLen {
		return encoded[:fingerprintLen]
	}
	return encoded
}

// FingerprintOf derives the fingerprint for a Violation whose FilePath
// may be overridden by an explicit filePath (the Violation's own
// FilePath is used when filePath is empty), matching both call shapes
// callers need: deriving from a violation alone, or from a violation
// plus the path it was found under.
func FingerprintOf(v Violation, filePath string) string {
	if filePath == "" {
		filePath = v.FilePath
	}
	return Fingerprint(v.Rule, filePath, v.Line, v.Message)
}
