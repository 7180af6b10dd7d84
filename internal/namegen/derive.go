// Package namegen derives human-readable output filenames for generated
// documents from the uploaded template's name and the creator/recipient
// identity pair.
package namegen

import (
	"path/filepath"
	"strings"
)

// OutputExtension is appended to every derived name.
const OutputExtension = ".pdf"

// Derive computes the output filename for a generated document. The
// creator's identifier and name are swapped for the recipient's wherever
// they appear in the template name (case-insensitive); if either of the
// recipient's name or identifier still does not appear afterwards, it is
// appended. The result always contains both, is never empty, and is
// deterministic in its inputs.
func Derive(originalName, creatorName, creatorID, recipientName, recipientID string) string {
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	recipient := strings.Join(strings.Fields(recipientName), "")

	if creatorID != "" && containsFold(base, creatorID) {
		base = replaceFold(base, creatorID, recipientID)
	}

	switch {
	case creatorName != "" && containsFold(base, creatorName):
		base = replaceFold(base, creatorName, recipient)
	default:
		if first := firstWord(creatorName); first != "" && containsFold(base, first) {
			base = replaceFold(base, first, recipient)
		}
	}

	if recipient != "" && !containsFold(base, recipient) {
		base += "_" + recipient
	}
	if recipientID != "" && !containsFold(base, recipientID) {
		base += "_" + recipientID
	}

	base = collapseSeparators(base)
	base = strings.Trim(base, "_- .")
	if base == "" {
		base = "document"
	}
	return base + OutputExtension
}

// collapseSeparators reduces a run of the same separator rune to a
// single occurrence. Runs of differing separators are left as written.
func collapseSeparators(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	var prev rune
	for _, r := range s {
		if r == prev && isSeparator(r) {
			continue
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', ' ':
		return true
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// replaceFold replaces every case-insensitive occurrence of old in s
// with new, preserving the surrounding text as written.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	target := strings.ToLower(old)

	var sb strings.Builder
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		sb.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(target):]
	}
}
