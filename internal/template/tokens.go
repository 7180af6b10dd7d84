package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens recognized by the substitution engine. Both the
// all-lowercase and all-uppercase spellings are accepted; nothing else is.
const (
	TokenName      = "{name}"
	TokenNameUpper = "{NAME}"
	TokenPRN       = "{prn}"
	TokenPRNUpper  = "{PRN}"
)

var (
	anyCaseName = regexp.MustCompile(`\{[nN][aA][mM][eE]\}`)
	anyCasePRN  = regexp.MustCompile(`\{[pP][rR][nN]\}`)
)

// ValidationResult reports whether a template's text carries the required
// placeholder tokens, with remediation hints when it does not.
type ValidationResult struct {
	OK    bool     `json:"ok"`
	Hints []string `json:"hints,omitempty"`
}

// ValidateText scans extracted template text for the name and prn tokens.
// A token present only in a mixed-case spelling (e.g. "{Name}") is
// reported as a formatting problem, distinct from a missing token, so the
// author can fix the casing instead of re-adding the placeholder.
//
// The check is advisory: substitution leaves unrecognized text untouched,
// so a failed validation never blocks generation server-side.
func ValidateText(text string) ValidationResult {
	var hints []string
	hints = appendTokenHint(hints, text, "name", TokenName, TokenNameUpper, anyCaseName)
	hints = appendTokenHint(hints, text, "prn", TokenPRN, TokenPRNUpper, anyCasePRN)
	return ValidationResult{OK: len(hints) == 0, Hints: hints}
}

func appendTokenHint(hints []string, text, label, lower, upper string, anyCase *regexp.Regexp) []string {
	if strings.Contains(text, lower) || strings.Contains(text, upper) {
		return hints
	}
	if m := anyCase.FindString(text); m != "" {
		return append(hints, fmt.Sprintf("found %q: the %s token must be spelled %s or %s", m, label, lower, upper))
	}
	return append(hints, fmt.Sprintf("template is missing the %s token: add %s or %s where the recipient's %s should appear", label, lower, upper, label))
}
