package template

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// MaxTemplateSize is the upload bound for a template package.
const MaxTemplateSize = 5 << 20 // 5 MB

// entries inside the docx container that carry visible document text
var textEntry = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Substitute opens templateBytes as a zip-structured document package,
// replaces the name and prn placeholder tokens (both case forms) in every
// text-bearing entry, and returns the rewritten package. Tokens that do
// not appear are left alone — absent placeholders degrade to literal
// text, they do not fail the render.
//
// A package that cannot be opened as a zip is a malformed template; the
// returned error is not retryable.
func Substitute(templateBytes []byte, name, prn string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return nil, fmt.Errorf("malformed document package: %w", err)
	}

	replacer := strings.NewReplacer(
		TokenName, xmlEscaper.Replace(name),
		TokenNameUpper, xmlEscaper.Replace(name),
		TokenPRN, xmlEscaper.Replace(prn),
		TokenPRNUpper, xmlEscaper.Replace(prn),
	)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open package entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read package entry %s: %w", f.Name, err)
		}

		if textEntry.MatchString(f.Name) {
			data = []byte(replacer.Replace(string(data)))
		}

		hdr := &zip.FileHeader{Name: f.Name, Method: f.Method}
		hdr.Modified = f.Modified
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("write package entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write package entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize package: %w", err)
	}
	return out.Bytes(), nil
}

var xmlTag = regexp.MustCompile(`<[^>]*>`)

// ExtractText pulls the plain text out of a document package for token
// validation. Markup is stripped wholesale; this is good enough to scan
// for placeholder tokens, not a faithful text extraction.
func ExtractText(templateBytes []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return "", fmt.Errorf("malformed document package: %w", err)
	}

	var sb strings.Builder
	for _, f := range zr.File {
		if !textEntry.MatchString(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open package entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read package entry %s: %w", f.Name, err)
		}
		sb.WriteString(xmlTag.ReplaceAllString(string(data), ""))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
