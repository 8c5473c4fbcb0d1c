package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun    = regexp.MustCompile(`[^\S\n]+`)
	newlineRun  = regexp.MustCompile(`\n{3,}`)
	nonPrint    = regexp.MustCompile("[^\x09\x0A\x0D\x20-\x7E]")
	unsafeChars = regexp.MustCompile(`[{}\[\]$\\]`)
)

// NormalizeText collapses whitespace and removes non-printable characters.
func NormalizeText(input string) string {
	if input == "" {
		return ""
	}

	s := strings.ReplaceAll(input, "\r", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	s = nonPrint.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripHTML returns the text content of an HTML fragment. Input that is not
// HTML passes through unchanged. Upstream payloads are untrusted, so every
// free-text field goes through here before entering the Job model.
func StripHTML(input string) string {
	if input == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return input
	}
	return doc.Text()
}

// Sanitize strips markup, normalizes whitespace and caps the result at
// maxChars runes.
func Sanitize(input string, maxChars int) string {
	s := StripHTML(input)
	s = NormalizeText(s)
	if s == "" {
		return ""
	}

	s = unsafeChars.ReplaceAllString(s, " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(Truncate(s, maxChars))
}

// Truncate cuts a string to at most maxChars runes.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
