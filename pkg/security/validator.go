package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSearchQueryLength is the longest accepted user search query, in characters.
const MaxSearchQueryLength = 100

var (
	// ErrQueryTooLong is returned for queries over MaxSearchQueryLength.
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalid is returned for queries with forbidden characters or patterns.
	ErrQueryInvalid = errors.New("search query contains invalid characters")
)

// dangerousPatterns match SQL keywords, tautologies, comments and script injection.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)\b(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|sleep)\b`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims query and rejects it when it is too long or looks like an injection attempt.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	query = strings.TrimSpace(query)

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalid
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalid
		}
	}

	return query, nil
}

// isValidSearchChar allows letters, digits, spaces and the punctuation found in names and emails.
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '%' || char == '\''
}

// SanitizeSearchString escapes LIKE wildcards so they match literally with ESCAPE '\'.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
