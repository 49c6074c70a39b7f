package shared

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the loose address shape used by every storefront form
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// EmailDomain returns the lower-cased part after the last '@'
func EmailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}
