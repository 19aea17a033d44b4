// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

const DefaultCountryCode = "+51"

var (
	dniPattern   = regexp.MustCompile(`^\d{8}$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
)

// ValidateDNI checks an eight digit national ID.
func ValidateDNI(dni string) bool {
	return dniPattern.MatchString(strings.TrimSpace(dni))
}

func cleanPhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(strings.TrimSpace(phone))
}

// NormalizePhone returns an E.164 number, prefixing local numbers with DefaultCountryCode.
// The second return is false when the input is not a usable phone.
func NormalizePhone(phone string) (string, bool) {
	cleaned := cleanPhone(phone)
	if !phonePattern.MatchString(cleaned) {
		return "", false
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned, true
	}
	return DefaultCountryCode + cleaned, true
}
