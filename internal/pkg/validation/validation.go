package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneRe accepts an optional leading + followed by 7 to 15 digits, the
// shapes the SMS transports accept.
var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone reports whether the number can be handed to an SMS transport.
// Separators are tolerated; the digits must form a plausible E.164 number.
func IsValidPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phoneRe.MatchString(cleaned)
}
