package quotegateway

import (
	"regexp"
	"strings"
)

var (
	mainlandCode = regexp.MustCompile(`^[0-9]{6}$`)
	hongKongCode = regexp.MustCompile(`^[0-9]{3,5}$`)
)

// MapSymbol turns a raw exchange code into the upstream ticker.
//
// Six digit codes are Shanghai (6xxxxx) or Shenzhen (0, 2, 3 prefixes),
// three to five digit codes are Hong Kong and get zero padded to at least four digits.
// Anything else is passed through.
func MapSymbol(raw string) string {
	s := strings.TrimSpace(raw)

	if mainlandCode.MatchString(s) {
		switch s[0] {
		case '6':
			return s + ".SS"
		case '0', '2', '3':
			return s + ".SZ"
		}
	}

	if hongKongCode.MatchString(s) {
		if len(s) < 4 {
			s = strings.Repeat("0", 4-len(s)) + s
		}

		return s + ".HK"
	}

	return s
}
