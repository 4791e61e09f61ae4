package formdata

import "strings"

const upperhex = "0123456789ABCDEF"

// Encode serializes fields as application/x-www-form-urlencoded, keeping
// their order.
func Encode(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		escape(&b, f.Name)
		b.WriteByte('=')
		escape(&b, f.Value)
	}
	return b.String()
}

// escape applies the urlencoded byte serializer: alphanumerics and *-._
// pass through, space becomes '+', every other byte is percent-encoded.
// net/url's QueryEscape differs on '*' and '~'.
func escape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case shouldPass(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
}

func shouldPass(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '*', c == '-', c == '.', c == '_':
		return true
	}
	return false
}
