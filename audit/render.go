package audit

import (
	"net/url"
	"sort"
	"strings"
)

// renderParams renders values as a dict literal with quoted keys and values,
// e.g. {'color': 'red'}. Keys are sorted; for repeated keys the last value
// wins.
func renderParams(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		vs := values[k]
		if i > 0 {
			b.WriteString(", ")
		}
		var v string
		if len(vs) > 0 {
			v = vs[len(vs)-1]
		}
		b.WriteString(quote(k))
		b.WriteString(": ")
		b.WriteString(quote(v))
	}
	b.WriteByte('}')
	return b.String()
}

// quote wraps s in single quotes, or double quotes when s contains a single
// quote and no double quote. Backslashes, the chosen quote and control
// characters are escaped.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[r>>4])
			b.WriteByte(hexDigits[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

const hexDigits = "0123456789abcdef"
