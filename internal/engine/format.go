package engine

import (
	"strconv"
	"time"
)

// formatDate renders a date the French way, dd/mm/yyyy.
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// formatKm renders a distance with non-breaking spaces as thousands
// separators, e.g. 15000 -> "15 000".
func formatKm(km int) string {
	s := strconv.Itoa(km)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, " "...)
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
