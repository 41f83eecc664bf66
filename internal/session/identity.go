package session

import "strings"

// Identity is the pair needed to construct a session URL. Navigation is a
// no-op while either half is missing: sessions that have not produced a
// first message have no route yet.
type Identity struct {
	SessionID    string `json:"session_id"`
	EncodedTitle string `json:"encoded_title"`
}

// Known reports whether the identity can be used to build a URL.
func (id Identity) Known() bool {
	return id.SessionID != "" && id.EncodedTitle != ""
}

// EncodeTitle turns a free-form session title into a URL-safe slug:
// lowercase, runs of non-alphanumerics collapse to single dashes.
func EncodeTitle(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
