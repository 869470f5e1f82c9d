package reference

import (
	"net/url"
	"regexp"
	"strings"
)

// A reference is valid when it matches one of these shapes. The identifier is
// always 11 characters drawn from [A-Za-z0-9_-].
var (
	bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	watchPattern  = regexp.MustCompile(`^https?://(www\.|m\.)?youtube\.com/watch\?v=[A-Za-z0-9_-]{11}([&#]\S*)?$`)
	shortPattern  = regexp.MustCompile(`^https?://youtu\.be/[A-Za-z0-9_-]{11}([?#]\S*)?$`)
	embedPattern  = regexp.MustCompile(`^https?://(www\.|m\.)?youtube\.com/embed/[A-Za-z0-9_-]{11}([?#]\S*)?$`)
)

// Valid reports whether raw denotes a recognized video reference: a canonical
// watch URL, a short-link URL, an embed URL, or a bare 11-character id. It is
// a strict membership test; Normalize does not make an invalid input valid.
func Valid(raw string) bool {
	raw = strings.TrimSpace(raw)
	return bareIDPattern.MatchString(raw) ||
		watchPattern.MatchString(raw) ||
		shortPattern.MatchString(raw) ||
		embedPattern.MatchString(raw)
}

// Normalize turns raw into a canonical request URL on a best-effort basis.
// A bare id becomes the canonical watch URL; a watch URL is stripped down to
// its identifier parameter (playlist and position markers dropped) and always
// re-emitted over https; any other shape passes through unchanged. Normalize
// never fails: on any parse error the input is returned as-is and downstream
// validation decides.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if bareIDPattern.MatchString(raw) {
		return "https://www.youtube.com/watch?v=" + raw
	}
	if !watchPattern.MatchString(raw) {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	id := parsed.Query().Get("v")
	if !bareIDPattern.MatchString(id) {
		return raw
	}
	return "https://" + parsed.Host + "/watch?v=" + id
}

// ExtractID returns the 11-character identifier carried by a valid reference.
func ExtractID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if bareIDPattern.MatchString(raw) {
		return raw, true
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch {
	case watchPattern.MatchString(raw):
		id := parsed.Query().Get("v")
		return id, bareIDPattern.MatchString(id)
	case shortPattern.MatchString(raw):
		id := strings.TrimPrefix(parsed.Path, "/")
		return id, bareIDPattern.MatchString(id)
	case embedPattern.MatchString(raw):
		id := strings.TrimPrefix(parsed.Path, "/embed/")
		return id, bareIDPattern.MatchString(id)
	}
	return "", false
}
