package handlers

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strconv"
)

// parseID reads the {id} path value as a positive integer.
func parseID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// decodeDataURI extracts the raw bytes of an image data URI. Returns false
// when s is not a data URI (callers then leave the stored logo untouched).
func decodeDataURI(s string) ([]byte, bool) {
	loc := dataURIPrefix.FindStringIndex(s)
	if loc == nil {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(s[loc[1]:])
	if err != nil {
		return nil, false
	}
	return b, true
}

func encodeDataURI(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}
