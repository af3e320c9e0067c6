package agent

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("photo must be a base64 data URI")

// ParseDataURI splits "data:<mime>;base64,<payload>" into a Media part.
func ParseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Media{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return Media{}, ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mime == "" {
		return Media{}, ErrInvalidDataURI
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return Media{}, ErrInvalidDataURI
	}
	return Media{MimeType: mime, Data: payload}, nil
}
