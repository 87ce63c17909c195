package controllers

import (
	"strings"

	"github.com/google/uuid"
)

// pathID returns the :id param when it is a well-formed UUID.
func pathID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	val, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return val.String(), true
}
