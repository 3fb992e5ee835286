// Package naming converts declared relation identifiers into canonical
// storage names.
//
// A declared identifier is a run of capitalized words ("MySession"); its
// storage name is the lowercase, underscore-separated form ("my_session").
// Every storage name matches BasePattern.
package naming

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/tiersql/pkg/core"
)

// BasePattern is the pattern every storage name segment must match.
const BasePattern = `[a-z]+[a-z0-9]*(_[a-z]+[a-z0-9]*)*`

var baseRe = regexp.MustCompile(`^` + BasePattern + `$`)

// ToStorageName converts a capitalized, concatenated-word identifier into its
// lowercase, underscore-separated storage name. It is pure and deterministic.
//
//	ToStorageName("MySession")   // "my_session"
//	ToStorageName("Scan2Photon") // "scan2_photon"
func ToStorageName(identifier string) (string, error) {
	if identifier == "" {
		return "", &core.NamingError{Identifier: identifier, Reason: "identifier is empty"}
	}
	if !isUpper(identifier[0]) {
		return "", &core.NamingError{Identifier: identifier, Reason: "must begin with a capital letter"}
	}

	var b strings.Builder
	b.Grow(len(identifier) + 4)
	for i := 0; i < len(identifier); i++ {
		c := identifier[i]
		switch {
		case isUpper(c):
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c + ('a' - 'A'))
		case isLower(c) || isDigit(c):
			b.WriteByte(c)
		default:
			return "", &core.NamingError{
				Identifier: identifier,
				Reason:     "must contain only ASCII letters and digits",
			}
		}
	}

	name := b.String()
	if !baseRe.MatchString(name) {
		return "", &core.NamingError{Identifier: identifier, Name: name, Reason: "does not match " + BasePattern}
	}
	return name, nil
}

// IsStorageName reports whether s is a bare storage name (no tier prefix).
func IsStorageName(s string) bool {
	return baseRe.MatchString(s)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
