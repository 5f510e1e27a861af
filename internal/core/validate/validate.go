// Package validate holds pure input validators for nicknames, chat handles,
// and administrative command shapes.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Error describes a rejected user input. It is always recoverable: the actor
// is re-prompted with the message, and it is never logged as a system fault.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// NicknamePolicy configures nickname validation. Length bounds and character
// set restriction are independent knobs; the source communities disagree on
// both, so neither is hardcoded.
type NicknamePolicy struct {
	MinLen       int
	MaxLen       int
	Alphanumeric bool // restrict to letters, digits, spaces, '_' and '-'
}

var nicknameCharset = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)

// Nickname validates and trims an in-game nickname against the policy.
// The specific violated rule is named in the returned error.
func Nickname(s string, p NicknamePolicy) (string, error) {
	nickname := strings.TrimSpace(s)
	if nickname == "" {
		return "", &Error{Reason: "nickname cannot be empty"}
	}

	n := utf8.RuneCountInString(nickname)
	if n < p.MinLen {
		return "", &Error{Reason: fmt.Sprintf("nickname is too short, minimum %d characters", p.MinLen)}
	}
	if n > p.MaxLen {
		return "", &Error{Reason: fmt.Sprintf("nickname is too long, maximum %d characters", p.MaxLen)}
	}
	if p.Alphanumeric && !nicknameCharset.MatchString(nickname) {
		return "", &Error{Reason: "nickname may only contain letters, digits, spaces, '_' and '-'"}
	}

	return nickname, nil
}

var handlePattern = regexp.MustCompile(`^@[a-zA-Z0-9_]+$`)

// Handle validates a chat display handle and returns it normalized with a
// leading '@'. Handles are 5-32 characters of letters, digits and underscores.
func Handle(s string) (string, error) {
	handle := NormalizeHandle(s)
	if handle == "@" {
		return "", &Error{Reason: "handle cannot be empty"}
	}

	if len(handle) < 6 { // '@' plus at least 5 characters
		return "", &Error{Reason: "handle is too short"}
	}
	if len(handle) > 33 { // '@' plus at most 32 characters
		return "", &Error{Reason: "handle is too long"}
	}
	if !handlePattern.MatchString(handle) {
		return "", &Error{Reason: "invalid handle, use @handle with letters, digits and underscores"}
	}

	return handle, nil
}

// NormalizeHandle trims the input and ensures a leading '@'.
func NormalizeHandle(s string) string {
	handle := strings.TrimSpace(s)
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}

// ParseExclude parses "/exclude @handle reason..." command arguments.
// The reason is required.
func ParseExclude(text string) (handle, reason string, err error) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 3)
	if len(parts) < 3 {
		return "", "", &Error{Reason: "usage: /exclude @handle reason"}
	}

	handle, err = Handle(parts[1])
	if err != nil {
		return "", "", err
	}

	reason = strings.TrimSpace(parts[2])
	if reason == "" {
		return "", "", &Error{Reason: "exclusion reason cannot be empty"}
	}

	return handle, reason, nil
}

// ParseAdd parses "/add @handle nickname" command arguments. The nickname is
// validated against the supplied policy.
func ParseAdd(text string, p NicknamePolicy) (handle, nickname string, err error) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 3)
	if len(parts) < 3 {
		return "", "", &Error{Reason: "usage: /add @handle nickname"}
	}

	handle, err = Handle(parts[1])
	if err != nil {
		return "", "", err
	}

	nickname, err = Nickname(parts[2], p)
	if err != nil {
		return "", "", err
	}

	return handle, nickname, nil
}
