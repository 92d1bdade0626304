package command

import (
	"strings"
	"unicode"
)

// Tokenize splits a command line on whitespace. Double quotes group words
// into one token and are removed; an unterminated quote runs to the end.
func Tokenize(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		pending bool
	)
	flush := func() {
		if pending {
			tokens = append(tokens, current.String())
			current.Reset()
			pending = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	flush()
	return tokens
}

// Parse splits a message into a command name and its argument tokens. ok is
// false when the message does not start with prefix or names no command.
func Parse(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	tokens := Tokenize(strings.TrimPrefix(content, prefix))
	if len(tokens) == 0 || tokens[0] == "" {
		return "", nil, false
	}
	return strings.ToLower(tokens[0]), tokens[1:], true
}

// ParseUserID accepts <@id>, <@!id> or a raw numeric snowflake
func ParseUserID(token string) (string, bool) {
	id := token
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimPrefix(strings.TrimSuffix(id, ">"), "<@")
		id = strings.TrimPrefix(id, "!")
	}
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// Mention formats a user id as a platform mention
func Mention(userID string) string {
	return "<@" + userID + ">"
}
