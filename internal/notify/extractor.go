// AngelaMos | 2026
// extractor.go

package notify

import (
	"regexp"
	"strings"
)

// Fields is the labeled payload the signup notifier embeds in a chat
// message body.
type Fields struct {
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
	CreatedAt   string
}

// Label lines arrive in no guaranteed order and may use CRLF line
// endings, so each field gets its own line-bounded pattern.
var (
	usernameRe    = regexp.MustCompile(`Username: ([^\n\r]+)`)
	firstNameRe   = regexp.MustCompile(`First Name: ([^\n\r]+)`)
	lastNameRe    = regexp.MustCompile(`Last Name: ([^\n\r]+)`)
	phoneNumberRe = regexp.MustCompile(`Phone Number: ([^\n\r]+)`)
	createdAtRe   = regexp.MustCompile(`Created At: ([^\n\r]+)`)
)

// ExtractFields pulls the labeled signup fields out of a notifier
// message. The second return reports whether the Username line was
// present; a message without it is not a signup notification.
func ExtractFields(text string) (Fields, bool) {
	username := extractOne(usernameRe, text)
	if username == "" {
		return Fields{}, false
	}

	return Fields{
		Username:    username,
		FirstName:   extractOne(firstNameRe, text),
		LastName:    extractOne(lastNameRe, text),
		PhoneNumber: extractOne(phoneNumberRe, text),
		CreatedAt:   extractOne(createdAtRe, text),
	}, true
}

func extractOne(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
