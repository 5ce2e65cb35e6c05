package service

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"ticketdesk/internal/models"
)

const (
	MaxTitleLength    = 200
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidateTicket checks the ticket form fields. Every violation is
// reported; the result is nil when the fields are acceptable.
func ValidateTicket(title, status, priority string) error {
	var verr ValidationError

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		verr.add("title", "Title is required")
	case textLength(title) > MaxTitleLength:
		verr.add("title", "Title too long (max 200 chars)")
	}

	if !models.TicketStatus(strings.TrimSpace(status)).Valid() {
		verr.add("status", "Status must be one of open, in_progress, closed")
	}

	if !models.TicketPriority(strings.TrimSpace(priority)).Valid() {
		verr.add("priority", "Invalid priority")
	}

	return verr.err()
}

// textLength counts UTF-16 code units, the unit browsers use for form
// field lengths. Characters outside the BMP count twice.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func validateSignup(name, email, password string) error {
	var verr ValidationError

	if name == "" {
		verr.add("name", "Name is required")
	}
	switch {
	case email == "":
		verr.add("email", "Email is required")
	case !emailPattern.MatchString(email):
		verr.add("email", "Please enter a valid email")
	}
	if textLength(password) < MinPasswordLength {
		verr.add("password", "Password must be at least 6 characters")
	}

	return verr.err()
}

func validateLogin(email, password string) error {
	var verr ValidationError

	if email == "" {
		verr.add("email", "Email is required")
	}
	if password == "" {
		verr.add("password", "Password is required")
	}

	return verr.err()
}
