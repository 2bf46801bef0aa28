package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Error is a field-level validation failure. It is a normal, user-facing
// rejection, never a system fault.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func fieldErr(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Common domain typos worth flagging to the patient.
var emailTypoCorrections = map[string]string{
	"gmial.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"yahooo.com":  "yahoo.com",
	"hotmial.com": "hotmail.com",
}

// Email validates and sanitizes an email address. The returned value is
// trimmed and lowercased.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fieldErr("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return "", fieldErr("email", "invalid email format")
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	if suggestion, ok := emailTypoCorrections[domain]; ok {
		return "", fieldErr("email", "did you mean %s?", suggestion)
	}

	return email, nil
}

// Phone validates a US phone number and returns it formatted as
// "(XXX) XXX-XXXX" or "+1 (XXX) XXX-XXXX".
func Phone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fieldErr("phone", "phone number is required")
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:]), nil
	case len(digits) == 11 && digits[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:]), nil
	default:
		return "", fieldErr("phone", "phone must be 10 digits (or 11 with country code 1)")
	}
}

// Name validates a person's name and returns it with whitespace collapsed
// and title-cased.
func Name(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", fieldErr("name", "name is required")
	}
	if len(name) < 2 {
		return "", fieldErr("name", "name must be at least 2 characters")
	}
	if len(name) > 50 {
		return "", fieldErr("name", "name must not exceed 50 characters")
	}
	if !namePattern.MatchString(name) {
		return "", fieldErr("name", "name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return titleCase(name), nil
}

// titleCase uppercases the first letter of each space- or hyphen-separated
// part, matching how names are displayed on notifications.
func titleCase(name string) string {
	out := []rune(strings.ToLower(name))
	upperNext := true
	for i, r := range out {
		if upperNext && r >= 'a' && r <= 'z' {
			out[i] = r - ('a' - 'A')
		}
		upperNext = r == ' ' || r == '-' || r == '\''
	}
	return string(out)
}

// DateLayout is the wire format for appointment and preference dates.
const DateLayout = "2006-01-02"

// Date parses an ISO date and checks optional bounds.
func Date(value string, min, max *time.Time) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fieldErr("date", "invalid date format, use YYYY-MM-DD")
	}
	if min != nil && d.Before(*min) {
		return time.Time{}, fieldErr("date", "date cannot be before %s", min.Format(DateLayout))
	}
	if max != nil && d.After(*max) {
		return time.Time{}, fieldErr("date", "date cannot be after %s", max.Format(DateLayout))
	}
	return d, nil
}

// ClockLayout is the display format for appointment times.
const ClockLayout = "3:04 PM"

// ClockTime parses "9:00 AM" style input into minutes since midnight and
// checks clinic business hours [8:00, 17:00).
func ClockTime(value string) (int, error) {
	t, err := time.Parse(ClockLayout, strings.ToUpper(strings.TrimSpace(value)))
	if err != nil {
		return 0, fieldErr("time", "invalid time format, use HH:MM AM/PM")
	}
	minutes := t.Hour()*60 + t.Minute()
	if minutes < 8*60 || minutes >= 17*60 {
		return 0, fieldErr("time", "time must be between 8:00 AM and 5:00 PM")
	}
	return minutes, nil
}

// FormatClock renders minutes since midnight as "3:04 PM".
func FormatClock(minutes int) string {
	t := time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC)
	return t.Format(ClockLayout)
}

var placeholderReasons = map[string]bool{
	"test": true,
	"asdf": true,
	"xxx":  true,
	"...":  true,
	"n/a":  true,
}

// CancellationReason rejects empty, too-short, and placeholder reasons.
// An empty reason is allowed when required is false.
func CancellationReason(reason string, required bool) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		if required {
			return "", fieldErr("reason", "please provide a reason (at least 10 characters)")
		}
		return "", nil
	}
	if len(reason) < 10 {
		return "", fieldErr("reason", "please provide a reason (at least 10 characters)")
	}
	if placeholderReasons[strings.ToLower(reason)] {
		return "", fieldErr("reason", "please provide a meaningful reason")
	}
	return SanitizeText(reason, 500), nil
}

// ValidTimePreferences are the accepted time-of-day tags.
var ValidTimePreferences = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"any":       true,
}

// WaitlistPreferences checks that at least one future preferred date and one
// known time preference were supplied.
func WaitlistPreferences(preferredDates, timePreferences []string, today time.Time) error {
	if len(preferredDates) == 0 {
		return fieldErr("preferred_dates", "at least one preferred date is required")
	}
	min := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	for _, d := range preferredDates {
		if _, err := Date(d, &min, nil); err != nil {
			return fieldErr("preferred_dates", "invalid date %s: %s", d, err.(*Error).Message)
		}
	}

	if len(timePreferences) == 0 {
		return fieldErr("time_preferences", "at least one time preference is required")
	}
	for _, p := range timePreferences {
		if !ValidTimePreferences[p] {
			return fieldErr("time_preferences", "invalid time preference: %s", p)
		}
	}
	return nil
}

// CancellationWindow checks the patient self-cancellation notice rule.
func CancellationWindow(appointmentAt, now time.Time, minNotice time.Duration) error {
	if appointmentAt.Sub(now) < minNotice {
		return fieldErr("appointment", "cancellations require at least %d hours notice", int(minNotice.Hours()))
	}
	return nil
}

// SanitizeText collapses whitespace and truncates to maxLen runes, so a
// cut never lands mid-character in patient-supplied text.
func SanitizeText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxLen {
		text = string(runes[:maxLen-3]) + "..."
	}
	return text
}
