package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateData is the full variable set available to message templates.
type TemplateData struct {
	PatientName string
	Date        string
	Time        string
	Doctor      string
	Specialty   string
	ClinicName  string
	Link        string
	Phone       string
	ExpiryHours int
}

// render compiles template text with strict missing-key semantics.
func render(name, tmpl string, data TemplateData) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("notify: parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

const availableSMSTmpl = `{{.ClinicName}}: Appointment available on {{.Date}} at {{.Time}} with {{.Doctor}}. Book now: {{.Link}} (expires in {{.ExpiryHours}} hours)`

const availableEmailSubjectTmpl = `Appointment Available - {{.Date}} at {{.Time}}`

const availableEmailBodyTmpl = `Dear {{.PatientName}},

Good news! An appointment has become available that matches your preferences:

  Date:      {{.Date}}
  Time:      {{.Time}}
  Doctor:    {{.Doctor}}
  Specialty: {{.Specialty}}

Book this appointment: {{.Link}}

This link will expire in {{.ExpiryHours}} hours. First come, first served.

{{.ClinicName}}`

const confirmedSMSTmpl = `{{.ClinicName}}: Your appointment is confirmed for {{.Date}} at {{.Time}} with {{.Doctor}}. Please arrive 15 minutes early.`

const staffFilledSubjectTmpl = `Appointment Filled - {{.Date}} at {{.Time}}`

const staffFilledBodyTmpl = `The following cancelled appointment has been filled via the waitlist:

  Date:        {{.Date}}
  Time:        {{.Time}}
  Doctor:      {{.Doctor}}
  New Patient: {{.PatientName}}
  Phone:       {{.Phone}}

Please update the appointment in your system.`

// AvailableSMS renders the slot-available SMS body.
func AvailableSMS(data TemplateData) (string, error) {
	return render("available_sms", availableSMSTmpl, data)
}

// AvailableEmail renders the slot-available email subject and body.
func AvailableEmail(data TemplateData) (subject, body string, err error) {
	subject, err = render("available_email_subject", availableEmailSubjectTmpl, data)
	if err != nil {
		return "", "", err
	}
	body, err = render("available_email_body", availableEmailBodyTmpl, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

// ConfirmedSMS renders the booking-confirmed SMS body.
func ConfirmedSMS(data TemplateData) (string, error) {
	return render("confirmed_sms", confirmedSMSTmpl, data)
}

// StaffFilledEmail renders the staff notice sent after a successful fill.
func StaffFilledEmail(data TemplateData) (subject, body string, err error) {
	subject, err = render("staff_filled_subject", staffFilledSubjectTmpl, data)
	if err != nil {
		return "", "", err
	}
	body, err = render("staff_filled_body", staffFilledBodyTmpl, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}
