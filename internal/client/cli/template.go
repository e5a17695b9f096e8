package cli

import (
	"text/template"
)

const contactTemplate = `
=== Contact Details ===

ID:       {{.ID}}
Name:     {{.FirstName}} {{.LastName}}
Email:    {{.Email}}
Phone:    {{.ContactNumber}}
Birthday: {{.Birthday}}
{{- with .AdditionalInformation }}
Notes:    {{.}}
{{- end}}
`

const contactRowTemplate = `{{.ID}}. {{.FirstName}} {{.LastName}}
   Email:    {{.Email}}
   Phone:    {{.ContactNumber}}
   Birthday: {{.Birthday}}
`

const profileTemplate = `
=== Profile ===

ID:        {{.ID}}
Username:  {{.Username}}
Email:     {{.Email}}
Confirmed: {{if .Confirmed}}yes{{else}}no{{end}}
{{- with .Avatar }}
Avatar:    {{.}}
{{- end}}
Created:   {{.CreatedAt.Format "2006-01-02 15:04"}}
`

var (
	contactTmpl    = template.Must(template.New("contact").Parse(contactTemplate))
	contactRowTmpl = template.Must(template.New("contact_row").Parse(contactRowTemplate))
	profileTmpl    = template.Must(template.New("profile").Parse(profileTemplate))
)
