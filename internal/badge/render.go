package badge

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed status_icon.svg
var statusIcon string

var iconTemplate = template.Must(template.New("status_icon").Parse(statusIcon))

// Render fills the badge template with a status, its color and a date.
func Render(status Status, color, date string) []byte {
	var buf bytes.Buffer
	// the template only references string fields, so Execute cannot fail
	_ = iconTemplate.Execute(&buf, struct {
		Status Status
		Color  string
		Date   string
	}{status, color, date})
	return buf.Bytes()
}
