// Package preview renders the read-only view of a saved profile.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/getmentor/profile-editor/internal/models"
)

// ErrClosed is returned when rendering a preview that is not open
var ErrClosed = errors.New("preview is closed")

// View is everything the preview needs to render
type View struct {
	Open     bool
	Profile  models.Profile
	CloseURL string
}

var page = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Profile Details</title>
</head>
<body>
<section class="profile-preview">
<h1>Profile Details</h1>
<dl>
<dt>Name</dt><dd>{{.Profile.Name}}</dd>
<dt>Email</dt><dd>{{.Profile.Email}}</dd>
<dt>Bio</dt><dd>{{.Profile.Bio}}</dd>
</dl>
<h2>Experiences</h2>
<ul class="experiences">
{{- range .Profile.Experiences}}
<li><strong>{{.Title}}</strong> <span class="dates">{{.DateRange}}</span><p>{{.Description}}</p></li>
{{- end}}
</ul>
<h2>Skills</h2>
<ul class="skills">
{{- range .Profile.Skills}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- if .Profile.HasResume}}
<h2>Resume</h2>
<p class="resume">{{if .Profile.ResumeName}}{{.Profile.ResumeName}}{{else}}Resume attached{{end}}</p>
{{- end}}
{{- if .CloseURL}}
<form method="post" action="{{.CloseURL}}"><button type="submit">Close</button></form>
{{- end}}
</section>
</body>
</html>
`))

// Render writes the preview page. Nothing is written when the view is closed.
func Render(w io.Writer, view View) error {
	if !view.Open {
		return ErrClosed
	}

	// render fully before writing so a template failure leaves w untouched
	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Lines returns a plain-text rendering of the profile
func Lines(profile models.Profile) []string {
	lines := []string{
		"Name: " + profile.Name,
		"Email: " + profile.Email,
		"Bio: " + profile.Bio,
		"Experiences:",
	}
	for _, exp := range profile.Experiences {
		lines = append(lines, fmt.Sprintf("  %s (%s)", exp.Title, exp.DateRange()))
		if exp.Description != "" {
			lines = append(lines, "    "+exp.Description)
		}
	}
	lines = append(lines, "Skills:")
	for _, skill := range profile.Skills {
		lines = append(lines, "  "+skill)
	}
	if profile.HasResume() {
		lines = append(lines, "Resume: "+profile.ResumeName)
	}
	return lines
}
