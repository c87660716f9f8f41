package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() models.Profile {
	p := models.DefaultProfile()
	p.Name = "Ada"
	p.Email = "ada@example.com"
	p.Bio = "Mathematician"
	p.Experiences = []models.Experience{
		{Title: "Analyst", StartDate: "1842-01-01", EndDate: "1843-12-31", Description: "Notes"},
		{Title: "Writer", StartDate: "1844-01-01", EndDate: "1845-01-01"},
	}
	p.Skills = []string{"Go", "Rust"}
	p.Resume = "data:text/plain;base64,QQ=="
	p.ResumeName = "cv.txt"
	return p
}

func TestRender_Closed(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, View{Open: false, Profile: sampleProfile()})

	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, buf.Len())
}

func TestRender_Open(t *testing.T) {
	var buf bytes.Buffer
	profile := sampleProfile()

	require.NoError(t, Render(&buf, View{Open: true, Profile: profile, CloseURL: "/api/v1/profile/preview/close"}))

	html := buf.String()
	for _, want := range []string{
		"Profile Details",
		"Ada",
		"ada@example.com",
		"Mathematician",
		"1842-01-01 - 1843-12-31",
		"cv.txt",
		`action="/api/v1/profile/preview/close"`,
	} {
		assert.Contains(t, html, want)
	}

	// stored order is kept
	assert.Less(t, strings.Index(html, "Analyst"), strings.Index(html, "Writer"))
	assert.Less(t, strings.Index(html, "<li>Go</li>"), strings.Index(html, "<li>Rust</li>"))

	// rendering never mutates the record
	assert.Equal(t, sampleProfile(), profile)
}

func TestRender_EscapesHTML(t *testing.T) {
	var buf bytes.Buffer
	profile := models.DefaultProfile()
	profile.Name = "<script>alert(1)</script>"

	require.NoError(t, Render(&buf, View{Open: true, Profile: profile}))

	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRender_NoResume(t *testing.T) {
	var buf bytes.Buffer
	profile := models.DefaultProfile()

	require.NoError(t, Render(&buf, View{Open: true, Profile: profile}))

	assert.NotContains(t, buf.String(), `class="resume"`)
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{
		"Name: Ada",
		"Email: ada@example.com",
		"Bio: Mathematician",
		"Experiences:",
		"  Analyst (1842-01-01 - 1843-12-31)",
		"    Notes",
		"  Writer (1844-01-01 - 1845-01-01)",
		"Skills:",
		"  Go",
		"  Rust",
		"Resume: cv.txt",
	}, Lines(sampleProfile()))
}
