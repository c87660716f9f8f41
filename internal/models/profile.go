package models

// Profile field names accepted by the form
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldBio         = "bio"
	FieldExperiences = "experiences"
	FieldSkills      = "skills"
	FieldResume      = "resume"
	FieldResumeName  = "resumeName"
)

// Experience field names accepted by the draft experience
const (
	ExperienceTitle       = "title"
	ExperienceStartDate   = "startDate"
	ExperienceEndDate     = "endDate"
	ExperienceDescription = "description"
)

// Profile is the single persisted record of the editor.
// Validation tags describe the submit rule set; bio is checked separately
// because enforcing it is configurable.
type Profile struct {
	Name        string       `json:"name" validate:"required"`
	Email       string       `json:"email" validate:"required"`
	Bio         string       `json:"bio"`
	Experiences []Experience `json:"experiences"`
	Skills      []string     `json:"skills"`
	Resume      string       `json:"resume" validate:"required"` // data URI, empty when absent
	ResumeName  string       `json:"resumeName"`
}

// Experience is a work experience entry embedded in a profile
type Experience struct {
	Title       string `json:"title"`
	StartDate   string `json:"startDate"` // calendar date, YYYY-MM-DD as sent by the date input
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// DefaultProfile returns the all-empty profile used before anything is saved
func DefaultProfile() Profile {
	return Profile{
		Experiences: []Experience{},
		Skills:      []string{},
	}
}

// Clone returns a deep copy so callers never share list backing arrays
func (p Profile) Clone() Profile {
	out := p
	out.Experiences = make([]Experience, len(p.Experiences))
	copy(out.Experiences, p.Experiences)
	out.Skills = make([]string, len(p.Skills))
	copy(out.Skills, p.Skills)
	return out
}

// HasResume reports whether a resume payload is attached
func (p Profile) HasResume() bool {
	return p.Resume != ""
}

// ScalarField returns a pointer to the named scalar field, or nil if the name is not editable
func (p *Profile) ScalarField(name string) *string {
	switch name {
	case FieldName:
		return &p.Name
	case FieldEmail:
		return &p.Email
	case FieldBio:
		return &p.Bio
	default:
		return nil
	}
}

// Field returns a pointer to the named experience field, or nil for unknown names
func (e *Experience) Field(name string) *string {
	switch name {
	case ExperienceTitle:
		return &e.Title
	case ExperienceStartDate:
		return &e.StartDate
	case ExperienceEndDate:
		return &e.EndDate
	case ExperienceDescription:
		return &e.Description
	default:
		return nil
	}
}

// DateRange renders the experience period as shown on the form and preview
func (e Experience) DateRange() string {
	return e.StartDate + " - " + e.EndDate
}
