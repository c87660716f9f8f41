package repository

import (
	"bytes"
	"fmt"

	"github.com/getmentor/profile-editor/internal/models"
	apperrors "github.com/getmentor/profile-editor/pkg/errors"
	json "github.com/goccy/go-json"
)

// requiredKeys must be present in a stored record for it to be accepted
var requiredKeys = []string{
	models.FieldName,
	models.FieldEmail,
	models.FieldExperiences,
	models.FieldSkills,
}

// storedProfile mirrors models.Profile with nullable optional fields so
// that missing or null values can be told apart from empty strings. List
// elements are kept raw and checked one by one.
type storedProfile struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Bio         *string           `json:"bio"`
	Experiences []json.RawMessage `json:"experiences"`
	Skills      []json.RawMessage `json:"skills"`
	Resume      *string           `json:"resume"`
	ResumeName  *string           `json:"resumeName"`
}

// experienceKeys are the fields of a stored experience. Each may be absent but never null.
var experienceKeys = []string{"title", "startDate", "endDate", "description"}

// EncodeProfile serializes a profile into its stored form
func EncodeProfile(p *models.Profile) (string, error) {
	normalized := p.Clone()
	data, err := json.Marshal(&normalized)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeProfile parses a stored value and checks its shape before
// accepting it. Anything that does not look like a profile returns an
// error wrapping ErrCorrupt.
func DecodeProfile(raw string) (*models.Profile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, apperrors.CorruptError("stored value is not a JSON object")
	}
	if fields == nil {
		return nil, apperrors.CorruptError("stored value is null")
	}

	for _, key := range requiredKeys {
		value, ok := fields[key]
		if !ok {
			return nil, apperrors.CorruptError("missing key " + key)
		}
		if isNull(value) {
			return nil, apperrors.CorruptError("null value for key " + key)
		}
	}

	var stored storedProfile
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, apperrors.CorruptError("unexpected field type: " + err.Error())
	}

	profile := models.Profile{
		Name:        stored.Name,
		Email:       stored.Email,
		Bio:         deref(stored.Bio),
		Experiences: make([]models.Experience, 0, len(stored.Experiences)),
		Skills:      make([]string, 0, len(stored.Skills)),
		Resume:      deref(stored.Resume),
		ResumeName:  deref(stored.ResumeName),
	}
	for i, raw := range stored.Experiences {
		exp, err := decodeExperience(raw)
		if err != nil {
			return nil, apperrors.CorruptError(fmt.Sprintf("experience %d: %s", i, err.Error()))
		}
		profile.Experiences = append(profile.Experiences, exp)
	}
	for i, raw := range stored.Skills {
		if !hasPrefix(raw, '"') {
			return nil, apperrors.CorruptError(fmt.Sprintf("skill %d is not a string", i))
		}
		var skill string
		if err := json.Unmarshal(raw, &skill); err != nil {
			return nil, apperrors.CorruptError(fmt.Sprintf("skill %d: %s", i, err.Error()))
		}
		profile.Skills = append(profile.Skills, skill)
	}

	return &profile, nil
}

func decodeExperience(raw json.RawMessage) (models.Experience, error) {
	if !hasPrefix(raw, '{') {
		return models.Experience{}, fmt.Errorf("not an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Experience{}, err
	}
	for _, key := range experienceKeys {
		if value, ok := fields[key]; ok && isNull(value) {
			return models.Experience{}, fmt.Errorf("null value for key %s", key)
		}
	}

	var exp models.Experience
	if err := json.Unmarshal(raw, &exp); err != nil {
		return models.Experience{}, err
	}
	return exp, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func hasPrefix(raw json.RawMessage, c byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
