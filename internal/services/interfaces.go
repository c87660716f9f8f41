package services

import (
	"context"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/internal/repository"
)

// ProfileStore persists the single profile record
type ProfileStore interface {
	Load(ctx context.Context) (*models.Profile, bool, error)
	Save(ctx context.Context, profile *models.Profile) error
}

// Notifier shows user-facing feedback for a form interaction
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

// EventPublisher delivers the profile saved event to an external channel
type EventPublisher interface {
	Name() string
	PublishProfileSaved(ctx context.Context, event models.ProfileSavedEvent) error
}

// ProfileFormInterface defines the editor operations used by the HTTP layer
type ProfileFormInterface interface {
	State() models.FormState
	SetField(name, value string) error
	SetDraftExperienceField(name, value string) error
	SetDraftSkill(value string)
	UploadResume(ctx context.Context, file models.ResumeFile) error
	AddExperience()
	AddSkill()
	RemoveExperience(index int)
	RemoveSkill(index int)
	ValidateAndSubmit(ctx context.Context) (map[string]string, error)
	ClosePreview()
	Preview() (models.Profile, bool)
}

// Ensure implementations satisfy interfaces
var (
	_ ProfileStore         = (*repository.ProfileRepository)(nil)
	_ ProfileFormInterface = (*ProfileForm)(nil)
	_ Notifier             = (*LogNotifier)(nil)
	_ EventPublisher       = (*TriggerPublisher)(nil)
	_ EventPublisher       = (*AMQPPublisher)(nil)
)
