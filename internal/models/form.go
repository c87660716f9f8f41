package models

import "io"

// FormState is the snapshot of the editor exposed to the UI layer
type FormState struct {
	Profile         Profile           `json:"profile"`
	Errors          map[string]string `json:"errors"`
	DraftExperience Experience        `json:"draftExperience"`
	DraftSkill      string            `json:"draftSkill"`
	PreviewOpen     bool              `json:"previewOpen"`
}

// SetValueRequest carries a single field value from an input
type SetValueRequest struct {
	Value *string `json:"value" binding:"required"`
}

// SubmitProfileResponse represents the response after a submit attempt
type SubmitProfileResponse struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
}

// UploadResumeResponse represents the response after a resume upload
type UploadResumeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	ResumeName string `json:"resumeName,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Notification is user-facing feedback for a form interaction (the toast)
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"` // success or error
}

// Notification statuses
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// RequiredFieldsNotification is shown when submit is blocked by validation
func RequiredFieldsNotification() Notification {
	return Notification{
		Title:       "Error",
		Description: "Please fill out all required fields",
		Status:      NotificationError,
	}
}

// ProfileSavedNotification is shown after a successful submit
func ProfileSavedNotification() Notification {
	return Notification{
		Title:       "Profile saved.",
		Description: "Your profile has been updated and saved.",
		Status:      NotificationSuccess,
	}
}

// SaveFailedNotification is shown when the store rejects a valid profile
func SaveFailedNotification() Notification {
	return Notification{
		Title:       "Error",
		Description: "Your profile could not be saved. Please try again.",
		Status:      NotificationError,
	}
}

// ResumeFile is a file selected for upload. Content is read once.
type ResumeFile struct {
	Name      string
	MediaType string
	Content   io.Reader
}

// ProfileSavedEvent is published after a successful submit
type ProfileSavedEvent struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Experiences int    `json:"experiences"`
	Skills      int    `json:"skills"`
	ResumeName  string `json:"resumeName"`
	SavedAt     string `json:"savedAt"`
}
