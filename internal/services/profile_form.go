package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/pkg/datauri"
	apperrors "github.com/getmentor/profile-editor/pkg/errors"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"github.com/getmentor/profile-editor/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ResumeReadFailedMessage is the resume field error set when an upload cannot be read
const ResumeReadFailedMessage = "Failed to read resume file"

// PreviewListener receives a copy of the saved record when the preview opens
type PreviewListener func(profile models.Profile)

// Option configures a ProfileForm
type Option func(*ProfileForm)

// WithRequireBio makes bio part of the submit rule set
func WithRequireBio(required bool) Option {
	return func(f *ProfileForm) {
		f.validator = NewProfileValidator(required)
	}
}

// WithNotifier sets where submit feedback goes
func WithNotifier(n Notifier) Option {
	return func(f *ProfileForm) {
		f.notifier = n
	}
}

// WithPreviewListener registers a callback for the preview ready signal
func WithPreviewListener(l PreviewListener) Option {
	return func(f *ProfileForm) {
		f.listeners = append(f.listeners, l)
	}
}

// WithEventPublishers adds channels for the profile saved event
func WithEventPublishers(publishers ...EventPublisher) Option {
	return func(f *ProfileForm) {
		f.publishers = append(f.publishers, publishers...)
	}
}

// WithStoreKey sets the key reported in profile saved events
func WithStoreKey(key string) Option {
	return func(f *ProfileForm) {
		f.storeKey = key
	}
}

// ProfileForm is the editing session for the single profile record.
// All state lives behind one mutex so concurrent requests see a serial order of edits.
type ProfileForm struct {
	store      ProfileStore
	validator  *ProfileValidator
	notifier   Notifier
	listeners  []PreviewListener
	publishers []EventPublisher
	storeKey   string

	mu              sync.Mutex
	profile         models.Profile
	errors          map[string]string
	draftExperience models.Experience
	draftSkill      string
	previewOpen     bool
	saved           *models.Profile
}

// NewProfileForm loads the saved profile once. Missing or malformed data and
// store failures all start the form from the empty profile.
func NewProfileForm(ctx context.Context, store ProfileStore, opts ...Option) *ProfileForm {
	f := &ProfileForm{
		store:     store,
		validator: NewProfileValidator(false),
		notifier:  NewLogNotifier(),
		storeKey:  "profile",
		profile:   models.DefaultProfile(),
		errors:    map[string]string{},
	}
	for _, opt := range opts {
		opt(f)
	}

	loaded, found, err := store.Load(ctx)
	switch {
	case err != nil:
		logger.Error("Failed to load saved profile, starting empty", zap.Error(err))
	case found:
		f.profile = loaded.Clone()
		logger.Info("Loaded saved profile",
			zap.Int("experiences", len(f.profile.Experiences)),
			zap.Int("skills", len(f.profile.Skills)),
			zap.Bool("has_resume", f.profile.HasResume()))
	default:
		logger.Info("Starting with empty profile")
	}

	return f
}

// State returns a snapshot of the form
func (f *ProfileForm) State() models.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return models.FormState{
		Profile:         f.profile.Clone(),
		Errors:          copyErrors(f.errors),
		DraftExperience: f.draftExperience,
		DraftSkill:      f.draftSkill,
		PreviewOpen:     f.previewOpen,
	}
}

// SetField overwrites a scalar profile field
func (f *ProfileForm) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	field := f.profile.ScalarField(name)
	if field == nil {
		return apperrors.InvalidInputError(name, "unknown profile field")
	}
	*field = value
	return nil
}

// SetDraftExperienceField overwrites a field of the draft experience
func (f *ProfileForm) SetDraftExperienceField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	field := f.draftExperience.Field(name)
	if field == nil {
		return apperrors.InvalidInputError(name, "unknown experience field")
	}
	*field = value
	return nil
}

// SetDraftSkill overwrites the draft skill
func (f *ProfileForm) SetDraftSkill(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draftSkill = value
}

// AddExperience appends the draft experience and resets it. Empty drafts are appended too.
func (f *ProfileForm) AddExperience() {
	f.mu.Lock()
	defer f.mu.Unlock()

	experiences := make([]models.Experience, 0, len(f.profile.Experiences)+1)
	experiences = append(experiences, f.profile.Experiences...)
	f.profile.Experiences = append(experiences, f.draftExperience)
	f.draftExperience = models.Experience{}

	metrics.ListEdits.WithLabelValues(models.FieldExperiences, "add").Inc()
}

// AddSkill appends the draft skill and resets it. Empty and duplicate skills are appended too.
func (f *ProfileForm) AddSkill() {
	f.mu.Lock()
	defer f.mu.Unlock()

	skills := make([]string, 0, len(f.profile.Skills)+1)
	skills = append(skills, f.profile.Skills...)
	f.profile.Skills = append(skills, f.draftSkill)
	f.draftSkill = ""

	metrics.ListEdits.WithLabelValues(models.FieldSkills, "add").Inc()
}

// RemoveExperience drops the experience at index. Out of range leaves the content unchanged.
func (f *ProfileForm) RemoveExperience(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profile.Experiences = removeAt(f.profile.Experiences, index)
	metrics.ListEdits.WithLabelValues(models.FieldExperiences, "remove").Inc()
}

// RemoveSkill drops the skill at index. Out of range leaves the content unchanged.
func (f *ProfileForm) RemoveSkill(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profile.Skills = removeAt(f.profile.Skills, index)
	metrics.ListEdits.WithLabelValues(models.FieldSkills, "remove").Inc()
}

// removeAt filters by position into a fresh slice
func removeAt[T any](items []T, index int) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		if i != index {
			out = append(out, item)
		}
	}
	return out
}

type readResult struct {
	data []byte
	err  error
}

// UploadResume reads the file and stores it as a data URI together with its name.
// The form is not touched until the read completes. When ctx ends first the
// content is closed if it is an io.Closer; a reader that never returns and
// cannot be closed keeps its read goroutine alive.
func (f *ProfileForm) UploadResume(ctx context.Context, file models.ResumeFile) error {
	ctx, span := tracing.StartSpan(ctx, "ProfileForm.UploadResume")
	defer span.End()
	span.SetAttributes(attribute.String("resume.name", file.Name))

	if file.Content == nil {
		return f.failUpload(file, apperrors.InvalidInputError(models.FieldResume, "no file content"))
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(file.Content)
		done <- readResult{data: data, err: err}
	}()

	var res readResult
	select {
	case <-ctx.Done():
		if closer, ok := file.Content.(io.Closer); ok {
			_ = closer.Close() //nolint:errcheck // unblocks the pending read
		}
		metrics.ResumeUploads.WithLabelValues("cancelled").Inc()
		logger.Warn("Resume upload cancelled", zap.String("file_name", file.Name), zap.Error(ctx.Err()))
		return ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		span.RecordError(res.err)
		return f.failUpload(file, res.err)
	}

	encoded := datauri.Encode(file.MediaType, res.data)

	f.mu.Lock()
	f.profile.Resume = encoded
	f.profile.ResumeName = file.Name
	delete(f.errors, models.FieldResume)
	f.mu.Unlock()

	metrics.ResumeUploads.WithLabelValues("success").Inc()
	metrics.ResumeUploadBytes.Observe(float64(len(res.data)))
	logger.Info("Resume uploaded",
		zap.String("file_name", file.Name),
		zap.String("media_type", datauri.Detect(res.data)),
		zap.Int("size_bytes", len(res.data)))

	return nil
}

func (f *ProfileForm) failUpload(file models.ResumeFile, err error) error {
	f.mu.Lock()
	f.errors[models.FieldResume] = ResumeReadFailedMessage
	f.mu.Unlock()

	metrics.ResumeUploads.WithLabelValues("error").Inc()
	logger.Error("Failed to read resume file", zap.String("file_name", file.Name), zap.Error(err))
	return fmt.Errorf("failed to read resume file: %w", err)
}

// ValidateAndSubmit checks the rule set and saves the buffer when it passes.
// The returned map is empty on success. A store failure is returned as an error.
// Notifications, preview listeners and events run after the form is unlocked.
func (f *ProfileForm) ValidateAndSubmit(ctx context.Context) (map[string]string, error) {
	ctx, span := tracing.StartSpan(ctx, "ProfileForm.ValidateAndSubmit")
	defer span.End()

	start := time.Now()

	f.mu.Lock()
	fieldErrors := f.validator.Validate(&f.profile)
	if len(fieldErrors) > 0 {
		f.errors = fieldErrors
		f.mu.Unlock()

		metrics.ProfileSubmissions.WithLabelValues("invalid").Inc()
		logger.Info("Profile submission blocked by validation",
			zap.Int("error_count", len(fieldErrors)),
			zap.Duration("duration", time.Since(start)))
		span.SetAttributes(attribute.Int("validation.errors", len(fieldErrors)))

		f.notifier.Notify(ctx, models.RequiredFieldsNotification())
		return copyErrors(fieldErrors), nil
	}

	f.errors = map[string]string{}
	record := f.profile.Clone()

	if err := f.store.Save(ctx, &record); err != nil {
		f.mu.Unlock()

		metrics.ProfileSubmissions.WithLabelValues("error").Inc()
		logger.Error("Failed to save profile", zap.Error(err))
		span.RecordError(err)

		f.notifier.Notify(ctx, models.SaveFailedNotification())
		return map[string]string{}, fmt.Errorf("failed to save profile: %w", err)
	}

	f.saved = &record
	f.previewOpen = true
	f.mu.Unlock()

	metrics.ProfileSubmissions.WithLabelValues("success").Inc()
	logger.Info("Profile saved",
		zap.Int("experiences", len(record.Experiences)),
		zap.Int("skills", len(record.Skills)),
		zap.Duration("duration", time.Since(start)))

	f.notifier.Notify(ctx, models.ProfileSavedNotification())

	for _, listener := range f.listeners {
		listener(record.Clone())
	}

	f.publish(ctx, record)

	return map[string]string{}, nil
}

// publish sends the saved event to every channel. Delivery failures are logged only.
func (f *ProfileForm) publish(ctx context.Context, record models.Profile) {
	if len(f.publishers) == 0 {
		return
	}

	event := models.ProfileSavedEvent{
		Key:         f.storeKey,
		Name:        record.Name,
		Email:       record.Email,
		Experiences: len(record.Experiences),
		Skills:      len(record.Skills),
		ResumeName:  record.ResumeName,
		SavedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	for _, p := range f.publishers {
		if err := p.PublishProfileSaved(ctx, event); err != nil {
			metrics.EventDeliveries.WithLabelValues(p.Name(), "error").Inc()
			logger.Warn("Failed to publish profile saved event", zap.String("channel", p.Name()), zap.Error(err))
			continue
		}
		metrics.EventDeliveries.WithLabelValues(p.Name(), "success").Inc()
	}
}

// ClosePreview hides the preview. The saved record is kept.
func (f *ProfileForm) ClosePreview() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previewOpen = false
}

// Preview returns the last saved record and whether the preview is open
func (f *ProfileForm) Preview() (models.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saved == nil {
		return models.DefaultProfile(), false
	}
	return f.saved.Clone(), f.previewOpen
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
