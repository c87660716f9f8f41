package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/internal/preview"
	"github.com/getmentor/profile-editor/internal/services"
	apperrors "github.com/getmentor/profile-editor/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ResumeFormField is the multipart field carrying the resume file
const ResumeFormField = "resume"

// ProfileHandler exposes the profile form over HTTP
type ProfileHandler struct {
	form     services.ProfileFormInterface
	closeURL string
}

// NewProfileHandler creates a new ProfileHandler. closeURL is linked from the preview page.
func NewProfileHandler(form services.ProfileFormInterface, closeURL string) *ProfileHandler {
	return &ProfileHandler{form: form, closeURL: closeURL}
}

// Register mounts the form routes on rg. uploadMiddleware runs only on the resume upload.
func (h *ProfileHandler) Register(rg *gin.RouterGroup, uploadMiddleware ...gin.HandlerFunc) {
	rg.GET("", h.GetState)
	rg.PUT("/fields/:name", h.SetField)
	rg.PUT("/draft/experience/:name", h.SetDraftExperienceField)
	rg.PUT("/draft/skill", h.SetDraftSkill)
	rg.POST("/experiences", h.AddExperience)
	rg.DELETE("/experiences/:index", h.RemoveExperience)
	rg.POST("/skills", h.AddSkill)
	rg.DELETE("/skills/:index", h.RemoveSkill)
	rg.POST("/resume", append(uploadMiddleware, h.UploadResume)...)
	rg.POST("/submit", h.Submit)
	rg.GET("/preview", h.GetPreview)
	rg.POST("/preview/close", h.ClosePreview)
}

// GetState handles GET /api/v1/profile
func (h *ProfileHandler) GetState(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.form.State())
}

// SetField handles PUT /api/v1/profile/fields/:name
func (h *ProfileHandler) SetField(c *gin.Context) {
	value, ok := bindValue(c)
	if !ok {
		return
	}

	if err := h.form.SetField(c.Param("name"), value); err != nil {
		respondInputError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.form.State())
}

// SetDraftExperienceField handles PUT /api/v1/profile/draft/experience/:name
func (h *ProfileHandler) SetDraftExperienceField(c *gin.Context) {
	value, ok := bindValue(c)
	if !ok {
		return
	}

	if err := h.form.SetDraftExperienceField(c.Param("name"), value); err != nil {
		respondInputError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.form.State())
}

// SetDraftSkill handles PUT /api/v1/profile/draft/skill
func (h *ProfileHandler) SetDraftSkill(c *gin.Context) {
	value, ok := bindValue(c)
	if !ok {
		return
	}

	h.form.SetDraftSkill(value)
	c.JSON(http.StatusOK, h.form.State())
}

// AddExperience handles POST /api/v1/profile/experiences
func (h *ProfileHandler) AddExperience(c *gin.Context) {
	h.form.AddExperience()
	c.JSON(http.StatusOK, h.form.State())
}

// RemoveExperience handles DELETE /api/v1/profile/experiences/:index
func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	h.form.RemoveExperience(index)
	c.JSON(http.StatusOK, h.form.State())
}

// AddSkill handles POST /api/v1/profile/skills
func (h *ProfileHandler) AddSkill(c *gin.Context) {
	h.form.AddSkill()
	c.JSON(http.StatusOK, h.form.State())
}

// RemoveSkill handles DELETE /api/v1/profile/skills/:index
func (h *ProfileHandler) RemoveSkill(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	h.form.RemoveSkill(index)
	c.JSON(http.StatusOK, h.form.State())
}

// UploadResume handles POST /api/v1/profile/resume
// Expects a multipart form with the file in the "resume" field
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	header, err := c.FormFile(ResumeFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "Resume file is too large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "Resume file is required", err)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to open resume file", err)
		return
	}
	defer file.Close()

	err = h.form.UploadResume(c.Request.Context(), models.ResumeFile{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Content:   file,
	})
	if err != nil {
		attachError(c, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, models.UploadResumeResponse{Error: "Resume upload was cancelled"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, models.UploadResumeResponse{Error: services.ResumeReadFailedMessage})
		return
	}

	c.JSON(http.StatusOK, models.UploadResumeResponse{
		Success:    true,
		Message:    "Resume uploaded successfully",
		ResumeName: header.Filename,
	})
}

// Submit handles POST /api/v1/profile/submit
func (h *ProfileHandler) Submit(c *gin.Context) {
	fieldErrors, err := h.form.ValidateAndSubmit(c.Request.Context())
	if err != nil {
		notification := models.SaveFailedNotification()
		attachError(c, err)
		c.JSON(http.StatusInternalServerError, models.SubmitProfileResponse{
			Error:        "Failed to save profile",
			Notification: &notification,
		})
		return
	}

	if len(fieldErrors) > 0 {
		notification := models.RequiredFieldsNotification()
		c.JSON(http.StatusUnprocessableEntity, models.SubmitProfileResponse{
			Error:        notification.Description,
			Errors:       fieldErrors,
			Notification: &notification,
		})
		return
	}

	notification := models.ProfileSavedNotification()
	c.JSON(http.StatusOK, models.SubmitProfileResponse{
		Success:      true,
		Notification: &notification,
	})
}

// GetPreview handles GET /api/v1/profile/preview
func (h *ProfileHandler) GetPreview(c *gin.Context) {
	profile, open := h.form.Preview()

	var buf bytes.Buffer
	err := preview.Render(&buf, preview.View{Open: open, Profile: profile, CloseURL: h.closeURL})
	if errors.Is(err, preview.ErrClosed) {
		respondError(c, http.StatusNotFound, "Preview is closed", err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to render preview", err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ClosePreview handles POST /api/v1/profile/preview/close
func (h *ProfileHandler) ClosePreview(c *gin.Context) {
	h.form.ClosePreview()
	c.JSON(http.StatusOK, h.form.State())
}

func bindValue(c *gin.Context) (string, bool) {
	var req models.SetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		details := ParseValidationErrors(err)
		if len(details) == 0 {
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
			return "", false
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", details, err)
		return "", false
	}
	return *req.Value, true
}

func bindIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Index must be an integer", err)
		return 0, false
	}
	return index, true
}

func respondInputError(c *gin.Context, err error) {
	if apperrors.Is(err, apperrors.ErrInvalidInput) {
		respondError(c, http.StatusBadRequest, "Unknown field", err)
		return
	}
	respondError(c, http.StatusInternalServerError, "Failed to update field", err)
}
