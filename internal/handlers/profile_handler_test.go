package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/getmentor/profile-editor/internal/cache"
	"github.com/getmentor/profile-editor/internal/middleware"
	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/internal/repository"
	"github.com/getmentor/profile-editor/internal/services"
	json "github.com/goccy/go-json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const closeURL = "/api/v1/profile/preview/close"

type testServer struct {
	router *gin.Engine
	slot   *cache.SlotCache
	form   *services.ProfileForm
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	slot := cache.NewSlotCache()
	form := services.NewProfileForm(context.Background(), repository.NewProfileRepository(slot, "profile"))
	handler := NewProfileHandler(form, closeURL)

	router := gin.New()
	handler.Register(router.Group("/api/v1/profile"), middleware.BodySizeLimitMiddleware(1024))

	return &testServer{router: router, slot: slot, form: form}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, fileName, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="resume"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) models.FormState {
	t.Helper()
	var state models.FormState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestProfileHandler_GetState(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/profile", "")

	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, models.DefaultProfile(), state.Profile)
	assert.False(t, state.PreviewOpen)
}

func TestProfileHandler_SetField(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "name", path: "/api/v1/profile/fields/name", body: `{"value":"Ada"}`, wantStatus: http.StatusOK},
		{name: "empty value", path: "/api/v1/profile/fields/bio", body: `{"value":""}`, wantStatus: http.StatusOK},
		{name: "unknown field", path: "/api/v1/profile/fields/age", body: `{"value":"36"}`, wantStatus: http.StatusBadRequest},
		{name: "missing value", path: "/api/v1/profile/fields/name", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", path: "/api/v1/profile/fields/name", body: `{"value":`, wantStatus: http.StatusBadRequest},
		{name: "draft experience", path: "/api/v1/profile/draft/experience/title", body: `{"value":"Analyst"}`, wantStatus: http.StatusOK},
		{name: "unknown draft field", path: "/api/v1/profile/draft/experience/company", body: `{"value":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "draft skill", path: "/api/v1/profile/draft/skill", body: `{"value":"Go"}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	state := s.form.State()
	assert.Equal(t, "Ada", state.Profile.Name)
	assert.Equal(t, "Analyst", state.DraftExperience.Title)
	assert.Equal(t, "Go", state.DraftSkill)
}

func TestProfileHandler_Lists(t *testing.T) {
	s := newTestServer(t)

	for _, skill := range []string{"Go", "Rust", "TypeScript"} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/profile/draft/skill", `{"value":"`+skill+`"}`).Code)
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profile/skills", "").Code)
	}

	w := s.do(t, http.MethodDelete, "/api/v1/profile/skills/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Go", "TypeScript"}, decodeState(t, w).Profile.Skills)

	w = s.do(t, http.MethodDelete, "/api/v1/profile/skills/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/profile/draft/experience/title", `{"value":"Analyst"}`).Code)
	w = s.do(t, http.MethodPost, "/api/v1/profile/experiences", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, []models.Experience{{Title: "Analyst"}}, state.Profile.Experiences)
	assert.Equal(t, models.Experience{}, state.DraftExperience)

	w = s.do(t, http.MethodDelete, "/api/v1/profile/experiences/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Profile.Experiences)
}

func TestProfileHandler_UploadResume(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "cv.txt", "text/plain", "A")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.UploadResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "cv.txt", resp.ResumeName)

	state := s.form.State()
	assert.Equal(t, "data:text/plain;base64,QQ==", state.Profile.Resume)
	assert.Equal(t, "cv.txt", state.Profile.ResumeName)
}

func TestProfileHandler_UploadResume_DropsTypeParameters(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "cv.txt", "text/plain; charset=utf-8", "A")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "data:text/plain;base64,QQ==", s.form.State().Profile.Resume)
}

func TestProfileHandler_UploadResume_Errors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/profile/resume", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(t, "huge.pdf", "application/pdf", strings.Repeat("x", 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, s.form.State().Profile.Resume)
}

func TestProfileHandler_Submit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/profile/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var failed models.SubmitProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.False(t, failed.Success)
	assert.Equal(t, "Please fill out all required fields", failed.Error)
	assert.Equal(t, map[string]string{
		"name":   "Name is required",
		"email":  "Email is required",
		"resume": "Resume is required",
	}, failed.Errors)
	require.NotNil(t, failed.Notification)
	assert.Equal(t, "Error", failed.Notification.Title)

	_, found, err := s.slot.Get(context.Background(), "profile")
	require.NoError(t, err)
	assert.False(t, found)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/profile/fields/name", `{"value":"Ada"}`).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/v1/profile/fields/email", `{"value":"ada@example.com"}`).Code)
	require.Equal(t, http.StatusOK, s.upload(t, "cv.txt", "text/plain", "A").Code)

	w = s.do(t, http.MethodPost, "/api/v1/profile/submit", "")
	require.Equal(t, http.StatusOK, w.Code)

	var saved models.SubmitProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.Success)
	require.NotNil(t, saved.Notification)
	assert.Equal(t, "Profile saved.", saved.Notification.Title)
	assert.Equal(t, "Your profile has been updated and saved.", saved.Notification.Description)

	raw, found, err := s.slot.Get(context.Background(), "profile")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t,
		`{"name":"Ada","email":"ada@example.com","bio":"","experiences":[],"skills":[],"resume":"data:text/plain;base64,QQ==","resumeName":"cv.txt"}`,
		raw)
}

func TestProfileHandler_Preview(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/profile/preview", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, s.form.SetField(models.FieldName, "Ada"))
	require.NoError(t, s.form.SetField(models.FieldEmail, "ada@example.com"))
	require.Equal(t, http.StatusOK, s.upload(t, "cv.txt", "text/plain", "A").Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/profile/submit", "").Code)

	w = s.do(t, http.MethodGet, "/api/v1/profile/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Profile Details")
	assert.Contains(t, w.Body.String(), "ada@example.com")
	assert.Contains(t, w.Body.String(), closeURL)

	w = s.do(t, http.MethodPost, "/api/v1/profile/preview/close", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeState(t, w).PreviewOpen)

	w = s.do(t, http.MethodGet, "/api/v1/profile/preview", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
