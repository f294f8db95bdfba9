package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-forge/internal/auth"
	"resume-forge/internal/models"
	"resume-forge/internal/quota"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// resumeEnvelope decodes the uniform response shape with a resume payload.
type resumeEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    models.Resume `json:"data"`
	Error   string        `json:"error"`
}

func uploadResumeAPI(t *testing.T, claims *auth.AppClaims, filename, content string) *models.Resume {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.UploadResumeHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, "upload failed: %s", rr.Body.String())

	var env resumeEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success)
	return &env.Data
}

// resumeRouter wires the id-parameterised routes the way main does, behind
// the real auth middleware.
func resumeRouter() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(testServer.AuthMiddleware)
		r.Get("/resumes/{resumeId}", testServer.GetResumeHandler)
		r.Patch("/resumes/{resumeId}", testServer.UpdateResumeHandler)
		r.Delete("/resumes/{resumeId}", testServer.DeleteResumeHandler)
		r.Post("/resumes/{resumeId}/analyze", testServer.AnalyzeResumeHandler)
		r.Post("/resumes/{resumeId}/enhance", testServer.EnhanceResumeHandler)
		r.Post("/resumes/{resumeId}/match", testServer.MatchResumeHandler)
	})
	return r
}

func TestAuthMiddleware_MissingAndInvalidCredentials(t *testing.T) {
	router := resumeRouter()

	req := httptest.NewRequest("GET", "/api/v1/resumes/some_resume_id_00000x", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)

	req = httptest.NewRequest("GET", "/api/v1/resumes/some_resume_id_00000x", nil)
	req.Header.Set("Authorization", "Bearer not.a.real.token")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUploadResumeHandler_Success(t *testing.T) {
	resume := uploadResumeAPI(t, testUserClaims, "upload-ok.txt",
		"Senior Go engineer. Built resilient payment services on postgres and kafka.")

	require.Equal(t, models.StatusUploaded, resume.Status)
	require.Equal(t, "upload-ok.txt", resume.Filename)
	require.Equal(t, models.FormatTXT, resume.SourceFormat)
	require.NotEmpty(t, resume.OriginalText)
	require.Len(t, resume.ID, 21)

	// the original bytes land in storage under the record id
	f, err := testServer.storage.Get(resume.ID)
	require.NoError(t, err)
	f.Close()
}

func TestUploadResumeHandler_BlankText(t *testing.T) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "blank.txt")
	require.NoError(t, err)
	part.Write([]byte("   \n\t  \n"))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testUserClaims))
	http.HandlerFunc(testServer.UploadResumeHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadResumeHandler_DuplicateFilename(t *testing.T) {
	uploadResumeAPI(t, testUserClaims, "dup.txt", "some resume content here")

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "dup.txt")
	part.Write([]byte("different content, same filename"))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testUserClaims))
	http.HandlerFunc(testServer.UploadResumeHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetResumeHandler_OwnerScoping(t *testing.T) {
	_, strangerToken, _ := newAPIUser(t, "scoping_stranger@example.com")
	resume := uploadResumeAPI(t, testUserClaims, "scoped.txt", "content owned by the main test user")

	router := resumeRouter()

	req := httptest.NewRequest("GET", "/api/v1/resumes/"+resume.ID, nil)
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// someone else's token sees a 404, not a 403
	req = httptest.NewRequest("GET", "/api/v1/resumes/"+resume.ID, nil)
	req.Header.Set("Authorization", "Bearer "+strangerToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalyzeResumeHandler_FallsBackOnProviderFailure(t *testing.T) {
	user, token, claims := newAPIUser(t, "analyze_fallback@example.com")
	resume := uploadResumeAPI(t, claims, "analyze-me.txt",
		"Backend engineer with golang postgres docker kubernetes experience and delivery record.")

	router := resumeRouter()
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/resumes/%s/analyze", resume.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// the configured provider always fails, yet the call succeeds with
	// fallback data
	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	var env resumeEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, models.StatusAnalyzed, env.Data.Status)
	require.NotNil(t, env.Data.Analysis)
	require.True(t, env.Data.Analysis.Fallback)
	require.GreaterOrEqual(t, env.Data.Analysis.Score, 0)
	require.LessOrEqual(t, env.Data.Analysis.Score, 100)

	// the stored record matches what the response claimed
	stored, err := testServer.store.GetResumeForOwner(context.Background(), resume.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAnalyzed, stored.Status)
	require.NotNil(t, stored.Analysis)
	require.Equal(t, env.Data.Analysis.Score, stored.Analysis.Score)

	// one generation was charged
	charged, err := testServer.store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, charged.MonthlyCount)
	require.Equal(t, int64(1), charged.LifetimeCount)
}

func TestEnhanceResumeHandler_AppendsNamedVersion(t *testing.T) {
	_, token, claims := newAPIUser(t, "enhance_version@example.com")
	resume := uploadResumeAPI(t, claims, "enhance-me.txt", "plain resume text to be improved")

	payload, _ := json.Marshal(EnhanceRequest{TargetRole: "Staff Engineer", TargetIndustry: "fintech"})
	router := resumeRouter()
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/resumes/%s/enhance", resume.ID), bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	var env resumeEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, models.StatusEnhanced, env.Data.Status)
	require.NotNil(t, env.Data.EnhancedText)
	require.NotEmpty(t, *env.Data.EnhancedText)
	require.Len(t, env.Data.Versions, 1)
	require.Equal(t, "Staff Engineer", env.Data.Versions[0].Name)
}

func TestMatchResumeHandler_ValidationAndAppend(t *testing.T) {
	_, token, claims := newAPIUser(t, "match_append@example.com")
	resume := uploadResumeAPI(t, claims, "match-me.txt", "golang engineer resume with cloud experience")

	router := resumeRouter()

	// missing job_description is rejected before any quota is spent
	payload, _ := json.Marshal(MatchRequest{JobTitle: "Go Developer"})
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/resumes/%s/match", resume.ID), bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	payload, _ = json.Marshal(MatchRequest{
		JobTitle:       "Go Developer",
		JobDescription: "We need golang, postgres and kubernetes experience.",
		CompanyName:    "Acme",
	})
	req = httptest.NewRequest("POST", fmt.Sprintf("/api/v1/resumes/%s/match", resume.ID), bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	var env struct {
		Success bool            `json:"success"`
		Data    models.JobMatch `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "Go Developer", env.Data.JobTitle)
	require.True(t, env.Data.Fallback)

	// matching never changes the record status, it only grows the list
	stored, err := testServer.store.GetResumeForOwner(context.Background(), resume.ID, claims.UserID)
	require.NoError(t, err)
	require.Equal(t, models.StatusUploaded, stored.Status)
	require.Len(t, stored.JobMatches, 1)
}

func TestAnalyzeResumeHandler_QuotaExhausted(t *testing.T) {
	user, token, claims := newAPIUser(t, "quota_exhausted@example.com")
	resume := uploadResumeAPI(t, claims, "quota.txt", "resume text for quota checks")

	// burn the whole free-tier allowance
	user.MonthlyCount = quota.LimitFor(models.TierFree)
	user.LastResetAt = time.Now()
	require.NoError(t, testServer.store.UpdateUsage(context.Background(), user))

	router := resumeRouter()
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/resumes/%s/analyze", resume.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.False(t, env.Success)

	// the rejected call touched neither the record nor the counters
	stored, err := testServer.store.GetResumeForOwner(context.Background(), resume.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusUploaded, stored.Status)
	require.Nil(t, stored.Analysis)

	unchanged, err := testServer.store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, quota.LimitFor(models.TierFree), unchanged.MonthlyCount)
}

func TestGetUsageHandler(t *testing.T) {
	user, _, claims := newAPIUser(t, "usage_view@example.com")

	user.MonthlyCount = 2
	user.LifetimeCount = 9
	user.LastResetAt = time.Now()
	require.NoError(t, testServer.store.UpdateUsage(context.Background(), user))

	req := httptest.NewRequest("GET", "/api/v1/me/usage", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetUsageHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data UsageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, models.TierFree, env.Data.Tier)
	require.Equal(t, 2, env.Data.Used)
	require.Equal(t, quota.LimitFor(models.TierFree), env.Data.Limit)
	require.Equal(t, quota.LimitFor(models.TierFree)-2, env.Data.Remaining)
	require.Equal(t, int64(9), env.Data.LifetimeTotal)
}

func TestUpdateAndDeleteResumeHandlers(t *testing.T) {
	_, token, claims := newAPIUser(t, "rename_delete@example.com")
	resume := uploadResumeAPI(t, claims, "rename-me.txt", "resume content")

	router := resumeRouter()

	payload, _ := json.Marshal(UpdateResumeRequest{Title: "Sharper Title"})
	req := httptest.NewRequest("PATCH", "/api/v1/resumes/"+resume.ID, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var env resumeEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "Sharper Title", env.Data.Title)

	req = httptest.NewRequest("DELETE", "/api/v1/resumes/"+resume.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// gone from the database and from disk
	stored, err := testServer.store.GetResumeForOwner(context.Background(), resume.ID, claims.UserID)
	require.NoError(t, err)
	require.Nil(t, stored)

	_, err = testServer.storage.Get(resume.ID)
	require.Error(t, err)
}

func TestGetEventsHandler_JournalsActivity(t *testing.T) {
	_, _, claims := newAPIUser(t, "events_journal@example.com")
	uploadResumeAPI(t, claims, "journal.txt", "resume content for the journal")

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetEventsHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data []struct {
			ID        int64  `json:"id"`
			EventType string `json:"event_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data)
	require.Equal(t, "resume_uploaded", env.Data[0].EventType)

	// ?since= filters out everything already seen
	lastID := env.Data[len(env.Data)-1].ID
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/v1/events?since=%d", lastID), nil)
	rr = httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetEventsHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var empty struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &empty))
	require.Empty(t, empty.Data)
}

func TestRegisterAndLoginHandlers(t *testing.T) {
	display := "Flow User"
	payload, _ := json.Marshal(RegisterRequest{
		Email:       "register_flow@example.com",
		Password:    "longenoughpassword",
		DisplayName: &display,
	})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.RegisterHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var env struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.AccessToken)
	require.NotEmpty(t, env.Data.RefreshToken)
	require.NotNil(t, env.Data.User)

	// registering again conflicts
	req = httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(payload))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.RegisterHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)

	// login with the right and the wrong password
	loginBody, _ := json.Marshal(LoginRequest{Email: "register_flow@example.com", Password: "longenoughpassword"})
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(loginBody))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	badBody, _ := json.Marshal(LoginRequest{Email: "register_flow@example.com", Password: "wrongpassword"})
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(badBody))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
