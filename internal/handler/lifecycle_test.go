package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/config"
	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/handler"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/internal/router"
	"github.com/skillcam-io/skillcam-api/internal/service"
)

var testUsers = map[string]middleware.AuthUser{
	"trainee-1": {ID: "trainee-1", Email: "one@example.com", Role: models.RoleTrainee},
	"trainee-2": {ID: "trainee-2", Email: "two@example.com", Role: models.RoleTrainee},
	"trainer-1": {ID: "trainer-1", Email: "coach@example.com", Role: models.RoleTrainer},
}

func setupApp(t *testing.T, dsn string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.AIEvaluation{},
		&models.TrainerFeedback{},
		&models.WaitlistEntry{},
	))
	for _, table := range []string{"waitlist_entries", "trainer_feedbacks", "ai_evaluations", "submissions", "users"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	for _, user := range testUsers {
		require.NoError(t, db.Create(&models.User{ID: user.ID, Email: user.Email, Role: user.Role}).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)

	userService := service.NewUserService(userRepo, logger)
	waitlistService := service.NewWaitlistService(waitlistRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, evaluationRepo, feedbackRepo, validate, nil, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, submissionRepo, validate, nil, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, submissionRepo, validate, nil, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "SkillCam Test"}, router.Dependencies{
		HealthHandler:     handler.NewHealthHandler("SkillCam Test", "test"),
		WaitlistHandler:   handler.NewWaitlistHandler(waitlistService, logger),
		UserHandler:       handler.NewUserHandler(userService, validate, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, nil, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, submissionService, logger),
		FeedbackHandler:   handler.NewFeedbackHandler(feedbackService, logger),
		AuthMiddleware: func(c *fiber.Ctx) error {
			if user, ok := testUsers[c.Get("X-Test-User")]; ok {
				middleware.SetCaller(c, user)
			}
			return c.Next()
		},
	})

	return app, db
}

func jsonRequest(t *testing.T, method, target, asUser string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser != "" {
		req.Header.Set("X-Test-User", asUser)
	}

	return req
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupApp(t, "file:handler_health?mode=memory&cache=shared")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWaitlistJoinIsIdempotent(t *testing.T) {
	app, _ := setupApp(t, "file:handler_waitlist?mode=memory&cache=shared")

	payload := map[string]string{"email": "Ana@Example.com", "organization": "Clinic A"}

	resp, err := app.Test(jsonRequest(t, "POST", "/api/waitlist", "", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var first dto.WaitlistJoinResponse
	decodeResponse(t, resp, &first)
	require.True(t, first.Success)
	require.False(t, first.AlreadyJoined)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/waitlist", "", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var second dto.WaitlistJoinResponse
	decodeResponse(t, resp, &second)
	require.True(t, second.Success)
	require.True(t, second.AlreadyJoined)
}

func TestWaitlistJoinRejectsInvalidEmail(t *testing.T) {
	app, _ := setupApp(t, "file:handler_waitlist_bad?mode=memory&cache=shared")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/waitlist", "", map[string]string{"email": "nope"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserProfileAndRoleChange(t *testing.T) {
	app, _ := setupApp(t, "file:handler_users?mode=memory&cache=shared")

	resp, err := app.Test(jsonRequest(t, "GET", "/api/users/me", "trainee-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me models.User
	decodeResponse(t, resp, &me)
	require.Equal(t, "trainee-1", me.ID)
	require.Equal(t, models.RoleTrainee, me.Role)

	resp, err = app.Test(jsonRequest(t, "PATCH", "/api/users/me", "trainee-1", map[string]string{"role": "trainer"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.User
	decodeResponse(t, resp, &updated)
	require.Equal(t, models.RoleTrainer, updated.Role)

	resp, err = app.Test(jsonRequest(t, "PATCH", "/api/users/me", "trainee-1", map[string]string{"role": "admin"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// An empty patch changes nothing and returns the current profile.
	resp, err = app.Test(jsonRequest(t, "PATCH", "/api/users/me", "trainee-1", map[string]string{}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var unchanged models.User
	decodeResponse(t, resp, &unchanged)
	require.Equal(t, models.RoleTrainer, unchanged.Role)
}

func TestSubmissionLifecycle(t *testing.T) {
	app, _ := setupApp(t, "file:handler_lifecycle?mode=memory&cache=shared")

	// Trainee records a new attempt.
	resp, err := app.Test(jsonRequest(t, "POST", "/api/submissions", "trainee-1", map[string]interface{}{
		"taskName":   "Suturing basics",
		"toolType":   "needle holder",
		"difficulty": "beginner",
		"notes":      "First attempt",
		"videoPath":  "trainee-1/1700000000000-clip.webm",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission models.Submission
	decodeResponse(t, resp, &submission)
	require.Equal(t, models.StatusPending, submission.Status)

	// Another trainee cannot see it.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/submissions/"+submission.ID, "trainee-2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The AI pipeline delivers its evaluation.
	resp, err = app.Test(jsonRequest(t, "POST", "/api/evaluations", "trainer-1", map[string]interface{}{
		"submissionId":   submission.ID,
		"accuracy":       80,
		"stability":      84,
		"completionTime": "4m 12s",
		"toolUsage":      79,
		"overallScore":   82,
		"feedback":       "Solid control throughout.",
		"analysisPoints": []string{"steady grip"},
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The owner's list view now carries the score and the new status.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/submissions", "trainee-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summaries []dto.SubmissionSummary
	decodeResponse(t, resp, &summaries)
	require.Len(t, summaries, 1)
	require.Equal(t, models.StatusAIEvaluated, summaries[0].Status)
	require.NotNil(t, summaries[0].AIScore)
	require.Equal(t, 82, *summaries[0].AIScore)

	// A duplicate delivery is rejected.
	resp, err = app.Test(jsonRequest(t, "POST", "/api/evaluations", "trainer-1", map[string]interface{}{
		"submissionId":   submission.ID,
		"accuracy":       80,
		"stability":      84,
		"completionTime": "4m 12s",
		"toolUsage":      79,
		"overallScore":   82,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Trainee cannot write feedback.
	resp, err = app.Test(jsonRequest(t, "POST", "/api/feedback", "trainee-1", map[string]interface{}{
		"submissionId":      submission.ID,
		"overallAssessment": "self-approval",
		"approved":          true,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Trainer approves.
	resp, err = app.Test(jsonRequest(t, "POST", "/api/feedback", "trainer-1", map[string]interface{}{
		"submissionId":      submission.ID,
		"overallAssessment": "Great control.",
		"trainerScore":      90,
		"nextSteps":         []string{"try advanced knots"},
		"approved":          true,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Detail view bundles everything.
	resp, err = app.Test(jsonRequest(t, "GET", "/api/submissions/"+submission.ID+"/details", "trainee-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var details dto.SubmissionDetails
	decodeResponse(t, resp, &details)
	require.Equal(t, models.StatusApproved, details.Submission.Status)
	require.NotNil(t, details.AIEvaluation)
	require.Equal(t, 82, details.AIEvaluation.OverallScore)
	require.NotNil(t, details.TrainerFeedback)
	require.True(t, details.TrainerFeedback.Approved)
}

func TestStatusOverrideIsTrainerOnly(t *testing.T) {
	app, _ := setupApp(t, "file:handler_override?mode=memory&cache=shared")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/submissions", "trainee-1", map[string]interface{}{
		"taskName":   "Knot tying",
		"toolType":   "forceps",
		"difficulty": "intermediate",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission models.Submission
	decodeResponse(t, resp, &submission)

	resp, err = app.Test(jsonRequest(t, "PATCH", "/api/submissions/"+submission.ID+"/status", "trainee-1", map[string]string{"status": "approved"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "PATCH", "/api/submissions/"+submission.ID+"/status", "trainer-1", map[string]string{"status": "approved"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/submissions/"+submission.ID, "trainer-1", nil))
	require.NoError(t, err)

	var stored models.Submission
	decodeResponse(t, resp, &stored)
	require.Equal(t, models.StatusApproved, stored.Status)
}

func TestEvaluationIntakeRejectsMalformedPayload(t *testing.T) {
	app, _ := setupApp(t, "file:handler_eval_schema?mode=memory&cache=shared")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/evaluations", "trainer-1", map[string]interface{}{
		"submissionId": "00000000-0000-4000-8000-000000000000",
		"accuracy":     150,
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
