package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/database"
	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services"
	authutil "github.com/studyhall-app/studyhall-api/utils/auth"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	jwt *authutil.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	handler := NewSessionHandler(db, services.NewSessionService(db))

	app := fiber.New()
	group := app.Group("/api/v1/sessions", authMiddleware.Required())
	group.Post("/", handler.Create)
	group.Get("/current", handler.Current)
	group.Get("/", handler.List)
	group.Get("/:id", handler.Get)
	group.Put("/:id", handler.Update)

	return &testEnv{app: app, db: db, jwt: jwtManager}
}

func (e *testEnv) createUser(t *testing.T, code string) (*model.User, string) {
	t.Helper()

	user := &model.User{StudentCode: code, DisplayName: "Test Student", PasswordHash: "x"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, _, err := e.jwt.GenerateAccessToken(user.ID, user.StudentCode, user.TokenVersion)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, parsed
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "S001")

	resp, body := env.request(t, http.MethodPost, "/api/v1/sessions/", token, fiber.Map{
		"subject_id": 2,
		"study_date": "2026-03-10",
		"period":     3,
		"unit_name":  "Fractions",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %+v", resp.StatusCode, body)
	}

	session := body["data"].(map[string]interface{})["session"].(map[string]interface{})
	if session["study_date"] != "2026-03-10" || session["period"].(float64) != 3 {
		t.Errorf("unexpected session payload: %+v", session)
	}
	subject := session["subject"].(map[string]interface{})
	if subject["subject_name"] != "Mathematics" {
		t.Errorf("expected preloaded subject, got %+v", subject)
	}
}

func TestCreateSessionRejectsUnknownSubject(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "S001")

	resp, _ := env.request(t, http.MethodPost, "/api/v1/sessions/", token, fiber.Map{
		"subject_id": 999,
		"period":     1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown subject, got %d", resp.StatusCode)
	}
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/v1/sessions/", "", fiber.Map{
		"subject_id": 2,
		"period":     1,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestCurrentFindsOrCreates(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "S001")

	path := "/api/v1/sessions/current?subject_id=2&period=3&study_date=2026-03-10&unit_name=Fractions"

	resp, body := env.request(t, http.MethodGet, path, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]interface{})
	if data["created"] != true {
		t.Error("expected created=true on the first call")
	}
	firstID := data["session"].(map[string]interface{})["session_id"].(float64)

	resp, body = env.request(t, http.MethodGet, path, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data = body["data"].(map[string]interface{})
	if data["created"] != false {
		t.Error("expected created=false on the second call")
	}
	if data["session"].(map[string]interface{})["session_id"].(float64) != firstID {
		t.Error("expected the same session on the second call")
	}
}

func TestGetSessionHidesForeignRows(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.createUser(t, "S001")
	_, otherToken := env.createUser(t, "S002")

	session := model.StudySession{UserID: owner.ID, SubjectID: 2, StudyDate: "2026-03-10", Period: 3}
	if err := env.db.Create(&session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	resp, _ := env.request(t, http.MethodGet, "/api/v1/sessions/1", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for the owner, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodGet, "/api/v1/sessions/1", otherToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a foreign session, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodGet, "/api/v1/sessions/999", ownerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a missing session, got %d", resp.StatusCode)
	}
}

func TestListSessionsPaginates(t *testing.T) {
	env := newTestEnv(t)
	owner, token := env.createUser(t, "S001")

	for day := 1; day <= 3; day++ {
		env.db.Create(&model.StudySession{
			UserID:    owner.ID,
			SubjectID: 1,
			StudyDate: "2026-03-0" + string(rune('0'+day)),
			Period:    1,
		})
	}

	resp, body := env.request(t, http.MethodGet, "/api/v1/sessions/?limit=2", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if body["total"].(float64) != 3 {
		t.Errorf("expected total 3, got %v", body["total"])
	}
	if body["limit"].(float64) != 2 {
		t.Errorf("expected limit 2, got %v", body["limit"])
	}

	sessions := body["data"].(map[string]interface{})["sessions"].([]interface{})
	if len(sessions) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sessions))
	}
	newest := sessions[0].(map[string]interface{})
	if newest["study_date"] != "2026-03-03" {
		t.Errorf("expected newest lesson first, got %v", newest["study_date"])
	}
}

func TestUpdateSessionPartial(t *testing.T) {
	env := newTestEnv(t)
	owner, token := env.createUser(t, "S001")

	session := model.StudySession{UserID: owner.ID, SubjectID: 2, StudyDate: "2026-03-10", Period: 3, UnitName: "Fractions"}
	env.db.Create(&session)

	resp, body := env.request(t, http.MethodPut, "/api/v1/sessions/1", token, fiber.Map{
		"unit_name": "Decimals",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", resp.StatusCode, body)
	}
	updated := body["data"].(map[string]interface{})["session"].(map[string]interface{})
	if updated["unit_name"] != "Decimals" {
		t.Errorf("expected unit name updated, got %v", updated["unit_name"])
	}
	if updated["period"].(float64) != 3 {
		t.Errorf("expected period untouched, got %v", updated["period"])
	}

	resp, _ = env.request(t, http.MethodPut, "/api/v1/sessions/1", token, fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for an empty update, got %d", resp.StatusCode)
	}
}
