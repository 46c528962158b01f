package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"studio_site_go/config"
	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testTokenSecret = "handlers-test-secret-long-enough-for-hs256"

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while letting background tasks share the DB
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.AvailabilityEntry{}, &models.ContactSubmission{}, &models.User{})
	assert.NoError(t, err)

	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		AuthTokenSecret:   testTokenSecret,
		AuthTokenIssuer:   "studio-site",
		AuthTokenTTL:      time.Hour,
		EmailTestMode:     true,
		NotifyEmail:       "owner@example.com",
		BusinessName:      "Nuro Photographer",
		CalendarTimezone:  "Africa/Maputo",
		SideEffectTimeout: 2 * time.Second,
		AppURL:            "https://studio.example.com",
	}
}

// fakeMirror records Sync calls; block, when set, holds each call until closed
type fakeMirror struct {
	mu         sync.Mutex
	configured bool
	err        error
	block      chan struct{}
	requests   []services.SyncRequest
}

func (m *fakeMirror) Configured() bool { return m.configured }

func (m *fakeMirror) Sync(ctx context.Context, req services.SyncRequest) (*services.SyncResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	block, err := m.block, m.err
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &services.SyncResult{Outcome: services.SyncUpdated, EventID: "evt-1", Message: "Event updated in calendar"}, nil
}

func (m *fakeMirror) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// fakeMailer records sent emails
type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []*services.Email
}

func (m *fakeMailer) Send(_ context.Context, email *services.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, email)
	return "email-1", nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeProvider is an in-memory calendar that honors the time window and text query
type fakeProvider struct {
	mu     sync.Mutex
	nextID int
	events map[string]services.CalendarEvent
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: map[string]services.CalendarEvent{}}
}

func (p *fakeProvider) ListEvents(_ context.Context, _ string, timeMin, timeMax time.Time, query string) ([]services.CalendarEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []services.CalendarEvent
	for _, e := range p.events {
		if e.End.After(timeMin) && e.Start.Before(timeMax) && strings.Contains(e.Summary, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *fakeProvider) InsertEvent(_ context.Context, _ string, event *services.CalendarEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	e := *event
	e.ID = "evt-" + strconv.Itoa(p.nextID)
	p.events[e.ID] = e
	return e.ID, nil
}

func (p *fakeProvider) UpdateEvent(_ context.Context, _ string, event *services.CalendarEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.events[event.ID]; !ok {
		return errors.New("not found")
	}
	p.events[event.ID] = *event
	return nil
}

func (p *fakeProvider) DeleteEvent(_ context.Context, _ string, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.events, eventID)
	return nil
}

func (p *fakeProvider) all() []services.CalendarEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]services.CalendarEvent, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e)
	}
	return out
}

type testServer struct {
	echo    *echo.Echo
	handler *Handler
	db      *gorm.DB
	mirror  *fakeMirror
	mailer  *fakeMailer
	admin   *models.User
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithMirror(t, nil)
}

// newTestServerWithMirror uses mirror when non-nil, otherwise a configured fakeMirror
func newTestServerWithMirror(t *testing.T, mirror services.Mirror) *testServer {
	t.Helper()
	testDB := setupTestDB(t)
	cfg := testConfig()

	fm := &fakeMirror{configured: true}
	if mirror == nil {
		mirror = fm
	}
	mailer := &fakeMailer{}

	h := NewHandler(testDB, cfg, mirror, mailer, services.NewDispatcher(cfg.SideEffectTimeout))
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	RegisterRoutes(e, h, services.NewJWTVerifier(testDB, cfg.AuthTokenSecret, cfg.AuthTokenIssuer), nil)

	admin, err := services.CreateAdminUser(context.Background(), testDB, "Nuro", "admin@example.com", "SecretPass123!")
	assert.NoError(t, err)
	token, err := services.IssueAccessToken(admin, cfg.AuthTokenSecret, cfg.AuthTokenIssuer, time.Hour, time.Now())
	assert.NoError(t, err)

	return &testServer{echo: e, handler: h, db: testDB, mirror: fm, mailer: mailer, admin: admin, token: token.Token}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

// drain waits for background side effects
func (s *testServer) drain() {
	s.handler.Dispatcher.Wait()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
