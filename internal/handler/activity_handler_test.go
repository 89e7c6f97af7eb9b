package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/middleware"
	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/service"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type activityServiceMock struct {
	listResp           []dto.OccurrenceView
	listErr            error
	signupErr          error
	unregisterErr      error
	lastStart          string
	lastEnd            string
	lastOccurrenceDate string
	lastResidentID     string
	signupCalled       bool
	unregisterCalled   bool
}

func (m *activityServiceMock) ListOccurrences(ctx context.Context, now time.Time, startDate, endDate string) ([]dto.OccurrenceView, error) {
	m.lastStart = startDate
	m.lastEnd = endDate
	return m.listResp, m.listErr
}

func (m *activityServiceMock) Get(ctx context.Context, id string) (*models.Activity, error) {
	return &models.Activity{ID: id}, nil
}

func (m *activityServiceMock) Create(ctx context.Context, req service.CreateActivityRequest) (*models.Activity, error) {
	return &models.Activity{ID: "act-1", Name: req.Name}, nil
}

func (m *activityServiceMock) Update(ctx context.Context, id string, req service.UpdateActivityRequest) (*models.Activity, error) {
	return &models.Activity{ID: id, Name: req.Name}, nil
}

func (m *activityServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *activityServiceMock) Signup(ctx context.Context, activityID, residentID, occurrenceDate string) error {
	m.signupCalled = true
	m.lastResidentID = residentID
	m.lastOccurrenceDate = occurrenceDate
	return m.signupErr
}

func (m *activityServiceMock) Unregister(ctx context.Context, activityID, residentID, occurrenceDate string) error {
	m.unregisterCalled = true
	m.lastOccurrenceDate = occurrenceDate
	return m.unregisterErr
}

func residentContext(w *httptest.ResponseRecorder, userID string) (*gin.Context, *gin.Engine) {
	c, e := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.RoleResident})
	return c, e
}

func TestActivityHandlerListPassesWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{
		listResp: []dto.OccurrenceView{{ActivityID: "act-1", Name: "Morning Yoga"}},
	}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "res-1")
	req, _ := http.NewRequest(http.MethodGet, "/activities?start_date=2024-01-01&end_date=2024-01-22", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-01", mockSvc.lastStart)
	assert.Equal(t, "2024-01-22", mockSvc.lastEnd)

	var envelope struct {
		Data []dto.OccurrenceView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Morning Yoga", envelope.Data[0].Name)
}

func TestActivityHandlerSignup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "res-1")
	body := bytes.NewBufferString(`{"occurrence_date":"2024-01-08T13:00:00Z"}`)
	req, _ := http.NewRequest(http.MethodPost, "/activities/act-1/signup", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "act-1"}}

	handler.Signup(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.signupCalled)
	assert.Equal(t, "res-1", mockSvc.lastResidentID)
	assert.Equal(t, "2024-01-08T13:00:00Z", mockSvc.lastOccurrenceDate)
	assert.Contains(t, w.Body.String(), "signed up")
}

func TestActivityHandlerSignupFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{signupErr: appErrors.ErrCapacityExceeded}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "res-1")
	body := bytes.NewBufferString(`{"occurrence_date":"2024-01-08T13:00:00Z"}`)
	req, _ := http.NewRequest(http.MethodPost, "/activities/act-1/signup", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "act-1"}}

	handler.Signup(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Activity is full")
}

func TestActivityHandlerSignupInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "res-1")
	req, _ := http.NewRequest(http.MethodPost, "/activities/act-1/signup", bytes.NewBufferString(`{"occurrence_date":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "act-1"}}

	handler.Signup(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.signupCalled)
}

func TestActivityHandlerUnregisterNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{
		unregisterErr: appErrors.Clone(appErrors.ErrNotFound, "Activity instance not found"),
	}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "res-1")
	body := bytes.NewBufferString(`{"occurrence_date":"2024-01-08T13:00:00Z"}`)
	req, _ := http.NewRequest(http.MethodPost, "/activities/act-1/unregister", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "act-1"}}

	handler.Unregister(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Activity instance not found")
}

func TestActivityHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &activityServiceMock{}
	handler := NewActivityHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := residentContext(w, "staff-1")
	body := bytes.NewBufferString(`{"name":"Bingo","date_time":"2024-05-01T15:00:00","location":"Hall","recurrence":"Weekly","capacity":20}`)
	req, _ := http.NewRequest(http.MethodPost, "/activities", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Bingo")
}
