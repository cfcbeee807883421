package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aakar/internal/webhook"
	"aakar/internal/webhook/handler/mocks"
	"aakar/internal/webhook/service"
	dErrors "aakar/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/webhook-mocks.go -package=mocks Service

const testSecret = "test-webhook-secret"

type WebhookHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *mocks.MockService
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerSuite))
}

func (s *WebhookHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(webhook.NewVerifier(testSecret), s.service, nil, logger)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookHandlerSuite) post(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const validBody = `{"payload":{"payment":{"entity":{"id":"pay_1","order_id":"o1","amount":25000,"status":"captured","notes":{"name":"Asha","phone":"9000000001","usn":"1AB21CS001","college":"ABC","registrations":[{"event_id":4,"amount":25000,"order_id":"o1"}]}}}}}`

func (s *WebhookHandlerSuite) TestInvalidSignatureRejectedBeforeService() {
	// No Process expectation: the service must not be reached.
	w := s.post([]byte(validBody), "deadbeef")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(s.T(), `{"error":"Invalid signature"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestMissingSignatureRejected() {
	w := s.post([]byte(validBody), "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(s.T(), `{"error":"Invalid signature"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestSuccessEnvelope() {
	s.service.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entity webhook.PaymentEntity) (service.Result, error) {
			assert.Equal(s.T(), "o1", entity.OrderID)
			assert.Equal(s.T(), "9000000001", entity.Notes.Phone)
			require.Len(s.T(), entity.Notes.Registrations, 1)
			assert.Equal(s.T(), 4, entity.Notes.Registrations[0].EventID)
			return service.Result{Added: 1}, nil
		})

	body := []byte(validBody)
	w := s.post(body, sign(body))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"success":true,"registrationsAdded":1}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestDuplicateOrderEnvelope() {
	s.service.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(service.Result{Duplicate: true}, nil)

	body := []byte(validBody)
	w := s.post(body, sign(body))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"success":true,"message":"Order already processed"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestCapacityExceededEnvelope() {
	s.service.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(service.Result{}, dErrors.New(dErrors.CodeCapacityExceeded, "Maximum event registration limit reached"))

	body := []byte(validBody)
	w := s.post(body, sign(body))

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(s.T(), `{"success":false,"message":"Maximum event registration limit reached"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestInternalErrorHidesDetail() {
	s.service.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(service.Result{}, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

	body := []byte(validBody)
	w := s.post(body, sign(body))

	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
	assert.NotContains(s.T(), w.Body.String(), "pq:")
	assert.JSONEq(s.T(), `{"message":"Internal server error","error":"webhook processing failed"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestMalformedJSONRejected() {
	body := []byte(`{"payload":`)
	w := s.post(body, sign(body))

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(s.T(), `{"error":"Invalid payload"}`, w.Body.String())
}
