package plan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/patient360/backend/internal/domain/patient"
	"github.com/patient360/backend/internal/platform/whatsapp"
)

func newHandlerFixture(t *testing.T) (*Handler, *patient.MemoryRepository, *whatsapp.MockGateway) {
	t.Helper()
	repo := patient.NewMemoryRepository()
	gateway := &whatsapp.MockGateway{}
	svc := NewService(repo, gateway, whatsapp.NewTemplateRegistry(), zerolog.Nop(),
		WithDelayFunc(func(int) time.Duration { return time.Hour }))
	return NewHandler(svc), repo, gateway
}

func postContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_SendPlan(t *testing.T) {
	h, repo, gateway := newHandlerFixture(t)
	seedPatient(repo)
	c, rec := postContext(t, "/api/send_plan_via_whatsapp?patientid=12&type=Diet")

	if err := h.SendPlan(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Plans for all 7 days will be sent daily!" {
		t.Errorf("unexpected message: %q", body["message"])
	}
	if len(gateway.Calls()) != 1 {
		t.Errorf("expected greeting to be sent, got %d calls", len(gateway.Calls()))
	}
}

func TestHandler_SendPlan_UnknownPatient(t *testing.T) {
	h, _, _ := newHandlerFixture(t)
	c, _ := postContext(t, "/api/send_plan_via_whatsapp?patientid=99&type=Diet")

	err := h.SendPlan(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_SendPlan_BadParams(t *testing.T) {
	h, repo, _ := newHandlerFixture(t)
	seedPatient(repo)

	tests := []struct {
		name   string
		target string
	}{
		{"malformed id", "/api/send_plan_via_whatsapp?patientid=abc&type=Diet"},
		{"missing id", "/api/send_plan_via_whatsapp?type=Diet"},
		{"missing type", "/api/send_plan_via_whatsapp?patientid=12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := postContext(t, tt.target)
			err := h.SendPlan(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestHandler_SendPatientSummary(t *testing.T) {
	h, repo, _ := newHandlerFixture(t)
	seedPatient(repo)
	c, rec := postContext(t, "/api/send_patient_summary?patientid=12")

	if err := h.SendPatientSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Health summary sent to Asha on WhatsApp" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["patientid"] != float64(12) {
		t.Errorf("unexpected patientid: %v", body["patientid"])
	}
	if _, ok := body["whatsapp_response"]; !ok {
		t.Error("expected whatsapp_response in body")
	}
	if _, ok := body["sent_text"]; !ok {
		t.Error("expected sent_text in body")
	}
}

func TestHandler_SendPatientSummary_MobileMissing(t *testing.T) {
	h, repo, _ := newHandlerFixture(t)
	repo.Put(patient.Patient{PatientID: 13, Name: "NoPhone"})
	c, _ := postContext(t, "/api/send_patient_summary?patientid=13")

	err := h.SendPatientSummary(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_SendSummaryTemplate(t *testing.T) {
	h, _, _ := newHandlerFixture(t)
	c, rec := postContext(t, "/api/send_summary_template?mobile_number=%2B91%2099900-01111")

	if err := h.SendSummaryTemplate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["mobile_number"] != "919990001111" {
		t.Errorf("unexpected cleaned number: %v", body["mobile_number"])
	}
	if body["status"] != "success" {
		t.Errorf("unexpected status: %v", body["status"])
	}
	if body["template_name"] != "summary" {
		t.Errorf("unexpected template: %v", body["template_name"])
	}
}

func TestHandler_SendSummaryTemplate_Invalid(t *testing.T) {
	h, _, _ := newHandlerFixture(t)
	c, _ := postContext(t, "/api/send_summary_template?mobile_number=12345")

	err := h.SendSummaryTemplate(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
