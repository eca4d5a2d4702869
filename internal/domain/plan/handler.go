package plan

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/patient360/backend/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/send_plan_via_whatsapp", h.SendPlan)
	api.POST("/send_patient_summary", h.SendPatientSummary)
	api.POST("/send_summary_template", h.SendSummaryTemplate)
}

func (h *Handler) SendPlan(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("patientid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientid")
	}
	planType := c.QueryParam("type")
	if planType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type is required")
	}

	if err := h.svc.Activate(c.Request().Context(), id, planType); err != nil {
		switch {
		case errors.Is(err, ErrNotUpdated):
			return echo.NewHTTPError(http.StatusNotFound, "Patient Not Updated")
		case errors.Is(err, patient.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Plans for all 7 days will be sent daily!"})
}

func (h *Handler) SendPatientSummary(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("patientid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientid")
	}

	res, err := h.svc.SendSummary(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, patient.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		case errors.Is(err, ErrMobileMissing):
			return echo.NewHTTPError(http.StatusBadRequest, "Mobile number missing for patient")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":           fmt.Sprintf("Health summary sent to %s on WhatsApp", res.Name),
		"patientid":         res.PatientID,
		"whatsapp_response": res.Response,
		"sent_text":         res.SentText,
	})
}

func (h *Handler) SendSummaryTemplate(c echo.Context) error {
	rawMobile := c.QueryParam("mobile_number")

	res, err := h.svc.SendSummaryTemplate(c.Request().Context(), rawMobile)
	if err != nil {
		if errors.Is(err, ErrInvalidMobile) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid mobile number")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send summary template: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":           fmt.Sprintf("Summary template sent successfully to %s", rawMobile),
		"mobile_number":     res.Mobile,
		"template_name":     res.Template,
		"whatsapp_response": res.Response,
		"status":            "success",
	})
}
