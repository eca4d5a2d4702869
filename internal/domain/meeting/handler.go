package meeting

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
	api.POST("/schedule_meeting", h.ScheduleMeeting)
	api.GET("/test_email", h.TestEmail)
}

func (h *Handler) ScheduleMeeting(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("patientid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientid")
	}
	meetingDatetime := c.QueryParam("meeting_datetime")

	res, err := h.svc.Schedule(c.Request().Context(), id, meetingDatetime)
	if err != nil {
		switch {
		case errors.Is(err, patient.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		case errors.Is(err, ErrEmailMissing):
			return echo.NewHTTPError(http.StatusBadRequest, "Patient email not found in database")
		case errors.Is(err, ErrInvalidDatetime):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid datetime format. Use: YYYY-MM-DDTHH:MM:SS")
		case errors.Is(err, ErrPastDatetime):
			return echo.NewHTTPError(http.StatusBadRequest, "Meeting datetime must be in the future")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to schedule meeting: "+err.Error())
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":          fmt.Sprintf("Meeting scheduled successfully for %s", res.PatientName),
		"patient_name":     res.PatientName,
		"patient_email":    res.PatientEmail,
		"meeting_link":     res.MeetingLink,
		"meeting_datetime": meetingDatetime,
		"email_sent":       res.EmailSent,
		"status":           "success",
	})
}

func (h *Handler) TestEmail(c echo.Context) error {
	if err := h.svc.TestEmail(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "Email test failed",
			"error":   err.Error(),
			"status":  "failed",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Email test successful!",
		"from_email":  h.svc.mail.From(),
		"smtp_server": h.svc.mail.Server(),
		"status":      "working",
	})
}
