package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/health_check", h.HealthCheck)
	api.GET("/fetch_all_records", h.FetchAllRecords)
	api.GET("/fetch_patient_details", h.FetchPatientDetails)
}

func (h *Handler) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) FetchAllRecords(c echo.Context) error {
	records, err := h.repo.FindAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
	}
	if len(records) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No records found")
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) FetchPatientDetails(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("patientid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientid")
	}
	p, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error: "+err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
