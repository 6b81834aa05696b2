package hospital

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/carelink-api/internal/service/hospital"
	"github.com/carelink/carelink-api/internal/service/scheduling"
	apperrors "github.com/carelink/carelink-api/pkg/errors"
	"github.com/carelink/carelink-api/pkg/httputil"
)

type Handler struct {
	hospitalSvc   *hospital.Service
	schedulingSvc *scheduling.Service
}

func NewHandler(hospitalSvc *hospital.Service, schedulingSvc *scheduling.Service) *Handler {
	return &Handler{hospitalSvc: hospitalSvc, schedulingSvc: schedulingSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	hospitals := rg.Group("/hospitals")
	{
		hospitals.GET("/nearby", h.GetNearbyHospitals)
		hospitals.GET("/:id", h.GetHospital)
		hospitals.GET("/:id/availability", h.GetAvailability)
	}
}

func (h *Handler) GetHospital(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid hospital ID", err))
		return
	}

	hosp, err := h.hospitalSvc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, hosp)
}

func (h *Handler) GetNearbyHospitals(c *gin.Context) {
	longitude, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid longitude", err))
		return
	}
	latitude, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid latitude", err))
		return
	}

	radius := 0.0
	if r := c.Query("radius"); r != "" {
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid radius", err))
			return
		}
	}

	var services []string
	if s := c.Query("services"); s != "" {
		services = strings.Split(s, ",")
	}

	hospitals, err := h.hospitalSvc.Nearby(c.Request.Context(), longitude, latitude, radius, services)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, hospitals)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid hospital ID", err))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err))
		return
	}

	slots, err := h.schedulingSvc.AvailableSlots(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"available_slots": slots})
}
