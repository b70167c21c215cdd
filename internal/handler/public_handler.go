package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

// PublicHandler serves the anonymous booking page. No authentication,
// rate limiting happens at the edge.
type PublicHandler struct {
	bookingService service.BookingService
}

func NewPublicHandler(bookingService service.BookingService) *PublicHandler {
	return &PublicHandler{bookingService: bookingService}
}

func (h *PublicHandler) GetPage(c *gin.Context) {
	page, err := h.bookingService.GetPublicPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, "business not found")
		case errors.Is(err, service.ErrBusinessInactive):
			response.NotFound(c, "business not found")
		default:
			response.InternalError(c, "failed to load booking page")
		}
		return
	}

	response.Success(c, page)
}

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.ClientName == "" || req.ClientPhone == "" {
		response.BadRequest(c, "client_name and client_phone are required")
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	appointment, err := h.bookingService.CreatePublicAppointment(c.Request.Context(), c.Param("slug"), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound), errors.Is(err, service.ErrBusinessInactive):
			response.NotFound(c, "business not found")
		case errors.Is(err, service.ErrServiceNotFound):
			response.NotFound(c, "service not found")
		case errors.Is(err, service.ErrLimitExceeded):
			response.TooManyRequests(c, "this business cannot accept more bookings this month")
		default:
			response.InternalError(c, "failed to create appointment")
		}
		return
	}

	response.Success(c, appointment)
}
