package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendly/bookhub/internal/model"
	"agendly/bookhub/internal/service"
	"agendly/bookhub/pkg/response"
)

type AppointmentHandler struct {
	bookingService service.BookingService
}

func NewAppointmentHandler(bookingService service.BookingService) *AppointmentHandler {
	return &AppointmentHandler{bookingService: bookingService}
}

type AppointmentRequest struct {
	ServiceID   *uuid.UUID `json:"service_id"`
	ClientName  string     `json:"client_name"`
	ClientPhone string     `json:"client_phone"`
	Date        string     `json:"date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Note        string     `json:"note"`
}

func (r AppointmentRequest) toInput() (service.AppointmentInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return service.AppointmentInput{}, errors.New("date must be YYYY-MM-DD")
	}
	return service.AppointmentInput{
		ServiceID:   r.ServiceID,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Date:        date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Note:        r.Note,
	}, nil
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	appointment, err := h.bookingService.CreateAppointment(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLimitExceeded):
			response.TooManyRequests(c, "monthly appointment limit reached")
		case errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, "business not found")
		case errors.Is(err, service.ErrServiceNotFound):
			response.NotFound(c, "service not found")
		default:
			response.InternalError(c, "failed to create appointment")
		}
		return
	}

	response.Success(c, appointment)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(c, "from must be YYYY-MM-DD")
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(c, "to must be YYYY-MM-DD")
			return
		}
		to = &t
	}

	appointments, err := h.bookingService.ListAppointments(c.Request.Context(), userID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to list appointments")
		return
	}

	response.Success(c, appointments)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
		return
	}

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	appointment, err := h.bookingService.UpdateAppointment(c.Request.Context(), userID, appointmentID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			response.NotFound(c, "appointment not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "appointment does not belong to this business")
		default:
			response.InternalError(c, "failed to update appointment")
		}
		return
	}

	response.Success(c, appointment)
}

type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
		return
	}

	var req AppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	status := model.AppointmentStatus(req.Status)
	switch status {
	case model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed,
		model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
	default:
		response.BadRequest(c, "unknown status")
		return
	}

	if err := h.bookingService.UpdateAppointmentStatus(c.Request.Context(), userID, appointmentID, status); err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			response.NotFound(c, "appointment not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "appointment does not belong to this business")
		default:
			response.InternalError(c, "failed to update appointment status")
		}
		return
	}

	response.Success(c, nil)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
		return
	}

	if err := h.bookingService.CancelAppointment(c.Request.Context(), userID, appointmentID); err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			response.NotFound(c, "appointment not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "appointment does not belong to this business")
		default:
			response.InternalError(c, "failed to cancel appointment")
		}
		return
	}

	response.Success(c, nil)
}

func (h *AppointmentHandler) ListClients(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	clients, err := h.bookingService.ListClients(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to list clients")
		return
	}

	response.Success(c, clients)
}

type ClientUpdateRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

func (h *AppointmentHandler) UpdateClient(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}

	var req ClientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	client, err := h.bookingService.UpdateClient(c.Request.Context(), userID, clientID, req.Name, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			response.NotFound(c, "client not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "client does not belong to this business")
		default:
			response.InternalError(c, "failed to update client")
		}
		return
	}

	response.Success(c, client)
}

func (h *AppointmentHandler) DeleteClient(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}

	if err := h.bookingService.DeleteClient(c.Request.Context(), userID, clientID); err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			response.NotFound(c, "client not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "client does not belong to this business")
		default:
			response.InternalError(c, "failed to delete client")
		}
		return
	}

	response.Success(c, nil)
}
