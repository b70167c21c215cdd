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

type BusinessHandler struct {
	businessService service.BusinessService
}

func NewBusinessHandler(businessService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

type BusinessRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	PaymentLink string `json:"payment_link"`
	Terms       string `json:"terms"`
	IsActive    *bool  `json:"is_active"`
}

func (r BusinessRequest) toInput() service.BusinessInput {
	return service.BusinessInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Phone:       r.Phone,
		Address:     r.Address,
		PaymentLink: r.PaymentLink,
		Terms:       r.Terms,
		IsActive:    r.IsActive,
	}
}

func (h *BusinessHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.Slug == "" {
		response.BadRequest(c, "name and slug are required")
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), userID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessExists):
			response.Conflict(c, "business already exists")
		case errors.Is(err, service.ErrSlugTaken):
			response.Conflict(c, "slug already taken")
		case errors.Is(err, service.ErrInvalidSlug):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to create business")
		}
		return
	}

	response.Success(c, business)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	business, err := h.businessService.GetOwnBusiness(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to load business")
		return
	}

	response.Success(c, business)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), userID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, "business not found")
		case errors.Is(err, service.ErrSlugTaken):
			response.Conflict(c, "slug already taken")
		case errors.Is(err, service.ErrInvalidSlug):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to update business")
		}
		return
	}

	response.Success(c, business)
}

type ServiceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	IsActive        *bool   `json:"is_active"`
}

func (r ServiceRequest) toInput() service.ServiceInput {
	return service.ServiceInput{
		Name:            r.Name,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		IsActive:        r.IsActive,
	}
}

func (h *BusinessHandler) CreateService(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}

	svc, err := h.businessService.CreateService(c.Request.Context(), userID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to create service")
		return
	}

	response.Success(c, svc)
}

func (h *BusinessHandler) ListServices(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	services, err := h.businessService.ListServices(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to list services")
		return
	}

	response.Success(c, services)
}

func (h *BusinessHandler) UpdateService(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service id")
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	svc, err := h.businessService.UpdateService(c.Request.Context(), userID, serviceID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound), errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, "service not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "service does not belong to this business")
		default:
			response.InternalError(c, "failed to update service")
		}
		return
	}

	response.Success(c, svc)
}

func (h *BusinessHandler) DeleteService(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service id")
		return
	}

	if err := h.businessService.DeleteService(c.Request.Context(), userID, serviceID); err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound), errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, "service not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, "service does not belong to this business")
		default:
			response.InternalError(c, "failed to delete service")
		}
		return
	}

	response.Success(c, nil)
}

func (h *BusinessHandler) ListAvailability(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	windows, err := h.businessService.ListAvailability(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to list availability")
		return
	}

	response.Success(c, windows)
}

type SetAvailabilityRequest struct {
	Windows []service.AvailabilityWindow `json:"windows"`
}

func (h *BusinessHandler) SetAvailability(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.businessService.SetAvailability(c.Request.Context(), userID, req.Windows); err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, nil)
}

type UnavailableDateRequest struct {
	Date        string `json:"date" binding:"required"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

func (h *BusinessHandler) AddUnavailableDate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req UnavailableDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	entry := &model.UnavailableDate{
		Date:        date,
		Tag:         req.Tag,
		Description: req.Description,
	}
	if err := h.businessService.AddUnavailableDate(c.Request.Context(), userID, entry); err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to add unavailable date")
		return
	}

	response.Success(c, entry)
}

func (h *BusinessHandler) ListUnavailableDates(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	dates, err := h.businessService.ListUnavailableDates(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to list unavailable dates")
		return
	}

	response.Success(c, dates)
}

func (h *BusinessHandler) RemoveUnavailableDate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	dateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	if err := h.businessService.RemoveUnavailableDate(c.Request.Context(), userID, dateID); err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, "business not found")
			return
		}
		response.InternalError(c, "failed to remove unavailable date")
		return
	}

	response.Success(c, nil)
}
