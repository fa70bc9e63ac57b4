package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"

	"sorteo/internal/models"
	"sorteo/internal/services"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service *services.ReservationService
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.ReservationService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// RequestID tags every request with an id for log correlation. An id
// supplied by the caller is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("requestID", id)
		c.Next()
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/reservas", h.ListReservations)
		api.POST("/reservas", h.CreateReservation)
		api.PATCH("/reservas", h.UpdateReservation)
		api.DELETE("/reservas", h.DeleteReservation)
		api.POST("/reservas/multiple", h.CreateMultiple)
	}
}

// ListReservations handles the filtered, paginated list.
func (h *HTTPHandler) ListReservations(c *gin.Context) {
	params := services.ListParams{
		Page:    queryIntOrDefault(c, "page", 1),
		Limit:   queryIntOrDefault(c, "limit", models.TotalNumbers),
		Search:  c.Query("search"),
		Status:  c.DefaultQuery("status", "all"),
		Payment: c.DefaultQuery("payment", "all"),
	}

	result, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		logger.Errorf("Error listing reservations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateReservation appends one reservation. The fecha field is
// stamped server-side; whatever the caller sent is discarded.
func (h *HTTPHandler) CreateReservation(c *gin.Context) {
	var r models.Reservation
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Create(c.Request.Context(), r); err != nil {
		logger.Errorf("Error creating reservation %d: %v", r.Numero, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UpdateReservation merges the body's fields into the record with the
// matching numero. A missing numero is a no-op that still answers ok.
func (h *HTTPHandler) UpdateReservation(c *gin.Context) {
	var req struct {
		Numero int `json:"numero"`
		models.ReservationUpdate
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Update(c.Request.Context(), req.Numero, req.ReservationUpdate); err != nil {
		logger.Errorf("Error updating reservation %d: %v", req.Numero, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteReservation frees a slot entirely.
func (h *HTTPHandler) DeleteReservation(c *gin.Context) {
	var req struct {
		Numero int `json:"numero"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.Numero); err != nil {
		logger.Errorf("Error deleting reservation %d: %v", req.Numero, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateMultiple reserves a batch of numbers for one customer. It
// answers 400 on validation failures, 409 with the conflicting numbers
// when any of them is taken, and a generic 500 otherwise.
func (h *HTTPHandler) CreateMultiple(c *gin.Context) {
	var req services.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Errorf("Error parsing bulk reservation body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	reserved, err := h.service.CreateMultiple(c.Request.Context(), req)
	if err != nil {
		var vErr *services.ValidationError
		var cErr *services.ConflictError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
		case errors.As(err, &cErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":           cErr.Error(),
				"alreadyReserved": cErr.Numbers,
			})
		default:
			logger.Errorf("Error creating bulk reservation: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"message":         fmt.Sprintf("Se reservaron %d número(s) exitosamente", len(reserved)),
		"reservedNumbers": reserved,
	})
}

func queryIntOrDefault(c *gin.Context, key string, defaultValue int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return defaultValue
}
