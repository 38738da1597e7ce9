package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/dto"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/service"
)

type Handler struct {
	eventService service.EventServicer
	router       *gin.Engine
	log          *zap.Logger
}

func NewHandler(eventService service.EventServicer, log *zap.Logger) *Handler {
	h := &Handler{
		eventService: eventService,
		router:       gin.Default(),
		log:          log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/ingest", h.ingestBatch)
	h.router.POST("/ingest/single", h.ingestSingle)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ingestSingle handles POST /ingest/single
func (h *Handler) ingestSingle(c *gin.Context) {
	var req dto.IngestEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.eventService.IngestEvent(&req)
	if err != nil {
		h.log.Error("Failed to ingest event",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Event accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.IngestSingleResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// ingestBatch handles POST /ingest
func (h *Handler) ingestBatch(c *gin.Context) {
	var batchRequest dto.IngestBatchRequest

	if err := c.ShouldBindJSON(&batchRequest); err != nil {
		h.log.Warn("Invalid batch ingest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, errors, err := h.eventService.IngestBatch(batchRequest.Events)
	if err != nil {
		h.log.Error("Failed to ingest batch",
			zap.Error(err),
			zap.Int("event_count", len(batchRequest.Events)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	accepted := len(eventIDs)
	rejected := len(errors)

	h.log.Info("Batch ingest processed",
		zap.Int("accepted", accepted),
		zap.Int("rejected", rejected),
		zap.Int("total", len(batchRequest.Events)))

	c.JSON(http.StatusAccepted, dto.IngestBatchResponse{
		Accepted: accepted,
		Rejected: rejected,
		EventIDs: eventIDs,
		Errors:   errors,
	})
}
