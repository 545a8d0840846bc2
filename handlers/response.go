package handlers

import (
	"errors"
	"net/http"

	"delivery-svc/kafka"
	"delivery-svc/middleware"
	"delivery-svc/models"
	"delivery-svc/store"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ResponseHandler struct {
	store    *store.OrderWorkflowStore
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewResponseHandler(s *store.OrderWorkflowStore, producer sarama.SyncProducer, logger *zap.Logger) *ResponseHandler {
	return &ResponseHandler{
		store:    s,
		producer: producer,
		logger:   logger,
	}
}

// SubmitResponse records the customer's replace/remove decision,
// resolving the item's issue. When the last issue of the order is
// resolved the order drops back to pending.
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "SubmitResponse")
	defer span.End()

	orderID := c.Param("id")
	itemID := c.Param("itemId")
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("item.id", itemID),
	)

	var req models.CustomerResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.store.SubmitCustomerResponse(orderID, itemID, req.Action, req.ReplacementID)
	if err != nil {
		if errors.Is(err, store.ErrReplacementRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "replacement_id is required for the replace action"})
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to submit customer response", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	middleware.RecordResponseProcessed(string(req.Action))

	order, _ := h.store.GetOrder(orderID)
	event := models.WorkflowEvent{
		OrderID:   orderID,
		ItemID:    itemID,
		Status:    order.Status,
		EventType: "response_received",
	}
	if err := kafka.PublishWorkflowEvent(ctx, h.producer, event, h.logger); err != nil {
		h.logger.Error("Failed to publish response_received event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	traceID := middleware.GetTraceID(ctx)
	h.logger.Info("Customer response recorded",
		zap.String("trace_id", traceID),
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
		zap.String("action", string(req.Action)),
	)
	c.JSON(http.StatusCreated, resp)
}

func (h *ResponseHandler) GetResponses(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetResponses")
	defer span.End()

	c.JSON(http.StatusOK, h.store.GetResponsesByOrder(c.Param("id")))
}

func (h *ResponseHandler) GetLatestResponse(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetLatestResponse")
	defer span.End()

	resp, ok := h.store.GetLatestResponse(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No responses for order"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
