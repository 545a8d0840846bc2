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

type OrderHandler struct {
	store    *store.OrderWorkflowStore
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewOrderHandler(s *store.OrderWorkflowStore, producer sarama.SyncProducer, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		store:    s,
		producer: producer,
		logger:   logger,
	}
}

// ListOrders returns all orders, or the orders of one customer when
// customer_id is given. An unknown customer yields an empty list.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "ListOrders")
	defer span.End()

	var orders []models.Order
	if customerID := c.Query("customer_id"); customerID != "" {
		span.SetAttributes(attribute.String("customer.id", customerID))
		orders = h.store.GetOrdersByCustomer(customerID)
	} else {
		orders = h.store.Orders()
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetOrder")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := h.store.GetOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "UpdateOrder")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order.id", orderID))

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateOrder(orderID, req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to update order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	order, _ := h.store.GetOrder(orderID)
	c.JSON(http.StatusOK, order)
}

// CompleteOrder sets the status unconditionally; the UI only offers it
// when no open or pending issues remain.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "CompleteOrder")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order.id", orderID))

	if err := h.store.MarkOrderAsCompleted(orderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	event := models.WorkflowEvent{
		OrderID:   orderID,
		Status:    models.OrderStatusCompleted,
		EventType: "order_completed",
	}
	if err := kafka.PublishWorkflowEvent(ctx, h.producer, event, h.logger); err != nil {
		h.logger.Error("Failed to publish order_completed event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	traceID := middleware.GetTraceID(ctx)
	h.logger.Info("Order completed", zap.String("trace_id", traceID), zap.String("order_id", orderID))

	order, _ := h.store.GetOrder(orderID)
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "CancelOrder")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order.id", orderID))

	if err := h.store.CancelOrder(orderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	event := models.WorkflowEvent{
		OrderID:   orderID,
		Status:    models.OrderStatusCancelled,
		EventType: "order_cancelled",
	}
	if err := kafka.PublishWorkflowEvent(ctx, h.producer, event, h.logger); err != nil {
		h.logger.Error("Failed to publish order_cancelled event", zap.Error(err))
	}

	traceID := middleware.GetTraceID(ctx)
	h.logger.Info("Order cancelled", zap.String("trace_id", traceID), zap.String("order_id", orderID))

	order, _ := h.store.GetOrder(orderID)
	c.JSON(http.StatusOK, order)
}
