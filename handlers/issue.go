package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"delivery-svc/kafka"
	"delivery-svc/middleware"
	"delivery-svc/models"
	"delivery-svc/store"
	"delivery-svc/webhook"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type IssueHandler struct {
	store    *store.OrderWorkflowStore
	notifier *webhook.Notifier
	producer sarama.SyncProducer
	users    map[string]models.User
	logger   *zap.Logger
}

func NewIssueHandler(s *store.OrderWorkflowStore, notifier *webhook.Notifier, producer sarama.SyncProducer, users []models.User, logger *zap.Logger) *IssueHandler {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &IssueHandler{
		store:    s,
		notifier: notifier,
		producer: producer,
		users:    byID,
		logger:   logger,
	}
}

// ReportIssue creates an issue immediately, bypassing the draft stage.
// The item goes unavailable and the order enters the issues state.
func (h *IssueHandler) ReportIssue(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "ReportIssue")
	defer span.End()

	orderID := c.Param("id")
	itemID := c.Param("itemId")
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("item.id", itemID),
	)

	var req models.ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.store.ReportIssue(orderID, itemID, req.Type, req.Message)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	middleware.RecordIssueReported(string(req.Type))

	event := models.WorkflowEvent{
		OrderID:   orderID,
		ItemID:    itemID,
		Status:    models.OrderStatusIssues,
		EventType: "issue_reported",
	}
	if err := kafka.PublishWorkflowEvent(ctx, h.producer, event, h.logger); err != nil {
		h.logger.Error("Failed to publish issue_reported event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	traceID := middleware.GetTraceID(ctx)
	h.logger.Info("Issue reported",
		zap.String("trace_id", traceID),
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
		zap.String("type", string(req.Type)),
	)
	c.JSON(http.StatusCreated, issue)
}

func (h *IssueHandler) AddPendingIssue(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "AddPendingIssue")
	defer span.End()

	orderID := c.Param("id")
	itemID := c.Param("itemId")
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("item.id", itemID),
	)

	var req models.ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := models.PendingIssue{ItemID: itemID, Type: req.Type, Message: req.Message}
	if err := h.store.AddPendingIssue(orderID, draft); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusCreated, draft)
}

// UpdatePendingIssue replaces the item's drafts with the given report,
// so a driver can correct a reason or message before submission.
func (h *IssueHandler) UpdatePendingIssue(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "UpdatePendingIssue")
	defer span.End()

	orderID := c.Param("id")
	itemID := c.Param("itemId")

	var req models.ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.RemovePendingIssue(orderID, itemID)
	draft := models.PendingIssue{ItemID: itemID, Type: req.Type, Message: req.Message}
	if err := h.store.AddPendingIssue(orderID, draft); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *IssueHandler) RemovePendingIssue(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "RemovePendingIssue")
	defer span.End()

	h.store.RemovePendingIssue(c.Param("id"), c.Param("itemId"))
	c.Status(http.StatusNoContent)
}

func (h *IssueHandler) GetPendingIssues(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetPendingIssues")
	defer span.End()

	c.JSON(http.StatusOK, h.store.GetPendingIssues(c.Param("id")))
}

// SubmitIssues notifies the AI agent and, only if the notification went
// through, converts the order's drafts into customer-visible issues.
// On webhook failure the drafts stay pending and nothing is submitted.
func (h *IssueHandler) SubmitIssues(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "SubmitIssues")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := h.store.GetOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	drafts := h.store.GetPendingIssues(orderID)
	span.SetAttributes(attribute.Int("drafts.count", len(drafts)))
	if len(drafts) == 0 {
		c.JSON(http.StatusOK, gin.H{"submitted": 0, "issues": []models.Issue{}})
		return
	}

	notification := webhook.AgentNotification{
		OrderID:      orderID,
		CustomerName: order.CustomerName,
		Description:  describeDrafts(order, drafts),
		IssueCount:   len(drafts),
	}
	if user, ok := h.users[order.CustomerID]; ok {
		notification.CustomerPhone = user.Phone
	}

	if err := h.notifier.Notify(ctx, notification); err != nil {
		span.RecordError(err)
		middleware.RecordAgentNotification("failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Customer notification failed, issues not submitted"})
		return
	}
	middleware.RecordAgentNotification("success")

	issues, err := h.store.SubmitPendingIssues(orderID)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to submit pending issues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	for _, iss := range issues {
		middleware.RecordIssueReported(string(iss.Type))
	}

	event := models.WorkflowEvent{
		OrderID:   orderID,
		Status:    models.OrderStatusIssues,
		EventType: "issues_submitted",
	}
	if err := kafka.PublishWorkflowEvent(ctx, h.producer, event, h.logger); err != nil {
		h.logger.Error("Failed to publish issues_submitted event", zap.Error(err))
	}

	traceID := middleware.GetTraceID(ctx)
	h.logger.Info("Pending issues submitted",
		zap.String("trace_id", traceID),
		zap.String("order_id", orderID),
		zap.Int("count", len(issues)),
	)
	c.JSON(http.StatusOK, gin.H{"submitted": len(issues), "issues": issues})
}

func (h *IssueHandler) GetIssues(c *gin.Context) {
	_, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetIssues")
	defer span.End()

	c.JSON(http.StatusOK, h.store.GetIssuesByOrder(c.Param("id")))
}

// describeDrafts builds the human-readable summary passed to the agent:
// item names with their reported problems.
func describeDrafts(order models.Order, drafts []models.PendingIssue) string {
	names := make(map[string]string, len(order.Items))
	for _, it := range order.Items {
		names[it.ID] = it.Name
	}

	parts := make([]string, 0, len(drafts))
	for _, d := range drafts {
		name := names[d.ItemID]
		if name == "" {
			name = d.ItemID
		}
		part := fmt.Sprintf("%s: %s", name, strings.ReplaceAll(string(d.Type), "-", " "))
		if d.Message != "" {
			part += " (" + d.Message + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
