package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusIssues     OrderStatus = "issues"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal reports whether the status can no longer change by
// issue reconciliation.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusUnavailable ItemStatus = "unavailable"
	ItemStatusReplaced    ItemStatus = "replaced"
	ItemStatusRemoved     ItemStatus = "removed"
)

type IssueType string

const (
	IssueTypeOutOfStock IssueType = "out-of-stock"
	IssueTypeDamaged    IssueType = "damaged"
	IssueTypeExpired    IssueType = "expired"
	IssueTypeOther      IssueType = "other"
)

type ResponseAction string

const (
	ActionReplace ResponseAction = "replace"
	ActionRemove  ResponseAction = "remove"
)

type OrderItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Quantity      int        `json:"quantity"`
	Status        ItemStatus `json:"status"`
	OriginalPrice float64    `json:"original_price"`
	// ReplacementID is set only when Status is "replaced".
	ReplacementID string `json:"replacement_id,omitempty"`
}

type Order struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Issue struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	ItemID    string    `json:"item_id"`
	Type      IssueType `json:"type"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingIssue is a drafted issue report that the customer cannot see
// yet. It becomes a real Issue when the driver submits the batch.
type PendingIssue struct {
	ItemID  string    `json:"item_id"`
	Type    IssueType `json:"type"`
	Message string    `json:"message,omitempty"`
}

type CustomerResponse struct {
	OrderID       string         `json:"order_id"`
	ItemID        string         `json:"item_id"`
	Action        ResponseAction `json:"action"`
	ReplacementID string         `json:"replacement_id,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// Alternative is read-only catalog data offered in place of an
// unavailable item.
type Alternative struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Similarity int     `json:"similarity"`
	Image      string  `json:"image,omitempty"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateOrderRequest struct {
	CustomerName *string      `json:"customer_name"`
	Status       *OrderStatus `json:"status"`
}

type ReportIssueRequest struct {
	Type    IssueType `json:"type" binding:"required,oneof=out-of-stock damaged expired other"`
	Message string    `json:"message"`
}

type CustomerResponseRequest struct {
	Action        ResponseAction `json:"action" binding:"required,oneof=replace remove"`
	ReplacementID string         `json:"replacement_id"`
}

type WorkflowEvent struct {
	OrderID   string      `json:"order_id"`
	ItemID    string      `json:"item_id,omitempty"`
	Status    OrderStatus `json:"status"`
	EventType string      `json:"event_type"` // issue_reported, issues_submitted, response_received, order_completed, order_cancelled
}
