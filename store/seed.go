package store

import (
	"time"

	"delivery-svc/models"

	"golang.org/x/crypto/bcrypt"
)

// NewDemo returns a store pre-loaded with the demo dataset: one order
// mid-exception, one in progress, one pending with a fresh issue.
func NewDemo() *OrderWorkflowStore {
	s := New()
	for _, o := range demoOrders() {
		s.AddOrder(o)
	}
	s.issues = append(s.issues, demoIssues()...)
	s.replies = append(s.replies, demoResponses()...)
	// Seed literals predate the status invariant; reconcile before use.
	for _, id := range s.orderIDs {
		s.recalcStatus(s.orders[id])
	}
	return s
}

func demoOrders() []models.Order {
	return []models.Order{
		{
			ID:           "1001",
			CustomerID:   "user_john",
			CustomerName: "John Smith",
			Status:       models.OrderStatusIssues,
			CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Items: []models.OrderItem{
				{ID: "item1", Name: "Organic Milk 1L", Quantity: 2, Status: models.ItemStatusAvailable, OriginalPrice: 3.50},
				{ID: "item2", Name: "Whole Grain Bread", Quantity: 1, Status: models.ItemStatusUnavailable, OriginalPrice: 2.80},
				{ID: "item3", Name: "Fresh Apples 1kg", Quantity: 1, Status: models.ItemStatusAvailable, OriginalPrice: 4.20},
			},
		},
		{
			ID:           "1002",
			CustomerID:   "user_sarah",
			CustomerName: "Sarah Johnson",
			Status:       models.OrderStatusInProgress,
			CreatedAt:    time.Date(2024, 1, 15, 11, 15, 0, 0, time.UTC),
			Items: []models.OrderItem{
				{ID: "item4", Name: "Greek Yogurt 500g", Quantity: 3, Status: models.ItemStatusAvailable, OriginalPrice: 5.60},
				{ID: "item5", Name: "Olive Oil 750ml", Quantity: 1, Status: models.ItemStatusAvailable, OriginalPrice: 8.90},
			},
		},
		{
			ID:           "1003",
			CustomerID:   "user_mike",
			CustomerName: "Mike Chen",
			Status:       models.OrderStatusPending,
			CreatedAt:    time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			Items: []models.OrderItem{
				{ID: "item6", Name: "Chicken Breast 1kg", Quantity: 1, Status: models.ItemStatusUnavailable, OriginalPrice: 12.50},
				{ID: "item7", Name: "Brown Rice 2kg", Quantity: 1, Status: models.ItemStatusAvailable, OriginalPrice: 6.30},
			},
		},
	}
}

func demoIssues() []models.Issue {
	return []models.Issue{
		{
			ID:        "issue1",
			OrderID:   "1001",
			ItemID:    "item2",
			Type:      models.IssueTypeOutOfStock,
			Message:   "Whole Grain Bread is currently out of stock",
			CreatedAt: time.Date(2024, 1, 15, 10, 45, 0, 0, time.UTC),
		},
		{
			ID:        "issue2",
			OrderID:   "1003",
			ItemID:    "item6",
			Type:      models.IssueTypeDamaged,
			Message:   "Chicken Breast package was damaged during transport",
			CreatedAt: time.Date(2024, 1, 15, 12, 15, 0, 0, time.UTC),
		},
	}
}

func demoResponses() []models.CustomerResponse {
	return []models.CustomerResponse{
		{
			OrderID:       "1001",
			ItemID:        "item2",
			Action:        models.ActionReplace,
			ReplacementID: "alt2",
			Timestamp:     time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC),
		},
	}
}

// DemoUsers returns the demo login accounts. All share the password
// "admin123"; hashes are computed at startup so none are checked in.
func DemoUsers() []models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return []models.User{
		{ID: "user_john", Name: "John Smith", Phone: "+358403640854", Email: "john.smith@email.com", PasswordHash: string(hash)},
		{ID: "user_sarah", Name: "Sarah Johnson", Phone: "+358415714761", Email: "sarah.johnson@email.com", PasswordHash: string(hash)},
		{ID: "user_mike", Name: "Mike Chen", Phone: "+358501234567", Email: "mike.chen@email.com", PasswordHash: string(hash)},
	}
}
