package store

import (
	"errors"
	"sync"
	"time"

	"delivery-svc/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrReplacementRequired = errors.New("replacement id required for replace action")
)

// OrderWorkflowStore is the single source of truth for orders, issues,
// pending issues and customer responses. It performs no I/O; every
// method is a critical section so order status always agrees with the
// set of outstanding issues.
type OrderWorkflowStore struct {
	mu       sync.RWMutex
	orderIDs []string
	orders   map[string]*models.Order
	issues   []models.Issue
	pending  map[string][]models.PendingIssue
	replies  []models.CustomerResponse

	now   func() time.Time
	newID func() string
}

func New() *OrderWorkflowStore {
	return &OrderWorkflowStore{
		orders:  make(map[string]*models.Order),
		pending: make(map[string][]models.PendingIssue),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// AddOrder registers an order. Listing preserves insertion order.
func (s *OrderWorkflowStore) AddOrder(o models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		s.orderIDs = append(s.orderIDs, o.ID)
	}
	s.orders[o.ID] = &o
}

func (s *OrderWorkflowStore) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		out = append(out, copyOrder(s.orders[id]))
	}
	return out
}

func (s *OrderWorkflowStore) GetOrder(orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *OrderWorkflowStore) GetOrdersByCustomer(customerID string) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, id := range s.orderIDs {
		if o := s.orders[id]; o.CustomerID == customerID {
			out = append(out, copyOrder(o))
		}
	}
	return out
}

// UpdateOrder merges the non-nil fields into the order.
// Returns ErrNotFound for an unknown order id.
func (s *OrderWorkflowStore) UpdateOrder(orderID string, upd models.UpdateOrderRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if upd.CustomerName != nil {
		o.CustomerName = *upd.CustomerName
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	return nil
}

// MarkOrderAsCompleted sets the status unconditionally. The caller is
// responsible for only completing orders with no open or pending issues.
func (s *OrderWorkflowStore) MarkOrderAsCompleted(orderID string) error {
	return s.setStatus(orderID, models.OrderStatusCompleted)
}

func (s *OrderWorkflowStore) CancelOrder(orderID string) error {
	return s.setStatus(orderID, models.OrderStatusCancelled)
}

func (s *OrderWorkflowStore) setStatus(orderID string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

// AddPendingIssue appends a draft report. Drafts are not visible to the
// customer and do not touch item or order status. Multiple drafts per
// item are allowed.
func (s *OrderWorkflowStore) AddPendingIssue(orderID string, p models.PendingIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return ErrNotFound
	}
	s.pending[orderID] = append(s.pending[orderID], p)
	return nil
}

// RemovePendingIssue discards every draft for the item.
func (s *OrderWorkflowStore) RemovePendingIssue(orderID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pending[orderID][:0]
	for _, p := range s.pending[orderID] {
		if p.ItemID != itemID {
			kept = append(kept, p)
		}
	}
	s.pending[orderID] = kept
}

func (s *OrderWorkflowStore) GetPendingIssues(orderID string) []models.PendingIssue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PendingIssue(nil), s.pending[orderID]...)
}

// SubmitPendingIssues converts every draft of the order into a real
// Issue in one batch: each referenced item becomes unavailable, the
// drafts are cleared and the order status is recomputed. Calling it
// with an empty draft list is a no-op.
func (s *OrderWorkflowStore) SubmitPendingIssues(orderID string) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	drafts := s.pending[orderID]
	created := make([]models.Issue, 0, len(drafts))
	for _, p := range drafts {
		created = append(created, s.createIssue(o, p.ItemID, p.Type, p.Message))
	}
	delete(s.pending, orderID)
	s.recalcStatus(o)
	return created, nil
}

// ReportIssue creates an Issue immediately, bypassing the draft stage.
func (s *OrderWorkflowStore) ReportIssue(orderID, itemID string, typ models.IssueType, message string) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.Issue{}, ErrNotFound
	}
	iss := s.createIssue(o, itemID, typ, message)
	s.recalcStatus(o)
	return iss, nil
}

// createIssue assumes the write lock is held.
func (s *OrderWorkflowStore) createIssue(o *models.Order, itemID string, typ models.IssueType, message string) models.Issue {
	iss := models.Issue{
		ID:        s.newID(),
		OrderID:   o.ID,
		ItemID:    itemID,
		Type:      typ,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.issues = append(s.issues, iss)
	for i := range o.Items {
		if o.Items[i].ID == itemID && o.Items[i].Status == models.ItemStatusAvailable {
			o.Items[i].Status = models.ItemStatusUnavailable
		}
	}
	return iss
}

func (s *OrderWorkflowStore) GetIssuesByOrder(orderID string) []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issuesByOrder(orderID)
}

func (s *OrderWorkflowStore) issuesByOrder(orderID string) []models.Issue {
	out := make([]models.Issue, 0)
	for _, iss := range s.issues {
		if iss.OrderID == orderID {
			out = append(out, iss)
		}
	}
	return out
}

// SubmitCustomerResponse records the customer's decision for an item,
// resolves the matching issues and moves the item to replaced or
// removed. When the last issue of the order is resolved the order
// drops back to pending, unless it already reached a terminal status.
func (s *OrderWorkflowStore) SubmitCustomerResponse(orderID, itemID string, action models.ResponseAction, replacementID string) (models.CustomerResponse, error) {
	if action == models.ActionReplace && replacementID == "" {
		return models.CustomerResponse{}, ErrReplacementRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.CustomerResponse{}, ErrNotFound
	}

	resp := models.CustomerResponse{
		OrderID:   orderID,
		ItemID:    itemID,
		Action:    action,
		Timestamp: s.now(),
	}
	if action == models.ActionReplace {
		resp.ReplacementID = replacementID
	}
	s.replies = append(s.replies, resp)

	kept := s.issues[:0]
	for _, iss := range s.issues {
		if !(iss.OrderID == orderID && iss.ItemID == itemID) {
			kept = append(kept, iss)
		}
	}
	s.issues = kept

	for i := range o.Items {
		if o.Items[i].ID != itemID {
			continue
		}
		if action == models.ActionReplace {
			o.Items[i].Status = models.ItemStatusReplaced
			o.Items[i].ReplacementID = replacementID
		} else {
			o.Items[i].Status = models.ItemStatusRemoved
			o.Items[i].ReplacementID = ""
		}
	}

	s.recalcStatus(o)
	return resp, nil
}

func (s *OrderWorkflowStore) GetResponsesByOrder(orderID string) []models.CustomerResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CustomerResponse, 0)
	for _, r := range s.replies {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out
}

// GetLatestResponse returns the response with the newest timestamp,
// ties broken by insertion order (last inserted wins).
func (s *OrderWorkflowStore) GetLatestResponse(orderID string) (models.CustomerResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest models.CustomerResponse
	found := false
	for _, r := range s.replies {
		if r.OrderID != orderID {
			continue
		}
		if !found || !r.Timestamp.Before(latest.Timestamp) {
			latest = r
			found = true
		}
	}
	return latest, found
}

// recalcStatus derives the order status from outstanding issue counts.
// Every mutating command funnels through here so the report and submit
// paths cannot drift apart. Terminal orders are left untouched.
func (s *OrderWorkflowStore) recalcStatus(o *models.Order) {
	if o.Status.IsTerminal() {
		return
	}
	if len(s.issuesByOrder(o.ID)) > 0 {
		o.Status = models.OrderStatusIssues
		return
	}
	if o.Status == models.OrderStatusIssues {
		o.Status = models.OrderStatusPending
	}
}

func copyOrder(o *models.Order) models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return cp
}
