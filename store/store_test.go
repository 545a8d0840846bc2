package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"delivery-svc/models"
)

func newTestStore() *OrderWorkflowStore {
	s := New()
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("issue_%d", seq)
	}
	tick := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	s.AddOrder(models.Order{
		ID:           "O1",
		CustomerID:   "cust1",
		CustomerName: "Test Customer",
		Status:       models.OrderStatusPending,
		Items: []models.OrderItem{
			{ID: "I1", Name: "Milk", Quantity: 1, Status: models.ItemStatusAvailable, OriginalPrice: 3.50},
			{ID: "I2", Name: "Bread", Quantity: 2, Status: models.ItemStatusAvailable, OriginalPrice: 2.80},
		},
	})
	return s
}

func mustGetOrder(t *testing.T, s *OrderWorkflowStore, id string) models.Order {
	t.Helper()
	o, err := s.GetOrder(id)
	if err != nil {
		t.Fatalf("GetOrder(%s): %v", id, err)
	}
	return o
}

func itemByID(t *testing.T, o models.Order, id string) models.OrderItem {
	t.Helper()
	for _, it := range o.Items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %s not found in order %s", id, o.ID)
	return models.OrderItem{}
}

func TestPendingIssueLifecycle(t *testing.T) {
	s := newTestStore()

	if err := s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeDamaged}); err != nil {
		t.Fatalf("AddPendingIssue: %v", err)
	}
	if got := len(s.GetPendingIssues("O1")); got != 1 {
		t.Fatalf("Expected 1 pending issue, got %d", got)
	}

	// Drafts do not touch item or order status
	o := mustGetOrder(t, s, "O1")
	if o.Status != models.OrderStatusPending {
		t.Errorf("Expected order status pending, got %s", o.Status)
	}
	if st := itemByID(t, o, "I1").Status; st != models.ItemStatusAvailable {
		t.Errorf("Expected item available, got %s", st)
	}

	created, err := s.SubmitPendingIssues("O1")
	if err != nil {
		t.Fatalf("SubmitPendingIssues: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Expected 1 created issue, got %d", len(created))
	}
	if got := len(s.GetIssuesByOrder("O1")); got != 1 {
		t.Errorf("Expected 1 issue, got %d", got)
	}
	o = mustGetOrder(t, s, "O1")
	if st := itemByID(t, o, "I1").Status; st != models.ItemStatusUnavailable {
		t.Errorf("Expected item unavailable, got %s", st)
	}
	if o.Status != models.OrderStatusIssues {
		t.Errorf("Expected order status issues, got %s", o.Status)
	}
	if got := len(s.GetPendingIssues("O1")); got != 0 {
		t.Errorf("Expected pending list cleared, got %d entries", got)
	}
}

func TestAddRemovePendingIssueRoundTrip(t *testing.T) {
	s := newTestStore()

	before := len(s.GetPendingIssues("O1"))
	if err := s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeExpired}); err != nil {
		t.Fatalf("AddPendingIssue: %v", err)
	}
	s.RemovePendingIssue("O1", "I1")
	if got := len(s.GetPendingIssues("O1")); got != before {
		t.Errorf("Expected %d pending issues after round trip, got %d", before, got)
	}
}

func TestRemovePendingIssueRemovesAllForItem(t *testing.T) {
	s := newTestStore()

	// Multiple drafts per item are allowed
	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeDamaged})
	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeOther})
	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I2", Type: models.IssueTypeExpired})

	s.RemovePendingIssue("O1", "I1")

	left := s.GetPendingIssues("O1")
	if len(left) != 1 || left[0].ItemID != "I2" {
		t.Errorf("Expected only the I2 draft to survive, got %+v", left)
	}
}

func TestSubmitPendingIssuesIdempotentWhenEmpty(t *testing.T) {
	s := newTestStore()

	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeDamaged})
	if _, err := s.SubmitPendingIssues("O1"); err != nil {
		t.Fatalf("SubmitPendingIssues: %v", err)
	}
	issuesAfterFirst := len(s.GetIssuesByOrder("O1"))

	created, err := s.SubmitPendingIssues("O1")
	if err != nil {
		t.Fatalf("SubmitPendingIssues (second): %v", err)
	}
	if len(created) != 0 {
		t.Errorf("Expected no issues created on second submit, got %d", len(created))
	}
	if got := len(s.GetIssuesByOrder("O1")); got != issuesAfterFirst {
		t.Errorf("Expected issue count unchanged (%d), got %d", issuesAfterFirst, got)
	}
	if o := mustGetOrder(t, s, "O1"); o.Status != models.OrderStatusIssues {
		t.Errorf("Expected status unchanged (issues), got %s", o.Status)
	}
}

func TestCustomerResponseRemove(t *testing.T) {
	s := newTestStore()

	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeDamaged})
	s.SubmitPendingIssues("O1")

	resp, err := s.SubmitCustomerResponse("O1", "I1", models.ActionRemove, "")
	if err != nil {
		t.Fatalf("SubmitCustomerResponse: %v", err)
	}
	if resp.Action != models.ActionRemove {
		t.Errorf("Expected action remove, got %s", resp.Action)
	}

	if got := len(s.GetIssuesByOrder("O1")); got != 0 {
		t.Errorf("Expected issues resolved, got %d", got)
	}
	o := mustGetOrder(t, s, "O1")
	it := itemByID(t, o, "I1")
	if it.Status != models.ItemStatusRemoved {
		t.Errorf("Expected item removed, got %s", it.Status)
	}
	if it.ReplacementID != "" {
		t.Errorf("Expected no replacement id on removed item, got %s", it.ReplacementID)
	}
	if o.Status != models.OrderStatusPending {
		t.Errorf("Expected order back to pending, got %s", o.Status)
	}
}

func TestCustomerResponseReplaceSetsReplacement(t *testing.T) {
	s := newTestStore()

	s.ReportIssue("O1", "I2", models.IssueTypeOutOfStock, "")
	if _, err := s.SubmitCustomerResponse("O1", "I2", models.ActionReplace, "alt2"); err != nil {
		t.Fatalf("SubmitCustomerResponse: %v", err)
	}

	it := itemByID(t, mustGetOrder(t, s, "O1"), "I2")
	if it.Status != models.ItemStatusReplaced {
		t.Errorf("Expected item replaced, got %s", it.Status)
	}
	if it.ReplacementID != "alt2" {
		t.Errorf("Expected replacement id alt2, got %q", it.ReplacementID)
	}
}

func TestReplaceWithoutReplacementRejected(t *testing.T) {
	s := newTestStore()

	s.ReportIssue("O1", "I1", models.IssueTypeDamaged, "")
	_, err := s.SubmitCustomerResponse("O1", "I1", models.ActionReplace, "")
	if !errors.Is(err, ErrReplacementRequired) {
		t.Errorf("Expected ErrReplacementRequired, got %v", err)
	}
	// Nothing resolved, nothing recorded
	if got := len(s.GetIssuesByOrder("O1")); got != 1 {
		t.Errorf("Expected issue untouched, got %d issues", got)
	}
	if got := len(s.GetResponsesByOrder("O1")); got != 0 {
		t.Errorf("Expected no response recorded, got %d", got)
	}
}

func TestOrderStaysInIssuesUntilLastResolution(t *testing.T) {
	s := newTestStore()

	s.ReportIssue("O1", "I1", models.IssueTypeDamaged, "")
	s.ReportIssue("O1", "I2", models.IssueTypeOutOfStock, "")

	if _, err := s.SubmitCustomerResponse("O1", "I1", models.ActionRemove, ""); err != nil {
		t.Fatalf("SubmitCustomerResponse: %v", err)
	}
	if o := mustGetOrder(t, s, "O1"); o.Status != models.OrderStatusIssues {
		t.Errorf("Expected order still in issues with one unresolved, got %s", o.Status)
	}

	if _, err := s.SubmitCustomerResponse("O1", "I2", models.ActionReplace, "alt1"); err != nil {
		t.Fatalf("SubmitCustomerResponse: %v", err)
	}
	if o := mustGetOrder(t, s, "O1"); o.Status != models.OrderStatusPending {
		t.Errorf("Expected order pending after last resolution, got %s", o.Status)
	}
}

func TestStatusAgreesWithIssueCount(t *testing.T) {
	s := newTestStore()

	check := func(stage string) {
		t.Helper()
		o := mustGetOrder(t, s, "O1")
		hasIssues := len(s.GetIssuesByOrder("O1")) > 0
		if hasIssues && o.Status != models.OrderStatusIssues {
			t.Errorf("%s: issues outstanding but status %s", stage, o.Status)
		}
		if !hasIssues && o.Status == models.OrderStatusIssues {
			t.Errorf("%s: no issues outstanding but status still issues", stage)
		}
	}

	check("initial")
	s.AddPendingIssue("O1", models.PendingIssue{ItemID: "I1", Type: models.IssueTypeDamaged})
	check("after draft")
	s.SubmitPendingIssues("O1")
	check("after submit")
	s.ReportIssue("O1", "I2", models.IssueTypeOther, "")
	check("after direct report")
	s.SubmitCustomerResponse("O1", "I1", models.ActionRemove, "")
	check("after first resolution")
	s.SubmitCustomerResponse("O1", "I2", models.ActionReplace, "alt3")
	check("after last resolution")
}

func TestTerminalOrderNotResurrected(t *testing.T) {
	s := newTestStore()

	s.ReportIssue("O1", "I1", models.IssueTypeDamaged, "")
	if err := s.CancelOrder("O1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	// Resolving a dangling issue must not revive a cancelled order
	if _, err := s.SubmitCustomerResponse("O1", "I1", models.ActionRemove, ""); err != nil {
		t.Fatalf("SubmitCustomerResponse: %v", err)
	}
	if o := mustGetOrder(t, s, "O1"); o.Status != models.OrderStatusCancelled {
		t.Errorf("Expected order to stay cancelled, got %s", o.Status)
	}
}

func TestMarkCompletedAndCancelUnconditional(t *testing.T) {
	s := newTestStore()

	if err := s.MarkOrderAsCompleted("O1"); err != nil {
		t.Fatalf("MarkOrderAsCompleted: %v", err)
	}
	if o := mustGetOrder(t, s, "O1"); o.Status != models.OrderStatusCompleted {
		t.Errorf("Expected completed, got %s", o.Status)
	}
	if err := s.MarkOrderAsCompleted("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown order, got %v", err)
	}
}

func TestUpdateOrderMergesFields(t *testing.T) {
	s := newTestStore()

	name := "Renamed Customer"
	if err := s.UpdateOrder("O1", models.UpdateOrderRequest{CustomerName: &name}); err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	o := mustGetOrder(t, s, "O1")
	if o.CustomerName != name {
		t.Errorf("Expected customer name merged, got %s", o.CustomerName)
	}
	if o.Status != models.OrderStatusPending {
		t.Errorf("Expected untouched status pending, got %s", o.Status)
	}

	if err := s.UpdateOrder("missing", models.UpdateOrderRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetOrdersByCustomer(t *testing.T) {
	s := NewDemo()

	orders := s.GetOrdersByCustomer("user_john")
	if len(orders) != 1 || orders[0].ID != "1001" {
		t.Errorf("Expected order 1001 for user_john, got %+v", orders)
	}
	if got := s.GetOrdersByCustomer("nobody"); len(got) != 0 {
		t.Errorf("Expected empty result for unknown customer, got %d", len(got))
	}
}

func TestGetLatestResponse(t *testing.T) {
	s := newTestStore()

	if _, ok := s.GetLatestResponse("O1"); ok {
		t.Fatal("Expected no latest response on fresh order")
	}

	s.ReportIssue("O1", "I1", models.IssueTypeDamaged, "")
	s.ReportIssue("O1", "I2", models.IssueTypeExpired, "")
	s.SubmitCustomerResponse("O1", "I1", models.ActionRemove, "")
	s.SubmitCustomerResponse("O1", "I2", models.ActionReplace, "alt5")

	latest, ok := s.GetLatestResponse("O1")
	if !ok {
		t.Fatal("Expected a latest response")
	}
	if latest.ItemID != "I2" {
		t.Errorf("Expected latest response for I2, got %s", latest.ItemID)
	}
}

func TestQueriesOnUnknownOrderReturnEmpty(t *testing.T) {
	s := newTestStore()

	if got := s.GetIssuesByOrder("missing"); len(got) != 0 {
		t.Errorf("Expected no issues, got %d", len(got))
	}
	if got := s.GetResponsesByOrder("missing"); len(got) != 0 {
		t.Errorf("Expected no responses, got %d", len(got))
	}
	if got := s.GetPendingIssues("missing"); len(got) != 0 {
		t.Errorf("Expected no pending issues, got %d", len(got))
	}
	if _, err := s.GetOrder("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDemoSeedConsistency(t *testing.T) {
	s := NewDemo()

	if got := len(s.Orders()); got != 3 {
		t.Fatalf("Expected 3 demo orders, got %d", got)
	}
	// Order 1001 carries an open issue and must be in issues state
	o := mustGetOrder(t, s, "1001")
	if o.Status != models.OrderStatusIssues {
		t.Errorf("Expected demo order 1001 in issues, got %s", o.Status)
	}
	if got := len(s.GetIssuesByOrder("1001")); got != 1 {
		t.Errorf("Expected 1 issue on order 1001, got %d", got)
	}
	if _, ok := s.GetLatestResponse("1001"); !ok {
		t.Error("Expected seeded response on order 1001")
	}
	// 1003 also ships with an open issue and must be reconciled at seed time
	if o := mustGetOrder(t, s, "1003"); o.Status != models.OrderStatusIssues {
		t.Errorf("Expected demo order 1003 reconciled to issues, got %s", o.Status)
	}
}
