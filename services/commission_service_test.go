package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
)

// fakeCommissionStore keeps commissions in memory with the same conditional
// transition semantics as the Mongo-backed repository.
type fakeCommissionStore struct {
	mu          sync.Mutex
	commissions map[primitive.ObjectID]*models.Commission
	insertErr   error
	autoErr     error
}

func newFakeCommissionStore() *fakeCommissionStore {
	return &fakeCommissionStore{commissions: map[primitive.ObjectID]*models.Commission{}}
}

func (f *fakeCommissionStore) Insert(ctx context.Context, commission *models.Commission) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *commission
	f.commissions[commission.ID] = &copied
	return nil
}

func (f *fakeCommissionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Commission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.commissions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommissionStore) transition(id primitive.ObjectID, expected string, apply func(*models.Commission)) (*models.Commission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.commissions[id]
	if !ok || c.Status != expected {
		return nil, repositories.ErrStatusConflict
	}
	apply(c)
	copied := *c
	return &copied, nil
}

func (f *fakeCommissionStore) ApprovePending(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.Commission, error) {
	return f.transition(id, models.CommissionStatusPending, func(c *models.Commission) {
		c.Status = models.CommissionStatusApproved
		c.ApprovedByID = &approvedBy
		c.ApprovedAt = &at
	})
}

func (f *fakeCommissionStore) AutoApprovePending(ctx context.Context, id, ruleID primitive.ObjectID, at time.Time) (*models.Commission, error) {
	if f.autoErr != nil {
		return nil, f.autoErr
	}
	return f.transition(id, models.CommissionStatusPending, func(c *models.Commission) {
		c.Status = models.CommissionStatusApproved
		c.AutoApproved = true
		c.AutoApprovalRuleID = &ruleID
		c.ApprovedAt = &at
	})
}

func (f *fakeCommissionStore) RejectPending(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (*models.Commission, error) {
	return f.transition(id, models.CommissionStatusPending, func(c *models.Commission) {
		c.Status = models.CommissionStatusRejected
		c.RejectionReason = reason
		c.RejectedAt = &at
	})
}

func (f *fakeCommissionStore) MarkApprovedPaid(ctx context.Context, id primitive.ObjectID, paymentReference string, at time.Time) (*models.Commission, error) {
	return f.transition(id, models.CommissionStatusApproved, func(c *models.Commission) {
		c.Status = models.CommissionStatusPaid
		c.PaymentReference = paymentReference
		c.PaidAt = &at
	})
}

type fakeResellerSource struct {
	trusted map[primitive.ObjectID]bool
	err     error
}

func (f *fakeResellerSource) IsTrusted(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.trusted[id], nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []CommissionEvent
}

func (r *recordingNotifier) NotifyCommissionEvent(ctx context.Context, event CommissionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) lastType() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Type
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *recordingAudit) Record(ctx context.Context, entry models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

type recordingDocuments struct {
	mu        sync.Mutex
	generated []primitive.ObjectID
	err       error
}

func (r *recordingDocuments) GeneratePayoutDocument(ctx context.Context, commission *models.Commission, approvedBy primitive.ObjectID) (*models.PayoutDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.generated = append(r.generated, commission.ID)
	return &models.PayoutDocument{CommissionID: commission.ID}, nil
}

type serviceFixture struct {
	store     *fakeCommissionStore
	resellers *fakeResellerSource
	rules     *stubRuleSource
	notifier  *recordingNotifier
	audit     *recordingAudit
	documents *recordingDocuments
	service   *CommissionService
	admin     ActingUser
	reseller  ActingUser
	sellerID  primitive.ObjectID
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		store:     newFakeCommissionStore(),
		resellers: &fakeResellerSource{trusted: map[primitive.ObjectID]bool{}},
		rules:     &stubRuleSource{},
		notifier:  &recordingNotifier{},
		audit:     &recordingAudit{},
		documents: &recordingDocuments{},
		admin:     ActingUser{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin},
		sellerID:  primitive.NewObjectID(),
	}
	f.reseller = ActingUser{ID: primitive.NewObjectID(), Role: models.UserTypeReseller}
	f.service = NewCommissionService(f.store, f.resellers, NewRuleEvaluator(f.rules),
		f.notifier, f.audit, f.documents)
	return f
}

func (f *serviceFixture) create(t *testing.T, amount float64) *models.Commission {
	t.Helper()
	commission, err := f.service.Create(context.Background(), f.reseller, f.sellerID, nil,
		models.CommissionRequest{Amount: amount, Period: "2026-Q1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return commission
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture()

	var validationErr *ValidationError
	_, err := f.service.Create(context.Background(), f.reseller, f.sellerID, nil,
		models.CommissionRequest{Amount: 0, Period: "2026-Q1"})
	if !errors.As(err, &validationErr) {
		t.Errorf("zero amount: got %v, want validation error", err)
	}

	_, err = f.service.Create(context.Background(), f.reseller, f.sellerID, nil,
		models.CommissionRequest{Amount: -5, Period: "2026-Q1"})
	if !errors.As(err, &validationErr) {
		t.Errorf("negative amount: got %v, want validation error", err)
	}

	_, err = f.service.Create(context.Background(), f.reseller, f.sellerID, nil,
		models.CommissionRequest{Amount: 100, Period: "  "})
	if !errors.As(err, &validationErr) {
		t.Errorf("blank period: got %v, want validation error", err)
	}
}

func TestCreateWithoutMatchingRuleStaysPending(t *testing.T) {
	f := newServiceFixture()

	commission := f.create(t, 100)

	if commission.Status != models.CommissionStatusPending {
		t.Errorf("status = %q, want pending", commission.Status)
	}
	if commission.AutoApproved {
		t.Error("commission should not be flagged auto-approved")
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionRequested {
		t.Errorf("last notification = %q, want commission_requested", got)
	}
	if actions := f.audit.actions(); len(actions) != 1 || actions[0] != models.AuditActionCreated {
		t.Errorf("audit actions = %v, want [CREATED]", actions)
	}
}

func TestCreateAutoApprovesOnMatch(t *testing.T) {
	f := newServiceFixture()
	rule := makeRule("small amounts", 10, floatPtr(500), false)
	f.rules.rules = []models.AutoApprovalRule{rule}

	commission := f.create(t, 500)

	if commission.Status != models.CommissionStatusApproved {
		t.Fatalf("status = %q, want approved", commission.Status)
	}
	if !commission.AutoApproved {
		t.Error("commission should be flagged auto-approved")
	}
	if commission.AutoApprovalRuleID == nil || *commission.AutoApprovalRuleID != rule.ID {
		t.Error("matched rule ID not recorded")
	}
	if commission.ApprovedByID != nil {
		t.Error("auto-approval must not record an approving admin")
	}
	if commission.ApprovedAt == nil {
		t.Error("approvedAt not set")
	}
	if len(f.documents.generated) != 0 {
		t.Error("auto-approval must not generate a payout document")
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionApproved {
		t.Errorf("last notification = %q, want commission_approved", got)
	}
	if actions := f.audit.actions(); len(actions) != 2 ||
		actions[0] != models.AuditActionCreated || actions[1] != models.AuditActionAutoApproved {
		t.Errorf("audit actions = %v, want [CREATED AUTO_APPROVED]", actions)
	}
}

func TestCreateTrustGatesRuleMatch(t *testing.T) {
	f := newServiceFixture()
	f.rules.rules = []models.AutoApprovalRule{makeRule("trusted only", 10, nil, true)}

	pending := f.create(t, 100)
	if pending.Status != models.CommissionStatusPending {
		t.Errorf("untrusted reseller: status = %q, want pending", pending.Status)
	}

	f.resellers.trusted[f.sellerID] = true
	approved := f.create(t, 100)
	if approved.Status != models.CommissionStatusApproved {
		t.Errorf("trusted reseller: status = %q, want approved", approved.Status)
	}
}

func TestCreateFallsBackToPendingOnResellerLookupError(t *testing.T) {
	f := newServiceFixture()
	f.rules.rules = []models.AutoApprovalRule{makeRule("any", 10, nil, false)}
	f.resellers.err = errors.New("connection reset")

	commission := f.create(t, 100)
	if commission.Status != models.CommissionStatusPending {
		t.Errorf("status = %q, want pending when trust lookup fails", commission.Status)
	}
}

func TestCreateFallsBackToPendingOnAutoApproveError(t *testing.T) {
	f := newServiceFixture()
	f.rules.rules = []models.AutoApprovalRule{makeRule("any", 10, nil, false)}
	f.store.autoErr = errors.New("write timeout")

	commission := f.create(t, 100)
	if commission.Status != models.CommissionStatusPending {
		t.Errorf("status = %q, want pending when the promotion write fails", commission.Status)
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionRequested {
		t.Errorf("last notification = %q, want commission_requested", got)
	}
}

func TestRuleDisabledBetweenRequests(t *testing.T) {
	f := newServiceFixture()
	rule := makeRule("temporary", 10, nil, false)
	f.rules.rules = []models.AutoApprovalRule{rule}

	if c := f.create(t, 100); c.Status != models.CommissionStatusApproved {
		t.Fatalf("first request: status = %q, want approved", c.Status)
	}

	f.rules.rules = nil
	if c := f.create(t, 100); c.Status != models.CommissionStatusPending {
		t.Errorf("after rule removal: status = %q, want pending", c.Status)
	}
}

func TestApprove(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	updated, err := f.service.Approve(context.Background(), f.admin, commission.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if updated.Status != models.CommissionStatusApproved {
		t.Errorf("status = %q, want approved", updated.Status)
	}
	if updated.ApprovedByID == nil || *updated.ApprovedByID != f.admin.ID {
		t.Error("approving admin not recorded")
	}
	if updated.AutoApproved {
		t.Error("manual approval must not set the auto-approved flag")
	}
	if len(f.documents.generated) != 1 {
		t.Errorf("payout documents generated = %d, want 1", len(f.documents.generated))
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionApproved {
		t.Errorf("last notification = %q, want commission_approved", got)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	if _, err := f.service.Approve(context.Background(), f.reseller, commission.ID); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("got %v, want ErrAdminRequired", err)
	}
}

func TestApproveSurvivesDocumentFailure(t *testing.T) {
	f := newServiceFixture()
	f.documents.err = errors.New("disk full")
	commission := f.create(t, 100)

	updated, err := f.service.Approve(context.Background(), f.admin, commission.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if updated.Status != models.CommissionStatusApproved {
		t.Errorf("status = %q, want approved despite document failure", updated.Status)
	}
}

func TestApproveNonPendingFails(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	if _, err := f.service.Approve(context.Background(), f.admin, commission.ID); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	if _, err := f.service.Approve(context.Background(), f.admin, commission.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second approval: got %v, want ErrInvalidTransition", err)
	}
}

func TestApproveMissingCommission(t *testing.T) {
	f := newServiceFixture()

	if _, err := f.service.Approve(context.Background(), f.admin, primitive.NewObjectID()); !errors.Is(err, ErrCommissionNotFound) {
		t.Errorf("got %v, want ErrCommissionNotFound", err)
	}
}

func TestReject(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	updated, err := f.service.Reject(context.Background(), f.admin, commission.ID, "duplicate request")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if updated.Status != models.CommissionStatusRejected {
		t.Errorf("status = %q, want rejected", updated.Status)
	}
	if updated.RejectionReason != "duplicate request" {
		t.Errorf("rejectionReason = %q", updated.RejectionReason)
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionRejected {
		t.Errorf("last notification = %q, want commission_rejected", got)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	var validationErr *ValidationError
	if _, err := f.service.Reject(context.Background(), f.admin, commission.ID, "   "); !errors.As(err, &validationErr) {
		t.Fatalf("got %v, want validation error", err)
	}

	stored, err := f.store.FindByID(context.Background(), commission.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.CommissionStatusPending {
		t.Errorf("status = %q, refused rejection must not change state", stored.Status)
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	if _, err := f.service.Reject(context.Background(), f.admin, commission.ID, "out of policy"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, err := f.service.Approve(context.Background(), f.admin, commission.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve after reject: got %v, want ErrInvalidTransition", err)
	}
	if _, err := f.service.MarkPaid(context.Background(), f.admin, commission.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pay after reject: got %v, want ErrInvalidTransition", err)
	}
}

func TestMarkPaid(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	if _, err := f.service.Approve(context.Background(), f.admin, commission.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	updated, err := f.service.MarkPaid(context.Background(), f.admin, commission.ID, "TXN-2026-0042")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if updated.Status != models.CommissionStatusPaid {
		t.Errorf("status = %q, want paid", updated.Status)
	}
	if updated.PaymentReference != "TXN-2026-0042" {
		t.Errorf("paymentReference = %q", updated.PaymentReference)
	}
	if updated.PaidAt == nil {
		t.Error("paidAt not set")
	}
	if got := f.notifier.lastType(); got != models.NotificationTypeCommissionPaid {
		t.Errorf("last notification = %q, want commission_paid", got)
	}
}

func TestMarkPaidOnPendingFails(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	if _, err := f.service.MarkPaid(context.Background(), f.admin, commission.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestConcurrentApprovalHasOneWinner(t *testing.T) {
	f := newServiceFixture()
	commission := f.create(t, 100)

	notificationsBefore := len(f.notifier.events)
	auditBefore := len(f.audit.entries)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Approve(context.Background(), f.admin, commission.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrInvalidTransition):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly one successful approval", winners)
	}
	if len(f.documents.generated) != 1 {
		t.Errorf("payout documents generated = %d, want 1", len(f.documents.generated))
	}
	if got := len(f.notifier.events) - notificationsBefore; got != 1 {
		t.Errorf("notifications sent = %d, want one from the winning approval", got)
	}
	if got := len(f.audit.entries) - auditBefore; got != 1 {
		t.Errorf("audit entries recorded = %d, want one from the winning approval", got)
	}
}
