package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
)

// Domain errors surfaced to the HTTP layer
var (
	ErrCommissionNotFound = errors.New("commission not found")
	ErrInvalidTransition  = errors.New("invalid commission state transition")
	ErrAdminRequired      = errors.New("admin role required")
)

// ValidationError rejects bad input before any state change
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ActingUser identifies who performs a lifecycle operation. Passing it
// explicitly keeps authorization checks visible and testable instead of
// reading an ambient session.
type ActingUser struct {
	ID   primitive.ObjectID
	Role string
}

// CommissionStore is the persistence boundary for commissions. Transitions
// are conditional on the expected prior status; implementations return
// repositories.ErrStatusConflict when the precondition fails.
type CommissionStore interface {
	Insert(ctx context.Context, commission *models.Commission) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Commission, error)
	ApprovePending(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.Commission, error)
	AutoApprovePending(ctx context.Context, id, ruleID primitive.ObjectID, at time.Time) (*models.Commission, error)
	RejectPending(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (*models.Commission, error)
	MarkApprovedPaid(ctx context.Context, id primitive.ObjectID, paymentReference string, at time.Time) (*models.Commission, error)
}

// ResellerSource exposes the trust flag consumed by the rule evaluator
type ResellerSource interface {
	IsTrusted(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CommissionEvent describes a lifecycle transition for notification dispatch
type CommissionEvent struct {
	Type       string
	Commission *models.Commission
	RuleName   string
}

// CommissionNotifier dispatches notifications for lifecycle events.
// Implementations are fire-and-forget: failures are logged, never returned.
type CommissionNotifier interface {
	NotifyCommissionEvent(ctx context.Context, event CommissionEvent)
}

// AuditRecorder writes audit trail entries. Failures are logged, never returned.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditLog)
}

// PayoutDocumentGenerator produces the payout document on manual approval
type PayoutDocumentGenerator interface {
	GeneratePayoutDocument(ctx context.Context, commission *models.Commission, approvedBy primitive.ObjectID) (*models.PayoutDocument, error)
}

// CommissionService owns the commission lifecycle state machine:
// pending -> approved -> paid, or pending -> rejected.
type CommissionService struct {
	store     CommissionStore
	resellers ResellerSource
	evaluator *RuleEvaluator
	notifier  CommissionNotifier
	audit     AuditRecorder
	documents PayoutDocumentGenerator
}

func NewCommissionService(store CommissionStore, resellers ResellerSource, evaluator *RuleEvaluator, notifier CommissionNotifier, audit AuditRecorder, documents PayoutDocumentGenerator) *CommissionService {
	return &CommissionService{
		store:     store,
		resellers: resellers,
		evaluator: evaluator,
		notifier:  notifier,
		audit:     audit,
		documents: documents,
	}
}

// Create persists a new pending commission and immediately runs the
// auto-approval rule evaluator. When a rule matches, the commission is
// promoted to approved in the same request; both the creation and the
// auto-approval are audited as separate events. Any failure on the
// auto-approval path leaves the commission pending for manual review.
func (s *CommissionService) Create(ctx context.Context, actor ActingUser, resellerID primitive.ObjectID, customerID *primitive.ObjectID, req models.CommissionRequest) (*models.Commission, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Message: "Commission amount must be greater than zero"}
	}
	if strings.TrimSpace(req.Period) == "" {
		return nil, &ValidationError{Message: "Commission period is required"}
	}

	now := time.Now()
	commission := &models.Commission{
		ID:          primitive.NewObjectID(),
		ResellerID:  resellerID,
		CustomerID:  customerID,
		Amount:      req.Amount,
		Period:      strings.TrimSpace(req.Period),
		Description: req.Description,
		Notes:       req.Notes,
		Status:      models.CommissionStatusPending,
		RequestedAt: now,
	}

	if err := s.store.Insert(ctx, commission); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.AuditLog{
		Action:        models.AuditActionCreated,
		PerformedByID: actor.ID,
		EntityType:    "commission",
		EntityID:      commission.ID,
		Changes: map[string]interface{}{
			"newStatus": models.CommissionStatusPending,
			"amount":    commission.Amount,
			"period":    commission.Period,
		},
		CreatedAt: now,
	})

	trusted, err := s.resellers.IsTrusted(ctx, resellerID)
	if err != nil {
		// Fail closed: leave the commission pending for manual review
		log.Printf("Failed to load reseller %s for auto-approval check: %v", resellerID.Hex(), err)
		s.notifyPendingRequest(ctx, commission)
		return commission, nil
	}

	match := s.evaluator.Evaluate(ctx, commission.Amount, trusted)
	if !match.Matched {
		s.notifyPendingRequest(ctx, commission)
		return commission, nil
	}

	updated, err := s.store.AutoApprovePending(ctx, commission.ID, match.RuleID, time.Now())
	if err != nil {
		log.Printf("Auto-approval of commission %s failed, left pending: %v", commission.ID.Hex(), err)
		s.notifyPendingRequest(ctx, commission)
		return commission, nil
	}

	s.audit.Record(ctx, models.AuditLog{
		Action:        models.AuditActionAutoApproved,
		PerformedByID: actor.ID,
		EntityType:    "commission",
		EntityID:      updated.ID,
		Changes: map[string]interface{}{
			"oldStatus": models.CommissionStatusPending,
			"newStatus": models.CommissionStatusApproved,
			"ruleId":    match.RuleID.Hex(),
			"ruleName":  match.RuleName,
		},
		CreatedAt: time.Now(),
	})

	s.notifier.NotifyCommissionEvent(ctx, CommissionEvent{
		Type:       models.NotificationTypeCommissionApproved,
		Commission: updated,
		RuleName:   match.RuleName,
	})

	return updated, nil
}

// notifyPendingRequest tells admins a commission awaits manual review. The
// requesting reseller is not notified on plain creation; their first
// notification arrives with the approval, rejection or payment.
func (s *CommissionService) notifyPendingRequest(ctx context.Context, commission *models.Commission) {
	s.notifier.NotifyCommissionEvent(ctx, CommissionEvent{
		Type:       models.NotificationTypeCommissionRequested,
		Commission: commission,
	})
}

// Approve moves a pending commission to approved on behalf of an admin.
// Payout document generation is best-effort: a failure is logged and never
// rolls back or fails the approval.
func (s *CommissionService) Approve(ctx context.Context, actor ActingUser, id primitive.ObjectID) (*models.Commission, error) {
	if actor.Role != models.UserTypeAdmin {
		return nil, ErrAdminRequired
	}

	updated, err := s.store.ApprovePending(ctx, id, actor.ID, time.Now())
	if err != nil {
		return nil, s.mapTransitionError(ctx, id, err)
	}

	if _, err := s.documents.GeneratePayoutDocument(ctx, updated, actor.ID); err != nil {
		log.Printf("Payout document generation failed for commission %s: %v", updated.ID.Hex(), err)
	}

	s.audit.Record(ctx, models.AuditLog{
		Action:        models.AuditActionApproved,
		PerformedByID: actor.ID,
		EntityType:    "commission",
		EntityID:      updated.ID,
		Changes: map[string]interface{}{
			"oldStatus":    models.CommissionStatusPending,
			"newStatus":    models.CommissionStatusApproved,
			"approvedById": actor.ID.Hex(),
		},
		CreatedAt: time.Now(),
	})

	s.notifier.NotifyCommissionEvent(ctx, CommissionEvent{
		Type:       models.NotificationTypeCommissionApproved,
		Commission: updated,
	})

	return updated, nil
}

// Reject moves a pending commission to rejected. A rejection reason is
// required; without one the request is refused before any state change.
func (s *CommissionService) Reject(ctx context.Context, actor ActingUser, id primitive.ObjectID, reason string) (*models.Commission, error) {
	if actor.Role != models.UserTypeAdmin {
		return nil, ErrAdminRequired
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Message: "Rejection reason is required"}
	}

	updated, err := s.store.RejectPending(ctx, id, reason, time.Now())
	if err != nil {
		return nil, s.mapTransitionError(ctx, id, err)
	}

	s.audit.Record(ctx, models.AuditLog{
		Action:        models.AuditActionRejected,
		PerformedByID: actor.ID,
		EntityType:    "commission",
		EntityID:      updated.ID,
		Changes: map[string]interface{}{
			"oldStatus":       models.CommissionStatusPending,
			"newStatus":       models.CommissionStatusRejected,
			"rejectionReason": reason,
		},
		CreatedAt: time.Now(),
	})

	s.notifier.NotifyCommissionEvent(ctx, CommissionEvent{
		Type:       models.NotificationTypeCommissionRejected,
		Commission: updated,
	})

	return updated, nil
}

// MarkPaid moves an approved commission to paid, optionally recording a
// payment reference.
func (s *CommissionService) MarkPaid(ctx context.Context, actor ActingUser, id primitive.ObjectID, paymentReference string) (*models.Commission, error) {
	if actor.Role != models.UserTypeAdmin {
		return nil, ErrAdminRequired
	}

	updated, err := s.store.MarkApprovedPaid(ctx, id, strings.TrimSpace(paymentReference), time.Now())
	if err != nil {
		return nil, s.mapTransitionError(ctx, id, err)
	}

	s.audit.Record(ctx, models.AuditLog{
		Action:        models.AuditActionMarkPaid,
		PerformedByID: actor.ID,
		EntityType:    "commission",
		EntityID:      updated.ID,
		Changes: map[string]interface{}{
			"oldStatus":        models.CommissionStatusApproved,
			"newStatus":        models.CommissionStatusPaid,
			"paymentReference": updated.PaymentReference,
		},
		CreatedAt: time.Now(),
	})

	s.notifier.NotifyCommissionEvent(ctx, CommissionEvent{
		Type:       models.NotificationTypeCommissionPaid,
		Commission: updated,
	})

	return updated, nil
}

// mapTransitionError turns a failed status precondition into either not-found
// or invalid-transition, so callers can tell a missing commission from a stale
// one.
func (s *CommissionService) mapTransitionError(ctx context.Context, id primitive.ObjectID, err error) error {
	if !errors.Is(err, repositories.ErrStatusConflict) {
		return err
	}
	if _, findErr := s.store.FindByID(ctx, id); findErr != nil {
		if errors.Is(findErr, mongo.ErrNoDocuments) {
			return ErrCommissionNotFound
		}
		return findErr
	}
	return ErrInvalidTransition
}
