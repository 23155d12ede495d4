package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

// ErrStatusConflict is returned when a conditional status update matched no
// document: the commission either does not exist or is no longer in the
// expected status. Callers distinguish the two with FindByID.
var ErrStatusConflict = errors.New("commission status precondition failed")

type CommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Client) *CommissionRepository {
	return &CommissionRepository{
		collection: config.GetCollection(db, "commissions"),
	}
}

func (r *CommissionRepository) Insert(ctx context.Context, commission *models.Commission) error {
	if commission.ID.IsZero() {
		commission.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, commission)
	return err
}

func (r *CommissionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Commission, error) {
	var commission models.Commission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&commission)
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

// transition applies a conditional status update. The filter includes the
// expected current status so that two racing transitions cannot both succeed;
// the loser sees ErrStatusConflict.
func (r *CommissionRepository) transition(ctx context.Context, id primitive.ObjectID, expectedStatus string, set bson.M) (*models.Commission, error) {
	filter := bson.M{"_id": id, "status": expectedStatus}
	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Commission
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusConflict
		}
		return nil, err
	}
	return &updated, nil
}

// ApprovePending moves a pending commission to approved on behalf of an admin
func (r *CommissionRepository) ApprovePending(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.Commission, error) {
	return r.transition(ctx, id, models.CommissionStatusPending, bson.M{
		"status":       models.CommissionStatusApproved,
		"approvedById": approvedBy,
		"approvedAt":   at,
	})
}

// AutoApprovePending moves a pending commission to approved via a matched
// auto-approval rule. No approvedById is recorded for auto-approvals.
func (r *CommissionRepository) AutoApprovePending(ctx context.Context, id, ruleID primitive.ObjectID, at time.Time) (*models.Commission, error) {
	return r.transition(ctx, id, models.CommissionStatusPending, bson.M{
		"status":             models.CommissionStatusApproved,
		"autoApproved":       true,
		"autoApprovalRuleId": ruleID,
		"approvedAt":         at,
	})
}

// RejectPending moves a pending commission to rejected
func (r *CommissionRepository) RejectPending(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (*models.Commission, error) {
	return r.transition(ctx, id, models.CommissionStatusPending, bson.M{
		"status":          models.CommissionStatusRejected,
		"rejectionReason": reason,
		"rejectedAt":      at,
	})
}

// MarkApprovedPaid moves an approved commission to paid
func (r *CommissionRepository) MarkApprovedPaid(ctx context.Context, id primitive.ObjectID, paymentReference string, at time.Time) (*models.Commission, error) {
	set := bson.M{
		"status": models.CommissionStatusPaid,
		"paidAt": at,
	}
	if paymentReference != "" {
		set["paymentReference"] = paymentReference
	}
	return r.transition(ctx, id, models.CommissionStatusApproved, set)
}

// FindByReseller returns a reseller's commissions, newest first, optionally
// filtered by status
func (r *CommissionRepository) FindByReseller(ctx context.Context, resellerID primitive.ObjectID, status string) ([]models.Commission, error) {
	filter := bson.M{"resellerId": resellerID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

// FindAll returns all commissions, newest first, optionally filtered by status
func (r *CommissionRepository) FindAll(ctx context.Context, status string) ([]models.Commission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *CommissionRepository) find(ctx context.Context, filter bson.M) ([]models.Commission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var commissions []models.Commission
	if err := cursor.All(ctx, &commissions); err != nil {
		return nil, err
	}
	return commissions, nil
}
