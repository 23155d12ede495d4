package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

type ResellerRepository struct {
	collection *mongo.Collection
}

func NewResellerRepository(db *mongo.Client) *ResellerRepository {
	return &ResellerRepository{
		collection: config.GetCollection(db, "resellers"),
	}
}

func (r *ResellerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reseller, error) {
	var reseller models.Reseller
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reseller)
	if err != nil {
		return nil, err
	}
	return &reseller, nil
}

func (r *ResellerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Reseller, error) {
	var reseller models.Reseller
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&reseller)
	if err != nil {
		return nil, err
	}
	return &reseller, nil
}

// IsTrusted reports whether the reseller carries the trusted flag
func (r *ResellerRepository) IsTrusted(ctx context.Context, id primitive.ObjectID) (bool, error) {
	var result struct {
		IsTrusted bool `bson:"isTrusted"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		return false, err
	}
	return result.IsTrusted, nil
}

func (r *ResellerRepository) FindAll(ctx context.Context) ([]models.Reseller, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var resellers []models.Reseller
	if err := cursor.All(ctx, &resellers); err != nil {
		return nil, err
	}
	return resellers, nil
}

func (r *ResellerRepository) Insert(ctx context.Context, reseller *models.Reseller) error {
	if reseller.ID.IsZero() {
		reseller.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if reseller.CreatedAt.IsZero() {
		reseller.CreatedAt = now
	}
	reseller.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, reseller)
	return err
}

// SetTrusted flips the trusted flag for a reseller
func (r *ResellerRepository) SetTrusted(ctx context.Context, id primitive.ObjectID, trusted bool) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isTrusted": trusted,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateLogo stores the uploaded logo path
func (r *ResellerRepository) UpdateLogo(ctx context.Context, id primitive.ObjectID, logoPath string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"logoPath":  logoPath,
		"updatedAt": time.Now(),
	}})
	return err
}
