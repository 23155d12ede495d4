package repositories

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

const (
	enabledRulesCacheKey = "autoApprovalRules:enabled"
	enabledRulesCacheTTL = 30 * time.Second
)

// RuleRepository reads and writes auto-approval rules. Enabled rules are
// cached in Redis with a short TTL; cache failures fall through to MongoDB.
type RuleRepository struct {
	collection *mongo.Collection
	redis      *redis.Client
}

func NewRuleRepository(db *mongo.Client, redisClient *redis.Client) *RuleRepository {
	return &RuleRepository{
		collection: config.GetCollection(db, "autoApprovalRules"),
		redis:      redisClient,
	}
}

// EnabledRules returns all enabled rules sorted by priority descending
func (r *RuleRepository) EnabledRules(ctx context.Context) ([]models.AutoApprovalRule, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, enabledRulesCacheKey).Result()
		if err == nil {
			var rules []models.AutoApprovalRule
			if err := json.Unmarshal([]byte(cached), &rules); err == nil {
				return rules, nil
			}
			log.Printf("Failed to decode cached rules, falling back to database: %v", err)
		} else if err != redis.Nil {
			log.Printf("Rule cache read failed: %v", err)
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"enabled": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.AutoApprovalRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(rules); err == nil {
			if err := r.redis.Set(ctx, enabledRulesCacheKey, data, enabledRulesCacheTTL).Err(); err != nil {
				log.Printf("Rule cache write failed: %v", err)
			}
		}
	}

	return rules, nil
}

// FindAll returns every rule, enabled or not, sorted by priority descending
func (r *RuleRepository) FindAll(ctx context.Context) ([]models.AutoApprovalRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.AutoApprovalRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RuleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AutoApprovalRule, error) {
	var rule models.AutoApprovalRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) Insert(ctx context.Context, rule *models.AutoApprovalRule) error {
	if rule.ID.IsZero() {
		rule.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, rule)
	r.invalidateCache(ctx)
	return err
}

func (r *RuleRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.AutoApprovalRule, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.AutoApprovalRule
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	r.invalidateCache(ctx)
	return &updated, nil
}

func (r *RuleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *RuleRepository) invalidateCache(ctx context.Context) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Del(ctx, enabledRulesCacheKey).Err(); err != nil {
		log.Printf("Rule cache invalidation failed: %v", err)
	}
}
