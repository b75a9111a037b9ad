package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// GormSink stores entries in the audit_logs table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Write(ctx context.Context, e Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil || e.Details == nil {
		details = []byte("{}")
	}
	row := models.AuditLog{
		AdminID:    e.AdminID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    datatypes.JSON(details),
		IP:         e.IP,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *GormSink) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID != "" {
		q = q.Where("target_id = ?", f.TargetID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var rows []models.AuditLog
	if err := q.Order("created_at DESC").Offset(f.offset()).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		var details map[string]any
		_ = json.Unmarshal(r.Details, &details)
		entries = append(entries, Entry{
			ID:         r.ID.String(),
			AdminID:    r.AdminID,
			Action:     r.Action,
			TargetType: r.TargetType,
			TargetID:   r.TargetID,
			Details:    details,
			IP:         r.IP,
			UserAgent:  r.UserAgent,
			CreatedAt:  r.CreatedAt,
		})
	}
	return entries, total, nil
}

// MongoSink stores entries in a MongoDB collection.
type MongoSink struct {
	coll *mongo.Collection
}

func NewMongoSink(coll *mongo.Collection) *MongoSink {
	return &MongoSink{coll: coll}
}

type mongoEntry struct {
	ID         string         `bson:"_id"`
	AdminID    string         `bson:"adminId"`
	Action     string         `bson:"action"`
	TargetType string         `bson:"targetType"`
	TargetID   string         `bson:"targetId"`
	Details    map[string]any `bson:"details,omitempty"`
	IP         string         `bson:"ip,omitempty"`
	UserAgent  string         `bson:"userAgent,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt"`
}

// EnsureIndexes creates the indexes List relies on.
func (s *MongoSink) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}}},
	})
	return err
}

func (s *MongoSink) Write(ctx context.Context, e Entry) error {
	doc := mongoEntry{
		ID:         uuid.NewString(),
		AdminID:    e.AdminID.String(),
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    e.Details,
		IP:         e.IP,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *MongoSink) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	filter := bson.M{}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.TargetType != "" {
		filter["targetType"] = f.TargetType
	}
	if f.TargetID != "" {
		filter["targetId"] = f.TargetID
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.offset())).
		SetLimit(int64(f.Limit))
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoEntry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit logs: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		adminID, _ := uuid.Parse(d.AdminID)
		entries = append(entries, Entry{
			ID:         d.ID,
			AdminID:    adminID,
			Action:     d.Action,
			TargetType: d.TargetType,
			TargetID:   d.TargetID,
			Details:    d.Details,
			IP:         d.IP,
			UserAgent:  d.UserAgent,
			CreatedAt:  d.CreatedAt,
		})
	}
	return entries, total, nil
}
