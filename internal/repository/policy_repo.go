package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

type PolicyRepository interface {
	Find(ctx context.Context, target, kind string) (*models.Policy, error)
	List(ctx context.Context, target string) ([]models.Policy, error)
	Upsert(ctx context.Context, p *models.Policy) error
	Delete(ctx context.Context, target, kind string) error
}

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) Find(ctx context.Context, target, kind string) (*models.Policy, error) {
	var p models.Policy
	if err := r.db.WithContext(ctx).First(&p, "target = ? AND type = ?", target, kind).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *policyRepository) List(ctx context.Context, target string) ([]models.Policy, error) {
	q := r.db.WithContext(ctx).Order("target ASC, type ASC")
	if target != "" {
		q = q.Where("target = ?", target)
	}
	var rows []models.Policy
	err := q.Find(&rows).Error
	return rows, err
}

func (r *policyRepository) Upsert(ctx context.Context, p *models.Policy) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "target"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_by", "updated_at"}),
		}).
		Create(p).Error
}

func (r *policyRepository) Delete(ctx context.Context, target, kind string) error {
	res := r.db.WithContext(ctx).Where("target = ? AND type = ?", target, kind).Delete(&models.Policy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
