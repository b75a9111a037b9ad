package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
)

var (
	ErrCountryNotFound  = errors.New("country not found")
	ErrStateNotFound    = errors.New("state not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrRuleNotFound     = errors.New("category document rule not found")
	ErrExists           = errors.New("entry already exists")
	ErrInvalidSlug      = errors.New("slug must contain letters or digits")
)

// Slugify lower-cases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func saveErr(what string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrExists
	}
	return fmt.Errorf("failed to save %s: %w", what, err)
}

func findOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func (s *Service) Countries(ctx context.Context) ([]Country, error) {
	var list []Country
	err := s.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Service) SaveCountry(ctx context.Context, id *uuid.UUID, req *CountryRequest) (*Country, error) {
	c := Country{}
	if id != nil {
		if err := s.db.WithContext(ctx).First(&c, "id = ?", *id).Error; err != nil {
			return nil, findOr(err, ErrCountryNotFound)
		}
	}
	c.Name = strings.TrimSpace(req.Name)
	c.ISOCode = strings.ToUpper(strings.TrimSpace(req.ISOCode))
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, saveErr("country", err)
	}
	return &c, nil
}

// DeleteCountry removes the country and its states.
func (s *Service) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("country_id = ?", id).Delete(&State{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Country{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCountryNotFound
		}
		return nil
	})
}

func (s *Service) States(ctx context.Context, countryID uuid.UUID) ([]State, error) {
	var list []State
	err := s.db.WithContext(ctx).Where("country_id = ?", countryID).Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Service) SaveState(ctx context.Context, id *uuid.UUID, req *StateRequest) (*State, error) {
	countryID, err := uuid.Parse(req.CountryID)
	if err != nil {
		return nil, ErrCountryNotFound
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&Country{}).Where("id = ?", countryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCountryNotFound
	}

	st := State{}
	if id != nil {
		if err := s.db.WithContext(ctx).First(&st, "id = ?", *id).Error; err != nil {
			return nil, findOr(err, ErrStateNotFound)
		}
	}
	st.CountryID = countryID
	st.Name = strings.TrimSpace(req.Name)
	if err := s.db.WithContext(ctx).Save(&st).Error; err != nil {
		return nil, saveErr("state", err)
	}
	return &st, nil
}

func (s *Service) DeleteState(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&State{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateNotFound
	}
	return nil
}

// Categories lists categories with their document rules. Inactive ones are
// included only when all is set.
func (s *Service) Categories(ctx context.Context, all bool) ([]Category, error) {
	q := s.db.WithContext(ctx).Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("slot ASC")
	})
	if !all {
		q = q.Where("is_active = ?", true)
	}
	var list []Category
	err := q.Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Service) SaveCategory(ctx context.Context, id *uuid.UUID, req *CategoryRequest) (*Category, error) {
	slug := Slugify(req.Slug)
	if strings.TrimSpace(req.Slug) == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	c := Category{IsActive: true}
	if id != nil {
		if err := s.db.WithContext(ctx).First(&c, "id = ?", *id).Error; err != nil {
			return nil, findOr(err, ErrCategoryNotFound)
		}
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Slug = slug
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.db.WithContext(ctx).Omit("Documents").Save(&c).Error; err != nil {
		return nil, saveErr("category", err)
	}
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&CategoryDocument{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// SetDocumentRule adds or updates the rule for one KYC slot in a category.
func (s *Service) SetDocumentRule(ctx context.Context, categoryID uuid.UUID, req *CategoryDocumentRequest) (*CategoryDocument, error) {
	slot, err := kyc.ParseSlot(req.Slot)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCategoryNotFound
	}

	rule := CategoryDocument{CategoryID: categoryID, Slot: string(slot), IsMandatory: req.IsMandatory}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_mandatory"}),
	}).Create(&rule).Error
	if err != nil {
		return nil, saveErr("document rule", err)
	}
	return &rule, nil
}

func (s *Service) RemoveDocumentRule(ctx context.Context, categoryID uuid.UUID, slot string) error {
	res := s.db.WithContext(ctx).Where("category_id = ? AND slot = ?", categoryID, slot).Delete(&CategoryDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
