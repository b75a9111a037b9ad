package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

var policyTargets = map[string]bool{
	models.PolicyTargetTraveller: true,
	models.PolicyTargetVendor:    true,
	models.PolicyTargetAll:       true,
}

var policyTypes = map[string]bool{
	"privacy":      true,
	"terms":        true,
	"refund":       true,
	"cancellation": true,
}

type PolicyService struct {
	repo  repository.PolicyRepository
	audit ActionLogger
}

func NewPolicyService(repo repository.PolicyRepository, auditLog ActionLogger) *PolicyService {
	return &PolicyService{repo: repo, audit: auditLog}
}

func normalizePolicyKey(target, kind string) (string, string, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !policyTargets[target] || !policyTypes[kind] {
		return "", "", ErrInvalidPolicy
	}
	return target, kind, nil
}

// Get returns the policy for the audience, falling back to the one written
// for everyone.
func (s *PolicyService) Get(ctx context.Context, target, kind string) (*models.Policy, error) {
	target, kind, err := normalizePolicyKey(target, kind)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Find(ctx, target, kind)
	if errors.Is(err, repository.ErrNotFound) && target != models.PolicyTargetAll {
		p, err = s.repo.Find(ctx, models.PolicyTargetAll, kind)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPolicyNotFound
	}
	return p, err
}

func (s *PolicyService) List(ctx context.Context, target string) ([]models.Policy, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target != "" && !policyTargets[target] {
		return nil, ErrInvalidPolicy
	}
	list, err := s.repo.List(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	if list == nil {
		list = []models.Policy{}
	}
	return list, nil
}

func (s *PolicyService) Upsert(ctx context.Context, actor audit.Actor, target, kind string, req *dto.PolicyRequest) (*models.Policy, error) {
	target, kind, err := normalizePolicyKey(target, kind)
	if err != nil {
		return nil, err
	}
	adminID := actor.AdminID
	p := &models.Policy{
		Target:    target,
		Type:      kind,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		UpdatedBy: &adminID,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}
	s.audit.LogAction(actor, audit.ActionUpsertPolicy, "policy", target+"/"+kind, map[string]any{"title": p.Title})
	return p, nil
}

func (s *PolicyService) Delete(ctx context.Context, actor audit.Actor, target, kind string) error {
	target, kind, err := normalizePolicyKey(target, kind)
	if err != nil {
		return err
	}
	err = s.repo.Delete(ctx, target, kind)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPolicyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	s.audit.LogAction(actor, audit.ActionDeletePolicy, "policy", target+"/"+kind, nil)
	return nil
}
