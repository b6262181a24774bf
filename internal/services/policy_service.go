package services

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/sagarpathak0/pharma-res/internal/grading"
	"github.com/sagarpathak0/pharma-res/internal/models"
	"gorm.io/gorm"
)

// PolicyService resolves the grading rules in force: the active
// grading_policies row when one exists, otherwise the config-seeded
// fallback.
type PolicyService struct {
	db *gorm.DB
}

func NewPolicyService(db *gorm.DB) *PolicyService {
	return &PolicyService{db: db}
}

// Load returns the active stored policy, or fallback when none is
// active or the stored rules fail to decode.
func (s *PolicyService) Load(fallback grading.Rules) grading.Rules {
	var policy models.GradingPolicy
	err := s.db.First(&policy, "is_active = ?", true).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load grading policy, using defaults: %v", err)
		}
		return fallback
	}

	raw, err := json.Marshal(policy.Rules)
	if err != nil {
		log.Printf("Failed to encode grading policy %q, using defaults: %v", policy.Name, err)
		return fallback
	}
	rules := fallback
	if err := json.Unmarshal(raw, &rules); err != nil {
		log.Printf("Failed to decode grading policy %q, using defaults: %v", policy.Name, err)
		return fallback
	}
	log.Printf("Loaded grading policy %q", policy.Name)
	return rules
}

// Seed writes the default policy row if no policy exists yet.
func (s *PolicyService) Seed(rules grading.Rules) error {
	var count int64
	if err := s.db.Model(&models.GradingPolicy{}).Count(&count).Error; err != nil {
		return translateDBError(err)
	}
	if count > 0 {
		return nil
	}

	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	var rulesJSON models.JSONB
	if err := json.Unmarshal(raw, &rulesJSON); err != nil {
		return err
	}

	policy := models.GradingPolicy{
		Name:     "default",
		Rules:    rulesJSON,
		IsActive: true,
	}
	return translateDBError(s.db.Create(&policy).Error)
}
