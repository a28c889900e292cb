// Package store provides in-memory repository implementations for tests
// and development.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/trm/pricing-engine/pricing"
)

// =============================================================================
// MEMORY REPOSITORIES - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements every pricing repository interface in memory.
type Memory struct {
	mu          sync.RWMutex
	jobs        map[pricing.CompanyID][]jobRecord
	rules       map[pricing.RuleID]pricing.Rule
	promos      map[string]pricing.PromotionalCode
	redemptions map[string][]pricing.UserID
}

type jobRecord struct {
	CreatedAt time.Time
	Active    bool
}

func NewMemory() *Memory {
	return &Memory{
		jobs:        make(map[pricing.CompanyID][]jobRecord),
		rules:       make(map[pricing.RuleID]pricing.Rule),
		promos:      make(map[string]pricing.PromotionalCode),
		redemptions: make(map[string][]pricing.UserID),
	}
}

// -----------------------------------------------------------------------------
// JobRepository

// AddJob records a posting for a company.
func (m *Memory) AddJob(companyID pricing.CompanyID, createdAt time.Time, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[companyID] = append(m.jobs[companyID], jobRecord{CreatedAt: createdAt, Active: active})
}

func (m *Memory) CountActiveSince(_ context.Context, companyID pricing.CompanyID, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, job := range m.jobs[companyID] {
		if job.Active && !job.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// -----------------------------------------------------------------------------
// PricingRuleRepository

// SaveRule stores or replaces a rule.
func (m *Memory) SaveRule(rule pricing.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
}

func (m *Memory) FindApplicable(_ context.Context, q pricing.RuleQuery) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []pricing.Rule
	for _, rule := range m.rules {
		if rule.ActiveAt(q.At) && rule.AppliesTo.Covers(q.ServiceType) {
			result = append(result, rule)
		}
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// PromotionalCodeRepository

// SavePromo stores or replaces a promotional code, keyed case-insensitively.
func (m *Memory) SavePromo(promo pricing.PromotionalCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	promo.Code = pricing.NormalizeCode(promo.Code)
	m.promos[promo.Code] = promo
}

// RecordRedemption appends one redemption for a code.
func (m *Memory) RecordRedemption(code string, userID pricing.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pricing.NormalizeCode(code)
	m.redemptions[key] = append(m.redemptions[key], userID)
}

func (m *Memory) FindByCode(_ context.Context, code string) (*pricing.PromotionalCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	promo, ok := m.promos[pricing.NormalizeCode(code)]
	if !ok {
		return nil, pricing.ErrPromoNotFound
	}
	copied := promo
	return &copied, nil
}

func (m *Memory) CountRedemptions(_ context.Context, code string, userID pricing.UserID) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := m.redemptions[pricing.NormalizeCode(code)]
	byUser := 0
	if userID != "" {
		for _, u := range users {
			if u == userID {
				byUser++
			}
		}
	}
	return len(users), byUser, nil
}
