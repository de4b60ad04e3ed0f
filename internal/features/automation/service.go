package automation

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/query"
)

type AutomationService interface {
	CreateRule(ctx context.Context, rule *AutomationRule) error
	GetRule(ctx context.Context, id string) (*AutomationRule, error)
	ListRules(ctx context.Context, opts ListOptions) (*query.AutomationsResult, error)
	UpdateRule(ctx context.Context, rule *AutomationRule) error
	DeleteRule(ctx context.Context, id string) error
	EnableRule(ctx context.Context, id string, active bool) error
	RunRule(ctx context.Context, id string) error
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RegisterJob(rule *AutomationRule) error
	UnregisterJob(id string)
}

type AutomationServiceImpl struct {
	repo     AutomationRepository
	backend  backend.Service
	executor ScriptExecutor

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	mu         sync.RWMutex
}

func NewAutomationService(repo AutomationRepository, svc backend.Service, executor ScriptExecutor) AutomationService {
	return &AutomationServiceImpl{
		repo:       repo,
		backend:    svc,
		executor:   executor,
		jobEntries: make(map[string]cron.EntryID),
	}
}

func (s *AutomationServiceImpl) CreateRule(ctx context.Context, rule *AutomationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return err
	}

	if rule.Active && rule.Type == RuleTypeSchedule && s.scheduler != nil {
		if err := s.RegisterJob(rule); err != nil {
			log.Printf("Failed to register automation rule %s: %v", rule.ID, err)
		}
	}
	return nil
}

func (s *AutomationServiceImpl) GetRule(ctx context.Context, id string) (*AutomationRule, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRules reads through the backend listing so both storage flavors serve
// the same paged, filtered view.
func (s *AutomationServiceImpl) ListRules(ctx context.Context, opts ListOptions) (*query.AutomationsResult, error) {
	q := query.NewAutomationsQuery(s.backend).
		WithTitle(opts.Title).
		WithType(opts.Type).
		WithSort(opts.Sort).
		WithSize(opts.Size).
		WithPage(opts.Page)
	if opts.Dashboard.Identifier != "" || opts.Dashboard.URI != "" {
		q.WithDashboard(opts.Dashboard)
	}
	return q.Query(ctx)
}

func (s *AutomationServiceImpl) UpdateRule(ctx context.Context, rule *AutomationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("automation rule %s not found", rule.ID)
	}
	rule.Created = existing.Created

	if err := s.repo.Update(ctx, rule); err != nil {
		return err
	}

	s.UnregisterJob(rule.ID)
	if rule.Active && rule.Type == RuleTypeSchedule && s.scheduler != nil {
		if err := s.RegisterJob(rule); err != nil {
			log.Printf("Failed to re-register automation rule %s: %v", rule.ID, err)
		}
	}
	return nil
}

func (s *AutomationServiceImpl) DeleteRule(ctx context.Context, id string) error {
	s.UnregisterJob(id)
	return s.repo.Delete(ctx, id)
}

func (s *AutomationServiceImpl) EnableRule(ctx context.Context, id string, active bool) error {
	if err := s.repo.Enable(ctx, id, active); err != nil {
		return err
	}

	if !active {
		s.UnregisterJob(id)
		return nil
	}

	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rule != nil && rule.Type == RuleTypeSchedule && s.scheduler != nil {
		return s.RegisterJob(rule)
	}
	return nil
}

func (s *AutomationServiceImpl) RunRule(ctx context.Context, id string) error {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("automation rule %s not found", id)
	}
	return s.executor.Execute(ctx, rule)
}

// InitializeScheduler starts the cron scheduler and registers every active
// schedule rule found in storage.
func (s *AutomationServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.mu.Lock()
	s.scheduler = cron.New()
	s.mu.Unlock()

	rules, err := s.repo.ListActiveSchedules(ctx)
	if err != nil {
		return err
	}
	for i := range rules {
		if err := s.RegisterJob(&rules[i]); err != nil {
			log.Printf("Failed to register automation rule %s: %v", rules[i].ID, err)
		}
	}

	s.scheduler.Start()
	log.Printf("Automation scheduler started with %d rules", len(rules))
	return nil
}

func (s *AutomationServiceImpl) StopScheduler() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
		s.jobEntries = make(map[string]cron.EntryID)
	}
	return nil
}

func (s *AutomationServiceImpl) RegisterJob(rule *AutomationRule) error {
	if rule.Type != RuleTypeSchedule {
		return fmt.Errorf("rule %s is not a schedule rule", rule.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return fmt.Errorf("scheduler is not running")
	}

	id := rule.ID
	entryID, err := s.scheduler.AddFunc(rule.Schedule, func() {
		if err := s.RunRule(context.Background(), id); err != nil {
			log.Printf("Automation rule %s failed: %v", id, err)
		}
	})
	if err != nil {
		return err
	}
	s.jobEntries[id] = entryID
	return nil
}

func (s *AutomationServiceImpl) UnregisterJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobEntries[id]; ok && s.scheduler != nil {
		s.scheduler.Remove(entryID)
	}
	delete(s.jobEntries, id)
}

func validateRule(rule *AutomationRule) error {
	if rule.Title == "" {
		return fmt.Errorf("rule title is required")
	}
	switch rule.Type {
	case RuleTypeSchedule:
		if _, err := cron.ParseStandard(rule.Schedule); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	case RuleTypeTrigger:
	default:
		return fmt.Errorf("unknown rule type %q", rule.Type)
	}
	return nil
}
