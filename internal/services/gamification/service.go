package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/async"
	"github.com/joseph-ayodele/fieldops/internal/cache"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/gamification"
	"github.com/joseph-ayodele/fieldops/internal/kv"
	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

const (
	leaderboardCacheKey = "gamification:leaderboard"
	leaderboardTTL      = 30 * time.Second
	DefaultLeaderboard  = 10
)

// Service keeps XP snapshots in a kv.Store and applies awards, either
// directly or through an async.Queue. It is an async.Processor for that queue.
type Service struct {
	store     kv.Store
	employees repository.EmployeeRepository
	cache     *cache.Service
	queue     async.Queue
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	// bumped by every award; cached boards from an older version are ignored
	version atomic.Uint64
}

type cachedBoard struct {
	version uint64
	entries []gamification.LeaderboardEntry
}

// NewService creates the service. cache may be nil.
func NewService(store kv.Store, employees repository.EmployeeRepository, c *cache.Service, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		employees: employees,
		cache:     c,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// UseQueue routes job-completion awards through q. Without a queue they are
// applied inline.
func (s *Service) UseQueue(q async.Queue) {
	s.queue = q
}

// XPView is a snapshot with derived progress fields.
type XPView struct {
	EmployeeID     uuid.UUID  `json:"employeeId"`
	XP             int        `json:"xp"`
	Level          int        `json:"level"`
	TotalXP        int        `json:"totalXp"`
	XPToNextLevel  int        `json:"xpToNextLevel"`
	StreakDays     int        `json:"streakDays"`
	Progress       float64    `json:"progress"`
	Rank           string     `json:"rank"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
}

func newView(id uuid.UUID, s entity.XPSnapshot) *XPView {
	return &XPView{
		EmployeeID:     id,
		XP:             s.XP,
		Level:          s.Level,
		TotalXP:        s.TotalXP,
		XPToNextLevel:  gamification.XPNeededForLevel(s.Level) - s.XP,
		StreakDays:     s.StreakDays,
		Progress:       utils.Round2(gamification.Progress(s)),
		Rank:           gamification.RankTitle(s.Level),
		LastActivityAt: s.LastActivityAt,
	}
}

func snapshotKey(id uuid.UUID) string {
	return constants.KeyXPPrefix + id.String()
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (entity.XPSnapshot, error) {
	snap := gamification.NewSnapshot()
	if _, err := kv.GetJSON(ctx, s.store, snapshotKey(id), &snap); err != nil {
		return entity.XPSnapshot{}, common.InternalError("failed to load xp", err)
	}
	return snap, nil
}

func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// GetXP returns the employee's snapshot; employees without one start at level 1.
func (s *Service) GetXP(ctx context.Context, employeeID uuid.UUID) (*XPView, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return newView(employeeID, snap), nil
}

// AwardXP adds amount to the employee's XP immediately.
func (s *Service) AwardXP(ctx context.Context, employeeID uuid.UUID, amount int, reason string) (*XPView, error) {
	if amount <= 0 {
		return nil, common.ValidationErrors{{Field: "amount", Message: "must be a positive integer"}}
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	snap, err := s.apply(ctx, employeeID, amount, reason)
	if err != nil {
		return nil, err
	}
	return newView(employeeID, snap), nil
}

// Process applies a queued award.
func (s *Service) Process(ctx context.Context, job async.Job) error {
	_, err := s.apply(ctx, job.EmployeeID, job.Amount, job.Reason)
	return err
}

func (s *Service) apply(ctx context.Context, id uuid.UUID, amount int, reason string) (entity.XPSnapshot, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	before, err := s.load(ctx, id)
	if err != nil {
		return entity.XPSnapshot{}, err
	}
	after := gamification.AddXP(before, amount)
	after = gamification.RecordActivity(after, s.now())
	if err := kv.SetJSON(ctx, s.store, snapshotKey(id), after); err != nil {
		if common.IsRetryable(err) {
			return entity.XPSnapshot{}, err
		}
		return entity.XPSnapshot{}, common.InternalError("failed to save xp", err)
	}
	s.version.Add(1)
	if s.cache != nil {
		s.cache.Delete(leaderboardCacheKey)
	}

	s.logger.Info("xp awarded", "employee_id", id, "amount", amount, "reason", reason, "level", after.Level)
	if after.Level > before.Level {
		s.logger.Info("employee levelled up", "employee_id", id, "from", before.Level, "to", after.Level)
	}
	return after, nil
}

// CompletionResult is the reward for a completed job.
type CompletionResult struct {
	gamification.JobAward
	EmployeeXP int  `json:"employeeXP"`
	Queued     bool `json:"queued"`
}

// CompleteJob prices the job in XP and awards the employee's role-adjusted
// share. With a queue attached the award is applied asynchronously.
func (s *Service) CompleteJob(ctx context.Context, employeeID uuid.UUID, outcome gamification.JobOutcome) (*CompletionResult, error) {
	v := common.NewValidator()
	v.Field("totalCost", outcome.TotalCost, common.NonNegative)
	v.Field("budgetUsed", outcome.BudgetUsed, common.NonNegative)
	v.Field("budgetTotal", outcome.BudgetTotal, common.NonNegative)
	if outcome.Rating != nil && (*outcome.Rating < 1 || *outcome.Rating > 5) {
		v.Add("rating", "must be between 1 and 5")
	}
	if outcome.Incidents != nil && *outcome.Incidents < 0 {
		v.Add("incidents", "must be a non-negative number")
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	award := gamification.JobXP(outcome)
	share := gamification.EmployeeXP(award.TotalXP, emp.Role)
	result := &CompletionResult{JobAward: award, EmployeeXP: share}
	reason := jobReason(award)

	if s.queue == nil {
		if _, err := s.apply(ctx, employeeID, share, reason); err != nil {
			return nil, err
		}
		return result, nil
	}

	job := async.Job{
		EmployeeID:  employeeID,
		Amount:      share,
		Reason:      reason,
		SubmittedAt: s.now(),
		TraceID:     common.RequestIDFromContext(ctx),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, common.InternalError("failed to queue xp award", err)
	}
	result.Queued = true
	return result, nil
}

func jobReason(a gamification.JobAward) string {
	parts := []string{fmt.Sprintf("job base %d", a.BaseXP)}
	for _, b := range a.Bonuses {
		parts = append(parts, strings.ToLower(b.Source))
	}
	return strings.Join(parts, ", ")
}

// Leaderboard ranks every employee with a snapshot. The full ranking is cached
// briefly and invalidated by any award.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboard
	}
	board, ok := s.cachedBoard()
	if !ok {
		ver := s.version.Load()
		var err error
		if board, err = s.computeBoard(ctx); err != nil {
			return nil, err
		}
		s.storeBoard(ver, board)
	}
	if len(board) > limit {
		board = board[:limit]
	}
	return board, nil
}

func (s *Service) computeBoard(ctx context.Context) ([]gamification.LeaderboardEntry, error) {
	raw, err := s.store.List(ctx, constants.KeyXPPrefix)
	if err != nil {
		return nil, common.InternalError("failed to list xp", err)
	}
	snaps := make(map[string]entity.XPSnapshot, len(raw))
	for key, b := range raw {
		var snap entity.XPSnapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			s.logger.Warn("skipping unreadable xp snapshot", "key", key, "error", err)
			continue
		}
		snaps[strings.TrimPrefix(key, constants.KeyXPPrefix)] = snap
	}
	return gamification.Leaderboard(snaps, 0), nil
}

func (s *Service) cachedBoard() ([]gamification.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(leaderboardCacheKey)
	if !ok {
		return nil, false
	}
	cb, ok := v.(cachedBoard)
	if !ok || cb.version != s.version.Load() {
		return nil, false
	}
	return cb.entries, true
}

// storeBoard caches a board computed at version ver. A board that an award
// overtook while it was being computed is dropped.
func (s *Service) storeBoard(ver uint64, board []gamification.LeaderboardEntry) {
	if s.cache == nil || s.version.Load() != ver {
		return
	}
	s.cache.SetWithTTL(leaderboardCacheKey, cachedBoard{version: ver, entries: board}, leaderboardTTL)
}
