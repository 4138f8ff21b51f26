// Package service coordinates tournaments: it owns the registry of guilds,
// delivers actions to them and wires the domain to storage, rating lookups
// and the optimizer worker pool.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/inhouse/internal/adapters/mq/queue"
	"github.com/okian/inhouse/internal/adapters/mq/worker"
	"github.com/okian/inhouse/internal/adapters/rating"
	"github.com/okian/inhouse/internal/adapters/repository"
	"github.com/okian/inhouse/internal/config"
	"github.com/okian/inhouse/internal/domain/dedupe"
	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/ledger"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/internal/domain/partition"
	"github.com/okian/inhouse/internal/domain/pool"
	"github.com/okian/inhouse/internal/domain/types"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/okian/inhouse/pkg/metrics"
)

const (
	defaultListLimit     = 10
	jobTimeoutSlack      = time.Second
	defaultMaxListLimit  = 100
	recentMatchesPerUser = 10
)

// Optimizer searches for a balanced assignment of one group.
type Optimizer interface {
	Optimize(ctx context.Context, g model.Group, seed int64) (optimizer.Result, error)
}

// Service implements the API dependencies for the tournament system.
type Service struct {
	mu sync.RWMutex

	dir         repository.Directory
	lookup      rating.Lookup
	ratings     *rating.Cache
	prowess     rating.ProwessModel
	eval        *fitness.Evaluator
	partitioner *partition.Partitioner
	ledger      *ledger.Ledger
	registry    *Registry
	optimizer   Optimizer
	jobs        *queue.InMemoryQueue
	workers     *worker.Pool

	workerCount  int
	queueSize    int
	ledgerSize   int
	lockPolicy   string
	budget       optimizer.Budget
	weight       float64
	seed         int64
	maxListLimit int
	clock        func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of optimizer workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the optimizer job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLedgerCacheSize bounds the scored match id tracker (0 = unbounded).
func WithLedgerCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.ledgerSize = size
		}
	}
}

// WithLockPolicy selects config.LockPolicyReject or config.LockPolicyWait.
func WithLockPolicy(policy string) Option {
	return func(s *Service) {
		if policy == config.LockPolicyReject || policy == config.LockPolicyWait {
			s.lockPolicy = policy
		}
	}
}

// WithBudget sets the optimizer budget of every search.
func WithBudget(b optimizer.Budget) Option {
	return func(s *Service) { s.budget = b }
}

// WithPreferenceWeight sets the weight of role preference penalties.
func WithPreferenceWeight(w float64) Option {
	return func(s *Service) {
		if w >= 0 {
			s.weight = w
		}
	}
}

// WithSeed fixes the cycle seed; 0 derives one from the clock per cycle.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithRatingLookup resolves ratings at onboarding. The lookup is wrapped
// in a last-known-value cache.
func WithRatingLookup(l rating.Lookup) Option {
	return func(s *Service) {
		if l != nil {
			s.lookup = l
		}
	}
}

// WithProwessModel sets the weights turning ratings into prowess.
func WithProwessModel(m rating.ProwessModel) Option {
	return func(s *Service) { s.prowess = m }
}

// WithOptimizer runs searches on o directly instead of the worker pool.
func WithOptimizer(o Optimizer) Option {
	return func(s *Service) {
		if o != nil {
			s.optimizer = o
		}
	}
}

// WithMaxListLimit caps the limit accepted by list queries.
func WithMaxListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over dir.
func New(dir repository.Directory, opts ...Option) *Service {
	s := &Service{
		dir:          dir,
		prowess:      rating.DefaultProwessModel(),
		workerCount:  2,
		queueSize:    1_024,
		lockPolicy:   config.LockPolicyReject,
		budget:       optimizer.DefaultBudget,
		weight:       fitness.DefaultPreferenceWeight,
		maxListLimit: defaultMaxListLimit,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.lookup != nil {
		s.ratings = rating.NewCache(s.lookup)
		s.lookup = s.ratings
	}

	s.eval = fitness.New(fitness.WithPreferenceWeight(s.weight))
	s.partitioner = partition.New()
	s.registry = NewRegistry(s.lockPolicy)

	var trackerOpts []dedupe.Option
	if s.ledgerSize > 0 {
		trackerOpts = append(trackerOpts, dedupe.WithMaxSize(s.ledgerSize))
	}
	s.ledger = ledger.New(dir,
		ledger.WithTracker(dedupe.NewInMemoryTracker(trackerOpts...)),
		ledger.WithClock(s.clock),
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	return s
}

// Start launches the optimizer worker pool unless a direct optimizer was
// configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.seedRatings(ctx); err != nil {
		return err
	}
	if s.optimizer == nil {
		s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
		s.workers = worker.NewPool(s.workerCount, s.jobs, optimizer.New(s.eval, optimizer.WithBudget(s.budget)),
			worker.WithJobTimeout(jobTimeout(s.budget)))
		s.workers.Start(ctx)
		s.optimizer = s.workers
	}
	s.started = true
	s.logger.Info(ctx, "tournament service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("lockPolicy", s.lockPolicy),
		logger.Int("maxEpochs", s.budget.MaxEpochs),
		logger.Duration("searchBudget", s.budget.MaxDuration),
	)
	return nil
}

// seedRatings primes the rating cache with the fresh ratings already stored
// in the directory, so an unavailable rating service falls back to them.
func (s *Service) seedRatings(ctx context.Context) error {
	if s.ratings == nil {
		return nil
	}
	ps, err := s.dir.List(ctx)
	if err != nil {
		return fmt.Errorf("seed rating cache: %w", err)
	}
	for _, p := range ps {
		if p.RiotID != "" && p.Rating.Rank != "" && !p.Rating.Stale {
			s.ratings.Remember(p.RiotID, p.Rating)
		}
	}
	s.logger.Debug(ctx, "rating cache seeded", logger.Int("handles", s.ratings.Len()))
	return nil
}

// Stop shuts the worker pool down and closes the directory.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.workers != nil {
		if err := s.workers.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
		s.optimizer, s.workers, s.jobs = nil, nil, nil
	}
	if err := s.dir.Close(); err != nil {
		s.logger.Warn(ctx, "closing directory", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "tournament service stopped")
}

// jobTimeout bounds one worker search at the budget's wall time plus
// slack. Searches without a wall-time budget are unbounded.
func jobTimeout(b optimizer.Budget) time.Duration {
	if b.MaxDuration <= 0 {
		return 0
	}
	return b.MaxDuration + jobTimeoutSlack
}

func (s *Service) search() Optimizer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optimizer
}

// Apply delivers one action to the tournament of guildID and returns the
// resulting snapshot.
func (s *Service) Apply(ctx context.Context, guildID string, a Action) (Snapshot, error) {
	if guildID == "" {
		return Snapshot{}, fmt.Errorf("%w: empty guild id", ErrInvalidAction)
	}
	if a == nil {
		return Snapshot{}, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	t := s.registry.Get(guildID)

	var snap Snapshot
	var err error
	if sc, ok := a.(StartCycle); ok {
		snap, err = s.startCycle(ctx, t, sc)
	} else {
		err = s.locked(ctx, t, func() error {
			if err := s.dispatch(ctx, t, a); err != nil {
				return err
			}
			snap = t.snapshot()
			return nil
		})
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Debug(ctx, "action rejected",
			logger.String("guild", guildID),
			logger.String("action", a.Name()),
			logger.Error(err))
	}
	metrics.RecordAction(a.Name(), outcome)
	return snap, err
}

// Snapshot returns the current view of a guild. Unknown guilds are empty.
func (s *Service) Snapshot(ctx context.Context, guildID string) (Snapshot, error) {
	t, ok := s.registry.Lookup(guildID)
	if !ok {
		return Snapshot{GuildID: guildID, Pool: []pool.Entry{}, Matches: []*lifecycle.Match{}}, nil
	}
	if err := t.wait(ctx); err != nil {
		return Snapshot{}, err
	}
	defer t.release()
	return t.snapshot(), nil
}

func (s *Service) locked(ctx context.Context, t *Tournament, fn func() error) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()
	defer t.reportPool()
	return fn()
}

func (s *Service) dispatch(ctx context.Context, t *Tournament, a Action) error {
	switch a := a.(type) {
	case Join:
		return s.join(ctx, t, a.ParticipantID)
	case Leave:
		return t.pool.Leave(a.ParticipantID)
	case Volunteer:
		return t.pool.Volunteer(a.ParticipantID)
	case Finalize:
		return s.withMatch(t, a.MatchID, (*lifecycle.Match).Finalize)
	case Swap:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error { return m.Swap(a.A, a.B) })
	case EnterResult:
		return s.withMatch(t, a.MatchID, (*lifecycle.Match).BeginResult)
	case DeclareWinner:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error { return m.DeclareWinner(a.Team) })
	case StartVote:
		return s.withMatch(t, a.MatchID, (*lifecycle.Match).StartVote)
	case CastVote:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error {
			cast := func(m *lifecycle.Match) error { return m.CastVote(a.Voter, a.Candidate) }
			trial, err := m.Rehearse(cast)
			if err != nil {
				return err
			}
			if !trial.AllVoted() {
				return cast(m)
			}
			return s.settle(ctx, m, cast)
		})
	case SkipVote:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error {
			return s.settle(ctx, m, (*lifecycle.Match).SkipVote)
		})
	case CloseVote:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error {
			return s.settle(ctx, m, func(*lifecycle.Match) error { return nil })
		})
	case Cancel:
		return s.withMatch(t, a.MatchID, func(m *lifecycle.Match) error { return s.cancel(t, m) })
	case RestartCycle:
		return s.restart(t)
	case Toxicity:
		p, err := s.ledger.RecordToxicity(ctx, a.ParticipantID)
		if err != nil {
			return err
		}
		t.pool.Refresh(p)
		return nil
	case StartCycle:
		return fmt.Errorf("%w: start_cycle runs outside the dispatcher", ErrInvalidAction)
	}
	return fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func (s *Service) withMatch(t *Tournament, id string, fn func(*lifecycle.Match) error) error {
	m, err := t.match(id)
	if err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}
	return fn(m)
}

func (s *Service) join(ctx context.Context, t *Tournament, id string) error {
	p, err := s.dir.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s is not onboarded", pool.ErrNotEligible, id)
	}
	if err != nil {
		return err
	}
	if matchID, ok := t.activeMatch(id); ok {
		return fmt.Errorf("%w: %s plays in %s", ErrInActiveMatch, id, matchID)
	}
	if t.placed(id) {
		return fmt.Errorf("%w: %s was placed in the forming cycle", ErrInActiveMatch, id)
	}
	return t.pool.Join(p, s.clock())
}

// settle scores the outcome step would produce, then applies step to m and
// closes it. A failed ledger write leaves m as it was, so the action can be
// retried.
func (s *Service) settle(ctx context.Context, m *lifecycle.Match, step func(*lifecycle.Match) error) error {
	if m.State == lifecycle.StateCompleted {
		metrics.RecordScoreDuplicate()
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateScoring, m.ID)
	}
	trial, err := m.Rehearse(step)
	if err != nil {
		return err
	}
	o, err := trial.Outcome()
	if err != nil {
		return err
	}
	if _, err := s.ledger.Apply(ctx, o); err != nil {
		return err
	}
	if err := step(m); err != nil {
		return err
	}
	return m.Complete()
}

func (s *Service) cancel(t *Tournament, m *lifecycle.Match) error {
	if err := m.Cancel(); err != nil {
		return err
	}
	t.pool.Requeue(m.Group.Members, s.clock())
	return nil
}

// restart cancels the unfinished matches of the current cycle, discards a
// cycle still forming and returns everyone to the pool. Volunteers are
// returned only when no match of the cycle was scored.
func (s *Service) restart(t *Tournament) error {
	if t.cycle.ID == "" {
		return fmt.Errorf("%w: no cycle to restart", lifecycle.ErrInvalidTransition)
	}
	now := s.clock()
	t.generation++

	credited := false
	for _, id := range t.order {
		m := t.matches[id]
		if m.CycleID != t.cycle.ID {
			continue
		}
		if m.State == lifecycle.StateCompleted {
			credited = true
			continue
		}
		if m.State.Terminal() {
			continue
		}
		if err := s.cancel(t, m); err != nil {
			return err
		}
	}
	if t.cycle.Pending {
		t.pool.Requeue(t.cycle.Placed, now)
	}
	if !credited {
		t.pool.Requeue(t.cycle.Volunteers, now)
	}
	s.logger.Info(context.Background(), "cycle restarted",
		logger.String("guild", t.guildID),
		logger.String("cycle", t.cycle.ID),
		logger.Bool("pending", t.cycle.Pending))
	t.cycle = cycle{}
	return nil
}

// startCycle partitions under the lock, runs one search per group off the
// lock and commits the proposed matches if the cycle was not restarted
// meanwhile.
func (s *Service) startCycle(ctx context.Context, t *Tournament, sc StartCycle) (Snapshot, error) {
	var (
		groups []model.Group
		cyc    cycle
		gen    uint64
	)
	err := s.locked(ctx, t, func() error {
		if t.cycle.Pending {
			return ErrCycleInProgress
		}
		if err := s.refreshPool(ctx, t); err != nil {
			return err
		}
		res, err := s.partitioner.Partition(t.pool.Queued())
		if err != nil {
			return err
		}

		seed := s.seed
		if sc.Seed != nil {
			seed = *sc.Seed
		}
		if seed == 0 {
			seed = s.clock().UnixNano()
		}

		volunteers := make([]model.Participant, 0, len(res.Remainder))
		for _, e := range t.pool.TakeVolunteers() {
			volunteers = append(volunteers, e.Participant)
		}
		volunteers = append(volunteers, res.Remainder...)

		var placed []model.Participant
		var ids []string
		for _, g := range res.Groups {
			placed = append(placed, g.Members...)
			ids = append(ids, g.IDs()...)
		}
		for _, p := range res.Remainder {
			ids = append(ids, p.ID)
		}
		t.pool.Take(ids)

		t.generation++
		t.cycle = cycle{
			ID:         uuid.NewString(),
			Seed:       seed,
			StartedAt:  s.clock(),
			Pending:    true,
			Placed:     placed,
			Volunteers: volunteers,
		}
		t.prune()
		groups, cyc, gen = res.Groups, t.cycle, t.generation
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	s.logger.Info(ctx, "cycle forming",
		logger.String("guild", t.guildID),
		logger.String("cycle", cyc.ID),
		logger.Int64("seed", cyc.Seed),
		logger.Int("groups", len(groups)),
		logger.Int("volunteers", len(cyc.Volunteers)))

	results := make([]optimizer.Result, len(groups))
	opt := s.search()
	if opt == nil {
		opt = optimizer.New(s.eval, optimizer.WithBudget(s.budget))
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		g.Go(func() error {
			res, err := opt.Optimize(gctx, groups[i], matchSeed(cyc.Seed, groups[i].Index))
			if err != nil {
				return err
			}
			results[i] = res
			metrics.RecordOptimizerRun(string(res.Stats.StopReason), res.Stats.Epochs, res.Fitness.Total,
				float64(res.Stats.Elapsed.Milliseconds()), res.Stats.MemoHits)
			return nil
		})
	}
	searchErr := g.Wait()

	// The cycle must be committed or rolled back even if ctx already ended.
	var snap Snapshot
	commitCtx := context.WithoutCancel(ctx)
	if err := t.wait(commitCtx); err != nil {
		return Snapshot{}, err
	}
	defer t.release()
	defer t.reportPool()

	if t.generation != gen {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrCycleCancelled, cyc.ID)
	}
	if searchErr != nil {
		now := s.clock()
		t.pool.Requeue(cyc.Placed, now)
		t.pool.Requeue(cyc.Volunteers, now)
		t.cycle = cycle{}
		metrics.RecordError("service", "optimize")
		return Snapshot{}, fmt.Errorf("optimize cycle %s: %w", cyc.ID, searchErr)
	}

	volunteerIDs := make([]string, len(cyc.Volunteers))
	for i, p := range cyc.Volunteers {
		volunteerIDs[i] = p.ID
	}
	for i, grp := range groups {
		m := lifecycle.New(uuid.NewString(), t.guildID, cyc.ID, grp, results[i],
			lifecycle.WithEvaluator(s.eval),
			lifecycle.WithVolunteers(volunteerIDs),
			lifecycle.WithClock(s.clock),
			lifecycle.WithTransitionHook(s.onTransition),
		)
		t.add(m)
		metrics.AddActiveMatches(1)
	}
	t.cycle.Pending = false
	t.cycle.Placed = nil
	snap = t.snapshot()
	return snap, nil
}

func (s *Service) onTransition(from, to lifecycle.State) {
	metrics.RecordTransition(from.String(), to.String())
	if to.Terminal() {
		metrics.AddActiveMatches(-1)
	}
}

// refreshPool reloads pooled participants so partitioning sees current
// ratings and counters, and recomputes their prowess from the in-house win
// rate. Deactivated participants leave the pool.
func (s *Service) refreshPool(ctx context.Context, t *Tournament) error {
	for _, e := range t.pool.Entries() {
		p, err := s.dir.Get(ctx, e.Participant.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			_ = t.pool.Leave(e.Participant.ID)
			continue
		case err != nil:
			return err
		}
		if !p.Eligible() {
			_ = t.pool.Leave(p.ID)
			continue
		}
		s.prowess.Apply(&p)
		t.pool.Refresh(p)
	}
	return nil
}

// OnboardRequest links a participant's rating handle and role preferences.
type OnboardRequest struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	RiotID      string       `json:"riot_id"`
	Preferences []model.Role `json:"preferences"`
}

// Onboard creates or updates a participant. The rating is resolved from
// the rating handle and prowess is recomputed from it.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) (model.Participant, error) {
	if req.ID == "" {
		return model.Participant{}, fmt.Errorf("%w: empty id", repository.ErrInvalidRecord)
	}
	if err := model.ValidatePreferences(req.Preferences); err != nil {
		return model.Participant{}, err
	}

	p, err := s.dir.Get(ctx, req.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		p = model.Participant{ID: req.ID, Rating: rating.Default()}
	case err != nil:
		return model.Participant{}, err
	}

	if req.RiotID != "" {
		if _, _, err := rating.SplitHandle(req.RiotID); err != nil {
			return model.Participant{}, err
		}
		if s.lookup != nil && (req.RiotID != p.RiotID || p.Rating.Rank == "" || p.Rating.Stale) {
			r, err := s.lookup.Lookup(ctx, req.RiotID)
			if err != nil {
				return model.Participant{}, err
			}
			p.Rating = r
		}
		p.RiotID = req.RiotID
	}
	if req.Username != "" {
		p.Username = req.Username
	}
	p.Preferences = req.Preferences
	p.Active = true
	s.prowess.Apply(&p)

	stored, err := s.dir.Upsert(ctx, p)
	if err != nil {
		return model.Participant{}, err
	}
	s.logger.Info(ctx, "participant onboarded",
		logger.String("participant_id", stored.ID),
		logger.String("rank", stored.Rating.Rank),
		logger.Bool("stale_rating", stored.Rating.Stale),
		logger.Bool("eligible", stored.Eligible()))
	return stored, nil
}

// Deactivate marks a participant inactive. They leave every pool at the
// next cycle start.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.dir.Deactivate(ctx, id)
}

// ParticipantView is a participant with their recent matches.
type ParticipantView struct {
	model.Participant
	Points  int                 `json:"points"`
	WinRate float64             `json:"win_rate"`
	Matches []model.MatchRecord `json:"matches"`
}

// Participant returns a participant with their recent matches.
func (s *Service) Participant(ctx context.Context, id string) (ParticipantView, error) {
	p, err := s.dir.Get(ctx, id)
	if err != nil {
		return ParticipantView{}, err
	}
	recs, err := s.dir.ParticipantMatches(ctx, id, recentMatchesPerUser)
	if err != nil {
		return ParticipantView{}, err
	}
	return ParticipantView{
		Participant: p,
		Points:      p.Counters.TotalPoints(),
		WinRate:     p.Counters.WinRate(),
		Matches:     recs,
	}, nil
}

// Standings returns the points table. limit <= 0 selects the default.
func (s *Service) Standings(ctx context.Context, limit int) ([]types.Standing, error) {
	return s.dir.Standings(ctx, s.clampLimit(limit))
}

// Matches returns the most recent scored matches.
func (s *Service) Matches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	return s.dir.Matches(ctx, s.clampLimit(limit))
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, s.maxListLimit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"lockPolicy":   s.lockPolicy,
		"guilds":       s.registry.Len(),
		"participants": s.dir.Count(ctx),
	}
	if s.jobs != nil {
		stats["queueLength"] = s.jobs.Len()
	}
	metrics.UpdateGuilds(s.registry.Len())
	metrics.UpdateParticipants(stats["participants"].(int))
	return stats
}
