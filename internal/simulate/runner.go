package simulate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/okian/inhouse/internal/adapters/repository"
	service "github.com/okian/inhouse/internal/app"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/internal/domain/types"
	"github.com/okian/inhouse/pkg/logger"
)

// ErrInvalidConfig is returned for configurations that cannot form a match.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Run onboards cfg.Participants synthetic players, plays cfg.Cycles cycles
// to completion and writes the standings to out.
func Run(ctx context.Context, cfg Config, out io.Writer) (*Stats, error) {
	switch {
	case cfg.Participants < model.GroupSize:
		return nil, fmt.Errorf("%w: need at least %d participants", ErrInvalidConfig, model.GroupSize)
	case cfg.Cycles < 1:
		return nil, fmt.Errorf("%w: cycles must be positive", ErrInvalidConfig)
	}
	if cfg.Guild == "" {
		cfg.Guild = "simulation"
	}

	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible play, not security

	players, err := generate(rng, cfg.Participants)
	if err != nil {
		return nil, err
	}

	svc := service.New(repository.NewMemoryDirectory(),
		service.WithLogger(log),
		service.WithRatingLookup(players.lookup()),
		service.WithWorkerCount(cfg.Workers),
		service.WithBudget(optimizer.Budget{
			MaxEpochs:   cfg.MaxEpochs,
			MaxDuration: cfg.SearchBudget,
			Neighbors:   cfg.Neighbors,
		}),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop(context.WithoutCancel(ctx))

	for _, req := range players.requests {
		if _, err := svc.Onboard(ctx, req); err != nil {
			return nil, fmt.Errorf("onboard %s: %w", req.Username, err)
		}
	}
	stats.Participants = len(players.requests)

	var fitnessSum float64
	for c := range cfg.Cycles {
		snap, err := playCycle(ctx, svc, cfg, rng, players.requests, cfg.Seed+int64(c))
		if err != nil {
			return nil, fmt.Errorf("cycle %d: %w", c+1, err)
		}
		stats.Cycles++
		stats.Volunteers += len(snap.Cycle.Volunteers)
		for _, m := range snap.Matches {
			if m.CycleID == snap.Cycle.ID && m.State == lifecycle.StateCompleted {
				stats.MatchesPlayed++
				fitnessSum += m.Fitness.Total
			}
		}
		log.Info(ctx, "cycle played",
			logger.Int("cycle", c+1),
			logger.Int("matches", len(snap.Matches)),
			logger.Int("volunteers", len(snap.Cycle.Volunteers)))
	}
	if stats.MatchesPlayed > 0 {
		stats.MeanFitness = fitnessSum / float64(stats.MatchesPlayed)
	}

	rows, err := svc.Standings(ctx, cfg.Top)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	if err := writeStandings(out, rows); err != nil {
		return nil, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Int("participants", stats.Participants),
		logger.Int("cycles", stats.Cycles),
		logger.Int("matches", stats.MatchesPlayed),
		logger.Int("volunteers", stats.Volunteers),
		logger.Float64("meanFitness", stats.MeanFitness),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// playCycle queues everyone, starts a cycle and plays each match through a
// full MVP vote. It returns the final snapshot.
func playCycle(ctx context.Context, svc *service.Service, cfg Config, rng *rand.Rand, players []service.OnboardRequest, seed int64) (service.Snapshot, error) {
	apply := func(a service.Action) (service.Snapshot, error) {
		if cfg.Verbose {
			logger.Get().Debug(ctx, "action", logger.String("type", a.Name()))
		}
		return svc.Apply(ctx, cfg.Guild, a)
	}

	for _, p := range players {
		if _, err := apply(service.Join{ParticipantID: p.ID}); err != nil {
			return service.Snapshot{}, err
		}
	}
	snap, err := apply(service.StartCycle{Seed: &seed})
	if err != nil {
		return service.Snapshot{}, err
	}

	for _, m := range snap.Matches {
		if m.CycleID != snap.Cycle.ID {
			continue
		}
		winner := model.TeamBlue
		if rng.Intn(2) == 1 {
			winner = model.TeamRed
		}
		steps := []service.Action{
			service.Finalize{MatchID: m.ID},
			service.EnterResult{MatchID: m.ID},
			service.DeclareWinner{MatchID: m.ID, Team: winner},
			service.StartVote{MatchID: m.ID},
		}
		winners := m.Assignment.Side(winner)
		for _, voter := range m.Assignment.Members() {
			steps = append(steps, service.CastVote{MatchID: m.ID, Voter: voter, Candidate: pick(rng, winners, voter)})
		}
		for _, a := range steps {
			if snap, err = apply(a); err != nil {
				return service.Snapshot{}, fmt.Errorf("match %s: %w", m.ID, err)
			}
		}
	}
	return snap, nil
}

// pick returns a random candidate other than self.
func pick(rng *rand.Rand, candidates []string, self string) string {
	for {
		c := candidates[rng.Intn(len(candidates))]
		if c != self {
			return c
		}
	}
}

func writeStandings(out io.Writer, rows []types.Standing) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tWINS\tMVPS\tGAMES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n", r.Rank, r.Username, r.Points, r.Wins, r.MVPs, r.GamesPlayed)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write standings: %w", err)
	}
	return nil
}
