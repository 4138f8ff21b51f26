package lifecycle_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	. "github.com/smartystreets/goconvey/convey"
)

func newMatch(opts ...lifecycle.Option) *lifecycle.Match {
	g := model.Group{}
	for i := range model.GroupSize {
		p := model.Participant{ID: fmt.Sprintf("p%d", i)}
		for r := range p.Prowess {
			p.Prowess[r] = float64(i)
		}
		g.Members = append(g.Members, p)
	}
	res := optimizer.Result{Assignment: model.TeamAssignment{
		Blue: [model.NumRoles]string{"p0", "p1", "p2", "p3", "p4"},
		Red:  [model.NumRoles]string{"p5", "p6", "p7", "p8", "p9"},
	}}
	return lifecycle.New("m1", "g1", "c1", g, res, opts...)
}

func TestMatchHappyPath(t *testing.T) {
	Convey("Given a proposed match", t, func() {
		var seen []string
		clock := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
		m := newMatch(
			lifecycle.WithEvaluator(fitness.New()),
			lifecycle.WithVolunteers([]string{"v1"}),
			lifecycle.WithClock(func() time.Time { return clock }),
			lifecycle.WithTransitionHook(func(from, to lifecycle.State) {
				seen = append(seen, from.String()+">"+to.String())
			}),
		)
		So(m.State, ShouldEqual, lifecycle.StateProposed)

		Convey("When it is swapped, finalized and played", func() {
			So(m.Swap("p0", "p5"), ShouldBeNil)
			So(m.Assignment.Blue[model.RoleTop], ShouldEqual, "p5")
			So(m.Finalize(), ShouldBeNil)
			So(errors.Is(m.Swap("p0", "p5"), lifecycle.ErrInvalidTransition), ShouldBeTrue)
			So(m.BeginResult(), ShouldBeNil)
			So(m.DeclareWinner(model.TeamRed), ShouldBeNil)
			So(m.StartVote(), ShouldBeNil)

			Convey("And votes are cast", func() {
				So(m.CastVote("p1", "p3"), ShouldBeNil)
				So(m.CastVote("p2", "p3"), ShouldBeNil)
				So(m.CastVote("p3", "p2"), ShouldBeNil)

				Convey("Then the outcome names the winners and the MVP", func() {
					o, err := m.Outcome()
					So(err, ShouldBeNil)
					So(o.Winner, ShouldEqual, model.TeamRed)
					So(o.Winners, ShouldResemble, []string{"p0", "p6", "p7", "p8", "p9"})
					So(o.Losers, ShouldContain, "p5")
					So(o.MVP, ShouldEqual, "p3")
					So(o.Volunteers, ShouldResemble, []string{"v1"})
					So(m.State, ShouldEqual, lifecycle.StateMvpVoting)
				})

				Convey("Then completing stores the MVP and records every transition", func() {
					So(m.Complete(), ShouldBeNil)
					So(m.MVP, ShouldEqual, "p3")
					So(m.State.Terminal(), ShouldBeTrue)
					So(seen, ShouldResemble, []string{
						"proposed>in_progress",
						"in_progress>awaiting_result",
						"awaiting_result>mvp_voting",
						"mvp_voting>completed",
					})
					So(m.History, ShouldHaveLength, 4)
					So(m.History[3].At, ShouldEqual, clock)
					So(errors.Is(m.Cancel(), lifecycle.ErrInvalidTransition), ShouldBeTrue)
				})
			})
		})
	})
}

func TestMatchVoting(t *testing.T) {
	Convey("Given a match in MVP voting", t, func() {
		m := newMatch()
		So(m.Finalize(), ShouldBeNil)
		So(m.BeginResult(), ShouldBeNil)
		So(m.DeclareWinner(model.TeamBlue), ShouldBeNil)
		So(m.StartVote(), ShouldBeNil)

		Convey("Then invalid votes are rejected", func() {
			So(errors.Is(m.CastVote("p1", "p1"), lifecycle.ErrInvalidVote), ShouldBeTrue)
			So(errors.Is(m.CastVote("stranger", "p1"), lifecycle.ErrInvalidVote), ShouldBeTrue)
			So(errors.Is(m.CastVote("p1", "stranger"), lifecycle.ErrInvalidVote), ShouldBeTrue)
			So(m.CastVote("p1", "p2"), ShouldBeNil)
			So(errors.Is(m.CastVote("p1", "p3"), lifecycle.ErrInvalidVote), ShouldBeTrue)
		})

		Convey("When two candidates tie", func() {
			So(m.CastVote("p1", "p7"), ShouldBeNil)
			So(m.CastVote("p2", "p4"), ShouldBeNil)

			Convey("Then the lowest id wins", func() {
				mvp, ok := m.Tally()
				So(ok, ShouldBeTrue)
				So(mvp, ShouldEqual, "p4")
			})
		})

		Convey("When nobody votes", func() {
			_, ok := m.Tally()
			So(ok, ShouldBeFalse)
			So(m.Complete(), ShouldBeNil)
			So(m.MVP, ShouldEqual, "")
		})

		Convey("When all ten vote", func() {
			for i := range model.GroupSize {
				So(m.CastVote(fmt.Sprintf("p%d", i), fmt.Sprintf("p%d", (i+1)%model.GroupSize)), ShouldBeNil)
			}
			So(m.AllVoted(), ShouldBeTrue)
		})
	})
}

func TestMatchRehearse(t *testing.T) {
	Convey("Given a match awaiting its result with a transition hook", t, func() {
		hooked := 0
		m := newMatch(lifecycle.WithTransitionHook(func(_, _ lifecycle.State) { hooked++ }))
		So(m.Finalize(), ShouldBeNil)
		So(m.BeginResult(), ShouldBeNil)
		So(m.DeclareWinner(model.TeamBlue), ShouldBeNil)
		hooked = 0

		Convey("When skipping the vote is rehearsed", func() {
			trial, err := m.Rehearse((*lifecycle.Match).SkipVote)
			So(err, ShouldBeNil)

			Convey("Then only the copy moves and no hook fires", func() {
				So(trial.State, ShouldEqual, lifecycle.StateMvpSkipped)
				So(m.State, ShouldEqual, lifecycle.StateAwaitingResult)
				So(m.History, ShouldHaveLength, 2)
				So(hooked, ShouldEqual, 0)

				o, err := trial.Outcome()
				So(err, ShouldBeNil)
				So(o.MVP, ShouldEqual, "")
				So(o.Winners, ShouldResemble, []string{"p0", "p1", "p2", "p3", "p4"})
			})
		})

		Convey("When the rehearsed step fails", func() {
			trial, err := m.Rehearse(func(m *lifecycle.Match) error { return m.CastVote("p1", "p2") })
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
			So(trial, ShouldBeNil)
		})

		Convey("When a vote is rehearsed during voting", func() {
			So(m.StartVote(), ShouldBeNil)
			trial, err := m.Rehearse(func(m *lifecycle.Match) error { return m.CastVote("p1", "p2") })
			So(err, ShouldBeNil)
			So(trial.Votes, ShouldHaveLength, 1)
			So(m.Votes, ShouldBeEmpty)
		})
	})
}

func TestMatchGuards(t *testing.T) {
	Convey("Given a fresh match", t, func() {
		m := newMatch()

		Convey("Then steps cannot be skipped", func() {
			So(errors.Is(m.BeginResult(), lifecycle.ErrInvalidTransition), ShouldBeTrue)
			So(errors.Is(m.DeclareWinner(model.TeamBlue), lifecycle.ErrInvalidTransition), ShouldBeTrue)
			So(errors.Is(m.Complete(), lifecycle.ErrInvalidTransition), ShouldBeTrue)
			_, err := m.Outcome()
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
		})

		Convey("When result entry opens without a winner", func() {
			So(m.Finalize(), ShouldBeNil)
			So(m.BeginResult(), ShouldBeNil)

			Convey("Then voting cannot start or be skipped", func() {
				So(errors.Is(m.StartVote(), lifecycle.ErrNoWinner), ShouldBeTrue)
				So(errors.Is(m.SkipVote(), lifecycle.ErrNoWinner), ShouldBeTrue)
			})

			Convey("Then skipping after a winner gives an outcome without MVP", func() {
				So(m.DeclareWinner(model.TeamBlue), ShouldBeNil)
				So(m.DeclareWinner(model.TeamRed), ShouldBeNil)
				So(m.SkipVote(), ShouldBeNil)
				So(errors.Is(m.CastVote("p1", "p2"), lifecycle.ErrInvalidTransition), ShouldBeTrue)
				o, err := m.Outcome()
				So(err, ShouldBeNil)
				So(o.Winner, ShouldEqual, model.TeamRed)
				So(o.MVP, ShouldEqual, "")
			})
		})

		Convey("When an in-progress match is cancelled", func() {
			So(m.Finalize(), ShouldBeNil)
			So(m.Cancel(), ShouldBeNil)

			Convey("Then it is terminal and yields no outcome", func() {
				So(m.State, ShouldEqual, lifecycle.StateCancelled)
				_, err := m.Outcome()
				So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(m.Finalize(), lifecycle.ErrInvalidTransition), ShouldBeTrue)
			})
		})

		Convey("Then a clone does not share votes or history", func() {
			c := m.Clone()
			So(m.Finalize(), ShouldBeNil)
			So(c.State, ShouldEqual, lifecycle.StateProposed)
			So(c.History, ShouldBeEmpty)
		})
	})
}
