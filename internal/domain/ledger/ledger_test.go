package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/inhouse/internal/domain/ledger"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeDirectory struct {
	mu       sync.Mutex
	counters map[string]model.Counters
	records  map[string]model.MatchRecord
	failNext error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{counters: map[string]model.Counters{}, records: map[string]model.MatchRecord{}}
}

func (d *fakeDirectory) ApplyAwards(_ context.Context, b model.AwardBatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failNext; err != nil {
		d.failNext = nil
		return err
	}
	if _, ok := d.records[b.MatchID]; ok {
		return model.ErrDuplicateRecord
	}
	for _, a := range b.Awards {
		d.counters[a.ParticipantID] = d.counters[a.ParticipantID].Add(a.Delta)
	}
	d.records[b.MatchID] = b.Record
	return nil
}

func (d *fakeDirectory) AddToxicity(_ context.Context, id string, delta int) (model.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.counters[id]
	c.Toxicity += delta
	d.counters[id] = c
	return model.Participant{ID: id, Counters: c}, nil
}

func (d *fakeDirectory) snapshot() map[string]model.Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]model.Counters, len(d.counters))
	for k, v := range d.counters {
		out[k] = v
	}
	return out
}

func outcome(matchID string) lifecycle.Outcome {
	return lifecycle.Outcome{
		MatchID:    matchID,
		GuildID:    "g1",
		CycleID:    "c1",
		Winner:     model.TeamBlue,
		Winners:    []string{"b0", "b1", "b2", "b3", "b4"},
		Losers:     []string{"r0", "r1", "r2", "r3", "r4"},
		MVP:        "b2",
		Volunteers: []string{"v1", "v2"},
	}
}

func TestLedgerApply(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger over an empty directory", t, func() {
		dir := newFakeDirectory()
		l := ledger.New(dir)

		Convey("When a completed match is scored", func() {
			batch, err := l.Apply(ctx, outcome("m1"))
			So(err, ShouldBeNil)
			after := dir.snapshot()

			Convey("Then winners, losers, the MVP and volunteers are credited", func() {
				So(after["b0"], ShouldResemble, model.Counters{Wins: 1, GamesPlayed: 1, Participation: 1})
				So(after["b2"], ShouldResemble, model.Counters{Wins: 1, MVPs: 1, GamesPlayed: 1, Participation: 1})
				So(after["r3"], ShouldResemble, model.Counters{GamesPlayed: 1, Participation: 1})
				So(after["v1"], ShouldResemble, model.Counters{Participation: 1})
				So(batch.Awards, ShouldHaveLength, 12)
				So(batch.Record.MVP, ShouldEqual, "b2")
				So(l.Scored(ctx, "m1"), ShouldBeTrue)
			})

			Convey("Then scoring it again fails and changes nothing", func() {
				_, err := l.Apply(ctx, outcome("m1"))
				So(errors.Is(err, ledger.ErrDuplicateScoring), ShouldBeTrue)
				So(dir.snapshot(), ShouldResemble, after)
			})

			Convey("Then a second match of the same cycle does not credit volunteers again", func() {
				_, err := l.Apply(ctx, outcome("m2"))
				So(err, ShouldBeNil)
				So(dir.snapshot()["v1"], ShouldResemble, model.Counters{Participation: 1})
				So(dir.snapshot()["b0"].Wins, ShouldEqual, 2)
			})
		})

		Convey("When the directory write fails", func() {
			dir.failNext = errors.New("disk full")
			_, err := l.Apply(ctx, outcome("m1"))

			Convey("Then nothing is written and a retry succeeds", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ledger.ErrDuplicateScoring), ShouldBeFalse)
				So(dir.snapshot(), ShouldBeEmpty)
				So(l.Scored(ctx, "m1"), ShouldBeFalse)

				_, err = l.Apply(ctx, outcome("m1"))
				So(err, ShouldBeNil)
				So(dir.snapshot()["v2"].Participation, ShouldEqual, 1)
			})
		})

		Convey("When the directory already holds the match record", func() {
			So(dir.ApplyAwards(ctx, model.AwardBatch{MatchID: "m9"}), ShouldBeNil)
			_, err := ledger.New(dir).Apply(ctx, outcome("m9"))

			Convey("Then the attempt is reported as a duplicate", func() {
				So(errors.Is(err, ledger.ErrDuplicateScoring), ShouldBeTrue)
			})
		})

		Convey("When a match had no MVP", func() {
			o := outcome("m3")
			o.MVP = ""
			o.Volunteers = nil
			batch, err := l.Apply(ctx, o)

			Convey("Then only the ten players are credited", func() {
				So(err, ShouldBeNil)
				So(batch.Awards, ShouldHaveLength, 10)
				So(dir.snapshot()["b2"].MVPs, ShouldEqual, 0)
			})
		})
	})
}

func TestLedgerToxicity(t *testing.T) {
	Convey("Given a ledger", t, func() {
		dir := newFakeDirectory()
		l := ledger.New(dir)

		Convey("When toxicity is recorded twice", func() {
			_, err := l.RecordToxicity(context.Background(), "p1")
			So(err, ShouldBeNil)
			p, err := l.RecordToxicity(context.Background(), "p1")

			Convey("Then the counter lowers total points", func() {
				So(err, ShouldBeNil)
				So(p.Counters.Toxicity, ShouldEqual, 2)
				So(p.Counters.TotalPoints(), ShouldEqual, -2)
			})
		})
	})
}
