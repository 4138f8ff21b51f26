package simulate_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/inhouse/internal/simulate"
	"github.com/okian/inhouse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func config(seed int64) simulate.Config {
	return simulate.Config{
		Participants: 23,
		Cycles:       2,
		Seed:         seed,
		Workers:      2,
		MaxEpochs:    150,
		Neighbors:    12,
		Top:          30,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a simulation of 23 participants over two cycles", t, func() {
		ctx := context.Background()
		var out bytes.Buffer

		stats, err := simulate.Run(ctx, config(42), &out)
		So(err, ShouldBeNil)

		Convey("Then every cycle forms two matches and three volunteers", func() {
			So(stats.Participants, ShouldEqual, 23)
			So(stats.Cycles, ShouldEqual, 2)
			So(stats.MatchesPlayed, ShouldEqual, 4)
			So(stats.Volunteers, ShouldEqual, 6)
			So(stats.MeanFitness, ShouldBeGreaterThanOrEqualTo, 0.0)
		})

		Convey("Then the standings list everyone", func() {
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			So(lines[0], ShouldStartWith, "RANK")
			So(lines, ShouldHaveLength, 24)
			So(lines[1], ShouldStartWith, "1 ")
		})

		Convey("Then the same seed replays the same standings", func() {
			var again bytes.Buffer
			_, err := simulate.Run(ctx, config(42), &again)
			So(err, ShouldBeNil)
			So(again.String(), ShouldEqual, out.String())
		})
	})

	Convey("Given a configuration that cannot form a match", t, func() {
		cfg := config(1)
		cfg.Participants = 9
		_, err := simulate.Run(context.Background(), cfg, &bytes.Buffer{})
		So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)

		cfg = config(1)
		cfg.Cycles = 0
		_, err = simulate.Run(context.Background(), cfg, &bytes.Buffer{})
		So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
	})
}
