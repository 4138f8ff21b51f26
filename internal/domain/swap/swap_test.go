package swap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/swap"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() (fitness.Roster, model.TeamAssignment) {
	g := model.Group{}
	for i := range model.GroupSize {
		p := model.Participant{ID: fmt.Sprintf("p%d", i), Preferences: []model.Role{model.Role(i % model.NumRoles)}}
		for r := range p.Prowess {
			p.Prowess[r] = float64(i*3 + r)
		}
		g.Members = append(g.Members, p)
	}
	a := model.TeamAssignment{
		Blue: [model.NumRoles]string{"p0", "p1", "p2", "p3", "p4"},
		Red:  [model.NumRoles]string{"p5", "p6", "p7", "p8", "p9"},
	}
	return fitness.NewRoster(g), a
}

func TestSwap(t *testing.T) {
	Convey("Given a scored assignment", t, func() {
		roster, a := fixture()
		eval := fitness.New()
		m := swap.New(eval)
		original, err := eval.Score(roster, a)
		So(err, ShouldBeNil)

		Convey("When two players on opposite teams swap", func() {
			next, score, err := m.Swap(roster, a, "p1", "p8")

			Convey("Then they trade team and role", func() {
				So(err, ShouldBeNil)
				So(next.Blue[model.RoleJungle], ShouldEqual, "p8")
				So(next.Red[model.RoleBot], ShouldEqual, "p1")
				So(next.Validate(), ShouldBeNil)
				So(a.Blue[model.RoleJungle], ShouldEqual, "p1")
				So(score.Total, ShouldNotEqual, original.Total)
			})

			Convey("Then swapping back restores the original score", func() {
				back, score2, err := m.Swap(roster, next, "p1", "p8")
				So(err, ShouldBeNil)
				So(back, ShouldResemble, a)
				So(score2, ShouldResemble, original)
			})
		})

		Convey("When teammates swap roles", func() {
			next, _, err := m.Swap(roster, a, "p0", "p4")
			So(err, ShouldBeNil)
			So(next.Blue[model.RoleTop], ShouldEqual, "p4")
			So(next.Blue[model.RoleSupport], ShouldEqual, "p0")
		})

		Convey("When a target is unknown or repeated", func() {
			_, _, errUnknown := m.Swap(roster, a, "p1", "ghost")
			_, _, errSame := m.Swap(roster, a, "p1", "p1")

			Convey("Then the swap is rejected", func() {
				So(errors.Is(errUnknown, swap.ErrInvalidSwapTarget), ShouldBeTrue)
				So(errors.Is(errSame, swap.ErrInvalidSwapTarget), ShouldBeTrue)
			})
		})
	})
}
