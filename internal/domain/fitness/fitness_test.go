package fitness_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// group builds ten participants p0..p9; p_i has prowess i in every role and
// prefers the roles listed in prefs[i].
func group(prefs [][]model.Role) model.Group {
	g := model.Group{}
	for i := range model.GroupSize {
		p := model.Participant{ID: fmt.Sprintf("p%d", i)}
		for r := range p.Prowess {
			p.Prowess[r] = float64(i)
		}
		if i < len(prefs) {
			p.Preferences = prefs[i]
		}
		g.Members = append(g.Members, p)
	}
	return g
}

func TestEvaluator(t *testing.T) {
	Convey("Given a group without preferences", t, func() {
		g := group(nil)
		roster := fitness.NewRoster(g)
		a := model.TeamAssignment{
			Blue: [model.NumRoles]string{"p0", "p2", "p4", "p6", "p8"},
			Red:  [model.NumRoles]string{"p1", "p3", "p5", "p7", "p9"},
		}

		Convey("Then the imbalance sums per-role differences and the penalty is zero", func() {
			b, err := fitness.New().Score(roster, a)
			So(err, ShouldBeNil)
			So(b.Imbalance, ShouldEqual, 5)
			So(b.Penalty, ShouldEqual, 0)
			So(b.Total, ShouldEqual, 5)
		})

		Convey("Then mirrored teams score the same", func() {
			mirror := model.TeamAssignment{Blue: a.Red, Red: a.Blue}
			b1, _ := fitness.New().Score(roster, a)
			b2, _ := fitness.New().Score(roster, mirror)
			So(b1, ShouldResemble, b2)
		})

		Convey("When the assignment names a stranger", func() {
			a.Red[model.RoleMid] = "ghost"
			_, err := fitness.New().Score(roster, a)
			So(errors.Is(err, fitness.ErrUnknownParticipant), ShouldBeTrue)
		})
	})

	Convey("Given participants with preferences", t, func() {
		prefs := make([][]model.Role, model.GroupSize)
		prefs[0] = []model.Role{model.RoleSupport, model.RoleTop}
		prefs[1] = []model.Role{model.RoleMid}
		g := group(prefs)
		roster := fitness.NewRoster(g)
		a := model.TeamAssignment{
			Blue: [model.NumRoles]string{"p0", "p2", "p4", "p6", "p8"},
			Red:  [model.NumRoles]string{"p1", "p3", "p5", "p7", "p9"},
		}

		Convey("Then second choice costs one and an unlisted role costs the list length", func() {
			b, err := fitness.New(fitness.WithPreferenceWeight(2)).Score(roster, a)
			So(err, ShouldBeNil)
			So(b.Penalty, ShouldEqual, 1+1)
			So(b.Total, ShouldEqual, 5+2*2)
		})

		Convey("Then the cost table agrees with the roster score", func() {
			e := fitness.New(fitness.WithPreferenceWeight(0.5))
			table := e.Table(g.Members)
			blue := [model.NumRoles]int{0, 2, 4, 6, 8}
			red := [model.NumRoles]int{1, 3, 5, 7, 9}
			want, _ := e.Score(roster, a)
			So(table.Score(&blue, &red), ShouldResemble, want)
		})

		Convey("Then a negative weight is ignored", func() {
			So(fitness.New(fitness.WithPreferenceWeight(-1)).Weight(), ShouldEqual, fitness.DefaultPreferenceWeight)
		})
	})
}
