package partition_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/partition"
	. "github.com/smartystreets/goconvey/convey"
)

func participant(id string, skill float64) model.Participant {
	var prowess [model.NumRoles]float64
	for r := range prowess {
		prowess[r] = skill
	}
	return model.Participant{ID: id, Prowess: prowess, Preferences: []model.Role{model.RoleTop}}
}

func TestPartition(t *testing.T) {
	Convey("Given a pool of 23 participants", t, func() {
		var ps []model.Participant
		for i := range 23 {
			ps = append(ps, participant(fmt.Sprintf("p%02d", i), float64(i)))
		}

		res, err := partition.New().Partition(ps)

		Convey("Then it yields two groups of ten and three volunteer candidates", func() {
			So(err, ShouldBeNil)
			So(res.Groups, ShouldHaveLength, 2)
			So(res.Groups[0].Members, ShouldHaveLength, 10)
			So(res.Groups[1].Members, ShouldHaveLength, 10)
			So(res.Remainder, ShouldHaveLength, 3)
		})

		Convey("Then groups are ordered by skill descending", func() {
			So(res.Groups[0].Members[0].ID, ShouldEqual, "p22")
			So(res.Groups[0].Index, ShouldEqual, 0)
			So(res.Groups[1].Index, ShouldEqual, 1)
			So(res.Groups[1].Members[9].ID, ShouldEqual, "p03")
		})

		Convey("Then the remainder holds the lowest aggregates", func() {
			ids := []string{res.Remainder[0].ID, res.Remainder[1].ID, res.Remainder[2].ID}
			So(ids, ShouldResemble, []string{"p02", "p01", "p00"})
		})

		Convey("Then the input order is untouched", func() {
			So(ps[0].ID, ShouldEqual, "p00")
		})
	})

	Convey("Given tied skill values", t, func() {
		var ps []model.Participant
		for _, id := range []string{"j", "c", "a", "h", "b", "e", "d", "g", "f", "i"} {
			ps = append(ps, participant(id, 5))
		}

		res, err := partition.New().Partition(ps)

		Convey("Then ties are broken by id ascending", func() {
			So(err, ShouldBeNil)
			So(res.Groups[0].IDs(), ShouldResemble, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"})
			So(res.Remainder, ShouldBeEmpty)
		})
	})

	Convey("Given fewer than ten participants", t, func() {
		ps := make([]model.Participant, 9)
		for i := range ps {
			ps[i] = participant(fmt.Sprint(i), 1)
		}

		_, err := partition.New().Partition(ps)

		Convey("Then partitioning fails", func() {
			So(errors.Is(err, partition.ErrInsufficientParticipants), ShouldBeTrue)
		})
	})

	Convey("Given the max aggregate", t, func() {
		p := model.Participant{
			Preferences: []model.Role{model.RoleTop, model.RoleBot},
			Prowess:     [model.NumRoles]float64{3, 9, 9, 7, 1},
		}
		So(partition.Max(&p), ShouldEqual, 7)
		So(partition.Mean(&p), ShouldEqual, 5)
	})
}
