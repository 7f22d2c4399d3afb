package score_test

import (
	"testing"

	"github.com/veriflab/matchengine/internal/domain/model"
	normalize "github.com/veriflab/matchengine/internal/domain/normalize"
	score "github.com/veriflab/matchengine/internal/domain/score"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNameScore(t *testing.T) {
	Convey("Given a fuzzy scorer", t, func() {
		s := score.New(score.WithFuzzyMatching(true))

		Convey("When comparing identical normalized names", func() {
			So(s.Name("jean dupont", "jean dupont"), ShouldEqual, 100)
		})

		Convey("When comparing a name against an empty value", func() {
			So(s.Name("jean dupont", ""), ShouldEqual, 0)
			So(s.Name("", "jean dupont"), ShouldEqual, 0)
		})

		Convey("When token order differs", func() {
			So(s.Name("dupont jean", "jean dupont"), ShouldEqual, 100)
		})

		Convey("When names differ by a few characters", func() {
			got := s.Name("jean dupont", "jean dupond")
			So(got, ShouldBeGreaterThan, 80)
			So(got, ShouldBeLessThan, 100)
		})

		Convey("When comparing unrelated names", func() {
			So(s.Name("jean dupont", "zoe k"), ShouldBeLessThan, 40)
		})

		Convey("Then the score is symmetric", func() {
			pairs := [][2]string{
				{"jean dupont", "jean dupond"},
				{"marie curie", "maria curia"},
				{"a", "abcdef"},
				{"pierre bernard", "bernard pierre"},
			}
			for _, p := range pairs {
				So(s.Name(p[0], p[1]), ShouldEqual, s.Name(p[1], p[0]))
			}
		})
	})

	Convey("Given an exact-only scorer", t, func() {
		s := score.New(score.WithFuzzyMatching(false))

		Convey("Then near-matches collapse to zero", func() {
			So(s.Name("jean dupont", "jean dupond"), ShouldEqual, 0)
			So(s.Name("jean dupont", "jean dupont"), ShouldEqual, 100)
		})
	})
}

func TestDateOfBirthScore(t *testing.T) {
	Convey("Given a scorer", t, func() {
		s := score.New()

		Convey("When dates match exactly", func() {
			So(s.DateOfBirth("1980-06-15", "1980-06-15"), ShouldEqual, 100)
		})

		Convey("When dates differ at all", func() {
			So(s.DateOfBirth("1980-06-15", "1980-06-16"), ShouldEqual, 0)
		})

		Convey("When a date was unparseable", func() {
			So(s.DateOfBirth("", "1980-06-15"), ShouldEqual, 0)
		})
	})
}

func TestIdentityCardScore(t *testing.T) {
	Convey("Given a fuzzy scorer", t, func() {
		s := score.New(score.WithFuzzyMatching(true))

		Convey("When card numbers match exactly", func() {
			So(s.IdentityCard("AB123456", "AB123456"), ShouldEqual, 100)
		})

		Convey("When one character was mistyped", func() {
			got := s.IdentityCard("AB123456", "AB123457")
			So(got, ShouldBeGreaterThan, 80)
			So(got, ShouldBeLessThan, 100)
		})

		Convey("Then the partial score is symmetric", func() {
			So(s.IdentityCard("AB123456", "AB123457"), ShouldEqual, s.IdentityCard("AB123457", "AB123456"))
		})
	})

	Convey("Given an exact-only scorer", t, func() {
		s := score.New(score.WithFuzzyMatching(false))

		Convey("Then a one-character difference scores zero", func() {
			So(s.IdentityCard("AB123456", "AB123457"), ShouldEqual, 0)
		})
	})
}

func TestNormalizeFields(t *testing.T) {
	Convey("Given a participant with messy fields", t, func() {
		n := normalize.New(normalize.WithAccentInsensitive(true))
		p := model.Participant{
			FirstName:    " Jérôme ",
			LastName:     "LEFÈVRE",
			DateOfBirth:  "08/11/1982",
			IdentityCard: "ef-345 678",
		}

		Convey("When deriving normalized fields", func() {
			f := score.Normalize(n, p)
			So(f.Name, ShouldEqual, "jerome lefevre")
			So(f.LastName, ShouldEqual, "lefevre")
			So(f.DateOfBirth, ShouldEqual, "1982-11-08")
			So(f.IdentityCard, ShouldEqual, "EF345678")
		})

		Convey("When the date of birth is unparseable", func() {
			p.DateOfBirth = "not a date"
			f := score.Normalize(n, p)
			So(f.DateOfBirth, ShouldEqual, "")
		})
	})
}

func TestAllFields(t *testing.T) {
	Convey("Given two identical normalized records", t, func() {
		s := score.New()
		f := score.NormalizedFields{Name: "jean dupont", LastName: "dupont", DateOfBirth: "1980-06-15", IdentityCard: "AB123456"}

		Convey("Then every field scores 100", func() {
			got := s.All(f, f)
			So(got.Name, ShouldEqual, 100)
			So(got.DateOfBirth, ShouldEqual, 100)
			So(got.IdentityCard, ShouldEqual, 100)
		})
	})
}
