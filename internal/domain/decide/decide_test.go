package decide_test

import (
	"testing"

	config "github.com/veriflab/matchengine/internal/config"
	decide "github.com/veriflab/matchengine/internal/domain/decide"
	"github.com/veriflab/matchengine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func candidate(name, dob, id int) model.MatchCandidate {
	return model.MatchCandidate{
		Declared: model.Participant{FirstName: "Jean", LastName: "Dupont"},
		Official: &model.Participant{ID: "off-1", FirstName: "Jean", LastName: "Dupont"},
		Scores:   model.FieldScores{Name: name, DateOfBirth: dob, IdentityCard: id},
	}
}

func TestOverallScore(t *testing.T) {
	Convey("Given the fixed 0.4/0.3/0.3 weighting", t, func() {
		Convey("When every field matches", func() {
			So(decide.OverallScore(model.FieldScores{Name: 100, DateOfBirth: 100, IdentityCard: 100}), ShouldEqual, 100)
		})

		Convey("When no field matches", func() {
			So(decide.OverallScore(model.FieldScores{}), ShouldEqual, 0)
		})

		Convey("When fields partially match", func() {
			// 0.4*100 + 0.3*100 + 0.3*88 = 96.4 -> 96
			So(decide.OverallScore(model.FieldScores{Name: 100, DateOfBirth: 100, IdentityCard: 88}), ShouldEqual, 96)
			// 0.4*50 = 20
			So(decide.OverallScore(model.FieldScores{Name: 50}), ShouldEqual, 20)
		})

		Convey("Then adding a matching field never decreases the score", func() {
			base := model.FieldScores{Name: 70}
			withDOB := model.FieldScores{Name: 70, DateOfBirth: 100}
			withBoth := model.FieldScores{Name: 70, DateOfBirth: 100, IdentityCard: 100}
			So(decide.OverallScore(withDOB), ShouldBeGreaterThanOrEqualTo, decide.OverallScore(base))
			So(decide.OverallScore(withBoth), ShouldBeGreaterThanOrEqualTo, decide.OverallScore(withDOB))
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given the default 85/60/40 thresholds", t, func() {
		cfg := config.DefaultScoring()

		Convey("When every field matches", func() {
			details, decision, err := decide.Decide(candidate(100, 100, 100), cfg)
			So(err, ShouldBeNil)
			So(details.OverallScore, ShouldEqual, 100)
			So(decision, ShouldEqual, model.DecisionAutoValidated)
		})

		Convey("When the score lands between warning and auto-validation", func() {
			// 0.4*80 + 0.3*100 + 0.3*0 = 62
			_, decision, err := decide.Decide(candidate(80, 100, 0), cfg)
			So(err, ShouldBeNil)
			So(decision, ShouldEqual, model.DecisionNeedsReview)
		})

		Convey("When the score lands between reject and warning", func() {
			// 0.4*100 + 0.3*0 + 0.3*0 = 40: at the reject threshold, not below
			_, decision, err := decide.Decide(candidate(100, 0, 0), cfg)
			So(err, ShouldBeNil)
			So(decision, ShouldEqual, model.DecisionNeedsReview)
		})

		Convey("When the score is strictly below the reject threshold", func() {
			// 0.4*50 = 20
			_, decision, err := decide.Decide(candidate(50, 0, 0), cfg)
			So(err, ShouldBeNil)
			So(decision, ShouldEqual, model.DecisionAutoRejected)
		})

		Convey("When auto validation is disabled", func() {
			cfg.AutoValidationEnabled = false
			_, decision, err := decide.Decide(candidate(100, 100, 100), cfg)
			So(err, ShouldBeNil)
			So(decision, ShouldEqual, model.DecisionNeedsReview)
		})

		Convey("When the candidate has no official match", func() {
			c := model.MatchCandidate{Declared: model.Participant{LastName: "Dupont"}}
			details, decision, err := decide.Decide(c, cfg)
			So(err, ShouldBeNil)
			So(details.OverallScore, ShouldEqual, 0)
			So(decision, ShouldEqual, model.DecisionAutoRejected)
			So(details.Explanation, ShouldContainSubstring, "no plausible official match")
		})
	})

	Convey("Given a configuration violating the threshold ordering", t, func() {
		cfg := config.DefaultScoring()
		cfg.AutoValidationThreshold = 50
		cfg.WarningThreshold = 60

		Convey("Then decide refuses to classify", func() {
			_, _, err := decide.Decide(candidate(100, 100, 100), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExplanation(t *testing.T) {
	Convey("Given a partially matching candidate", t, func() {
		cfg := config.DefaultScoring()
		details, _, err := decide.Decide(candidate(100, 100, 88), cfg)
		So(err, ShouldBeNil)

		Convey("Then the explanation names field outcomes and the band", func() {
			So(details.Explanation, ShouldContainSubstring, "name matched")
			So(details.Explanation, ShouldContainSubstring, "date of birth matched")
			So(details.Explanation, ShouldContainSubstring, "identity card close (88)")
			So(details.Explanation, ShouldContainSubstring, "auto-validation band")
		})
	})

	Convey("Given a candidate flagged partial", t, func() {
		cfg := config.DefaultScoring()
		c := candidate(100, 0, 0)
		c.Partial = true
		details, _, err := decide.Decide(c, cfg)
		So(err, ShouldBeNil)

		Convey("Then the explanation mentions the deadline", func() {
			So(details.Explanation, ShouldContainSubstring, "processing deadline")
		})
	})
}
