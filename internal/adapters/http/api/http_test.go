package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "github.com/veriflab/matchengine/internal/adapters/http/api"
	repository "github.com/veriflab/matchengine/internal/adapters/repository"
	"github.com/veriflab/matchengine/internal/config"
	"github.com/veriflab/matchengine/internal/domain/conflict"
	"github.com/veriflab/matchengine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies implements api.Dependencies for handler tests.
type mockDependencies struct {
	seen map[string]bool

	enqueueSuccess bool
	enqueued       []model.Declaration

	rosters map[string]int

	sponsorships map[string]model.Sponsorship
	conflicts    []model.Conflict
	resolveErr   error

	scoring config.Scoring
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		seen:           make(map[string]bool),
		enqueueSuccess: true,
		rosters:        make(map[string]int),
		sponsorships:   make(map[string]model.Sponsorship),
		scoring:        config.DefaultScoring(),
	}
}

func (m *mockDependencies) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDependencies) Unrecord(_ context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDependencies) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDependencies) Enqueue(_ context.Context, d model.Declaration) bool {
	if !m.enqueueSuccess {
		return false
	}
	m.enqueued = append(m.enqueued, d)
	return true
}

func (m *mockDependencies) RegisterRoster(_ context.Context, eventID string, roster []model.Participant) int {
	m.rosters[eventID] = len(roster)
	return len(roster)
}

func (m *mockDependencies) ListSponsorships(_ context.Context, eventID, laboratoryID string, status model.Status) ([]model.Sponsorship, error) {
	var out []model.Sponsorship
	for _, s := range m.sponsorships {
		if s.EventID != eventID {
			continue
		}
		if laboratoryID != "" && s.LaboratoryID != laboratoryID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockDependencies) GetSponsorship(_ context.Context, id string) (model.Sponsorship, error) {
	s, ok := m.sponsorships[id]
	if !ok {
		return model.Sponsorship{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *mockDependencies) OverrideSponsorship(_ context.Context, id string, status model.Status, actor string) (model.Sponsorship, error) {
	s, ok := m.sponsorships[id]
	if !ok {
		return model.Sponsorship{}, repository.ErrNotFound
	}
	s.Status = status
	s.OverriddenBy = actor
	m.sponsorships[id] = s
	return s, nil
}

func (m *mockDependencies) Conflicts(_ context.Context, eventID string) ([]model.Conflict, error) {
	return m.conflicts, nil
}

func (m *mockDependencies) ResolveConflict(_ context.Context, eventID, officialID, winningLab, actor string) error {
	return m.resolveErr
}

func (m *mockDependencies) ScoringConfig(_ context.Context) config.Scoring {
	return m.scoring
}

func (m *mockDependencies) UpdateScoringConfig(_ context.Context, s config.Scoring) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.scoring = s
	return nil
}

func (m *mockDependencies) EventStats(_ context.Context, eventID string) (model.DashboardStats, error) {
	return model.DashboardStats{TotalDeclared: 4, Validated: 2, Pending: 1, Rejected: 1, AverageScore: 72.5, ValidationRate: 0.5}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"queue_size": 0}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func declarationBody(id string) string {
	return fmt.Sprintf(`{
		"declaration_id": %q,
		"event_id": "evt-1",
		"laboratory_id": "lab-pasteur",
		"participant": {"first_name": "Jean", "last_name": "Dupont", "date_of_birth": "15/06/1980", "identity_card": "AB123456"},
		"ts": %q
	}`, id, time.Now().Format(time.RFC3339))
}

func TestPostDeclaration(t *testing.T) {
	Convey("Given the declarations endpoint", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("When posting a valid declaration", func() {
			req := httptest.NewRequest(http.MethodPost, "/declarations", strings.NewReader(declarationBody("d-1")))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is accepted and enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].DeclarationID, ShouldEqual, "d-1")
			})
		})

		Convey("When posting the same declaration twice", func() {
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(http.MethodPost, "/declarations", strings.NewReader(declarationBody("d-dup")))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				if i == 1 {
					Convey("Then the second is reported as duplicate", func() {
						So(w.Code, ShouldEqual, http.StatusOK)
						var ack map[string]any
						So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
						So(ack["duplicate"], ShouldBeTrue)
						So(deps.enqueued, ShouldHaveLength, 1)
					})
				}
			}
		})

		Convey("When the queue refuses the declaration", func() {
			deps.enqueueSuccess = false
			req := httptest.NewRequest(http.MethodPost, "/declarations", strings.NewReader(declarationBody("d-full")))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the caller sees backpressure and may retry", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.seen["d-full"], ShouldBeFalse)
			})
		})

		Convey("When posting an invalid body", func() {
			req := httptest.NewRequest(http.MethodPost, "/declarations", strings.NewReader(`{"event_id": "evt-1"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/declarations", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostImport(t *testing.T) {
	Convey("Given the imports endpoint", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("When importing a roster with declarations", func() {
			body := fmt.Sprintf(`{
				"event_id": "evt-1",
				"roster": [
					{"id": "off-1", "first_name": "Jean", "last_name": "Dupont", "date_of_birth": "15/06/1980", "identity_card": "AB123456"}
				],
				"declarations": [%s, %s]
			}`, declarationBody("d-1"), declarationBody("d-2"))
			req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the roster registers and declarations enqueue", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.rosters["evt-1"], ShouldEqual, 1)
				So(deps.enqueued, ShouldHaveLength, 2)

				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["accepted"], ShouldEqual, 2)
				So(resp["roster_size"], ShouldEqual, 1)
			})
		})

		Convey("When importing only a roster", func() {
			body := `{"event_id": "evt-1", "roster": [{"id": "off-1", "first_name": "Jean", "last_name": "Dupont", "date_of_birth": "15/06/1980", "identity_card": "AB123456"}]}`
			req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued, ShouldBeEmpty)
		})

		Convey("When the import has neither roster nor declarations", func() {
			req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(`{"event_id": "evt-1"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue refuses part of the batch", func() {
			deps.enqueueSuccess = false
			body := fmt.Sprintf(`{"event_id": "evt-1", "declarations": [%s]}`, declarationBody("d-1"))
			req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the response reports partial acceptance", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "partial")
				So(resp["refused"], ShouldEqual, 1)
			})
		})
	})
}

func TestSponsorshipEndpoints(t *testing.T) {
	Convey("Given stored sponsorships", t, func() {
		deps := newMockDependencies()
		deps.sponsorships["sp-1"] = model.Sponsorship{
			ID: "sp-1", EventID: "evt-1", LaboratoryID: "lab-pasteur",
			Status: model.StatusPending, Decision: model.DecisionNeedsReview,
			Details: model.MatchDetails{OverallScore: 72, Explanation: "name matched"},
		}
		mux := newTestMux(deps)

		Convey("When listing by event", func() {
			req := httptest.NewRequest(http.MethodGet, "/sponsorships?event=evt-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0]["id"], ShouldEqual, "sp-1")
		})

		Convey("When listing without an event", func() {
			req := httptest.NewRequest(http.MethodGet, "/sponsorships", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing with an invalid status filter", func() {
			req := httptest.NewRequest(http.MethodGet, "/sponsorships?event=evt-1&status=bogus", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching one sponsorship", func() {
			req := httptest.NewRequest(http.MethodGet, "/sponsorships/sp-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out["decision"], ShouldEqual, string(model.DecisionNeedsReview))
		})

		Convey("When fetching an unknown sponsorship", func() {
			req := httptest.NewRequest(http.MethodGet, "/sponsorships/missing", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When validating with an actor", func() {
			req := httptest.NewRequest(http.MethodPost, "/sponsorships/sp-1/validate", strings.NewReader(`{"actor": "reviewer@veriflab"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.sponsorships["sp-1"].Status, ShouldEqual, model.StatusValidated)
			So(deps.sponsorships["sp-1"].OverriddenBy, ShouldEqual, "reviewer@veriflab")
		})

		Convey("When rejecting without an actor", func() {
			req := httptest.NewRequest(http.MethodPost, "/sponsorships/sp-1/reject", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using an unknown action", func() {
			req := httptest.NewRequest(http.MethodPost, "/sponsorships/sp-1/promote", strings.NewReader(`{"actor": "x"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestConflictEndpoints(t *testing.T) {
	Convey("Given detected conflicts", t, func() {
		deps := newMockDependencies()
		deps.conflicts = []model.Conflict{{
			ID: "c-1", EventID: "evt-1", OfficialID: "off-1", OfficialName: "Jean Dupont",
			Claims: []model.ConflictClaim{
				{LaboratoryID: "lab-pasteur", SponsorshipID: "sp-1", DeclaredAt: time.Now()},
				{LaboratoryID: "lab-pharma", SponsorshipID: "sp-2", DeclaredAt: time.Now()},
			},
		}}
		mux := newTestMux(deps)

		Convey("When listing conflicts for an event", func() {
			req := httptest.NewRequest(http.MethodGet, "/conflicts?event=evt-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0]["official_name"], ShouldEqual, "Jean Dupont")
		})

		Convey("When listing without an event", func() {
			req := httptest.NewRequest(http.MethodGet, "/conflicts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When resolving with a winner", func() {
			body := `{"event_id": "evt-1", "official_id": "off-1", "winning_laboratory_id": "lab-pasteur", "actor": "admin@veriflab"}`
			req := httptest.NewRequest(http.MethodPost, "/conflicts/resolve", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When resolving an unknown conflict", func() {
			deps.resolveErr = conflict.ErrNoClaims
			body := `{"event_id": "evt-1", "official_id": "off-x", "actor": "admin@veriflab"}`
			req := httptest.NewRequest(http.MethodPost, "/conflicts/resolve", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When resolving without an actor", func() {
			body := `{"event_id": "evt-1", "official_id": "off-1"}`
			req := httptest.NewRequest(http.MethodPost, "/conflicts/resolve", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestConfigEndpoint(t *testing.T) {
	Convey("Given the config endpoint", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("When reading the configuration", func() {
			req := httptest.NewRequest(http.MethodGet, "/config", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out["auto_validation_threshold"], ShouldEqual, 85)
		})

		Convey("When updating with a valid configuration", func() {
			body := `{"auto_validation_threshold": 90, "warning_threshold": 65, "reject_threshold": 45,
				"auto_validation_enabled": true, "fuzzy_matching_enabled": true,
				"accent_insensitive": true, "max_processing_time_sec": 20}`
			req := httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.scoring.AutoValidationThreshold, ShouldEqual, 90)
		})

		Convey("When updating with a broken threshold ordering", func() {
			body := `{"auto_validation_threshold": 40, "warning_threshold": 60, "reject_threshold": 85,
				"auto_validation_enabled": true, "fuzzy_matching_enabled": true,
				"accent_insensitive": true, "max_processing_time_sec": 20}`
			req := httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the update is refused and the old config stands", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(deps.scoring.AutoValidationThreshold, ShouldEqual, 85)
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given the stats and health endpoints", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("When requesting event stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats?event=evt-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out["total_declared"], ShouldEqual, 4)
			So(out["validation_rate"], ShouldEqual, 0.5)
		})

		Convey("When requesting service stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When scraping health metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
