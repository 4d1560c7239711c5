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

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/sandbox"
	"github.com/okian/podium/internal/adapters/storage"
	"github.com/okian/podium/internal/domain/metric"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/policy"
	"github.com/okian/podium/internal/domain/tabular"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

func init() {
	if err := logger.Init(false); err != nil {
		panic(err)
	}
}

// stubDeps satisfies api.Dependencies with canned responses.
type stubDeps struct {
	receipt   types.Receipt
	submitErr error

	entries []types.Entry
	lbErr   error

	task    model.Task
	taskErr error
}

func (s *stubDeps) Submit(_ context.Context, _, _, _ string, _ []byte) (types.Receipt, error) {
	return s.receipt, s.submitErr
}

func (s *stubDeps) Leaderboard(_ context.Context, _ string) ([]types.Entry, error) {
	return s.entries, s.lbErr
}

func (s *stubDeps) Task(_ context.Context, _ string) (model.Task, error) {
	return s.task, s.taskErr
}

type stubStats struct{}

func (stubStats) Stats(context.Context) map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, 1<<20).Register(mux)
	return mux
}

func postSubmission(mux *http.ServeMux, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/tasks/digits/submissions", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPostSubmission(t *testing.T) {
	Convey("Given the submissions endpoint", t, func() {
		deps := &stubDeps{receipt: types.Receipt{
			SubmissionID:   "sub-1",
			Score:          0.9,
			Metric:         "accuracy",
			HigherIsBetter: true,
			RemainingToday: 4,
		}}
		mux := newMux(deps)

		Convey("A scored submission returns 201 with the receipt", func() {
			rec := postSubmission(mux, "id,label\n1,cat\n", map[string]string{"X-User-ID": "ada"})
			So(rec.Code, ShouldEqual, http.StatusCreated)

			var receipt types.Receipt
			So(json.Unmarshal(rec.Body.Bytes(), &receipt), ShouldBeNil)
			So(receipt.SubmissionID, ShouldEqual, "sub-1")
			So(receipt.Score, ShouldEqual, 0.9)
			So(receipt.RemainingToday, ShouldEqual, 4)
		})

		Convey("A missing X-User-ID header returns 400", func() {
			rec := postSubmission(mux, "id,label\n1,cat\n", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Body.String(), ShouldContainSubstring, "X-User-ID")
		})

		Convey("An empty body returns 400", func() {
			rec := postSubmission(mux, "", map[string]string{"X-User-ID": "ada"})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A body over the upload cap returns 413", func() {
			rec := postSubmission(mux, strings.Repeat("x", 1<<20+1), map[string]string{"X-User-ID": "ada"})
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("Domain errors map onto the documented statuses", func() {
			cases := []struct {
				err  error
				want int
				code string
			}{
				{fmt.Errorf("%w: %q", storage.ErrTaskNotFound, "digits"), http.StatusNotFound, "task_not_found"},
				{policy.ErrNotStarted, http.StatusForbidden, "not_started"},
				{policy.ErrEnded, http.StatusForbidden, "ended"},
				{policy.ErrAnswerUnavailable, http.StatusConflict, "answer_unavailable"},
				{policy.ErrScoringNotConfigured, http.StatusConflict, "scoring_not_configured"},
				{&policy.QuotaError{Limit: 5}, http.StatusTooManyRequests, "quota_exceeded"},
				{tabular.ErrFormat, http.StatusUnprocessableEntity, "format"},
				{&metric.DimensionError{Got: 98, Want: 100}, http.StatusUnprocessableEntity, "dimension_mismatch"},
				{metric.ErrInvalidNumeric, http.StatusUnprocessableEntity, "invalid_numeric"},
				{sandbox.ErrInvalidScore, http.StatusUnprocessableEntity, "invalid_score"},
				{storage.ErrStorage, http.StatusServiceUnavailable, "storage_error"},
				{sandbox.ErrUnavailable, http.StatusServiceUnavailable, "storage_error"},
				{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
			}
			for _, tc := range cases {
				deps.submitErr = tc.err
				rec := postSubmission(mux, "id,label\n1,cat\n", map[string]string{"X-User-ID": "ada"})
				So(rec.Code, ShouldEqual, tc.want)
				So(rec.Body.String(), ShouldContainSubstring, tc.code)
			}
		})
	})
}

func TestGetLeaderboard(t *testing.T) {
	Convey("Given the leaderboard endpoint", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		get := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/tasks/digits/leaderboard", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("Entries come back ranked as JSON", func() {
			deps.entries = []types.Entry{
				{Rank: 1, UserID: "ada", BestScore: 0.97, SubmissionCount: 3},
				{Rank: 2, UserID: "bob", BestScore: 0.85, SubmissionCount: 1},
			}
			rec := get()
			So(rec.Code, ShouldEqual, http.StatusOK)

			var entries []types.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].UserID, ShouldEqual, "ada")
			So(entries[1].Rank, ShouldEqual, 2)
		})

		Convey("An empty standing is an empty array, not null", func() {
			rec := get()
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(rec.Body.String()), ShouldEqual, "[]")
		})

		Convey("An unknown task returns 404", func() {
			deps.lbErr = storage.ErrTaskNotFound
			rec := get()
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGetTask(t *testing.T) {
	Convey("Given the task endpoint", t, func() {
		deps := &stubDeps{task: model.Task{
			ID:          "digits",
			Title:       "Digit Recognizer",
			StartsAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Metric:      model.MetricRMSE,
			AnswerPath:  "answers/digits.csv",
			ScoringCode: "secret",
		}}
		mux := newMux(deps)

		req := httptest.NewRequest(http.MethodGet, "/tasks/digits", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		Convey("Public metadata is returned", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["id"], ShouldEqual, "digits")
			So(body["metric"], ShouldEqual, "rmse")
			So(body["higher_is_better"], ShouldEqual, false)
		})

		Convey("The answer path and scoring code stay private", func() {
			So(rec.Body.String(), ShouldNotContainSubstring, "answers/digits.csv")
			So(rec.Body.String(), ShouldNotContainSubstring, "secret")
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		mux := newMux(&stubDeps{})

		Convey("healthz reports ok", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("stats echoes the provider snapshot", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
		})
	})
}
