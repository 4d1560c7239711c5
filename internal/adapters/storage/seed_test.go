package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/storage"
	"github.com/okian/podium/internal/domain/metric"
	"github.com/okian/podium/internal/domain/model"
)

func TestSeedTasks(t *testing.T) {
	ctx := context.Background()

	write := func(dir, name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	Convey("Given a seed file with two tasks", t, func() {
		dir := t.TempDir()
		answers := write(dir, "digits.csv", "id,label\n1,cat\n")
		seed := write(dir, "tasks.yaml", `
tasks:
  - id: digits
    title: Digit Recognizer
    starts_at: 2026-01-01T00:00:00Z
    ends_at: 2026-12-31T00:00:00Z
    metric: accuracy
    answer_file: `+answers+`
  - id: essay
    title: Essay Grading
    starts_at: 2026-01-01T00:00:00Z
    ends_at: 2026-12-31T00:00:00Z
    metric: custom
    max_per_day: 3
    higher_is_better: true
    answer_path: answers/essay.csv
    scoring_code: |
      def score(answer_rows, submission_rows):
          return 1.0
`)

		tasks := storage.NewMemoryTaskStore()
		blobs := storage.NewMemoryBlobStore()

		Convey("Seeding loads both and uploads the local answer file", func() {
			n, err := storage.SeedTasks(ctx, seed, tasks, blobs)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			digits, err := tasks.Get(ctx, "digits")
			So(err, ShouldBeNil)
			So(digits.Metric, ShouldEqual, model.MetricAccuracy)
			So(digits.AnswerPath, ShouldEqual, "answers/digits.csv")

			content, err := blobs.Download(ctx, "answers/digits.csv")
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, "id,label\n1,cat\n")

			essay, err := tasks.Get(ctx, "essay")
			So(err, ShouldBeNil)
			So(essay.Metric, ShouldEqual, model.MetricCustom)
			So(essay.MaxPerDay, ShouldEqual, 3)
			So(essay.HigherIsBetter, ShouldBeTrue)
			So(essay.ScoringCode, ShouldContainSubstring, "def score")
		})
	})

	Convey("Given defective seed files", t, func() {
		dir := t.TempDir()
		tasks := storage.NewMemoryTaskStore()
		blobs := storage.NewMemoryBlobStore()

		Convey("A missing file fails", func() {
			_, err := storage.SeedTasks(ctx, filepath.Join(dir, "absent.yaml"), tasks, blobs)
			So(err, ShouldNotBeNil)
		})

		Convey("An unknown metric fails with the metric error", func() {
			seed := write(dir, "bad-metric.yaml", `
tasks:
  - id: t1
    metric: mcc
`)
			_, err := storage.SeedTasks(ctx, seed, tasks, blobs)
			So(errors.Is(err, metric.ErrUnknownMetric), ShouldBeTrue)
		})

		Convey("A task without an id fails", func() {
			seed := write(dir, "no-id.yaml", `
tasks:
  - title: nameless
    metric: rmse
`)
			_, err := storage.SeedTasks(ctx, seed, tasks, blobs)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing id")
		})

		Convey("A dangling answer_file path fails", func() {
			seed := write(dir, "dangling.yaml", `
tasks:
  - id: t1
    metric: rmse
    answer_file: `+filepath.Join(dir, "absent.csv")+`
`)
			_, err := storage.SeedTasks(ctx, seed, tasks, blobs)
			So(err, ShouldNotBeNil)
		})
	})
}
