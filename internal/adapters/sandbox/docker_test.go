package sandbox

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseScore(t *testing.T) {
	Convey("Given scorer stdout", t, func() {
		Convey("A plain float parses", func() {
			v, err := parseScore("0.875\n")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.875)
		})

		Convey("Only the last non-empty line counts", func() {
			v, err := parseScore("loading model\nwarming up\n0.42\n\n")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.42)
		})

		Convey("Python repr output parses", func() {
			v, err := parseScore("1.4142135623730951\n")
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 1.4142135623730951, 1e-15)
		})

		Convey("Non-numeric output is an invalid score", func() {
			_, err := parseScore("oops\n")
			So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
		})

		Convey("Non-finite output is an invalid score", func() {
			for _, out := range []string{"nan\n", "NaN\n", "inf\n", "-Inf\n"} {
				_, err := parseScore(out)
				So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
			}
		})

		Convey("Empty output is an invalid score", func() {
			_, err := parseScore("")
			So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
		})
	})
}

func TestFirstLine(t *testing.T) {
	Convey("firstLine trims and truncates", t, func() {
		So(firstLine("boom\ntraceback line\n"), ShouldEqual, "boom")
		So(firstLine("  single  "), ShouldEqual, "single")
		So(firstLine(""), ShouldEqual, "")
	})
}

func TestJobArchive(t *testing.T) {
	Convey("Given a packed job archive", t, func() {
		code := "def score(answer_rows, submission_rows):\n    return 1.0\n"
		input := []byte(`{"answer":[],"submission":[]}`)

		archive, err := jobArchive(code, input)
		So(err, ShouldBeNil)

		files := map[string]string{}
		tr := tar.NewReader(archive)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			So(err, ShouldBeNil)
			content, err := io.ReadAll(tr)
			So(err, ShouldBeNil)
			files[hdr.Name] = string(content)
		}

		Convey("It carries the harness, the script, and the payload", func() {
			So(files, ShouldContainKey, "job/run.py")
			So(files, ShouldContainKey, "job/scorer.py")
			So(files, ShouldContainKey, "job/input.json")
			So(files["job/scorer.py"], ShouldEqual, code)
			So(files["job/input.json"], ShouldEqual, string(input))
			So(files["job/run.py"], ShouldContainSubstring, "score(answer_rows, submission_rows)")
		})
	})
}

func TestWaitFailure(t *testing.T) {
	Convey("Given a failed container wait", t, func() {
		Convey("A tripped deadline is the script's fault", func() {
			ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			defer cancel()

			err := waitFailure(ctx, ctx.Err(), defaultTimeout)
			So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
			So(errors.Is(err, ErrUnavailable), ShouldBeFalse)
		})

		Convey("A deadline error reported before the context observes it still counts", func() {
			err := waitFailure(context.Background(), context.DeadlineExceeded, defaultTimeout)
			So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
		})

		Convey("Anything else is an infrastructure fault", func() {
			err := waitFailure(context.Background(), errors.New("daemon went away"), defaultTimeout)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, ErrInvalidScore), ShouldBeFalse)
		})
	})
}

func TestRunnerOptions(t *testing.T) {
	Convey("Options only accept sane values", t, func() {
		r := &DockerRunner{image: defaultImage, timeout: defaultTimeout, memoryBytes: defaultMemoryBytes}

		WithImage("")(r)
		So(r.image, ShouldEqual, defaultImage)
		WithImage("python:3.11")(r)
		So(r.image, ShouldEqual, "python:3.11")

		WithTimeout(0)(r)
		So(r.timeout, ShouldEqual, defaultTimeout)

		WithMemoryLimit(-1)(r)
		So(r.memoryBytes, ShouldEqual, int64(defaultMemoryBytes))
	})
}
