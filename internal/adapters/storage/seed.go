package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/podium/internal/domain/metric"
	"github.com/okian/podium/internal/domain/model"
)

// seedFile mirrors the YAML layout of a task seed file.
type seedFile struct {
	Tasks []seedTask `yaml:"tasks"`
}

type seedTask struct {
	ID             string    `yaml:"id"`
	Title          string    `yaml:"title"`
	StartsAt       time.Time `yaml:"starts_at"`
	EndsAt         time.Time `yaml:"ends_at"`
	MaxPerDay      int       `yaml:"max_per_day"`
	Metric         string    `yaml:"metric"`
	ScoringCode    string    `yaml:"scoring_code"`
	AnswerPath     string    `yaml:"answer_path"`
	AnswerFile     string    `yaml:"answer_file"`
	HigherIsBetter bool      `yaml:"higher_is_better"`
}

// SeedTasks loads competition definitions from a YAML file into the task
// store and, when a task names a local answer_file, uploads its content to
// the blob store under the task's answer_path.
//
// Task CRUD is otherwise out of scope; seeding exists so a fresh process has
// competitions to score against.
func SeedTasks(ctx context.Context, path string, tasks *MemoryTaskStore, blobs BlobStore) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	for i, st := range sf.Tasks {
		if st.ID == "" {
			return 0, fmt.Errorf("seed task %d: missing id", i)
		}
		m, err := metric.Parse(st.Metric)
		if err != nil {
			return 0, fmt.Errorf("seed task %q: %w", st.ID, err)
		}
		answerPath := st.AnswerPath
		if st.AnswerFile != "" {
			if answerPath == "" {
				answerPath = "answers/" + st.ID + ".csv"
			}
			content, err := os.ReadFile(st.AnswerFile)
			if err != nil {
				return 0, fmt.Errorf("seed task %q: read answer file: %w", st.ID, err)
			}
			if err := blobs.Upload(ctx, answerPath, content, "text/csv"); err != nil {
				return 0, fmt.Errorf("seed task %q: upload answer: %w", st.ID, err)
			}
		}
		tasks.Put(ctx, model.Task{
			ID:             st.ID,
			Title:          st.Title,
			StartsAt:       st.StartsAt,
			EndsAt:         st.EndsAt,
			MaxPerDay:      st.MaxPerDay,
			Metric:         m,
			ScoringCode:    st.ScoringCode,
			AnswerPath:     answerPath,
			HigherIsBetter: st.HigherIsBetter,
		})
	}
	return len(sf.Tasks), nil
}
