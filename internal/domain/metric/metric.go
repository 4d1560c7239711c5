// Package metric implements the built-in submission evaluators and the
// dispatch over the closed metric set.
package metric

import (
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// Parse validates a metric name and returns its closed-set value.
func Parse(name string) (model.Metric, error) {
	switch model.Metric(name) {
	case model.MetricRMSE:
		return model.MetricRMSE, nil
	case model.MetricAccuracy:
		return model.MetricAccuracy, nil
	case model.MetricF1:
		return model.MetricF1, nil
	case model.MetricAUC:
		return model.MetricAUC, nil
	case model.MetricCustom:
		return model.MetricCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// HigherIsBetter returns the ranking direction for a built-in metric.
// RMSE is an error measure, everything else rewards larger values. Custom
// tasks carry their own direction on the task record; this function reports
// the assumed default for them.
func HigherIsBetter(m model.Metric) bool {
	return m != model.MetricRMSE
}

// Direction resolves the ranking direction for a task: the metric's own
// direction for built-ins, the task's configured flag for custom scoring.
func Direction(t model.Task) bool {
	if t.Metric == model.MetricCustom {
		return t.HigherIsBetter
	}
	return HigherIsBetter(t.Metric)
}

// Evaluate dispatches predicted/actual sequences to the named built-in
// evaluator. The sequences must be equal length; CheckDimensions runs once
// here so no individual evaluator repeats the precondition. MetricCustom is
// not dispatchable through Evaluate — custom scoring needs whole rows and a
// sandbox, which the orchestrator wires separately.
func Evaluate(m model.Metric, predicted, actual []string) (float64, error) {
	if err := CheckDimensions(len(predicted), len(actual)); err != nil {
		return 0, err
	}
	switch m {
	case model.MetricRMSE:
		return rmse(predicted, actual)
	case model.MetricAccuracy:
		return accuracy(predicted, actual), nil
	case model.MetricF1:
		return f1(predicted, actual), nil
	case model.MetricAUC:
		return auc(predicted, actual)
	case model.MetricCustom:
		return 0, fmt.Errorf("%w: custom metric is not evaluated in-process", ErrUnknownMetric)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
}

// CheckDimensions enforces the shared equal-length precondition. It is also
// called by the orchestrator on raw table row counts before any evaluator
// (built-in or custom) runs.
func CheckDimensions(got, want int) error {
	if got != want {
		return &DimensionError{Got: got, Want: want}
	}
	return nil
}
