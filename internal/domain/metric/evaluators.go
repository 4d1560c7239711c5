package metric

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// positiveLabels is the fixed vocabulary for F1's binary positive class,
// matched case-insensitively. Multi-class or differently labeled binary data
// silently lands in the negative class; this is a documented limitation of
// the metric, not something the evaluator second-guesses.
var positiveLabels = map[string]struct{}{
	"1": {}, "true": {}, "yes": {}, "positive": {},
}

// rmse computes the root mean squared error over numeric sequences.
// Lower is better.
func rmse(predicted, actual []string) (float64, error) {
	ps, err := toFloats(predicted, "submission")
	if err != nil {
		return 0, err
	}
	as, err := toFloats(actual, "answer")
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range ps {
		d := ps[i] - as[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(ps))), nil
}

// accuracy is the case-sensitive exact-match fraction. Higher is better.
func accuracy(predicted, actual []string) float64 {
	hits := 0
	for i := range predicted {
		if predicted[i] == actual[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(predicted))
}

// f1 computes the binary F1 score over the fixed positive-label vocabulary.
// Precision and recall each default to 0 on an empty denominator; F1 is 0
// when both are. Higher is better.
func f1(predicted, actual []string) float64 {
	var tp, fp, fn int
	for i := range predicted {
		predPos := isPositive(predicted[i])
		actPos := isPositive(actual[i])
		switch {
		case predPos && actPos:
			tp++
		case predPos && !actPos:
			fp++
		case !predPos && actPos:
			fn++
		}
	}
	var precision, recall float64
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// auc computes the rank-based (Mann-Whitney) area under the ROC curve.
// Rows are stably sorted by predicted score descending, so tied scores keep
// their original row order; the positive class is actual == 1. Returns
// exactly 0.5 when either class is absent. Higher is better.
func auc(predicted, actual []string) (float64, error) {
	ps, err := toFloats(predicted, "submission")
	if err != nil {
		return 0, err
	}
	as, err := toFloats(actual, "answer")
	if err != nil {
		return 0, err
	}

	order := make([]int, len(ps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ps[order[a]] > ps[order[b]]
	})

	var positives, negatives int
	var rankSum float64
	for rank, idx := range order {
		if as[idx] == 1 {
			positives++
			rankSum += float64(rank + 1)
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		// Degenerate single-class input: uninformative by definition.
		return 0.5, nil
	}

	p := float64(positives)
	u := (rankSum - p*(p+1)/2) / (p * float64(negatives))
	// The sort is descending, so the statistic comes out inverted.
	return 1 - u, nil
}

func isPositive(cell string) bool {
	_, ok := positiveLabels[strings.ToLower(cell)]
	return ok
}

// toFloats converts a cell sequence for the numeric evaluators. side names
// which file the bad cell came from so the failure is actionable.
func toFloats(cells []string, side string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %q", ErrInvalidNumeric, side, i+1, c)
		}
		out[i] = v
	}
	return out, nil
}
