package tabular

import "strings"

// targetNames is the priority list used to locate the prediction column,
// matched case-insensitively in order.
var targetNames = []string{
	"target", "label", "y", "prediction", "pred",
	"class", "clicked", "probability", "prob", "score",
}

// TargetColumn resolves the single prediction column of a table.
//
// Resolution tries each recognized name in priority order against the header,
// case-insensitively, and falls back to the LAST column when none match. The
// fallback is a deliberate convenience for files shaped like id,<prediction>;
// callers must either use a recognized column name or put predictions last,
// otherwise the wrong column is scored silently.
func TargetColumn(t Table) []string {
	idx := len(t.Header) - 1
	for _, want := range targetNames {
		if i := headerIndex(t.Header, want); i >= 0 {
			idx = i
			break
		}
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// RowObjects zips the header with each data row into one field map per row.
// Evaluators that need whole-row context (and the custom scoring sandbox)
// consume this shape instead of a single column.
func RowObjects(t Table) []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Header))
		for j, name := range t.Header {
			m[name] = row[j]
		}
		out[i] = m
	}
	return out
}

func headerIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
