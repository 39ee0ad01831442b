// Package magicsort implements the "magic sort" batch operation:
// classify every task that still needs scores, re-derive quadrants,
// and order the whole list by Eisenhower priority.
package magicsort

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/harrisonrobin/quadrant/pkg/classify"
	"github.com/harrisonrobin/quadrant/pkg/matrix"
	"github.com/harrisonrobin/quadrant/pkg/model"
)

// ErrNoTasks reports an empty task list; nothing is classified or
// written in that case.
var ErrNoTasks = errors.New("no tasks to sort")

// Predicate decides whether a task should be (re-)classified.
type Predicate func(model.Task) bool

// NeedsClassification is the standard predicate: classify when any of
// the three score fields is absent.
func NeedsClassification(t model.Task) bool {
	return t.Urgency == nil || t.Importance == nil || t.Quadrant == ""
}

// NeedsClassificationOrDefault additionally re-classifies tasks whose
// fields all equal the exact default tuple. This re-scores tasks that
// legitimately landed on the defaults, so it is opt-in only.
func NeedsClassificationOrDefault(t model.Task) bool {
	if NeedsClassification(t) {
		return true
	}
	return *t.Urgency == matrix.DefaultUrgency &&
		*t.Importance == matrix.DefaultImportance &&
		t.Quadrant == matrix.DefaultQuadrant
}

// Rank returns the tasks ordered by quadrant priority (Q1 first), then
// descending urgency, then descending importance. The sort is stable
// and pure; absent scores rank lowest within their quadrant and
// unrecognized quadrants sort last.
func Rank(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ar, br := a.Quadrant.SortRank(), b.Quadrant.SortRank(); ar != br {
			return ar < br
		}
		if au, bu := a.UrgencyOrZero(), b.UrgencyOrZero(); au != bu {
			return au > bu
		}
		return a.ImportanceOrZero() > b.ImportanceOrZero()
	})
	return out
}

// Classifier is the scoring collaborator; *classify.Classifier
// satisfies it.
type Classifier interface {
	Classify(ctx context.Context, content string) (classify.Result, error)
}

// Store is the slice of the task store the batch operation needs.
type Store interface {
	Document() model.Document
	Replace(model.Document) error
}

// Sorter runs the batch classify-and-rank operation against a store.
type Sorter struct {
	store      Store
	classifier Classifier
	needs      Predicate
}

// New builds a Sorter. A nil predicate selects NeedsClassification.
func New(store Store, classifier Classifier, needs Predicate) *Sorter {
	if needs == nil {
		needs = NeedsClassification
	}
	return &Sorter{store: store, classifier: classifier, needs: needs}
}

// Process classifies and ranks the full document, persists the result
// (preserving an existing last_sync) and returns it. A classification
// failure only affects that one task, which keeps its default scores;
// the batch continues. With no tasks present, ErrNoTasks is returned
// and nothing is written.
func (s *Sorter) Process(ctx context.Context) (model.Document, error) {
	doc := s.store.Document()
	if len(doc.Tasks) == 0 {
		return model.Document{}, ErrNoTasks
	}

	classified := 0
	for i := range doc.Tasks {
		task := &doc.Tasks[i]
		switch {
		case s.needs(*task):
			res, err := s.classifier.Classify(ctx, task.Content)
			if err != nil {
				slog.Warn("classification failed, keeping defaults",
					"task_id", task.ID, "error", err)
			}
			urgency, importance := res.Urgency, res.Importance
			task.Urgency = &urgency
			task.Importance = &importance
			task.Quadrant = res.Quadrant
			classified++
		case task.Urgency != nil && task.Importance != nil:
			// Scores already present: re-derive the quadrant so a
			// hand-edited or stale value cannot disagree with them.
			task.Quadrant = matrix.For(*task.Urgency, *task.Importance)
		}
	}

	doc.Tasks = Rank(doc.Tasks)
	if err := s.store.Replace(doc); err != nil {
		return model.Document{}, err
	}
	slog.Info("magic sort complete", "classified", classified, "total", len(doc.Tasks))
	return s.store.Document(), nil
}
