package magicsort

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/quadrant/pkg/classify"
	"github.com/harrisonrobin/quadrant/pkg/matrix"
	"github.com/harrisonrobin/quadrant/pkg/model"
	"github.com/harrisonrobin/quadrant/pkg/store"
)

func scored(id string, urgency, importance int, q matrix.Quadrant) model.Task {
	return model.Task{ID: id, Content: id, Urgency: &urgency, Importance: &importance, Quadrant: q}
}

func TestRankOrdering(t *testing.T) {
	tasks := []model.Task{
		scored("d", 1, 1, matrix.Q4),
		scored("a", 5, 5, matrix.Q1),
		scored("c", 5, 1, matrix.Q3),
		scored("b", 4, 4, matrix.Q1),
	}

	ranked := Rank(tasks)
	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID, ranked[3].ID}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)

	// Pure: input untouched.
	assert.Equal(t, "d", tasks[0].ID)
}

func TestRankUnknownQuadrantSortsLast(t *testing.T) {
	tasks := []model.Task{
		{ID: "mystery", Content: "x", Quadrant: "Q7"},
		{ID: "blank", Content: "y"},
		scored("q4", 1, 1, matrix.Q4),
	}

	ranked := Rank(tasks)
	assert.Equal(t, "q4", ranked[0].ID)
	// Stable among equally-unranked records.
	assert.Equal(t, "mystery", ranked[1].ID)
	assert.Equal(t, "blank", ranked[2].ID)
}

func TestRankStableWithinEqualKeys(t *testing.T) {
	tasks := []model.Task{
		scored("first", 3, 3, matrix.Q4),
		scored("second", 3, 3, matrix.Q4),
	}
	ranked := Rank(tasks)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
}

func TestPredicates(t *testing.T) {
	unclassified := model.Task{ID: "u", Content: "u"}
	defaults := scored("d", matrix.DefaultUrgency, matrix.DefaultImportance, matrix.DefaultQuadrant)
	real := scored("r", 5, 5, matrix.Q1)

	assert.True(t, NeedsClassification(unclassified))
	assert.False(t, NeedsClassification(defaults))
	assert.False(t, NeedsClassification(real))

	assert.True(t, NeedsClassificationOrDefault(unclassified))
	assert.True(t, NeedsClassificationOrDefault(defaults))
	assert.False(t, NeedsClassificationOrDefault(real))
}

// scriptedClassifier returns per-content results and records calls.
type scriptedClassifier struct {
	results map[string]classify.Result
	errs    map[string]error
	calls   []string
}

func (c *scriptedClassifier) Classify(_ context.Context, content string) (classify.Result, error) {
	c.calls = append(c.calls, content)
	if err, ok := c.errs[content]; ok {
		return classify.Default(), err
	}
	if res, ok := c.results[content]; ok {
		return res, nil
	}
	return classify.Default(), nil
}

func tempStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)
	return s
}

func TestProcessClassifiesAndRanks(t *testing.T) {
	st := tempStore(t)
	_, err := st.Add("water the plants")
	require.NoError(t, err)
	_, err = st.Add("pay rent today")
	require.NoError(t, err)

	cl := &scriptedClassifier{results: map[string]classify.Result{
		"water the plants": {Urgency: 1, Importance: 1, Quadrant: matrix.Q4},
		"pay rent today":   {Urgency: 5, Importance: 5, Quadrant: matrix.Q1},
	}}

	doc, err := New(st, cl, nil).Process(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "pay rent today", doc.Tasks[0].Content)
	assert.Equal(t, matrix.Q1, doc.Tasks[0].Quadrant)
	assert.Equal(t, matrix.Q4, doc.Tasks[1].Quadrant)
	assert.NotNil(t, doc.LastSync)

	// Persisted, not just returned.
	assert.Equal(t, doc.Tasks, st.Tasks())
}

func TestProcessContinuesPastClassificationFailure(t *testing.T) {
	st := tempStore(t)
	_, err := st.Add("flaky one")
	require.NoError(t, err)
	_, err = st.Add("solid one")
	require.NoError(t, err)

	cl := &scriptedClassifier{
		errs: map[string]error{"flaky one": errors.New("api down")},
		results: map[string]classify.Result{
			"solid one": {Urgency: 5, Importance: 4, Quadrant: matrix.Q1},
		},
	}

	doc, err := New(st, cl, nil).Process(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)

	byContent := map[string]model.Task{}
	for _, task := range doc.Tasks {
		byContent[task.Content] = task
	}
	assert.Equal(t, matrix.Q1, byContent["solid one"].Quadrant)
	// The failed task carries the self-consistent default tuple.
	flaky := byContent["flaky one"]
	require.NotNil(t, flaky.Urgency)
	assert.Equal(t, matrix.DefaultUrgency, *flaky.Urgency)
	assert.Equal(t, matrix.DefaultQuadrant, flaky.Quadrant)
}

func TestProcessSkipsClassifiedAndRederivesQuadrant(t *testing.T) {
	st := tempStore(t)
	task, err := st.Add("already scored")
	require.NoError(t, err)

	doc := st.Document()
	urgency, importance := 5, 5
	doc.Tasks[0].Urgency = &urgency
	doc.Tasks[0].Importance = &importance
	doc.Tasks[0].Quadrant = matrix.Q4 // stale, contradicts the scores
	require.NoError(t, st.Replace(doc))

	cl := &scriptedClassifier{}
	out, err := New(st, cl, nil).Process(context.Background())
	require.NoError(t, err)

	assert.Empty(t, cl.calls, "classified task must not be re-sent")
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, task.ID, out.Tasks[0].ID)
	assert.Equal(t, matrix.Q1, out.Tasks[0].Quadrant)
}

func TestProcessAggressivePredicateReclassifiesDefaults(t *testing.T) {
	st := tempStore(t)
	_, err := st.Add("defaulted")
	require.NoError(t, err)

	doc := st.Document()
	urgency, importance := matrix.DefaultUrgency, matrix.DefaultImportance
	doc.Tasks[0].Urgency = &urgency
	doc.Tasks[0].Importance = &importance
	doc.Tasks[0].Quadrant = matrix.DefaultQuadrant
	require.NoError(t, st.Replace(doc))

	cl := &scriptedClassifier{results: map[string]classify.Result{
		"defaulted": {Urgency: 5, Importance: 5, Quadrant: matrix.Q1},
	}}

	out, err := New(st, cl, NeedsClassificationOrDefault).Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"defaulted"}, cl.calls)
	assert.Equal(t, matrix.Q1, out.Tasks[0].Quadrant)
}

func TestProcessEmptyListIsNoOp(t *testing.T) {
	st := tempStore(t)
	before := st.Document()
	require.NotNil(t, before.LastSync)
	stamp := *before.LastSync
	time.Sleep(5 * time.Millisecond)

	_, err := New(st, &scriptedClassifier{}, nil).Process(context.Background())
	assert.ErrorIs(t, err, ErrNoTasks)

	after := st.Document()
	require.NotNil(t, after.LastSync)
	assert.True(t, stamp.Equal(*after.LastSync), "nothing may be written")
}
