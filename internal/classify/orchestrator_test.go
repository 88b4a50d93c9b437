package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/rule"
)

type mockRemote struct {
	rankings    model.LabelRankings
	err         error
	calls       int
	unavailable bool
}

func (m *mockRemote) Rank(ctx context.Context, text string, labels []string) (model.LabelRankings, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(model.LabelRankings, len(m.rankings))
	copy(out, m.rankings)
	return out, nil
}

func (m *mockRemote) Available() bool { return !m.unavailable }

type mockNotes struct {
	recorded []string
	err      error
}

func (m *mockNotes) Record(ctx context.Context, note, category, source string) error {
	m.recorded = append(m.recorded, note)
	return m.err
}

func newOrchestrator(remote Remote, notes NoteStore) *Orchestrator {
	return New(rule.New(), remote, notes, Config{})
}

func TestClassifyGateRejectionSkipsRemote(t *testing.T) {
	remote := &mockRemote{}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "發票號碼 AB12345678")
	assert.Equal(t, model.SourceRule, res.Source)
	assert.False(t, res.IsProduct)
	assert.Zero(t, remote.calls, "gate-rejected text must never reach the remote model")
}

func TestClassifyStrongLocalHitSkipsRemote(t *testing.T) {
	remote := &mockRemote{}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "珍珠奶茶")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, rule.CategoryDrink, res.Category)
	assert.Zero(t, remote.calls)
}

func TestClassifyEscalatesWeakLocal(t *testing.T) {
	remote := &mockRemote{rankings: model.LabelRankings{
		{Label: "醫療", Score: 0.85},
		{Label: model.CategoryOther, Score: 0.1},
	}}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceAI, res.Source)
	assert.Equal(t, "醫療", res.Category)
	assert.InDelta(t, 0.85, res.Confidence, 0.001)
	assert.Equal(t, 1, remote.calls)
}

func TestClassifyKeepsLocalOnWeakRemote(t *testing.T) {
	remote := &mockRemote{rankings: model.LabelRankings{{Label: "醫療", Score: 0.3}}}
	notes := &mockNotes{}
	o := newOrchestrator(remote, notes)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, model.CategoryOther, res.Category)
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, []string{"不知道是什麼"}, notes.recorded)
}

func TestClassifyDrinkTokensBeatRemote(t *testing.T) {
	// Drink tokens answer locally at keyword confidence, so an obvious
	// beverage never consults the remote model even with no dictionary
	// hit.
	remote := &mockRemote{rankings: model.LabelRankings{{Label: rule.CategoryFood, Score: 0.95}}}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "多多綠微微")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, rule.CategoryDrink, res.Category)
	assert.Zero(t, remote.calls)
}

func TestClassifyRejectsUnknownRemoteLabel(t *testing.T) {
	remote := &mockRemote{rankings: model.LabelRankings{{Label: "火星開銷", Score: 0.99}}}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, model.CategoryOther, res.Category)
}

func TestClassifyAcceptsKnownRunnerUp(t *testing.T) {
	// The model tops a label outside our category set; the known
	// runner-up above the floor is taken instead.
	remote := &mockRemote{rankings: model.LabelRankings{
		{Label: "火星開銷", Score: 0.9},
		{Label: "交通", Score: 0.7},
	}}
	o := newOrchestrator(remote, nil)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceAI, res.Source)
	assert.Equal(t, "交通", res.Category)
	assert.InDelta(t, 0.7, res.Confidence, 0.001)
}

func TestClassifyDegradesWhenRemoteUnavailable(t *testing.T) {
	remote := &mockRemote{unavailable: true}
	notes := &mockNotes{}
	o := newOrchestrator(remote, notes)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, model.CategoryOther, res.Category)
	assert.Zero(t, remote.calls)
	assert.Len(t, notes.recorded, 1)
}

func TestClassifySwallowsRemoteAndStoreErrors(t *testing.T) {
	remote := &mockRemote{err: errors.New("network down")}
	notes := &mockNotes{err: errors.New("disk full")}
	o := newOrchestrator(remote, notes)

	res := o.Classify(context.Background(), "不知道是什麼")
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, 1, remote.calls)
	assert.Len(t, notes.recorded, 1)
}

func TestClassifyBatchPacing(t *testing.T) {
	remote := &mockRemote{rankings: model.LabelRankings{{Label: "醫療", Score: 0.9}}}
	o := New(rule.New(), remote, nil, Config{BatchSize: 2, BatchDelay: time.Second})

	var sleeps int
	o.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		assert.Equal(t, time.Second, d)
		return nil
	}

	texts := []string{"不知道是什麼", "珍珠奶茶", "搞不清楚", "發票號碼 AB12345678", "莫名其妙"}
	results := o.ClassifyBatch(context.Background(), texts)
	require.Len(t, results, 5)

	assert.Equal(t, model.SourceAI, results[0].Source)
	assert.Equal(t, model.SourceLocal, results[1].Source)
	assert.Equal(t, model.SourceRule, results[3].Source)

	// Batches one and two used the remote model and were not last.
	assert.Equal(t, 2, sleeps)
	assert.Equal(t, 3, remote.calls)
}

func TestClassifyBatchNoDelayWhenAllLocal(t *testing.T) {
	remote := &mockRemote{}
	o := New(rule.New(), remote, nil, Config{BatchSize: 2, BatchDelay: time.Second})

	var sleeps int
	o.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	o.ClassifyBatch(context.Background(), []string{"珍珠奶茶", "雞排便當", "高鐵車票"})
	assert.Zero(t, sleeps)
	assert.Zero(t, remote.calls)
}

func TestClassifyBatchReportsProgress(t *testing.T) {
	remote := &mockRemote{rankings: model.LabelRankings{{Label: "醫療", Score: 0.9}}}

	var calls [][2]int
	o := New(rule.New(), remote, nil, Config{
		BatchSize:  2,
		BatchDelay: time.Millisecond,
		Progress:   func(done, total int) { calls = append(calls, [2]int{done, total}) },
	})
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	texts := []string{"不知道是什麼", "珍珠奶茶", "搞不清楚", "雞排便當", "莫名其妙"}
	o.ClassifyBatch(context.Background(), texts)

	require.Len(t, calls, 5)
	assert.Equal(t, [2]int{1, 5}, calls[0])
	assert.Equal(t, [2]int{5, 5}, calls[4])
}

func TestHybridClassify(t *testing.T) {
	t.Run("confident local wins without remote", func(t *testing.T) {
		remote := &mockRemote{}
		o := newOrchestrator(remote, nil)

		res := o.HybridClassify(context.Background(), "珍珠奶茶")
		assert.Equal(t, model.SourceLocal, res.Source)
		assert.Zero(t, remote.calls)
	})

	t.Run("remote overrides weak local with a better score", func(t *testing.T) {
		remote := &mockRemote{rankings: model.LabelRankings{{Label: "娛樂", Score: 0.95}}}
		o := newOrchestrator(remote, nil)

		res := o.HybridClassify(context.Background(), "不知道是什麼")
		assert.Equal(t, model.SourceAI, res.Source)
		assert.Equal(t, "娛樂", res.Category)
	})

	t.Run("remote below floor keeps local", func(t *testing.T) {
		remote := &mockRemote{rankings: model.LabelRankings{{Label: "娛樂", Score: 0.4}}}
		o := newOrchestrator(remote, nil)

		res := o.HybridClassify(context.Background(), "不知道是什麼")
		assert.Equal(t, model.SourceLocal, res.Source)
		assert.Equal(t, model.CategoryOther, res.Category)
	})
}
