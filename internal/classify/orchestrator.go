// Package classify chains the classification stages: rule gate, local
// keyword dictionaries, then the remote zero-shot model. Each stage
// only escalates when it cannot answer confidently, and remote failures
// degrade to the best local answer instead of erroring out.
package classify

import (
	"context"
	"time"

	"github.com/zhuantitest/ledgerparse/internal/common"
	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/rule"
)

// Escalation thresholds. A local dictionary hit at or below
// LocalThreshold consults the remote model; remote answers under
// RemoteFloor are not trusted over the local answer.
const (
	LocalThreshold  = 0.7
	HybridThreshold = 0.8
	RemoteFloor     = 0.5

	DefaultBatchSize  = 5
	DefaultBatchDelay = time.Second
)

// Degradation reasons surfaced on results that never reached the
// remote model.
const (
	reasonRemoteUnavailable = "遠端分類不可用"
	reasonRemoteLowScore    = "遠端信心不足"
)

// Remote ranks candidate labels for a text. *zeroshot.Classifier
// satisfies this.
type Remote interface {
	Rank(ctx context.Context, text string, labels []string) (model.LabelRankings, error)
	Available() bool
}

// NoteStore records notes that ended up unclassified so their keywords
// can be added to the dictionaries later. Recording is best effort.
type NoteStore interface {
	Record(ctx context.Context, note, category, source string) error
}

// Config tunes the orchestrator. Zero values take the defaults above.
type Config struct {
	LocalThreshold  float64
	HybridThreshold float64
	RemoteFloor     float64
	BatchSize       int
	BatchDelay      time.Duration

	// Progress, when set, is called after each text in a batch with the
	// number classified so far and the batch total.
	Progress func(done, total int)
}

// Orchestrator runs the full classification pipeline for one text.
type Orchestrator struct {
	rules  *rule.Classifier
	remote Remote
	notes  NoteStore
	labels []string
	cfg    Config

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator. remote and notes may be nil; the
// pipeline then stops at the local stage.
func New(rules *rule.Classifier, remote Remote, notes NoteStore, cfg Config) *Orchestrator {
	if cfg.LocalThreshold <= 0 {
		cfg.LocalThreshold = LocalThreshold
	}
	if cfg.HybridThreshold <= 0 {
		cfg.HybridThreshold = HybridThreshold
	}
	if cfg.RemoteFloor <= 0 {
		cfg.RemoteFloor = RemoteFloor
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	return &Orchestrator{
		rules:  rules,
		remote: remote,
		notes:  notes,
		labels: rule.Labels(),
		cfg:    cfg,
		sleep:  sleepCtx,
	}
}

// Classify runs gate, dictionaries and, when the local answer is weak,
// the remote model. It never returns an error; on remote failure the
// local answer stands.
func (o *Orchestrator) Classify(ctx context.Context, text string) model.ClassificationResult {
	res, _ := o.classify(ctx, text)
	return res
}

// classify additionally reports whether the remote model was consulted,
// which drives inter-batch pacing.
func (o *Orchestrator) classify(ctx context.Context, text string) (model.ClassificationResult, bool) {
	local := o.rules.Classify(text)
	if local.Source == model.SourceRule {
		// Gate rejection is final; nothing here can be an item.
		return local, false
	}
	if local.Confidence > o.cfg.LocalThreshold {
		return local, false
	}

	if o.remote == nil || !o.remote.Available() {
		local.Reason = reasonRemoteUnavailable
		o.recordUnclassified(ctx, text, local)
		return local, false
	}

	rankings, err := o.remote.Rank(ctx, text, o.labels)
	if err != nil {
		common.LogDebug("Remote classification failed, keeping local answer",
			common.Fields{"text": text, "error": err.Error()})
		local.Reason = reasonRemoteUnavailable
		o.recordUnclassified(ctx, text, local)
		return local, true
	}

	best, ok := o.acceptRemote(rankings)
	if !ok {
		local.Reason = reasonRemoteLowScore
		o.recordUnclassified(ctx, text, local)
		return local, true
	}

	isProduct, _ := o.rules.LocalProduct(text)
	return model.ClassificationResult{
		IsProduct:  isProduct,
		Category:   best.Label,
		Confidence: best.Score,
		Source:     model.SourceAI,
	}, true
}

// acceptRemote picks the highest-scoring known label at or above the
// remote floor. The model sometimes ranks a label outside our category
// set on top; a known runner-up above the floor is still usable.
func (o *Orchestrator) acceptRemote(rankings model.LabelRankings) (model.LabelScore, bool) {
	for _, c := range rankings.AboveThreshold(o.cfg.RemoteFloor) {
		if o.knownLabel(c.Label) {
			return c, true
		}
	}
	return model.LabelScore{}, false
}

// ClassifyBatch classifies texts in order, pacing remote usage in
// batches so the hosted model's rate limits are respected.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, texts []string) []model.ClassificationResult {
	results := make([]model.ClassificationResult, len(texts))

	for start := 0; start < len(texts); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		usedRemote := false
		for i := start; i < end; i++ {
			var remote bool
			results[i], remote = o.classify(ctx, texts[i])
			usedRemote = usedRemote || remote
			o.reportProgress(i+1, len(texts))
		}

		if usedRemote && end < len(texts) {
			if err := o.sleep(ctx, o.cfg.BatchDelay); err != nil {
				// Context gone; finish the rest locally.
				for i := end; i < len(texts); i++ {
					results[i] = o.rules.Classify(texts[i])
					o.reportProgress(i+1, len(texts))
				}
				return results
			}
		}
	}
	return results
}

// HybridClassify prefers the local answer and only lets the remote
// model override it with a strictly better score. Used for document
// OCR lines, which are longer and noisier than receipt items.
func (o *Orchestrator) HybridClassify(ctx context.Context, text string) model.ClassificationResult {
	local := o.rules.Classify(text)
	if local.Source == model.SourceRule || local.Confidence >= o.cfg.HybridThreshold {
		return local
	}
	if o.remote == nil || !o.remote.Available() {
		local.Reason = reasonRemoteUnavailable
		return local
	}

	rankings, err := o.remote.Rank(ctx, text, o.labels)
	if err != nil {
		local.Reason = reasonRemoteUnavailable
		return local
	}
	best, ok := o.acceptRemote(rankings)
	if !ok || best.Score <= local.Confidence {
		return local
	}

	return model.ClassificationResult{
		IsProduct:  local.IsProduct,
		Category:   best.Label,
		Confidence: best.Score,
		Source:     model.SourceAI,
	}
}

func (o *Orchestrator) reportProgress(done, total int) {
	if o.cfg.Progress != nil {
		o.cfg.Progress(done, total)
	}
}

func (o *Orchestrator) knownLabel(label string) bool {
	for _, l := range o.labels {
		if l == label {
			return true
		}
	}
	return false
}

// recordUnclassified persists notes the pipeline could not place so the
// dictionaries can be grown offline. Failures are logged, never
// surfaced.
func (o *Orchestrator) recordUnclassified(ctx context.Context, text string, res model.ClassificationResult) {
	if o.notes == nil || res.Category != model.CategoryOther {
		return
	}
	if err := o.notes.Record(ctx, text, res.Category, string(res.Source)); err != nil {
		common.LogError(err, "Recording unclassified note failed", common.Fields{"note": text})
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
