package core

import (
	"context"
	"errors"

	"github.com/auto-dns/vinyldns-batch-sample/internal/batch"
	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

func (o *Orchestrator) addRecords(ctx context.Context, sess *session.Session, sc Scenario) error {
	b := batch.NewBuilder(sess.GroupID).AddMany(sc.Originals...)
	if err := o.applyBatch(ctx, sess, session.PhaseAddRecords, b, sc.Comments); err != nil {
		return err
	}
	return o.report(ctx, sess, sc.RecordNameFilter)
}

func (o *Orchestrator) replaceRecords(ctx context.Context, sess *session.Session, sc Scenario) error {
	b := batch.NewBuilder(sess.GroupID)
	for i := range sc.Originals {
		b.ReplaceOne(sc.Originals[i], sc.Replacements[i])
	}
	if err := o.applyBatch(ctx, sess, session.PhaseReplaceRecords, b, sc.Comments); err != nil {
		return err
	}
	return o.report(ctx, sess, sc.RecordNameFilter)
}

func (o *Orchestrator) deleteRecords(ctx context.Context, sess *session.Session, sc Scenario) error {
	b := batch.NewBuilder(sess.GroupID).DeleteMany(sc.Replacements...)
	return o.applyBatch(ctx, sess, session.PhaseDeleteRecords, b, sc.Comments)
}

// applyBatch submits the built request and waits for it to complete.
func (o *Orchestrator) applyBatch(ctx context.Context, sess *session.Session, p session.Phase, b *batch.Builder, comments string) error {
	changes := b.Len()
	req, err := b.WithComments(comments).Build()
	if err != nil {
		return err
	}

	bc, err := o.api.SubmitBatch(ctx, req)
	if err != nil {
		return err
	}
	o.metrics.BatchSubmitted(string(p))
	o.logger.Info().Str("session", sess.ID).Str("batch_id", bc.ID).Int("changes", changes).Msg("Batch change submitted")

	return o.await(ctx, "batch_complete", func(ctx context.Context) (bool, error) {
		cur, err := o.api.GetBatchChange(ctx, bc.ID)
		if err != nil {
			return o.pending(err, "batch change", bc.ID)
		}
		if cur.Status.IsFailed() {
			return false, &BatchFailedError{ID: cur.ID, Status: cur.Status, Detail: cur.FailureMessages()}
		}
		return cur.Status.IsComplete(), nil
	})
}

// IsBatchRejected reports whether err comes from the API refusing a batch.
func IsBatchRejected(err error) bool {
	var bre *vinyldns.BatchRequestError
	return errors.As(err, &bre)
}
