package syncer

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/model"
)

// maxBatchSize is the largest keyed upsert the store accepts in one request.
const maxBatchSize = 100

// upsertAll pushes the deduplicated records into the CRM. Records with an
// email go through keyed batch upserts; the rest are created individually,
// with an identity conflict counted as an update. A failed batch is counted
// and skipped without affecting its neighbors.
func (s *Syncer) upsertAll(ctx context.Context, records []*model.LeadRecord, rep *Report) {
	var batchable []crm.BatchItem
	var createOnly []*model.LeadRecord
	for _, rec := range records {
		if email := rec.NormalizedEmail(); email != "" {
			batchable = append(batchable, crm.BatchItem{
				Key:        email,
				Properties: rec.Properties(),
			})
		} else {
			createOnly = append(createOnly, rec)
		}
	}

	for start := 0; start < len(batchable); start += maxBatchSize {
		if start > 0 {
			s.sleep(s.batchDelay)
		}
		batch := batchable[start:min(start+maxBatchSize, len(batchable))]

		results, err := s.crm.BatchUpsert(ctx, batch)
		if err != nil {
			zap.L().Warn("syncer: batch upsert failed",
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			rep.Errored += len(batch)
			rep.Errors = append(rep.Errors, fmt.Sprintf("batch of %d: %s", len(batch), err))
			continue
		}
		for _, res := range results {
			if res.New {
				rep.Created++
			} else {
				rep.Updated++
			}
		}
	}

	for _, rec := range createOnly {
		err := s.crm.Create(ctx, rec.Properties())
		switch {
		case err == nil:
			rep.Created++
		case eris.Is(err, crm.ErrConflict):
			rep.Updated++
		default:
			zap.L().Warn("syncer: create failed",
				zap.String("lead", rec.ContactKey()),
				zap.Error(err),
			)
			rep.addError(fmt.Sprintf("create %s: %s", rec.ContactKey(), err))
		}
	}
}
