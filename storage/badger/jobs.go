package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) *JobRepository {
	return &JobRepository{backend: backend}
}

// Close releases repository resources. The backend is owned by the caller.
func (r *JobRepository) Close() error {
	return nil
}

// PutJob stores a job record, overwriting any previous record with the
// same ID. The per-scope index keeps jobs ordered newest generation first.
func (r *JobRepository) PutJob(ctx context.Context, job *core.IngestionJob) error {
	if job == nil || job.Id == "" {
		return fmt.Errorf("job with non-empty ID required")
	}

	data, err := storage.MarshalJob(job)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeJobKey(job.Id), data); err != nil {
			return err
		}
		indexKey := makeJobScopeKey(job.OwnerScope, job.Generation)
		if err := tx.Set(indexKey, []byte(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetJob returns the job with the given ID, or storage.ErrNotFound.
func (r *JobRepository) GetJob(ctx context.Context, id string) (*core.IngestionJob, error) {
	var job *core.IngestionJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeJobKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: job %q", storage.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			job, err = storage.UnmarshalJob(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// JobsForScope returns a scope's jobs, newest generation first.
func (r *JobRepository) JobsForScope(ctx context.Context, ownerScope string) ([]*core.IngestionJob, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeJobScopePrefix(ownerScope)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	jobs := make([]*core.IngestionJob, 0, len(ids))
	for _, id := range ids {
		job, err := r.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
