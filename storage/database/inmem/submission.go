package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/mtihani/core/exam"
)

type submissionRepository struct {
	db *DB
}

var _ exam.SubmissionRepository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *DB) exam.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) GetSubmission(_ context.Context, id int, studentID string) (exam.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok && sub.StudentID == studentID {
		return *sub, nil
	}
	return exam.Submission{}, exam.ErrSubmissionNotFound
}

func (repo *submissionRepository) FilterSubmissions(_ context.Context, studentID string, completed *bool) ([]exam.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	res := make([]exam.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.StudentID != studentID {
			continue
		}
		if completed != nil && sub.Completed != *completed {
			continue
		}
		res = append(res, *sub)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.After(res[j].UpdatedAt) })
	return res, nil
}

// CompleteSubmission performs the pending -> completed swap under the write lock;
// like the SQL repo, losers of the race get exam.ErrAlreadyCompleted and write
// nothing.
func (repo *submissionRepository) CompleteSubmission(_ context.Context, id int, score float64, entries []exam.AnswerEntry) (exam.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.submissions[id]
	if !ok {
		return exam.Submission{}, exam.ErrSubmissionNotFound
	}
	if sub.Completed {
		return exam.Submission{}, exam.ErrAlreadyCompleted
	}

	sub.Score = score
	sub.Completed = true
	sub.UpdatedAt = time.Now().UTC()

	stored := make([]exam.AnswerEntry, 0, len(entries))
	for _, entry := range entries {
		repo.db.entryPK++
		entry.ID = repo.db.entryPK
		entry.SubmissionID = id
		stored = append(stored, entry)
	}
	repo.db.entries[id] = stored
	return *sub, nil
}
