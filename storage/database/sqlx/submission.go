package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/exam"
)

type submissionRepository struct {
	db *sqlx.DB
}

var _ exam.SubmissionRepository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *sqlx.DB) exam.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id int, studentID string) (exam.Submission, error) {
	var sub exam.Submission
	err := repo.db.GetContext(ctx, &sub,
		`SELECT id, student_id, exam_name, paper_id, score, completed, created_at, updated_at
		 FROM submission WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.Submission{}, exam.ErrSubmissionNotFound
		}
		return exam.Submission{}, errors.Wrap(err, "querying submission")
	}
	return sub, nil
}

func (repo *submissionRepository) FilterSubmissions(ctx context.Context, studentID string, completed *bool) ([]exam.Submission, error) {
	query := `SELECT id, student_id, exam_name, paper_id, score, completed, created_at, updated_at
			  FROM submission WHERE student_id = $1`
	args := []interface{}{studentID}
	if completed != nil {
		query += ` AND completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY updated_at DESC`

	subs := make([]exam.Submission, 0)
	if err := repo.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

// CompleteSubmission commits the score and the answer snapshots in one transaction.
// The UPDATE's `completed = FALSE` predicate is the compare-and-swap guard: of N
// concurrent submits, exactly one sees a row flip and the rest get
// exam.ErrAlreadyCompleted with nothing written.
func (repo *submissionRepository) CompleteSubmission(ctx context.Context, id int, score float64, entries []exam.AnswerEntry) (exam.Submission, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return exam.Submission{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE submission SET score = $1, completed = TRUE, updated_at = $2
		 WHERE id = $3 AND completed = FALSE`, score, time.Now().UTC(), id)
	if err != nil {
		return exam.Submission{}, errors.Wrap(err, "completing submission")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return exam.Submission{}, errors.Wrap(err, "checking rows affected")
	}
	if affected == 0 {
		return exam.Submission{}, exam.ErrAlreadyCompleted
	}

	for _, entry := range entries {
		entry.SubmissionID = id
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO answer_entry
				(submission_id, question_id, question, option_a, option_b, option_c, option_d, answer, choice, correct, answered_at)
			 VALUES
				(:submission_id, :question_id, :question, :option_a, :option_b, :option_c, :option_d, :answer, :choice, :correct, :answered_at)`,
			entry); err != nil {
			return exam.Submission{}, errors.Wrap(err, "inserting answer entry")
		}
	}

	var sub exam.Submission
	if err := tx.GetContext(ctx, &sub,
		`SELECT id, student_id, exam_name, paper_id, score, completed, created_at, updated_at
		 FROM submission WHERE id = $1`, id); err != nil {
		return exam.Submission{}, errors.Wrap(err, "reloading submission")
	}

	if err := tx.Commit(); err != nil {
		// the commit outcome is ambiguous; the score may or may not be durable,
		// so stop serving submissions rather than risk double completion
		return exam.Submission{}, core.NewShutdownError("committing submission tx: " + err.Error())
	}
	return sub, nil
}
