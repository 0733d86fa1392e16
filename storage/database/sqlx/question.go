package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/exam"
)

type questionRepository struct {
	db *sqlx.DB
}

var _ exam.QuestionRepository = (*questionRepository)(nil)

func NewQuestionRepository(db *sqlx.DB) exam.QuestionRepository {
	return &questionRepository{db: db}
}

func (repo *questionRepository) GetPaperQuestions(ctx context.Context, paperID int) ([]exam.Question, error) {
	questions := make([]exam.Question, 0)
	err := repo.db.SelectContext(ctx, &questions,
		`SELECT id, paper_id, question, option_a, option_b, option_c, option_d, answer, max_marks, is_active
		 FROM question WHERE paper_id = $1 AND is_active = TRUE ORDER BY id`, paperID)
	if err != nil {
		return nil, errors.Wrap(err, "querying paper questions")
	}
	return questions, nil
}
