package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mtihani/core/exam"
)

type questionRepository struct {
	db *DB
}

var _ exam.QuestionRepository = (*questionRepository)(nil)

func NewQuestionRepository(db *DB) exam.QuestionRepository {
	return &questionRepository{db: db}
}

func (repo *questionRepository) GetPaperQuestions(_ context.Context, paperID int) ([]exam.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	res := make([]exam.Question, 0)
	for _, q := range repo.db.questions {
		if q.PaperID == paperID && q.IsActive {
			res = append(res, *q)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
