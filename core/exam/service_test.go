package exam_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mtihani/core/exam"
	inmemdb "github.com/trezcool/mtihani/storage/database/inmem"
	logsvc "github.com/trezcool/mtihani/services/logger"
)

func setup(t *testing.T) (*exam.Service, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.Open()
	svc := exam.NewService(
		inmemdb.NewQuestionRepository(db),
		inmemdb.NewSubmissionRepository(db),
		logsvc.NewConsoleLogger(log.New(io.Discard, "", 0)),
	)
	return svc, db
}

func seedPaper(db *inmemdb.DB, paperID int, answers ...string) []exam.Question {
	questions := make([]exam.Question, 0, len(answers))
	for _, answer := range answers {
		questions = append(questions, db.CreateQuestion(exam.Question{
			PaperID:  paperID,
			Text:     "What is the capital of Kenya?",
			OptionA:  "Nairobi",
			OptionB:  "Mombasa",
			OptionC:  "Kisumu",
			OptionD:  "Nakuru",
			Answer:   answer,
			MaxMarks: 1,
			IsActive: true,
		}))
	}
	return questions
}

func seedSubmission(db *inmemdb.DB, studentID string, paperID int) exam.Submission {
	now := time.Now().UTC()
	return db.CreateSubmission(exam.Submission{
		StudentID: studentID,
		ExamName:  "Geography Midterm",
		PaperID:   paperID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func TestSubmitScoring(t *testing.T) {
	svc, db := setup(t)
	questions := seedPaper(db, 1, "A", "B", "C", "D")
	sub := seedSubmission(db, "stu-1", 1)

	// 3 of 4 correct, one wrong
	res, err := svc.Submit(context.Background(), sub.ID, "stu-1", map[int]string{
		questions[0].ID: "A",
		questions[1].ID: "B",
		questions[2].ID: "C",
		questions[3].ID: "A",
	})
	assert.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 75.00, res.Score)

	entries := db.AnswerEntries(sub.ID)
	assert.Len(t, entries, 4)
	for i, entry := range entries {
		assert.Equal(t, questions[i].ID, entry.QuestionID)
		assert.Equal(t, questions[i].Answer, entry.Answer)
		assert.Equal(t, questions[i].Text, entry.Question)
	}
	assert.True(t, entries[0].Correct)
	assert.False(t, entries[3].Correct)
}

func TestSubmitUnansweredQuestionsAreIncorrect(t *testing.T) {
	svc, db := setup(t)
	questions := seedPaper(db, 1, "A", "B", "C")
	sub := seedSubmission(db, "stu-1", 1)

	res, err := svc.Submit(context.Background(), sub.ID, "stu-1", map[int]string{
		questions[0].ID: "A",
	})
	assert.NoError(t, err)
	assert.Equal(t, 33.33, res.Score)

	entries := db.AnswerEntries(sub.ID)
	assert.Len(t, entries, 3)
	assert.Equal(t, exam.UnansweredChoice, entries[1].Choice)
	assert.False(t, entries[1].Correct)
}

func TestSubmitEmptyPaperScoresZero(t *testing.T) {
	svc, db := setup(t)
	sub := seedSubmission(db, "stu-1", 42) // no questions for this paper

	res, err := svc.Submit(context.Background(), sub.ID, "stu-1", nil)
	assert.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 0.00, res.Score)
}

func TestSubmitNotFound(t *testing.T) {
	svc, db := setup(t)
	sub := seedSubmission(db, "stu-1", 1)

	_, err := svc.Submit(context.Background(), 999, "stu-1", nil)
	assert.Equal(t, exam.ErrSubmissionNotFound, err)

	// another student's submission is not reachable
	_, err = svc.Submit(context.Background(), sub.ID, "stu-2", nil)
	assert.Equal(t, exam.ErrSubmissionNotFound, err)
}

func TestSubmitIsOneShot(t *testing.T) {
	svc, db := setup(t)
	questions := seedPaper(db, 1, "A", "B")
	sub := seedSubmission(db, "stu-1", 1)

	answers := map[int]string{questions[0].ID: "A", questions[1].ID: "B"}
	res, err := svc.Submit(context.Background(), sub.ID, "stu-1", answers)
	assert.NoError(t, err)
	assert.Equal(t, 100.00, res.Score)

	// a second submit fails loudly: no re-score, no extra entries
	_, err = svc.Submit(context.Background(), sub.ID, "stu-1", map[int]string{questions[0].ID: "C"})
	assert.Equal(t, exam.ErrAlreadyCompleted, err)

	stored, err := svc.GetResult(context.Background(), sub.ID, "stu-1")
	assert.NoError(t, err)
	assert.Equal(t, 100.00, stored.Score)
	assert.Len(t, db.AnswerEntries(sub.ID), 2)
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	svc, db := setup(t)
	questions := seedPaper(db, 1, "A", "B", "C", "D")
	sub := seedSubmission(db, "stu-1", 1)

	answers := map[int]string{
		questions[0].ID: "A",
		questions[1].ID: "B",
		questions[2].ID: "C",
		questions[3].ID: "D",
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), sub.ID, "stu-1", answers)
		}()
	}
	wg.Wait()

	var completed, alreadyCompleted int
	for _, err := range errs {
		switch err {
		case nil:
			completed++
		case exam.ErrAlreadyCompleted:
			alreadyCompleted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, completed, "exactly one submit must win")
	assert.Equal(t, n-1, alreadyCompleted)
	assert.Len(t, db.AnswerEntries(sub.ID), 4, "exactly one set of answer entries")

	stored, err := svc.GetResult(context.Background(), sub.ID, "stu-1")
	assert.NoError(t, err)
	assert.Equal(t, 100.00, stored.Score)
}

func TestFilter(t *testing.T) {
	svc, db := setup(t)
	questions := seedPaper(db, 1, "A")
	done := seedSubmission(db, "stu-1", 1)
	pending := seedSubmission(db, "stu-1", 1)
	seedSubmission(db, "stu-2", 1)

	_, err := svc.Submit(context.Background(), done.ID, "stu-1", map[int]string{questions[0].ID: "A"})
	assert.NoError(t, err)

	all, err := svc.Filter(context.Background(), "stu-1", nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := svc.Filter(context.Background(), "stu-1", boolPtr(true))
	assert.NoError(t, err)
	if assert.Len(t, completed, 1) {
		assert.Equal(t, done.ID, completed[0].ID)
	}

	pendings, err := svc.Filter(context.Background(), "stu-1", boolPtr(false))
	assert.NoError(t, err)
	if assert.Len(t, pendings, 1) {
		assert.Equal(t, pending.ID, pendings[0].ID)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{3, 4, 75.00},
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100.00},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 6, 16.67},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exam.Score(tt.correct, tt.total), "Score(%d, %d)", tt.correct, tt.total)
	}
}

func boolPtr(b bool) *bool { return &b }
