package exam

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

var (
	// errors
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyCompleted   = errors.New("exam already completed")
)

type (
	QuestionRepository interface {
		// GetPaperQuestions returns the active questions of a paper, stable order.
		GetPaperQuestions(ctx context.Context, paperID int) ([]Question, error)
	}

	SubmissionRepository interface {
		GetSubmission(ctx context.Context, id int, studentID string) (Submission, error)
		// FilterSubmissions lists a student's submissions; completed=nil means all.
		FilterSubmissions(ctx context.Context, studentID string, completed *bool) ([]Submission, error)
		// CompleteSubmission transitions pending -> completed and persists the score
		// and answer entries in a single atomic unit of work. It must reject a
		// submission that is no longer pending with ErrAlreadyCompleted; the guard has
		// to live in the store (compare-and-swap on the completed flag), not up here,
		// since two concurrent submits for the same record are a realistic race.
		CompleteSubmission(ctx context.Context, id int, score float64, entries []AnswerEntry) (Submission, error)
	}

	Service struct {
		questions   QuestionRepository
		submissions SubmissionRepository
		logger      core.Logger
	}
)

func NewService(questions QuestionRepository, submissions SubmissionRepository, logger core.Logger) *Service {
	return &Service{questions: questions, submissions: submissions, logger: logger}
}

// Submit scores a student's answers against the paper's answer key and commits the
// result exactly once. answers maps question ID to the chosen option letter; a
// question missing from the map is treated as unanswered (incorrect).
func (svc *Service) Submit(ctx context.Context, id int, studentID string, answers map[int]string) (Result, error) {
	sub, err := svc.submissions.GetSubmission(ctx, id, studentID)
	if err != nil {
		if errors.Cause(err) == ErrSubmissionNotFound {
			return Result{}, ErrSubmissionNotFound
		}
		return Result{}, errors.Wrap(err, "getting submission")
	}
	if sub.Completed {
		return Result{}, ErrAlreadyCompleted
	}

	questions, err := svc.questions.GetPaperQuestions(ctx, sub.PaperID)
	if err != nil {
		return Result{}, errors.Wrap(err, "loading paper questions")
	}

	now := time.Now().UTC()
	var correct int
	entries := make([]AnswerEntry, 0, len(questions))
	for _, q := range questions {
		choice, answered := answers[q.ID]
		if !answered {
			choice = UnansweredChoice
		}
		isCorrect := answered && choice == q.Answer
		if isCorrect {
			correct++
		}
		entries = append(entries, AnswerEntry{
			SubmissionID: sub.ID,
			QuestionID:   q.ID,
			Question:     q.Text,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			Answer:       q.Answer,
			Choice:       choice,
			Correct:      isCorrect,
			AnsweredAt:   now,
		})
	}

	sub, err = svc.submissions.CompleteSubmission(ctx, sub.ID, Score(correct, len(questions)), entries)
	if err != nil {
		if errors.Cause(err) == ErrAlreadyCompleted {
			return Result{}, ErrAlreadyCompleted
		}
		return Result{}, errors.Wrap(err, "completing submission")
	}

	svc.logger.Info("exam submitted", map[string]interface{}{
		"submission": sub.ID, "student": studentID, "score": sub.Score,
	})
	return Result{ExamID: sub.ID, Score: sub.Score, Completed: sub.Completed}, nil
}

// GetResult returns a student's submission by ID.
func (svc *Service) GetResult(ctx context.Context, id int, studentID string) (Submission, error) {
	return svc.submissions.GetSubmission(ctx, id, studentID)
}

// Filter lists a student's submissions, optionally by completion status.
func (svc *Service) Filter(ctx context.Context, studentID string, completed *bool) ([]Submission, error) {
	return svc.submissions.FilterSubmissions(ctx, studentID, completed)
}

// Score computes the percentage of correct answers, rounded to 2 decimal places.
// An empty paper scores 0 by definition.
func Score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
