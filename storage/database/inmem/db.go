package inmemdb

import (
	"sync"

	"github.com/trezcool/mtihani/core/exam"
)

// DB is an in-memory stand-in for the exam store, for tests and local dev.
type DB struct {
	mutex       sync.RWMutex
	questionPK  int
	questions   map[int]*exam.Question
	submPK      int
	submissions map[int]*exam.Submission
	entryPK     int
	entries     map[int][]exam.AnswerEntry // keyed by submission ID
}

func Open() *DB {
	return &DB{
		questions:   make(map[int]*exam.Question),
		submissions: make(map[int]*exam.Submission),
		entries:     make(map[int][]exam.AnswerEntry),
	}
}

// CreateQuestion seeds a question; callers set is_active explicitly.
func (db *DB) CreateQuestion(q exam.Question) exam.Question {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.questionPK++
	q.ID = db.questionPK
	db.questions[q.ID] = &q
	return q
}

// CreateSubmission seeds a pending submission.
func (db *DB) CreateSubmission(sub exam.Submission) exam.Submission {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.submPK++
	sub.ID = db.submPK
	db.submissions[sub.ID] = &sub
	return sub
}

// AnswerEntries returns the stored entries for a submission.
func (db *DB) AnswerEntries(submissionID int) []exam.AnswerEntry {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	res := make([]exam.AnswerEntry, len(db.entries[submissionID]))
	copy(res, db.entries[submissionID])
	return res
}
