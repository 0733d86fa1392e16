package exam

import "time"

// UnansweredChoice marks a question the student never answered.
const UnansweredChoice = "E"

// Question is one MCQ from the question bank, owned by a paper.
type Question struct {
	ID       int    `db:"id" json:"id"`
	PaperID  int    `db:"paper_id" json:"paper_id"`
	Text     string `db:"question" json:"question"`
	OptionA  string `db:"option_a" json:"option_a"`
	OptionB  string `db:"option_b" json:"option_b"`
	OptionC  string `db:"option_c" json:"option_c"`
	OptionD  string `db:"option_d" json:"option_d"`
	Answer   string `db:"answer" json:"-"` // correct option letter; never serialized out
	MaxMarks int    `db:"max_marks" json:"max_marks"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Submission is the durable record of one student's attempt at one exam.
// Its only state transition is pending -> completed, exactly once; score and
// completion are immutable afterwards.
type Submission struct {
	ID        int       `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ExamName  string    `db:"exam_name" json:"exam_name"`
	PaperID   int       `db:"paper_id" json:"paper_id"`
	Score     float64   `db:"score" json:"score"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// AnswerEntry is the immutable per-question scoring artifact. It snapshots the
// question as it existed at scoring time so later edits to the question bank
// cannot rewrite history.
type AnswerEntry struct {
	ID           int       `db:"id" json:"id"`
	SubmissionID int       `db:"submission_id" json:"submission_id"`
	QuestionID   int       `db:"question_id" json:"question_id"`
	Question     string    `db:"question" json:"question"`
	OptionA      string    `db:"option_a" json:"option_a"`
	OptionB      string    `db:"option_b" json:"option_b"`
	OptionC      string    `db:"option_c" json:"option_c"`
	OptionD      string    `db:"option_d" json:"option_d"`
	Answer       string    `db:"answer" json:"answer"` // correct option snapshot
	Choice       string    `db:"choice" json:"choice"` // student's pick, "E" if unanswered
	Correct      bool      `db:"correct" json:"correct"`
	AnsweredAt   time.Time `db:"answered_at" json:"answered_at"` // UTC
}

// Result is the scoring outcome returned to the boundary layer.
type Result struct {
	ExamID    int     `json:"exam_id"`
	Score     float64 `json:"score"` // 0-100, 2 decimal places
	Completed bool    `json:"completed"`
}
