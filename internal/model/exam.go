package model

// ExamSettings tells clients how to configure their session.
type ExamSettings struct {
	DurationSeconds int  `json:"durationSeconds"`
	MaxWarnings     int  `json:"maxWarnings"`
	WebcamRequired  bool `json:"webcamRequired"`
}

// QuestionsResponse is the body of GET /api/questions.
type QuestionsResponse struct {
	Questions []SanitizedQuestion `json:"questions"`
	Exam      *ExamSettings       `json:"exam,omitempty"`
}

// AdminLoginRequest is the admin login payload. A missing password is treated
// as a wrong one, so it carries no required tag.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"max=200"`
}
