package repository

import "github.com/stemsi/exstem-proctor/internal/model"

// SeedQuestions is written to an empty data directory on first start.
func SeedQuestions() []model.Question {
	return []model.Question{
		{
			ID:       1,
			Question: "Which HTML tag is used to include JavaScript code?",
			Options:  []string{"<script>", "<js>", "<javascript>", "<code>"},
			Correct:  "A",
		},
		{
			ID:       2,
			Question: "Which HTTP method is generally used to create a new resource?",
			Options:  []string{"GET", "POST", "PUT", "DELETE"},
			Correct:  "B",
		},
		{
			ID:       3,
			Question: "Which of the following is NOT a JavaScript data type?",
			Options:  []string{"Number", "String", "Float", "Boolean"},
			Correct:  "C",
		},
	}
}
