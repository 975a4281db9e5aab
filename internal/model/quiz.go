package model

// Option is a single answer choice. IsCorrect is server-private while a
// question is open; the projection layer decides when it may be serialized.
type Option struct {
	Text      string `json:"text" validate:"required,max=200"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is one timed multiple-choice question. Option order is
// significant: the option's position is the answer index.
type Question struct {
	Text      string   `json:"text" validate:"required,max=500"`
	TimeLimit int      `json:"timeLimit" validate:"required,min=1,max=600"` // seconds
	Options   []Option `json:"options" validate:"required,min=2,max=4,dive"`
}

// Quiz is an immutable ordered list of questions. It is supplied by the
// host on game creation and never mutated for the session's lifetime.
type Quiz struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Questions []Question `json:"questions" validate:"required,min=1,max=100,dive"`
}
