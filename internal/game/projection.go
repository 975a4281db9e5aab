package game

import (
	"sort"

	"github.com/stemsi/quizlive-backend/internal/model"
)

// OptionView is an option as clients may see it. IsCorrect is omitted
// entirely while the question is live.
type OptionView struct {
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// QuestionView mirrors model.Question with redactable options.
type QuestionView struct {
	Text      string       `json:"text"`
	TimeLimit int          `json:"timeLimit"`
	Options   []OptionView `json:"options"`
}

// QuizView mirrors model.Quiz for broadcast.
type QuizView struct {
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

// PlayerView is one player's public record, ordered for display.
type PlayerView struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	Score       int    `json:"score"`
	Answered    bool   `json:"answered"`
	AnswerIndex *int   `json:"answerIndex"`
	Connected   bool   `json:"connected"`
}

// SessionView is the client-visible session. It matches the internal
// session except that option correctness is stripped while a question is
// live and the players map becomes an ordered list.
type SessionView struct {
	HostID               string          `json:"hostId"`
	HostConnected        bool            `json:"hostConnected"`
	State                model.GameState `json:"state"`
	Quiz                 QuizView        `json:"quiz"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	QuestionStartedAt    *int64          `json:"questionStartedAt"` // epoch millis
	Players              []PlayerView    `json:"players"`
	StateBeforePause     model.GameState `json:"stateBeforePause,omitempty"`
	TimeRemainingOnPause *int64          `json:"timeRemainingOnPause,omitempty"` // millis
	// AnswerCounts tallies answers per option of the current question,
	// present only during REVEAL_ANSWER.
	AnswerCounts []int `json:"answerCounts,omitempty"`
}

// Project derives the client-visible view of a session. It is pure and is
// called before every broadcast and direct reply. A nil session projects
// to nil, which serializes as a JSON null payload.
func Project(s *model.Session) *SessionView {
	if s == nil {
		return nil
	}

	// Correctness stays hidden while a question is live, including while
	// paused mid-question: resuming returns straight to QUESTION.
	hidden := s.State == model.StateQuestion ||
		(s.State == model.StatePaused && s.StateBeforePause == model.StateQuestion)

	view := &SessionView{
		HostID:               s.HostID,
		HostConnected:        s.HostConnID != "",
		State:                s.State,
		Quiz:                 projectQuiz(s.Quiz, hidden),
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		Players:              projectPlayers(s.Players),
		StateBeforePause:     s.StateBeforePause,
	}

	if !s.QuestionStartedAt.IsZero() {
		ms := s.QuestionStartedAt.UnixMilli()
		view.QuestionStartedAt = &ms
	}
	if s.State == model.StatePaused && s.HaveRemainingAtPause {
		ms := s.RemainingAtPause.Milliseconds()
		view.TimeRemainingOnPause = &ms
	}
	if s.State == model.StateRevealAnswer {
		view.AnswerCounts = tallyAnswers(s)
	}

	return view
}

func projectQuiz(q model.Quiz, hidden bool) QuizView {
	view := QuizView{
		Title:     q.Title,
		Questions: make([]QuestionView, len(q.Questions)),
	}
	for i, question := range q.Questions {
		qv := QuestionView{
			Text:      question.Text,
			TimeLimit: question.TimeLimit,
			Options:   make([]OptionView, len(question.Options)),
		}
		for j, opt := range question.Options {
			ov := OptionView{Text: opt.Text}
			if !hidden {
				correct := opt.IsCorrect
				ov.IsCorrect = &correct
			}
			qv.Options[j] = ov
		}
		view.Questions[i] = qv
	}
	return view
}

func projectPlayers(players map[string]*model.Player) []PlayerView {
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		view := PlayerView{
			ID:        p.ID,
			Nickname:  p.Nickname,
			Score:     p.Score,
			Answered:  p.Answered,
			Connected: p.Connected,
		}
		if p.AnswerIndex != nil {
			idx := *p.AnswerIndex
			view.AnswerIndex = &idx
		}
		views = append(views, view)
	}
	// Join order for display; map iteration order is not stable.
	sort.Slice(views, func(i, j int) bool {
		pi, pj := players[views[i].ID], players[views[j].ID]
		if !pi.JoinedAt.Equal(pj.JoinedAt) {
			return pi.JoinedAt.Before(pj.JoinedAt)
		}
		return views[i].Nickname < views[j].Nickname
	})
	return views
}

func tallyAnswers(s *model.Session) []int {
	q := s.CurrentQuestion()
	if q == nil {
		return nil
	}
	counts := make([]int, len(q.Options))
	for _, p := range s.Players {
		if p.Answered && p.AnswerIndex != nil && *p.AnswerIndex < len(counts) {
			counts[*p.AnswerIndex]++
		}
	}
	return counts
}
