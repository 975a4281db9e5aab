package model

import (
	"strings"
	"time"
)

// GameState enumerates session lifecycle states.
type GameState string

const (
	StateLobby        GameState = "LOBBY"
	StateQuestion     GameState = "QUESTION"
	StateRevealAnswer GameState = "REVEAL_ANSWER"
	StateLeaderboard  GameState = "LEADERBOARD"
	StateFinished     GameState = "FINISHED"
	StatePaused       GameState = "PAUSED"
)

// Player is one participant's durable record. ID is client-generated and
// survives reconnects; ConnID is the volatile connection handle and is
// rebound on every player:rejoin.
type Player struct {
	ID          string
	ConnID      string
	Nickname    string
	Score       int
	Answered    bool
	AnswerIndex *int
	Connected   bool
	JoinedAt    time.Time // display ordering only
}

// Session is the single active trivia game and all its mutable state.
// Only the game engine's run loop may touch it.
type Session struct {
	HostID     string
	HostConnID string // empty while the host is offline
	Quiz       Quiz
	State      GameState
	// CurrentQuestionIndex is a valid index into Quiz.Questions whenever
	// State is QUESTION, REVEAL_ANSWER, or LEADERBOARD.
	CurrentQuestionIndex int
	// QuestionStartedAt is non-zero exactly while State == QUESTION, or
	// while paused out of QUESTION (frozen value, not advancing).
	QuestionStartedAt time.Time
	Players           map[string]*Player
	// Pause snapshot; both zero-valued unless State == PAUSED.
	StateBeforePause     GameState
	RemainingAtPause     time.Duration
	HaveRemainingAtPause bool // only set when pausing out of QUESTION
	// FirstCorrectClaimed marks the per-question speed bonus as taken.
	FirstCorrectClaimed bool
}

// CurrentQuestion returns the question under the cursor, or nil when the
// cursor is not meaningful in the current state.
func (s *Session) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Quiz.Questions) {
		return nil
	}
	return &s.Quiz.Questions[s.CurrentQuestionIndex]
}

// PlayerByConn finds the player bound to a connection handle, or nil.
func (s *Session) PlayerByConn(connID string) *Player {
	for _, p := range s.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// NicknameTaken reports whether a nickname is already held, compared
// case-insensitively, by any player ever admitted to this session.
func (s *Session) NicknameTaken(nickname string) bool {
	for _, p := range s.Players {
		if strings.EqualFold(p.Nickname, nickname) {
			return true
		}
	}
	return false
}
