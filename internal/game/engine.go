package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/config"
	"github.com/stemsi/quizlive-backend/internal/logger"
	"github.com/stemsi/quizlive-backend/internal/model"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

// User-facing notices. These travel as game:error / game:ended payloads.
const (
	msgNoActiveGame   = "No game is currently active."
	msgAlreadyStarted = "Game has already started."
	msgNicknameTaken  = "This nickname is already taken."
	msgNeedPlayers    = "You need at least one player to start."
	msgInvalidAnswer  = "Invalid answer option."
	msgNewGameStarted = "The host has started a new game."
	msgGameGone       = "The game you were in has ended."
	msgHostInactivity = "The game ended because the host was away too long."
)

// Engine owns the single process-wide session. All mutations are applied
// by one run loop consuming the command channel, so no two commands are
// ever mid-mutation concurrently; that serialization is what makes the
// no-double-answer check and the first-correct bonus race-free.
type Engine struct {
	cfg  *config.Config
	hub  Broadcaster
	log  zerolog.Logger
	now  func() time.Time
	cmds chan Command

	// Owned exclusively by the run loop.
	sess     *model.Session
	timer    *time.Timer
	timerGen uint64
}

// NewEngine wires an engine to its room. The clock is injectable for tests
// through newEngineWithClock.
func NewEngine(cfg *config.Config, hub Broadcaster, log zerolog.Logger) *Engine {
	return newEngineWithClock(cfg, hub, log, time.Now)
}

func newEngineWithClock(cfg *config.Config, hub Broadcaster, log zerolog.Logger, now func() time.Time) *Engine {
	queue := cfg.CommandQueueSize
	if queue <= 0 {
		queue = 256
	}
	return &Engine{
		cfg:  cfg,
		hub:  hub,
		log:  logger.Component(log, "game_engine"),
		now:  now,
		cmds: make(chan Command, queue),
	}
}

// Run consumes commands until the context is canceled. Call in a goroutine.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info().Msg("Engine started")
	for {
		select {
		case <-ctx.Done():
			e.disarmHostTimer()
			e.log.Info().Msg("Engine stopped")
			return
		case cmd := <-e.cmds:
			e.apply(cmd)
		}
	}
}

// Dispatch queues a command for the run loop. Handlers are bounded
// in-memory computations, so the queue drains quickly; Dispatch blocks
// only under extreme backlog.
func (e *Engine) Dispatch(cmd Command) {
	e.cmds <- cmd
}

// Snapshot returns the current projected view through the serialization
// point, so readers never observe a half-applied mutation.
func (e *Engine) Snapshot() *SessionView {
	reply := make(chan *SessionView, 1)
	e.cmds <- snapshotRequest{reply: reply}
	return <-reply
}

func (e *Engine) apply(cmd Command) {
	switch c := cmd.(type) {
	case GetState:
		c.Conn.Send(ws.EventGameUpdate, Project(e.sess))
	case HostCreate:
		e.handleHostCreate(c)
	case HostRejoin:
		e.handleHostRejoin(c)
	case TogglePause:
		e.handleTogglePause(c)
	case PlayerJoin:
		e.handlePlayerJoin(c)
	case PlayerRejoin:
		e.handlePlayerRejoin(c)
	case StartGame:
		e.handleStartGame(c)
	case PlayerAnswer:
		e.handlePlayerAnswer(c)
	case AdvanceGame:
		e.handleAdvanceGame(c)
	case Disconnected:
		e.handleDisconnected(c)
	case hostTimeout:
		e.handleHostTimeout(c)
	case snapshotRequest:
		c.reply <- Project(e.sess)
	}
}

// broadcast emits the freshly projected view to the whole room. Exactly
// one fan-out per mutation.
func (e *Engine) broadcast() {
	e.hub.Broadcast(ws.EventGameUpdate, Project(e.sess))
}

func (e *Engine) handleHostCreate(c HostCreate) {
	if e.sess != nil {
		e.hub.Broadcast(ws.EventGameEnded, msgNewGameStarted)
	}
	e.disarmHostTimer()

	e.sess = &model.Session{
		HostID:     c.HostID,
		HostConnID: c.Conn.ID(),
		Quiz:       c.Quiz,
		State:      model.StateLobby,
		Players:    make(map[string]*model.Player),
	}

	e.log.Info().
		Str("host_id", c.HostID).
		Str("conn_id", c.Conn.ID()).
		Int("questions", len(c.Quiz.Questions)).
		Msg("New game created")
	e.broadcast()
}

func (e *Engine) handleHostRejoin(c HostRejoin) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameEnded, msgGameGone)
		return
	}
	if e.sess.HostID != c.HostID {
		// Stale or superseded host identity; expected noise, not an error.
		return
	}

	e.sess.HostConnID = c.Conn.ID()
	e.disarmHostTimer()

	e.log.Info().Str("host_id", c.HostID).Str("conn_id", c.Conn.ID()).Msg("Host rejoined")
	c.Conn.Send(ws.EventGameUpdate, Project(e.sess))
	e.broadcast()
}

func (e *Engine) handlePlayerJoin(c PlayerJoin) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameError, msgNoActiveGame)
		return
	}
	if e.sess.State != model.StateLobby {
		c.Conn.Send(ws.EventGameError, msgAlreadyStarted)
		return
	}
	if existing, ok := e.sess.Players[c.PlayerID]; ok {
		// A repeat join with the same durable id is a reconnect, not a
		// new player; the nickname stays as originally admitted.
		existing.ConnID = c.Conn.ID()
		existing.Connected = true
		c.Conn.Send(ws.EventGameUpdate, Project(e.sess))
		e.broadcast()
		return
	}
	if e.sess.NicknameTaken(c.Nickname) {
		c.Conn.Send(ws.EventGameError, msgNicknameTaken)
		return
	}

	e.sess.Players[c.PlayerID] = &model.Player{
		ID:        c.PlayerID,
		ConnID:    c.Conn.ID(),
		Nickname:  c.Nickname,
		Connected: true,
		JoinedAt:  e.now(),
	}

	e.log.Info().Str("player_id", c.PlayerID).Str("nickname", c.Nickname).Msg("Player joined")
	e.broadcast()
}

func (e *Engine) handlePlayerRejoin(c PlayerRejoin) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameEnded, msgGameGone)
		return
	}
	p, ok := e.sess.Players[c.PlayerID]
	if !ok {
		c.Conn.Send(ws.EventGameEnded, msgGameGone)
		return
	}

	p.ConnID = c.Conn.ID()
	p.Connected = true

	e.log.Info().Str("player_id", p.ID).Str("nickname", p.Nickname).Msg("Player rejoined")
	// Direct reply first so the rejoining client does not wait for the
	// next state change, then the normal fan-out.
	c.Conn.Send(ws.EventGameUpdate, Project(e.sess))
	e.broadcast()
}

func (e *Engine) handleStartGame(c StartGame) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameError, msgNoActiveGame)
		return
	}
	if e.sess.HostConnID != c.Conn.ID() {
		return
	}
	if e.sess.State != model.StateLobby {
		return
	}
	if len(e.sess.Players) == 0 {
		c.Conn.Send(ws.EventGameError, msgNeedPlayers)
		return
	}

	e.sess.State = model.StateQuestion
	e.sess.QuestionStartedAt = e.now()
	e.sess.FirstCorrectClaimed = false

	e.log.Info().Int("players", len(e.sess.Players)).Msg("Game starting")
	e.broadcast()
}

func (e *Engine) handleTogglePause(c TogglePause) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameError, msgNoActiveGame)
		return
	}
	if e.sess.HostConnID != c.Conn.ID() {
		return
	}

	switch e.sess.State {
	case model.StatePaused:
		e.resume()
	case model.StateLobby, model.StateQuestion, model.StateRevealAnswer, model.StateLeaderboard:
		e.pause()
	default:
		// FINISHED is not pausable.
		return
	}
	e.broadcast()
}

func (e *Engine) pause() {
	s := e.sess
	s.StateBeforePause = s.State

	if s.State == model.StateQuestion {
		q := s.CurrentQuestion()
		limit := time.Duration(q.TimeLimit) * time.Second
		remaining := limit - e.now().Sub(s.QuestionStartedAt)
		if remaining < 0 {
			remaining = 0
		}
		s.RemainingAtPause = remaining
		s.HaveRemainingAtPause = true
	}

	s.State = model.StatePaused
	e.log.Info().Str("prior", string(s.StateBeforePause)).Msg("Pausing game")
}

func (e *Engine) resume() {
	s := e.sess
	prior := s.StateBeforePause

	if prior == model.StateQuestion && s.HaveRemainingAtPause {
		q := s.CurrentQuestion()
		limit := time.Duration(q.TimeLimit) * time.Second
		// Shift the start so the countdown continues seamlessly.
		s.QuestionStartedAt = e.now().Add(-(limit - s.RemainingAtPause))
	}

	s.State = prior
	s.StateBeforePause = ""
	s.RemainingAtPause = 0
	s.HaveRemainingAtPause = false
	e.log.Info().Str("state", string(prior)).Msg("Resuming game")
}

func (e *Engine) handlePlayerAnswer(c PlayerAnswer) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameError, msgNoActiveGame)
		return
	}
	if e.sess.State != model.StateQuestion {
		// Late answers after the phase changed are expected; drop quietly.
		return
	}
	p, ok := e.sess.Players[c.PlayerID]
	if !ok || p.ConnID != c.Conn.ID() {
		// Unknown id or a connection claiming someone else's identity.
		return
	}
	if p.Answered {
		// One answer per player per question; repeats are silently dropped.
		return
	}

	q := e.sess.CurrentQuestion()
	if c.AnswerIndex < 0 || c.AnswerIndex >= len(q.Options) {
		c.Conn.Send(ws.EventGameError, msgInvalidAnswer)
		return
	}

	idx := c.AnswerIndex
	p.Answered = true
	p.AnswerIndex = &idx

	awarded := 0
	if q.Options[idx].IsCorrect {
		limit := time.Duration(q.TimeLimit) * time.Second
		taken := e.now().Sub(e.sess.QuestionStartedAt)
		awarded = Award(taken, limit, e.cfg.ScoreDecayFactor)
		if e.cfg.FirstCorrectBonus > 0 && !e.sess.FirstCorrectClaimed {
			awarded += e.cfg.FirstCorrectBonus
			e.sess.FirstCorrectClaimed = true
		}
		p.Score += awarded
	}

	e.log.Debug().
		Str("nickname", p.Nickname).
		Int("answer_index", idx).
		Int("awarded", awarded).
		Msg("Answer recorded")
	e.broadcast()
}

func (e *Engine) handleAdvanceGame(c AdvanceGame) {
	if e.sess == nil {
		c.Conn.Send(ws.EventGameError, msgNoActiveGame)
		return
	}
	if e.sess.HostConnID != c.Conn.ID() {
		return
	}
	s := e.sess

	switch s.State {
	case model.StateQuestion:
		s.QuestionStartedAt = time.Time{}
		if e.cfg.RevealAnswerEnabled {
			s.State = model.StateRevealAnswer
		} else {
			s.State = model.StateLeaderboard
		}
	case model.StateRevealAnswer:
		s.State = model.StateLeaderboard
	case model.StateLeaderboard:
		if s.CurrentQuestionIndex < len(s.Quiz.Questions)-1 {
			s.CurrentQuestionIndex++
			s.State = model.StateQuestion
			s.QuestionStartedAt = e.now()
			s.FirstCorrectClaimed = false
			for _, p := range s.Players {
				p.Answered = false
				p.AnswerIndex = nil
			}
		} else {
			s.State = model.StateFinished
		}
	default:
		// LOBBY, PAUSED and FINISHED have no next phase; stray triggers
		// from a confused host client are tolerated silently.
		return
	}

	e.log.Info().
		Str("state", string(s.State)).
		Int("question_index", s.CurrentQuestionIndex).
		Msg("Game advanced")
	e.broadcast()
}

func (e *Engine) handleDisconnected(c Disconnected) {
	if e.sess == nil {
		return
	}

	if c.ConnID == e.sess.HostConnID {
		// The durable host id stays; only the handle is cleared. The game
		// survives until the inactivity timer fires.
		e.sess.HostConnID = ""
		e.armHostTimer()
		e.log.Info().Dur("timeout", e.cfg.HostInactivityTimeout).Msg("Host disconnected")
		e.broadcast()
		return
	}

	if p := e.sess.PlayerByConn(c.ConnID); p != nil {
		p.ConnID = ""
		p.Connected = false
		e.log.Info().Str("nickname", p.Nickname).Msg("Player disconnected")
		e.broadcast()
	}
}

func (e *Engine) handleHostTimeout(c hostTimeout) {
	if e.sess == nil || c.generation != e.timerGen {
		return
	}
	if e.sess.HostConnID != "" {
		// Host came back between the timer firing and this command being
		// applied; the rejoin already bumped the generation, but keep the
		// identity check as a second guard.
		return
	}

	e.log.Warn().Str("host_id", e.sess.HostID).Msg("Host inactivity timeout, tearing down session")
	e.sess = nil
	e.timer = nil
	e.hub.Broadcast(ws.EventGameEnded, msgHostInactivity)
	e.broadcast()
}
