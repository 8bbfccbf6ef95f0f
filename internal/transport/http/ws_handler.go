package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"globent-quiz-service/internal/app"
	"globent-quiz-service/internal/play"
	"github.com/gorilla/websocket"
)

// PlayRegistry tracks live sessions so shutdown can stop their timers.
type PlayRegistry interface {
	Add(s *play.Session) string
	Remove(id string)
	Len() int
}

// sharedRegistry is implemented by registries that can count the sessions of
// every service instance, not just this one.
type sharedRegistry interface {
	Live(ctx context.Context) (int, error)
}

// WSHandler runs one isolated play session per websocket connection.
type WSHandler struct {
	service     *app.QuizService
	authn       Authenticator
	registry    PlayRegistry
	revealDelay time.Duration
	clock       play.Clock
	log         *slog.Logger
	upgrader    websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, authn Authenticator, registry PlayRegistry, revealDelay time.Duration, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		service:     service,
		authn:       authn,
		registry:    registry,
		revealDelay: revealDelay,
		clock:       play.SystemClock(),
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// LiveSessions reports how many sessions this instance is running.
func (h *WSHandler) LiveSessions() int {
	return h.registry.Len()
}

// ClusterSessions counts sessions across all instances when the registry is
// shared. ok is false for local registries or when the count fails.
func (h *WSHandler) ClusterSessions(ctx context.Context) (n int, ok bool) {
	shared, isShared := h.registry.(sharedRegistry)
	if !isShared {
		return 0, false
	}
	n, err := shared.Live(ctx)
	if err != nil {
		h.log.Warn("count shared play sessions", "error", err)
		return 0, false
	}
	return n, true
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	AnswerID string `json:"answerId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS resolves and prepares the quiz before upgrading, so lookup and
// data errors are plain HTTP responses. Query: pin or quizId, name, and for
// hosts mode=host with a token (or Authorization header) of the owner.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := play.ModePlayer
	if q.Get("mode") == string(play.ModeHost) {
		mode = play.ModeHost
	}

	playable, err := h.resolve(r, mode)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := play.NewSession(playable, play.Options{
		Clock:       h.clock,
		RevealDelay: h.revealDelay,
		Mode:        mode,
		PlayerName:  strings.TrimSpace(q.Get("name")),
	})
	id := h.registry.Add(session)
	defer h.registry.Remove(id)
	defer session.Close()
	h.log.Info("play session opened", "session_id", id, "quiz_id", playable.QuizID, "mode", mode)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections allow only one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	go func() {
		defer close(updatesDone)
		updates := session.Updates()
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					// closed from outside, e.g. server shutdown; unblock the reader
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
						time.Now().Add(time.Second))
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(session, inbound); err != nil {
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	h.log.Info("play session closed", "session_id", id, "score", session.Score())
}

var errUnsupportedMessage = errors.New("unsupported message type")

func (h *WSHandler) dispatch(session *play.Session, msg inboundMessage) error {
	switch msg.Type {
	case "join", "start":
		return session.Start()
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.AnswerID == "" {
			return errors.New("invalid answer payload")
		}
		_, err := session.Select(payload.AnswerID)
		return err
	case "next":
		return session.Next()
	default:
		return errUnsupportedMessage
	}
}

// resolve fetches and prepares the quiz. Hosts must own the quiz they run.
func (h *WSHandler) resolve(r *http.Request, mode play.Mode) (play.Playable, error) {
	q := r.URL.Query()
	if mode != play.ModeHost {
		return h.service.Playable(r.Context(), q.Get("pin"), q.Get("quizId"))
	}

	header := r.Header.Get("Authorization")
	if token := q.Get("token"); token != "" {
		header = "Bearer " + token
	}
	userID, err := h.authn.Authenticate(header)
	if err != nil {
		return play.Playable{}, err
	}
	quizID := q.Get("quizId")
	if quizID == "" {
		quiz, err := h.service.GetByPIN(r.Context(), q.Get("pin"))
		if err != nil {
			return play.Playable{}, err
		}
		quizID = quiz.ID
	}
	quiz, err := h.service.Host(r.Context(), userID, quizID)
	if err != nil {
		return play.Playable{}, err
	}
	return play.Prepare(quiz)
}
