package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"vize-study-service/internal/app"
	"vize-study-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler exposes the study session surface over a websocket. It is the
// only way a UI collaborator reaches the core; no state is read or written
// outside the service's operations.
type WSHandler struct {
	service  *app.StudyService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.StudyService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startPayload struct {
	Mode   string `json:"mode"`
	Konu   string `json:"konu"`
	Zorluk string `json:"zorluk"`
	Count  int    `json:"count"`
}

type quizPayload struct {
	Mode      string            `json:"mode"`
	Questions []domain.Question `json:"questions"`
}

type answerPayload struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
}

type answerResult struct {
	QuestionID   string `json:"questionId"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Aciklama     string `json:"aciklama,omitempty"`
}

type summaryPayload struct {
	domain.Summary
	Streak   domain.Streak `json:"streak"`
	DueCount int           `json:"dueCount"`
}

type sessionPayload struct {
	Streak       domain.Streak   `json:"streak"`
	MistakeCount int             `json:"mistakeCount"`
	DueCount     int             `json:"dueCount"`
	Settings     domain.Settings `json:"settings"`
}

type mistakePayload struct {
	QuestionID string `json:"questionId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives the study loop:
// start builds a quiz, answer records one pick, finish closes the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.writeSession(conn)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "invalid start payload")
				continue
			}
			questions, err := h.service.BuildQuiz(r.Context(), payload.Mode, app.QuizOptions{
				Konu:   payload.Konu,
				Zorluk: payload.Zorluk,
				Count:  payload.Count,
			})
			if err != nil {
				writeError(conn, err.Error())
				continue
			}
			write(conn, "quiz", quizPayload{Mode: payload.Mode, Questions: questions})
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "invalid answer payload")
				continue
			}
			correct, err := h.service.AddAnswer(r.Context(), payload.QuestionID, payload.SelectedIndex)
			if err != nil {
				if errors.Is(err, domain.ErrNoActiveQuiz) || errors.Is(err, domain.ErrQuestionNotInQuiz) {
					writeError(conn, err.Error())
					continue
				}
				writeError(conn, "answer failed")
				continue
			}
			result := answerResult{QuestionID: payload.QuestionID, Correct: correct}
			if quiz, ok := h.service.CurrentQuiz(); ok {
				for _, q := range quiz.Questions {
					if q.ID == payload.QuestionID {
						result.CorrectIndex = q.DogruCevapIndex
						if h.service.UserSession().Settings.ShowExplanationImmediately {
							result.Aciklama = q.Aciklama
						}
						break
					}
				}
			}
			write(conn, "answerResult", result)
		case "finish":
			summary := h.service.FinishQuiz(r.Context())
			session := h.service.UserSession()
			write(conn, "summary", summaryPayload{
				Summary:  summary,
				Streak:   session.Streak,
				DueCount: len(h.service.DueQuestionIDs(time.Now())),
			})
		case "removeMistake":
			var payload mistakePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "invalid mistake payload")
				continue
			}
			h.service.RemoveMistake(r.Context(), payload.QuestionID)
			h.writeSession(conn)
		case "updateSettings":
			var patch domain.SettingsPatch
			if err := json.Unmarshal(inbound.Payload, &patch); err != nil {
				writeError(conn, "invalid settings payload")
				continue
			}
			h.service.UpdateSettings(r.Context(), patch)
			h.writeSession(conn)
		default:
			writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) writeSession(conn *websocket.Conn) {
	session := h.service.UserSession()
	write(conn, "session", sessionPayload{
		Streak:       session.Streak,
		MistakeCount: len(session.MistakeBank),
		DueCount:     len(h.service.DueQuestionIDs(time.Now())),
		Settings:     session.Settings,
	})
}

func write[T any](conn *websocket.Conn, msgType string, payload T) {
	if err := conn.WriteJSON(outboundMessage[T]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func writeError(conn *websocket.Conn, message string) {
	write(conn, "error", errorPayload{Message: message})
}
