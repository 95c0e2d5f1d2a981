package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"escape-quiz-service/internal/app"
	"escape-quiz-service/internal/domain"
	"escape-quiz-service/internal/speech"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	synth    speech.Synthesizer
	upgrader websocket.Upgrader
}

// NewWSHandler wires a connection into the game use cases. synth may be
// nil, in which case no audio frames are emitted.
func NewWSHandler(service *app.GameService, synth speech.Synthesizer) *WSHandler {
	return &WSHandler{
		service: service,
		synth:   synth,
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

type unlockPayload struct {
	Pin string `json:"pin"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type statePayload struct {
	Lines     []domain.Line   `json:"lines"`
	Progress  domain.Progress `json:"progress"`
	Completed bool            `json:"completed"`
}

type audioPayload struct {
	Text string `json:"text"`
	Mime string `json:"mime"`
	Data []byte `json:"data"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one player
// session over the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	scriptID := r.URL.Query().Get("scriptId")
	if sessionID == "" || scriptID == "" {
		http.Error(w, "missing sessionId or scriptId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	opened, err := h.service.Open(r.Context(), sessionID, scriptID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var speakers sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// enqueue gives up once the writer is gone so a full buffer cannot
	// wedge the read loop.
	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	enqueue(stateMessage(opened))

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var reply domain.Reply
		switch inbound.Type {
		case "unlock":
			var payload unlockPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !enqueue(errorMessage("bad_payload", "invalid unlock payload")) {
					break readLoop
				}
				continue
			}
			reply, err = h.service.Unlock(r.Context(), sessionID, payload.Pin)
		case "begin":
			reply, err = h.service.Begin(r.Context(), sessionID)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !enqueue(errorMessage("bad_payload", "invalid answer payload")) {
					break readLoop
				}
				continue
			}
			reply, err = h.service.Submit(r.Context(), sessionID, payload.Text)
		case "restart":
			h.service.Restart(r.Context(), sessionID)
			reply, err = h.service.Open(r.Context(), sessionID, scriptID)
		default:
			if !enqueue(errorMessage("unsupported", "unsupported message type")) {
				break readLoop
			}
			continue
		}
		if err != nil {
			if !enqueue(errorMessage(errorCode(err), err.Error())) {
				break readLoop
			}
			continue
		}

		if !enqueue(stateMessage(reply)) {
			break readLoop
		}
		h.speak(reply.Lines, send, closeSignals, writerDone, &speakers)
	}

	close(closeSignals)
	speakers.Wait()
	close(send)
	<-writerDone
}

// speak synthesizes the master's lines off the read loop. Failures are
// logged and dropped; the transcript already carries the text.
func (h *WSHandler) speak(lines []domain.Line, send chan<- outboundMessage[any], closeSignals, writerDone <-chan struct{}, speakers *sync.WaitGroup) {
	if h.synth == nil {
		return
	}
	for _, line := range lines {
		if line.Speaker != domain.SpeakerMaster {
			continue
		}
		speakers.Add(1)
		go func(text string) {
			defer speakers.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			data, mime, err := h.synth.Synthesize(ctx, text)
			if err != nil {
				log.Printf("tts failed for line: %v", err)
				return
			}
			select {
			case send <- outboundMessage[any]{Type: "audio", Payload: audioPayload{Text: text, Mime: mime, Data: data}}:
			case <-closeSignals:
			case <-writerDone:
			}
		}(line.Text)
	}
}

func stateMessage(reply domain.Reply) outboundMessage[any] {
	return outboundMessage[any]{Type: "state", Payload: statePayload{
		Lines:     reply.Lines,
		Progress:  reply.Progress,
		Completed: reply.Completed,
	}}
}

func errorMessage(code, message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: code, Message: message}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrWrongPin):
		return "wrong_pin"
	case errors.Is(err, domain.ErrStageLocked):
		return "locked"
	case errors.Is(err, domain.ErrNotQuizzing):
		return "not_quizzing"
	case errors.Is(err, domain.ErrScriptNotFound):
		return "script_not_found"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal"
	}
}
