package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"quizboard/internal/app"
	"quizboard/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type submittedPayload struct {
	ResultID string `json:"resultId"`
}

// ServeWS upgrades the request and streams snapshots of one session. Clients
// may drive the session with begin, answer, next, previous and submit messages.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, err := h.quizzes.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// only the writer goroutine touches the connection for writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					// session closed; unblock the reader
					_ = conn.SetReadDeadline(time.Now())
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: snap}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r.Context(), session, inbound, reply); err != nil {
			reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *Handler) dispatch(ctx context.Context, session *app.Session, in inboundMessage, reply func(outboundMessage[any])) error {
	var err error
	switch in.Type {
	case "begin":
		var identity domain.Identity
		if err := json.Unmarshal(in.Payload, &identity); err != nil {
			return domain.NewValidationError("payload", "invalid begin payload")
		}
		_, err = session.Begin(identity)
	case "answer":
		var req answerRequest
		if err := json.Unmarshal(in.Payload, &req); err != nil || req.OptionIndex == nil {
			return domain.NewValidationError("optionIndex", "invalid answer payload")
		}
		_, err = session.SelectAnswer(*req.OptionIndex)
	case "next":
		_, err = session.Advance()
	case "previous":
		_, err = session.Retreat()
	case "submit":
		var resultID string
		resultID, err = session.Submit(context.WithoutCancel(ctx))
		if err == nil {
			reply(outboundMessage[any]{Type: "submitted", Payload: submittedPayload{ResultID: resultID}})
		}
	default:
		return domain.NewValidationError("type", "unsupported message type")
	}
	return err
}
