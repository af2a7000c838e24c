// Package chat relays user questions to a completion model, grounding each
// answer in the most relevant notes of the current collection.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/remote"
	"github.com/starford/lumen/internal/search"
)

const (
	// MaxSources is how many context notes are attached to an answer.
	MaxSources = 3
	// DefaultContextNotes is how many notes are quoted in the prompt.
	DefaultContextNotes = 5

	excerptRunes = 1200
	historyTurns = 10
)

const systemPrompt = `You are a personal knowledge assistant. Answer using the user's notes quoted below when they are relevant, cite note titles you rely on, and say so plainly when the notes do not cover the question.`

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source is a note an answer was grounded on.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Message is one entry of the conversation.
type Message struct {
	ID        string    `json:"id"`
	Type      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
}

// Completer produces a model reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, messages []remote.Message) (string, error)
}

// NoteSource exposes the current note collection.
type NoteSource interface {
	All() []models.Note
}

// Service holds one conversation.
type Service struct {
	completer    Completer
	notes        NoteSource
	logger       *slog.Logger
	contextNotes int
	now          func() time.Time

	mu       sync.Mutex
	messages []Message
}

// NewService creates a chat service. contextNotes <= 0 uses
// DefaultContextNotes.
func NewService(c Completer, notes NoteSource, logger *slog.Logger, contextNotes int) *Service {
	if contextNotes <= 0 {
		contextNotes = DefaultContextNotes
	}
	return &Service{
		completer:    c,
		notes:        notes,
		logger:       logger,
		contextNotes: contextNotes,
		now:          time.Now,
		messages:     []Message{},
	}
}

// Send appends the user's message, asks the model and appends its reply.
// On failure an error message is appended and the error returned.
func (s *Service) Send(ctx context.Context, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, fmt.Errorf("chat: empty message")
	}

	s.mu.Lock()
	history := append([]Message(nil), s.messages...)
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Type:      RoleUser,
		Content:   content,
		Timestamp: s.now(),
	})
	s.mu.Unlock()

	relevant := search.Search(content, s.notes.All())
	if len(relevant) > s.contextNotes {
		relevant = relevant[:s.contextNotes]
	}

	reply, err := s.completer.Complete(ctx, buildPrompt(history, relevant, content))
	if err != nil {
		s.logger.Error("chat: completion failed", slog.String("error", err.Error()))
		s.appendReply(Message{Content: "The assistant could not answer: " + err.Error(), IsError: true})
		return Message{}, fmt.Errorf("chat: complete: %w", err)
	}

	msg := s.appendReply(Message{Content: reply, Sources: sources(relevant)})
	s.logger.Debug("chat: answered", slog.Int("sources", len(msg.Sources)))
	return msg, nil
}

func (s *Service) appendReply(m Message) Message {
	m.ID = uuid.NewString()
	m.Type = RoleAssistant
	m.Timestamp = s.now()
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return m
}

// Messages returns a copy of the conversation.
func (s *Service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear drops the conversation.
func (s *Service) Clear() {
	s.mu.Lock()
	s.messages = []Message{}
	s.mu.Unlock()
}

func sources(results []models.SearchResult) []Source {
	n := min(len(results), MaxSources)
	out := make([]Source, 0, n)
	for _, r := range results[:n] {
		out = append(out, Source{ID: r.Note.ID, Title: r.Note.Title, Path: r.Note.Path})
	}
	return out
}

func buildPrompt(history []Message, relevant []models.SearchResult, question string) []remote.Message {
	var sys strings.Builder
	sys.WriteString(systemPrompt)
	if len(relevant) > 0 {
		sys.WriteString("\n\nNotes:\n")
		for _, r := range relevant {
			fmt.Fprintf(&sys, "\n## %s\n%s\n", r.Note.Title, excerpt(r.Note.Content))
		}
	}

	msgs := []remote.Message{{Role: "system", Content: sys.String()}}

	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	for _, m := range history {
		if m.IsError {
			continue
		}
		msgs = append(msgs, remote.Message{Role: string(m.Type), Content: m.Content})
	}
	return append(msgs, remote.Message{Role: "user", Content: question})
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}
