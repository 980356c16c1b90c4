// Package assistant answers member questions about the club through an
// upstream language model. It is stateless: conversation history is supplied
// by the caller on every request and never persisted server-side.
package assistant

import (
	"context"
	"errors"
	"strings"

	"example.com/club/internal/domain"
)

// maxMessageLen bounds a single member message.
const maxMessageLen = 1000

const persona = `You are a helpful assistant for a student community club. Provide concise and relevant answers about the club's activities, membership, events, and other related information. When you answer, only use text and not markdowns. If you don't know the answer, respond with "I'm sorry, I don't have that information at the moment."`

const fallbackReply = "I'm sorry, I don't have that information at the moment."

// ErrUnavailable hides upstream model failures behind a generic signal.
var ErrUnavailable = errors.New("assistant is unavailable")

// Turn is one prior exchange supplied by the caller.
type Turn struct {
	Role string
	Text string
}

// Prompt is the fully assembled model input.
type Prompt struct {
	Instruction string
	Temperature float64
	History     []Turn
	Message     string
}

// ModelInvoker generates a reply for a prompt. Implementations wrap a
// specific provider API.
type ModelInvoker interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Service validates member messages and relays them to the model.
type Service struct {
	model ModelInvoker
}

// NewService constructs a Service.
func NewService(model ModelInvoker) *Service {
	return &Service{model: model}
}

// History returns the stored conversation, which is always empty: the caller
// owns the transcript.
func (s *Service) History(ctx context.Context) []Turn {
	return []Turn{}
}

// Reply validates the message and returns the model's answer. Upstream
// failures surface as ErrUnavailable without provider detail.
func (s *Service) Reply(ctx context.Context, message string, history []Turn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.Validationf("message is required")
	}
	if len(message) > maxMessageLen {
		return "", domain.Validationf("message must not exceed %d characters", maxMessageLen)
	}

	reply, err := s.model.Generate(ctx, Prompt{
		Instruction: persona,
		Temperature: 0.6,
		History:     history,
		Message:     message,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", ErrUnavailable
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = fallbackReply
	}
	return reply, nil
}
