package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/club/internal/domain"
)

type stubInvoker struct {
	reply  string
	err    error
	prompt Prompt
	calls  int
}

func (s *stubInvoker) Generate(ctx context.Context, prompt Prompt) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.reply, s.err
}

func TestReplyAssemblesPrompt(t *testing.T) {
	stub := &stubInvoker{reply: "Fridays at 19:00."}
	svc := NewService(stub)

	history := []Turn{
		{Role: "user", Text: "hi"},
		{Role: "model", Text: "hello, how can I help?"},
	}
	reply, err := svc.Reply(context.Background(), "  when do we meet?  ", history)
	require.NoError(t, err)
	require.Equal(t, "Fridays at 19:00.", reply)

	require.Equal(t, 1, stub.calls)
	require.Equal(t, persona, stub.prompt.Instruction)
	require.Equal(t, 0.6, stub.prompt.Temperature)
	require.Equal(t, history, stub.prompt.History)
	require.Equal(t, "when do we meet?", stub.prompt.Message)
}

func TestReplyValidation(t *testing.T) {
	stub := &stubInvoker{}
	svc := NewService(stub)

	_, err := svc.Reply(context.Background(), "   ", nil)
	require.True(t, domain.IsValidation(err))

	_, err = svc.Reply(context.Background(), strings.Repeat("a", maxMessageLen+1), nil)
	require.True(t, domain.IsValidation(err))

	require.Zero(t, stub.calls, "invalid messages never reach the model")
}

func TestReplyHidesUpstreamFailure(t *testing.T) {
	svc := NewService(&stubInvoker{err: errors.New("quota exceeded: key sk-123")})

	_, err := svc.Reply(context.Background(), "hello", nil)
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotContains(t, err.Error(), "sk-123")
}

func TestReplyPropagatesCancellation(t *testing.T) {
	svc := NewService(&stubInvoker{err: context.Canceled})

	_, err := svc.Reply(context.Background(), "hello", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReplyFallsBackOnEmptyAnswer(t *testing.T) {
	svc := NewService(&stubInvoker{reply: "   "})

	reply, err := svc.Reply(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Equal(t, fallbackReply, reply)
}

func TestHistoryIsEmpty(t *testing.T) {
	svc := NewService(&stubInvoker{})
	require.Empty(t, svc.History(context.Background()))
}
