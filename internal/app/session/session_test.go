package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"braid/internal/adapters/llm"
	"braid/internal/app/session"
	"braid/internal/domain"
)

func TestSendAppendsUserAndAssistant(t *testing.T) {
	conv := session.New("main", "test-model", "system", llm.NewMockLLM())

	var streamed strings.Builder
	reply, err := conv.Send(context.Background(), "hello there", func(delta string) error {
		streamed.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "hello there" {
		t.Fatalf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Content == "" {
		t.Fatalf("unexpected assistant message: %+v", msgs[1])
	}
	if streamed.String() != reply.Content {
		t.Fatalf("streamed %q but stored %q", streamed.String(), reply.Content)
	}
}

// stallClient emits one delta then blocks until cancelled.
type stallClient struct {
	started chan struct{}
}

func (c *stallClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest, onDelta func(string) error) error {
	if err := onDelta("partial answer"); err != nil {
		return err
	}
	close(c.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestStopTruncatesInFlightReply(t *testing.T) {
	client := &stallClient{started: make(chan struct{})}
	conv := session.New("t1", "test-model", "system", client)

	done := make(chan struct{})
	var reply *domain.Message
	var sendErr error
	go func() {
		reply, sendErr = conv.Send(context.Background(), "question", nil)
		close(done)
	}()

	<-client.started
	conv.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return after Stop")
	}

	if sendErr != nil {
		t.Fatalf("cancelled turn must not error: %v", sendErr)
	}
	if reply == nil || reply.Content != "partial answer" {
		t.Fatalf("expected truncated reply kept, got %+v", reply)
	}
	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[1].Content != "partial answer" {
		t.Fatalf("expected partial assistant message in list, got %+v", msgs)
	}
	if conv.Loading() {
		t.Fatal("session still loading after Stop")
	}
}

// silentClient blocks until cancelled without producing any content.
type silentClient struct {
	started chan struct{}
}

func (c *silentClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest, onDelta func(string) error) error {
	close(c.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestStopBeforeFirstDeltaAppendsNothing(t *testing.T) {
	client := &silentClient{started: make(chan struct{})}
	conv := session.New("t1", "test-model", "system", client)

	done := make(chan struct{})
	var reply *domain.Message
	var sendErr error
	go func() {
		reply, sendErr = conv.Send(context.Background(), "question", nil)
		close(done)
	}()

	<-client.started
	conv.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return after Stop")
	}

	if sendErr != nil {
		t.Fatalf("cancelled turn must not error: %v", sendErr)
	}
	if reply != nil {
		t.Fatalf("expected no assistant message, got %+v", reply)
	}
	msgs := conv.Messages()
	if len(msgs) != 1 || msgs[0].Role != domain.RoleUser {
		t.Fatalf("expected only the user message, got %+v", msgs)
	}
}

func TestLoadMessagesSupersedesInFlightTurn(t *testing.T) {
	client := &stallClient{started: make(chan struct{})}
	conv := session.New("main", "test-model", "system", client)

	done := make(chan struct{})
	go func() {
		conv.Send(context.Background(), "old question", nil)
		close(done)
	}()
	<-client.started

	restored := []*domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "restored question"},
	}
	conv.LoadMessages(restored)
	conv.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return after Stop")
	}

	// The cancelled turn streamed content, but its list was replaced out
	// from under it; the reply must not land in the restored conversation.
	msgs := conv.Messages()
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Fatalf("stale turn merged into restored list: %+v", msgs)
	}
}

type failingClient struct{}

func (failingClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest, onDelta func(string) error) error {
	return errors.New("backend unavailable")
}

func TestBackendErrorLeavesListIntact(t *testing.T) {
	conv := session.New("t1", "test-model", "system", failingClient{})

	if _, err := conv.Send(context.Background(), "question", nil); err == nil {
		t.Fatal("expected backend error")
	}

	msgs := conv.Messages()
	if len(msgs) != 1 || msgs[0].Role != domain.RoleUser {
		t.Fatalf("expected only the user message, got %+v", msgs)
	}
	if conv.Loading() {
		t.Fatal("session stuck loading after error")
	}
}

func TestSendWhileBusyIsRejected(t *testing.T) {
	client := &stallClient{started: make(chan struct{})}
	conv := session.New("t1", "test-model", "system", client)

	go conv.Send(context.Background(), "first", nil)
	<-client.started

	if _, err := conv.Send(context.Background(), "second", nil); !errors.Is(err, session.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	conv.Stop()
}

func TestLoadMessagesReplacesWholesale(t *testing.T) {
	conv := session.New("t1", "test-model", "system", llm.NewMockLLM())
	conv.Append(&domain.Message{ID: "old", Role: domain.RoleUser, Content: "stale"})

	restored := []*domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "restored question"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "restored answer"},
	}
	conv.LoadMessages(restored)

	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Fatalf("expected restored list, got %+v", msgs)
	}
}

func TestRegistryMountReturnsSameSession(t *testing.T) {
	reg := session.NewRegistry("test-model", llm.NewMockLLM())

	first, created := reg.Mount("t1", "system")
	if !created {
		t.Fatal("first mount should create")
	}
	second, created := reg.Mount("t1", "system")
	if created {
		t.Fatal("second mount must not create")
	}
	if first != second {
		t.Fatal("remount returned a different session instance")
	}

	reg.Close("t1")
	if _, ok := reg.Get("t1"); ok {
		t.Fatal("session survived Close")
	}
}
