package workspace_test

import (
	"context"
	"testing"
	"time"

	"braid/internal/adapters/llm"
	"braid/internal/app/threads"
	"braid/internal/app/workspace"
	"braid/internal/domain"
)

func newWorkspace() *workspace.Workspace {
	mgr := workspace.NewManager("test-model", llm.NewMockLLM(), llm.BuildSystemPrompt)
	return mgr.Open(domain.User{ID: "user-1"}, "")
}

func TestThreadFromMainThenNestedThread(t *testing.T) {
	ws := newWorkspace()

	t1, err := ws.CreateThread(threads.CreateInput{
		Context: "photosynthesis",
		Action:  domain.ActionDetails,
	})
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	if t1.Title != "🔍 Details: photosynthesis" {
		t.Fatalf("unexpected title %q", t1.Title)
	}
	if t1.RowID != 0 || t1.SourceType != domain.SourceMain {
		t.Fatalf("unexpected placement: row=%d source=%s", t1.RowID, t1.SourceType)
	}

	conv, autoText, err := ws.MountThread(t1.ID)
	if err != nil {
		t.Fatalf("MountThread failed: %v", err)
	}
	if autoText != `Please provide more details about: "photosynthesis"` {
		t.Fatalf("unexpected auto-send text %q", autoText)
	}
	if _, err := conv.Send(context.Background(), autoText, nil); err != nil {
		t.Fatalf("auto-send failed: %v", err)
	}

	t2, err := ws.CreateThread(threads.CreateInput{
		Context:        "chlorophyll absorbs light",
		Action:         domain.ActionAsk,
		SourceThreadID: t1.ID,
	})
	if err != nil {
		t.Fatalf("nested CreateThread failed: %v", err)
	}
	if t2.RowID != 0 || t2.ParentThreadID != t1.ID || t2.SourceType != domain.SourceThread {
		t.Fatalf("unexpected nested placement: %+v", t2)
	}
}

func TestMountConsumesAutoSendExactlyOnce(t *testing.T) {
	ws := newWorkspace()

	t1, err := ws.CreateThread(threads.CreateInput{Context: "gravity", Action: domain.ActionSimplify})
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	conv, first, err := ws.MountThread(t1.ID)
	if err != nil {
		t.Fatalf("first mount failed: %v", err)
	}
	if first == "" {
		t.Fatal("first mount should carry the auto-send text")
	}
	if _, err := conv.Send(context.Background(), first, nil); err != nil {
		t.Fatalf("auto-send failed: %v", err)
	}

	// A remount (panel re-render) must not replay the first message.
	again, second, err := ws.MountThread(t1.ID)
	if err != nil {
		t.Fatalf("second mount failed: %v", err)
	}
	if second != "" {
		t.Fatal("auto-send text delivered twice")
	}
	if again != conv {
		t.Fatal("remount returned a different session")
	}

	var users int
	for _, m := range conv.Messages() {
		if m.Role == domain.RoleUser {
			users++
		}
	}
	if users != 1 {
		t.Fatalf("expected exactly one user message, got %d", users)
	}
}

func TestCloseThreadClearsLayoutPointersAndKeepsChildren(t *testing.T) {
	ws := newWorkspace()

	parent, _ := ws.CreateThread(threads.CreateInput{Context: "parent", Action: domain.ActionAsk})
	child, _ := ws.CreateThread(threads.CreateInput{Context: "child", Action: domain.ActionAsk, SourceThreadID: parent.ID})

	ws.ApplyLayout(func(st domain.LayoutState) domain.LayoutState {
		st.ExpandedPanel = string(parent.ID)
		st.FullscreenThread = parent.ID
		return st
	})

	if !ws.CloseThread(parent.ID) {
		t.Fatal("CloseThread reported missing thread")
	}

	st := ws.LayoutState()
	if st.ExpandedPanel != "" || st.FullscreenThread != "" {
		t.Fatalf("layout pointers not cleared: %+v", st)
	}

	got, ok := ws.Thread(child.ID)
	if !ok {
		t.Fatal("child closed along with parent")
	}
	if got.ParentThreadID != parent.ID {
		t.Fatalf("dangling parent reference rewritten to %q", got.ParentThreadID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ws := newWorkspace()

	if _, err := ws.Main().Send(context.Background(), "tell me about the water cycle", nil); err != nil {
		t.Fatalf("main send failed: %v", err)
	}

	t1, err := ws.CreateThread(threads.CreateInput{Context: "evaporation", Action: domain.ActionDetails})
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	conv, autoText, err := ws.MountThread(t1.ID)
	if err != nil {
		t.Fatalf("MountThread failed: %v", err)
	}
	if _, err := conv.Send(context.Background(), autoText, nil); err != nil {
		t.Fatalf("auto-send failed: %v", err)
	}

	ws.ApplyLayout(func(st domain.LayoutState) domain.LayoutState {
		st.ExpandedPanel = string(t1.ID)
		return st
	})

	snap := ws.Snapshot()

	// The snapshot must carry the live session's messages, not the store's
	// stale mirror (the store never saw them).
	if len(snap.Threads) != 1 || len(snap.Threads[0].Messages) != 2 {
		t.Fatalf("snapshot missed live thread messages: %+v", snap.Threads)
	}
	if snap.Title != "tell me about the water cycle" {
		t.Fatalf("unexpected snapshot title %q", snap.Title)
	}

	other := newWorkspace()
	if err := other.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	gotThreads := other.Threads()
	if len(gotThreads) != 1 || gotThreads[0].ID != t1.ID {
		t.Fatalf("restored threads mismatch: %+v", gotThreads)
	}
	if len(other.Main().Messages()) != 2 {
		t.Fatalf("restored main messages mismatch: %+v", other.Main().Messages())
	}
	if other.LayoutState().ExpandedPanel != string(t1.ID) {
		t.Fatalf("restored layout mismatch: %+v", other.LayoutState())
	}

	// Mounting a restored thread rehydrates its session from the snapshot
	// and schedules no auto-send.
	conv2, text, err := other.MountThread(t1.ID)
	if err != nil {
		t.Fatalf("mount after restore failed: %v", err)
	}
	if text != "" {
		t.Fatal("restore must not replay auto-sends")
	}
	if len(conv2.Messages()) != 2 {
		t.Fatalf("restored thread session not rehydrated: %+v", conv2.Messages())
	}
}

// lingeringClient streams one delta, then blocks until cancelled and takes
// a while to notice, like a real network client tearing down.
type lingeringClient struct {
	started chan struct{}
}

func (c *lingeringClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest, onDelta func(string) error) error {
	if err := onDelta("stale partial"); err != nil {
		return err
	}
	close(c.started)
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	return ctx.Err()
}

func TestRestoreWhileStreamingDropsStaleTurn(t *testing.T) {
	client := &lingeringClient{started: make(chan struct{})}
	mgr := workspace.NewManager("test-model", client, llm.BuildSystemPrompt)
	ws := mgr.Open(domain.User{ID: "user-1"}, "")

	done := make(chan struct{})
	go func() {
		ws.Main().Send(context.Background(), "old question", nil)
		close(done)
	}()
	<-client.started

	snap := &domain.Snapshot{
		Version: domain.SnapshotVersion,
		MainMessages: []*domain.Message{
			{ID: "m1", Role: domain.RoleUser, Content: "restored question"},
		},
	}
	if err := ws.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return after restore cancelled it")
	}

	msgs := ws.Main().Messages()
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Fatalf("restored main list corrupted: %+v", msgs)
	}
}

func TestRestoreInvalidSnapshotLeavesStateUntouched(t *testing.T) {
	ws := newWorkspace()
	t1, _ := ws.CreateThread(threads.CreateInput{Context: "keep me", Action: domain.ActionAsk})

	bad := &domain.Snapshot{
		Version: domain.SnapshotVersion,
		Threads: []*domain.Thread{
			{ID: "x", ActionType: "nonsense", SourceType: domain.SourceMain},
		},
	}
	if err := ws.Restore(bad); err == nil {
		t.Fatal("expected validation error")
	}

	if _, ok := ws.Thread(t1.ID); !ok {
		t.Fatal("failed restore mutated live state")
	}
}

func TestRestoreWithoutUIStateUsesDefaults(t *testing.T) {
	ws := newWorkspace()
	ws.ApplyLayout(func(st domain.LayoutState) domain.LayoutState {
		st.ManualMainPercent = 42
		return st
	})

	if err := ws.Restore(&domain.Snapshot{Version: domain.SnapshotVersion}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	st := ws.LayoutState()
	want := domain.DefaultLayoutState()
	if st.ExpandedPanel != want.ExpandedPanel || st.ManualMainPercent != 0 {
		t.Fatalf("expected default layout state, got %+v", st)
	}
}
