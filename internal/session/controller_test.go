// controller_test.go — turn lifecycle against a fake transport.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeTransport struct {
	submitted []BackendConfig
	turnIDs   []string
	cancelled []string
	submitErr error
}

func (f *fakeTransport) Submit(_ context.Context, turnID string, _ []Message, cfg BackendConfig) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, cfg)
	f.turnIDs = append(f.turnIDs, turnID)
	return nil
}

func (f *fakeTransport) Cancel(_ context.Context, turnID string) error {
	f.cancelled = append(f.cancelled, turnID)
	return nil
}

func newTestController(t *testing.T) (*Controller, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	return NewController(tr, "gemini-2.5-pro"), tr
}

func finalize(t *testing.T, c *Controller, turnID string) {
	t.Helper()
	c.HandleEvent(turnID, RawEvent{Kind: KindFinalizeAnswer, Payload: json.RawMessage(`{}`)})
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	c, _ := newTestController(t)
	if _, err := c.Submit(context.Background(), "   ", EffortMedium); err == nil {
		t.Fatal("Submit(blank) = nil error, want rejection")
	}
	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle", c.State())
	}
}

func TestSubmitRejectsInFlightTurn(t *testing.T) {
	c, _ := newTestController(t)
	if _, err := c.Submit(context.Background(), "first question", EffortMedium); err != nil {
		t.Fatalf("Submit = %v", err)
	}
	if _, err := c.Submit(context.Background(), "second question", EffortMedium); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("second Submit = %v, want ErrTurnInFlight", err)
	}
}

func TestSubmitEffortMapping(t *testing.T) {
	cases := []struct {
		effort      Effort
		wantQueries int
		wantLoops   int
	}{
		{EffortLow, 1, 1},
		{EffortMedium, 3, 3},
		{EffortHigh, 5, 10},
		{Effort("bogus"), 3, 3},
	}
	for _, cse := range cases {
		c, tr := newTestController(t)
		if _, err := c.Submit(context.Background(), "q", cse.effort); err != nil {
			t.Fatalf("Submit(%s) = %v", cse.effort, err)
		}
		cfg := tr.submitted[0]
		if cfg.InitialSearchQueryCount != cse.wantQueries || cfg.MaxResearchLoops != cse.wantLoops {
			t.Fatalf("effort %s → {%d, %d}, want {%d, %d}", cse.effort,
				cfg.InitialSearchQueryCount, cfg.MaxResearchLoops, cse.wantQueries, cse.wantLoops)
		}
		if cfg.ReasoningModel != "gemini-2.5-pro" {
			t.Fatalf("ReasoningModel = %q", cfg.ReasoningModel)
		}
	}
}

func TestSubmitFailureReturnsToIdle(t *testing.T) {
	tr := &fakeTransport{submitErr: errors.New("backend down")}
	c := NewController(tr, "m")

	if _, err := c.Submit(context.Background(), "q", EffortLow); err == nil {
		t.Fatal("Submit = nil error, want failure")
	}
	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle after submit failure", c.State())
	}
	// Human message stays so the user can see what failed.
	msgs := c.Transcript()
	if len(msgs) != 1 || msgs[0].Role != RoleHuman {
		t.Fatalf("Transcript = %+v, want the human message kept", msgs)
	}
}

func TestFullTurnArchivesOnTerminal(t *testing.T) {
	c, _ := newTestController(t)
	turnID, err := c.Submit(context.Background(), "what is rust", EffortMedium)
	if err != nil {
		t.Fatalf("Submit = %v", err)
	}

	c.HandleEvent(turnID, rawEvent(KindGenerateQuery, `{"query_list":["rust lang"]}`))
	if c.State() != StateStreaming {
		t.Fatalf("State = %q, want streaming after first event", c.State())
	}
	c.HandleEvent(turnID, rawEvent(KindWebResearch, `{"sources_gathered":[{"label":"rust"}]}`))
	c.HandleEvent(turnID, rawEvent(KindReflection, `{"is_sufficient":true}`))
	finalize(t, c, turnID)
	if c.State() != StateTerminal {
		t.Fatalf("State = %q, want terminal after finalize", c.State())
	}

	c.HandleCompletion(turnID, "msg-1", "Rust is a systems language.")

	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle after completion", c.State())
	}
	if c.Timeline() != nil {
		t.Fatal("live timeline not cleared after completion")
	}
	archived, ok := c.Archive().Lookup("msg-1")
	if !ok {
		t.Fatal("no archive entry for msg-1")
	}
	if len(archived) != 4 {
		t.Fatalf("archived %d steps, want 4", len(archived))
	}
	if archived[0].Title != TitleGenerateQuery || archived[3].Title != TitleFinalizeAnswer {
		t.Fatalf("archived steps out of order: %+v", archived)
	}
}

func TestCompletionWithoutFinalizeSkipsArchive(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "find videos", EffortLow)

	c.HandleEvent(turnID, rawEvent(KindYouTubeAction, `{"youtube_results":{
		"query":"go talks","total_results":5,"videos":[{"video_id":"v1"}]}}`))
	c.HandleCompletion(turnID, "msg-1", "Here are some videos.")

	if _, ok := c.Archive().Lookup("msg-1"); ok {
		t.Fatal("archived a turn that never reached the finalize step")
	}
	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle", c.State())
	}
	if _, ok := c.Auxiliary(); !ok {
		t.Fatal("auxiliary payload dropped, want kept after completion")
	}
}

func TestCancelClearsBufferAndAuxiliary(t *testing.T) {
	c, tr := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "question", EffortMedium)

	c.HandleEvent(turnID, rawEvent(KindGenerateQuery, `{"query_list":["q1"]}`))
	c.HandleEvent(turnID, rawEvent(KindYouTubeAction, `{"youtube_results":{
		"query":"x","total_results":1,"videos":[{"video_id":"v1"}]}}`))

	c.Cancel(context.Background())

	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle after cancel", c.State())
	}
	if c.Timeline() != nil {
		t.Fatal("timeline not cleared by cancel")
	}
	if _, ok := c.Auxiliary(); ok {
		t.Fatal("auxiliary payload survived cancel")
	}
	if c.Archive().Len() != 0 {
		t.Fatal("cancel produced an archive entry")
	}
	if len(tr.cancelled) != 1 || tr.cancelled[0] != turnID {
		t.Fatalf("transport cancel calls = %v, want [%s]", tr.cancelled, turnID)
	}
}

func TestStaleEventsIgnoredAfterCancel(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "question", EffortMedium)
	c.Cancel(context.Background())

	c.HandleEvent(turnID, rawEvent(KindWebResearch, `{"sources_gathered":[{"label":"late"}]}`))
	finalize(t, c, turnID)
	c.HandleCompletion(turnID, "msg-late", "late answer")

	if c.Timeline() != nil {
		t.Fatal("stale event reached the timeline")
	}
	if got := c.Transcript(); len(got) != 1 {
		t.Fatalf("stale completion appended a message: %+v", got)
	}
	if c.Archive().Len() != 0 {
		t.Fatal("stale completion produced an archive entry")
	}
}

func TestHandleErrorReturnsToIdleKeepingTranscript(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "question", EffortMedium)
	c.HandleEvent(turnID, rawEvent(KindGenerateQuery, `{"query_list":["q"]}`))

	c.HandleError(turnID, errors.New("stream reset"))

	if c.State() != StateIdle {
		t.Fatalf("State = %q, want idle after error", c.State())
	}
	if c.Timeline() != nil {
		t.Fatal("timeline survived a transport error")
	}
	msgs := c.Transcript()
	if len(msgs) != 1 || msgs[0].Role != RoleHuman {
		t.Fatalf("Transcript = %+v, want human message kept", msgs)
	}
}

func TestCompletionAssignsMissingMessageID(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "question", EffortMedium)
	finalize(t, c, turnID)

	c.HandleCompletion(turnID, "", "answer")

	msgs := c.Transcript()
	last := msgs[len(msgs)-1]
	if last.ID == "" {
		t.Fatal("assistant message left without an id")
	}
	if _, ok := c.Archive().Lookup(last.ID); !ok {
		t.Fatal("no archive entry under the assigned id")
	}
}

func TestDuplicateTerminalEventArchivesOnce(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "question", EffortMedium)

	finalize(t, c, turnID)
	finalize(t, c, turnID) // backend hiccup, finalize delivered twice
	c.HandleCompletion(turnID, "msg-1", "answer")

	if c.Archive().Len() != 1 {
		t.Fatalf("archive entries = %d, want 1", c.Archive().Len())
	}
	archived, _ := c.Archive().Lookup("msg-1")
	if len(archived) != 2 {
		t.Fatalf("archived %d steps, want both finalize steps kept", len(archived))
	}
}

func TestSecondTurnClearsAuxiliaryAtSubmit(t *testing.T) {
	c, _ := newTestController(t)
	turnID, _ := c.Submit(context.Background(), "find videos", EffortLow)
	c.HandleEvent(turnID, rawEvent(KindYouTubeAction, `{"youtube_results":{
		"query":"x","total_results":1,"videos":[{"video_id":"v1"}]}}`))
	c.HandleCompletion(turnID, "msg-1", "videos")

	if _, err := c.Submit(context.Background(), "next question", EffortLow); err != nil {
		t.Fatalf("second Submit = %v", err)
	}
	if _, ok := c.Auxiliary(); ok {
		t.Fatal("stale auxiliary payload survived the next submit")
	}
}

func TestOnChangeFires(t *testing.T) {
	c, _ := newTestController(t)
	var fired int
	c.SetOnChange(func() { fired++ })

	turnID, _ := c.Submit(context.Background(), "q", EffortLow)
	c.HandleEvent(turnID, rawEvent(KindGenerateQuery, `{"query_list":["q"]}`))
	c.HandleEvent(turnID, rawEvent("telemetry", `{}`)) // ignored, no notify
	c.HandleCompletion(turnID, "m1", "a")

	if fired != 3 {
		t.Fatalf("onChange fired %d times, want 3", fired)
	}
}
