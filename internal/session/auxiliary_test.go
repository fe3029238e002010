package session

import "testing"

func TestAuxiliaryLatestWins(t *testing.T) {
	s := NewAuxiliaryResultStore()
	s.Update(YouTubeResults{Query: "first"}, "t1")
	s.Update(YouTubeResults{Query: "second"}, "t1")

	got, ok := s.Current()
	if !ok {
		t.Fatal("Current = !ok, want payload")
	}
	if got.Payload.Query != "second" {
		t.Fatalf("Query = %q, want %q", got.Payload.Query, "second")
	}
	if got.Version != 2 {
		t.Fatalf("Version = %d, want 2", got.Version)
	}
}

func TestAuxiliaryVersionSurvivesClear(t *testing.T) {
	s := NewAuxiliaryResultStore()
	s.Update(YouTubeResults{Query: "a"}, "t1")
	s.Clear()

	if _, ok := s.Current(); ok {
		t.Fatal("Current after Clear = ok, want empty")
	}

	s.Update(YouTubeResults{Query: "b"}, "t2")
	got, _ := s.Current()
	if got.Version != 2 {
		t.Fatalf("Version = %d, want 2 (monotonic across Clear)", got.Version)
	}
	if got.TurnID != "t2" {
		t.Fatalf("TurnID = %q, want %q", got.TurnID, "t2")
	}
}

func TestAuxiliaryCurrentReturnsCopy(t *testing.T) {
	s := NewAuxiliaryResultStore()
	s.Update(YouTubeResults{
		Query:  "q",
		Videos: []YouTubeVideo{{VideoID: "v1", Title: "orig"}},
	}, "t1")

	got, _ := s.Current()
	got.Payload.Videos[0].Title = "mutated"

	again, _ := s.Current()
	if again.Payload.Videos[0].Title != "orig" {
		t.Fatal("mutating a Current copy leaked into the store")
	}
}
