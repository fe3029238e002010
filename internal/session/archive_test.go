package session

import "testing"

func TestArchiveRecordAndLookup(t *testing.T) {
	a := NewArchiveStore()
	events := []ActivityEvent{{Title: TitleWebResearch, Data: "r"}}

	if ok := a.Record("m1", events); !ok {
		t.Fatal("Record = false, want true")
	}
	got, ok := a.Lookup("m1")
	if !ok || len(got) != 1 || got[0].Data != "r" {
		t.Fatalf("Lookup = %+v, %v", got, ok)
	}
}

func TestArchiveWriteOnce(t *testing.T) {
	a := NewArchiveStore()
	a.Record("m1", []ActivityEvent{{Title: TitleWebResearch, Data: "first"}})

	if ok := a.Record("m1", []ActivityEvent{{Title: TitleWebResearch, Data: "second"}}); ok {
		t.Fatal("duplicate Record = true, want false")
	}
	got, _ := a.Lookup("m1")
	if got[0].Data != "first" {
		t.Fatalf("Data = %q, first write must win", got[0].Data)
	}
}

func TestArchiveEntriesAreIndependent(t *testing.T) {
	a := NewArchiveStore()
	a.Record("m1", []ActivityEvent{{Title: TitleWebResearch, Data: "m1-research"}})
	a.Record("m2", []ActivityEvent{{Title: TitleReflection, Data: "m2-reflect"}})

	got, ok := a.Lookup("m1")
	if !ok || len(got) != 1 || got[0].Data != "m1-research" {
		t.Fatalf("m1 archive changed after m2 record: %+v", got)
	}
}

func TestArchiveCopiesOnBothSides(t *testing.T) {
	a := NewArchiveStore()
	src := []ActivityEvent{{Title: TitleWebResearch, Data: "orig"}}
	a.Record("m1", src)

	src[0].Data = "mutated"
	got, _ := a.Lookup("m1")
	if got[0].Data != "orig" {
		t.Fatal("mutating the source slice leaked into the archive")
	}

	got[0].Data = "mutated-out"
	again, _ := a.Lookup("m1")
	if again[0].Data != "orig" {
		t.Fatal("mutating a lookup result leaked into the archive")
	}
}
