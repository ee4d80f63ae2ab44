package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/recognizer"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func result(name string, at time.Time) recognizer.Result {
	return recognizer.Result{
		Name:       name,
		Time:       at.Format(constants.TimeLayout),
		Location:   [4]int{1, 2, 3, 4},
		Confidence: "80.0%",
		Detector:   "dnn",
	}
}

func newTracker(now *time.Time) *Tracker {
	tr := NewTracker(50, 5*time.Minute)
	tr.Now = func() time.Time { return *now }
	return tr
}

func TestRecord_DeduplicatesWithinWindow(t *testing.T) {
	now := base
	tr := newTracker(&now)

	if !tr.Record(result("alice", now)) {
		t.Fatal("expected first record to be appended")
	}

	now = base.Add(3 * time.Minute)
	if tr.Record(result("alice", now)) {
		t.Error("expected duplicate within 5 minutes to be skipped")
	}
	if !tr.Record(result("bob", now)) {
		t.Error("expected a different identity to be appended")
	}

	now = base.Add(5*time.Minute + time.Second)
	if !tr.Record(result("alice", now)) {
		t.Error("expected alice to be appended after the window")
	}

	if tr.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", tr.Len())
	}
}

func TestRecord_UnknownNeverDeduplicated(t *testing.T) {
	now := base
	tr := newTracker(&now)

	for i := 0; i < 5; i++ {
		if !tr.Record(result(constants.UnknownName, now)) {
			t.Fatalf("Unknown #%d was skipped", i)
		}
	}
	if tr.Len() != 5 {
		t.Errorf("expected 5 entries, got %d", tr.Len())
	}
}

func TestRecord_UnparseableTimeIsNotDuplicate(t *testing.T) {
	now := base
	tr := newTracker(&now)

	bad := result("alice", now)
	bad.Time = "yesterday"
	tr.Record(bad)

	if !tr.Record(result("alice", now)) {
		t.Error("entry with unparseable time should not block a new one")
	}
}

func TestRecord_EvictsOldestBeyondCap(t *testing.T) {
	now := base
	tr := newTracker(&now)

	for i := 0; i < 60; i++ {
		tr.Record(result(fmt.Sprintf("person-%02d", i), now))
	}

	all := tr.All()
	if len(all) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(all))
	}
	if all[0].Name != "person-10" {
		t.Errorf("expected oldest surviving entry person-10, got %s", all[0].Name)
	}
	if all[49].Name != "person-59" {
		t.Errorf("expected newest entry person-59, got %s", all[49].Name)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	now := base
	tr := newTracker(&now)
	tr.Record(result("alice", now))

	all := tr.All()
	all[0].Name = "mallory"

	if tr.All()[0].Name != "alice" {
		t.Error("mutating the returned slice changed the history")
	}
}

func TestAll_EmptyIsNotNil(t *testing.T) {
	now := base
	if got := newTracker(&now).All(); got == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestFollow_ReceivesAppendedOnly(t *testing.T) {
	now := base
	tr := newTracker(&now)
	_, ch := tr.Follow()

	tr.Record(result("alice", now))
	tr.Record(result("alice", now)) // duplicate, not delivered

	select {
	case e := <-ch:
		if e.Name != "alice" {
			t.Errorf("listener got %q, want alice", e.Name)
		}
	default:
		t.Fatal("listener received nothing")
	}
	select {
	case e := <-ch:
		t.Errorf("listener got unexpected second entry %+v", e)
	default:
	}

	tr.RemoveListener(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after RemoveListener")
	}
	tr.RemoveListener(ch) // second call is a no-op
	tr.Record(result("bob", now))
}

func TestFollow_FullBufferDoesNotBlock(t *testing.T) {
	now := base
	tr := newTracker(&now)
	_, ch := tr.Follow()
	defer tr.RemoveListener(ch)

	for i := 0; i < constants.HistoryListenerBuffer+5; i++ {
		tr.Record(result(constants.UnknownName, now))
	}
	if len(ch) != constants.HistoryListenerBuffer {
		t.Errorf("buffered %d entries, want %d", len(ch), constants.HistoryListenerBuffer)
	}
}

func TestFollow_SnapshotAndStreamDoNotOverlap(t *testing.T) {
	now := base
	tr := newTracker(&now)
	tr.Record(result("alice", now))

	entries, ch := tr.Follow()
	defer tr.RemoveListener(ch)
	tr.Record(result("bob", now))

	if len(entries) != 1 || entries[0].Name != "alice" {
		t.Fatalf("snapshot = %+v, want [alice]", entries)
	}
	select {
	case e := <-ch:
		if e.Name != "bob" {
			t.Errorf("stream got %q, want bob", e.Name)
		}
	default:
		t.Fatal("stream received nothing")
	}
	select {
	case e := <-ch:
		t.Errorf("stream repeated an entry: %+v", e)
	default:
	}
}
