package events

import "testing"

// TestBusSince verifies incremental event reads by sequence.
func TestBusSince(t *testing.T) {
	bus := NewBus(3)
	bus.Publish(LogLine("1"))
	bus.Publish(LogLine("2"))
	bus.Publish(LogLine("3"))

	got := bus.Since(1)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Seq != 2 || got[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", got)
	}
}

// TestBusCapsHistory verifies buffer limit trimming behavior.
func TestBusCapsHistory(t *testing.T) {
	bus := NewBus(2)
	bus.Emit(LogLine("1"))
	bus.Emit(LogLine("2"))
	bus.Emit(LogLine("3"))

	got := bus.Since(0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Text != "2" || got[1].Text != "3" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
}

// TestBusSubscribeOrder checks backlog + live delivery without gaps.
func TestBusSubscribeOrder(t *testing.T) {
	bus := NewBus(10)
	bus.Emit(LogLine("a"))

	backlog, ch, cancel := bus.Subscribe(4)
	defer cancel()

	bus.Emit(Progress(50, "half"))
	bus.Emit(BatchFinished())

	if len(backlog) != 1 || backlog[0].Text != "a" {
		t.Fatalf("backlog = %+v", backlog)
	}
	first, second := <-ch, <-ch
	if first.Kind != KindProgress || first.Seq != 2 {
		t.Errorf("first = %+v", first)
	}
	if second.Kind != KindBatchFinished || second.Seq != 3 {
		t.Errorf("second = %+v", second)
	}
}

// TestBusDropsSlowSubscriber verifies a full buffer closes the channel.
func TestBusDropsSlowSubscriber(t *testing.T) {
	bus := NewBus(10)
	_, ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Emit(LogLine("1"))
	bus.Emit(LogLine("2")) // buffer full: subscriber dropped

	if e, ok := <-ch; !ok || e.Text != "1" {
		t.Fatalf("first receive = %+v, %v", e, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after overflow")
	}
	cancel() // must not panic after the bus closed the channel
}

func TestMultiAndStamp(t *testing.T) {
	var a, b Recorder
	s := Stamp(Multi(&a, nil, &b), "batch-1", func() string { return "job-7" })
	s.Emit(LogLine("hello"))

	for _, r := range []*Recorder{&a, &b} {
		got := r.Events()
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].BatchID != "batch-1" || got[0].JobID != "job-7" {
			t.Errorf("ids not stamped: %+v", got[0])
		}
	}
}

func TestRecorderOfKind(t *testing.T) {
	var r Recorder
	r.Emit(LogLine("x"))
	r.Emit(Progress(10, "p"))
	r.Emit(LogLine("y"))

	logs := r.OfKind(KindLog)
	if len(logs) != 2 || logs[1].Text != "y" {
		t.Errorf("OfKind(log) = %+v", logs)
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{LogLine("frame=1"), "frame=1"},
		{Progress(50, "1/2: 50.0%"), "[ 50.0%] 1/2: 50.0%"},
		{JobStarted(1, 3, "a.mp4"), "started 1/3 a.mp4"},
		{JobFinished(2, 3, "b.mp4", "failed"), "finished 2/3 b.mp4 (failed)"},
		{BatchFinished(), "batch finished"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEngineLine(t *testing.T) {
	e := EngineLine("frame=10")
	if !e.IsEngine() || e.Kind != KindLog || e.String() != "frame=10" {
		t.Errorf("EngineLine = %+v", e)
	}
	if LogLine("x").IsEngine() {
		t.Error("pipeline log line reported as engine output")
	}
}
