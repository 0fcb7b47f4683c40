package ui

import "testing"

// TestEventBusSince verifies incremental snapshot reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(10)
	bus.Publish(Snapshot{Status: "1"})
	bus.Publish(Snapshot{Status: "2"})
	bus.Publish(Snapshot{Status: "3"})

	snaps := bus.Since(1)
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	if snaps[0].Seq != 2 || snaps[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", snaps)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Snapshot{Status: "1"})
	bus.Publish(Snapshot{Status: "2"})
	bus.Publish(Snapshot{Status: "3"})

	snaps := bus.Since(0)
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	if snaps[0].Status != "2" || snaps[1].Status != "3" {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
}

// TestEventBusEmitterReceivesEveryPublish verifies the push hook.
func TestEventBusEmitterReceivesEveryPublish(t *testing.T) {
	bus := NewEventBus(10)
	var pushed []int64
	bus.SetEmitter(func(snap Snapshot) { pushed = append(pushed, snap.Seq) })

	bus.Publish(Snapshot{})
	bus.Publish(Snapshot{})

	if len(pushed) != 2 || pushed[0] != 1 || pushed[1] != 2 {
		t.Fatalf("pushed = %v", pushed)
	}

	latest, ok := bus.Latest()
	if !ok || latest.Seq != 2 {
		t.Fatalf("latest = %+v ok=%v", latest, ok)
	}
}
