package kernel

import "testing"

func TestStorePriRaisesOnly(t *testing.T) {
	tcb := &TCB{pri: 50}
	tcb.StorePri(80) // lower priority number would be higher; 80 is lower priority than 50
	if tcb.pri != 50 {
		t.Fatalf("StorePri must not lower priority, got %d", tcb.pri)
	}
	tcb.StorePri(10)
	if tcb.pri != 10 {
		t.Fatalf("expected boost to 10, got %d", tcb.pri)
	}
}

func TestStorePriNestedBoostRemembersFirstOriginal(t *testing.T) {
	tcb := &TCB{pri: 50}
	tcb.StorePri(20) // first boost, remembers original 50
	tcb.StorePri(5)  // second, higher boost while already boosted
	if tcb.pri != 5 {
		t.Fatalf("expected current priority 5, got %d", tcb.pri)
	}
	tcb.RestorePri()
	if tcb.pri != 50 {
		t.Fatalf("restore after nested boosts should land back on the original 50, got %d", tcb.pri)
	}
}

func TestRestorePriWithoutBoostIsNoOp(t *testing.T) {
	tcb := &TCB{pri: 50}
	tcb.RestorePri()
	if tcb.pri != 50 {
		t.Fatalf("restore without a prior boost must not change priority, got %d", tcb.pri)
	}
}

func TestRestorePriIsIdempotent(t *testing.T) {
	tcb := &TCB{pri: 50}
	tcb.StorePri(1)
	tcb.RestorePri()
	tcb.RestorePri() // second restore with nothing boosted: no-op
	if tcb.pri != 50 {
		t.Fatalf("double restore should be harmless, got %d", tcb.pri)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Ready:      "READY",
		Running:    "RUNNING",
		Blocked:    "BLOCKED",
		Terminated: "TERMINATED",
		Status(99): "UNKNOWN",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
