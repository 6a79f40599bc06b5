package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	if fifo.Available() != 0 {
		t.Errorf("Empty FIFO should have 0 available, got %d", fifo.Available())
	}

	n := fifo.Write([]byte("feed 0"))
	if n != 6 {
		t.Errorf("Expected to write 6 bytes, wrote %d", n)
	}
	if fifo.Free() != 3 {
		t.Errorf("Expected 3 bytes free, got %d", fifo.Free())
	}

	out := make([]byte, 4)
	if got := fifo.Read(out); got != 4 || string(out) != "feed" {
		t.Errorf("Read returned %d %q", got, out)
	}

	if b, ok := fifo.PopByte(); !ok || b != ' ' {
		t.Errorf("PopByte returned %q %v", b, ok)
	}
	if b, ok := fifo.PopByte(); !ok || b != '0' {
		t.Errorf("PopByte returned %q %v", b, ok)
	}
	if _, ok := fifo.PopByte(); ok {
		t.Error("PopByte on empty FIFO should fail")
	}
}

func TestFifoBufferWrap(t *testing.T) {
	fifo := NewFifoBuffer(4)

	for round := 0; round < 5; round++ {
		if !fifo.PushByte('a') || !fifo.PushByte('b') {
			t.Fatalf("round %d: push failed", round)
		}
		a, _ := fifo.PopByte()
		b, _ := fifo.PopByte()
		if a != 'a' || b != 'b' {
			t.Errorf("round %d: got %q%q", round, a, b)
		}
	}
}

func TestFifoBufferFull(t *testing.T) {
	fifo := NewFifoBuffer(4)

	if n := fifo.Write([]byte("abcdef")); n != 3 {
		t.Errorf("Expected 3 bytes to fit, got %d", n)
	}
	if fifo.PushByte('x') {
		t.Error("PushByte into full FIFO should fail")
	}

	fifo.Reset()
	if !fifo.IsEmpty() {
		t.Error("FIFO should be empty after reset")
	}
}
