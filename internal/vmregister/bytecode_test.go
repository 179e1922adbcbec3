package vmregister

import "testing"

func TestCreateABCRoundTrips(t *testing.T) {
	w := CreateABC(OpCode(5), 10, 20, 30)
	if w.OpCode() != OpCode(5) || w.A() != 10 || w.B() != 20 || w.C() != 30 {
		t.Fatalf("unexpected fields: op=%d a=%d b=%d c=%d", w.OpCode(), w.A(), w.B(), w.C())
	}
}

func TestCreateAsBxRoundTripsSignedOffset(t *testing.T) {
	w := CreateAsBx(OpCode(2), 4, -100)
	if w.sBx() != -100 {
		t.Fatalf("expected sBx -100, got %d", w.sBx())
	}
}

func TestCreateAxRoundTrips(t *testing.T) {
	w := CreateAx(OpCode(1), 0xABCDEF)
	if w.Ax() != 0xABCDEF {
		t.Fatalf("expected Ax 0xABCDEF, got %x", w.Ax())
	}
}
