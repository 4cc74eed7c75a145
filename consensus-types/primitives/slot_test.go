package types_test

import (
	"testing"

	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

func TestSlot_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  types.Slot
		want types.Slot
	}{
		{name: "mul", got: types.Slot(4).Mul(8), want: 32},
		{name: "div", got: types.Slot(65).Div(32), want: 2},
		{name: "add", got: types.Slot(1).Add(2), want: 3},
		{name: "sub", got: types.Slot(10).Sub(4), want: 6},
		{name: "mod", got: types.Slot(65).Mod(32), want: 1},
		{name: "saturating sub", got: types.Slot(3).SubSlot(5), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestSlot_SubUnderflowPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on underflow")
		}
	}()
	types.Slot(1).Sub(2)
}

func TestSlot_SSZRoundTrip(t *testing.T) {
	s := types.Slot(8)
	enc, err := s.MarshalSSZ()
	if err != nil {
		t.Fatal(err)
	}
	var got types.Slot
	if err := got.UnmarshalSSZ(enc); err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Errorf("got %d, want %d", got, s)
	}
	if err := got.UnmarshalSSZ(enc[:7]); err == nil {
		t.Error("expected error on short buffer")
	}
}

func TestEpoch_HashTreeRoot(t *testing.T) {
	e := types.Epoch(1)
	root, err := e.HashTreeRoot()
	if err != nil {
		t.Fatal(err)
	}
	want := [32]byte{1}
	if root != want {
		t.Errorf("got %#x, want %#x", root, want)
	}
}
