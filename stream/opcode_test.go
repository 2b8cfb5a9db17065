package stream

import "testing"

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpReset, "Reset"},
		{OpSetBlend, "SetBlend"},
		{OpFillRect, "FillRect"},
		{OpDrawGlyphRun, "DrawGlyphRun"},
		{OpEnd, "End"},
		{Opcode(0xBEEF), "Unknown(0xBEEF)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%#04x.String() = %q, want %q", uint16(tt.op), got, tt.want)
		}
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ in, want uint64 }{
		{0, 0}, {1, 8}, {7, 8}, {8, 8}, {9, 16}, {40, 40},
	}
	for _, tt := range tests {
		if got := alignUp(tt.in); got != tt.want {
			t.Errorf("alignUp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
