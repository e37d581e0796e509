package encoder

import "testing"

func TestEncodeFixedFormInstructions(t *testing.T) {
	tests := []struct {
		name string
		in   Instr
		want uint16
	}{
		{"clear", clear(), 0x00E0},
		{"jump", jump(0x123), 0x1123},
		{"skipEqual", skipIfEqual(3, 4), 0x5340},
		{"skipNotEqual", skipIfNotEqual(3, 4), 0x9340},
		{"loadImm", loadImm(2, 0xAB), 0x62AB},
		{"addImm", addImm(2, 0x05), 0x7205},
		{"skipNotEqualImm", skipNotEqualImm(1, 0x00), 0x4100},
		{"aluLoad", aluOp(aluLoad, 1, 2), 0x8120},
		{"aluAdd", aluOp(aluAdd, 1, 2), 0x8124},
		{"aluSub", aluOp(aluSub, 1, 2), 0x8125},
		{"loadAddr", loadAddr(0x300), 0xA300},
		{"draw", draw(1, 2, 3), 0xD123},
		{"skipPressed", skipKey(5, true), 0xE59E},
		{"skipNotPressed", skipKey(5, false), 0xE5A1},
		{"waitKey", waitKey(6), 0xF60A},
		{"fontAddr", fontAddr(6), 0xF629},
		{"storeBCD", storeBCD(6), 0xF633},
		{"storeRegs", storeRegs(6), 0xF655},
		{"loadRegs", loadRegs(6), 0xF665},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Encode(); got != tt.want {
				t.Errorf("Encode() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestHasNNN(t *testing.T) {
	if !jump(0).HasNNN() {
		t.Error("jump: HasNNN() = false, want true")
	}
	if !loadAddr(0).HasNNN() {
		t.Error("loadAddr: HasNNN() = false, want true")
	}
	if clear().HasNNN() {
		t.Error("clear: HasNNN() = true, want false")
	}
	if draw(0, 0, 0).HasNNN() {
		t.Error("draw: HasNNN() = true, want false")
	}
}
