package m68k

import "testing"

func TestBitOperationsOnRegister(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "BTST #1,D1\nBCLR D0,D1\nBCHG #1,D1\nBSET #7,D1\n")
	cpu.regs.d[0] = 33 // dynamic bit numbers wrap at 32
	cpu.regs.d[1] = 0x0003

	mustStep(t, cpu)
	if cpu.regs.sr&srZero != 0 {
		t.Fatalf("bit 1 is set, Z must be clear: %04x", cpu.regs.sr)
	}

	mustStep(t, cpu)
	if cpu.regs.d[1] != 0x0001 {
		t.Fatalf("BCLR with a wrapped bit number failed: %08x", cpu.regs.d[1])
	}
	if cpu.regs.sr&srZero != 0 {
		t.Fatalf("Z reflects the bit before clearing: %04x", cpu.regs.sr)
	}

	mustStep(t, cpu)
	if cpu.regs.d[1] != 0x0003 {
		t.Fatalf("BCHG failed: %08x", cpu.regs.d[1])
	}
	if cpu.regs.sr&srZero == 0 {
		t.Fatalf("bit 1 was clear before the change, Z must be set: %04x", cpu.regs.sr)
	}

	mustStep(t, cpu)
	if cpu.regs.d[1] != 0x0083 {
		t.Fatalf("BSET failed: %08x", cpu.regs.d[1])
	}
}

func TestBitOperationsOnMemory(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "BSET D0,(A0)\nBTST #1,(A0)\n")
	cpu.regs.d[0] = 9 // memory operands are bytes, bit numbers wrap at 8
	cpu.regs.a[0] = 0x3000

	mustStep(t, cpu)
	if got := ram.Read(0x3000); got != 0x02 {
		t.Fatalf("BSET on memory failed: %02x", got)
	}
	if cpu.regs.sr&srZero == 0 {
		t.Fatalf("bit was clear before setting, Z must be set: %04x", cpu.regs.sr)
	}

	mustStep(t, cpu)
	if cpu.regs.sr&srZero != 0 {
		t.Fatalf("BTST should find the bit set now: %04x", cpu.regs.sr)
	}
}

func TestBtstLeavesOperandUntouched(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "BTST #0,(A0)\n")
	cpu.regs.a[0] = 0x3000
	ram.Write(0x3000, 0xff)

	mustStep(t, cpu)

	if got := ram.Read(0x3000); got != 0xff {
		t.Fatalf("BTST must not write: %02x", got)
	}
	if cpu.regs.sr&srZero != 0 {
		t.Fatalf("Z wrong: %04x", cpu.regs.sr)
	}
}
