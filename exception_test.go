package m68k

import (
	"errors"
	"testing"
)

func TestAddressErrorReadFrame(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "MOVE.W (A0),D0\n")

	handler := uint32(0x4000)
	ram.WriteLong(XAddressError<<2, handler)
	cpu.regs.a[0] = 0x3001

	mustStep(t, cpu)

	sp := *cpu.regs.sp()
	if sp != testStack-14 {
		t.Fatalf("address error frame is 14 bytes: SP=%08x", sp)
	}
	if got := ram.ReadWord(sp); got != 0x001d {
		t.Fatalf("access info for a supervisor data read: got %04x want 001d", got)
	}
	if got := ram.ReadLong(sp + 2); got != 0x3001 {
		t.Fatalf("fault address wrong: %08x", got)
	}
	if got := ram.ReadWord(sp + 6); got != 0x3010 {
		t.Fatalf("stacked instruction register wrong: %04x", got)
	}
	if got := ram.ReadWord(sp + 8); got != 0x2700 {
		t.Fatalf("stacked status wrong: %04x", got)
	}
	if got := ram.ReadLong(sp + 10); got != testStart+2 {
		t.Fatalf("stacked PC wrong: %08x", got)
	}
	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if cpu.Cycles() != 50 {
		t.Fatalf("address error entry cost wrong: got %d want 50", cpu.Cycles())
	}
}

func TestAddressErrorOnWriteRollsBackPredecrement(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "MOVE.W D0,-(A0)\n")

	ram.WriteLong(XAddressError<<2, 0x4000)
	cpu.regs.a[0] = 0x3001

	mustStep(t, cpu)

	if cpu.regs.a[0] != 0x3001 {
		t.Fatalf("predecrement must be undone on fault: A0=%08x", cpu.regs.a[0])
	}

	sp := *cpu.regs.sp()
	if got := ram.ReadWord(sp); got != 0x000d {
		t.Fatalf("access info for a supervisor data write: got %04x want 000d", got)
	}
	if got := ram.ReadLong(sp + 2); got != 0x2fff {
		t.Fatalf("fault address wrong: %08x", got)
	}
	if got := ram.ReadLong(sp + 10); got != testStart+2 {
		t.Fatalf("stacked PC wrong: %08x", got)
	}
}

// A long store commits the condition codes from the low word before the
// first bus write, so a frame from a faulted high-word write carries the
// half-evaluated flags.
func TestAddressErrorFrameCarriesInterimMoveFlags(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "MOVE.L D0,(A1)\n")

	ram.WriteLong(XAddressError<<2, 0x4000)
	cpu.regs.d[0] = 0x00008000
	cpu.regs.a[1] = 0x3001

	mustStep(t, cpu)

	sp := *cpu.regs.sp()
	if got := ram.ReadWord(sp + 8); got != 0x2700|srNegative {
		t.Fatalf("stacked status should carry N from the low word only: %04x", got)
	}
	if got := ram.ReadWord(sp); got != 0x000d {
		t.Fatalf("access info for a supervisor data write: got %04x want 000d", got)
	}
	if got := ram.ReadLong(sp + 2); got != 0x3001 {
		t.Fatalf("fault address wrong: %08x", got)
	}
	if got := ram.ReadLong(sp + 10); got != testStart+2 {
		t.Fatalf("stacked PC wrong: %08x", got)
	}
}

func TestAddressErrorOnInstructionFetch(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x4ef8, 0x3001) // JMP $3001.W

	ram.WriteLong(XAddressError<<2, 0x4000)

	mustStep(t, cpu)

	sp := *cpu.regs.sp()
	if got := ram.ReadWord(sp); got != 0x0016 {
		t.Fatalf("access info for a program fetch: got %04x want 0016", got)
	}
	if got := ram.ReadLong(sp + 2); got != 0x3001 {
		t.Fatalf("fault address wrong: %08x", got)
	}
	if got := ram.ReadLong(sp + 10); got != 0x3001 {
		t.Fatalf("fetch faults stack the fault address as PC: %08x", got)
	}
	if got := ram.ReadWord(sp + 6); got != 0x4ef8 {
		t.Fatalf("stacked instruction register wrong: %04x", got)
	}
}

func TestDoubleFaultHalts(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "MOVE.W (A0),D0\n")

	ram.WriteLong(XAddressError<<2, 0x4000)
	cpu.regs.a[0] = 0x3001
	*cpu.regs.sp() = 0x8001 // frame pushes will themselves fault

	err := cpu.Step()
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("double fault must halt the core, got %v", err)
	}
	if err := cpu.Tick(); !errors.Is(err, ErrHalted) {
		t.Fatalf("halted core must stay halted, got %v", err)
	}

	// only a reset revives it
	if err := cpu.Reset(); err != nil {
		t.Fatalf("reset after halt failed: %v", err)
	}
	mustStep(t, cpu)
}

func TestIllegalInstruction(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x4afc) // ILLEGAL

	handler := uint32(0x4000)
	ram.WriteLong(XIllegal<<2, handler)

	mustStep(t, cpu)

	sp := *cpu.regs.sp()
	if sp != testStack-6 {
		t.Fatalf("group-1 frame is 6 bytes: SP=%08x", sp)
	}
	if got := ram.ReadWord(sp); got != 0x2700 {
		t.Fatalf("stacked status wrong: %04x", got)
	}
	if got := ram.ReadLong(sp + 2); got != testStart {
		t.Fatalf("illegal instruction stacks its own address: %08x", got)
	}
	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
}

func TestLineAAndLineFDispatch(t *testing.T) {
	for name, tc := range map[string]struct {
		opcode uint16
		vector uint32
	}{
		"LineA": {0xa123, XLineA},
		"LineF": {0xf123, XLineF},
	} {
		t.Run(name, func(t *testing.T) {
			cpu, ram := newEnvironment(t)
			loadWords(t, cpu, ram, tc.opcode)

			handler := uint32(0x4000)
			ram.WriteLong(tc.vector<<2, handler)

			mustStep(t, cpu)

			if nextPC(cpu) != handler {
				t.Fatalf("handler not entered: %08x", nextPC(cpu))
			}
			if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart {
				t.Fatalf("stacked PC should be the unimplemented opcode: %08x", got)
			}
		})
	}
}

func TestPrivilegeViolationFromUserMode(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x46fc, 0x2700) // MOVE #$2700,SR

	handler := uint32(0x4000)
	ram.WriteLong(XPrivViolation<<2, handler)

	cpu.regs.setSR(0)
	*cpu.regs.sp() = 0x7000 // user stack

	mustStep(t, cpu)

	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if cpu.regs.sr&srSupervisor == 0 {
		t.Fatalf("exception entry must raise supervisor mode: %04x", cpu.regs.sr)
	}

	// the frame goes on the supervisor stack, not the user one
	sp := *cpu.regs.sp()
	if sp != testStack-6 {
		t.Fatalf("frame not on the supervisor stack: SP=%08x", sp)
	}
	if got := ram.ReadWord(sp); got&srSupervisor != 0 {
		t.Fatalf("stacked status should show user mode: %04x", got)
	}
	if got := ram.ReadLong(sp + 2); got != testStart {
		t.Fatalf("stacked PC should be the privileged opcode: %08x", got)
	}
	if cpu.regs.usp != 0x7000 {
		t.Fatalf("user stack pointer disturbed: %08x", cpu.regs.usp)
	}
}

func TestTrapInstruction(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x4e41) // TRAP #1

	handler := uint32(0x4000)
	ram.WriteLong((XTrap+1)<<2, handler)

	mustStep(t, cpu)

	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart+2 {
		t.Fatalf("trap stacks the next instruction: %08x", got)
	}
	if cpu.Cycles() != 34 {
		t.Fatalf("trap cost wrong: got %d want 34", cpu.Cycles())
	}
}

func TestDivideByZeroTrap(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x80fc, 0x0000) // DIVU #0,D0

	handler := uint32(0x4000)
	ram.WriteLong(XDivByZero<<2, handler)
	cpu.regs.d[0] = 12345

	mustStep(t, cpu)

	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart+4 {
		t.Fatalf("stacked PC should follow the immediate: %08x", got)
	}
	if cpu.regs.d[0] != 12345 {
		t.Fatalf("dividend must be untouched: %08x", cpu.regs.d[0])
	}
}

func TestChkOutOfBoundsTraps(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x4181) // CHK D1,D0

	handler := uint32(0x4000)
	ram.WriteLong(XChk<<2, handler)
	cpu.regs.d[0] = 0xffffffff // negative
	cpu.regs.d[1] = 100

	mustStep(t, cpu)

	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if cpu.regs.sr&srNegative == 0 {
		t.Fatalf("negative operand must set N: %04x", cpu.regs.sr)
	}
	if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart+2 {
		t.Fatalf("stacked PC wrong: %08x", got)
	}
}

func TestTrapvOnlyWhenOverflowSet(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadWords(t, cpu, ram, 0x4e76, 0x4e76) // TRAPV; TRAPV

	handler := uint32(0x4000)
	ram.WriteLong(XTrapV<<2, handler)

	mustStep(t, cpu)
	if nextPC(cpu) != testStart+2 {
		t.Fatalf("TRAPV with V clear must fall through: %08x", nextPC(cpu))
	}

	cpu.regs.sr |= srOverflow
	mustStep(t, cpu)
	if nextPC(cpu) != handler {
		t.Fatalf("TRAPV with V set must trap: %08x", nextPC(cpu))
	}
	if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart+4 {
		t.Fatalf("stacked PC wrong: %08x", got)
	}
}

func TestTraceAfterEachInstruction(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\n")

	handler := uint32(0x4000)
	ram.WriteLong(XTrace<<2, handler)
	ram.WriteWord(handler, 0x4e71)
	cpu.regs.setSR(0xa700)

	mustStep(t, cpu) // traced NOP
	mustStep(t, cpu) // trace exception fires at the boundary

	if nextPC(cpu) != handler {
		t.Fatalf("trace handler not entered: %08x", nextPC(cpu))
	}

	sp := *cpu.regs.sp()
	if got := ram.ReadWord(sp); got != 0xa700 {
		t.Fatalf("stacked status must keep T: %04x", got)
	}
	if got := ram.ReadLong(sp + 2); got != testStart+2 {
		t.Fatalf("stacked PC should be the next instruction: %08x", got)
	}
	if cpu.regs.sr&srTrace != 0 {
		t.Fatalf("handler must run with T clear: %04x", cpu.regs.sr)
	}
}
