package m68k

import "testing"

func TestConditionalBranchFlags(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, `
        MOVEQ #0,D0
        BEQ.S taken
        MOVEQ #1,D1
taken:  MOVEQ #2,D2
`)

	mustStep(t, cpu) // MOVEQ sets Z
	mustStep(t, cpu) // branch taken
	mustStep(t, cpu)

	if cpu.regs.d[1] != 0 {
		t.Fatalf("skipped instruction executed: D1=%08x", cpu.regs.d[1])
	}
	if cpu.regs.d[2] != 2 {
		t.Fatalf("branch target not reached: D2=%08x", cpu.regs.d[2])
	}
}

func TestBsrRtsRoundTrip(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, `
        BSR.S sub
        MOVEQ #1,D0
        BRA.S done
sub:    MOVEQ #2,D1
        RTS
done:   NOP
`)

	initialSP := *cpu.regs.sp()

	mustStep(t, cpu)
	if got := *cpu.regs.sp(); got != initialSP-4 {
		t.Fatalf("BSR did not push a return address: SP=%08x", got)
	}
	if got := ram.ReadLong(*cpu.regs.sp()); got != testStart+2 {
		t.Fatalf("stacked return address wrong: %08x", got)
	}

	mustStep(t, cpu) // MOVEQ #2,D1
	mustStep(t, cpu) // RTS

	if got := *cpu.regs.sp(); got != initialSP {
		t.Fatalf("RTS did not pop the return address: SP=%08x", got)
	}
	if nextPC(cpu) != testStart+2 {
		t.Fatalf("RTS did not return to the call site: %08x", nextPC(cpu))
	}

	mustStep(t, cpu)
	if cpu.regs.d[0] != 1 || cpu.regs.d[1] != 2 {
		t.Fatalf("call sequence wrong: D0=%08x D1=%08x", cpu.regs.d[0], cpu.regs.d[1])
	}
}

func TestDbccLoopCountsDown(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, `
        MOVEQ #3,D0
        MOVEQ #0,D1
loop:   ADDQ.L #1,D1
        DBRA D0,loop
        NOP
`)

	end := testStart + 10
	for steps := 0; steps < 32 && nextPC(cpu) < end; steps++ {
		mustStep(t, cpu)
	}

	if cpu.regs.d[1] != 4 {
		t.Fatalf("loop body should run counter+1 times: D1=%08x", cpu.regs.d[1])
	}
	if cpu.regs.d[0]&0xffff != 0xffff {
		t.Fatalf("counter should expire at -1: D0=%08x", cpu.regs.d[0])
	}
}

func TestDbccDecrementsOnlyLowWord(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "loop: DBRA D3,loop\nNOP\n")
	cpu.regs.d[3] = 0x00010000

	mustStep(t, cpu)

	if cpu.regs.d[3] != 0x0001ffff {
		t.Fatalf("upper word must survive the decrement: %08x", cpu.regs.d[3])
	}
	if nextPC(cpu) != testStart+4 {
		t.Fatalf("zero counter must fall through: %08x", nextPC(cpu))
	}
}

func TestSccRegisterAndMemory(t *testing.T) {
	t.Run("RegisterTrue", func(t *testing.T) {
		cpu, ram := newEnvironment(t)
		loadProgram(t, cpu, ram, "SEQ D0\n")
		cpu.regs.d[0] = 0x11223344
		cpu.regs.sr |= srZero

		mustStep(t, cpu)

		if cpu.regs.d[0] != 0x112233ff {
			t.Fatalf("Scc must set only the low byte: %08x", cpu.regs.d[0])
		}
		if cpu.Cycles() != 6 {
			t.Fatalf("satisfied Scc on Dn: got %d want 6", cpu.Cycles())
		}
	})

	t.Run("RegisterFalse", func(t *testing.T) {
		cpu, ram := newEnvironment(t)
		loadProgram(t, cpu, ram, "SEQ D0\n")
		cpu.regs.d[0] = 0xff

		mustStep(t, cpu)

		if cpu.regs.d[0]&0xff != 0 {
			t.Fatalf("false condition must clear the byte: %08x", cpu.regs.d[0])
		}
		if cpu.Cycles() != 4 {
			t.Fatalf("unsatisfied Scc on Dn: got %d want 4", cpu.Cycles())
		}
	})

	t.Run("Memory", func(t *testing.T) {
		cpu, ram := newEnvironment(t)
		loadProgram(t, cpu, ram, "SEQ (A0)\n")
		cpu.regs.a[0] = 0x3000
		cpu.regs.sr |= srZero

		// the destination is read before it is overwritten
		var reads int
		cpu.AddBreakpoint(Breakpoint{
			Address: 0x3000,
			OnRead:  true,
			Callback: func(BreakpointEvent) error {
				reads++
				return nil
			},
		})

		mustStep(t, cpu)

		if got := ram.Read(0x3000); got != 0xff {
			t.Fatalf("Scc to memory failed: %02x", got)
		}
		if reads != 1 {
			t.Fatalf("memory Scc must read its destination, saw %d reads", reads)
		}
		if cpu.Cycles() != 12 {
			t.Fatalf("memory Scc: got %d cycles want 12", cpu.Cycles())
		}
	})

	t.Run("MemoryFalse", func(t *testing.T) {
		cpu, ram := newEnvironment(t)
		loadProgram(t, cpu, ram, "SEQ (A0)\n")
		cpu.regs.a[0] = 0x3000
		ram.Write(0x3000, 0x55)

		mustStep(t, cpu)

		if got := ram.Read(0x3000); got != 0 {
			t.Fatalf("false condition must clear the byte: %02x", got)
		}
		if cpu.Cycles() != 12 {
			t.Fatalf("memory Scc pays the same either way: got %d cycles want 12", cpu.Cycles())
		}
	})
}
