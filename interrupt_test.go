package m68k

import "testing"

func TestInterruptRespectsMaskAndTriggersWhenUnmasked(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "MOVEQ #1,D0\nMOVEQ #2,D0\nNOP\n")

	handler := uint32(0x3000)
	ram.WriteLong(uint32(autoVectorBase+2)<<2, handler)
	ram.WriteWord(handler, 0x4e71)

	cpu.regs.setSR(srSupervisor | 3<<8)
	if err := cpu.RequestInterrupt(2, nil); err != nil {
		t.Fatalf("failed to request interrupt: %v", err)
	}

	initialSP := *cpu.regs.sp()

	mustStep(t, cpu)
	if *cpu.regs.sp() != initialSP {
		t.Fatalf("stack grew while the interrupt was masked: %08x", *cpu.regs.sp())
	}
	if cpu.regs.d[0] != 1 {
		t.Fatalf("masked interrupt must not preempt: D0=%08x", cpu.regs.d[0])
	}

	cpu.regs.setSR(srSupervisor)
	before := cpu.Cycles()
	mustStep(t, cpu)

	if *cpu.regs.sp() != initialSP-6 {
		t.Fatalf("no exception frame pushed: SP=%08x", *cpu.regs.sp())
	}
	if got := ram.ReadLong(*cpu.regs.sp() + 2); got != testStart+2 {
		t.Fatalf("stacked PC should be the preempted instruction: %08x", got)
	}
	if nextPC(cpu) != handler {
		t.Fatalf("handler not entered: %08x", nextPC(cpu))
	}
	if cpu.regs.sr&srInterruptMask != 2<<8 {
		t.Fatalf("mask not raised to the serviced level: SR=%04x", cpu.regs.sr)
	}
	if got := cpu.Cycles() - before; got != 44 {
		t.Fatalf("interrupt entry cost wrong: got %d want 44", got)
	}

	// the preempted instruction runs after the handler's business
	mustStep(t, cpu) // handler NOP
	if cpu.regs.d[0] != 1 {
		t.Fatalf("handler should not have touched D0: %08x", cpu.regs.d[0])
	}
}

func TestInterruptUsesProvidedVector(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\n")

	handler := uint32(0x4000)
	vector := uint8(50)
	ram.WriteLong(uint32(vector)<<2, handler)
	ram.WriteWord(handler, 0x4e71)

	cpu.regs.setSR(srSupervisor)
	if err := cpu.RequestInterrupt(5, &vector); err != nil {
		t.Fatalf("failed to request interrupt: %v", err)
	}

	mustStep(t, cpu)
	if nextPC(cpu) != handler {
		t.Fatalf("vectored interrupt not taken: %08x", nextPC(cpu))
	}
}

func TestHigherLevelWinsWhenBothPend(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\n")

	low := uint32(0x3000)
	high := uint32(0x4000)
	ram.WriteLong(uint32(autoVectorBase+2)<<2, low)
	ram.WriteLong(uint32(autoVectorBase+6)<<2, high)
	ram.WriteWord(high, 0x4e71)

	cpu.regs.setSR(srSupervisor)
	if err := cpu.RequestInterrupt(2, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := cpu.RequestInterrupt(6, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	mustStep(t, cpu)
	if nextPC(cpu) != high {
		t.Fatalf("level 6 should preempt level 2: %08x", nextPC(cpu))
	}
	if cpu.regs.sr&srInterruptMask != 6<<8 {
		t.Fatalf("mask should be 6: %04x", cpu.regs.sr)
	}
}

func TestLevelSevenIsNonMaskable(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\n")

	handler := uint32(0x4800)
	ram.WriteLong(uint32(autoVectorBase+7)<<2, handler)
	ram.WriteWord(handler, 0x4e71)

	// mask at 7: anything lower must stay latched, 7 goes through
	if err := cpu.RequestInterrupt(7, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	mustStep(t, cpu)
	if nextPC(cpu) != handler {
		t.Fatalf("NMI not taken with mask 7: %08x", nextPC(cpu))
	}
}

func TestInvalidInterruptLevelRejected(t *testing.T) {
	cpu, _ := newEnvironment(t)
	if err := cpu.RequestInterrupt(8, nil); err == nil {
		t.Fatalf("level 8 must be rejected")
	}
	if err := cpu.RequestInterrupt(0, nil); err != nil {
		t.Fatalf("level 0 is a no-op, not an error: %v", err)
	}
}

func TestIPLLineAutovectors(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\nNOP\n")

	handler := uint32(0x4400)
	ram.WriteLong(uint32(autoVectorBase+5)<<2, handler)
	ram.WriteWord(handler, 0x4e71)

	cpu.regs.setSR(srSupervisor)
	cpu.SetIPL(5)

	mustStep(t, cpu)
	if nextPC(cpu) != handler {
		t.Fatalf("IPL interrupt not taken: %08x", nextPC(cpu))
	}

	// level-sensitive line at the now-current mask does not retrigger
	mustStep(t, cpu)
	if nextPC(cpu) != handler+2 {
		t.Fatalf("held IPL retriggered at equal mask: %08x", nextPC(cpu))
	}
}

func TestUninitializedVectorFallsBack(t *testing.T) {
	cpu, ram := newEnvironment(t)
	loadProgram(t, cpu, ram, "NOP\nNOP\n")

	fallback := uint32(0x4c00)
	ram.WriteLong(XUninitializedInt<<2, fallback)
	ram.WriteWord(fallback, 0x4e71)

	cpu.regs.setSR(srSupervisor)
	if err := cpu.RequestInterrupt(3, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// autovector 27 is still zero, so entry 15 takes over
	mustStep(t, cpu)
	if nextPC(cpu) != fallback {
		t.Fatalf("uninitialized vector not redirected: %08x", nextPC(cpu))
	}
}
