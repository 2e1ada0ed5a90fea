package m68k

import "fmt"

// registerFile holds the architectural state of the 68000. Only seven
// address registers are stored; A7 always resolves through the stack
// pointer bank selected by the supervisor bit, so the active stack
// pointer is never duplicated.
type registerFile struct {
	d   [8]uint32
	a   [7]uint32
	usp uint32
	ssp uint32
	pc  uint32
	sr  uint16
	ir  uint16
}

// Registers is the programmer-visible snapshot handed out through the
// public API and in trace callbacks. A[7] carries the active stack
// pointer.
type Registers struct {
	D   [8]uint32
	A   [8]uint32
	PC  uint32
	SR  uint16
	SSP uint32
	USP uint32
	IR  uint16
}

func (r *registerFile) supervisor() bool {
	return r.sr&srSupervisor != 0
}

// aptr returns the storage cell behind An, redirecting A7 through the
// active stack pointer bank.
func (r *registerFile) aptr(reg uint16) *uint32 {
	if reg < 7 {
		return &r.a[reg]
	}
	if r.supervisor() {
		return &r.ssp
	}
	return &r.usp
}

func (r *registerFile) sp() *uint32 {
	return r.aptr(7)
}

func (r *registerFile) readA(reg uint16) uint32 {
	return *r.aptr(reg)
}

// writeA stores to an address register. Word-sized writes sign-extend
// to the full register width; byte writes do not exist on address
// registers.
func (r *registerFile) writeA(reg uint16, value uint32, s Size) {
	*r.aptr(reg) = s.signExtend(value)
}

func (r *registerFile) readD(reg uint16, s Size) uint32 {
	return r.d[reg] & s.mask()
}

func (r *registerFile) writeD(reg uint16, value uint32, s Size) {
	mask := s.mask()
	r.d[reg] = (r.d[reg] &^ mask) | (value & mask)
}

// setSR replaces the status register, masking to the bits the 68000
// implements. Because A7 is resolved through the supervisor bit on
// every access there is no bank swap to perform here.
func (r *registerFile) setSR(value uint16) {
	r.sr = value & srImplemented
}

func (r *registerFile) setCCR(value uint16) {
	r.sr = (r.sr &^ srCCRMask) | (value & srCCRMask)
}

func (r *registerFile) snapshot() Registers {
	regs := Registers{
		PC:  r.pc,
		SR:  r.sr,
		SSP: r.ssp,
		USP: r.usp,
		IR:  r.ir,
	}
	regs.D = r.d
	copy(regs.A[:7], r.a[:])
	regs.A[7] = *r.sp()
	return regs
}

func (regs *Registers) String() string {
	result := fmt.Sprintf("SR %04x PC %08x USP %08x SSP %08x SP %08x\n",
		regs.SR, regs.PC, regs.USP, regs.SSP, regs.A[7])
	for i := range regs.D {
		result += fmt.Sprintf("D%d %08x ", i, regs.D[i])
	}
	result += "\n"
	for i := range regs.A {
		result += fmt.Sprintf("A%d %08x ", i, regs.A[i])
	}
	result += "\n"
	return result
}
