package m68k

import (
	"errors"
	"fmt"
)

const (
	XBusError         = 2
	XAddressError     = 3
	XIllegal          = 4
	XDivByZero        = 5
	XChk              = 6
	XTrapV            = 7
	XPrivViolation    = 8
	XTrace            = 9
	XLineA            = 10
	XLineF            = 11
	XUninitializedInt = 15
	XTrap             = 32

	srCarry         = 0x0001
	srOverflow      = 0x0002
	srZero          = 0x0004
	srNegative      = 0x0008
	srExtend        = 0x0010
	srInterruptMask = 0x0700
	srSupervisor    = 0x2000
	srTrace         = 0x8000

	srCCRMask     = 0x001f
	srImplemented = 0xa71f

	srAllFlags = srNegative | srZero | srOverflow | srCarry | srExtend

	// 24-bit address bus of the 68000
	addrMask = 0xffffff

	// cycles per 16-bit (or byte) bus transfer
	busCycle = 4
)

const (
	eaMaskDataRegister    uint16 = 0x0800
	eaMaskAddressRegister uint16 = 0x0400
	eaMaskIndirect        uint16 = 0x0200
	eaMaskPostIncrement   uint16 = 0x0100
	eaMaskPreDecrement    uint16 = 0x0080
	eaMaskDisplacement    uint16 = 0x0040
	eaMaskIndex           uint16 = 0x0020
	eaMaskAbsoluteShort   uint16 = 0x0010
	eaMaskAbsoluteLong    uint16 = 0x0008
	eaMaskImmediate       uint16 = 0x0004
	eaMaskPCDisplacement  uint16 = 0x0002
	eaMaskPCIndex         uint16 = 0x0001

	eaMaskAll             = eaMaskDataRegister | eaMaskAddressRegister | eaMaskMemory
	eaMaskMemory          = eaMaskMemoryAlterable | eaMaskImmediate | eaMaskPCDisplacement | eaMaskPCIndex
	eaMaskData            = eaMaskAll &^ eaMaskAddressRegister
	eaMaskMemoryAlterable = eaMaskIndirect | eaMaskPostIncrement | eaMaskPreDecrement |
		eaMaskDisplacement | eaMaskIndex | eaMaskAbsoluteShort | eaMaskAbsoluteLong
	eaMaskDataAlterable = eaMaskMemoryAlterable | eaMaskDataRegister
	eaMaskAlterable     = eaMaskDataAlterable | eaMaskAddressRegister
	eaMaskControl       = eaMaskIndirect | eaMaskDisplacement | eaMaskIndex |
		eaMaskAbsoluteShort | eaMaskAbsoluteLong | eaMaskPCDisplacement | eaMaskPCIndex
)

// opcodeTable maps every opcode value to its decode handler. A handler
// does not execute the instruction; it builds the micro-op recipe the
// scheduler then retires one entry per tick.
var opcodeTable [0x10000]instruction

// ErrHalted is returned from Tick and Step after a double fault (an
// address or bus error raised while a group-0 exception was already
// being processed). Real hardware stops driving the bus until reset.
var ErrHalted = errors.New("m68k: halted by double fault")

type (
	// instruction decodes one opcode and commits its micro-op recipe.
	instruction func(*cpu) error

	AddressError uint32

	BreakpointType int

	TraceInfo struct {
		PC        uint32
		SR        uint16
		Cycles    uint64
		Registers Registers
	}

	TraceCallback func(TraceInfo)

	Breakpoint struct {
		Address   uint32
		OnExecute bool
		OnRead    bool
		OnWrite   bool
		Halt      bool
		Callback  func(BreakpointEvent) error
	}

	BreakpointEvent struct {
		Type      BreakpointType
		Address   uint32
		Registers Registers
	}

	BreakpointHit struct {
		Address uint32
		Type    BreakpointType
	}

	// CPU exposes the minimal interface for interacting with the
	// emulator core.
	CPU interface {
		Registers() Registers
		Tick() error
		Step() error
		RunCycles(budget uint64) error
		Reset() error
		SetTracer(TraceCallback)
		AddBreakpoint(Breakpoint)
		RequestInterrupt(level uint8, vector *uint8) error
		SetIPL(level uint8)
		Cycles() uint64
	}

	// CPU core
	cpu struct {
		regs   registerFile
		cycles uint64
		bus    Bus

		// prefetch pipeline: ir holds the already-fetched next
		// opcode, irc the word after it. ircAddr remembers where
		// irc came from so control flow can reconstruct PCs.
		ir      uint16
		irc     uint16
		ircAddr uint32

		queue microQueue
		ctx   exec

		inFollowup  bool
		followupTag followup

		pendingException int32
		intLevel         uint8
		vector           uint32
		fault            *FaultInfo
		inGroupZero      bool
		pendingTrace     bool

		stopped bool
		halted  bool

		interrupts *InterruptController
		ipl        uint8

		tracer      TraceCallback
		breakpoints map[uint32]Breakpoint
	}
)

const (
	BreakpointExecute BreakpointType = iota
	BreakpointRead
	BreakpointWrite
)

func (ae AddressError) Error() string {
	return fmt.Sprintf("address error at %08x", uint32(ae))
}

func (bh BreakpointHit) Error() string {
	return fmt.Sprintf("breakpoint hit at %08x (%v)", bh.Address, bh.Type)
}

func (bt BreakpointType) String() string {
	switch bt {
	case BreakpointExecute:
		return "execute"
	case BreakpointRead:
		return "read"
	case BreakpointWrite:
		return "write"
	default:
		return "unknown"
	}
}

func NewCPU(bus Bus) (CPU, error) {
	c := cpu{bus: bus}

	if sb, ok := bus.(*SystemBus); ok {
		previous := sb.waitHook
		sb.SetWaitHook(func(states uint32) {
			if previous != nil {
				previous(states)
			}
			c.cycles += uint64(states)
		})
	}

	if err := c.Reset(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *cpu) Registers() Registers {
	return c.regs.snapshot()
}

func (c *cpu) Cycles() uint64 {
	return c.cycles
}

func (c *cpu) SetTracer(cb TraceCallback) {
	c.tracer = cb
}

func (c *cpu) SetIPL(level uint8) {
	if level > 7 {
		level = 7
	}
	c.ipl = level
}

func (c *cpu) RequestInterrupt(level uint8, vector *uint8) error {
	return c.interrupts.Request(level, vector)
}

func (c *cpu) AddBreakpoint(bp Breakpoint) {
	if c.breakpoints == nil {
		c.breakpoints = make(map[uint32]Breakpoint)
	}
	c.breakpoints[bp.Address] = bp
}

func (c *cpu) String() string {
	regs := c.regs.snapshot()
	return regs.String()
}

// Tick advances the core by one scheduler slot: it retires at most one
// micro-op, or decodes the next instruction when the queue is empty.
// The cycle counter moves by whatever the retired operation cost.
func (c *cpu) Tick() error {
	if c.halted {
		return ErrHalted
	}

	if c.stopped {
		if level, vector, ok := c.pendingInterrupt(); ok {
			c.stopped = false
			c.raiseInterrupt(level, vector)
			return nil
		}
		c.internal(2)
		return nil
	}

	op, ok := c.queue.pop()
	if !ok {
		return c.decodeNext()
	}

	if err := c.execOp(op); err != nil {
		return c.handleFault(err)
	}
	return nil
}

// Step runs the boundary tick (interrupt sampling and decode) and then
// retires micro-ops until the instruction, or the exception sequence
// that preempted it, has completed.
func (c *cpu) Step() error {
	if err := c.Tick(); err != nil {
		return err
	}
	for !c.queue.empty() {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles executes until at least the requested number of cycles have
// elapsed. Execution may exceed the budget when the final instruction's
// cost pushes the cycle count past the requested amount.
func (c *cpu) RunCycles(budget uint64) error {
	start := c.cycles
	for c.cycles-start < budget {
		before := c.cycles
		if err := c.Step(); err != nil {
			return err
		}

		if c.cycles == before {
			return fmt.Errorf("execution stalled at %04x: cycles not advancing", c.regs.pc)
		}
	}
	return nil
}

func (c *cpu) Reset() error {
	c.regs = registerFile{sr: 0x2700}
	c.interrupts = NewInterruptController()
	c.ipl = 0
	c.stopped = false
	c.halted = false
	c.pendingException = -1
	c.intLevel = 0
	c.fault = nil
	c.inGroupZero = false
	c.pendingTrace = false
	c.inFollowup = false
	c.followupTag = tagNone
	c.queue.reset()
	c.ctx = exec{predecReg: -1}

	ssp, err := c.readLong(0)
	if err != nil {
		return err
	}
	*c.regs.sp() = ssp

	pc, err := c.readLong(4)
	if err != nil {
		return err
	}
	c.regs.pc = pc

	// fill both pipeline stages from the reset PC
	if err := c.refill(); err != nil {
		return err
	}
	if err := c.nextIR(); err != nil {
		return err
	}

	c.cycles = 0
	return nil
}

// decodeNext runs at every instruction boundary: trace and interrupt
// sampling first, then decode of the prefetched opcode. Unrecognized
// patterns route to the illegal-instruction exception without touching
// any other state.
func (c *cpu) decodeNext() error {
	pc := c.ircAddr - 2

	c.sendTrace(pc)
	c.inGroupZero = false

	if c.pendingTrace {
		c.pendingTrace = false
		c.exception(XTrace)
		return nil
	}

	if level, vector, ok := c.pendingInterrupt(); ok {
		c.raiseInterrupt(level, vector)
		return nil
	}

	if err := c.checkExecuteBreakpoint(pc); err != nil {
		return err
	}

	opcode := c.ir
	c.regs.ir = opcode
	c.ctx = exec{pc0: pc, predecReg: -1}
	c.clearFollowup()
	c.pendingTrace = c.regs.sr&srTrace != 0

	handler := opcodeTable[opcode]
	if handler == nil {
		return c.illegalInstruction()
	}
	return handler(c)
}

func (c *cpu) illegalInstruction() error {
	c.exception(XIllegal)
	return nil
}

func (c *cpu) privilegeViolation() error {
	c.exception(XPrivViolation)
	return nil
}

func (c *cpu) handleFault(err error) error {
	var ae AddressError
	if errors.As(err, &ae) {
		if c.inGroupZero {
			// fault while stacking a group-0 frame: halt
			c.halted = true
			return ErrHalted
		}
		c.undoPredecrement()
		c.exception(XAddressError)
		return nil
	}
	return err
}

func (c *cpu) undoPredecrement() {
	if c.ctx.predecReg < 0 {
		return
	}
	*c.regs.aptr(uint16(c.ctx.predecReg)) = c.ctx.predecOld
	c.ctx.predecReg = -1
}

func (c *cpu) sendTrace(pc uint32) {
	if c.tracer == nil {
		return
	}
	c.tracer(TraceInfo{PC: pc, SR: c.regs.sr, Cycles: c.cycles, Registers: c.regs.snapshot()})
}

// ------------------------------------------------------------------
// bus access

// internal burns idle cycles: the counter advances and the bus gets a
// chance to move peripheral time along.
func (c *cpu) internal(n uint32) {
	c.cycles += uint64(n)
	c.bus.Tick(n)
}

func (c *cpu) readByte(address uint32) (uint8, error) {
	address &= addrMask
	if err := c.checkAccessBreakpoint(address, BreakpointRead); err != nil {
		return 0, err
	}
	v := c.bus.Read(address)
	c.cycles += busCycle
	return v, nil
}

func (c *cpu) writeByte(address uint32, value uint8) error {
	address &= addrMask
	if err := c.checkAccessBreakpoint(address, BreakpointWrite); err != nil {
		return err
	}
	c.bus.Write(address, value)
	c.cycles += busCycle
	return nil
}

func (c *cpu) readWord(address uint32) (uint16, error) {
	return c.readWordFC(address, false)
}

func (c *cpu) readWordFC(address uint32, program bool) (uint16, error) {
	address &= addrMask
	if address&1 != 0 {
		c.fault = &FaultInfo{Address: address, Read: true, Instruction: program}
		return 0, AddressError(address)
	}
	if err := c.checkAccessBreakpoint(address, BreakpointRead); err != nil {
		return 0, err
	}
	hi := c.bus.Read(address)
	lo := c.bus.Read(address + 1)
	c.cycles += busCycle
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *cpu) writeWord(address uint32, value uint16) error {
	address &= addrMask
	if address&1 != 0 {
		c.fault = &FaultInfo{Address: address, Read: false}
		return AddressError(address)
	}
	if err := c.checkAccessBreakpoint(address, BreakpointWrite); err != nil {
		return err
	}
	c.bus.Write(address, uint8(value>>8))
	c.bus.Write(address+1, uint8(value))
	c.cycles += busCycle
	return nil
}

func (c *cpu) readLong(address uint32) (uint32, error) {
	hi, err := c.readWord(address)
	if err != nil {
		return 0, err
	}
	lo, err := c.readWord(address + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *cpu) writeLong(address uint32, value uint32) error {
	if err := c.writeWord(address, uint16(value>>16)); err != nil {
		return err
	}
	return c.writeWord(address+2, uint16(value))
}

func (c *cpu) readSized(s Size, address uint32) (uint32, error) {
	switch s {
	case Byte:
		v, err := c.readByte(address)
		return uint32(v), err
	case Word:
		v, err := c.readWord(address)
		return uint32(v), err
	default:
		return c.readLong(address)
	}
}

func (c *cpu) writeSized(s Size, address uint32, value uint32) error {
	switch s {
	case Byte:
		return c.writeByte(address, uint8(value))
	case Word:
		return c.writeWord(address, uint16(value))
	default:
		return c.writeLong(address, value)
	}
}

// ------------------------------------------------------------------
// stack

func (c *cpu) pushWord(value uint16) error {
	sp := c.regs.sp()
	*sp -= 2
	return c.writeWord(*sp, value)
}

func (c *cpu) pullWord() (uint16, error) {
	sp := c.regs.sp()
	v, err := c.readWord(*sp)
	if err != nil {
		return 0, err
	}
	*sp += 2
	return v, nil
}

// ------------------------------------------------------------------
// breakpoints

func (c *cpu) handleBreakpoint(bp Breakpoint, kind BreakpointType, address uint32) error {
	event := BreakpointEvent{Type: kind, Address: address, Registers: c.regs.snapshot()}
	if bp.Callback != nil {
		if err := bp.Callback(event); err != nil {
			return err
		}
	}

	if bp.Halt {
		return BreakpointHit{Address: address, Type: kind}
	}

	return nil
}

func (c *cpu) checkExecuteBreakpoint(pc uint32) error {
	if c.breakpoints == nil {
		return nil
	}

	if bp, ok := c.breakpoints[pc]; ok && bp.OnExecute {
		return c.handleBreakpoint(bp, BreakpointExecute, pc)
	}
	return nil
}

func (c *cpu) checkAccessBreakpoint(address uint32, kind BreakpointType) error {
	if c.breakpoints == nil {
		return nil
	}

	bp, ok := c.breakpoints[address]
	if !ok {
		return nil
	}

	switch kind {
	case BreakpointRead:
		if !bp.OnRead {
			return nil
		}
	case BreakpointWrite:
		if !bp.OnWrite {
			return nil
		}
	}

	return c.handleBreakpoint(bp, kind, address)
}

// ------------------------------------------------------------------
// opcode registration

// registerInstruction adds a decode handler for each opcode value that
// matches the pattern and carries a valid effective-address field.
func registerInstruction(ins instruction, match, mask uint16, eaMask uint16) {
	for value := uint16(0); ; {
		index := match | value
		if validEA(index, eaMask) {
			if opcodeTable[index] != nil {
				panic(fmt.Errorf("instruction 0x%04x already registered", index))
			}
			opcodeTable[index] = ins
		}

		value = ((value | mask) + 1) & ^mask
		if value == 0 {
			break
		}
	}
}

func validEA(opcode, mask uint16) bool {
	if mask == 0 {
		return true
	}

	switch opcode & 0x3f {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return (mask & eaMaskDataRegister) != 0
	case 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f:
		return (mask & eaMaskAddressRegister) != 0
	case 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17:
		return (mask & eaMaskIndirect) != 0
	case 0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f:
		return (mask & eaMaskPostIncrement) != 0
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27:
		return (mask & eaMaskPreDecrement) != 0
	case 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f:
		return (mask & eaMaskDisplacement) != 0
	case 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37:
		return (mask & eaMaskIndex) != 0
	case 0x38:
		return (mask & eaMaskAbsoluteShort) != 0
	case 0x39:
		return (mask & eaMaskAbsoluteLong) != 0
	case 0x3a:
		return (mask & eaMaskPCDisplacement) != 0
	case 0x3b:
		return (mask & eaMaskPCIndex) != 0
	case 0x3c:
		return (mask & eaMaskImmediate) != 0
	}
	return false
}

func x(ir uint16) uint16 { return (ir >> 9) & 0x7 }
func y(ir uint16) uint16 { return ir & 0x7 }
