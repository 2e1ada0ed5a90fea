package m68k

// FaultInfo records the bus access that raised an address error, stashed
// by the bus helpers so the exception frame can report what the access
// was doing when it died.
type FaultInfo struct {
	Address     uint32
	Read        bool
	Instruction bool
}

// exception aborts whatever is in flight and substitutes the entry
// sequence for the given vector. Everything else happens when the
// BeginException op retires on the next tick.
func (c *cpu) exception(vector uint32) {
	c.pendingException = int32(vector)
	c.queue.reset()
	c.clearFollowup()
	c.queue.push(micro{kind: opBeginException})
}

func (c *cpu) raiseInterrupt(level uint8, vector uint32) {
	c.intLevel = level
	c.exception(vector)
}

// beginException builds the stack frame image and queues the entry
// sequence: internal settling time, the frame pushes from the highest
// address down, the vector read, and a full pipeline refill at the
// handler.
func (c *cpu) beginException() error {
	vector := uint32(c.pendingException)
	c.pendingException = -1
	level := c.intLevel
	c.intLevel = 0
	c.pendingTrace = false

	groupZero := vector == XBusError || vector == XAddressError
	pc := c.exceptionPC(vector, level, groupZero)

	oldSR := c.regs.sr
	newSR := (oldSR | srSupervisor) &^ srTrace
	if level > 0 {
		newSR = (newSR &^ srInterruptMask) | uint16(level)<<8
	}
	c.regs.setSR(newSR)

	c.vector = vector
	ctx := &c.ctx

	if groupZero {
		c.inGroupZero = true
		f := c.fault
		c.fault = nil
		if f == nil {
			panic("group-0 exception without a fault record")
		}
		ctx.frame = [7]uint16{
			c.accessInfo(f, oldSR),
			uint16(f.Address >> 16),
			uint16(f.Address),
			c.regs.ir,
			oldSR,
			uint16(pc >> 16),
			uint16(pc),
		}
		c.recipeInternal(6)
		for i := 6; i >= 0; i-- {
			c.recipePush(opPushWord, uint8(i))
		}
	} else {
		ctx.frame[0] = oldSR
		ctx.frame[1] = uint16(pc >> 16)
		ctx.frame[2] = uint16(pc)
		if level > 0 {
			c.recipeInternal(16)
		} else {
			c.recipeInternal(6)
		}
		for i := 2; i >= 0; i-- {
			c.recipePush(opPushWord, uint8(i))
		}
	}

	c.recipePush(opReadVector, 0)
	c.recipeCommitJump()
	return nil
}

// exceptionPC selects the PC image the frame carries. Traps and
// detected conditions push the next instruction; illegal-pattern
// exceptions push the offending opcode; group-0 frames reconstruct
// where the microsequence had advanced PC to when the access faulted.
func (c *cpu) exceptionPC(vector uint32, level uint8, groupZero bool) uint32 {
	ctx := &c.ctx

	if groupZero {
		return c.groupZeroPC()
	}
	if level > 0 {
		return c.ircAddr - 2
	}

	switch vector {
	case XTrace:
		return c.ircAddr - 2
	case XIllegal, XPrivViolation, XLineA, XLineF:
		return ctx.pc0
	default:
		return ctx.pc0 + 2 + 2*uint32(ctx.nExt)
	}
}

func (c *cpu) groupZeroPC() uint32 {
	ctx := &c.ctx
	f := c.fault

	if f != nil && f.Instruction {
		return f.Address
	}
	if f != nil && f.Read {
		return ctx.pc0 + 2
	}

	switch ctx.dst.spec.kind {
	case eaPreDecrement:
		return ctx.pc0 + 2
	case eaAbsoluteShort, eaAbsoluteLong:
		return ctx.pc0 + 4 + 2*uint32(ctx.nExt)
	default:
		return ctx.pc0 + 2 + 2*uint32(ctx.nExt)
	}
}

// accessInfo builds the first word of a group-0 frame: bit 4 is R/W
// (set for reads), bit 3 I/N (set for data accesses), bits 2..0 the
// function code driven during the faulted cycle.
func (c *cpu) accessInfo(f *FaultInfo, sr uint16) uint16 {
	var info uint16
	if f.Read {
		info |= 0x0010
	}
	if !f.Instruction {
		info |= 0x0008
	}

	var fc uint16
	if sr&srSupervisor != 0 {
		fc |= 4
	}
	if f.Instruction {
		fc |= 2
	} else {
		fc |= 1
	}
	return info | fc
}

// readVectorOp fetches the handler address. An all-zero entry falls
// through to the uninitialized-interrupt vector so a sparse table
// still lands somewhere recoverable.
func (c *cpu) readVectorOp() error {
	handler, err := c.readLong(c.vector << 2)
	if err != nil {
		return err
	}
	if handler == 0 && c.vector != XUninitializedInt {
		handler, err = c.readLong(XUninitializedInt << 2)
		if err != nil {
			return err
		}
	}
	c.regs.pc = handler
	return nil
}
