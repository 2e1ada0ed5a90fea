package m68k

// Effective-address resolution is split across scheduler ticks the way
// the hardware splits it across bus cycles: the decoder schedules one
// FetchExt per extension word followed by a CalcEA, and the address
// materializes only when CalcEA retires. Register-direct operands skip
// the machinery entirely.

type eaKind uint8

const (
	eaNone eaKind = iota
	eaDataRegister
	eaAddressRegister
	eaIndirect
	eaPostIncrement
	eaPreDecrement
	eaDisplacement
	eaIndex
	eaAbsoluteShort
	eaAbsoluteLong
	eaPCDisplacement
	eaPCIndex
	eaImmediate
)

type eaSpec struct {
	kind eaKind
	reg  uint16
}

// eaState is the per-side resolution state inside the exec context.
type eaState struct {
	spec    eaSpec
	addr    uint32
	extBase uint8 // index of this side's first extension word in ctx.ext
}

func eaSpecFor(mode, reg uint16) eaSpec {
	switch mode & 7 {
	case 0:
		return eaSpec{eaDataRegister, reg}
	case 1:
		return eaSpec{eaAddressRegister, reg}
	case 2:
		return eaSpec{eaIndirect, reg}
	case 3:
		return eaSpec{eaPostIncrement, reg}
	case 4:
		return eaSpec{eaPreDecrement, reg}
	case 5:
		return eaSpec{eaDisplacement, reg}
	case 6:
		return eaSpec{eaIndex, reg}
	default:
		switch reg {
		case 0:
			return eaSpec{eaAbsoluteShort, 0}
		case 1:
			return eaSpec{eaAbsoluteLong, 0}
		case 2:
			return eaSpec{eaPCDisplacement, 0}
		case 3:
			return eaSpec{eaPCIndex, 0}
		case 4:
			return eaSpec{eaImmediate, 0}
		}
	}
	// registration filters opcodes through validEA, so decode can
	// never hand us mode 7 with reg 5..7
	panic("invalid addressing mode")
}

// srcSpec decodes the standard low-6-bit effective-address field.
func (c *cpu) srcSpec() eaSpec {
	ir := c.regs.ir
	return eaSpecFor((ir>>3)&7, ir&7)
}

func (s eaSpec) isMemory() bool {
	switch s.kind {
	case eaDataRegister, eaAddressRegister, eaImmediate:
		return false
	}
	return true
}

func (s eaSpec) isRegister() bool {
	return s.kind == eaDataRegister || s.kind == eaAddressRegister
}

func extWordsForMode(kind eaKind, s Size) uint8 {
	switch kind {
	case eaDisplacement, eaIndex, eaAbsoluteShort, eaPCDisplacement, eaPCIndex:
		return 1
	case eaAbsoluteLong:
		return 2
	case eaImmediate:
		if s == Long {
			return 2
		}
		return 1
	}
	return 0
}

// eaStep is the postincrement/predecrement stride. Byte accesses
// through A7 keep the stack pointer word-aligned.
func eaStep(s Size, reg uint16) uint32 {
	if s == Byte && reg == 7 {
		return 2
	}
	return uint32(s)
}

// scheduleEA queues the resolution steps for one operand side. settle
// adds the 2-cycle predecrement settling time, which every access pays
// except the destination of a MOVE.
func (c *cpu) scheduleEA(side uint8, spec eaSpec, settle bool) {
	st := c.sideState(side)
	*st = eaState{spec: spec}

	if spec.isRegister() {
		return
	}

	n := extWordsForMode(spec.kind, c.ctx.size)
	st.extBase = c.ctx.nSched
	c.ctx.nSched += n
	for i := uint8(0); i < n; i++ {
		c.recipePush(opFetchExt, side)
	}
	if spec.kind == eaImmediate {
		return
	}

	c.recipePush(opCalcEA, side)
	if spec.kind == eaIndex || spec.kind == eaPCIndex {
		c.recipeInternal(2)
	}
	if spec.kind == eaPreDecrement && settle {
		c.recipeInternal(2)
	}
}

// calcEAFinish retires a CalcEA micro-op: all extension words for the
// side are in, so the address can be computed and any register
// mutation committed.
func (c *cpu) calcEAFinish(side uint8) error {
	st := c.sideState(side)
	ctx := &c.ctx

	switch st.spec.kind {
	case eaIndirect:
		st.addr = c.regs.readA(st.spec.reg)

	case eaPostIncrement:
		p := c.regs.aptr(st.spec.reg)
		st.addr = *p
		*p += eaStep(ctx.size, st.spec.reg)

	case eaPreDecrement:
		p := c.regs.aptr(st.spec.reg)
		ctx.predecReg = int8(st.spec.reg)
		ctx.predecOld = *p
		*p -= eaStep(ctx.size, st.spec.reg)
		st.addr = *p

	case eaDisplacement:
		st.addr = c.regs.readA(st.spec.reg) + uint32(int32(int16(ctx.ext[st.extBase])))

	case eaIndex:
		st.addr = c.indexedAddr(c.regs.readA(st.spec.reg), ctx.ext[st.extBase])

	case eaAbsoluteShort:
		st.addr = uint32(int32(int16(ctx.ext[st.extBase])))

	case eaAbsoluteLong:
		st.addr = uint32(ctx.ext[st.extBase])<<16 | uint32(ctx.ext[st.extBase+1])

	case eaPCDisplacement:
		st.addr = ctx.extAddr[st.extBase] + uint32(int32(int16(ctx.ext[st.extBase])))

	case eaPCIndex:
		st.addr = c.indexedAddr(ctx.extAddr[st.extBase], ctx.ext[st.extBase])

	default:
		panic("CalcEA scheduled for a register operand")
	}

	c.clearFollowup()
	return nil
}

// indexedAddr evaluates a brief extension word: base plus index
// register (word index sign-extended) plus 8-bit displacement.
func (c *cpu) indexedAddr(base uint32, brief uint16) uint32 {
	reg := (brief >> 12) & 0x7
	var index uint32
	if brief&0x8000 != 0 {
		index = c.regs.readA(reg)
	} else {
		index = c.regs.d[reg]
	}
	if brief&0x0800 == 0 {
		index = uint32(int32(int16(index)))
	}
	return base + index + uint32(int32(int8(brief)))
}

func (c *cpu) immValue(st *eaState) uint32 {
	ctx := &c.ctx
	switch ctx.size {
	case Byte:
		return uint32(ctx.ext[st.extBase] & 0xff)
	case Word:
		return uint32(ctx.ext[st.extBase])
	default:
		return uint32(ctx.ext[st.extBase])<<16 | uint32(ctx.ext[st.extBase+1])
	}
}

// readEA retires a ReadEA micro-op, leaving the operand in ctx.data.
// Register and immediate operands cost nothing; memory operands pay
// their bus cycles here.
func (c *cpu) readEA(side uint8) error {
	st := c.sideState(side)
	ctx := &c.ctx

	switch st.spec.kind {
	case eaDataRegister:
		ctx.data = c.regs.readD(st.spec.reg, ctx.size)
		return nil
	case eaAddressRegister:
		ctx.data = c.regs.readA(st.spec.reg) & ctx.size.mask()
		return nil
	case eaImmediate:
		ctx.data = c.immValue(st)
		return nil
	}

	v, err := c.readSized(ctx.size, st.addr)
	if err != nil {
		return err
	}
	ctx.data = v
	// the access completed, so a prior predecrement is now committed
	ctx.predecReg = -1
	return nil
}

// writeEA retires a WriteEA micro-op, storing ctx.data. Long memory
// writes split into two word transfers across two ticks; predecrement
// destinations store the low word first so a misaligned access faults
// on the lowest address written.
func (c *cpu) writeEA(side uint8) error {
	st := c.sideState(side)
	ctx := &c.ctx

	switch st.spec.kind {
	case eaDataRegister:
		c.regs.writeD(st.spec.reg, ctx.data, ctx.size)
		return nil
	case eaAddressRegister:
		c.regs.writeA(st.spec.reg, ctx.data, ctx.size)
		return nil
	case eaImmediate, eaPCDisplacement, eaPCIndex:
		panic("write to a non-alterable addressing mode")
	}

	if ctx.size != Long {
		if err := c.writeSized(ctx.size, st.addr, ctx.data); err != nil {
			return err
		}
		ctx.predecReg = -1
		return nil
	}

	predec := st.spec.kind == eaPreDecrement
	if c.followupTag != tagWriteLo {
		c.setFollowup(tagWriteLo)
		c.queue.pushFront(micro{kind: opWriteEA, arg: side})
		if predec {
			return c.writeWord(st.addr+2, uint16(ctx.data))
		}
		return c.writeWord(st.addr, uint16(ctx.data>>16))
	}

	c.clearFollowup()
	var err error
	if predec {
		err = c.writeWord(st.addr, uint16(ctx.data>>16))
	} else {
		err = c.writeWord(st.addr+2, uint16(ctx.data))
	}
	if err != nil {
		return err
	}
	ctx.predecReg = -1
	return nil
}
