package m68k

func init() {
	for opmode := uint16(0); opmode <= 2; opmode++ {
		srcMask := eaMaskAll
		if opmode == 0 {
			srcMask &^= eaMaskAddressRegister
		}
		registerInstruction(addToReg, 0xd000|opmode<<6, 0xf1c0, srcMask)
		registerInstruction(subToReg, 0x9000|opmode<<6, 0xf1c0, srcMask)
	}
	for opmode := uint16(4); opmode <= 6; opmode++ {
		registerInstruction(addToMem, 0xd000|opmode<<6, 0xf1c0, eaMaskMemoryAlterable)
		registerInstruction(subToMem, 0x9000|opmode<<6, 0xf1c0, eaMaskMemoryAlterable)
	}
	registerInstruction(adda, 0xd0c0, 0xf1c0, eaMaskAll)
	registerInstruction(adda, 0xd1c0, 0xf1c0, eaMaskAll)
	registerInstruction(suba, 0x90c0, 0xf1c0, eaMaskAll)
	registerInstruction(suba, 0x91c0, 0xf1c0, eaMaskAll)

	for size := uint16(0); size <= 2; size++ {
		quickMask := eaMaskAlterable
		if size == 0 {
			quickMask &^= eaMaskAddressRegister
		}
		registerInstruction(addqSubq, 0x5000|size<<6, 0xf1c0, quickMask)
		registerInstruction(addqSubq, 0x5100|size<<6, 0xf1c0, quickMask)

		registerInstruction(addiSubiCmpi, 0x0600|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(addiSubiCmpi, 0x0400|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(addiSubiCmpi, 0x0c00|size<<6, 0xffc0, eaMaskDataAlterable)
	}

	registerInstruction(mulu, 0xc0c0, 0xf1c0, eaMaskData)
	registerInstruction(muls, 0xc1c0, 0xf1c0, eaMaskData)
	registerInstruction(divu, 0x80c0, 0xf1c0, eaMaskData)
	registerInstruction(divs, 0x81c0, 0xf1c0, eaMaskData)
}

// longExtraCycles is the register-file settling time a long binary op
// pays on top of its bus traffic: 4 cycles when the source came from a
// register or immediate, 2 when it came from memory.
func longExtraCycles(spec eaSpec, size Size) uint8 {
	if size != Long {
		return 0
	}
	if spec.isMemory() {
		return 2
	}
	return 4
}

// binaryToReg builds the <ea>,Dn recipe shared by the ADD, SUB, CMP,
// AND, and OR families.
func (c *cpu) binaryToReg(run func(*cpu) error, extra uint8) error {
	c.ctx.run = run
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	if extra > 0 {
		c.recipeInternal(extra)
	}
	c.recipeCommit()
	return nil
}

// binaryRMW builds the Dn,<ea> read-modify-write recipe.
func (c *cpu) binaryRMW(run func(*cpu) error) error {
	c.ctx.run = run
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opWriteEA, sideSrc)
	c.recipeCommit()
	return nil
}

func addToReg(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryToReg(addToRegRun, longExtraCycles(c.srcSpec(), c.ctx.size))
}

func addToRegRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res, flags := addWithFlags(c.ctx.data, c.regs.readD(x(ir), size), size)
	c.regs.writeD(x(ir), res, size)
	c.setArithFlags(flags)
	return nil
}

func addToMem(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryRMW(addToMemRun)
}

func addToMemRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res, flags := addWithFlags(c.regs.readD(x(ir), size), c.ctx.data, size)
	c.ctx.data = res
	c.setArithFlags(flags)
	return nil
}

func subToReg(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryToReg(subToRegRun, longExtraCycles(c.srcSpec(), c.ctx.size))
}

func subToRegRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res, flags := subWithFlags(c.ctx.data, c.regs.readD(x(ir), size), size)
	c.regs.writeD(x(ir), res, size)
	c.setArithFlags(flags)
	return nil
}

func subToMem(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryRMW(subToMemRun)
}

func subToMemRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res, flags := subWithFlags(c.regs.readD(x(ir), size), c.ctx.data, size)
	c.ctx.data = res
	c.setArithFlags(flags)
	return nil
}

// adda and suba consume the whole address register, sign-extend word
// sources, and leave the flags alone.
func adda(c *cpu) error {
	c.ctx.size = addaSize(c.regs.ir)
	extra := uint8(4)
	if c.ctx.size == Long && c.srcSpec().isMemory() {
		extra = 2
	}
	return c.binaryToReg(addaRun, extra)
}

func addaRun(c *cpu) error {
	ir := c.regs.ir
	src := c.ctx.data
	if c.ctx.size == Word {
		src = Word.signExtend(src)
	}
	c.regs.writeA(x(ir), c.regs.readA(x(ir))+src, Long)
	return nil
}

func suba(c *cpu) error {
	c.ctx.size = addaSize(c.regs.ir)
	extra := uint8(4)
	if c.ctx.size == Long && c.srcSpec().isMemory() {
		extra = 2
	}
	return c.binaryToReg(subaRun, extra)
}

func subaRun(c *cpu) error {
	ir := c.regs.ir
	src := c.ctx.data
	if c.ctx.size == Word {
		src = Word.signExtend(src)
	}
	c.regs.writeA(x(ir), c.regs.readA(x(ir))-src, Long)
	return nil
}

func addaSize(ir uint16) Size {
	if ir&0x0100 != 0 {
		return Long
	}
	return Word
}

// addqSubq covers both quick forms; bit 8 selects subtract.
func addqSubq(c *cpu) error {
	ir := c.regs.ir
	c.ctx.size = operandSizeFromOpcode(ir)
	spec := c.srcSpec()

	if spec.isRegister() {
		c.ctx.run = addqSubqRegisterRun
		c.recipeBegin()
		c.recipePush(opExecute, 0)
		if spec.kind == eaAddressRegister || c.ctx.size == Long {
			c.recipeInternal(4)
		}
		c.recipeCommit()
		return nil
	}
	return c.binaryRMW(addqSubqMemoryRun)
}

func quickValue(ir uint16) uint32 {
	q := uint32(x(ir))
	if q == 0 {
		q = 8
	}
	return q
}

func addqSubqRegisterRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	q := quickValue(ir)
	reg := y(ir)

	if (ir>>3)&0x7 == 1 {
		// address register: full width, no flags
		if ir&0x0100 != 0 {
			c.regs.writeA(reg, c.regs.readA(reg)-q, Long)
		} else {
			c.regs.writeA(reg, c.regs.readA(reg)+q, Long)
		}
		return nil
	}

	var res uint32
	var flags uint16
	if ir&0x0100 != 0 {
		res, flags = subWithFlags(q, c.regs.readD(reg, size), size)
	} else {
		res, flags = addWithFlags(q, c.regs.readD(reg, size), size)
	}
	c.regs.writeD(reg, res, size)
	c.setArithFlags(flags)
	return nil
}

func addqSubqMemoryRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	q := quickValue(ir)

	var res uint32
	var flags uint16
	if ir&0x0100 != 0 {
		res, flags = subWithFlags(q, c.ctx.data, size)
	} else {
		res, flags = addWithFlags(q, c.ctx.data, size)
	}
	c.ctx.data = res
	c.setArithFlags(flags)
	return nil
}

// addiSubiCmpi shares one decoder: the immediate is fetched first,
// then the destination resolves and is read back.
func addiSubiCmpi(c *cpu) error {
	ir := c.regs.ir
	c.ctx.size = operandSizeFromOpcode(ir)
	dstSpec := c.srcSpec()
	compare := ir&0x0f00 == 0x0c00

	var run func(*cpu) error
	switch {
	case compare:
		run = cmpiRun
	case ir&0x0f00 == 0x0600:
		run = addiRun
	default:
		run = subiRun
	}
	c.ctx.run = run

	c.recipeBegin()
	c.scheduleEA(sideSrc, eaSpec{kind: eaImmediate}, true)
	c.scheduleEA(sideDst, dstSpec, true)
	c.recipePush(opReadEA, sideDst)
	c.recipePush(opExecute, 0)
	if dstSpec.kind == eaDataRegister && c.ctx.size == Long {
		if compare {
			c.recipeInternal(2)
		} else {
			c.recipeInternal(4)
		}
	}
	if !compare {
		c.recipePush(opWriteEA, sideDst)
	}
	c.recipeCommit()
	return nil
}

func addiRun(c *cpu) error {
	res, flags := addWithFlags(c.immValue(&c.ctx.src), c.ctx.data, c.ctx.size)
	c.ctx.data = res
	c.setArithFlags(flags)
	return nil
}

func subiRun(c *cpu) error {
	res, flags := subWithFlags(c.immValue(&c.ctx.src), c.ctx.data, c.ctx.size)
	c.ctx.data = res
	c.setArithFlags(flags)
	return nil
}

func cmpiRun(c *cpu) error {
	_, flags := subWithFlags(c.immValue(&c.ctx.src), c.ctx.data, c.ctx.size)
	c.setCmpFlags(flags)
	return nil
}

func mulu(c *cpu) error {
	c.ctx.size = Word
	return c.binaryToReg(muluRun, 0)
}

func muluRun(c *cpu) error {
	c.internal(66)
	ir := c.regs.ir
	result := uint32(uint16(c.ctx.data)) * uint32(uint16(c.regs.d[x(ir)]))
	c.regs.writeD(x(ir), result, Long)
	c.setLogicFlags(result, Long)
	return nil
}

func muls(c *cpu) error {
	c.ctx.size = Word
	return c.binaryToReg(mulsRun, 0)
}

func mulsRun(c *cpu) error {
	c.internal(66)
	ir := c.regs.ir
	result := uint32(int32(int16(c.ctx.data)) * int32(int16(c.regs.d[x(ir)])))
	c.regs.writeD(x(ir), result, Long)
	c.setLogicFlags(result, Long)
	return nil
}

func divu(c *cpu) error {
	c.ctx.size = Word
	return c.binaryToReg(divuRun, 0)
}

func divuRun(c *cpu) error {
	ir := c.regs.ir
	divisor := c.ctx.data & 0xffff
	if divisor == 0 {
		c.exception(XDivByZero)
		return nil
	}
	c.internal(136)

	dividend := c.regs.d[x(ir)]
	quotient := dividend / divisor
	if quotient > 0xffff {
		c.regs.sr = (c.regs.sr &^ srCarry) | srOverflow
		return nil
	}
	remainder := dividend % divisor
	c.regs.writeD(x(ir), remainder<<16|quotient, Long)

	var flags uint16
	if quotient == 0 {
		flags |= srZero
	}
	if quotient&0x8000 != 0 {
		flags |= srNegative
	}
	c.regs.sr = (c.regs.sr &^ (srNegative | srZero | srOverflow | srCarry)) | flags
	return nil
}

func divs(c *cpu) error {
	c.ctx.size = Word
	return c.binaryToReg(divsRun, 0)
}

func divsRun(c *cpu) error {
	ir := c.regs.ir
	divisor := int32(int16(c.ctx.data))
	if divisor == 0 {
		c.exception(XDivByZero)
		return nil
	}
	c.internal(154)

	dividend := int32(c.regs.d[x(ir)])
	quotient := dividend / divisor
	if quotient > 0x7fff || quotient < -0x8000 {
		c.regs.sr = (c.regs.sr &^ srCarry) | srOverflow
		return nil
	}
	remainder := dividend % divisor
	result := uint32(uint16(remainder))<<16 | uint32(uint16(quotient))
	c.regs.writeD(x(ir), result, Long)

	var flags uint16
	if quotient == 0 {
		flags |= srZero
	}
	if quotient&0x8000 != 0 {
		flags |= srNegative
	}
	c.regs.sr = (c.regs.sr &^ (srNegative | srZero | srOverflow | srCarry)) | flags
	return nil
}
