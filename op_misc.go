package m68k

func init() {
	for size := uint16(0); size <= 2; size++ {
		registerInstruction(clr, 0x4200|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(neg, 0x4400|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(not, 0x4600|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(tst, 0x4a00|size<<6, 0xffc0, eaMaskDataAlterable)
	}
	registerInstruction(ext, 0x4880, 0xfff8, 0)
	registerInstruction(ext, 0x48c0, 0xfff8, 0)
	registerInstruction(swap, 0x4840, 0xfff8, 0)
	registerInstruction(exg, 0xc140, 0xfff8, 0)
	registerInstruction(exg, 0xc148, 0xfff8, 0)
	registerInstruction(exg, 0xc188, 0xfff8, 0)
}

// singleRMW builds the read-modify-write recipe shared by CLR, NEG,
// and NOT. Register forms pay 2 extra cycles for a long.
func (c *cpu) singleRMW(run func(*cpu) error) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	c.ctx.run = run
	spec := c.srcSpec()

	c.recipeBegin()
	if spec.kind == eaDataRegister {
		c.ctx.src.spec = spec
		c.recipePush(opExecute, 0)
		if c.ctx.size == Long {
			c.recipeInternal(2)
		}
		c.recipeCommit()
		return nil
	}

	c.scheduleEA(sideSrc, spec, true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opWriteEA, sideSrc)
	c.recipeCommit()
	return nil
}

// singleOperand fetches the current value for a register form so the
// run functions see a uniform ctx.data path.
func (c *cpu) singleValue() uint32 {
	if c.ctx.src.spec.kind == eaDataRegister {
		return c.regs.readD(y(c.regs.ir), c.ctx.size)
	}
	return c.ctx.data
}

func (c *cpu) singleStore(value uint32) {
	if c.ctx.src.spec.kind == eaDataRegister {
		c.regs.writeD(y(c.regs.ir), value, c.ctx.size)
		return
	}
	c.ctx.data = value
}

func clr(c *cpu) error {
	return c.singleRMW(clrRun)
}

// clrRun: the 68000 reads the operand before clearing it, which the
// memory recipe already models; the value itself is discarded.
func clrRun(c *cpu) error {
	c.singleStore(0)
	c.setLogicFlags(0, c.ctx.size)
	return nil
}

func neg(c *cpu) error {
	return c.singleRMW(negRun)
}

func negRun(c *cpu) error {
	res, flags := subWithFlags(c.singleValue(), 0, c.ctx.size)
	c.singleStore(res)
	c.setArithFlags(flags)
	return nil
}

func not(c *cpu) error {
	return c.singleRMW(notRun)
}

func notRun(c *cpu) error {
	res := ^c.singleValue() & c.ctx.size.mask()
	c.singleStore(res)
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

func tst(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	c.ctx.run = tstRun
	spec := c.srcSpec()

	c.recipeBegin()
	if spec.kind == eaDataRegister {
		c.ctx.src.spec = spec
		c.recipePush(opExecute, 0)
		c.recipeCommit()
		return nil
	}
	c.scheduleEA(sideSrc, spec, true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func tstRun(c *cpu) error {
	c.setLogicFlags(c.singleValue(), c.ctx.size)
	return nil
}

// ext sign-extends within a data register: byte to word when bit 6 is
// clear, word to long when set.
func ext(c *cpu) error {
	c.ctx.run = extRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func extRun(c *cpu) error {
	ir := c.regs.ir
	reg := y(ir)
	if ir&0x0040 == 0 {
		value := Byte.signExtend(c.regs.readD(reg, Byte))
		c.regs.writeD(reg, value, Word)
		c.setLogicFlags(value&0xffff, Word)
		return nil
	}
	value := Word.signExtend(c.regs.readD(reg, Word))
	c.regs.writeD(reg, value, Long)
	c.setLogicFlags(value, Long)
	return nil
}

func swap(c *cpu) error {
	c.ctx.run = swapRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func swapRun(c *cpu) error {
	reg := y(c.regs.ir)
	value := c.regs.d[reg]>>16 | c.regs.d[reg]<<16
	c.regs.d[reg] = value
	c.setLogicFlags(value, Long)
	return nil
}

func exg(c *cpu) error {
	c.ctx.run = exgRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeInternal(2)
	c.recipeCommit()
	return nil
}

func exgRun(c *cpu) error {
	ir := c.regs.ir
	rx, ry := x(ir), y(ir)

	switch ir & 0x00f8 {
	case 0x0040: // data, data
		c.regs.d[rx], c.regs.d[ry] = c.regs.d[ry], c.regs.d[rx]
	case 0x0048: // address, address
		px, py := c.regs.aptr(rx), c.regs.aptr(ry)
		*px, *py = *py, *px
	default: // data, address
		pa := c.regs.aptr(ry)
		c.regs.d[rx], *pa = *pa, c.regs.d[rx]
	}
	return nil
}
