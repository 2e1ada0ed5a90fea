package m68k

func init() {
	for opmode := uint16(0); opmode <= 2; opmode++ {
		registerInstruction(andToReg, 0xc000|opmode<<6, 0xf1c0, eaMaskData)
		registerInstruction(orToReg, 0x8000|opmode<<6, 0xf1c0, eaMaskData)
	}
	for opmode := uint16(4); opmode <= 6; opmode++ {
		registerInstruction(andToMem, 0xc000|opmode<<6, 0xf1c0, eaMaskMemoryAlterable)
		registerInstruction(orToMem, 0x8000|opmode<<6, 0xf1c0, eaMaskMemoryAlterable)
		registerInstruction(eorToEA, 0xb000|opmode<<6, 0xf1c0, eaMaskDataAlterable)
	}

	for size := uint16(0); size <= 2; size++ {
		registerInstruction(logicImmediate, 0x0000|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(logicImmediate, 0x0200|size<<6, 0xffc0, eaMaskDataAlterable)
		registerInstruction(logicImmediate, 0x0a00|size<<6, 0xffc0, eaMaskDataAlterable)
	}
}

func andToReg(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryToReg(andToRegRun, longExtraCycles(c.srcSpec(), c.ctx.size))
}

func andToRegRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res := c.ctx.data & c.regs.readD(x(ir), size)
	c.regs.writeD(x(ir), res, size)
	c.setLogicFlags(res, size)
	return nil
}

func andToMem(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryRMW(andToMemRun)
}

func andToMemRun(c *cpu) error {
	ir := c.regs.ir
	res := c.ctx.data & c.regs.readD(x(ir), c.ctx.size)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

func orToReg(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryToReg(orToRegRun, longExtraCycles(c.srcSpec(), c.ctx.size))
}

func orToRegRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res := c.ctx.data | c.regs.readD(x(ir), size)
	c.regs.writeD(x(ir), res, size)
	c.setLogicFlags(res, size)
	return nil
}

func orToMem(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	return c.binaryRMW(orToMemRun)
}

func orToMemRun(c *cpu) error {
	ir := c.regs.ir
	res := c.ctx.data | c.regs.readD(x(ir), c.ctx.size)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

// eorToEA: EOR only stores toward the effective address. The register
// destination form covers EOR Dn,Dm.
func eorToEA(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	if c.srcSpec().kind == eaDataRegister {
		extra := uint8(0)
		if c.ctx.size == Long {
			extra = 4
		}
		return c.binaryToReg(eorRegisterRun, extra)
	}
	return c.binaryRMW(eorMemoryRun)
}

func eorRegisterRun(c *cpu) error {
	ir := c.regs.ir
	size := c.ctx.size
	res := c.regs.readD(x(ir), size) ^ c.regs.readD(y(ir), size)
	c.regs.writeD(y(ir), res, size)
	c.setLogicFlags(res, size)
	return nil
}

func eorMemoryRun(c *cpu) error {
	ir := c.regs.ir
	res := c.ctx.data ^ c.regs.readD(x(ir), c.ctx.size)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

// logicImmediate shares the ADDI recipe shape for ORI, ANDI, and EORI.
func logicImmediate(c *cpu) error {
	ir := c.regs.ir
	c.ctx.size = operandSizeFromOpcode(ir)
	dstSpec := c.srcSpec()

	switch ir & 0x0f00 {
	case 0x0000:
		c.ctx.run = oriRun
	case 0x0200:
		c.ctx.run = andiRun
	default:
		c.ctx.run = eoriRun
	}

	c.recipeBegin()
	c.scheduleEA(sideSrc, eaSpec{kind: eaImmediate}, true)
	c.scheduleEA(sideDst, dstSpec, true)
	c.recipePush(opReadEA, sideDst)
	c.recipePush(opExecute, 0)
	if dstSpec.kind == eaDataRegister && c.ctx.size == Long {
		c.recipeInternal(4)
	}
	c.recipePush(opWriteEA, sideDst)
	c.recipeCommit()
	return nil
}

func oriRun(c *cpu) error {
	res := c.ctx.data | c.immValue(&c.ctx.src)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

func andiRun(c *cpu) error {
	res := c.ctx.data & c.immValue(&c.ctx.src)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}

func eoriRun(c *cpu) error {
	res := c.ctx.data ^ c.immValue(&c.ctx.src)
	c.ctx.data = res
	c.setLogicFlags(res, c.ctx.size)
	return nil
}
