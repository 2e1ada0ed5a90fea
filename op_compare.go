package m68k

func init() {
	for opmode := uint16(0); opmode <= 2; opmode++ {
		srcMask := eaMaskAll
		if opmode == 0 {
			srcMask &^= eaMaskAddressRegister
		}
		registerInstruction(cmpToReg, 0xb000|opmode<<6, 0xf1c0, srcMask)
	}
	registerInstruction(cmpa, 0xb0c0, 0xf1c0, eaMaskAll)
	registerInstruction(cmpa, 0xb1c0, 0xf1c0, eaMaskAll)
}

func cmpToReg(c *cpu) error {
	c.ctx.size = operandSizeFromOpcode(c.regs.ir)
	extra := uint8(0)
	if c.ctx.size == Long {
		extra = 2
	}
	return c.binaryToReg(cmpToRegRun, extra)
}

// cmpToRegRun subtracts without storing; X survives the comparison.
func cmpToRegRun(c *cpu) error {
	ir := c.regs.ir
	_, flags := subWithFlags(c.ctx.data, c.regs.readD(x(ir), c.ctx.size), c.ctx.size)
	c.setCmpFlags(flags)
	return nil
}

func cmpa(c *cpu) error {
	c.ctx.size = addaSize(c.regs.ir)
	return c.binaryToReg(cmpaRun, 2)
}

// cmpaRun sign-extends a word source and compares against the full
// address register.
func cmpaRun(c *cpu) error {
	ir := c.regs.ir
	src := c.ctx.data
	if c.ctx.size == Word {
		src = Word.signExtend(src)
	}
	_, flags := subWithFlags(src, c.regs.readA(x(ir)), Long)
	c.setCmpFlags(flags)
	return nil
}
