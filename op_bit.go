package m68k

// Bit operations work on a long in a data register and on a single
// byte anywhere else. The Z flag always reflects the bit as it was
// before any modification.

const (
	bitTest = iota
	bitChange
	bitClear
	bitSet
)

func init() {
	for op := uint16(0); op <= 3; op++ {
		mask := eaMaskDataAlterable
		if op == bitTest {
			mask = eaMaskData
		}
		registerInstruction(bitDynamic, 0x0100|op<<6, 0xf1c0, mask)

		staticMask := mask
		if op == bitTest {
			staticMask &^= eaMaskImmediate
		}
		registerInstruction(bitStatic, 0x0800|op<<6, 0xffc0, staticMask)
	}
}

func bitOpKind(ir uint16) int {
	return int((ir >> 6) & 0x3)
}

// bitRegisterSettle is the idle time the register forms pay on top of
// the prefetch.
func bitRegisterSettle(op int) uint8 {
	switch op {
	case bitTest:
		return 2
	case bitClear:
		return 6
	default:
		return 4
	}
}

func bitDynamic(c *cpu) error {
	return bitDecode(c, false)
}

func bitStatic(c *cpu) error {
	return bitDecode(c, true)
}

func bitDecode(c *cpu, static bool) error {
	ir := c.regs.ir
	op := bitOpKind(ir)
	spec := c.srcSpec()

	c.recipeBegin()
	if static {
		// the bit number rides in the first extension word
		c.recipePush(opFetchExt, sideSrc)
		c.ctx.nSched++
		c.ctx.src.spec = eaSpec{kind: eaImmediate}
	}

	if spec.kind == eaDataRegister {
		c.ctx.size = Long
		c.ctx.run = bitRegisterRun
		c.recipePush(opExecute, 0)
		c.recipeInternal(bitRegisterSettle(op))
		c.recipeCommit()
		return nil
	}

	c.ctx.size = Byte
	c.ctx.run = bitMemoryRun
	c.scheduleEA(sideDst, spec, true)
	c.recipePush(opReadEA, sideDst)
	c.recipePush(opExecute, 0)
	if op != bitTest {
		c.recipePush(opWriteEA, sideDst)
	}
	c.recipeCommit()
	return nil
}

func (c *cpu) bitNumber() uint32 {
	ir := c.regs.ir
	if c.ctx.src.spec.kind == eaImmediate {
		return uint32(c.ctx.ext[0])
	}
	return c.regs.d[x(ir)]
}

func bitApply(c *cpu, value uint32, bit uint32) uint32 {
	if value&(1<<bit) == 0 {
		c.regs.sr |= srZero
	} else {
		c.regs.sr &^= srZero
	}

	switch bitOpKind(c.regs.ir) {
	case bitChange:
		return value ^ (1 << bit)
	case bitClear:
		return value &^ (1 << bit)
	case bitSet:
		return value | (1 << bit)
	}
	return value
}

func bitRegisterRun(c *cpu) error {
	c.clearFollowup()
	reg := y(c.regs.ir)
	bit := c.bitNumber() & 31
	c.regs.d[reg] = bitApply(c, c.regs.d[reg], bit)
	return nil
}

func bitMemoryRun(c *cpu) error {
	bit := c.bitNumber() & 7
	c.ctx.data = bitApply(c, c.ctx.data, bit)
	return nil
}
