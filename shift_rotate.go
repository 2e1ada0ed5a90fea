package m68k

func init() {
	registerInstruction(shiftRotateRegister, 0xe000, 0xf0c0, 0)
	registerInstruction(shiftRotateRegister, 0xe040, 0xf0c0, 0)
	registerInstruction(shiftRotateRegister, 0xe080, 0xf0c0, 0)
	registerInstruction(shiftRotateMemory, 0xe0c0, 0xf8c0,
		eaMaskIndirect|eaMaskPostIncrement|eaMaskPreDecrement|
			eaMaskDisplacement|eaMaskIndex|eaMaskAbsoluteShort|eaMaskAbsoluteLong)
}

// shiftRotateRegister decodes the data-register forms. The shift count
// is not known until Execute retires (it may live in a register), so
// the per-bit cycles are paid at runtime inside the Execute op.
func shiftRotateRegister(c *cpu) error {
	opcode := c.regs.ir

	c.ctx.size = opSizes[(opcode>>6)&0x3]
	c.ctx.run = shiftRotateRegisterRun
	c.recipeBegin()
	c.recipePush(opExecute, 0)
	c.recipeCommit()
	return nil
}

func shiftRotateRegisterRun(c *cpu) error {
	opcode := c.regs.ir
	countField := int((opcode >> 9) & 0x7)
	left := (opcode>>8)&0x1 == 1
	operation := int((opcode >> 3) & 0x7)
	register := uint16(opcode & 0x7)

	registerCount := false
	if operation >= 4 {
		operation -= 4
		registerCount = true
	}

	var count int
	if registerCount {
		count = int(c.regs.d[countField] & 0x3f)
	} else {
		count = countField
		if count == 0 {
			count = 8
		}
	}

	size := c.ctx.size
	base := uint32(2)
	if size == Long {
		base = 4
	}
	c.internal(base + uint32(count)*2)

	value := c.regs.readD(register, size)
	result, flags := doShiftRotate(value, count, size.bits(), operation, left, c.regs.sr&srExtend != 0)
	c.regs.writeD(register, result, size)
	updateShiftRotateFlags(c, result, size.bits(), flags)
	return nil
}

// shiftRotateMemory decodes the one-bit memory forms (word only).
func shiftRotateMemory(c *cpu) error {
	c.ctx.size = Word
	c.ctx.run = shiftRotateMemoryRun
	c.recipeBegin()
	c.scheduleEA(sideSrc, c.srcSpec(), true)
	c.recipePush(opReadEA, sideSrc)
	c.recipePush(opExecute, 0)
	c.recipePush(opWriteEA, sideSrc)
	c.recipeCommit()
	return nil
}

func shiftRotateMemoryRun(c *cpu) error {
	opcode := c.regs.ir
	left := (opcode>>8)&0x1 != 0
	operation := int((opcode >> 9) & 0x3)

	result, flags := doShiftRotate(c.ctx.data, 1, 16, operation, left, c.regs.sr&srExtend != 0)
	c.ctx.data = result
	updateShiftRotateFlags(c, result, 16, flags)
	return nil
}

type shiftRotateFlags struct {
	carryOut     uint32
	changeExtend bool
	extendOut    bool
	overflow     bool
}

// doShiftRotate dispatches one of the eight shift/rotate operations.
// A zero count still updates the flags: carry clears, except the
// extend rotates which copy X into C.
func doShiftRotate(value uint32, count int, width int, operation int, left bool, extend bool) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask

	if count == 0 {
		var carry uint32
		if operation == 2 && extend {
			carry = 1
		}
		return value, shiftRotateFlags{carryOut: carry}
	}

	switch operation {
	case 0: // arithmetic shift
		if left {
			return asl(value, count, width)
		}
		return asr(value, count, width)
	case 1: // logical shift
		if left {
			return lsl(value, count, width)
		}
		return lsr(value, count, width)
	case 2: // rotate with extend
		if left {
			return roxl(value, count, width, extend)
		}
		return roxr(value, count, width, extend)
	default: // rotate
		if left {
			return rol(value, count, width)
		}
		return ror(value, count, width)
	}
}

// asl reports overflow when the sign bit changes at any step of the
// shift, not just between the first and last value.
func asl(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	sign := uint32(1) << (width - 1)
	value &= mask

	var carry uint32
	overflow := false
	for i := 0; i < count; i++ {
		carry = (value >> (width - 1)) & 1
		next := (value << 1) & mask
		if (value^next)&sign != 0 {
			overflow = true
		}
		value = next
	}
	return value, shiftRotateFlags{
		carryOut:     carry,
		changeExtend: true,
		extendOut:    carry != 0,
		overflow:     overflow,
	}
}

func asr(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	sign := value & (1 << (width - 1))
	var carry uint32
	for i := 0; i < count; i++ {
		carry = value & 1
		value >>= 1
		if sign != 0 {
			value |= 1 << (width - 1)
		}
	}
	return value & mask, shiftRotateFlags{carryOut: carry, changeExtend: true, extendOut: carry != 0}
}

func lsl(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	var carry uint32
	for i := 0; i < count; i++ {
		carry = (value >> (width - 1)) & 1
		value = (value << 1) & mask
	}
	return value, shiftRotateFlags{carryOut: carry, changeExtend: true, extendOut: carry != 0}
}

func lsr(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	var carry uint32
	for i := 0; i < count; i++ {
		carry = value & 1
		value >>= 1
	}
	return value, shiftRotateFlags{carryOut: carry, changeExtend: true, extendOut: carry != 0}
}

// roxl rotates through a width+1 bit field that includes X.
func roxl(value uint32, count, width int, extend bool) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	shift := count % (width + 1)
	for i := 0; i < shift; i++ {
		carry := b2i(extend)
		extend = (value>>(width-1))&1 != 0
		value = ((value << 1) | carry) & mask
	}
	return value, shiftRotateFlags{carryOut: b2i(extend), changeExtend: true, extendOut: extend}
}

func roxr(value uint32, count, width int, extend bool) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	shift := count % (width + 1)
	for i := 0; i < shift; i++ {
		carry := extend
		extend = value&1 != 0
		value = (value >> 1) | (b2i(carry) << (width - 1))
	}
	return value, shiftRotateFlags{carryOut: b2i(extend), changeExtend: true, extendOut: extend}
}

func rol(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	shift := count % width
	if shift == 0 {
		// a full rotation leaves the value intact; the last bit
		// rotated out is the result's low bit
		return value, shiftRotateFlags{carryOut: value & 1}
	}
	carry := (value >> (width - shift)) & 1
	result := ((value << shift) | (value >> (width - shift))) & mask
	return result, shiftRotateFlags{carryOut: carry}
}

func ror(value uint32, count, width int) (uint32, shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	value &= mask
	shift := count % width
	if shift == 0 {
		return value, shiftRotateFlags{carryOut: (value >> (width - 1)) & 1}
	}
	carry := (value >> (shift - 1)) & 1
	result := ((value >> shift) | (value << (width - shift))) & mask
	return result, shiftRotateFlags{carryOut: carry}
}

func updateShiftRotateFlags(c *cpu, result uint32, width int, flags shiftRotateFlags) {
	mask := uint32(1)<<width - 1
	result &= mask

	c.regs.sr &^= srZero | srNegative | srOverflow | srCarry
	if result == 0 {
		c.regs.sr |= srZero
	}
	if result&(1<<(width-1)) != 0 {
		c.regs.sr |= srNegative
	}
	if flags.carryOut != 0 {
		c.regs.sr |= srCarry
	}
	if flags.changeExtend {
		c.regs.sr &^= srExtend
		if flags.extendOut {
			c.regs.sr |= srExtend
		}
	}
	if flags.overflow {
		c.regs.sr |= srOverflow
	}
}

func b2i(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
