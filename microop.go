package m68k

import "fmt"

// The scheduler turns every decoded instruction into an ordered queue
// of typed micro-operations and retires exactly one per tick. The queue
// is the core's whole concurrency model: a cooperative coroutine kept
// as plain data, which is what lets an exception discard an in-flight
// instruction by clearing the queue and substituting its own sequence.

type microKind uint8

const (
	opInternal microKind = iota // arg = idle cycles
	opFetchExt                  // consume irc into ctx.ext, refill
	opFetchExtDeferred          // consume irc, refill deferred to the new PC
	opCalcEA                    // arg = side
	opReadEA                    // arg = side
	opWriteEA                   // arg = side
	opExecute                   // run the instruction body
	opPushWord                  // arg = exception frame word index
	opPushLongHi                // push high half of ctx.data2
	opPushLongLo                // push low half of ctx.data2
	opPullWord                  // pop into ctx.data
	opPullLongHi                // pop high half into ctx.data2
	opPullLongLo                // pop low half into ctx.data2
	opReadVector
	opBeginException
	opRefill // fetch irc at PC
	opNextIR // shift irc into ir, then refill
	opMovemStep
)

const (
	sideSrc  uint8 = 0
	sideDst  uint8 = 1
	sideNone uint8 = 0xff
)

// followup marks a continuation of an instruction that spans multiple
// ticks, so the next micro-op knows where to resume.
type followup uint8

const (
	tagNone followup = iota
	tagEASrc
	tagEADst
	tagWriteLo
	tagMovem
)

type micro struct {
	kind microKind
	arg  uint8
}

const queueCap = 32

type microQueue struct {
	ops  [queueCap]micro
	head int
	n    int
}

func (q *microQueue) reset() {
	q.head, q.n = 0, 0
}

func (q *microQueue) empty() bool {
	return q.n == 0
}

func (q *microQueue) push(op micro) {
	if q.n == queueCap {
		panic("micro-op queue overflow")
	}
	q.ops[(q.head+q.n)%queueCap] = op
	q.n++
}

// pushFront schedules a continuation ahead of everything pending. The
// queue is never re-ordered otherwise.
func (q *microQueue) pushFront(op micro) {
	if q.n == queueCap {
		panic("micro-op queue overflow")
	}
	q.head = (q.head + queueCap - 1) % queueCap
	q.ops[q.head] = op
	q.n++
}

func (q *microQueue) pop() (micro, bool) {
	if q.n == 0 {
		return micro{}, false
	}
	op := q.ops[q.head]
	q.head = (q.head + 1) % queueCap
	q.n--
	return op, true
}

// exec is the transient context of the in-flight instruction. It is
// reset wholesale when decode begins, so no field can leak across
// instruction boundaries.
type exec struct {
	pc0  uint32 // address of the opcode being executed
	size Size

	src eaState
	dst eaState

	ext     [4]uint16
	extAddr [4]uint32
	nExt    uint8 // extension words consumed so far
	nSched  uint8 // extension words assigned at decode

	data  uint32 // operand / result in flight
	data2 uint32 // secondary scratch: push/pull longs, return addresses

	stage uint8
	run   func(*cpu) error

	// predecrement undo record: the register is restored and the
	// decrement discarded when a later address error aborts the
	// access.
	predecReg int8
	predecOld uint32

	frame [7]uint16 // exception frame words, ascending addresses

	movemMask    uint16
	movemIdx     uint8
	movemLoad    bool
	movemReverse bool
}

func (c *cpu) sideState(side uint8) *eaState {
	if side == sideSrc {
		return &c.ctx.src
	}
	return &c.ctx.dst
}

func (c *cpu) setFollowup(tag followup) {
	c.inFollowup = true
	c.followupTag = tag
}

func (c *cpu) clearFollowup() {
	c.inFollowup = false
	c.followupTag = tagNone
}

// ------------------------------------------------------------------
// recipe construction

func (c *cpu) recipeBegin() {
	c.queue.reset()
}

func (c *cpu) recipePush(kind microKind, arg uint8) {
	c.queue.push(micro{kind: kind, arg: arg})
}

func (c *cpu) recipeInternal(cycles uint8) {
	c.recipePush(opInternal, cycles)
}

// recipeCommit closes a sequential recipe: the pipeline shifts and
// refills behind the instruction.
func (c *cpu) recipeCommit() {
	c.recipePush(opNextIR, 0)
}

// recipeCommitJump closes a control-transfer recipe: both pipeline
// stages refill at the new PC.
func (c *cpu) recipeCommitJump() {
	c.recipePush(opRefill, 0)
	c.recipePush(opNextIR, 0)
}

// ------------------------------------------------------------------
// micro-op retirement

func (c *cpu) execOp(op micro) error {
	switch op.kind {
	case opInternal:
		c.internal(uint32(op.arg))
		return nil

	case opFetchExt:
		return c.fetchExt(op.arg, true)

	case opFetchExtDeferred:
		return c.fetchExt(op.arg, false)

	case opCalcEA:
		return c.calcEAFinish(op.arg)

	case opReadEA:
		return c.readEA(op.arg)

	case opWriteEA:
		return c.writeEA(op.arg)

	case opExecute:
		return c.ctx.run(c)

	case opPushWord:
		return c.pushWord(c.ctx.frame[op.arg])

	case opPushLongHi:
		sp := c.regs.sp()
		*sp -= 4
		return c.writeWord(*sp, uint16(c.ctx.data2>>16))

	case opPushLongLo:
		return c.writeWord(*c.regs.sp()+2, uint16(c.ctx.data2))

	case opPullWord:
		v, err := c.pullWord()
		if err != nil {
			return err
		}
		c.ctx.data = uint32(v)
		return nil

	case opPullLongHi:
		v, err := c.readWord(*c.regs.sp())
		if err != nil {
			return err
		}
		c.ctx.data2 = uint32(v) << 16
		return nil

	case opPullLongLo:
		sp := c.regs.sp()
		v, err := c.readWord(*sp + 2)
		if err != nil {
			return err
		}
		c.ctx.data2 |= uint32(v)
		*sp += 4
		return nil

	case opReadVector:
		return c.readVectorOp()

	case opBeginException:
		return c.beginException()

	case opRefill:
		return c.refill()

	case opNextIR:
		return c.nextIR()

	case opMovemStep:
		return c.movemStep()

	default:
		// reaching this arm is a core bug, not an emulated fault
		panic(fmt.Sprintf("unhandled micro-op kind %d", op.kind))
	}
}
