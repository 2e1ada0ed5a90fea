package main

import (
	"fmt"
	"log"

	"github.com/emu198x/m68k"
	asm "github.com/jenska/m68kasm"
)

const (
	stackPointer = 0x8000
	startAddress = 0x2000
	arrayBase    = 0x3000
)

const source = `
        MOVEQ #8,D3
outer:  LEA $3000,A1
        MOVEQ #8,D2
inner:  MOVE.L (A1),D0
        MOVE.L 4(A1),D1
        CMP.L D0,D1
        BGE.S noswap
        MOVE.L D1,(A1)
        MOVE.L D0,4(A1)
noswap: ADDQ.L #4,A1
        DBRA D2,inner
        DBRA D3,outer
halt:   BRA.S halt
`

func main() {
	program, err := asm.AssembleString(source)
	if err != nil {
		log.Fatalf("failed to assemble sort program: %v", err)
	}

	ram := m68k.NewRAM(0, 0x10000)
	bus := m68k.NewBus(ram)

	ram.WriteLong(0, stackPointer)
	ram.WriteLong(4, startAddress)
	for i, b := range program {
		ram.Write(startAddress+uint32(i), b)
	}

	values := []int32{42, -7, 1000, 0, -350, 99, 7, 512, -1, 33}
	for i, v := range values {
		ram.WriteLong(arrayBase+uint32(i*4), uint32(v))
	}

	cpu, err := m68k.NewCPU(bus)
	if err != nil {
		log.Fatalf("failed to create CPU: %v", err)
	}

	var lastPC uint32
	var steps int
	for steps = 0; steps < 100000; steps++ {
		lastPC = cpu.Registers().PC
		if err := cpu.Step(); err != nil {
			log.Fatalf("execution failed at PC %04x: %v", lastPC, err)
		}
		if cpu.Registers().PC == lastPC {
			break // reached the BRA halt loop
		}
	}
	if steps == 100000 {
		log.Fatalf("sort did not reach the halt loop; PC=%04x", cpu.Registers().PC)
	}

	fmt.Printf("Sorted array at 0x%04x:\n", uint32(arrayBase))
	for i := range values {
		value := ram.ReadLong(arrayBase + uint32(i*4))
		fmt.Printf("a[%d] = %d\n", i, int32(value))
	}
	fmt.Printf("Completed in %d instructions (%d cycles)\n", steps+1, cpu.Cycles())
}
