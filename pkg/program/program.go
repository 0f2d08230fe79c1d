// Package program loads movement programs from YAML and replays them
// against a robot.
//
// A program is a list of steps, each a single-key mapping:
//
//	name: square
//	pen: down
//	steps:
//	  - repeat: 4
//	    steps:
//	      - forward: 10
//	      - left: 90
//	  - pen: up
//	  - move: {direction: F, distance: 5, speed: 10}
//	  - turn: {direction: R, degrees: 45, speed: 30}
//	  - wheels: {left: 5, right: 10, duration: 2}
//
// Every argument is type-checked while parsing, so a program with a bad
// argument is rejected before any command reaches the robot.
package program

import (
	"context"
	"fmt"
	"os"
)

// MaxInstructions bounds the size of a program after repeats are expanded.
const MaxInstructions = 1_000_000

// Robot is the command surface a program drives. *finch.Robot implements it.
type Robot interface {
	Forward(distance float64) error
	Backward(distance float64) error
	TurnLeft(angle float64) error
	TurnRight(angle float64) error
	PenUp()
	PenDown()
	SetMove(direction string, distance, speed float64) error
	SetTurn(direction string, degrees, speed float64) error
	Wheels(left, right, duration float64) error
	Reset()
}

// Instruction is one command ready to run.
type Instruction struct {
	Step    string // source location, e.g. "steps[1]"
	Line    int
	Command string
	run     func(Robot) error
}

// Run executes the instruction on r.
func (in Instruction) Run(r Robot) error {
	return in.run(r)
}

// Program is a parsed, expanded movement program.
type Program struct {
	Name string

	// PenDown is the initial pen state requested by the program, or nil
	// to leave the robot's pen as it is.
	PenDown *bool

	Instructions []Instruction
}

// Load reads and parses the program at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	prog, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if prog.Name == "" {
		prog.Name = path
	}
	return prog, nil
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Run applies the program to r, stopping at the first failing instruction.
// The initial pen state, if set, is applied first. ctx is checked between
// instructions.
func (p *Program) Run(ctx context.Context, r Robot) error {
	if p.PenDown != nil {
		if *p.PenDown {
			r.PenDown()
		} else {
			r.PenUp()
		}
	}
	for _, in := range p.Instructions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.Run(r); err != nil {
			return &StepError{Step: in.Step, Line: in.Line, Command: in.Command, Err: err}
		}
	}
	return nil
}
