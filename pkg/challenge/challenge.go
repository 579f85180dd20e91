// Package challenge generates the arithmetic problems that gate alarm
// dismissal when the math challenge setting is on.
package challenge

import (
	"fmt"
	"math/rand"

	"dreamclock/pkg/models"
)

// Problem is a generated arithmetic expression and its integer answer.
type Problem struct {
	Question string
	Answer   int
}

// Generate produces a problem for the given difficulty using rng. Easy uses
// addition or subtraction with operands 1-20 (subtraction never goes
// negative). Medium uses multiplication with operands 1-12 or addition with
// larger operands. Hard mixes two operators with standard precedence and
// small operands.
func Generate(d models.Difficulty, rng *rand.Rand) Problem {
	switch d {
	case models.DifficultyMedium:
		if rng.Intn(2) == 0 {
			c := rng.Intn(12) + 1
			e := rng.Intn(12) + 1
			return Problem{Question: fmt.Sprintf("%d × %d", c, e), Answer: c * e}
		}
		e := rng.Intn(50) + 10
		f := rng.Intn(30) + 5
		return Problem{Question: fmt.Sprintf("%d + %d", e, f), Answer: e + f}

	case models.DifficultyHard:
		ops := []string{"+", "-", "*"}
		op1 := ops[rng.Intn(len(ops))]
		op2 := ops[rng.Intn(len(ops))]
		x := rng.Intn(15) + 1
		y := rng.Intn(15) + 1
		z := rng.Intn(10) + 1
		return Problem{
			Question: fmt.Sprintf("%d %s %d %s %d", x, display(op1), y, display(op2), z),
			Answer:   evaluate(x, op1, y, op2, z),
		}

	default: // easy
		a := rng.Intn(20) + 1
		b := rng.Intn(20) + 1
		if rng.Intn(2) == 0 {
			return Problem{Question: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
		}
		hi, lo := a, b
		if lo > hi {
			hi, lo = lo, hi
		}
		return Problem{Question: fmt.Sprintf("%d - %d", hi, lo), Answer: hi - lo}
	}
}

func display(op string) string {
	if op == "*" {
		return "×"
	}
	return op
}

// evaluate applies two operators with standard precedence: multiplications
// bind before addition and subtraction.
func evaluate(x int, op1 string, y int, op2 string, z int) int {
	switch {
	case op1 == "*" && op2 == "*":
		return x * y * z
	case op1 == "*":
		return apply(x*y, op2, z)
	case op2 == "*":
		return apply(x, op1, y*z)
	default:
		return apply(apply(x, op1, y), op2, z)
	}
}

func apply(a int, op string, b int) int {
	if op == "-" {
		return a - b
	}
	return a + b
}

// maxAttempts is how many wrong answers a problem tolerates before the gate
// swaps in a fresh one.
const maxAttempts = 3

// Gate tracks one dismiss attempt sequence: a current problem and how many
// wrong answers it has seen.
type Gate struct {
	difficulty models.Difficulty
	rng        *rand.Rand
	problem    Problem
	attempts   int
}

// NewGate creates a gate with a freshly generated problem.
func NewGate(d models.Difficulty, rng *rand.Rand) *Gate {
	g := &Gate{difficulty: d, rng: rng}
	g.problem = Generate(d, rng)
	return g
}

// Problem returns the current problem.
func (g *Gate) Problem() Problem { return g.problem }

// Attempts returns the number of wrong answers against the current problem.
func (g *Gate) Attempts() int { return g.attempts }

// Submit verifies an answer. A wrong answer increments the attempt count,
// and the third wrong answer replaces the problem with a new one.
func (g *Gate) Submit(answer int) bool {
	if answer == g.problem.Answer {
		return true
	}
	g.attempts++
	if g.attempts >= maxAttempts {
		g.problem = Generate(g.difficulty, g.rng)
		g.attempts = 0
	}
	return false
}
