// Package mir defines the control-flow graph consumed by the effect
// constraint generator. A Body is an ordered list of basic blocks; each block
// holds an ordered list of statements and exactly one terminator, and the
// terminator names the successor blocks.
//
// The statement, rvalue, operand and terminator sets are closed: every
// variant is declared in this package and tagged with an unexported marker
// method.
package mir

import (
	"fmt"
	"strings"
)

// BlockID is the index of a block within its Body.
type BlockID int

// Entry is the block every traversal starts from.
const Entry BlockID = 0

// NoBlock marks an absent optional successor (e.g. a call without an unwind
// edge).
const NoBlock BlockID = -1

func (b BlockID) String() string {
	if b == NoBlock {
		return "bb?"
	}
	return fmt.Sprintf("bb%d", int(b))
}

type Body struct {
	// Name of the function the body belongs to. Used in diagnostics only.
	Name   string
	Blocks []*BasicBlock
}

type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// Block returns the block with the given index, or nil if the body has no
// such block.
func (b *Body) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(b.Blocks) {
		return nil
	}
	return b.Blocks[id]
}

// ProjectionKind selects how a Projection refines a place.
type ProjectionKind uint8

const (
	Deref ProjectionKind = iota
	Field
	Index
)

// Projection is one step of a place path. Name holds the field name for
// Field and the rendered index for Index; it is unused for Deref.
type Projection struct {
	Kind ProjectionKind
	Name string
}

// Place is a local optionally refined by a sequence of projections.
type Place struct {
	Local      string
	Projection []Projection
}

// Local returns the place denoting the local itself.
func Local(name string) Place { return Place{Local: name} }

// Deref returns the place reached by dereferencing p.
func (p Place) Deref() Place { return p.project(Projection{Kind: Deref}) }

// Field returns the place of field name within p.
func (p Place) Field(name string) Place {
	return p.project(Projection{Kind: Field, Name: name})
}

// Index returns the place of element idx within p.
func (p Place) Index(idx string) Place {
	return p.project(Projection{Kind: Index, Name: idx})
}

func (p Place) project(proj Projection) Place {
	projs := make([]Projection, len(p.Projection), len(p.Projection)+1)
	copy(projs, p.Projection)
	return Place{Local: p.Local, Projection: append(projs, proj)}
}

func (p Place) String() string {
	s := p.Local
	for i, proj := range p.Projection {
		switch proj.Kind {
		case Deref:
			s = "*" + s
			// A deref followed by further projections must be parenthesised.
			if i+1 < len(p.Projection) {
				s = "(" + s + ")"
			}
		case Field:
			s = s + "." + proj.Name
		case Index:
			s = s + "[" + proj.Name + "]"
		default:
			panic(fmt.Errorf("unknown projection kind %d", proj.Kind))
		}
	}
	return s
}

// Constant is a compile-time value. Literal is already rendered by the host;
// Type is optional.
type Constant struct {
	Literal string
	Type    string
}

func (c Constant) String() string {
	var sb strings.Builder
	sb.WriteString("const ")
	sb.WriteString(c.Literal)
	if c.Type != "" {
		sb.WriteString(":")
		sb.WriteString(c.Type)
	}
	return sb.String()
}
