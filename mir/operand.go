package mir

import "fmt"

type otag struct{}

func (otag) operandTag() {}

// Operand is either a place read (Copy, Move) or a constant (Const).
type Operand interface {
	operandTag()
	fmt.Stringer
}

type Copy struct {
	otag
	Place Place
}

type Move struct {
	otag
	Place Place
}

type Const struct {
	otag
	Constant Constant
}

func (o Copy) String() string { return o.Place.String() }
func (o Move) String() string { return o.Place.String() }
func (o Const) String() string { return o.Constant.String() }

type rtag struct{}

func (rtag) rvalueTag() {}

// Rvalue is the right-hand side of an assignment.
type Rvalue interface {
	rvalueTag()
}

// Use reads an operand unchanged.
type Use struct {
	rtag
	Operand Operand
}

// Repeat builds an array of Count copies of Operand.
type Repeat struct {
	rtag
	Operand Operand
	Count   string
}

// Ref takes a reference to Place.
type Ref struct {
	rtag
	Place   Place
	Mutable bool
}

// AddressOf takes a raw address of Place.
type AddressOf struct {
	rtag
	Place   Place
	Mutable bool
}

// Len reads the length of Place.
type Len struct {
	rtag
	Place Place
}

type Cast struct {
	rtag
	Operand Operand
	Type    string
}

type BinaryOp struct {
	rtag
	Op   string
	X, Y Operand
}

type UnaryOp struct {
	rtag
	Op string
	X  Operand
}

// Discriminant reads the variant tag of Place.
type Discriminant struct {
	rtag
	Place Place
}

// Aggregate constructs a compound value of the given Kind from Operands.
type Aggregate struct {
	rtag
	Kind     string
	Operands []Operand
}

// ShallowInitBox allocates a box around Operand without initialising its
// contents.
type ShallowInitBox struct {
	rtag
	Operand Operand
	Type    string
}

// CopyForDeref copies Place so that it can be dereferenced.
type CopyForDeref struct {
	rtag
	Place Place
}

// NullaryOp produces a value from a type alone (size, alignment, ...).
type NullaryOp struct {
	rtag
	Op   string
	Type string
}

// ThreadLocalRef takes a reference to a thread-local static.
type ThreadLocalRef struct {
	rtag
	Name string
}
