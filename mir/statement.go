package mir

type stag struct{}

func (stag) statementTag() {}

// Statement is a non-terminating instruction of a basic block.
type Statement interface {
	statementTag()
}

type Assign struct {
	stag
	Place  Place
	Rvalue Rvalue
}

// StorageLive marks the start of a local's storage.
type StorageLive struct {
	stag
	Local string
}

// StorageDead marks the end of a local's storage.
type StorageDead struct {
	stag
	Local string
}

type AscribeUserType struct {
	stag
	Place Place
	Type  string
}

type Retag struct {
	stag
	Place Place
}

type FakeRead struct {
	stag
	Place Place
}

type Coverage struct {
	stag
}

type Nop struct {
	stag
}

type SetDiscriminant struct {
	stag
	Place   Place
	Variant int
}

type Deinit struct {
	stag
	Place Place
}

// Intrinsic is a non-diverging intrinsic call lowered to a statement.
type Intrinsic struct {
	stag
	Name     string
	Operands []Operand
}
