package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceString(t *testing.T) {
	for expected, place := range map[string]Place{
		"x":          Local("x"),
		"*x":         Local("x").Deref(),
		"*(*x)":      Local("x").Deref().Deref(),
		"(*x).f":     Local("x").Deref().Field("f"),
		"x.f[i]":     Local("x").Field("f").Index("i"),
		"(*x[0]).g":  Local("x").Index("0").Deref().Field("g"),
		"*(*x).next": Local("x").Deref().Field("next").Deref(),
	} {
		assert.Equal(t, expected, place.String())
	}
}

func TestPlaceProjectionDoesNotAlias(t *testing.T) {
	base := Local("x").Field("a")
	f := base.Field("f")
	g := base.Field("g")

	assert.Equal(t, "x.a.f", f.String())
	assert.Equal(t, "x.a.g", g.String())
	assert.Equal(t, "x.a", base.String())
}

func TestConstantString(t *testing.T) {
	assert.Equal(t, "const 1:int", Constant{Literal: "1", Type: "int"}.String())
	assert.Equal(t, "const nil", Constant{Literal: "nil"}.String())
}

func TestTerminatorString(t *testing.T) {
	assert.Equal(t, "goto -> bb2", Goto{Target: 2}.String())
	assert.Equal(t, "switchInt(c) -> [true: bb1, otherwise: bb2]", SwitchInt{
		Discr:   Copy{Place: Local("c")},
		Values:  []string{"true"},
		Targets: []BlockID{1, 2},
	}.String())
	assert.Equal(t, "t0 = fmt.Println(x, const 1:int) -> bb1", Call{
		Func:        Const{Constant: Constant{Literal: "fmt.Println"}},
		Args:        []Operand{Copy{Place: Local("x")}, Const{Constant: Constant{Literal: "1", Type: "int"}}},
		Destination: Local("t0"),
		Target:      1,
		Cleanup:     NoBlock,
	}.String())
	assert.Equal(t, "t1 = (*p).m() -> bb?", Call{
		Func:        Copy{Place: Local("p").Deref().Field("m")},
		Destination: Local("t1"),
		Target:      NoBlock,
		Cleanup:     NoBlock,
	}.String())
}
