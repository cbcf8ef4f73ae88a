// The effects-vet command runs the effect constraint generator as a vet
// tool:
//
//	EFFECTS_SHARED_LOG=true go vet -vettool=$(which effects-vet) ./...
//
// go vet starts one process per package, so the log must be shared for the
// processes to append to it rather than truncate it. EffectIDs are only
// unique within one process.
package main

import (
	"github.com/BarrensZeppelin/effects/passes/effectpass"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() { singlechecker.Main(effectpass.Analyzer) }
