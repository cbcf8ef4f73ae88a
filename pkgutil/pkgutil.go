package pkgutil

import (
	"errors"
	"os"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Should be equivalent to packages.LoadAllSyntax (which is deprecated)
const LoadMode = packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypes |
	packages.NeedTypesSizes | packages.NeedImports | packages.NeedName |
	packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedDeps

func LoadPackagesFromSource(source string) ([]*packages.Package, error) {
	// We use the Overlay mechanism to allow the tool to load a non-existent file.
	config := &packages.Config{
		Mode:  LoadMode,
		Tests: false,
		Dir:   "",
		Env:   append(os.Environ(), "GO111MODULE=off", "GOPATH=/fake"),
		Overlay: map[string][]byte{
			"/fake/testpackage/main.go": []byte(source),
		},
	}

	return LoadPackagesWithConfig(config, "/fake/testpackage/main.go")
}

func LoadPackagesWithConfig(config *packages.Config, queries ...string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(config, queries...)
	switch {
	case err != nil:
		return nil, err
	case packages.PrintErrors(pkgs) > 0:
		return pkgs, errors.New("errors encountered while loading packages")
	default:
		return pkgs, nil
	}
}

// BuildSSA builds the SSA form of pkgs and their dependencies. The returned
// packages correspond to pkgs; packages that failed to type check are nil.
func BuildSSA(pkgs []*packages.Package, mode ssa.BuilderMode) (*ssa.Program, []*ssa.Package) {
	prog, spkgs := ssautil.AllPackages(pkgs, mode)
	prog.Build()
	return prog, spkgs
}

// SourceFunctions returns the functions with bodies declared in the source
// of the given packages, anonymous functions included, ordered by position.
func SourceFunctions(prog *ssa.Program, spkgs []*ssa.Package) []*ssa.Function {
	want := map[*ssa.Package]bool{}
	for _, pkg := range spkgs {
		if pkg != nil {
			want[pkg] = true
		}
	}

	var funcs []*ssa.Function
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Synthetic == "" && want[fn.Pkg] && len(fn.Blocks) > 0 {
			funcs = append(funcs, fn)
		}
	}

	sort.Slice(funcs, func(i, j int) bool {
		if funcs[i].Pos() != funcs[j].Pos() {
			return funcs[i].Pos() < funcs[j].Pos()
		}
		return funcs[i].String() < funcs[j].String()
	})
	return funcs
}
