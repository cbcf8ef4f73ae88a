// Package effectpass runs the effect constraint generator as a
// golang.org/x/tools/go/analysis pass, once for every function declared in
// the analysed packages.
//
// Functions that cannot be analysed are reported as diagnostics at the
// function; the remaining functions are unaffected. The pass result is the
// []*effects.Result of the package's functions.
package effectpass

import (
	"errors"
	"reflect"
	"sync"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/fromssa"
	"github.com/BarrensZeppelin/effects/internal/config"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
)

const doc = `generate contextual effect constraints

The effects analysis numbers the basic blocks of every function, computes
the blocks that may run before and after each of them, and appends the
resulting constraints to a log shared by the whole run.`

// Analyzer writes to the log named by the project configuration (see
// internal/config), unless overridden with the -log and -propagation flags.
//
// go/analysis drivers have no hook that runs after the last package, so the
// session of Analyzer lives until the process exits, which releases the log.
// Records are written unbuffered, one function at a time, so nothing is
// pending at exit.
var Analyzer = New(nil)

type runner struct {
	once sync.Once
	sess *effects.Session
	err  error

	// Flag overrides for the default session.
	logPath     string
	propagation string
}

// New returns an analyzer that analyses into sess. If sess is nil, a
// session is created from the configuration on first use. A session passed
// in is never closed by the analyzer; the caller closes it after the run.
func New(sess *effects.Session) *analysis.Analyzer {
	r := &runner{sess: sess}
	a := &analysis.Analyzer{
		Name:       "effects",
		Doc:        doc,
		Run:        r.run,
		Requires:   []*analysis.Analyzer{buildssa.Analyzer},
		ResultType: reflect.TypeOf([]*effects.Result(nil)),
	}
	a.Flags.StringVar(&r.logPath, "log", "", "constraint log to write (default from configuration)")
	a.Flags.StringVar(&r.propagation, "propagation", "", "fixpoint or single-pass (default from configuration)")
	return a
}

func (r *runner) session() (*effects.Session, error) {
	r.once.Do(func() {
		if r.sess != nil {
			return
		}

		cfg, err := config.Load()
		if err != nil {
			r.err = err
			return
		}
		if r.logPath != "" {
			cfg.LogPath = r.logPath
		}
		if r.propagation != "" {
			cfg.Propagation = r.propagation
		}

		opts, err := cfg.SessionOptions()
		if err != nil {
			r.err = err
			return
		}
		r.sess = effects.NewSession(opts)
	})
	return r.sess, r.err
}

func (r *runner) run(pass *analysis.Pass) (interface{}, error) {
	sess, err := r.session()
	if err != nil {
		return nil, err
	}

	ssainfo := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	var results []*effects.Result
	for _, fn := range ssainfo.SrcFuncs {
		body, err := fromssa.Lower(fn)
		if errors.Is(err, fromssa.ErrNoBody) {
			continue
		} else if err != nil {
			pass.Reportf(fn.Pos(), "%v", err)
			continue
		}

		res, err := sess.Analyze(body)
		if err != nil {
			pass.Reportf(fn.Pos(), "%v", err)
			continue
		}
		results = append(results, res)
	}

	return results, nil
}
