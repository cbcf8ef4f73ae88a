package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/fromssa"
	"github.com/BarrensZeppelin/effects/internal/config"
	"github.com/BarrensZeppelin/effects/pkgutil"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

var runCmd = &cobra.Command{
	Use:   "run [packages]",
	Short: "Analyse packages and write the constraint log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		return runAnalysis(cfg, dir, cpuprofile, args)
	},
}

func init() {
	f := runCmd.Flags()
	f.String("config", "", "config file (default ./"+config.ProjectFile+" if present)")
	f.String("log", "", "constraint log to write")
	f.String("propagation", "", "fixpoint or single-pass")
	f.Bool("shared", false, "append to an existing log instead of truncating it")
	f.String("snapshot", "", "write a MessagePack snapshot of the relations to `file`")
	f.Bool("tests", false, "include test packages")
	f.BoolP("verbose", "v", false, "log every analysed function")
	f.String("dir", "", "alternative directory to run the go build tool in")
	f.String("cpuprofile", "", "write cpu profile to `file`")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("log") {
		cfg.LogPath, _ = f.GetString("log")
	}
	if f.Changed("propagation") {
		cfg.Propagation, _ = f.GetString("propagation")
	}
	if f.Changed("shared") {
		cfg.SharedLog, _ = f.GetBool("shared")
	}
	if f.Changed("snapshot") {
		cfg.SnapshotPath, _ = f.GetString("snapshot")
	}
	if f.Changed("tests") {
		cfg.Tests, _ = f.GetBool("tests")
	}
	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}

	return cfg, cfg.Validate()
}

func runAnalysis(cfg *config.Config, dir, cpuprofile string, queries []string) error {
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Println("Failed to close", f.Name())
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	pkgs, err := pkgutil.LoadPackagesWithConfig(&packages.Config{
		Mode:  pkgutil.LoadMode,
		Tests: cfg.Tests,
		Dir:   dir,
	}, queries...)
	if err != nil {
		return fmt.Errorf("loading packages failed: %w", err)
	}

	log.Printf("Loaded %d packages", len(pkgs))

	prog, spkgs := pkgutil.BuildSSA(pkgs, ssa.InstantiateGenerics)
	funcs := pkgutil.SourceFunctions(prog, spkgs)

	log.Printf("Built packages, %d functions", len(funcs))

	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	sess := effects.NewSession(opts)
	defer sess.Close()

	var (
		results []*effects.Result
		skipped int
	)
	for _, fn := range funcs {
		body, err := fromssa.Lower(fn)
		if err == nil {
			var res *effects.Result
			if res, err = sess.Analyze(body); err == nil {
				results = append(results, res)
				continue
			}
		}

		skipped++
		switch {
		case errors.Is(err, effects.ErrUnsupportedConstruct):
			if cfg.Verbose {
				log.Printf("%s: %v", prog.Fset.Position(fn.Pos()), err)
			}
		default:
			log.Printf("%s: %v", prog.Fset.Position(fn.Pos()), err)
		}
	}

	log.Printf("Analysed %d functions (%d skipped), next effect id %v",
		len(results), skipped, sess.NextID())

	if cfg.SnapshotPath != "" {
		mode, _ := effects.ParsePropagation(cfg.Propagation)
		if err := effects.SaveSnapshot(cfg.SnapshotPath, effects.NewSnapshot(mode, results)); err != nil {
			return err
		}
	}

	return sess.Close()
}
