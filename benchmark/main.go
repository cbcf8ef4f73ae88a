package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/fromssa"
	"github.com/BarrensZeppelin/effects/mir"
	"github.com/BarrensZeppelin/effects/pkgutil"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

var benchmarks = []repo{
	{"grpc/grpc-go", "23ac72b6454a2bcac32e19ccf501ca3a070f517c"},
	{"gin-gonic/gin", "dc9cff732e27ce4ac21b25772a83c462a28b8b80"},
	{"fatedier/frp", "f1454e91f56508603e4c2e3c7bf37ccb534458c2"},
	// kubernetes takes a long time to load...
	// {"kubernetes/kubernetes", "2a5fd3076aee14c1be51c703a7e5b447d638387d"},
	{"junegunn/fzf", "58835e40f35fd1007de9bf607e06d555f085354c"},
	{"caddyserver/caddy", "1b73e3862d312ac2057265bf2a5fd95760dbe9da"},
}

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var dir = "."

type repo struct{ name, commit string }

func (r repo) install() string {
	repodir := filepath.Join(dir, "_benchfiles", strings.ReplaceAll(r.name, "/", "#"))
	if _, err := os.Stat(repodir); err != nil {
		if !os.IsNotExist(err) {
			log.Fatal(err)
		}

		log.Printf("Installing %s @ %s", r.name, r.commit)

		os.MkdirAll(repodir, 0750)

		cmd := exec.Command("sh", "-c",
			fmt.Sprintf(`git init && \
	git config advice.detachedHead false && \
	git remote add origin https://github.com/%s.git && \
	git fetch --depth 1 origin %s && \
	git checkout FETCH_HEAD`, r.name, r.commit))
		cmd.Dir = repodir
		if err := cmd.Run(); err != nil {
			log.Fatal(err)
		}
	}

	return repodir
}

type stats struct {
	duration    time.Duration
	analysed    int
	blocks      int
	records     int
	ancestors   int
	descendants int
}

func (s stats) json() map[string]any {
	return map[string]any{
		"duration":    s.duration.Milliseconds(),
		"analysed":    s.analysed,
		"blocks":      s.blocks,
		"records":     s.records,
		"ancestors":   s.ancestors,
		"descendants": s.descendants,
	}
}

// analyse runs a session over the lowered bodies. The log is discarded.
func analyse(mode effects.Propagation, bodies []*mir.Body) stats {
	sess := effects.NewSession(effects.Options{
		Sink:        effects.NewWriterSink(io.Discard),
		Propagation: mode,
	})
	defer sess.Close()

	var s stats
	start := time.Now()
	for _, body := range bodies {
		res, err := sess.Analyze(body)
		if err != nil {
			if !errors.Is(err, effects.ErrUnsupportedConstruct) {
				log.Fatal(err)
			}
			continue
		}

		s.analysed++
		s.blocks += len(res.Blocks)
		s.records += len(res.Records)
		for _, bb := range res.Blocks {
			s.ancestors += len(res.Ancestors[bb])
			s.descendants += len(res.Descendants[bb])
		}
	}
	s.duration = time.Since(start)
	return s
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Fatal("Failed to close", f)
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	dirs := make([]string, len(benchmarks))
	for i, repo := range benchmarks {
		dirs[i] = repo.install()
	}

	dataFile, err := os.Create(filepath.Join(dir, "data.jsonl"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := dataFile.Close(); err != nil {
			log.Fatalf("Failed to close: %v %v", dataFile, err)
		}
	}()

	dataEncoder := json.NewEncoder(dataFile)

	for i, dir := range dirs {
		var modules []string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if filepath.Base(path) == "go.mod" {
				modules = append(modules, path)
			}
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}

		println()
		log.Printf("Found %d modules for %s", len(modules), benchmarks[i].name)

		for _, mod := range modules {
			gopath, err := filepath.Abs(filepath.Dir(dir))
			if err != nil {
				log.Fatal(err)
			}

			println()
			moddir := filepath.Dir(mod)
			pkgs, err := pkgutil.LoadPackagesWithConfig(&packages.Config{
				Mode:  pkgutil.LoadMode | packages.NeedModule,
				Tests: true,
				Dir:   moddir,
				Env:   append(os.Environ(), "GO111MODULE=on", "GOPATH="+gopath),
			}, "./...")
			if err != nil {
				log.Print(moddir, err)
				continue
			}

			if len(pkgs) == 0 {
				log.Printf("Skipping module at %v as it has no packages", mod)
				continue
			}

			modulePath := pkgs[0].Module.Path
			log.Printf("Loaded %d packages for %s", len(pkgs), modulePath)

			prog, spkgs := pkgutil.BuildSSA(pkgs, ssa.InstantiateGenerics)
			funcs := pkgutil.SourceFunctions(prog, spkgs)
			log.Printf("SSA construction complete, %d functions", len(funcs))

			start := time.Now()
			var bodies []*mir.Body
			for _, fn := range funcs {
				if body, err := fromssa.Lower(fn); err == nil {
					bodies = append(bodies, body)
				}
			}
			lowerDuration := time.Since(start)
			log.Printf("Lowered %d functions in %v", len(bodies), lowerDuration)

			data := map[string]any{
				"module":        modulePath,
				"packages":      len(pkgs),
				"functions":     len(funcs),
				"lowered":       len(bodies),
				"lowerDuration": lowerDuration.Milliseconds(),
			}

			exact := analyse(effects.FixedPoint, bodies)
			log.Printf(`Fixpoint analysis completed in %v
Analysed functions: %d, blocks: %d`, exact.duration, exact.analysed, exact.blocks)
			data["fixpoint"] = exact.json()

			approx := analyse(effects.SinglePass, bodies)
			log.Printf("Single-pass analysis completed in %v", approx.duration)
			if approx.analysed != exact.analysed || approx.blocks != exact.blocks {
				log.Fatalf("What? %d/%d != %d/%d",
					approx.analysed, approx.blocks, exact.analysed, exact.blocks)
			}
			log.Printf("Ancestors: %d (%.2f%%), descendants: %d (%.2f%%)",
				approx.ancestors, float64(approx.ancestors*100)/float64(exact.ancestors),
				approx.descendants, float64(approx.descendants*100)/float64(exact.descendants))
			data["singlePass"] = approx.json()

			dataEncoder.Encode(data)
		}
	}
}
