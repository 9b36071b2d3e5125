// The solvor command solves a DIMACS CNF instance with the CDCL engine and
// prints the outcome in the usual competition format ("s" status line and,
// for satisfiable instances, a "v" values line).
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solvor/solvor/parsers"
	"github.com/solvor/solvor/sat"
)

var (
	flagMaxConflicts int64
	flagMaxRestarts  int64
	flagPhaseSaving  bool
	flagGzipped      bool
	flagVerbose      bool
	flagCPUProfile   bool
	flagMemProfile   bool
)

var rootCmd = &cobra.Command{
	Use:          "solvor [flags] <instance.cnf>",
	Short:        "CDCL SAT solver for DIMACS CNF instances",
	Args:         cobra.ExactArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().Int64Var(&flagMaxConflicts, "max-conflicts", -1,
		"maximum number of conflicts allowed to solve the problem (-1 = no maximum)")
	rootCmd.Flags().Int64Var(&flagMaxRestarts, "max-restarts", -1,
		"maximum number of restarts allowed to solve the problem (-1 = no maximum)")
	rootCmd.Flags().BoolVar(&flagPhaseSaving, "phase-saving", false,
		"make decisions reuse the last value of each variable")
	rootCmd.Flags().BoolVar(&flagGzipped, "gzip", false,
		"treat the instance file as gzip compressed")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"log search statistics")
	rootCmd.Flags().BoolVar(&flagCPUProfile, "cpuprof", false,
		"save pprof CPU profile in cpuprof")
	rootCmd.Flags().BoolVar(&flagMemProfile, "memprof", false,
		"save pprof memory profile in memprof")
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		log.SetLevel(logrus.InfoLevel)
	}

	if flagCPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	opts := sat.DefaultOptions
	opts.MaxConflicts = flagMaxConflicts
	opts.MaxRestarts = flagMaxRestarts
	opts.PhaseSaving = flagPhaseSaving
	opts.Logger = log

	s := sat.NewSolver(opts)
	if err := parsers.LoadDIMACS(args[0], flagGzipped, s); err != nil {
		return errors.Wrap(err, "could not load instance")
	}

	log.WithFields(logrus.Fields{
		"variables": s.NumVariables(),
		"clauses":   s.NumConstraints(),
	}).Info("instance loaded")

	switch s.Solve() {
	case sat.True:
		fmt.Println("s SATISFIABLE")
		fmt.Println(modelLine(s.Models[len(s.Models)-1]))
	case sat.False:
		fmt.Println("s UNSATISFIABLE")
	default:
		fmt.Println("s UNKNOWN")
	}

	if flagMemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// modelLine formats a model as a DIMACS values line, e.g. "v 1 -2 3 0".
func modelLine(model []bool) string {
	sb := strings.Builder{}
	sb.WriteByte('v')
	for i, b := range model {
		if b {
			fmt.Fprintf(&sb, " %d", i+1)
		} else {
			fmt.Fprintf(&sb, " -%d", i+1)
		}
	}
	sb.WriteString(" 0")
	return sb.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
