package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"latchfw/firmware"
	"latchfw/sim"
	"latchfw/x/conv"
)

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:          "latchsim",
		Short:        "Simulate the button/latch firmware",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log every transition")
	root.AddCommand(newRunCmd(&debug), newCyclesCmd(), newListCmd())
	return root
}

func newRunCmd(debug *bool) *cobra.Command {
	var opts struct {
		builtin []string
		delay   string
		mode    string
		noDelay bool
	}
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml...]",
		Short: "Run scenario files or built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.OutOrStdout(), *debug)

			var scs []sim.Scenario
			for _, n := range opts.builtin {
				sc, err := sim.Builtin(n)
				if err != nil {
					return err
				}
				scs = append(scs, sc)
			}
			for _, f := range args {
				sc, err := sim.LoadScenario(f)
				if err != nil {
					return err
				}
				scs = append(scs, sc)
			}
			if len(scs) == 0 {
				for _, n := range sim.BuiltinNames() {
					sc, _ := sim.Builtin(n)
					scs = append(scs, sc)
				}
			}

			for _, sc := range scs {
				if cmd.Flags().Changed("delay") {
					sc.Delay = opts.delay
				}
				if cmd.Flags().Changed("mode") {
					sc.Mode = opts.mode
				}
				if opts.noDelay {
					sc.NoDelay = true
				}
				tr, err := sim.Run(cmd.Context(), sc)
				if err != nil {
					log.Error("scenario failed", "scenario", sc.Name, "err", err)
					return err
				}
				report(log.With("run", runID()), tr)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&opts.builtin, "builtin", "b", nil, "built-in scenario names")
	cmd.Flags().StringVar(&opts.delay, "delay", "", "override the debounce delay, e.g. 60ms")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "override the toggle mode: literal|edge")
	cmd.Flags().BoolVar(&opts.noDelay, "no-delay", false, "drop every delay")
	return cmd
}

func report(log *slog.Logger, tr *sim.Trace) {
	for _, r := range tr.Records {
		log.Debug("transition",
			"scenario", tr.Name,
			"at", r.At,
			"sample", r.Sample,
			"state", r.State.String(),
			"latch", conv.Bits8(r.Latch),
		)
	}
	for _, err := range tr.Errors {
		log.Warn("io error", "scenario", tr.Name, "err", err)
	}
	log.Info("scenario",
		"name", tr.Name,
		"initial", conv.Bits8(tr.Initial),
		"transitions", len(tr.Records),
		"final", conv.Bits8(tr.Final),
		"samples", tr.Samples,
		"elapsed", tr.End,
	)
}

func runID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func newCyclesCmd() *cobra.Command {
	var (
		hz uint32
		ms uint
	)
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Convert a busy-wait delay to CPU cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := time.Duration(ms) * time.Millisecond
			n := firmware.DelayCycles(hz, d)
			newLogger(cmd.OutOrStdout(), false).Info("delay",
				"cpu_hz", hz,
				"delay", d,
				"cycles", n,
				"actual", firmware.CyclesDuration(hz, n),
			)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&hz, "cpu-hz", firmware.CPUHz, "CPU clock in Hz")
	cmd.Flags().UintVar(&ms, "ms", uint(firmware.DefaultDelay/time.Millisecond), "delay in milliseconds")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in scenarios",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, n := range sim.BuiltinNames() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}
