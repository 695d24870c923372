package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ResourceCycle/internal/model"
	"ResourceCycle/internal/recorder"
	"ResourceCycle/internal/report"
	"ResourceCycle/internal/scheduler"
	"ResourceCycle/internal/simulator"
	"ResourceCycle/internal/stats"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// adhoc collects the flags shared by the deplete, replenish and target commands.
var adhoc simulator.Scenario

var depleteCmd = &cobra.Command{
	Use:   "deplete",
	Short: "Drain a pool down to empty or to its minimum threshold",
	Example: `  cyclesim deplete --available 100 --withdraw 15
  cyclesim deplete --available 100 --withdraw 15 --threshold 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adhoc.Name, adhoc.Mode = "adhoc-depletion", model.ModeDepletion
		return runScenario(adhoc)
	},
}

var replenishCmd = &cobra.Command{
	Use:     "replenish",
	Short:   "Drain a pool while random refills may top it back up",
	Example: `  cyclesim replenish --capacity 200 --available 200 --withdraw 25 --probability 30 --min 10 --max 40 --low-water 50 --limit 20 --seed 7`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adhoc.Name, adhoc.Mode = "adhoc-replenishment", model.ModeReplenishment
		return runScenario(adhoc)
	},
}

var targetCmd = &cobra.Command{
	Use:     "target",
	Short:   "Withdraw until a cumulative target is reached or the pool runs dry",
	Example: `  cyclesim target --available 200 --withdraw 20 --target 75`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adhoc.Name, adhoc.Mode = "adhoc-target", model.ModeTarget
		return runScenario(adhoc)
	},
}

var scenarioSeed int64

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name]",
	Short: "Run a scenario from the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, ok := cfg.Scenario(args[0])
		if !ok {
			return fmt.Errorf("unknown scenario %q (see 'cyclesim list')", args[0])
		}
		if cmd.Flags().Changed("seed") {
			sc.Seed = scenarioSeed
		}
		return runScenario(sc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured scenarios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, sc := range cfg.Scenarios {
			line := fmt.Sprintf("%-20s %-13s available=%d withdraw=%d", sc.Name, sc.Mode, sc.Available, sc.WithdrawalPerStep)
			if sc.Cron != "" {
				line += fmt.Sprintf(" cron=%q", sc.Cron)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var (
	batchRuns int
	batchSeed int64
)

var batchCmd = &cobra.Command{
	Use:   "batch [name]",
	Short: "Run a scenario over many seeds and summarize the outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, ok := cfg.Scenario(args[0])
		if !ok {
			return fmt.Errorf("unknown scenario %q (see 'cyclesim list')", args[0])
		}
		logger.Debug("running batch", zap.String("scenario", sc.Name), zap.Int("runs", batchRuns), zap.Int64("base_seed", batchSeed))
		bs, err := stats.Batch(sc, batchRuns, batchSeed)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatBatch(bs))
		return nil
	},
}

var (
	historyScenario string
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs from the SQLite database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if history == nil {
			return errors.New("history needs a SQLite database (--sqlite or database.sqlite_path)")
		}
		rows, err := history.RecentRuns(historyScenario, historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatHistory(rows))
		return nil
	},
}

var runOnStart bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scenarios on their cron schedules until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sched := scheduler.NewScheduler(rec, logger, cfg.Schedule.Seed)
		sched.OnRun = func(name string, res *model.RunResult) {
			fmt.Fprintln(cmd.OutOrStdout(), report.FormatRun(name, res))
		}
		n, err := sched.RegisterAll(cfg.Scenarios)
		if err != nil {
			return fmt.Errorf("register cron tasks: %w", err)
		}
		if n == 0 && !runOnStart {
			return errors.New("no scenario has a cron expression")
		}
		sched.Start()
		defer sched.Stop()

		if runOnStart {
			logger.Info("run-on-start enabled, running every scenario now")
			for _, sc := range cfg.Scenarios {
				if _, err := sched.RunNow(sc.Name); err != nil {
					logger.Error("run on start", zap.String("scenario", sc.Name), zap.Error(err))
				}
			}
		}

		logger.Info("cyclesim is running, press Ctrl+C to stop")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received, stopping")
		return nil
	},
}

// runScenario runs sc, prints the report and records the run.
func runScenario(sc simulator.Scenario) error {
	res, err := sc.Run(nil)
	if err != nil {
		return err
	}
	logger.Debug("run finished",
		zap.String("scenario", sc.Name),
		zap.String("stop_reason", string(res.Summary.StopReason)),
		zap.Int("steps", res.Summary.Steps))

	fmt.Fprint(rootCmd.OutOrStdout(), report.FormatRun(sc.Name, res))
	if err := rec.RecordRun(recorder.NewRunEvent(sc.Name, sc.Seed, res)); err != nil {
		logger.Error("record run", zap.Error(err))
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{depleteCmd, replenishCmd, targetCmd} {
		f := c.Flags()
		f.Int64Var(&adhoc.CapacityMax, "capacity", 0, "capacity used for percentage display (0 disables)")
		f.Int64Var(&adhoc.Available, "available", 100, "initial pool quantity")
		f.Int64Var(&adhoc.WithdrawalPerStep, "withdraw", 10, "amount requested per step")
	}
	depleteCmd.Flags().Int64Var(&adhoc.MinimumThreshold, "threshold", 0, "stop once the pool is at or below this floor")
	targetCmd.Flags().Int64Var(&adhoc.Target, "target", 0, "cumulative amount to withdraw")

	rf := replenishCmd.Flags()
	rf.IntVar(&adhoc.Replenish.Probability, "probability", 30, "percent chance of a refill per step")
	rf.Int64Var(&adhoc.Replenish.Min, "min", 10, "smallest refill, inclusive")
	rf.Int64Var(&adhoc.Replenish.Max, "max", 40, "largest refill, inclusive")
	rf.Int64Var(&adhoc.Replenish.LowWaterMark, "low-water", 50, "refills are only rolled below this level")
	rf.BoolVar(&adhoc.Replenish.CapAtCapacity, "cap", false, "never refill past --capacity")
	rf.IntVar(&adhoc.SafetyLimitSteps, "limit", 20, "hard cap on the number of steps")
	rf.Int64Var(&adhoc.Seed, "seed", 1, "random seed")

	scenarioCmd.Flags().Int64Var(&scenarioSeed, "seed", 0, "override the scenario seed")

	batchCmd.Flags().IntVarP(&batchRuns, "runs", "n", 1000, "number of runs")
	batchCmd.Flags().Int64Var(&batchSeed, "seed", 1, "seed of the first run")

	historyCmd.Flags().StringVar(&historyScenario, "scenario", "", "only show this scenario")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")

	scheduleCmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "run every scenario once at startup")
}
