package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Dispatch/internal/config"
	"github.com/shaiso/Dispatch/internal/scheduler"
)

// NewScheduleCmd создаёт группу команд для расписания.
func NewScheduleCmd(configFn func() (*config.Config, error), clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect the dispatch schedule",
	}

	cmd.AddCommand(
		newScheduleNextCmd(configFn, outputFn),
		newScheduleStatusCmd(clientFn, outputFn),
	)

	return cmd
}

// nextRun — строка вывода schedule next.
type nextRun struct {
	N     int       `json:"n"`
	At    time.Time `json:"at"`
	Local string    `json:"local"`
}

func newScheduleNextCmd(configFn func() (*config.Config, error), outputFn func() *Output) *cobra.Command {
	var count int
	var expr string
	var tz string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show upcoming scheduled runs (computed locally)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be >= 1")
			}

			cfg, err := configFn()
			if err != nil {
				return err
			}
			if expr != "" {
				cfg.Job.Cron = expr
			}
			if tz != "" {
				cfg.Job.Timezone = tz
			}

			schedule, err := scheduler.ParseSchedule(cfg.Job.Cron)
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(cfg.Job.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone %q: %w", cfg.Job.Timezone, err)
			}

			times := scheduler.NextDueN(schedule, time.Now(), loc, count)
			runs := make([]nextRun, len(times))
			for i, t := range times {
				runs[i] = nextRun{N: i + 1, At: t, Local: t.In(loc).Format(time.RFC3339)}
			}

			outputFn().Upcoming(runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 5, "Number of upcoming runs")
	cmd.Flags().StringVar(&expr, "cron", "", "Cron expression (default: job.cron from config)")
	cmd.Flags().StringVar(&tz, "timezone", "", "Timezone (default: job.timezone from config)")

	return cmd
}

func newScheduleStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the scheduler state reported by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := clientFn().Schedule()
			if err != nil {
				return err
			}

			outputFn().Schedule(st)
			return nil
		},
	}
}
