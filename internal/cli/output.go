package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shaiso/Dispatch/internal/domain"
)

// Output печатает результаты команд: таблицы для человека, JSON для скриптов.
// Данные идут в w (stdout), служебные сообщения — в errW (stderr),
// так что `dispatch runs list --json | jq` не ломается.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput создаёт Output поверх stdout/stderr.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(jsonMode, os.Stdout, os.Stderr)
}

// NewOutputTo создаёт Output с заданными потоками данных и сообщений.
func NewOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Runs печатает страницу истории.
// Если страница заполнена до limit, подсказывает следующий offset.
func (o *Output) Runs(runs []RunResponse, page Page) {
	if o.jsonMode {
		o.encode(runs)
		return
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{r.ID, r.Reason, r.Status, r.StartedAt, formatDuration(r.DurationMs), r.Message}
	}
	o.table([]string{"ID", "REASON", "STATUS", "STARTED", "DURATION", "MESSAGE"}, rows)

	if page.Limit > 0 && page.Count == page.Limit {
		o.Notice(fmt.Sprintf("More runs may exist: --offset %d", page.Offset+page.Count))
	}
}

// Run печатает карточку одного run, по полю на строку.
func (o *Output) Run(run *RunResponse) {
	if o.jsonMode {
		o.encode(run)
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, f := range [][2]string{
		{"ID", run.ID},
		{"Job", run.Job},
		{"Reason", run.Reason},
		{"Status", run.Status},
		{"Scheduled", run.ScheduledAt},
		{"Started", run.StartedAt},
		{"Finished", run.FinishedAt},
		{"Duration", formatDuration(run.DurationMs)},
		{"Message", run.Message},
	} {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	tw.Flush()
}

// Schedule печатает состояние расписания на сервере.
func (o *Output) Schedule(st *ScheduleResponse) {
	if o.jsonMode {
		o.encode(st)
		return
	}
	o.table(
		[]string{"JOB", "NEXT_DUE", "LEADER"},
		[][]string{{st.Job, st.NextDue, strconv.FormatBool(st.Leader)}},
	)
}

// Upcoming печатает ближайшие плановые запуски.
func (o *Output) Upcoming(runs []nextRun) {
	if o.jsonMode {
		o.encode(runs)
		return
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{strconv.Itoa(r.N), r.At.Format(time.RFC3339), r.Local}
	}
	o.table([]string{"#", "UTC", "LOCAL"}, rows)
}

// Outcome печатает итог локального run.
// В текстовом режиме провал уходит в stderr.
func (o *Output) Outcome(outcome domain.Outcome) {
	if o.jsonMode {
		o.encode(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{string(outcome.Status), outcome.Message})
		return
	}

	if outcome.IsSuccess() {
		fmt.Fprintln(o.w, outcome.Message)
		return
	}
	fmt.Fprintln(o.errW, "Run failed: "+outcome.Message)
}

// Notice — служебное сообщение в stderr.
func (o *Output) Notice(msg string) {
	fmt.Fprintln(o.errW, msg)
}

func (o *Output) table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func (o *Output) encode(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func formatDuration(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}
