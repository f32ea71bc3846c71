package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений: 5 полей и дескрипторы (@hourly, @every 5m).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule разбирает cron-выражение.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// NextDue вычисляет следующее время выполнения после from.
// Расписание интерпретируется в loc (nil — UTC), результат в UTC.
func NextDue(schedule cron.Schedule, from time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return schedule.Next(from.In(loc)).UTC()
}

// NextDueN возвращает n следующих времён выполнения.
func NextDueN(schedule cron.Schedule, from time.Time, loc *time.Location, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for range n {
		from = NextDue(schedule, from, loc)
		if from.IsZero() {
			break
		}
		out = append(out, from)
	}
	return out
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
