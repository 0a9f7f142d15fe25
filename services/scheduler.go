package services

import (
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// SchedulerService rolls recurring tasks forward. Once a daily or weekly task's
// due date passes it gets pushed to the next occurrence so the task shows up
// again instead of sitting overdue forever.
type SchedulerService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const SCHEDULER_SVC = "scheduler_svc"

func (svc SchedulerService) Id() string {
	return SCHEDULER_SVC
}

func (svc *SchedulerService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SchedulerService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)

	go svc.startRecurrenceScheduler()

	return nil
}

func (svc *SchedulerService) startRecurrenceScheduler() {
	for {
		now := time.Now()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		durationUntilMidnight := nextMidnight.Sub(now)

		timer := time.NewTimer(durationUntilMidnight)
		<-timer.C

		svc.AdvanceRecurringTasks()

		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			svc.AdvanceRecurringTasks()
		}
	}
}

// AdvanceRecurringTasks pushes every overdue recurring task to its next due
// date. Advancing in a loop covers tasks that were overdue by several periods,
// for example after downtime.
func (svc *SchedulerService) AdvanceRecurringTasks() {
	now := time.Now()
	tasks, err := svc.sqlSvc.Tasks().GetDueRecurringTasks(now)
	if err != nil {
		log.WithError(err).Error("Failed to load due recurring tasks")
		return
	}

	advanced := 0
	for i := range tasks {
		task := &tasks[i]
		if task.DueDate == nil {
			continue
		}

		next := *task.DueDate
		for !next.After(now) {
			next = nextOccurrence(next, task.RecurrenceRule)
		}

		if err := svc.sqlSvc.Tasks().AdvanceDueDate(task.ID, next); err != nil {
			log.WithError(err).WithField("task_id", task.ID).Error("Failed to advance task due date")
			continue
		}
		advanced++
	}

	if advanced > 0 {
		log.WithField("count", advanced).Info("Advanced recurring task due dates")
	}
}

func nextOccurrence(due time.Time, rule string) time.Time {
	switch rule {
	case "weekly":
		return due.AddDate(0, 0, 7)
	default:
		return due.AddDate(0, 0, 1)
	}
}
