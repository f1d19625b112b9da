package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the periodic jobs. A panicking job is recovered and
// a job still running when it is due again is skipped.
type SchedulerService struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	logger := cron.PrintfLogger(log.Default())
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		entries: make(map[string]cron.EntryID),
	}
}

// ScheduleDaily runs job every day at HH:MM in the scheduler location.
func (s *SchedulerService) ScheduleDaily(name, at string, job func()) error {
	spec, err := dailySpec(at)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.entries[name] = id
	log.Printf("[info] schedule %s daily at %s (%s)", name, at, s.cron.Location())
	return nil
}

// ScheduleInterval runs job every interval, rounded down to whole seconds.
func (s *SchedulerService) ScheduleInterval(name string, interval time.Duration, job func()) error {
	if interval < time.Second {
		return fmt.Errorf("schedule %s: interval %s is shorter than a second", name, interval)
	}
	s.entries[name] = s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))
	log.Printf("[info] schedule %s every %s", name, interval)
	return nil
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// Next reports when the named job fires next; zero before Start or for unknown names.
func (s *SchedulerService) Next(name string) time.Time {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// dailySpec turns HH:MM into a seconds-resolution cron spec.
func dailySpec(at string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
