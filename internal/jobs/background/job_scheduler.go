package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/log"
)

const newArrivalsJob = "new-arrivals-refresh"

// NewArrivalRefresher is the part of the product service the scheduler drives.
type NewArrivalRefresher interface {
	RefreshNewArrivals(ctx context.Context, days int) (marked, unmarked int64, err error)
}

// JobScheduler runs the catalog's periodic maintenance.
type JobScheduler struct {
	scheduler gocron.Scheduler
	refresher NewArrivalRefresher
	days      int
	timeout   time.Duration
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the new-arrival refresh to run every interval.
// A non-positive days disables the job.
func NewJobScheduler(refresher NewArrivalRefresher, days int, interval time.Duration) (*JobScheduler, error) {
	if interval <= 0 {
		return nil, errors.New("job interval must be positive")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		refresher: refresher,
		days:      days,
		timeout:   interval,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(interval); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Infof("Starting background job scheduler with %d job(s)", len(js.jobs))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs(interval time.Duration) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if js.days <= 0 {
		log.Warn("NEW_ARRIVAL_DAYS is not positive, new arrival refresh disabled")
		return nil
	}
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.refreshNewArrivals),
		gocron.WithName(newArrivalsJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	js.jobs[newArrivalsJob] = job
	return nil
}

func (js *JobScheduler) refreshNewArrivals() error {
	ctx, cancel := context.WithTimeout(context.Background(), js.timeout)
	defer cancel()
	return js.RunNewArrivals(ctx)
}

// RunNewArrivals performs one refresh immediately.
func (js *JobScheduler) RunNewArrivals(ctx context.Context) error {
	start := time.Now()
	marked, unmarked, err := js.refresher.RefreshNewArrivals(ctx, js.days)
	if err != nil {
		log.Errorf("New arrival refresh failed: %v", err)
		return err
	}
	log.Infof("New arrival refresh: marked=%d unmarked=%d days=%d took=%s", marked, unmarked, js.days, time.Since(start))
	return nil
}
