package jobs

import (
	"sort"
	"sync"
	"time"
)

// Debouncer holds the latest job per ID and fires it once no newer job with
// the same ID has arrived for the job's delay.
type Debouncer struct {
	mu      sync.Mutex
	fire    func(Job)
	timers  map[string]*time.Timer
	pending map[string]Job
	stopped bool
}

func NewDebouncer(fire func(Job)) *Debouncer {
	return &Debouncer{
		fire:    fire,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]Job),
	}
}

// Schedule replaces any pending job with the same ID and restarts its timer.
// A non-positive delay fires immediately.
func (d *Debouncer) Schedule(job Job, delay time.Duration) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if timer, ok := d.timers[job.ID]; ok {
		timer.Stop()
		delete(d.timers, job.ID)
	}
	if delay <= 0 {
		delete(d.pending, job.ID)
		d.mu.Unlock()
		d.fire(job)
		return
	}

	d.pending[job.ID] = job
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		current, ok := d.timers[job.ID]
		if !ok || current != timer {
			d.mu.Unlock()
			return
		}
		latest := d.pending[job.ID]
		delete(d.timers, job.ID)
		delete(d.pending, job.ID)
		d.mu.Unlock()
		d.fire(latest)
	})
	d.timers[job.ID] = timer
	d.mu.Unlock()
}

// Flush fires every pending job now, in ID order, and returns how many fired.
func (d *Debouncer) Flush() int {
	d.mu.Lock()
	jobs := make([]Job, 0, len(d.pending))
	for id, job := range d.pending {
		if timer, ok := d.timers[id]; ok {
			timer.Stop()
		}
		jobs = append(jobs, job)
	}
	d.timers = make(map[string]*time.Timer)
	d.pending = make(map[string]Job)
	d.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	for _, job := range jobs {
		d.fire(job)
	}
	return len(jobs)
}

// Pending reports jobs waiting for their delay to elapse.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop discards pending jobs and ignores later calls to Schedule.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, timer := range d.timers {
		timer.Stop()
	}
	d.timers = make(map[string]*time.Timer)
	d.pending = make(map[string]Job)
	d.stopped = true
}
