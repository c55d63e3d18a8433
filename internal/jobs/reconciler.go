package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/forgo/handy/api/internal/service"
)

// ReconcilerJob periodically sweeps account membership lists
// - Removes references to deleted or misattributed listings and bookings
// - Re-registers records that are missing from their account lists
type ReconcilerJob struct {
	reconciler *service.Reconciler
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewReconcilerJob creates a new reconciliation sweep job
func NewReconcilerJob(reconciler *service.Reconciler, interval time.Duration) *ReconcilerJob {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &ReconcilerJob{
		reconciler: reconciler,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the reconciliation job
func (j *ReconcilerJob) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Reconciler started (interval: %v)", j.interval)
}

// Stop gracefully stops the reconciliation job
func (j *ReconcilerJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Reconciler stopped")
}

// run is the main loop
func (j *ReconcilerJob) run() {
	defer j.wg.Done()

	// Short delay so the store connection settles before the first sweep
	time.Sleep(5 * time.Second)
	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

// sweep runs one reconciliation pass with a bounded deadline
func (j *ReconcilerJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := j.reconciler.Run(ctx); err != nil {
		log.Printf("Error running reconciliation sweep: %v", err)
	}
}

// RunOnce runs the reconciliation sweep once (for testing or manual trigger)
func (j *ReconcilerJob) RunOnce(ctx context.Context) (*service.ReconcileResult, error) {
	return j.reconciler.Run(ctx)
}

// IsRunning returns whether the job is running
func (j *ReconcilerJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
