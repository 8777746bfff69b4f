package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/engine"
	"chessplay/internal/server/rules"
)

const engineTimeout = 5 * time.Second

// EngineTask contains a computer move request and its response channel
type EngineTask struct {
	GameID   string
	Epoch    int
	Board    board.Board // Private copy of the position
	Color    core.Color
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation
type EngineResult struct {
	GameID string
	Epoch  int
	Move   rules.Move
	Found  bool // False when the side had no legal move
	Score  float64
	Error  error
}

// EngineQueue runs opponent searches on a fixed worker pool
type EngineQueue struct {
	tasks   chan EngineTask
	workers int
	seed    uint64
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngineQueue creates a queue with workerCount workers. A non-zero seed
// makes every worker's move choice reproducible.
func NewEngineQueue(workerCount int, seed uint64) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, 100),
		workers: workerCount,
		seed:    seed,
		ctx:     ctx,
		cancel:  cancel,
	}

	q.start()
	return q
}

func (q *EngineQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	// Each worker gets its own engine instance
	var seed uint64
	if q.seed != 0 {
		seed = q.seed + uint64(id)
	}
	eng := engine.New(seed)

	for {
		select {
		case task := <-q.tasks:
			result := q.processTask(eng, task)

			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
				log.Printf("Worker %d: result for game %s abandoned", id, task.GameID)
			}

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *EngineQueue) processTask(eng *engine.Engine, task EngineTask) EngineResult {
	result := EngineResult{
		GameID: task.GameID,
		Epoch:  task.Epoch,
	}

	search, ok := eng.SelectMove(&task.Board, task.Color)
	if !ok {
		return result
	}

	result.Move = search.Move.Move
	result.Found = true
	result.Score = search.Score
	return result
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("queue is shutting down")
	}

	select {
	case q.tasks <- task:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

// SubmitAsync queues a search and calls callback with the result no earlier
// than delay after submission. The callback is skipped if the queue shuts down.
func (q *EngineQueue) SubmitAsync(gameID string, epoch int, b board.Board, color core.Color, delay time.Duration, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)
	notBefore := time.Now().Add(delay)

	task := EngineTask{
		GameID:   gameID,
		Epoch:    epoch,
		Board:    b,
		Color:    color,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	go func() {
		var result EngineResult
		select {
		case result = <-respChan:
		case <-time.After(engineTimeout + delay):
			result = EngineResult{
				GameID: gameID,
				Epoch:  epoch,
				Error:  fmt.Errorf("engine timeout"),
			}
		case <-q.ctx.Done():
			return
		}

		// Thinking delay counts from submission, not from the end of the search
		if wait := time.Until(notBefore); wait > 0 {
			select {
			case <-time.After(wait):
			case <-q.ctx.Done():
				return
			}
		}
		callback(result)
	}()

	return nil
}

// Shutdown stops the workers and drops pending callbacks
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
