package orchestrator

import (
	"context"
	"time"

	"github.com/nxtg-ai/forge/core"
)

type queuedTask struct {
	task    *core.Task
	pattern core.ExecutionPattern
}

// QueueTask accepts a task for asynchronous execution by the background
// loop. Tasks queue in FIFO order and execute one at a time. Queueing
// works whether or not the loop is running; queued tasks wait for Start.
func (e *Engine) QueueTask(task *core.Task, pattern core.ExecutionPattern) {
	e.track(task)
	e.queueMu.Lock()
	e.taskQueue = append(e.taskQueue, queuedTask{task: task, pattern: pattern})
	e.queueMu.Unlock()

	e.commandMu.Lock()
	if e.yoloMode {
		e.yoloStats.TasksQueued++
	}
	e.commandMu.Unlock()

	e.logger.Debug("task queued", "task_id", task.ID, "pattern", pattern)
}

// QueueLength returns the number of tasks awaiting background execution.
func (e *Engine) QueueLength() int {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return len(e.taskQueue)
}

// Start launches the background queue loop. Starting a running engine is a
// no-op.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return
	}
	e.stopCh = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true

	go e.queueLoop()
}

// Stop halts the background queue loop and waits for the in-flight task, if
// any, to finish. Remaining queued tasks are retained for a later Start.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return
	}
	close(e.stopCh)
	<-e.done
	e.running = false
}

func (e *Engine) queueLoop() {
	defer close(e.done)

	ticker := time.NewTicker(e.opts.QueueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			for {
				qt, ok := e.dequeue()
				if !ok {
					break
				}
				e.Execute(context.Background(), qt.task, qt.pattern)

				select {
				case <-e.stopCh:
					return
				default:
				}
			}
		}
	}
}

func (e *Engine) dequeue() (queuedTask, bool) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	if len(e.taskQueue) == 0 {
		return queuedTask{}, false
	}
	qt := e.taskQueue[0]
	e.taskQueue = e.taskQueue[1:]
	return qt, true
}
