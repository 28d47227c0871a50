package calculator

import (
	"context"
	"sync"
	"sync/atomic"
)

// 按波长切片分配任务
type executor struct {
	workers int
}

type task struct {
	start int
	end   int
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	return &executor{workers: workers}
}

// 任务切分：每个 worker 约两块，余数单独成块
func (e *executor) tasks(total int) []task {
	if total == 0 {
		return nil
	}
	taskLen := total / (e.workers * 2)
	if taskLen == 0 {
		taskLen = 1
	}
	var tasks []task
	for start := 0; start < total; start += taskLen {
		end := start + taskLen
		if end > total {
			end = total
		}
		tasks = append(tasks, task{start: start, end: end})
	}
	return tasks
}

// dispatchTask 对 [0, total) 的每个下标调用 f，ctx 取消后不再分配新任务
// 全部任务完成时即使 ctx 已取消也返回 nil
func (e *executor) dispatchTask(ctx context.Context, total int, f func(i int)) error {
	tasks := e.tasks(total)
	dispatchChan := make(chan task, len(tasks))
	for _, t := range tasks {
		dispatchChan <- t
	}
	close(dispatchChan)

	var finished int64
	var wg sync.WaitGroup
	for i := 0; i < e.workers && i < len(tasks); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range dispatchChan {
				if ctx.Err() != nil {
					return
				}
				for j := t.start; j < t.end; j++ {
					f(j)
				}
				atomic.AddInt64(&finished, 1)
			}
		}()
	}
	wg.Wait()
	if int(finished) < len(tasks) {
		return ctx.Err()
	}
	return nil
}
