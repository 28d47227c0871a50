package randomizer

import "tmm/model"

// 一个 worker 负责的迭代区间 [start, end)
type task struct {
	start int
	end   int
}

func (t task) len() int { return t.end - t.start }

// 工作协程数：迭代数少于并行度时单线程，否则取并行度与 CPU 数的较小值
func workers(iterations, parallelism, hardware int) int {
	if iterations < parallelism {
		return 1
	}
	if hardware > 0 && hardware < parallelism {
		return hardware
	}
	return parallelism
}

// partition 将 [0, n) 尽量均匀地切成 s 块：前 n%s 块各 n/s+1 次迭代，其余 n/s 次，
// 相邻块首尾相接
func partition(n, s int) []task {
	size, rem := n/s, n%s
	tasks := make([]task, 0, s)
	for i, start := 0, 0; i < s; i++ {
		end := start + size
		if i < rem {
			end++
		}
		if end > start {
			tasks = append(tasks, task{start: start, end: end})
		}
		start = end
	}
	if len(tasks) != s || tasks[s-1].end != n {
		model.Invariant("randomizer: %d iterations split into %d chunks, want %d", n, len(tasks), s)
	}
	return tasks
}
