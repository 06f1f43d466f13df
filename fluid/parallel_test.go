package fluid

import "testing"

func TestWorkerPoolCoversRange(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		threshold int
		n         int
	}{
		{"inline below threshold", 4, 100, 10},
		{"single worker", 1, 1, 37},
		{"fan out", 4, 1, 103},
		{"more workers than items", 8, 1, 3},
		{"empty", 4, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := newWorkerPool(tc.workers, tc.threshold)
			defer pool.stop()

			visits := make([]int, tc.n)
			pool.run(tc.n, func(start, end, worker int) {
				for i := start; i < end; i++ {
					visits[i]++
				}
				pool.counters[worker].collisions += end - start
			})

			for i, v := range visits {
				if v != 1 {
					t.Errorf("index %d visited %d times", i, v)
				}
			}
			if _, collisions := pool.sumCounters(); collisions != tc.n {
				t.Errorf("counted %d, want %d", collisions, tc.n)
			}
		})
	}
}

func TestWorkerPoolRestart(t *testing.T) {
	pool := newWorkerPool(2, 1)

	pool.run(10, func(start, end, _ int) {})
	pool.stop()
	if pool.running() {
		t.Fatal("pool still running after stop")
	}

	total := 0
	visits := make([]int, 10)
	pool.run(10, func(start, end, _ int) {
		for i := start; i < end; i++ {
			visits[i]++
		}
	})
	for _, v := range visits {
		total += v
	}
	if total != 10 {
		t.Errorf("visited %d after restart, want 10", total)
	}

	pool.stop()
	pool.stop() // no-op when stopped
}

func TestWorkerPoolChunkOwnership(t *testing.T) {
	pool := newWorkerPool(4, 1)
	defer pool.stop()

	const n = 10 // chunk size 3: [0,3) [3,6) [6,9) [9,10)
	owner := make([]int, n)
	for round := 0; round < 3; round++ {
		pool.run(n, func(start, end, worker int) {
			for i := start; i < end; i++ {
				owner[i] = worker
			}
		})
		for i, w := range owner {
			if w != i/3 {
				t.Fatalf("round %d: index %d ran on worker %d, want %d", round, i, w, i/3)
			}
		}
	}
}
