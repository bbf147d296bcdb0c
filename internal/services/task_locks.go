package services

import "sync"

// taskLocks hands out one mutex per task id so transitions on the same task
// run one at a time while different tasks proceed in parallel. Entries are
// dropped once no goroutine holds or waits for them.
type taskLocks struct {
	mu    sync.Mutex
	locks map[string]*taskLock
}

type taskLock struct {
	sync.Mutex
	refs int
}

func newTaskLocks() *taskLocks {
	return &taskLocks{locks: make(map[string]*taskLock)}
}

func (l *taskLocks) Lock(taskID string) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[taskID]
	if !ok {
		lock = &taskLock{}
		l.locks[taskID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, taskID)
		}
		l.mu.Unlock()
	}
}

func (l *taskLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
