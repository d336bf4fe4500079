package scheduler

import "sort"

// Task is a plan item as seen by the scheduler.
type Task struct {
	ID              int64
	SubjectID       int64
	Name            string
	DurationMinutes int
}

// Orderer sorts a subject's tasks into the order a learner meets them.
type Orderer struct {
	extract SequenceExtractor
}

// NewOrderer returns an orderer using extract, or DefaultExtractor when nil.
func NewOrderer(extract SequenceExtractor) *Orderer {
	if extract == nil {
		extract = DefaultExtractor()
	}
	return &Orderer{extract: extract}
}

// SequenceKey returns the ordering key of a task name.
func (o *Orderer) SequenceKey(name string) int {
	if n, ok := o.extract(name); ok {
		return n
	}
	return NoSequence
}

// Order returns a copy of tasks sorted by (sequence key, id).
func (o *Orderer) Order(tasks []Task) []Task {
	type keyed struct {
		key  int
		task Task
	}
	rows := make([]keyed, len(tasks))
	for i, task := range tasks {
		rows[i] = keyed{key: o.SequenceKey(task.Name), task: task}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].key != rows[j].key {
			return rows[i].key < rows[j].key
		}
		return rows[i].task.ID < rows[j].task.ID
	})
	ordered := make([]Task, len(rows))
	for i, row := range rows {
		ordered[i] = row.task
	}
	return ordered
}
