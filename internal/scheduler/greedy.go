package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCandidateDates marks a subject whose window holds no dates.
var ErrNoCandidateDates = errors.New("no candidate dates")

// InfeasibleSubjectError reports the subject that could not be scheduled.
type InfeasibleSubjectError struct {
	SubjectID int64
}

func (e *InfeasibleSubjectError) Error() string {
	return fmt.Sprintf("subject %d has no dates available for assignment", e.SubjectID)
}

func (e *InfeasibleSubjectError) Unwrap() error {
	return ErrNoCandidateDates
}

// Assignment places a plan item on a date. Overflow marks a forced placement
// that ignored the day's budget.
type Assignment struct {
	ItemID    int64
	SubjectID int64
	Date      time.Time
	Minutes   int
	Overflow  bool
}

// SubjectResult holds the assignments of one subject in task priority order.
type SubjectResult struct {
	SubjectID     int64
	Assignments   []Assignment
	OverflowCount int
}

// ScheduleSubject assigns ordered tasks to ascending candidate dates.
//
// A cursor into dates only moves forward. Each task takes the first date at or
// after the cursor whose committed minutes plus the task fit the weekday
// budget, and the cursor moves past that date. When no remaining date fits, the
// task is forced onto dates[min(cursor, last)] as an overflow and the cursor
// advances by one, stopping at the last date. Every placement is committed to
// tracker. With no dates the subject is infeasible and nothing is committed.
func ScheduleSubject(subjectID int64, dates []time.Time, tasks []Task, budget WeekdayBudget, tracker *CapacityTracker) (SubjectResult, error) {
	result := SubjectResult{SubjectID: subjectID}
	if len(dates) == 0 {
		return result, &InfeasibleSubjectError{SubjectID: subjectID}
	}

	last := len(dates) - 1
	cursor := 0
	result.Assignments = make([]Assignment, 0, len(tasks))

	for _, task := range tasks {
		chosen := -1
		for i := cursor; i < len(dates); i++ {
			if tracker.Used(dates[i])+task.DurationMinutes <= budget.For(dates[i]) {
				chosen = i
				break
			}
		}

		overflow := chosen < 0
		if overflow {
			chosen = min(cursor, last)
			cursor = min(chosen+1, last)
			result.OverflowCount++
		} else {
			cursor = chosen + 1
		}

		tracker.Commit(dates[chosen], task.DurationMinutes)
		result.Assignments = append(result.Assignments, Assignment{
			ItemID:    task.ID,
			SubjectID: subjectID,
			Date:      dates[chosen],
			Minutes:   task.DurationMinutes,
			Overflow:  overflow,
		})
	}
	return result, nil
}
