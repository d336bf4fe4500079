// Package scheduler assigns calendar dates to ordered study tasks under per-weekday
// minute budgets.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Status is the outcome of a planning run.
type Status string

const (
	StatusOK         Status = "ok"
	StatusInfeasible Status = "infeasible"
	StatusWarning    Status = "warning"
)

// NoWorkReason is the warning reported when there is nothing to schedule.
const NoWorkReason = "no unscheduled items"

// ErrInvalidDuration rejects tasks without a positive duration.
var ErrInvalidDuration = errors.New("task duration must be positive")

// ErrWindowTooLarge rejects subject windows longer than the planner accepts.
var ErrWindowTooLarge = errors.New("subject window is too long")

// DefaultMaxWindowDays bounds a subject window when no other limit is set.
const DefaultMaxWindowDays = 731

// WindowTooLargeError reports the subject whose window exceeds the limit.
type WindowTooLargeError struct {
	SubjectID int64
	Days      int
	MaxDays   int
}

func (e *WindowTooLargeError) Error() string {
	return fmt.Sprintf("subject %d spans %d days, at most %d are allowed", e.SubjectID, e.Days, e.MaxDays)
}

func (e *WindowTooLargeError) Unwrap() error {
	return ErrWindowTooLarge
}

// Subject is a study window.
type Subject struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
}

// Input is everything one run needs for one user.
type Input struct {
	UserID   int64
	Budget   WeekdayBudget
	Subjects []Subject
	Tasks    []Task
}

// Output is the result of Plan. Assignments are sorted by date, then item id.
type Output struct {
	Status              Status
	Assignments         []Assignment
	Subjects            []SubjectResult
	OverflowCount       int
	InfeasibleSubjectID int64
	Warning             string
}

// Planner runs the greedy scheduler over every subject of a user.
type Planner struct {
	orderer       *Orderer
	maxWindowDays int
}

// NewPlanner builds a planner; a nil orderer uses the default extractor.
func NewPlanner(orderer *Orderer) *Planner {
	if orderer == nil {
		orderer = NewOrderer(nil)
	}
	return &Planner{orderer: orderer, maxWindowDays: DefaultMaxWindowDays}
}

// WithMaxWindowDays sets the longest subject window Plan accepts. Non-positive
// values keep the current limit.
func (p *Planner) WithMaxWindowDays(days int) *Planner {
	if days > 0 {
		p.maxWindowDays = days
	}
	return p
}

// Plan schedules every task of in against tracker, which the caller owns; nil
// starts an empty ledger. Subjects with tasks are processed in ascending id.
// Tasks whose subject is unknown belong to a subject without dates.
//
// If any subject has no candidate dates the whole run is infeasible: the output
// carries the first such subject in processing order, no assignments, and the
// error is an *InfeasibleSubjectError. Feasibility is checked for every subject
// before anything is committed to tracker. A subject with tasks whose window is
// longer than the planner's limit fails with a *WindowTooLargeError.
func (p *Planner) Plan(in Input, tracker *CapacityTracker) (Output, error) {
	if len(in.Tasks) == 0 {
		return Output{Status: StatusWarning, Warning: NoWorkReason}, nil
	}
	if tracker == nil {
		tracker = NewCapacityTracker()
	}

	windows := make(map[int64]Subject, len(in.Subjects))
	for _, subject := range in.Subjects {
		if _, seen := windows[subject.ID]; !seen {
			windows[subject.ID] = subject
		}
	}

	bySubject := make(map[int64][]Task)
	for _, task := range in.Tasks {
		if task.DurationMinutes <= 0 {
			return Output{}, fmt.Errorf("%w: item %d has %d minutes", ErrInvalidDuration, task.ID, task.DurationMinutes)
		}
		bySubject[task.SubjectID] = append(bySubject[task.SubjectID], task)
	}

	order := make([]int64, 0, len(bySubject))
	for id := range bySubject {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	candidates := make(map[int64][]time.Time, len(order))
	for _, id := range order {
		var dates []time.Time
		if subject, ok := windows[id]; ok {
			if days := Calendar(subject.StartDate, subject.EndDate).Len(); days > p.maxWindowDays {
				return Output{}, &WindowTooLargeError{SubjectID: id, Days: days, MaxDays: p.maxWindowDays}
			}
			dates = CandidateDates(subject.StartDate, subject.EndDate)
		}
		if len(dates) == 0 {
			return Output{Status: StatusInfeasible, InfeasibleSubjectID: id}, &InfeasibleSubjectError{SubjectID: id}
		}
		candidates[id] = dates
	}

	out := Output{Status: StatusOK, Subjects: make([]SubjectResult, 0, len(order))}
	for _, id := range order {
		result, err := ScheduleSubject(id, candidates[id], p.orderer.Order(bySubject[id]), in.Budget, tracker)
		if err != nil {
			return Output{Status: StatusInfeasible, InfeasibleSubjectID: id}, err
		}
		out.Subjects = append(out.Subjects, result)
		out.Assignments = append(out.Assignments, result.Assignments...)
		out.OverflowCount += result.OverflowCount
	}

	SortByDate(out.Assignments)
	return out, nil
}

// SortByDate orders assignments by date, breaking ties by item id.
func SortByDate(assignments []Assignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		if !assignments[i].Date.Equal(assignments[j].Date) {
			return assignments[i].Date.Before(assignments[j].Date)
		}
		return assignments[i].ItemID < assignments[j].ItemID
	})
}
