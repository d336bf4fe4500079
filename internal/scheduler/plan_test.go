package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullBudget(minutes int) WeekdayBudget {
	budget := WeekdayBudget{}
	for _, wd := range Weekdays {
		budget[wd] = minutes
	}
	return budget
}

func TestPlanEmptyTasksWarns(t *testing.T) {
	out, err := NewPlanner(nil).Plan(Input{UserID: 1, Budget: fullBudget(60)}, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusWarning, out.Status)
	assert.Equal(t, NoWorkReason, out.Warning)
	assert.Empty(t, out.Assignments)
}

func TestPlanInfeasibleSubjectAbortsRun(t *testing.T) {
	tracker := NewCapacityTracker()
	in := Input{
		UserID: 1,
		Budget: fullBudget(60),
		Subjects: []Subject{
			{ID: 1, StartDate: day("2025-08-11"), EndDate: day("2025-08-15")},
			{ID: 2, StartDate: day("2025-08-20"), EndDate: day("2025-08-19")},
		},
		Tasks: []Task{
			{ID: 1, SubjectID: 1, Name: "1주차", DurationMinutes: 30},
			{ID: 2, SubjectID: 2, Name: "1주차", DurationMinutes: 30},
		},
	}

	out, err := NewPlanner(nil).Plan(in, tracker)

	var infeasible *InfeasibleSubjectError
	require.True(t, errors.As(err, &infeasible))
	assert.Equal(t, int64(2), infeasible.SubjectID)
	assert.Equal(t, StatusInfeasible, out.Status)
	assert.Equal(t, int64(2), out.InfeasibleSubjectID)
	assert.Empty(t, out.Assignments)
	assert.Empty(t, tracker.Snapshot(), "feasible subjects must not be committed before the check")
}

func TestPlanTaskWithUnknownSubjectIsInfeasible(t *testing.T) {
	_, err := NewPlanner(nil).Plan(Input{
		Budget: fullBudget(60),
		Tasks:  []Task{{ID: 1, SubjectID: 99, DurationMinutes: 10}},
	}, nil)

	var infeasible *InfeasibleSubjectError
	require.True(t, errors.As(err, &infeasible))
	assert.Equal(t, int64(99), infeasible.SubjectID)
}

func TestPlanRejectsNonPositiveDuration(t *testing.T) {
	_, err := NewPlanner(nil).Plan(Input{
		Budget:   fullBudget(60),
		Subjects: []Subject{{ID: 1, StartDate: day("2025-08-11"), EndDate: day("2025-08-11")}},
		Tasks:    []Task{{ID: 1, SubjectID: 1, DurationMinutes: 0}},
	}, nil)

	assert.True(t, errors.Is(err, ErrInvalidDuration))
}

func TestPlanSubjectsShareDailyBudgetInAscendingOrder(t *testing.T) {
	// Both subjects only have Monday; subject 3 is listed first but 5 runs second.
	in := Input{
		Budget: WeekdayBudget{Mon: 60},
		Subjects: []Subject{
			{ID: 5, StartDate: day("2025-08-11"), EndDate: day("2025-08-11")},
			{ID: 3, StartDate: day("2025-08-11"), EndDate: day("2025-08-11")},
		},
		Tasks: []Task{
			{ID: 10, SubjectID: 5, DurationMinutes: 40},
			{ID: 11, SubjectID: 3, DurationMinutes: 40},
		},
	}

	out, err := NewPlanner(nil).Plan(in, nil)
	require.NoError(t, err)

	require.Len(t, out.Subjects, 2)
	assert.Equal(t, int64(3), out.Subjects[0].SubjectID)
	assert.False(t, out.Subjects[0].Assignments[0].Overflow)
	assert.Equal(t, int64(5), out.Subjects[1].SubjectID)
	assert.True(t, out.Subjects[1].Assignments[0].Overflow)
	assert.Equal(t, 1, out.OverflowCount)
}

func TestPlanAssignmentsSortedByDate(t *testing.T) {
	in := Input{
		Budget: fullBudget(30),
		Subjects: []Subject{
			{ID: 1, StartDate: day("2025-08-11"), EndDate: day("2025-08-13")},
			{ID: 2, StartDate: day("2025-08-11"), EndDate: day("2025-08-13")},
		},
		Tasks: []Task{
			{ID: 1, SubjectID: 1, Name: "1주차", DurationMinutes: 30},
			{ID: 2, SubjectID: 1, Name: "2주차", DurationMinutes: 30},
			{ID: 3, SubjectID: 2, Name: "1주차", DurationMinutes: 30},
		},
	}

	out, err := NewPlanner(nil).Plan(in, nil)
	require.NoError(t, err)

	require.Len(t, out.Assignments, 3)
	for i := 1; i < len(out.Assignments); i++ {
		prev, cur := out.Assignments[i-1], out.Assignments[i]
		assert.False(t, cur.Date.Before(prev.Date))
	}
}

// randomInput builds a reproducible multi-subject workload.
func randomInput(seed int64) Input {
	rng := rand.New(rand.NewSource(seed))
	base := day("2025-09-01")
	in := Input{UserID: 1, Budget: WeekdayBudget{}}
	for _, wd := range Weekdays {
		in.Budget[wd] = rng.Intn(5) * 30
	}
	var taskID int64
	for s := int64(1); s <= 4; s++ {
		start := base.AddDate(0, 0, rng.Intn(10))
		end := start.AddDate(0, 0, rng.Intn(14))
		in.Subjects = append(in.Subjects, Subject{ID: s, StartDate: start, EndDate: end})
		for n := 0; n < 3+rng.Intn(10); n++ {
			taskID++
			name := "review"
			if rng.Intn(3) > 0 {
				name = fmt.Sprintf("%d주차 학습", 1+rng.Intn(6))
			}
			in.Tasks = append(in.Tasks, Task{ID: taskID, SubjectID: s, Name: name, DurationMinutes: 10 * (1 + rng.Intn(9))})
		}
	}
	rng.Shuffle(len(in.Tasks), func(i, j int) { in.Tasks[i], in.Tasks[j] = in.Tasks[j], in.Tasks[i] })
	return in
}

func TestPlanProperties(t *testing.T) {
	orderer := NewOrderer(nil)
	planner := NewPlanner(orderer)

	for seed := int64(1); seed <= 50; seed++ {
		in := randomInput(seed)
		out, err := planner.Plan(in, nil)
		require.NoError(t, err, "seed %d", seed)
		require.Len(t, out.Assignments, len(in.Tasks), "seed %d", seed)

		windows := map[int64]Subject{}
		for _, s := range in.Subjects {
			windows[s.ID] = s
		}

		regularMinutes := map[string]int{}
		for _, a := range out.Assignments {
			w := windows[a.SubjectID]
			assert.False(t, a.Date.Before(w.StartDate), "seed %d item %d before window", seed, a.ItemID)
			assert.False(t, a.Date.After(w.EndDate), "seed %d item %d after window", seed, a.ItemID)
			if !a.Overflow {
				regularMinutes[FormatDate(a.Date)] += a.Minutes
			}
		}
		for date, minutes := range regularMinutes {
			assert.LessOrEqual(t, minutes, in.Budget.For(day(date)), "seed %d date %s over budget", seed, date)
		}

		for _, subject := range out.Subjects {
			for i := 1; i < len(subject.Assignments); i++ {
				assert.False(t, subject.Assignments[i].Date.Before(subject.Assignments[i-1].Date),
					"seed %d subject %d dates go backwards", seed, subject.SubjectID)
			}
		}

		again, err := planner.Plan(in, nil)
		require.NoError(t, err)
		assert.Equal(t, out, again, "seed %d not deterministic", seed)
	}
}

func TestPlanSubjectOrderFollowsSequenceKeys(t *testing.T) {
	in := Input{
		Budget:   fullBudget(30),
		Subjects: []Subject{{ID: 1, StartDate: day("2025-08-11"), EndDate: day("2025-08-17")}},
		Tasks: []Task{
			{ID: 1, SubjectID: 1, Name: "extra drills", DurationMinutes: 30},
			{ID: 2, SubjectID: 1, Name: "3주차", DurationMinutes: 30},
			{ID: 3, SubjectID: 1, Name: "1주차", DurationMinutes: 30},
		},
	}

	out, err := NewPlanner(nil).Plan(in, nil)
	require.NoError(t, err)

	got := map[int64]string{}
	for _, a := range out.Assignments {
		got[a.ItemID] = FormatDate(a.Date)
	}
	assert.Equal(t, "2025-08-11", got[3])
	assert.Equal(t, "2025-08-12", got[2])
	assert.Equal(t, "2025-08-13", got[1])
}

func TestPlanRejectsOverlongWindow(t *testing.T) {
	in := Input{
		UserID:   1,
		Subjects: []Subject{{ID: 3, StartDate: day("1000-01-01"), EndDate: day("9999-12-31")}},
	}
	for i := int64(1); i <= 20; i++ {
		in.Tasks = append(in.Tasks, Task{ID: i, SubjectID: 3, DurationMinutes: 30})
	}

	out, err := NewPlanner(nil).Plan(in, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWindowTooLarge))
	var tooLarge *WindowTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(3), tooLarge.SubjectID)
	assert.Equal(t, 3287182, tooLarge.Days)
	assert.Equal(t, DefaultMaxWindowDays, tooLarge.MaxDays)
	assert.Empty(t, out.Assignments)
}

func TestPlanWindowLimitIsConfigurable(t *testing.T) {
	in := Input{
		UserID:   1,
		Budget:   fullBudget(60),
		Subjects: []Subject{{ID: 1, StartDate: day("2025-08-11"), EndDate: day("2025-08-17")}},
		Tasks:    []Task{{ID: 1, SubjectID: 1, DurationMinutes: 30}},
	}

	_, err := NewPlanner(nil).WithMaxWindowDays(6).Plan(in, nil)
	assert.True(t, errors.Is(err, ErrWindowTooLarge))

	out, err := NewPlanner(nil).WithMaxWindowDays(7).Plan(in, nil)
	require.NoError(t, err)
	assert.Len(t, out.Assignments, 1)

	out, err = NewPlanner(nil).WithMaxWindowDays(0).Plan(in, nil)
	require.NoError(t, err, "non-positive limit keeps the default")
	assert.Len(t, out.Assignments, 1)
}
