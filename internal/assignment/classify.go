package assignment

import (
	"sort"
	"strings"
)

// Status vocabulary printed by the portal.
const (
	SubmissionNoAttempt   = "No attempt"
	SubmissionSubmitted   = "Submitted for grading"
	SubmissionNotRequired = "This assignment does not require you to submit anything online"
	GradingGraded         = "Graded"
)

type View int

const (
	ViewTodo View = iota
	ViewGraded
	ViewCompleted
	ViewAll
)

var Views = []View{ViewTodo, ViewGraded, ViewCompleted, ViewAll}

func (v View) String() string {
	switch v {
	case ViewTodo:
		return "To-do"
	case ViewGraded:
		return "Graded"
	case ViewCompleted:
		return "Completed"
	case ViewAll:
		return "All"
	default:
		return "Unknown"
	}
}

// Key is the lower-case name used in exported documents.
func (v View) Key() string {
	switch v {
	case ViewTodo:
		return "todo"
	case ViewGraded:
		return "graded"
	case ViewCompleted:
		return "completed"
	case ViewAll:
		return "all"
	default:
		return "unknown"
	}
}

func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if strings.EqualFold(s, v.String()) || strings.EqualFold(s, v.Key()) {
			return v, true
		}
	}
	return 0, false
}

func isTodo(a Assignment) bool {
	status := a.SubmissionStatus()
	return status == SubmissionNoAttempt &&
		status != SubmissionNotRequired &&
		a.GradingStatus() != GradingGraded
}

func isGraded(a Assignment) bool {
	return a.GradingStatus() == GradingGraded
}

func isCompleted(a Assignment) bool {
	return a.SubmissionStatus() == SubmissionSubmitted
}

// Todos are the unattempted, ungraded assignments, soonest deadline first.
func Todos(records []Assignment) []Assignment {
	out := filter(records, isTodo)
	sortByDue(out, false)
	return out
}

// Graded are the graded assignments, most recent deadline first.
func Graded(records []Assignment) []Assignment {
	out := filter(records, isGraded)
	sortByDue(out, true)
	return out
}

// Completed are the assignments submitted for grading, most recent deadline first.
func Completed(records []Assignment) []Assignment {
	out := filter(records, isCompleted)
	sortByDue(out, true)
	return out
}

// All returns every record in discovery order.
func All(records []Assignment) []Assignment {
	out := make([]Assignment, len(records))
	copy(out, records)
	return out
}

func Classify(v View, records []Assignment) []Assignment {
	switch v {
	case ViewTodo:
		return Todos(records)
	case ViewGraded:
		return Graded(records)
	case ViewCompleted:
		return Completed(records)
	default:
		return All(records)
	}
}

func filter(records []Assignment, keep func(Assignment) bool) []Assignment {
	out := []Assignment{}
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Records without a deadline always go last, in their original order.
func sortByDue(records []Assignment, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		di, okI := records[i].Due()
		dj, okJ := records[j].Due()
		if !okI || !okJ {
			return okI && !okJ
		}
		if descending {
			return di.After(dj)
		}
		return di.Before(dj)
	})
}

type Summary struct {
	Todo      int
	Completed int
	Graded    int
	All       int
}

func Summarize(records []Assignment) Summary {
	return Summary{
		Todo:      len(filter(records, isTodo)),
		Completed: len(filter(records, isCompleted)),
		Graded:    len(filter(records, isGraded)),
		All:       len(records),
	}
}
