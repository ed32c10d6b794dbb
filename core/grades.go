package core

import "math"

// EnrollmentStatus classifies an enrollment from its recorded grades.
type EnrollmentStatus string

const (
	StatusInProgress EnrollmentStatus = "InProgress"
	StatusPassed     EnrollmentStatus = "Passed"
	StatusFailed     EnrollmentStatus = "Failed"
)

// PassingAverage is the minimum final average to pass a course.
const PassingAverage = 7.0

// Label is the text shown on reports.
func (s EnrollmentStatus) Label() string {
	switch s {
	case StatusPassed:
		return "Aprovado"
	case StatusFailed:
		return "Reprovado"
	default:
		return "Cursando"
	}
}

// ClassifyGrades averages the recorded grades and decides the status.
// The status is decided on the unrounded mean; the returned average is
// rounded to two decimals afterwards. A nil average means no grade yet.
func ClassifyGrades(g Grades) (*float64, EnrollmentStatus) {
	var sum float64
	n := 0
	for _, v := range g {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil, StatusInProgress
	}

	mean := sum / float64(n)
	status := StatusInProgress
	if n == len(g) {
		if mean >= PassingAverage {
			status = StatusPassed
		} else {
			status = StatusFailed
		}
	}

	avg := math.Round(mean*100) / 100
	return &avg, status
}
