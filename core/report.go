package core

import (
	"context"

	"github.com/pkg/errors"
)

// CourseRoster is the course-centric grouping of enrolled students.
type CourseRoster struct {
	Course     string
	Instructor *string
	Students   []RosterStudent
}

type RosterStudent struct {
	Name   string
	Grades Grades
}

// Certificate is the student-centric summary of all enrollments.
type Certificate struct {
	Student     Student
	Enrollments []CertificateLine
}

type CertificateLine struct {
	Course     string
	Instructor *string
	Grades     Grades
	Average    *float64
	Status     EnrollmentStatus
}

// ReportService assembles report view models from repository rows.
type ReportService struct {
	repo ReportRepository
}

func NewReportService(repo ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) ListStudents(ctx context.Context) ([]Student, error) {
	return s.repo.ListStudents(ctx)
}

func (s *ReportService) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return s.repo.ListTeachers(ctx)
}

func (s *ReportService) CourseRosters(ctx context.Context) ([]CourseRoster, error) {
	rows, err := s.repo.RosterRows(ctx)
	if err != nil {
		return nil, err
	}
	return GroupRosters(rows), nil
}

// StudentCertificate returns ErrNotFound for an unknown student id.
func (s *ReportService) StudentCertificate(ctx context.Context, studentID int64) (Certificate, error) {
	st, rows, err := s.repo.StudentEnrollments(ctx, studentID)
	if err != nil {
		return Certificate{}, err
	}
	cert := Certificate{Student: st, Enrollments: make([]CertificateLine, 0, len(rows))}
	for _, r := range rows {
		avg, status := ClassifyGrades(r.Grades)
		cert.Enrollments = append(cert.Enrollments, CertificateLine{
			Course:     r.CourseName,
			Instructor: r.InstructorName,
			Grades:     r.Grades,
			Average:    avg,
			Status:     status,
		})
	}
	return cert, nil
}

func (s *ReportService) Ping(ctx context.Context) error {
	return errors.Wrap(s.repo.Ping(ctx), "ping")
}

// GroupRosters groups rows by course name in first-seen order. Rows of the
// same course need not be contiguous; rows without a student are skipped,
// so a course with no enrolled student never gets an entry.
func GroupRosters(rows []RosterRow) []CourseRoster {
	var out []CourseRoster
	index := map[string]int{}
	for _, r := range rows {
		if r.StudentName == nil {
			continue
		}
		i, ok := index[r.CourseName]
		if !ok {
			i = len(out)
			index[r.CourseName] = i
			out = append(out, CourseRoster{Course: r.CourseName, Instructor: r.InstructorName})
		}
		out[i].Students = append(out[i].Students, RosterStudent{Name: *r.StudentName, Grades: r.Grades})
	}
	return out
}
