package core

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRostersKeepsFirstSeenOrder(t *testing.T) {
	rows := []RosterRow{
		{CourseName: "Matemática", InstructorName: ptr("Ana"), StudentName: ptr("Bruno"), Grades: grades(7, 8, 9, 10)},
		{CourseName: "História", InstructorName: nil, StudentName: ptr("Carla")},
		{CourseName: "Matemática", InstructorName: ptr("Ana"), StudentName: ptr("Diego"), Grades: grades(5)},
		{CourseName: "Física", InstructorName: ptr("Eva"), StudentName: nil},
	}

	rosters := GroupRosters(rows)
	require.Len(t, rosters, 2)

	assert.Equal(t, "Matemática", rosters[0].Course)
	require.NotNil(t, rosters[0].Instructor)
	assert.Equal(t, "Ana", *rosters[0].Instructor)
	require.Len(t, rosters[0].Students, 2)
	assert.Equal(t, "Bruno", rosters[0].Students[0].Name)
	assert.Equal(t, "Diego", rosters[0].Students[1].Name)
	assert.Nil(t, rosters[0].Students[1].Grades[1])

	assert.Equal(t, "História", rosters[1].Course)
	assert.Nil(t, rosters[1].Instructor)
	require.Len(t, rosters[1].Students, 1)
}

func TestGroupRostersEmpty(t *testing.T) {
	assert.Empty(t, GroupRosters(nil))
	assert.Empty(t, GroupRosters([]RosterRow{{CourseName: "Química"}}))
}

func TestStudentCertificate(t *testing.T) {
	repo := &memoryReportRepo{
		students: []Student{{ID: 1, Name: "Bruno", City: "Recife", State: "PE", Phone: "81 9999-0000"}},
		enrollments: map[int64][]EnrollmentRow{
			1: {
				{CourseName: "Matemática", InstructorName: ptr("Ana"), Grades: grades(8, 7, 9, 6)},
				{CourseName: "História", Grades: Grades{ptr(5.0), nil, nil, nil}},
				{CourseName: "Física", InstructorName: ptr("Eva"), Grades: grades(5, 6, 7, 6)},
				{CourseName: "Química", InstructorName: ptr("Caio")},
			},
		},
	}
	svc := NewReportService(repo)

	cert, err := svc.StudentCertificate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bruno", cert.Student.Name)
	require.Len(t, cert.Enrollments, 4)

	assert.Equal(t, StatusPassed, cert.Enrollments[0].Status)
	assert.InDelta(t, 7.5, *cert.Enrollments[0].Average, 1e-9)
	assert.Equal(t, StatusInProgress, cert.Enrollments[1].Status)
	assert.InDelta(t, 5.0, *cert.Enrollments[1].Average, 1e-9)
	assert.Equal(t, StatusFailed, cert.Enrollments[2].Status)
	assert.Nil(t, cert.Enrollments[3].Average)
	assert.Equal(t, StatusInProgress, cert.Enrollments[3].Status)
}

func TestStudentCertificateWithoutEnrollments(t *testing.T) {
	repo := &memoryReportRepo{students: []Student{{ID: 2, Name: "Carla"}}}
	cert, err := NewReportService(repo).StudentCertificate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Carla", cert.Student.Name)
	assert.Empty(t, cert.Enrollments)
}

func TestStudentCertificateUnknownStudent(t *testing.T) {
	_, err := NewReportService(&memoryReportRepo{}).StudentCertificate(context.Background(), 999999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCourseRostersPropagatesErrors(t *testing.T) {
	repo := &memoryReportRepo{err: errors.New("boom")}
	_, err := NewReportService(repo).CourseRosters(context.Background())
	assert.Error(t, err)
	assert.Error(t, NewReportService(repo).Ping(context.Background()))
}
