package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Person is the listing projection shared by students and teachers.
type Person struct {
	ID    int64
	Name  string
	City  string
	State string
	Phone string
}

type (
	Student = Person
	Teacher = Person
)

// Grades holds grade1..grade4; nil means not recorded yet.
type Grades [4]*float64

// RosterRow is one flat row of the course/instructor/enrollment/student join.
type RosterRow struct {
	CourseName     string
	InstructorName *string
	StudentName    *string
	Grades         Grades
}

// EnrollmentRow is one course of a student with its grades.
type EnrollmentRow struct {
	CourseName     string
	InstructorName *string
	Grades         Grades
}

// ReportRepository defines the read queries behind the reports.
type ReportRepository interface {
	ListStudents(ctx context.Context) ([]Student, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	RosterRows(ctx context.Context) ([]RosterRow, error)
	// StudentEnrollments returns ErrNotFound when the student does not exist.
	StudentEnrollments(ctx context.Context, studentID int64) (Student, []EnrollmentRow, error)
	Ping(ctx context.Context) error
}

// PgReportRepository implements ReportRepository using pgxpool.
// Each call holds a single acquired connection until it returns.
type PgReportRepository struct {
	db *pgxpool.Pool
}

func NewPgReportRepository(db *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{db: db}
}

func (r *PgReportRepository) ListStudents(ctx context.Context) ([]Student, error) {
	return r.listPeople(ctx, `SELECT id, name, city, state, phone FROM students ORDER BY name`)
}

func (r *PgReportRepository) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return r.listPeople(ctx, `SELECT id, name, city, state, phone FROM teachers ORDER BY name`)
}

func (r *PgReportRepository) listPeople(ctx context.Context, q string) ([]Person, error) {
	var items []Person
	err := withConn(ctx, r.db, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p Person
			if err := rows.Scan(&p.ID, &p.Name, &p.City, &p.State, &p.Phone); err != nil {
				return err
			}
			items = append(items, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list people")
	}
	return items, nil
}

func (r *PgReportRepository) RosterRows(ctx context.Context) ([]RosterRow, error) {
	const q = `
SELECT c.name, t.name, s.name, e.grade1, e.grade2, e.grade3, e.grade4
FROM courses c
LEFT JOIN teachers t ON c.teacher_id = t.id
LEFT JOIN enrollments e ON c.id = e.course_id
LEFT JOIN students s ON e.student_id = s.id
WHERE s.name IS NOT NULL
ORDER BY c.name, s.name
`
	var items []RosterRow
	err := withConn(ctx, r.db, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var row RosterRow
			g := &row.Grades
			if err := rows.Scan(&row.CourseName, &row.InstructorName, &row.StudentName, &g[0], &g[1], &g[2], &g[3]); err != nil {
				return err
			}
			items = append(items, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "roster rows")
	}
	return items, nil
}

func (r *PgReportRepository) StudentEnrollments(ctx context.Context, studentID int64) (Student, []EnrollmentRow, error) {
	const studentQ = `SELECT id, name, city, state, phone FROM students WHERE id=$1`
	const enrollQ = `
SELECT c.name, t.name, e.grade1, e.grade2, e.grade3, e.grade4
FROM enrollments e
JOIN courses c ON e.course_id = c.id
LEFT JOIN teachers t ON c.teacher_id = t.id
WHERE e.student_id = $1
ORDER BY c.name
`
	var (
		st    Student
		items []EnrollmentRow
	)
	err := withConn(ctx, r.db, func(conn *pgxpool.Conn) error {
		if err := conn.QueryRow(ctx, studentQ, studentID).Scan(&st.ID, &st.Name, &st.City, &st.State, &st.Phone); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		rows, err := conn.Query(ctx, enrollQ, studentID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var row EnrollmentRow
			g := &row.Grades
			if err := rows.Scan(&row.CourseName, &row.InstructorName, &g[0], &g[1], &g[2], &g[3]); err != nil {
				return err
			}
			items = append(items, row)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Student{}, nil, ErrNotFound
		}
		return Student{}, nil, errors.Wrap(err, "student enrollments")
	}
	return st, items, nil
}

func (r *PgReportRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
