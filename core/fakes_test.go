package core

import (
	"context"
	"strings"
	"sync"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[string]*UserRecord
	nextID int64
	err    error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*UserRecord{}}
}

func (r *memoryUserRepo) FindByLogin(_ context.Context, login string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[login]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) FindByCredentials(ctx context.Context, login, digest string) (*UserRecord, error) {
	u, err := r.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u.PasswordDigest != digest {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) Upsert(_ context.Context, login, digest string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if u, ok := r.users[login]; ok {
		u.PasswordDigest = digest
		return u.ID, nil
	}
	r.nextID++
	r.users[login] = &UserRecord{ID: r.nextID, Login: login, PasswordDigest: digest}
	return r.nextID, nil
}

func (r *memoryUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.users), nil
}

// memoryReportRepo serves fixed rows in the order given.
type memoryReportRepo struct {
	students    []Student
	teachers    []Teacher
	roster      []RosterRow
	enrollments map[int64][]EnrollmentRow
	err         error
}

func (r *memoryReportRepo) ListStudents(context.Context) ([]Student, error) {
	return r.students, r.err
}

func (r *memoryReportRepo) ListTeachers(context.Context) ([]Teacher, error) {
	return r.teachers, r.err
}

func (r *memoryReportRepo) RosterRows(context.Context) ([]RosterRow, error) {
	return r.roster, r.err
}

func (r *memoryReportRepo) StudentEnrollments(_ context.Context, id int64) (Student, []EnrollmentRow, error) {
	if r.err != nil {
		return Student{}, nil, r.err
	}
	for _, s := range r.students {
		if s.ID == id {
			return s, r.enrollments[id], nil
		}
	}
	return Student{}, nil, ErrNotFound
}

func (r *memoryReportRepo) Ping(context.Context) error {
	return r.err
}

func ptr[T any](v T) *T { return &v }

func grades(vals ...float64) Grades {
	var g Grades
	for i, v := range vals {
		if i >= len(g) {
			break
		}
		g[i] = ptr(v)
	}
	return g
}

func countOccurrences(s, sub string) int {
	return strings.Count(s, sub)
}
