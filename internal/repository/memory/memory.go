// Package memory keeps repository data in process. It is used when no
// Postgres DSN is configured and by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
)

// Store holds every table behind one lock so cascades stay consistent.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]domain.User
	schools    map[string]domain.School
	classrooms map[string]domain.Classroom
	students   map[string]domain.Student
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		users:      make(map[string]domain.User),
		schools:    make(map[string]domain.School),
		classrooms: make(map[string]domain.Classroom),
		students:   make(map[string]domain.Student),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:      userRepo{s},
		Schools:    schoolRepo{s},
		Classrooms: classroomRepo{s},
		Students:   studentRepo{s},
	}
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.SchoolID = cloneString(user.SchoolID)
	r.s.users[user.ID] = stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.SchoolID = cloneString(u.SchoolID)
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u.SchoolID = cloneString(u.SchoolID)
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type schoolRepo struct{ s *Store }

func copySchool(in domain.School) domain.School {
	in.AdminIDs = cloneStrings(in.AdminIDs)
	in.Resources = cloneStrings(in.Resources)
	return in
}

func (r schoolRepo) Create(_ context.Context, school *domain.School) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schools[school.ID]; ok {
		return repository.ErrDuplicate
	}
	school.CreatedAt = r.s.now()
	school.UpdatedAt = school.CreatedAt
	r.s.schools[school.ID] = copySchool(*school)
	return nil
}

func (r schoolRepo) Update(_ context.Context, school *domain.School) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.schools[school.ID]
	if !ok {
		return repository.ErrNotFound
	}
	school.CreatedAt = existing.CreatedAt
	school.UpdatedAt = r.s.now()
	r.s.schools[school.ID] = copySchool(*school)
	return nil
}

func (r schoolRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schools[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.schools, id)
	for cid, c := range r.s.classrooms {
		if c.SchoolID == id {
			delete(r.s.classrooms, cid)
		}
	}
	for sid, st := range r.s.students {
		if st.SchoolID == id {
			delete(r.s.students, sid)
		}
	}
	for uid, u := range r.s.users {
		if u.SchoolID != nil && *u.SchoolID == id {
			u.SchoolID = nil
			r.s.users[uid] = u
		}
	}
	return nil
}

func (r schoolRepo) GetByID(_ context.Context, id string) (*domain.School, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	school, ok := r.s.schools[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copySchool(school)
	return &out, nil
}

func (r schoolRepo) List(_ context.Context) ([]domain.School, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.School, 0, len(r.s.schools))
	for _, school := range r.s.schools {
		out = append(out, copySchool(school))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type classroomRepo struct{ s *Store }

func copyClassroom(in domain.Classroom) domain.Classroom {
	in.Resources = cloneStrings(in.Resources)
	return in
}

// nameTaken must be called with the lock held.
func (r classroomRepo) nameTaken(c *domain.Classroom) bool {
	for id, other := range r.s.classrooms {
		if id != c.ID && other.SchoolID == c.SchoolID && other.Name == c.Name {
			return true
		}
	}
	return false
}

func (r classroomRepo) Create(_ context.Context, c *domain.Classroom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schools[c.SchoolID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.classrooms[c.ID]; ok || r.nameTaken(c) {
		return repository.ErrDuplicate
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.classrooms[c.ID] = copyClassroom(*c)
	return nil
}

func (r classroomRepo) Update(_ context.Context, c *domain.Classroom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.classrooms[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.SchoolID = existing.SchoolID
	if r.nameTaken(c) {
		return repository.ErrDuplicate
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.s.now()
	r.s.classrooms[c.ID] = copyClassroom(*c)
	return nil
}

func (r classroomRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.classrooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.classrooms, id)
	for sid, st := range r.s.students {
		if st.ClassroomID != nil && *st.ClassroomID == id {
			st.ClassroomID = nil
			r.s.students[sid] = st
		}
	}
	return nil
}

func (r classroomRepo) GetByID(_ context.Context, id string) (*domain.Classroom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.classrooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyClassroom(c)
	return &out, nil
}

func (r classroomRepo) ListBySchool(_ context.Context, schoolID string) ([]domain.Classroom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Classroom, 0)
	for _, c := range r.s.classrooms {
		if c.SchoolID == schoolID {
			out = append(out, copyClassroom(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type studentRepo struct{ s *Store }

func copyStudent(in domain.Student) domain.Student {
	in.ClassroomID = cloneString(in.ClassroomID)
	in.Email = cloneString(in.Email)
	in.Phone = cloneString(in.Phone)
	return in
}

// emailTaken must be called with the lock held.
func (r studentRepo) emailTaken(st *domain.Student) bool {
	if st.Email == nil {
		return false
	}
	for id, other := range r.s.students {
		if id != st.ID && other.Email != nil && *other.Email == *st.Email {
			return true
		}
	}
	return false
}

func (r studentRepo) Create(_ context.Context, st *domain.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schools[st.SchoolID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.students[st.ID]; ok || r.emailTaken(st) {
		return repository.ErrDuplicate
	}
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	r.s.students[st.ID] = copyStudent(*st)
	return nil
}

func (r studentRepo) Update(_ context.Context, st *domain.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.students[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTaken(st) {
		return repository.ErrDuplicate
	}
	st.SchoolID = existing.SchoolID
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = r.s.now()
	r.s.students[st.ID] = copyStudent(*st)
	return nil
}

func (r studentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyStudent(st)
	return &out, nil
}

func (r studentRepo) ListBySchool(_ context.Context, schoolID string) ([]domain.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Student, 0)
	for _, st := range r.s.students {
		if st.SchoolID == schoolID {
			out = append(out, copyStudent(st))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
