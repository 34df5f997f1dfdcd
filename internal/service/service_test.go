package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository/memory"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repos      repository.Repositories
	tokens     *auth.TokenManager
	rec        *recorder
	auth       *AuthService
	schools    *SchoolService
	classrooms *ClassroomService
	students   *StudentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	repos := memory.New().Repositories()
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	events.SubscribeAll(dispatcher, rec.handle)

	return &fixture{
		repos:  repos,
		tokens: tokens,
		rec:    rec,
		auth: NewAuthService(AuthDependencies{
			UserRepo: repos.Users, SchoolRepo: repos.Schools, Tokens: tokens, BcryptCost: 4, Dispatcher: dispatcher,
		}),
		schools:    NewSchoolService(repos.Schools, repos.Users, dispatcher),
		classrooms: NewClassroomService(repos.Classrooms, repos.Schools, dispatcher),
		students:   NewStudentService(repos.Students, repos.Classrooms, repos.Schools, dispatcher),
	}
}

func status(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func ptr[T any](v T) *T { return &v }

var actor = events.Actor{UserID: "root", Role: domain.RoleSuperAdmin}

func (f *fixture) school(t *testing.T) *domain.School {
	t.Helper()
	s, err := f.schools.Create(context.Background(), actor, SchoolInput{Name: "Central High", Address: "1 Main St", Phone: "555", Capacity: 500})
	require.NoError(t, err)
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{Name: "Root", Email: " Root@Example.com ", Password: "secret1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	res, err := f.auth.Login(ctx, "ROOT@example.com", "secret1")
	require.NoError(t, err)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, domain.RoleSuperAdmin, claims.Role)

	_, err = f.auth.Login(ctx, "root@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status(err))
	_, err = f.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, http.StatusUnauthorized, status(err))

	_, err = f.auth.Register(ctx, RegisterInput{Name: "Again", Email: "root@example.com", Password: "secret1", Role: domain.RoleSuperAdmin})
	assert.Equal(t, http.StatusConflict, status(err))

	assert.Equal(t, []events.EventType{events.EventUserRegistered}, f.rec.types())
}

func TestRegister_SchoolAdminNeedsExistingSchool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.io", Password: "secret1", Role: domain.RoleSchoolAdmin})
	assert.Equal(t, http.StatusBadRequest, status(err))

	_, err = f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.io", Password: "secret1", Role: domain.RoleSchoolAdmin, SchoolID: ptr("missing")})
	assert.Equal(t, http.StatusNotFound, status(err))

	school := f.school(t)
	user, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.io", Password: "secret1", Role: domain.RoleSchoolAdmin, SchoolID: &school.ID})
	require.NoError(t, err)
	assert.Equal(t, school.ID, *user.SchoolID)

	_, err = f.auth.Register(ctx, RegisterInput{Name: "B", Email: "b@x.io", Password: "secret1", Role: "teacher"})
	assert.Equal(t, http.StatusBadRequest, status(err))
}

func TestSchoolUpdate_Admins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	school := f.school(t)
	admin, err := f.auth.Register(ctx, RegisterInput{Name: "A", Email: "a@x.io", Password: "secret1", Role: domain.RoleSchoolAdmin, SchoolID: &school.ID})
	require.NoError(t, err)

	updated, err := f.schools.Update(ctx, actor, school.ID, SchoolUpdate{Name: ptr("Central"), Capacity: ptr(600), NewAdminID: &admin.ID})
	require.NoError(t, err)
	assert.Equal(t, "Central", updated.Name)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Equal(t, 600, updated.Capacity)
	assert.Equal(t, []string{admin.ID}, updated.AdminIDs)

	_, err = f.schools.Update(ctx, actor, school.ID, SchoolUpdate{NewAdminID: &admin.ID})
	assert.Equal(t, http.StatusBadRequest, status(err))

	_, err = f.schools.Update(ctx, actor, school.ID, SchoolUpdate{NewAdminID: ptr("ghost")})
	assert.Equal(t, http.StatusNotFound, status(err))

	_, err = f.schools.Update(ctx, actor, "missing", SchoolUpdate{})
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestSchoolDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	school := f.school(t)

	require.NoError(t, f.schools.Delete(ctx, actor, school.ID))
	_, err := f.schools.Get(ctx, school.ID)
	assert.Equal(t, http.StatusNotFound, status(err))
	assert.Equal(t, http.StatusNotFound, status(f.schools.Delete(ctx, actor, school.ID)))
	assert.Contains(t, f.rec.types(), events.EventSchoolDeleted)
}

func TestClassrooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	school := f.school(t)

	c, err := f.classrooms.Create(ctx, actor, school.ID, ClassroomInput{Name: "Room 1", Capacity: 30, Resources: []string{"projector", "projector"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"projector"}, c.Resources)

	_, err = f.classrooms.Create(ctx, actor, school.ID, ClassroomInput{Name: "Room 1", Capacity: 10})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "A classroom with the same name already exists in this school", de.Message)

	_, err = f.classrooms.Create(ctx, actor, "missing", ClassroomInput{Name: "X", Capacity: 1})
	assert.Equal(t, http.StatusNotFound, status(err))

	updated, err := f.classrooms.Update(ctx, actor, c.ID, ClassroomUpdate{Resources: []string{"whiteboard", "projector"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"projector", "whiteboard"}, updated.Resources)
	assert.Equal(t, 30, updated.Capacity)

	list, err := f.classrooms.ListBySchool(ctx, school.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.classrooms.Delete(ctx, actor, c.ID))
	_, err = f.classrooms.Get(ctx, c.ID)
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	school := f.school(t)
	other := f.school(t)
	room, err := f.classrooms.Create(ctx, actor, school.ID, ClassroomInput{Name: "Room 1", Capacity: 30})
	require.NoError(t, err)
	foreign, err := f.classrooms.Create(ctx, actor, other.ID, ClassroomInput{Name: "Room 1", Capacity: 30})
	require.NoError(t, err)

	st, err := f.students.Enroll(ctx, actor, school.ID, StudentInput{Name: "Ada", Email: ptr("Ada@x.io"), ClassroomID: &room.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StudentStatusActive, st.Status)
	assert.Equal(t, "ada@x.io", *st.Email)
	assert.False(t, st.EnrollmentDate.IsZero())

	_, err = f.students.Enroll(ctx, actor, school.ID, StudentInput{Name: "Bob", ClassroomID: &foreign.ID})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "Classroom does not belong to this school", de.Message)

	_, err = f.students.Enroll(ctx, actor, school.ID, StudentInput{Name: "Eve", Email: ptr("ada@x.io")})
	assert.Equal(t, http.StatusConflict, status(err))

	_, err = f.students.Update(ctx, actor, st.ID, StudentUpdate{ClassroomID: &foreign.ID})
	assert.Equal(t, http.StatusBadRequest, status(err))

	transferred := domain.StudentStatusTransferred
	updated, err := f.students.Update(ctx, actor, st.ID, StudentUpdate{Phone: ptr("555-1"), Status: &transferred})
	require.NoError(t, err)
	assert.Equal(t, "555-1", *updated.Phone)
	assert.Equal(t, domain.StudentStatusTransferred, updated.Status)

	deactivated, err := f.students.Deactivate(ctx, actor, st.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StudentStatusInactive, deactivated.Status)

	got, err := f.students.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StudentStatusInactive, got.Status)

	list, err := f.students.ListBySchool(ctx, school.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Contains(t, f.rec.types(), events.EventStudentDeactivated)
}
