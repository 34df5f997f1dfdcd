package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/http/handlers"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/loader"
	"github.com/Raj-Randive/soar-school-management-system/internal/validation"
)

// Limiter group names.
const (
	LimiterAuth = "auth"
	LimiterAPI  = "api"
)

// RoutesPattern selects every route module in RouteModules.
const RoutesPattern = "routes/*.routes"

var (
	superAdminOnly  = []domain.Role{domain.RoleSuperAdmin}
	schoolAdminOnly = []domain.Role{domain.RoleSchoolAdmin}
	anyAdmin        = []domain.Role{domain.RoleSuperAdmin, domain.RoleSchoolAdmin}
)

// RouteHandlers bundles the handlers route modules dispatch to.
type RouteHandlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Schools    *handlers.SchoolHandler
	Classrooms *handlers.ClassroomHandler
	Students   *handlers.StudentHandler
}

// RouteModules is the registry read by the ordered route pass.
func RouteModules(h RouteHandlers) loader.Source[RouteModule] {
	return loader.Source[RouteModule]{
		{Path: "routes/health.routes", Build: loader.Static(healthRoutes(h.Health))},
		{Path: "routes/auth.routes", Build: loader.Static(authRoutes(h.Auth))},
		{Path: "routes/school.routes", Build: loader.Static(schoolRoutes(h.Schools))},
		{Path: "routes/classroom.routes", Build: loader.Static(classroomRoutes(h.Classrooms))},
		{Path: "routes/student.routes", Build: loader.Static(studentRoutes(h.Students))},
	}
}

func idParam(name, label string) validation.Rule {
	return validation.Param(name).UUID("Invalid " + label + " id")
}

// Probes are exempt from rate limiting; metrics are not.
func healthRoutes(h *handlers.HealthHandler) RouteModule {
	return RouteModule{Prefix: "", Routes: []Route{
		{Method: fiber.MethodGet, Path: "/", Handler: h.Root},
		{Method: fiber.MethodGet, Path: "/health/live", Handler: h.Live},
		{Method: fiber.MethodGet, Path: "/health/ready", Handler: h.Ready},
		{Method: fiber.MethodGet, Path: "/health/metrics", Limiter: LimiterAPI, Roles: superAdminOnly, Handler: h.Metrics},
	}}
}

func authRoutes(h *handlers.AuthHandler) RouteModule {
	register := []validation.Rule{
		validation.Body("name").Required("Name is required"),
		validation.Body("name").String("Name must be a string").Optional(),
		validation.Body("email").Required("Email is required"),
		validation.Body("email").Email("Email must be valid").Optional(),
		validation.Body("password").Required("Password is required"),
		validation.Body("password").Length(6, 0, "Password must be at least 6 characters").Optional(),
		validation.Body("role").Required("Role is required"),
		validation.Body("role").OneOf("Role must be superadmin or schooladmin",
			string(domain.RoleSuperAdmin), string(domain.RoleSchoolAdmin)).Optional(),
		validation.Body("school_id").UUID("school_id must be a valid id").Optional(),
	}
	login := []validation.Rule{
		validation.Body("email").Required("Email is required"),
		validation.Body("email").Email("Email must be valid").Optional(),
		validation.Body("password").Required("Password is required"),
	}

	return RouteModule{Prefix: "/api/auth", Routes: []Route{
		{Method: fiber.MethodPost, Path: "/register", Limiter: LimiterAuth, Rules: register, Handler: h.Register},
		{Method: fiber.MethodPost, Path: "/login", Limiter: LimiterAuth, Rules: login, Handler: h.Login},
		{Method: fiber.MethodPost, Path: "/logout", Limiter: LimiterAuth, Handler: h.Logout},
		{Method: fiber.MethodGet, Path: "/me", Limiter: LimiterAPI, Roles: anyAdmin, Handler: h.Me},
	}}
}

func schoolRoutes(h *handlers.SchoolHandler) RouteModule {
	create := []validation.Rule{
		validation.Body("name").Required("Name is required"),
		validation.Body("name").Length(1, 200, "Name must be at most 200 characters").Optional(),
		validation.Body("address").Required("Address is required"),
		validation.Body("phone").Required("Phone is required"),
		validation.Body("phone").Length(3, 30, "Phone must be between 3 and 30 characters").Optional(),
		validation.Body("capacity").Required("Capacity is required"),
		validation.Body("capacity").Int("Capacity must be an integer").Optional(),
		validation.Body("capacity").Range(1, 1_000_000, "Capacity must be positive").Optional(),
		validation.Body("resources").StringArray("Resources must be a list of strings").Optional(),
		validation.Body("admin_id").UUID("admin_id must be a valid id").Optional(),
	}
	update := []validation.Rule{
		idParam("id", "school"),
		validation.Body("name").Length(1, 200, "Name must be at most 200 characters").Optional(),
		validation.Body("address").String("Address must be a string").Optional(),
		validation.Body("phone").Length(3, 30, "Phone must be between 3 and 30 characters").Optional(),
		validation.Body("capacity").Int("Capacity must be an integer").Optional(),
		validation.Body("capacity").Range(1, 1_000_000, "Capacity must be positive").Optional(),
		validation.Body("resources").StringArray("Resources must be a list of strings").Optional(),
		validation.Body("new_admin_id").UUID("new_admin_id must be a valid id").Optional(),
	}
	byID := []validation.Rule{idParam("id", "school")}

	return RouteModule{Prefix: "/api/schools", Routes: []Route{
		{Method: fiber.MethodGet, Path: "/", Limiter: LimiterAPI, Roles: superAdminOnly, Handler: h.List},
		{Method: fiber.MethodPost, Path: "/create", Limiter: LimiterAPI, Roles: superAdminOnly, Rules: create, Handler: h.Create},
		{Method: fiber.MethodGet, Path: "/:id", Limiter: LimiterAPI, Roles: anyAdmin, Rules: byID, Handler: h.Get},
		{Method: fiber.MethodPut, Path: "/:id", Limiter: LimiterAPI, Roles: superAdminOnly, Rules: update, Handler: h.Update},
		{Method: fiber.MethodDelete, Path: "/:id", Limiter: LimiterAPI, Roles: superAdminOnly, Rules: byID, Handler: h.Delete},
	}}
}

func classroomRoutes(h *handlers.ClassroomHandler) RouteModule {
	bySchool := []validation.Rule{idParam("school_id", "school")}
	byID := []validation.Rule{idParam("id", "classroom")}
	create := []validation.Rule{
		idParam("school_id", "school"),
		validation.Body("name").Required("Classroom name is required"),
		validation.Body("name").Length(1, 100, "Classroom name must be at most 100 characters").Optional(),
		validation.Body("capacity").Required("Capacity is required"),
		validation.Body("capacity").Int("Capacity must be an integer").Optional(),
		validation.Body("capacity").Range(1, 10_000, "Capacity must be between 1 and 10000").Optional(),
		validation.Body("resources").StringArray("Resources must be a list of strings").Optional(),
	}
	update := []validation.Rule{
		idParam("id", "classroom"),
		validation.Body("name").Length(1, 100, "Classroom name must be at most 100 characters").Optional(),
		validation.Body("capacity").Int("Capacity must be an integer").Optional(),
		validation.Body("capacity").Range(1, 10_000, "Capacity must be between 1 and 10000").Optional(),
		validation.Body("resources").StringArray("Resources must be a list of strings").Optional(),
	}

	return RouteModule{Prefix: "/api/classrooms", Routes: []Route{
		{Method: fiber.MethodGet, Path: "/:school_id", Limiter: LimiterAPI, Roles: anyAdmin, Rules: bySchool, Handler: h.List},
		{Method: fiber.MethodPost, Path: "/:school_id", Limiter: LimiterAPI, Roles: anyAdmin, Rules: create, Handler: h.Create},
		{Method: fiber.MethodGet, Path: "/:id/details", Limiter: LimiterAPI, Roles: anyAdmin, Rules: byID, Handler: h.Get},
		{Method: fiber.MethodPut, Path: "/:id/update", Limiter: LimiterAPI, Roles: anyAdmin, Rules: update, Handler: h.Update},
		{Method: fiber.MethodDelete, Path: "/:id", Limiter: LimiterAPI, Roles: anyAdmin, Rules: byID, Handler: h.Delete},
	}}
}

func studentRoutes(h *handlers.StudentHandler) RouteModule {
	statuses := domain.StudentStatuses()
	profile := []validation.Rule{
		validation.Body("email").Email("Email must be valid").Optional(),
		validation.Body("phone").Length(3, 30, "Phone must be between 3 and 30 characters").Optional(),
		validation.Body("classroom_id").UUID("classroom_id must be a valid id").Optional(),
		validation.Body("enrollment_date").Date("enrollment_date must be a date").Optional(),
		validation.Body("enrollmentDate").Date("enrollmentDate must be a date").Optional(),
		validation.Body("status").OneOf("Status must be one of active, transferred, inactive", statuses...).Optional(),
	}
	enroll := append([]validation.Rule{
		idParam("school_id", "school"),
		validation.Body("name").Required("Name is required"),
		validation.Body("name").Length(1, 200, "Name must be at most 200 characters").Optional(),
	}, profile...)
	update := append([]validation.Rule{
		idParam("id", "student"),
		validation.Body("name").Length(1, 200, "Name must be at most 200 characters").Optional(),
	}, profile...)

	return RouteModule{Prefix: "/api/students", Routes: []Route{
		{Method: fiber.MethodGet, Path: "/details/:id", Limiter: LimiterAPI, Roles: anyAdmin,
			Rules: []validation.Rule{idParam("id", "student")}, Handler: h.Get},
		{Method: fiber.MethodGet, Path: "/:school_id", Limiter: LimiterAPI, Roles: anyAdmin,
			Rules: []validation.Rule{idParam("school_id", "school")}, Handler: h.List},
		{Method: fiber.MethodPost, Path: "/:school_id", Limiter: LimiterAPI, Roles: schoolAdminOnly, Rules: enroll, Handler: h.Enroll},
		{Method: fiber.MethodPut, Path: "/:id", Limiter: LimiterAPI, Roles: schoolAdminOnly, Rules: update, Handler: h.Update},
		{Method: fiber.MethodDelete, Path: "/:id", Limiter: LimiterAPI, Roles: schoolAdminOnly,
			Rules: []validation.Rule{idParam("id", "student")}, Handler: h.Deactivate},
	}}
}
