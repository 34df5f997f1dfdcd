// Package bootstrap assembles the service. Construction is explicit and
// ordered: every manager receives concrete references to the managers it
// depends on, and any failure aborts before the HTTP listener binds.
package bootstrap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Raj-Randive/soar-school-management-system/internal/api/http"
	"github.com/Raj-Randive/soar-school-management-system/internal/api/http/handlers"
	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/config"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/loader"
	"github.com/Raj-Randive/soar-school-management-system/internal/observability"
	"github.com/Raj-Randive/soar-school-management-system/internal/persistence"
	"github.com/Raj-Randive/soar-school-management-system/internal/ratelimit"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository/memory"
	"github.com/Raj-Randive/soar-school-management-system/internal/service"
	"github.com/Raj-Randive/soar-school-management-system/internal/worker"
	"github.com/Raj-Randive/soar-school-management-system/pkg/util"
)

// EntitiesPattern selects every entity definition.
const EntitiesPattern = "entities/*.entity"

const sweepInterval = time.Minute

// ErrAlreadyLoaded is returned by a second call to Load.
var ErrAlreadyLoaded = errors.New("bootstrap: container already loaded")

// Cache is the optional shared cache handed to managers.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Injectable is the read-only context every manager is built from.
type Injectable struct {
	Config   *config.Config
	Utils    util.Utils
	Logger   *zap.Logger
	Cache    Cache
	Entities map[string]persistence.Entity
}

// Services groups the use case managers.
type Services struct {
	Auth          *service.AuthService
	Schools       *service.SchoolService
	Classrooms    *service.ClassroomService
	Students      *service.StudentService
	Notifications *service.NotificationService
}

// Managers is everything Load built.
type Managers struct {
	Injectable   *Injectable
	Tokens       *auth.TokenManager
	Guard        *auth.AccessGuard
	Limiters     map[string]*ratelimit.Limiter
	Repositories repository.Repositories
	Dispatcher   events.Dispatcher
	Services     Services
	Metrics      *observability.Metrics
	Pipeline     *httptransport.Pipeline
	Routes       []loader.Entry[httptransport.RouteModule]
	App          *fiber.App

	closers []func()
}

// Close releases connections and stops background workers, newest first.
func (m *Managers) Close() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
	m.closers = nil
}

// Option customizes a Container.
type Option func(*Container)

// WithLogger supplies the logger instead of building one from config.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithEntities replaces the entity registry.
func WithEntities(src loader.Source[persistence.Entity]) Option {
	return func(c *Container) { c.entities = src }
}

// WithRepositories replaces the storage backend.
func WithRepositories(repos repository.Repositories) Option {
	return func(c *Container) { c.repos = &repos }
}

// WithRateLimitStore replaces the limiter counter store.
func WithRateLimitStore(store ratelimit.Store) Option {
	return func(c *Container) { c.limitStore = store }
}

// WithRouteModules replaces the route registry.
func WithRouteModules(fn func(httptransport.RouteHandlers) loader.Source[httptransport.RouteModule]) Option {
	return func(c *Container) { c.routes = fn }
}

// Container runs the bootstrap sequence once.
type Container struct {
	cfg        *config.Config
	logger     *zap.Logger
	entities   loader.Source[persistence.Entity]
	repos      *repository.Repositories
	limitStore ratelimit.Store
	routes     func(httptransport.RouteHandlers) loader.Source[httptransport.RouteModule]

	mu     sync.Mutex
	loaded bool
}

// New prepares a container; nothing is constructed until Load.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	c := &Container{
		cfg:      cfg,
		entities: persistence.Entities(),
		routes:   httptransport.RouteModules,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load builds every manager. It may be called once; a failed Load also
// consumes the container.
func (c *Container) Load(ctx context.Context) (*Managers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil, ErrAlreadyLoaded
	}
	c.loaded = true

	m := &Managers{}
	if err := c.load(ctx, m); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (c *Container) load(ctx context.Context, m *Managers) error {
	inj, err := c.injectable(ctx, m)
	if err != nil {
		return err
	}
	m.Injectable = inj
	logger := inj.Logger
	cfg := inj.Config

	m.Tokens, err = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		return stageError("tokens", err)
	}

	health := map[string]handlers.Pinger{}
	if err := c.repositories(ctx, m, health); err != nil {
		return err
	}
	if redis, ok := inj.Cache.(*persistence.Redis); ok {
		health["redis"] = redis
	}

	c.events(m)
	c.services(m)

	if err := c.limiters(m); err != nil {
		return err
	}
	m.Guard = auth.NewAccessGuard(m.Tokens)

	m.Metrics = observability.NewMetrics()
	exposeInternal := !cfg.App.IsProduction()
	m.App = fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ProxyHeader:           cfg.App.ProxyHeader,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          httptransport.ErrorHandler(logger, exposeInternal),
	})
	httptransport.RegisterMiddlewares(m.App, logger, m.Metrics, httptransport.MiddlewareOptions{
		Timeout:              cfg.App.RequestTimeout(),
		ExposeInternalErrors: exposeInternal,
		CORSAllowOrigins:     cfg.App.CORSAllowOrigins,
	})

	m.Pipeline, err = httptransport.NewPipeline(m.App, m.Guard, m.Limiters[httptransport.LimiterAuth], m.Limiters[httptransport.LimiterAPI])
	if err != nil {
		return stageError("pipeline", err)
	}

	routeHandlers := httptransport.RouteHandlers{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health, m.Metrics),
		Auth:       handlers.NewAuthHandler(m.Services.Auth),
		Schools:    handlers.NewSchoolHandler(m.Services.Schools),
		Classrooms: handlers.NewClassroomHandler(m.Services.Classrooms),
		Students:   handlers.NewStudentHandler(m.Services.Students),
	}
	m.Routes, err = loader.LoadOrdered(c.routes(routeHandlers), httptransport.RoutesPattern)
	if err != nil {
		return err
	}
	for _, entry := range m.Routes {
		if err := m.Pipeline.Mount(entry.Value.Prefix, entry.Value.Routes); err != nil {
			return &loader.BootstrapError{Stage: httptransport.RoutesPattern, Module: entry.Path, Err: err}
		}
		logger.Info("route module mounted",
			zap.String("module", entry.Name),
			zap.String("prefix", entry.Value.Prefix),
			zap.Int("routes", len(entry.Value.Routes)))
	}

	logger.Info("bootstrap complete",
		zap.Int("entities", len(inj.Entities)),
		zap.Int("route_modules", len(m.Routes)))
	return nil
}

func (c *Container) injectable(ctx context.Context, m *Managers) (*Injectable, error) {
	entities, err := loader.Load(c.entities, EntitiesPattern)
	if err != nil {
		return nil, err
	}

	logger := c.logger
	if logger == nil {
		logger, err = observability.NewLogger(c.cfg.Logger)
		if err != nil {
			return nil, stageError("logger", err)
		}
	}
	for name, e := range entities {
		logger.Info("entity loaded", zap.String("entity", name), zap.String("table", e.Table))
	}

	inj := &Injectable{
		Config:   c.cfg,
		Utils:    util.Default(),
		Logger:   logger,
		Entities: entities,
	}
	if c.cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, c.cfg.Redis, c.cfg.App.Name, logger)
		m.closers = append(m.closers, redis.Close)
		inj.Cache = redis
	}
	return inj, nil
}

func (c *Container) repositories(ctx context.Context, m *Managers, health map[string]handlers.Pinger) error {
	if c.repos != nil {
		m.Repositories = *c.repos
		return nil
	}

	inj := m.Injectable
	pg, err := persistence.NewPostgres(ctx, inj.Config.Postgres, inj.Logger)
	if err != nil {
		return stageError("postgres", err)
	}
	if !pg.Enabled() {
		m.Repositories = memory.New().Repositories()
		return nil
	}
	m.closers = append(m.closers, pg.Close)
	health["postgres"] = pg

	if inj.Config.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, inj.Entities, inj.Logger); err != nil {
			return stageError("migrations", err)
		}
	}
	m.Repositories = repository.NewPostgresRepositories(pg.Pool)
	return nil
}

func (c *Container) events(m *Managers) {
	inj := m.Injectable
	m.Dispatcher = events.NewInMemoryDispatcher()

	var forward events.EventHandler
	if url := inj.Config.Events.AMQPURL; url != "" {
		publisher, err := events.NewAMQPPublisher(url, inj.Config.Events.Queue, inj.Logger)
		if err != nil {
			inj.Logger.Warn("event publisher disabled", zap.Error(err))
		} else {
			forward = publisher.Handle
			m.closers = append(m.closers, publisher.Close)
		}
	}

	m.Services.Notifications = service.NewNotificationService(m.Dispatcher, inj.Logger, forward)
	worker.StartNotificationWorker(m.Services.Notifications)
}

func (c *Container) services(m *Managers) {
	repos := m.Repositories
	m.Services.Auth = service.NewAuthService(service.AuthDependencies{
		UserRepo:   repos.Users,
		SchoolRepo: repos.Schools,
		Tokens:     m.Tokens,
		BcryptCost: m.Injectable.Config.Auth.BcryptCost,
		Dispatcher: m.Dispatcher,
	})
	m.Services.Schools = service.NewSchoolService(repos.Schools, repos.Users, m.Dispatcher)
	m.Services.Classrooms = service.NewClassroomService(repos.Classrooms, repos.Schools, m.Dispatcher)
	m.Services.Students = service.NewStudentService(repos.Students, repos.Classrooms, repos.Schools, m.Dispatcher)
}

func (c *Container) limiters(m *Managers) error {
	inj := m.Injectable
	cfg := inj.Config.RateLimit

	store := c.limitStore
	if store == nil {
		redis, isRedis := inj.Cache.(*persistence.Redis)
		switch {
		case cfg.Store == "redis" && isRedis:
			store = ratelimit.NewRedisStore(redis.Client, inj.Config.App.Name+":rl")
		default:
			mem := ratelimit.NewMemoryStore(nil)
			sweepCtx, cancel := context.WithCancel(context.Background())
			worker.StartSweeper(sweepCtx, mem, sweepInterval, inj.Logger)
			m.closers = append(m.closers, cancel)
			store = mem
		}
	}

	authLimiter, err := ratelimit.New(httptransport.LimiterAuth, cfg.Auth.Window, cfg.Auth.Max, store, inj.Logger)
	if err != nil {
		return stageError("limiters", err)
	}
	apiLimiter, err := ratelimit.New(httptransport.LimiterAPI, cfg.API.Window, cfg.API.Max, store, inj.Logger)
	if err != nil {
		return stageError("limiters", err)
	}
	m.Limiters = map[string]*ratelimit.Limiter{
		authLimiter.Name(): authLimiter,
		apiLimiter.Name():  apiLimiter,
	}
	return nil
}

func stageError(stage string, err error) error {
	return &loader.BootstrapError{Stage: stage, Err: err}
}
