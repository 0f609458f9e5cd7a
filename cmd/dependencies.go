package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-management/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-management/internal/auth"
	authPostgres "github.com/frahmantamala/attendance-management/internal/auth/postgres"
	"github.com/frahmantamala/attendance-management/internal/checkin"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/department"
	departmentPostgres "github.com/frahmantamala/attendance-management/internal/department/postgres"
	"github.com/frahmantamala/attendance-management/internal/employee"
	employeePostgres "github.com/frahmantamala/attendance-management/internal/employee/postgres"
	"github.com/frahmantamala/attendance-management/internal/face"
	"github.com/frahmantamala/attendance-management/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance-management/internal/leave/postgres"
	"github.com/frahmantamala/attendance-management/internal/metrics"
	"github.com/frahmantamala/attendance-management/internal/scheduler"
	"github.com/frahmantamala/attendance-management/internal/timer"
	timerPostgres "github.com/frahmantamala/attendance-management/internal/timer/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/internal/transport/rest"
	"github.com/frahmantamala/attendance-management/internal/worker"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/frahmantamala/attendance-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	lateNoticeTTL      = 12 * time.Hour
	photoClientTimeout = 30 * time.Second
)

type Dependencies struct {
	Config    *internal.Config
	Logger    *slog.Logger
	DB        *sqlx.DB
	Gorm      *gorm.DB
	Redis     *redis.Client
	Bus       *events.EventBus
	Pool      *worker.Pool
	Scheduler *scheduler.Scheduler
	Handlers  rest.Handlers
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	rdb, err := initRedis(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: lg,
		DB:     db,
		Gorm:   gdb,
		Redis:  rdb,
		Bus:    events.NewEventBus(lg),
	}
	if err := deps.wire(); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) wire() error {
	cfg := d.Config

	schedule, err := attendance.NewSchedule(cfg.Attendance)
	if err != nil {
		return err
	}
	clk := clock.System(schedule.Location())

	var (
		directory   employee.DirectoryCache
		revocations auth.RevocationStore
		notices     checkin.NoticeStore
	)
	if cfg.Cache.Driver == "redis" && d.Redis != nil {
		directory = employee.NewRedisDirectoryCache(d.Redis, cfg.Cache.TTL)
		revocations = auth.NewRedisRevocationStore(d.Redis, clk)
		notices = checkin.NewRedisNoticeStore(d.Redis, lateNoticeTTL)
	} else {
		directory = employee.NewMemoryDirectoryCache(clk, cfg.Cache.TTL)
		revocations = auth.NewMemoryRevocationStore(clk)
		notices = checkin.NewMemoryNoticeStore(clk, lateNoticeTTL)
	}

	photos, err := photoStore(cfg.Storage)
	if err != nil {
		return err
	}

	recorder := metrics.NewWindowRecorder(clk, cfg.Observability.Metrics.Window)

	employeeService := employee.NewService(
		employeePostgres.NewEmployeeRepository(d.Gorm),
		directory, photos, d.Bus, clk, cfg.Security.BCryptCost, d.Logger,
	)
	employee.NewEventHandler(employeeService, d.Logger).RegisterEventHandlers(d.Bus)

	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(d.Gorm), employeeService, d.Logger)
	department.NewEventHandler(departmentService, d.Logger).RegisterEventHandlers(d.Bus)

	attendanceService := attendance.NewService(
		attendancePostgres.NewAttendanceRepository(d.Gorm),
		attendancePostgres.NewReportRepository(d.DB),
		schedule, clk, d.Bus,
		cfg.Attendance.AdminNumericID,
		cfg.Attendance.StandardWorkHours,
		d.Logger,
	)

	timerService := timer.NewService(timerPostgres.NewTimerRepository(d.Gorm), attendanceService, schedule, clk, d.Bus, d.Logger)
	leaveService := leave.NewService(leavePostgres.NewLeaveRepository(d.Gorm), employeeService, clk, d.Bus, d.Logger)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration, clk)
	authService := auth.NewService(authPostgres.NewRepository(d.Gorm), tokens, revocations, cfg.Attendance.AdminNumericID, d.Logger)

	faceClient := face.NewClient(cfg.Face, &http.Client{}, recorder, d.Logger)
	governor := checkin.NewGovernor(clk, cfg.Attendance.MaxAttempts, cfg.Attendance.SessionTTL)
	checkinService := checkin.NewService(
		governor, attendanceService, timerService, employeeService, faceClient,
		authService, notices, recorder, clk,
		checkin.Config{
			JPEGQuality:  cfg.Face.JPEGQuality,
			LockoutDelay: cfg.Attendance.LockoutRedirectDelay,
		},
		d.Logger,
	)
	checkin.NewEventHandler(notices, d.Logger).RegisterEventHandlers(d.Bus)

	d.Pool = worker.NewPool(worker.Config{
		Name:         "timer-finalizer",
		MaxWorkers:   cfg.Scheduler.FinalizerWorkers,
		JobQueueSize: cfg.Scheduler.FinalizerQueueSize,
	}, d.Logger)
	finalizer := timer.NewFinalizer(timerService, d.Pool, d.Logger)
	d.Scheduler = scheduler.New(cfg.Scheduler, schedule.Location(), leaveService, finalizer, d.Logger)

	base := transport.NewBaseHandler(d.Logger)
	d.Handlers = rest.Handlers{
		Auth:       auth.NewHandler(base, authService),
		Employee:   employee.NewHandler(base, employeeService),
		Attendance: attendance.NewHandler(base, attendanceService),
		Checkin:    checkin.NewHandler(base, checkinService),
		Timer:      timer.NewHandler(base, timerService),
		Leave:      leave.NewHandler(base, leaveService),
		Department: department.NewHandler(base, departmentService),
		Metrics:    metrics.NewHandler(base, recorder),
	}
	return nil
}

// Close releases background workers first so nothing touches the stores after
// they are gone.
func (d *Dependencies) Close() {
	if d.Pool != nil {
		d.Pool.Shutdown()
	}
	d.Bus.Drain()
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

// redisCmdable keeps a nil client from becoming a non-nil interface.
func (d *Dependencies) redisCmdable() redis.Cmdable {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

func photoStore(cfg internal.StorageConfig) (employee.PhotoStore, error) {
	client := &http.Client{Timeout: photoClientTimeout}
	if cfg.CloudName == "" {
		return employee.NewInlinePhotoStore(client), nil
	}
	return employee.NewCloudinaryPhotoStore(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder, client)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

// initRedis returns nil when no address is configured.
func initRedis(cfg internal.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
