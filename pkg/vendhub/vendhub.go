package vendhub

import (
	"database/sql"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"github.com/vendhub/vendhub/internal/approval"
	"github.com/vendhub/vendhub/internal/config"
	"github.com/vendhub/vendhub/internal/controllers"
	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/migrations"
	"github.com/vendhub/vendhub/internal/notify"
	"github.com/vendhub/vendhub/internal/repository"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/internal/workflows"
	"github.com/vendhub/vendhub/pkg/vendhub/core"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

// Transport is the chat platform adapter the notification dispatcher sends
// through. Defaults to logging when the caller wires none.
var Transport notify.Transport = notify.SlogTransport{}

// Start boots the fleet management service and HTTP server.
// This call blocks until the HTTP server stops.
func Start(mux *http.ServeMux) error {

	databaseType := config.GetSystemSettingString(config.DATABASE_TYPE)
	if databaseType == "" || (databaseType != config.DATABASE_TYPE_POSTGRES && databaseType != config.DATABASE_TYPE_MYSQL && databaseType != config.DATABASE_TYPE_SQLLITE) {
		panic("VHM_DATABASE_TYPE must be set to one of the following values: POSTGRES, MYSQL, SQLLITE")
	}

	var db *sql.DB
	if databaseType == config.DATABASE_TYPE_POSTGRES {
		db = setupPostgresDatabase()
		defer db.Close()
	}
	if databaseType == config.DATABASE_TYPE_SQLLITE {
		db = setupSqlLiteDatabase()
		defer db.Close()
	}
	if databaseType == config.DATABASE_TYPE_MYSQL {
		db = setupMysqlDatabase()
		defer db.Close()
	}

	clock := core.NewRealClock()

	userRepo := repository.NewUserRepository(db, clock)
	machineRepo := repository.NewMachineRepository(db, clock)
	ingredientRepo := repository.NewIngredientRepository(db, clock)
	bagRepo := repository.NewBagRepository(db, clock)
	cashEntryRepo := repository.NewCashEntryRepository(db, clock)
	inventoryCountRepo := repository.NewInventoryCountRepository(db, clock)
	returnedHopperRepo := repository.NewReturnedHopperRepository(db, clock)
	goodsReceiptRepo := repository.NewGoodsReceiptRepository(db, clock)
	financeEntryRepo := repository.NewFinanceEntryRepository(db, clock)
	sessionRepo := repository.NewSessionRepository(db, clock)
	sessionEventRepo := repository.NewSessionEventRepository(db, clock)
	deliveryRecordRepo := repository.NewDeliveryRecordRepository(db, clock)

	bootstrapAdminUser(userRepo)

	registry := workflow.NewRegistry()
	mustRegister(registry, workflows.NewCashCollection(machineRepo, cashEntryRepo, clock).Definition())
	mustRegister(registry, workflows.NewInventoryCount(ingredientRepo, inventoryCountRepo, clock).Definition())
	mustRegister(registry, workflows.NewWarehouseReturn(bagRepo, ingredientRepo, returnedHopperRepo, clock).Definition())
	mustRegister(registry, workflows.NewWarehouseReceive(ingredientRepo, goodsReceiptRepo, clock).Definition())
	mustRegister(registry, workflows.NewFinanceEntry(financeEntryRepo, clock).Definition())

	dispatcher := notify.NewDispatcher(userRepo, Transport, deliveryRecordRepo, clock)
	runner := workflow.NewRunner(registry, sessionRepo, sessionEventRepo, dispatcher, clock)
	approvalService := approval.NewService(cashEntryRepo, dispatcher, clock)

	if mux == nil {
		mux = http.NewServeMux()
	}
	authController := controllers.NewAuthController(userRepo, clock)
	authController.RegisterRoutes(mux)
	sessionsController := controllers.NewSessionsController(authController, runner, registry)
	sessionsController.RegisterRoutes(mux)
	approvalsController := controllers.NewApprovalsController(authController, approvalService)
	approvalsController.RegisterRoutes(mux)
	directoryController := controllers.NewDirectoryController(authController, machineRepo, ingredientRepo, bagRepo)
	directoryController.RegisterRoutes(mux)
	usersController := controllers.NewUsersController(authController)
	usersController.RegisterRoutes(mux)

	addr := ":" + config.GetSystemSettingString(config.SERVER_WEB_PORT)
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		addr = v
	}
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("HTTP server failed", "error", err)
		return err
	}
	return nil
}

func mustRegister(registry *workflow.Registry, def *workflow.Definition) {
	if err := registry.Register(def); err != nil {
		panic(err)
	}
}

// bootstrapAdminUser seeds the first admin account on an empty users table so
// a fresh install can log in.
func bootstrapAdminUser(userRepo *repository.UserRepository) {
	count, err := userRepo.CountAll()
	if err != nil {
		slog.Error("Failed to count users", "error", err)
		os.Exit(1)
	}
	if count > 0 {
		return
	}

	username := config.GetSystemSettingString(config.BOOTSTRAP_ADMIN_USERNAME)
	password := config.GetSystemSettingString(config.BOOTSTRAP_ADMIN_PASSWORD)
	if password == "" {
		password = uuid.NewString()
		slog.Warn("VHM_BOOTSTRAP_ADMIN_PASSWORD not set, generated one", "password", password)
	}
	hashed, err := controllers.HashPassword(password)
	if err != nil {
		slog.Error("Failed to hash bootstrap password", "error", err)
		os.Exit(1)
	}
	u := &domain.User{
		Username: username,
		Password: hashed,
		Role:     domain.RoleAdmin,
		ApiKey:   sql.NullString{String: uuid.NewString(), Valid: true},
		Enabled:  sql.NullBool{Bool: true, Valid: true},
	}
	if _, err := userRepo.Save(u); err != nil {
		slog.Error("Failed to save bootstrap admin user", "error", err)
		os.Exit(1)
	}
	slog.Info("Created bootstrap admin user", "username", username, "api_key", u.ApiKey.String)
}

func setupPostgresDatabase() *sql.DB {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		panic("VHM_DATABASE_URL must be set when using the POSTGRES database type")
	}
	slog.Info("Using Postgres database", "url", dbURL)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("postgres", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening Postgres database")
	dbPostgres, err := sql.Open("postgres", dbURL)
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	return dbPostgres
}

func setupSqlLiteDatabase() *sql.DB {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	if fileName == "" {
		panic("VHM_DATABASE_SQLLITE_FILE_NAME must be set")
	}
	dbURL := "sqlite3://" + fileName
	slog.Info("Using SQLite database", "file", fileName)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("sqllite3", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening SQLite database")
	dbSqlLite, err := sql.Open("sqlite3", fileName)
	if err != nil {
		log.Fatalf("Failed to open SQLite DB: %v", err)
	}
	if err := dbSqlLite.Ping(); err != nil {
		log.Fatalf("Failed to ping SQLite DB: %v", err)
	}
	return dbSqlLite
}

func setupMysqlDatabase() *sql.DB {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		panic("VHM_DATABASE_URL must be set when using the MYSQL database type")
	}
	// panic if url does not contain ?parseTime=true
	if !strings.Contains(dbURL, "parseTime=true") {
		panic("VHM_DATABASE_URL must contain 'parseTime=true' for MySQL")
	}
	// panic if url does not  start with mysql://
	if !strings.HasPrefix(dbURL, "mysql://") {
		panic("VHM_DATABASE_URL must start with 'mysql://' for MYSQL")
	}

	slog.Info("Using MySQL database", "url", dbURL)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("mysql", dbURL); err != nil {
		slog.Error("DB migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Opening MySQL database")
	//remove mysql:// prefix from url
	dbMysql, err := sql.Open("mysql", strings.Replace(dbURL, "mysql://", "", 1))
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	return dbMysql
}

func runMigrationsFromEmbed(migrationsPath string, dbURL string) error {
	sub, err := fs.Sub(migrations.FS, migrationsPath)
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func SetupLogger() {
	w := os.Stderr
	_ = slog.New(tint.NewHandler(w, nil))
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}
