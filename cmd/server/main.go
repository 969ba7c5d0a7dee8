package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	web "tracker/internal/adapters/http"
	"tracker/internal/adapters/http/perf"
	"tracker/internal/adapters/storage"
	"tracker/internal/adapters/storage/slot"
	subjectStore "tracker/internal/adapters/storage/subject"
	"tracker/internal/application/orchestrators"
	"tracker/internal/domain/confirmation"
	"tracker/internal/domain/notification"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Local overrides; a missing file is fine.
	if err := godotenv.Load(envOrDefault("TRACKER_ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to read env file: %v", err)
	}

	// Initialize database with WAL mode and busy timeout
	dbPath := envOrDefault("TRACKER_DB_PATH", "tracker.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	metrics := perf.NewMetrics()
	collector := perf.NewCollector(perf.DefaultRingSize).WithMetrics(metrics)
	timedDB := storage.NewTimedDB(db, collector)

	slots, closeSlots := openSlotStore(envOrDefault("TRACKER_SLOT_BACKEND", "sqlite"), timedDB)
	defer closeSlots()

	tracker := orchestrators.NewTracker(orchestrators.TrackerDeps{
		Store:         subjectStore.NewSlotStore(slots),
		Notifications: notification.NewCenter(time.Now, uuid.NewString, notification.AfterFunc),
		Gate:          confirmation.NewGate(time.Now, uuid.NewString),
		Recorder:      collector,
		Now:           time.Now,
	})

	// Restore the last saved list, as the page does on open.
	tracker.Start(context.Background())

	webApp := &web.App{
		Tracker:   tracker,
		Collector: collector,
		Metrics:   metrics,
	}
	mux := web.NewMux(envOrDefault("TRACKER_STATIC_DIR", "static"), webApp)
	defer webApp.Close()

	addr := envOrDefault("TRACKER_ADDR", "127.0.0.1:8080")
	log.Printf("Tracker %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("TRACKER_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// openSlotStore picks the persistence backend for the saved list.
func openSlotStore(backend string, timedDB *storage.TimedDB) (slot.Store, func()) {
	switch backend {
	case "sqlite":
		return slot.NewSQLiteStore(timedDB), func() {}
	case "bolt":
		path := envOrDefault("TRACKER_BOLT_PATH", "tracker.bolt")
		store, err := slot.OpenBoltStore(path)
		if err != nil {
			log.Fatalf("failed to open bolt store: %v", err)
		}
		log.Printf("Using bolt slot store at %s", path)
		return store, func() { store.Close() }
	default:
		log.Fatalf("unknown TRACKER_SLOT_BACKEND %q (want sqlite or bolt)", backend)
		return nil, nil
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
