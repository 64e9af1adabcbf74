package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"mechlog/pkg/attendance"
	"mechlog/pkg/notify"
	"mechlog/pkg/store"
	"mechlog/process/openshifts"

	"github.com/gin-gonic/gin"
)

var (
	cfg       Config
	jwtSecret []byte
	tracker   *attendance.Service
	notifier  notify.Notifier = notify.Nop{}
)

// clock returns the current shop time. Attendance never reads the system
// clock directly; tests replace this.
var clock = func() time.Time {
	if cfg.Location == nil {
		return time.Now()
	}
	return time.Now().In(cfg.Location)
}

func main() {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	jwtSecret = []byte(cfg.JWTSecret)

	// `./mechlog migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()
	notifier = notify.FromConfig(cfg.TelegramToken, cfg.TelegramChatID)
	tracker = attendance.NewService(store.New(db), cfg.Policy)
	log.Printf("Schedule: weekday %.2fh (lunch %.2fh), entry floor %v, debit hours %v, tz %s",
		cfg.Policy.WeekdayShift, cfg.Policy.WeekdayLunch, cfg.Policy.EntryFloor, cfg.Policy.DebitHours, cfg.Location)

	if !strings.EqualFold(cfg.OpenShiftCron, "off") {
		scanner := openshifts.New(tracker, notifier, cfg.OpenShiftCron, cfg.Location)
		if err := scanner.Start(); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			defer scanner.Stop()
		}
	}

	r := gin.Default()
	setupRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped gracefully")
}
