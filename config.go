package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"mechlog/pkg/attendance"
	"mechlog/process/openshifts"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is read once at startup from the environment (and ./.env).
type Config struct {
	Port           string
	DBDriver       string
	DBDSN          string
	AutoMigrate    bool
	JWTSecret      string
	UploadBase     string
	Location       *time.Location
	Policy         attendance.Policy
	TelegramToken  string
	TelegramChatID int64
	OpenShiftCron  string
}

// loadConfig loads ./.env without overriding variables that are already set.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("godotenv.Load() error: %v", err)
	}

	c := Config{
		Port:          envOr("PORT", "8081"),
		DBDriver:      envOr("DB_DRIVER", "postgres"),
		DBDSN:         os.Getenv("DB_DSN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		UploadBase:    envOr("UPLOAD_BASE", "uploads"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenShiftCron: envOr("OPEN_SHIFT_CRON", openshifts.DefaultSchedule),
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-insecure-secret-change" // development fallback
	}

	var err error
	if c.AutoMigrate, err = envBool("DB_AUTO_MIGRATE", true); err != nil {
		return c, err
	}
	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		if c.TelegramChatID, err = cast.ToInt64E(v); err != nil {
			return c, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}
	if c.Location, err = time.LoadLocation(envOr("APP_TZ", "America/Costa_Rica")); err != nil {
		return c, fmt.Errorf("APP_TZ: %w", err)
	}
	if c.Policy, err = policyFromEnv(); err != nil {
		return c, err
	}
	c.Policy.Location = c.Location
	return c, nil
}

// policyFromEnv picks the schedule variant and applies per-rule overrides.
func policyFromEnv() (attendance.Policy, error) {
	var p attendance.Policy
	switch v := strings.ToLower(envOr("SCHEDULE_VARIANT", "standard")); v {
	case "standard":
		p = attendance.DefaultPolicy()
	case "legacy":
		p = attendance.LegacyPolicy()
	default:
		return p, fmt.Errorf("SCHEDULE_VARIANT: unknown variant %q", v)
	}

	var err error
	if p.WeekdayShift, err = envFloat("WEEKDAY_SHIFT_HOURS", p.WeekdayShift); err != nil {
		return p, err
	}
	if p.WeekdayLunch, err = envFloat("WEEKDAY_LUNCH_HOURS", p.WeekdayLunch); err != nil {
		return p, err
	}
	if p.EntryFloor, err = envBool("ENTRY_FLOOR_ENABLED", p.EntryFloor); err != nil {
		return p, err
	}
	if p.DebitHours, err = envBool("DEBIT_HOURS_ENABLED", p.DebitHours); err != nil {
		return p, err
	}
	if p.WeekdayShift < 0 || p.WeekdayLunch < 0 {
		return p, errors.New("weekday shift and lunch hours must not be negative")
	}
	return p, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def, nil
	case "no", "off":
		return false, nil
	case "yes", "on":
		return true, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
