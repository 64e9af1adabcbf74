package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"mechlog/pkg/attendance"
	"mechlog/pkg/store"
	"mechlog/process/report"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	loc, err := time.LoadLocation(envOr("APP_TZ", "America/Costa_Rica"))
	if err != nil {
		log.Fatalf("APP_TZ: %v", err)
	}
	defFrom, defTo := attendance.DefaultRange(time.Now().In(loc))

	username := flag.String("username", "", "username to report for (empty: everyone)")
	from := flag.String("from", defFrom, "first day (YYYY-MM-DD)")
	to := flag.String("to", defTo, "last day (YYYY-MM-DD)")
	list := flag.Bool("list", false, "list matching rows")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	gdb, err := store.Open(envOr("DB_DRIVER", "postgres"), dsn, &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	opt := report.Options{Username: *username, From: *from, To: *to, List: *list, Location: loc}
	if err := report.RunReport(context.Background(), gdb, os.Stdout, opt); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
