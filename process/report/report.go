// Package report prints attendance totals for a date range from the command line.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"mechlog/models"
	"mechlog/pkg/attendance"
	"mechlog/pkg/store"

	"gorm.io/gorm"
)

// Options selects what RunReport prints. An empty Username covers every mechanic.
type Options struct {
	Username string
	From     string
	To       string
	List     bool
	Location *time.Location
}

// RunReport writes the totals of the range (and the rows when List is set) to w.
func RunReport(ctx context.Context, gdb *gorm.DB, w io.Writer, opt Options) error {
	from, to, err := attendance.ParseRange(opt.From, opt.To)
	if err != nil {
		return err
	}
	records, err := store.New(gdb).FindAttendanceRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	scope := "all users"
	if opt.Username != "" {
		var user models.User
		if err := gdb.WithContext(ctx).Where("username = ?", opt.Username).First(&user).Error; err != nil {
			return fmt.Errorf("user %q not found: %w", opt.Username, err)
		}
		scope = "user=" + user.Username
		kept := records[:0]
		for _, r := range records {
			if r.UserID == user.ID {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	t := attendance.Sum(records)
	fmt.Fprintf(w, "Report for %s from=%s to=%s:\n", scope, from, to)
	fmt.Fprintf(w, "  records=%d normal=%.2f extra=%.2f debit=%.2f\n", len(records), t.Normal, t.Extras, t.Debits)

	if opt.List {
		for _, r := range records {
			name := fmt.Sprintf("user %d", r.UserID)
			if r.User != nil {
				name = r.User.Username
			}
			out := "-"
			if r.CheckOut != nil {
				out = inLoc(*r.CheckOut, opt.Location).Format("15:04")
			}
			fmt.Fprintf(w, "%s|%s|%s|%s|%.2f|%.2f|%.2f\n", r.Date, name,
				inLoc(r.CheckIn, opt.Location).Format("15:04"), out, r.NormalHours, r.ExtraHours, r.DebitHours)
		}
	}
	return nil
}

func inLoc(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
