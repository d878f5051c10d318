package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// Notification kinds
const (
	KindMemo  = "memo"
	KindDaily = "daily"
)

// DailyReminderTitle is shown for the profile's daily reminder
const DailyReminderTitle = "오늘의 운세와 메모를 확인하세요"

// Store is the persistence the daemon reads from
type Store interface {
	LoadAllMemos() ([]model.Memo, error)
	LoadProfile() (*model.Profile, error)
}

// ReminderFinder finds memo reminders due in a time window
type ReminderFinder interface {
	RemindersBetween(memos []model.Memo, from, to time.Time, loc *time.Location) []memo.Reminder
}

// Notification is a single message handed to a Notifier
type Notification struct {
	Kind   string
	MemoID string
	Title  string
	At     time.Time
}

// Notifier delivers notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs every notification at info level
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.Info("Reminder",
		zap.String("kind", note.Kind),
		zap.String("memo_id", note.MemoID),
		zap.String("title", note.Title),
		zap.Time("at", note.At))
	return nil
}

// Daemon scans for due reminders on a cron schedule
type Daemon struct {
	store    Store
	finder   ReminderFinder
	notifier Notifier
	schedule string
	loc      *time.Location
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	cron     *cron.Cron
	now      func() time.Time

	mu            sync.Mutex // Protect against concurrent scans
	scanRunning   bool
	lastScan      time.Time
	lastDailyDate string // Date the daily reminder last fired, to avoid duplicates
}

// NewDaemon creates a new daemon instance.
// schedule is a standard five-field cron expression.
func NewDaemon(store Store, finder ReminderFinder, notifier Notifier, schedule string, loc *time.Location, logger *zap.Logger) (*Daemon, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid daemon schedule %q: %w", schedule, err)
	}
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		store:    store,
		finder:   finder,
		notifier: notifier,
		schedule: schedule,
		loc:      loc,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}, nil
}

// Start runs the scheduler until Stop is called or a termination signal arrives
func (d *Daemon) Start() error {
	d.cron = cron.New(cron.WithLocation(d.loc))
	if _, err := d.cron.AddFunc(d.schedule, d.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}

	d.logger.Info("Daemon started",
		zap.String("schedule", d.schedule),
		zap.String("timezone", d.loc.String()))

	// Catch up on anything due right now
	d.runScheduled()
	d.cron.Start()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-d.ctx.Done():
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Stop()
	}

	<-d.cron.Stop().Done()
	d.logger.Info("Daemon stopped")
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) runScheduled() {
	sent, err := d.Scan()
	if err != nil {
		d.logger.Error("Reminder scan failed", zap.Error(err))
		return
	}
	if sent > 0 {
		d.logger.Info("Reminder scan completed", zap.Int("sent", sent))
	}
}

// Scan delivers every reminder due from the previous scan through the end of the
// current minute and returns how many were sent. The first scan covers the current minute only.
func (d *Daemon) Scan() (int, error) {
	d.mu.Lock()
	if d.scanRunning {
		d.mu.Unlock()
		d.logger.Warn("Scan already running, skipping concurrent execution")
		return 0, nil
	}
	d.scanRunning = true
	from := d.lastScan
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.scanRunning = false
		d.mu.Unlock()
	}()

	now := d.now().In(d.loc)
	to := now.Truncate(time.Minute).Add(time.Minute)
	if from.IsZero() || from.After(to) {
		from = now.Truncate(time.Minute)
	}

	memos, err := d.store.LoadAllMemos()
	if err != nil {
		return 0, fmt.Errorf("failed to load memos: %w", err)
	}

	sent := 0
	for _, r := range d.finder.RemindersBetween(memos, from, to, d.loc) {
		note := Notification{Kind: KindMemo, MemoID: r.MemoID, Title: r.Content, At: r.At}
		if err := d.notifier.Notify(d.ctx, note); err != nil {
			d.logger.Warn("Failed to deliver reminder",
				zap.String("memo_id", r.MemoID),
				zap.Error(err))
			continue
		}
		sent++
	}

	if ok, err := d.dailyReminder(from, to); err != nil {
		d.logger.Warn("Daily reminder failed", zap.Error(err))
	} else if ok {
		sent++
	}

	d.mu.Lock()
	d.lastScan = to
	d.mu.Unlock()

	return sent, nil
}

// dailyReminder fires the profile's daily reminder when its time falls in [from, to)
func (d *Daemon) dailyReminder(from, to time.Time) (bool, error) {
	profile, err := d.store.LoadProfile()
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || !profile.NotificationsEnabled || profile.DailyReminderTime == "" {
		return false, nil
	}

	hour, minute, err := dateutil.ParseClock(profile.DailyReminderTime)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	last := d.lastDailyDate
	d.mu.Unlock()

	// The window can span midnight, so check the reminder on both days it touches
	for _, day := range []time.Time{from.In(d.loc), to.Add(-time.Nanosecond).In(d.loc)} {
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, d.loc)
		date := dateutil.ISODate(day)
		if date == last || at.Before(from) || !at.Before(to) {
			continue
		}

		if err := d.notifier.Notify(d.ctx, Notification{Kind: KindDaily, Title: DailyReminderTitle, At: at}); err != nil {
			return false, fmt.Errorf("failed to deliver daily reminder: %w", err)
		}

		d.mu.Lock()
		d.lastDailyDate = date
		d.mu.Unlock()
		return true, nil
	}
	return false, nil
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":  d.cron != nil && d.ctx.Err() == nil,
		"schedule": d.schedule,
		"timezone": d.loc.String(),
	}
	if !d.lastScan.IsZero() {
		status["last_scan"] = d.lastScan.Format(time.RFC3339)
	}
	if d.lastDailyDate != "" {
		status["last_daily_reminder"] = d.lastDailyDate
	}
	if sched, err := cron.ParseStandard(d.schedule); err == nil {
		status["next_scan"] = sched.Next(d.now().In(d.loc)).Format(time.RFC3339)
	}
	return status
}
