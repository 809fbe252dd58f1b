// calendarctl консольный клиент календаря бронирования: загружает месяц,
// выбирает день и время и при необходимости создаёт бронирование
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m04kA/SMC-BookingCalendar/internal/calendar"
	"github.com/m04kA/SMC-BookingCalendar/internal/config"
	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/businessservice"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
	"github.com/m04kA/SMC-BookingCalendar/internal/service/availability"
	"github.com/m04kA/SMC-BookingCalendar/pkg/logger"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

type flags struct {
	configPath string
	apiURL     string
	userID     int64
	businessID int64
	serviceID  int64
	employeeID int64
	month      string
	date       string
	slot       string
	notes      string
	book       bool
	watch      string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "config.toml", "path to config file")
	flag.StringVar(&f.apiURL, "api", "http://localhost:8080/api/v1", "booking calendar API base URL")
	flag.Int64Var(&f.userID, "user", 0, "client user id")
	flag.Int64Var(&f.businessID, "business", 0, "business id")
	flag.Int64Var(&f.serviceID, "service", 0, "service id")
	flag.Int64Var(&f.employeeID, "employee", 0, "employee id (0 - any)")
	flag.StringVar(&f.month, "month", "", "month YYYY-MM (default: current)")
	flag.StringVar(&f.date, "date", "", "day YYYY-MM-DD to open")
	flag.StringVar(&f.slot, "time", "", "slot HH:MM to select")
	flag.StringVar(&f.notes, "notes", "", "booking notes")
	flag.BoolVar(&f.book, "book", false, "submit the booking for the selected slot")
	flag.StringVar(&f.watch, "watch", "", "keep the month fresh on a cron schedule, e.g. \"@every 30s\"")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if f.businessID <= 0 || f.serviceID <= 0 {
		log.Fatal("-business and -service are required")
	}

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Invalid booking.timezone %q: %v", cfg.Booking.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetchTimeout := time.Duration(cfg.BusinessService.Timeout) * time.Second

	// Услуга определяет длительность и назначенных сотрудников
	businessClient := businessservice.NewClient(cfg.BusinessService.URL, fetchTimeout, log)
	service, err := businessClient.GetService(ctx, f.businessID, f.serviceID)
	if err != nil {
		log.Fatal("Failed to load service %d: %v", f.serviceID, err)
	}

	api := calendarapi.NewClient(f.apiURL, fetchTimeout, location, log)

	store, err := calendar.NewStore(
		calendar.ScopeFromService(service.ToDomain()),
		availability.NewGenerator(log),
		log,
		calendar.WithLocation(location),
		calendar.WithFetchTimeout(fetchTimeout),
		calendar.WithGranularity(cfg.Booking.GranularityMinutes),
		calendar.WithMinNotice(cfg.Booking.MinNoticeMinutes),
	)
	if err != nil {
		log.Fatal("Failed to create calendar: %v", err)
	}

	machine := calendar.NewStateMachine(store, api, log)
	controller := calendar.NewBookingController(
		store,
		machine,
		api,
		calendar.StaticSession{ID: f.userID, UserRole: domain.RoleClient},
		calendar.NewLogNotifier(log),
		log,
	)

	unsubscribe := store.Subscribe(func(v calendar.View) {
		log.Info("calendar: v%d phase=%s", v.Version, v.Phase)
	})
	defer unsubscribe()

	if err := run(ctx, f, location, machine, controller, store); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	if f.watch == "" {
		return
	}

	refresher := calendar.NewRefresher(machine, fetchTimeout, log)
	if err := refresher.Start(f.watch); err != nil {
		log.Fatal("%v", err)
	}
	<-ctx.Done()
	refresher.Stop()
}

func run(
	ctx context.Context,
	f flags,
	location *time.Location,
	machine *calendar.StateMachine,
	controller *calendar.BookingController,
	store *calendar.Store,
) error {
	if f.employeeID > 0 {
		employeeID := f.employeeID
		if err := machine.SelectEmployee(ctx, &employeeID); err != nil {
			return fmt.Errorf("select employee: %w", err)
		}
	}

	year, month := time.Now().In(location).Year(), time.Now().In(location).Month()
	if f.month != "" {
		t, err := time.ParseInLocation("2006-01", f.month, location)
		if err != nil {
			return fmt.Errorf("invalid -month %q: %w", f.month, err)
		}
		year, month = t.Year(), t.Month()
	}

	if err := machine.SelectMonth(ctx, year, month); err != nil {
		return fmt.Errorf("select month: %w", err)
	}
	printMonth(store.View())

	if f.date == "" {
		return nil
	}

	date, err := time.ParseInLocation(domain.DateFormat, f.date, location)
	if err != nil {
		return fmt.Errorf("invalid -date %q: %w", f.date, err)
	}
	if err := machine.SelectDay(ctx, date); err != nil {
		return fmt.Errorf("select day: %w", err)
	}
	printSlots(store.View())

	if f.slot == "" {
		return nil
	}

	slot, err := types.NewTimeStringFromString(f.slot)
	if err != nil {
		return fmt.Errorf("invalid -time %q: %w", f.slot, err)
	}
	if err := machine.SelectTime(slot); err != nil {
		return fmt.Errorf("select time: %w", err)
	}

	if !f.book {
		fmt.Printf("selected %s %s (use -book to submit)\n", f.date, slot)
		return nil
	}

	var notes *string
	if f.notes != "" {
		notes = &f.notes
	}

	draft, err := controller.Draft(notes)
	if err != nil {
		return fmt.Errorf("draft: %w", err)
	}

	booking, err := controller.Submit(ctx, draft)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	interval := booking.Interval()
	fmt.Printf("booked #%d %s %s-%s (%s)\n",
		booking.ID,
		interval.Date.Format(domain.DateFormat),
		interval.Start,
		interval.End,
		booking.Status,
	)
	printSlots(store.View())
	return nil
}

func printMonth(v calendar.View) {
	var open []string
	for _, day := range v.Days {
		if day.Available {
			open = append(open, day.Date.Format("02"))
		}
	}
	fmt.Printf("%d-%02d available days: %s\n", v.Year, int(v.Month), strings.Join(open, " "))
}

func printSlots(v calendar.View) {
	slots := make([]string, 0, len(v.Slots))
	for _, s := range v.Slots {
		slots = append(slots, s.String())
	}
	if len(slots) == 0 {
		fmt.Println("no free slots")
		return
	}
	fmt.Printf("free slots: %s\n", strings.Join(slots, " "))
}
