// Command showtimes fetches movie schedules and prints, emails or
// stores them.
//
//	showtimes plaintext [flags]   print schedules to stdout
//	showtimes email [flags]       email schedules as text and calendar attachments
//	showtimes db [flags]          refresh the database, or print the deletion report
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/movie-times/internal/collector"
	"github.com/iliyamo/movie-times/internal/database"
	"github.com/iliyamo/movie-times/internal/fandango"
	"github.com/iliyamo/movie-times/internal/notify"
	"github.com/iliyamo/movie-times/internal/reconcile"
	"github.com/iliyamo/movie-times/internal/render"
	"github.com/iliyamo/movie-times/internal/repository"
	"github.com/iliyamo/movie-times/internal/schedule"
	"github.com/iliyamo/movie-times/internal/theater"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// commonFlags holds the options shared by every subcommand: which
// theaters and dates to cover and how to filter the result.
type commonFlags struct {
	theaters  stringList
	date      string
	file      string
	nameOnly  bool
	dateOnly  bool
	earliest  string
	latest    string
	movies    stringList
	notMovies stringList
	formats   stringList
	notFmts   stringList
}

func registerCommon(fs *flag.FlagSet, defaultDate string) *commonFlags {
	cf := &commonFlags{date: defaultDate}
	fs.Var(&cf.theaters, "theater", "theater name, repeatable (default: all known theaters)")
	fs.StringVar(&cf.date, "date", defaultDate, "date expression, e.g. \"today\", \"friday\", \"next movie week\", \"7/4-7/6\"")
	fs.StringVar(&cf.file, "file", "", "read schedule JSON from a file instead of fetching")
	fs.BoolVar(&cf.nameOnly, "name-only", false, "print movie names only")
	fs.BoolVar(&cf.dateOnly, "date-only", false, "print movie names with the dates they play")
	fs.StringVar(&cf.earliest, "earliest", "", "drop showings starting before this time, e.g. \"17:00\" or \"5:00pm\"")
	fs.StringVar(&cf.latest, "latest", "", "drop showings starting after this time")
	fs.Var(&cf.movies, "movie", "only include this movie, repeatable")
	fs.Var(&cf.notMovies, "not-movie", "exclude this movie, repeatable")
	fs.Var(&cf.formats, "format", "record this format preference, repeatable")
	fs.Var(&cf.notFmts, "not-format", "record this format exclusion, repeatable")
	return cf
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "plaintext":
		runPlaintext(os.Args[2:])
	case "email":
		runEmail(os.Args[2:])
	case "db":
		runDB(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: showtimes <plaintext|email|db> [flags]")
}

// loadTheaters resolves the theater registry, honoring THEATERS_FILE.
func loadTheaters() *theater.Registry {
	if path := os.Getenv("THEATERS_FILE"); path != "" {
		registry, err := theater.LoadRegistry(path)
		if err != nil {
			log.Fatalf("theaters: %v", err)
		}
		return registry
	}
	return theater.NewRegistry(theater.Defaults())
}

// selected returns the theaters named on the command line, or all of
// them when none were named.
func selected(registry *theater.Registry, names []string) []theater.Theater {
	if len(names) == 0 {
		names = registry.Names()
	}
	out := make([]theater.Theater, 0, len(names))
	for _, name := range names {
		th, ok := registry.Get(name)
		if !ok {
			log.Fatalf("unknown theater: %s", name)
		}
		out = append(out, th)
	}
	return out
}

// buildFilter translates the common flags into a showing filter, using
// the parser to read the clock bounds.
func buildFilter(cf *commonFlags, parser *schedule.Parser) schedule.Filter {
	var earliest, latest *schedule.ClockTime
	if cf.earliest != "" {
		t, err := parser.ParseTimeOfDay(cf.earliest)
		if err != nil {
			log.Fatalf("earliest: %v", err)
		}
		earliest = &t
	}
	if cf.latest != "" {
		t, err := parser.ParseTimeOfDay(cf.latest)
		if err != nil {
			log.Fatalf("latest: %v", err)
		}
		latest = &t
	}
	return schedule.NewFilter(earliest, latest, cf.movies, cf.notMovies, cf.formats, cf.notFmts)
}

// collect fetches and merges the schedule for one theater, honoring the
// --file override.
func collect(ctx context.Context, cf *commonFlags, th theater.Theater) (*schedule.FullSchedule, time.Time, time.Time) {
	loc, err := th.Location()
	if err != nil {
		log.Fatalf("%s: %v", th.Name, err)
	}
	parser := schedule.NewParser(loc)
	first, last, err := parser.ParseDateRange(cf.date)
	if err != nil {
		log.Fatalf("%s: %v", th.Name, err)
	}
	f := buildFilter(cf, parser)

	var days []*schedule.DaySchedule
	if cf.file != "" {
		days, err = fandango.LoadScheduleFile(cf.file, th, f)
	} else {
		days, err = fandango.NewClient().LoadSchedulesByDay(ctx, th, first, last, f)
	}
	if err != nil {
		log.Fatalf("%s: %v", th.Name, err)
	}
	fs, err := schedule.Merge(days)
	if err != nil {
		log.Fatalf("%s: %v", th.Name, err)
	}
	return fs, first, last
}

func runPlaintext(args []string) {
	fs := flag.NewFlagSet("plaintext", flag.ExitOnError)
	cf := registerCommon(fs, "movie week")
	_ = fs.Parse(args)

	ctx := context.Background()
	registry := loadTheaters()
	for _, th := range selected(registry, cf.theaters) {
		full, _, _ := collect(ctx, cf, th)
		fmt.Println(th.Name)
		fmt.Println(render.FullScheduleText(full, cf.nameOnly, cf.dateOnly))
	}
}

func runEmail(args []string) {
	fs := flag.NewFlagSet("email", flag.ExitOnError)
	cf := registerCommon(fs, "next movie week")
	sender := fs.String("from", os.Getenv("MAILTRAP_SENDER"), "sender address")
	senderName := fs.String("from-name", os.Getenv("MAILTRAP_SENDER_NAME"), "sender display name")
	receiver := fs.String("to", os.Getenv("MAILTRAP_RECEIVER"), "receiver address")
	_ = fs.Parse(args)

	token := os.Getenv("MAILTRAP_API_TOKEN")
	if token == "" {
		log.Fatal("MAILTRAP_API_TOKEN is not set")
	}

	ctx := context.Background()
	registry := loadTheaters()
	theaters := selected(registry, cf.theaters)

	names := make([]string, 0, len(theaters))
	schedules := make(map[string]*schedule.FullSchedule, len(theaters))
	var first, last time.Time
	for _, th := range theaters {
		full, f, l := collect(ctx, cf, th)
		names = append(names, th.Name)
		schedules[th.Name] = full
		first, last = f, l
	}

	mailer := notify.NewMailer(token, *sender, *senderName, *receiver)
	if err := mailer.EmailSchedules(ctx, names, schedules, first, last); err != nil {
		log.Fatalf("email: %v", err)
	}
	log.Printf("emailed schedules for %d theater(s) to %s", len(names), *receiver)
}

func runDB(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	cf := registerCommon(fs, "next movie week")
	report := fs.Bool("deletion-report", false, "print the deletion report instead of refreshing")
	reportDate := fs.String("report-date", "", "deletion report day as YYYY-MM-DD (default: today)")
	_ = fs.Parse(args)

	db, err := database.Open(
		requireEnv("DB_USER"), os.Getenv("DB_PASS"),
		requireEnv("DB_HOST"), requireEnv("DB_PORT"), requireEnv("DB_NAME"),
	)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx := context.Background()
	if err := database.InitSchema(ctx, db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	repo := repository.NewShowtimeRepo(db)
	engine := reconcile.New(repo)

	if *report {
		day := time.Now()
		if *reportDate != "" {
			day, err = time.ParseInLocation("2006-01-02", *reportDate, time.Local)
			if err != nil {
				log.Fatalf("report-date: %v", err)
			}
		}
		records, err := engine.DeletionReport(ctx, day)
		if err != nil {
			log.Fatalf("deletion report: %v", err)
		}
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			log.Fatalf("deletion report: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	col := collector.New(fandango.NewClient(), repo, engine, os.Getenv("RABBITMQ_URL"))
	registry := loadTheaters()
	for _, th := range selected(registry, cf.theaters) {
		loc, err := th.Location()
		if err != nil {
			log.Fatalf("%s: %v", th.Name, err)
		}
		first, last, err := schedule.NewParser(loc).ParseDateRange(cf.date)
		if err != nil {
			log.Fatalf("%s: %v", th.Name, err)
		}
		deleted, err := col.Update(ctx, th, first, last)
		if err != nil {
			log.Printf("update %s: %v", th.Name, err)
			continue
		}
		log.Printf("update %s: done, %d showtime(s) deleted", th.Name, len(deleted))
	}
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
