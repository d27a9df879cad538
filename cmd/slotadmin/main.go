// slotadmin is the back-office maintenance tool: slot and pricing
// upkeep plus Excel exports, against the same backend the booking
// workflow consumes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivebook/internal/backend"
	"drivebook/internal/config"
	"drivebook/internal/export"
	"drivebook/internal/logging"
	"drivebook/internal/metrics"
	"drivebook/internal/models"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		configPath     = flag.String("config", "config.yaml", "path to config file")
		listSlots      = flag.String("list-slots", "", "list slots for a date (YYYY-MM-DD)")
		createSlot     = flag.Bool("create-slot", false, "create a slot (requires -instructor, -date, -start, -end)")
		deleteSlot     = flag.Int64("delete-slot", 0, "delete the slot with this id")
		instructor     = flag.Int64("instructor", 0, "instructor id for -create-slot")
		date           = flag.String("date", "", "date for -create-slot (YYYY-MM-DD)")
		start          = flag.String("start", "", "start time for -create-slot (HH:MM:SS)")
		end            = flag.String("end", "", "end time for -create-slot (HH:MM:SS)")
		location       = flag.String("location", "", "optional location for -create-slot")
		exportSchedule = flag.Bool("export-schedule", false, "export the slot schedule to Excel")
		exportPricing  = flag.Bool("export-pricing", false, "export the pricing table to Excel")
		from           = flag.String("from", "", "schedule export start date, defaults to today")
		days           = flag.Int("days", 0, "schedule export range in days")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.New(cfg.Backend, logger)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer redisClient.Close()
		client.UseRedisCache(redisClient, time.Duration(models.PricingCacheTTL)*time.Second)
	}

	switch {
	case *listSlots != "":
		return printSlots(ctx, client, cfg.Backend.CourseID, *listSlots)

	case *createSlot:
		if *instructor == 0 || *date == "" || *start == "" || *end == "" {
			return fmt.Errorf("-create-slot requires -instructor, -date, -start and -end")
		}
		created, err := client.CreateSlot(ctx, &models.AppointmentSlot{
			InstructorID: *instructor,
			Date:         *date,
			StartTime:    *start,
			EndTime:      *end,
			Location:     *location,
		})
		if err != nil {
			return err
		}
		logger.Info().Int64("slot_id", created.ID).Str("date", created.Date).Msg("slot created")
		return nil

	case *deleteSlot > 0:
		if err := client.DeleteSlot(ctx, *deleteSlot); err != nil {
			return err
		}
		logger.Info().Int64("slot_id", *deleteSlot).Msg("slot deleted")
		return nil

	case *exportSchedule:
		startDate := time.Now()
		if *from != "" {
			startDate, err = time.Parse(models.DateLayout, *from)
			if err != nil {
				return fmt.Errorf("invalid -from date: %w", err)
			}
		}
		exporter := export.New(client, client, cfg.Backend.CourseID, cfg.Exports.Path, logger)
		path, err := exporter.ExportSchedule(ctx, startDate, *days)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case *exportPricing:
		exporter := export.New(client, client, cfg.Backend.CourseID, cfg.Exports.Path, logger)
		path, err := exporter.ExportPricing(ctx)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("no action given")
	}
}

func printSlots(ctx context.Context, client *backend.Client, courseID int64, date string) error {
	slots, err := client.ListSlotsForDate(ctx, date, courseID)
	if err != nil {
		return err
	}
	for i := range slots {
		s := &slots[i]
		state := "available"
		if !s.Bookable() {
			state = "unavailable"
		}
		fmt.Printf("%d\t%s %s-%s\t%s\t$%.2f\t%s\n",
			s.ID, s.Date, s.StartTime, s.EndTime, s.InstructorName, s.PricePerSlot, state)
	}
	return nil
}
