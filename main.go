package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"f1lapdata/pkg/calendar"
	"f1lapdata/pkg/collector"
	"f1lapdata/pkg/lapstore"
	"f1lapdata/pkg/livetiming"
	"f1lapdata/pkg/notification"
	"f1lapdata/pkg/pubsub"
	"f1lapdata/pkg/telemetry"
)

const (
	defaultCacheDir   = "./dataFile"
	defaultFetchDelay = 4 * time.Second
)

func main() {
	// get config from env
	apiDomain := os.Getenv("F1_API_DOMAIN")
	if apiDomain == "" {
		// Abort if something is wrong
		log.Panic("F1_API_DOMAIN is not set")
	}

	cacheDir := os.Getenv("F1_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}

	delay := defaultFetchDelay
	if v := os.Getenv("F1_FETCH_DELAY"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			log.Panic(err)
		}
		delay = time.Duration(seconds) * time.Second
	}

	cal := calendar.Default()
	if path := os.Getenv("F1_CALENDAR_FILE"); path != "" {
		var err error
		cal, err = calendar.Load(path)
		if err != nil {
			log.Panic(err)
		}
	}

	var chatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		var err error
		chatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Panic(err)
		}
	}

	// Create a new cancellable background context. Calling `cancel()` leads to the cancellation of the context
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nStopping...")
		cancel()
	}()

	if v := os.Getenv("F1_MOCK_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			log.Panic(err)
		}
		CreateMockAPI(port)
	}

	telemetryMgr, err := telemetry.NewManager(ctx, apiDomain, cacheDir)
	if err != nil {
		log.Panic(err)
	}
	defer telemetryMgr.Close()

	pubsubMgr := pubsub.NewPubSub[string]()
	collectorMgr := collector.NewManager(ctx, telemetryMgr, cal, delay, pubsubMgr)
	store := lapstore.NewStore(".")
	recorder := livetiming.NewRecorder(os.Getenv("F1_LIVETIMING_URL"), ".", pubsubMgr)

	exitChan := make(chan bool, 1)
	notificationMgr := notification.NewManager(ctx, os.Getenv("TELEGRAM_TOKEN"), chatID, pubsubMgr)
	go notificationMgr.Start(exitChan)

	menu := NewMenu(ctx, collectorMgr, store, recorder, pubsubMgr)
	if err := menu.Run(); err != nil {
		// unrecoverable interactive input propagates
		log.Panic(err)
	}

	exitChan <- true
}
