package app

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"chatsync/internal/app/adapters/history"
	router "chatsync/internal/app/adapters/http"
	"chatsync/internal/app/adapters/irc"
	"chatsync/internal/app/adapters/metrics"
	"chatsync/internal/app/adapters/pipeline"
	"chatsync/internal/app/adapters/pubsub"
	chatrouter "chatsync/internal/app/adapters/router"
	"chatsync/internal/app/domain/session"
	"chatsync/internal/app/infrastructure/config"
	"chatsync/pkg/logger"
)

const configPath = "config.json"

func New() error {
	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: http.DefaultTransport,
	}
	log := logger.New()

	manager, err := config.New(configPath)
	if err != nil {
		log.Fatal("Error loading config", err)
	}

	cfg := manager.Get()
	log.SetLogLevel(cfg.App.LogLevel)
	gin.SetMode(cfg.App.GinMode)

	if _, err := os.Stat("cache"); os.IsNotExist(err) {
		if err := os.Mkdir("cache", 0700); err != nil {
			log.Error("Error creating cache directory", err)
			return err
		}
	} else if err != nil {
		log.Error("Error stat cache directory", err)
		return err
	}

	reg := session.NewRegistry(cfg.App.Scrollback)
	pipe := pipeline.New(manager)

	read := irc.New(logger.NewPrefixedLogger(log, "irc-read"))
	write := irc.New(logger.NewPrefixedLogger(log, "irc-write"))
	ps := pubsub.New(logger.NewPrefixedLogger(log, "pubsub"), cfg, client)

	chat := chatrouter.New(log, manager, reg, read, write, ps, pipe)
	chat.ConnectAndJoin(cfg.App.Channels)

	hist := history.New(log, reg, history.NewAPI(client), pipe)

	var wg sync.WaitGroup
	for _, channel := range cfg.App.Channels {
		wg.Add(1)
		go func() {
			defer wg.Done()

			hist.LoadRecent(channel, true)
			hist.LoadChatters(channel)
			metrics.ConnectionState.WithLabelValues(channel).Set(0)
			metrics.MessagesPerChannel.WithLabelValues(channel).Add(0)
		}()
	}
	wg.Wait()

	return router.NewRouter(log, manager, reg).Run()
}
