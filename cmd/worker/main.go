package main

import (
	"os"
	"os/signal"
	"syscall"

	"certlife-backend/internal/certificates"
	"certlife-backend/internal/config"
	"certlife-backend/internal/documents"
	"certlife-backend/internal/infrastructure/database"
	"certlife-backend/internal/jobs"
	"certlife-backend/internal/notifications"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database open")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis url")
	}
	rdb := redis.NewClient(opts)
	queue := &jobs.RedisQueue{Client: rdb, Key: cfg.QueueKey}

	codec := &certificates.TokenCodec{Secret: []byte(cfg.TokenSecret)}

	var email notifications.EmailSender
	if cfg.BrevoAPIKey != "" {
		email = &notifications.BrevoClient{
			APIKey:     cfg.BrevoAPIKey,
			MailFrom:   cfg.MailFrom,
			SenderName: cfg.MailSender,
		}
	}

	dispatcher := &notifications.Dispatcher{
		DB:    db,
		Email: email,
		SMS: []notifications.SMSSender{
			&notifications.TwilioSender{
				AccountSID: cfg.TwilioAccountSID,
				AuthToken:  cfg.TwilioAuthToken,
				FromNumber: cfg.TwilioFromNumber,
			},
			&notifications.GatewaySender{
				URL:   cfg.SMSGatewayURL,
				Token: cfg.SMSGatewayToken,
			},
		},
		SMSEnabled:    cfg.SMSEnabled,
		Codec:         codec,
		VerifyBaseURL: cfg.VerifyBaseURL,
		OnAttempt:     notifications.AuditRecorder(db),
	}

	service := &jobs.Service{
		DB:            db,
		Queue:         queue,
		Codec:         codec,
		Storage:       &documents.DiskStorage{Dir: cfg.DocumentDir},
		VerifyBaseURL: cfg.VerifyBaseURL,
	}

	worker := jobs.NewWorker(queue)
	worker.MaxAttempts = cfg.WorkerMaxAttempts
	jobs.RegisterHandlers(worker, service, dispatcher)
	worker.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	worker.Stop()
}
