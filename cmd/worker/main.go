package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
	"github.com/cybersturmer/pmdragon-core-api/internal/logger"
	"github.com/cybersturmer/pmdragon-core-api/internal/mailer"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
	"github.com/cybersturmer/pmdragon-core-api/internal/mq"
)

// The worker consumes the email jobs the API publishes and delivers
// them over SMTP: registration, invitation and forgot-password keys
// plus mention notifications.
func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mail := mailer.New(cfg, logger.Named(log, "mailer"))

	routingKeys := []string{
		mq.KeyEmailRegistration,
		mq.KeyEmailInvitation,
		mq.KeyEmailForgot,
		mq.KeyEmailMention,
	}
	consumer, err := mq.NewConsumer(cfg.AMQPURL, "pmdragon.emails", routingKeys, logger.Named(log, "consumer"))
	if err != nil {
		log.Fatal().Err(err).Msg("mq connect failed")
	}
	defer consumer.Close()

	consumer.SetHandler(func(ctx context.Context, routingKey string, data json.RawMessage) error {
		var job mq.EmailJob
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}

		var sendErr error
		switch routingKey {
		case mq.KeyEmailRegistration:
			sendErr = mail.SendRegistrationKey(job.Email, job.Key)
		case mq.KeyEmailInvitation:
			sendErr = mail.SendInvitationKey(job.Email, job.Workspace, job.Key)
		case mq.KeyEmailForgot:
			sendErr = mail.SendForgotPasswordKey(job.Email, job.Key)
		case mq.KeyEmailMention:
			sendErr = mail.SendMentionNotification(job.Email, job.Author, job.Message, job.IssueID)
		default:
			log.Warn().Str("routing_key", routingKey).Msg("unknown routing key ignored")
			return nil
		}

		if sendErr != nil {
			metrics.EmailsProcessed.WithLabelValues("failed").Inc()
			return sendErr
		}
		metrics.EmailsProcessed.WithLabelValues("success").Inc()
		return nil
	})

	go func() {
		if err := consumer.StartConsuming(ctx); err != nil {
			log.Error().Err(err).Msg("consumer stopped")
			cancel()
		}
	}()
	log.Info().Msg("worker consuming email jobs")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case <-ctx.Done():
	}
}
