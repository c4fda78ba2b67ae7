package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"clauseguard/eventbus"
	"clauseguard/events"
	"clauseguard/internal/logger"
)

// The worker consumes analysis lifecycle events: it writes the audit trail
// for completed analyses, records failures, and reinjects delayed retries.
func main() {
	logger.InitFromEnv("LOG_LEVEL")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := eventbus.GetBrokers()
	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(brokers, t, 3); err != nil {
			logger.Log.Errorf("failed to ensure eventbus topics for %s: %v", t.Base(), err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	groupID := eventbus.GetGroupID() + "-worker"

	logger.Log.Info("starting analysis event worker...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := bus.Subscribe(ctx, groupID, eventbus.TopicAnalysisEvents, handleAnalysisEvent); err != nil && err != context.Canceled {
			logger.Log.Errorf("eventbus subscribe error for %s: %v", eventbus.TopicAnalysisEvents.Base(), err)
		}
	}()

	for _, t := range eventbus.AllTopics {
		topic := t
		go func() {
			topicGroupID := groupID + "-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, topicGroupID, topic); err != nil && err != context.Canceled {
				logger.Log.Errorf("eventbus retry reinjector error for %s: %v", topic.Base(), err)
			}
		}()
	}

	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down worker...")

	cancel()

	logger.Log.Info("worker stopped")
}

// handleAnalysisEvent dispatches on the event type carried in the envelope.
// Unknown types are logged and committed so they never clog the topic.
func handleAnalysisEvent(ctx context.Context, evt eventbus.Event) error {
	switch evt.Type {
	case events.TypeAnalysisCompleted:
		payload, err := eventbus.DecodeJSON[events.AnalysisCompleted](evt)
		if err != nil {
			return err
		}
		logger.InfoWithFields("analysis completed", logger.Fields{
			"analysis_id": payload.AnalysisID,
			"user_id":     payload.UserID,
			"title":       payload.Title,
			"risk_score":  payload.RiskScore,
		})
		return nil
	case events.TypeAnalysisFailed:
		payload, err := eventbus.DecodeJSON[events.AnalysisFailed](evt)
		if err != nil {
			return err
		}
		logger.WarnWithFields("analysis failed", logger.Fields{
			"user_id": payload.UserID,
			"reason":  payload.Reason,
		})
		return nil
	default:
		logger.Log.Warnf("unknown analysis event type %q (event %s), skipping", evt.Type, evt.ID)
		return nil
	}
}
