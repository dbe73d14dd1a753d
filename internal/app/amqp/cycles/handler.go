package cycles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/app/amqp/cycleworker"
	"tender-scout/internal/cycle"
	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
)

// TriggerHandler starts a crawl cycle on demand. With rabbitmq configured it
// publishes a cycle-requested event for a worker; without it the cycle runs
// in this process in the background.
type TriggerHandler struct {
	cfg          *config.Config
	channel      *amqp.Channel
	orchestrator *cycle.Orchestrator
	logger       *zap.SugaredLogger

	publish func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type NewTriggerHandlerParams struct {
	fx.In

	Cfg          *config.Config
	Channel      *amqp.Channel `optional:"true"`
	Orchestrator *cycle.Orchestrator
	Logger       *zap.SugaredLogger
}

func NewTriggerHandler(p NewTriggerHandlerParams) *TriggerHandler {
	var publishFn func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	if p.Channel != nil {
		publishFn = p.Channel.PublishWithContext
	}

	return &TriggerHandler{
		cfg:          p.Cfg,
		channel:      p.Channel,
		orchestrator: p.Orchestrator,
		logger:       p.Logger,
		publish:      publishFn,
	}
}

func (h *TriggerHandler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/cycles", h.Handle)
}

type triggerResponse struct {
	OK      bool   `json:"ok"`
	EventID string `json:"event_id"`
	Mode    string `json:"mode"`
}

func (h *TriggerHandler) Handle(w http.ResponseWriter, r *http.Request) {
	eventID := uuid.NewString()

	if h.cfg.RabbitMQ.URL == "" || h.publish == nil {
		go func() {
			if _, err := h.orchestrator.Run(context.Background()); err != nil {
				if errors.Is(err, cycle.ErrCycleRunning) {
					h.logger.Infow("cycle_trigger_skipped_already_running", "event_id", eventID)
					return
				}
				h.logger.Errorw("cycle_trigger_run_failed", "event_id", eventID, "err", err)
			}
		}()
		render.ChiJSON(w, r, http.StatusAccepted, triggerResponse{OK: true, EventID: eventID, Mode: "inline"})
		return
	}

	ex := h.cfg.RabbitMQ.Exchange
	if ex == "" {
		ex = "events"
	}
	routingKey := h.cfg.RabbitMQ.RoutingKey
	if routingKey == "" {
		routingKey = "tender.cycle.requested.v1"
	}

	now := time.Now().UTC()
	env := cycleworker.CycleRequestedEnvelope{
		EventName: cycleworker.EventName,
		EventID:   eventID,
		TS:        now,
		Data: cycleworker.CycleRequestedEventData{
			RequestedBy: "api",
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		h.logger.Errorw("cycle_trigger_marshal_failed", "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to encode message"))
		return
	}

	if h.channel != nil && h.cfg.RabbitMQ.DeclareTopology {
		if err := h.channel.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			h.logger.Errorw("cycle_trigger_exchange_declare_failed", "exchange", ex, "err", err)
			render.ChiErr(w, r, http.StatusBadGateway, errors.New("rabbitmq exchange declare failed"))
			return
		}
	}

	if err := h.publish(r.Context(), ex, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    now,
		MessageId:    eventID,
		Body:         body,
	}); err != nil {
		h.logger.Errorw(
			"cycle_trigger_publish_failed",
			"exchange", ex,
			"routing_key", routingKey,
			"event_id", eventID,
			"err", err,
		)
		render.ChiErr(w, r, http.StatusBadGateway, errors.New("failed to publish message"))
		return
	}

	h.logger.Infow("cycle_trigger_published",
		"exchange", ex,
		"routing_key", routingKey,
		"event_id", eventID,
	)
	render.ChiJSON(w, r, http.StatusAccepted, triggerResponse{OK: true, EventID: eventID, Mode: "queued"})
}

var _ router.Handler = (*TriggerHandler)(nil)
