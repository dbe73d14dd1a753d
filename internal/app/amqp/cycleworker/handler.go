package cycleworker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/cycle"
)

type CycleHandler struct {
	orchestrator *cycle.Orchestrator
	logger       *zap.SugaredLogger
}

type NewCycleHandlerParams struct {
	fx.In

	Orchestrator *cycle.Orchestrator
	Logger       *zap.SugaredLogger
}

func NewCycleHandler(p NewCycleHandlerParams) *CycleHandler {
	return &CycleHandler{orchestrator: p.Orchestrator, logger: p.Logger}
}

func (h *CycleHandler) Handle(ctx context.Context, msg CycleRequestedEnvelope) error {
	if strings.TrimSpace(msg.EventID) == "" {
		return fmt.Errorf("missing event_id")
	}
	if strings.TrimSpace(msg.EventName) != "" && msg.EventName != EventName {
		return fmt.Errorf("unexpected event_name: %s", msg.EventName)
	}

	summary, err := h.orchestrator.Run(ctx)
	if errors.Is(err, cycle.ErrCycleRunning) {
		// Another instance got there first; the work is being done.
		h.logger.Infow("cycleworker_skipped_already_running", "event_id", msg.EventID)
		return nil
	}
	if err != nil {
		h.logger.Errorw("cycleworker_run_failed",
			"event_id", msg.EventID,
			"err", err,
		)
		return err
	}

	h.logger.Infow("cycleworker_finished",
		"event_id", msg.EventID,
		"requested_by", msg.Data.RequestedBy,
		"portals", summary.Portals,
		"found", summary.Found,
		"new", summary.New,
		"updated", summary.Updated,
	)
	return nil
}
