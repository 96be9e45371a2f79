package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
)

// fetchWindow trails a week behind now so recently started events still
// count as busy.
const fetchWindow = 7 * 24 * time.Hour

// Orchestrator drives provider fetches and replaces a consultant's external
// events wholesale with the result.
type Orchestrator struct {
	store  *store.Store
	client *Client
	logger *slog.Logger

	// syntheticFallback masks provider failures with the deterministic demo
	// schedule. Disable it to surface fetch errors and keep the previous
	// sync untouched instead.
	syntheticFallback bool
}

func NewOrchestrator(st *store.Store, client *Client, logger *slog.Logger, syntheticFallback bool) *Orchestrator {
	return &Orchestrator{
		store:             st,
		client:            client,
		logger:            logger,
		syntheticFallback: syntheticFallback,
	}
}

// Sync refreshes the external events of the consultant linked to userID.
// With an access token it fetches live data; without one, or when a fetch
// fails and the synthetic fallback is enabled, it installs the deterministic
// demo schedule. The consultant's prior events are replaced atomically
// either way.
func (o *Orchestrator) Sync(ctx context.Context, userID, accessToken string) error {
	consultant, err := o.store.ResolveConsultantForUser(userID)
	if err != nil {
		return err
	}

	now := time.Now()
	loc := o.store.Location()

	var events []model.ExternalEvent
	if accessToken != "" {
		fetched, err := o.client.FetchBusyIntervals(ctx, accessToken, now.Add(-fetchWindow))
		if err != nil {
			if !o.syntheticFallback {
				return fmt.Errorf("sync consultant %s: %w", consultant.ID, err)
			}
			o.logger.Warn("provider fetch failed; using synthetic schedule",
				"consultant_id", consultant.ID, "err", err)
		}
		for _, b := range fetched {
			events = append(events, model.ExternalEvent{
				ID:           b.ID,
				ConsultantID: consultant.ID,
				Title:        b.Title,
				Start:        b.Start,
				End:          b.End,
			})
		}
	}
	if len(events) == 0 && o.syntheticFallback {
		events = SyntheticBusyBlocks(consultant.ID, now, loc)
	}

	if err := o.store.ReplaceEventsForConsultant(ctx, consultant.ID, events); err != nil {
		return err
	}
	if err := o.store.SetCalendarConnection(ctx, userID, true, now.UTC()); err != nil {
		return err
	}

	o.logger.Info("calendar synced",
		"user_id", userID,
		"consultant_id", consultant.ID,
		"events", len(events),
		"live", accessToken != "",
	)
	return nil
}

// Disconnect clears the user's connection flag and removes every external
// event of the linked consultant.
func (o *Orchestrator) Disconnect(ctx context.Context, userID string) error {
	consultant, err := o.store.ResolveConsultantForUser(userID)
	if err != nil {
		return err
	}
	if err := o.store.RemoveEventsForConsultant(ctx, consultant.ID); err != nil {
		return err
	}
	if err := o.store.SetCalendarConnection(ctx, userID, false, time.Time{}); err != nil {
		return err
	}
	o.logger.Info("calendar disconnected", "user_id", userID, "consultant_id", consultant.ID)
	return nil
}
