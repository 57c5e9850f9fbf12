package chat

import (
	"context"
	"math/rand"
	"time"

	"chatiefy-tui/api"
	"chatiefy-tui/models"
	"chatiefy-tui/session"

	"github.com/rs/zerolog"
)

// Poller fetches incremental chat state at a fixed interval while the
// session is connected and folds each response into the store. A failed
// fetch is logged and ignored; the next tick retries with the same
// cursor state.
type Poller struct {
	store    *session.Store
	api      *api.Client
	notify   Notifier
	interval time.Duration
	log      zerolog.Logger
}

// NewPoller creates a poller for the active conversation
func NewPoller(store *session.Store, client *api.Client, notify Notifier, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		store:    store,
		api:      client,
		notify:   notify,
		interval: interval,
		log:      log,
	}
}

// Run polls until the context is cancelled or the session leaves the
// connected state. The first poll fires immediately.
func (p *Poller) Run(ctx context.Context) {
	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.jittered()):
		}
		if p.store.Status() != models.StatusConnected {
			return
		}
		p.PollOnce(ctx)
	}
}

// jittered spreads ticks by up to a tenth of the interval so that many
// clients started together do not poll in lockstep.
func (p *Poller) jittered() time.Duration {
	tenth := int64(p.interval / 10)
	if tenth <= 0 {
		return p.interval
	}
	return p.interval + time.Duration(rand.Int63n(tenth))
}

// PollOnce performs a single incremental fetch and merges the result.
// Within one tick the cursor is replaced first, then messages are
// merged, then partner changes are applied.
func (p *Poller) PollOnce(ctx context.Context) {
	if p.store.Status() != models.StatusConnected {
		return
	}
	id := p.store.Identity()
	partnerName, partnerID, _ := p.store.Partner()

	resp, err := p.api.Poll(ctx, id.AuthToken, id.User.Auth, partnerID, p.store.Cursor())
	if err != nil {
		p.log.Warn().Err(err).Msg("poll failed")
		return
	}

	if resp.MessagesHash != "" {
		p.store.UpdatePollState(models.PollCursor{
			MessagesHash: resp.MessagesHash,
			NotifierHash: resp.NotifierHash,
			NewMessagesT: resp.NewMessagesT,
		})
	}

	if len(resp.Messages) > 0 {
		p.store.AddMessages(resp.Messages)
	}

	if resp.NotifierData != nil && resp.NotifierData.Partner != "" && partnerName == "" {
		p.store.SetPartner(resp.NotifierData.Partner, resp.NotifierData.Partner)
	}

	if resp.PartnerState == "offline" && partnerName != "" {
		p.log.Info().Str("partner", partnerName).Msg("partner went offline")
		p.notify.Info("Your chat partner has disconnected")
		p.store.SetStatus(models.StatusDisconnected)
	}
}
