package chat

import (
	"context"
	"sync"
	"time"

	"chatiefy-tui/api"
	"chatiefy-tui/models"
	"chatiefy-tui/session"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Notifier receives user-visible notices from the driver and poller
type Notifier interface {
	Info(text string)
	Success(text string)
	Error(text string)
}

var errNoPartner = errors.New("no partner yet")

// Driver orchestrates the chat lifecycle: start-search, converse,
// disconnect, next. It owns the poll loop for the active conversation.
type Driver struct {
	store  *session.Store
	api    *api.Client
	notify Notifier
	log    zerolog.Logger

	// SearchInterval spaces the partner-wait attempts; SearchAttempts
	// caps them. NextDelay is the grace period between disconnecting and
	// searching again, giving the server time to finalize the old session.
	SearchInterval time.Duration
	SearchAttempts uint64
	PollInterval   time.Duration
	NextDelay      time.Duration

	mu       sync.Mutex
	stopPoll context.CancelFunc
}

// NewDriver creates a lifecycle driver with the default timings
func NewDriver(store *session.Store, client *api.Client, notify Notifier, log zerolog.Logger) *Driver {
	return &Driver{
		store:          store,
		api:            client,
		notify:         notify,
		log:            log,
		SearchInterval: 2 * time.Second,
		SearchAttempts: 30,
		PollInterval:   2 * time.Second,
		NextDelay:      500 * time.Millisecond,
	}
}

// Start requests a random match and waits for a partner to appear,
// polling with no cursor state at a fixed spacing until the attempt cap
// runs out. Any request failure drops back to idle.
func (d *Driver) Start(ctx context.Context) error {
	if st := d.store.Status(); st != models.StatusIdle && st != models.StatusDisconnected {
		return nil
	}
	id := d.store.Identity()
	if !id.Authenticated {
		return errors.New("not authenticated")
	}

	d.store.SetStatus(models.StatusSearching)
	d.log.Info().Msg("searching for a partner")

	resp, err := d.api.StartRandom(ctx, id.AuthToken, id.User.Auth)
	if err != nil {
		d.log.Warn().Err(err).Msg("start random failed")
		d.store.SetStatus(models.StatusIdle)
		d.notify.Error("Failed to start chat. Please try again.")
		return err
	}
	if st := resp.Random.Status; st != "searching" && st != "connected" {
		d.log.Warn().Str("status", st).Msg("unexpected match status")
		d.store.SetStatus(models.StatusIdle)
		d.notify.Error("Failed to start chat. Please try again.")
		return errors.Errorf("unexpected match status %q", st)
	}

	var partner string
	wait := func() error {
		pr, perr := d.api.Poll(ctx, id.AuthToken, id.User.Auth, "", models.PollCursor{})
		if perr != nil {
			return backoff.Permanent(perr)
		}
		if pr.NotifierData != nil && pr.NotifierData.Partner != "" {
			partner = pr.NotifierData.Partner
			return nil
		}
		return errNoPartner
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.SearchInterval), d.SearchAttempts-1),
		ctx,
	)
	if err := backoff.Retry(wait, policy); err != nil {
		d.store.SetStatus(models.StatusIdle)
		if errors.Is(err, errNoPartner) {
			d.notify.Error("No one available right now. Try again later.")
		} else {
			d.log.Warn().Err(err).Msg("partner wait failed")
			d.notify.Error("Failed to start chat. Please try again.")
		}
		return err
	}

	d.store.SetPartner(partner, partner)
	d.log.Info().Str("partner", partner).Msg("partner found")
	d.notify.Success("Connected with a stranger!")
	d.startPoller()
	return nil
}

// Send delivers a message and, on success, appends it locally without
// waiting for the server to echo it back.
func (d *Driver) Send(ctx context.Context, text string) error {
	id := d.store.Identity()
	_, partnerID, ok := d.store.Partner()
	if !ok {
		return errors.New("no active chat")
	}

	if _, err := d.api.Send(ctx, id.AuthToken, id.User.Auth, partnerID, text); err != nil {
		d.log.Warn().Err(err).Msg("send failed")
		d.notify.Error("Failed to send message")
		return err
	}

	d.store.AddMessages([]models.Message{{
		Sender: id.User.Username,
		Text:   text,
		Time:   time.Now().Unix(),
		Seen:   0,
		Random: 1,
	}})
	return nil
}

// Disconnect ends the conversation. The remote call is fire-and-forget:
// local chat state is reset whether or not it succeeds.
func (d *Driver) Disconnect(ctx context.Context) {
	id := d.store.Identity()
	_, partnerID, ok := d.store.Partner()

	d.StopPolling()

	if ok {
		if err := d.api.Disconnect(ctx, id.AuthToken, id.User.Auth, partnerID); err != nil {
			d.log.Warn().Err(err).Msg("disconnect failed")
		} else {
			d.notify.Info("Chat ended")
		}
	}
	d.store.ResetChat()
}

// Next disconnects, waits out the grace period and searches again
func (d *Driver) Next(ctx context.Context) error {
	d.Disconnect(ctx)
	select {
	case <-time.After(d.NextDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.Start(ctx)
}

// startPoller launches the poll loop for the active conversation,
// replacing any previous one.
func (d *Driver) startPoller() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopPoll != nil {
		d.stopPoll()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.stopPoll = cancel

	p := NewPoller(d.store, d.api, d.notify, d.PollInterval, d.log)
	go p.Run(ctx)
}

// StopPolling cancels the poll loop if one is running. In-flight
// requests are not aborted; a late response may still apply itself.
func (d *Driver) StopPolling() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopPoll != nil {
		d.stopPoll()
		d.stopPoll = nil
	}
}
