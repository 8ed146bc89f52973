package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// At most this many per-listing detail messages per scan; the rest collapse
// into a single "N more" message to keep the chat readable.
const detailMessageCap = 5

// Announcer shapes scan events into chat messages and paces them out to
// respect the channel's rate limits. Delivery is fire-and-forget: a send
// failure is logged and never fails the scan that produced it.
type Announcer struct {
	messenger ports.Messenger
	pause     time.Duration
	logger    *slog.Logger
}

// NewAnnouncer wires the messaging channel; pause is the delay inserted
// between successive messages of one scan.
func NewAnnouncer(messenger ports.Messenger, pause time.Duration, log *slog.Logger) *Announcer {
	return &Announcer{messenger: messenger, pause: pause, logger: log}
}

// ScanStarted announces that the topic's scan is beginning.
func (a *Announcer) ScanStarted(ctx context.Context, topic string) {
	a.send(ctx, fmt.Sprintf("🔍 Starting scan for %s...", topic))
}

// Results announces the scan outcome: a single "nothing new" note when the
// delta is empty, otherwise a summary, up to detailMessageCap per-listing
// messages, and an overflow note for the remainder.
func (a *Announcer) Results(ctx context.Context, topic, sourceURL string, total int, delta []domain.ListingRecord) {
	if len(delta) == 0 {
		a.send(ctx, fmt.Sprintf("✅ No new %s listings found.\nTotal listings: %d\n\n🔍 Search URL: %s",
			topic, total, sourceURL))
		return
	}

	a.send(ctx, fmt.Sprintf("🚗 Found %d new %s listings!\n\nTotal listings found: %d\n\n🔍 Search URL: %s",
		len(delta), topic, total, sourceURL))

	shown := delta
	if len(shown) > detailMessageCap {
		shown = shown[:detailMessageCap]
	}
	for _, rec := range shown {
		a.wait(ctx)
		a.send(ctx, formatListing(rec))
	}

	if rest := len(delta) - detailMessageCap; rest > 0 {
		a.wait(ctx)
		a.send(ctx, fmt.Sprintf("... and %d more listings! Check the full list on the site.", rest))
	}
}

// Failure announces a failed scan, naming the topic, its URL, and the cause.
func (a *Announcer) Failure(ctx context.Context, topic, sourceURL string, cause error) {
	a.send(ctx, fmt.Sprintf("❌ Scan failed for %s:\nError: %v\n\n🔍 Search URL: %s", topic, cause, sourceURL))
}

func formatListing(rec domain.ListingRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚗 *%s*\n", rec.Title)
	if rec.Price != "" {
		fmt.Fprintf(&b, "💰 Price: %s\n", rec.Price)
	}
	if rec.Year != "" && rec.Hand != "" {
		fmt.Fprintf(&b, "📅 %s • %s\n", rec.Year, rec.Hand)
	}
	if rec.Agency != "" {
		fmt.Fprintf(&b, "🏢 %s\n", rec.Agency)
	}
	fmt.Fprintf(&b, "🔗 [View Listing](%s)", rec.Link)
	return b.String()
}

func (a *Announcer) send(ctx context.Context, text string) {
	if a.messenger == nil {
		return
	}
	if err := a.messenger.SendText(ctx, text); err != nil && a.logger != nil {
		a.logger.Warn("message not delivered", "error", err)
	}
}

func (a *Announcer) wait(ctx context.Context) {
	if a.pause <= 0 {
		return
	}
	select {
	case <-time.After(a.pause):
	case <-ctx.Done():
	}
}
