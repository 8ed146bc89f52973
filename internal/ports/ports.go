package ports

import (
	"context"
	"time"

	"ListingRadar/internal/domain"
)

// Fetcher retrieves the raw HTML document behind a topic's search URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Extractor turns a fetched document into listing records.
type Extractor interface {
	Extract(html string) ([]domain.ListingRecord, error)
}

// LedgerStore persists the full observed-listing history of one topic.
// Load returns (nil, nil) for a topic with no history yet; unreadable or
// unparsable history surfaces domain.ErrLedgerCorrupt.
type LedgerStore interface {
	Load(ctx context.Context, topic string) ([]domain.ListingRecord, error)
	Save(ctx context.Context, topic string, records []domain.ListingRecord) error
}

// ChangeSignal raises the change-pending marker consumed by external
// automation once a topic's history grew this run.
type ChangeSignal interface {
	Raise(ctx context.Context) error
}

// Messenger delivers one text message to the notification channel.
type Messenger interface {
	SendText(ctx context.Context, text string) error
}

// TopicSource supplies the current topic set. It is re-read every pass so
// edits made through the administration surface take effect between runs.
type TopicSource interface {
	Topics(ctx context.Context) ([]domain.TopicConfig, error)
}

// Scheduler controls when orchestration passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
