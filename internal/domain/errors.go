package domain

import "errors"

// Terminal per-topic scan failures. Each aborts only the current topic's run;
// the next scheduled pass is the retry mechanism.
var (
	// ErrCaptchaDetected means the source served its bot challenge instead
	// of search results.
	ErrCaptchaDetected = errors.New("bot challenge served instead of listings")

	// ErrNoListings means the document parsed but no plausible listing
	// candidates survived any extraction strategy.
	ErrNoListings = errors.New("no listing candidates found")

	// ErrLedgerCorrupt means persisted topic history exists but cannot be
	// read back. It is never downgraded to "empty history": doing so would
	// re-announce every listing ever seen.
	ErrLedgerCorrupt = errors.New("topic history exists but cannot be parsed")
)
