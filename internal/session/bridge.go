package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidBlob marks stored data that is not a JSON array of strings.
var ErrInvalidBlob = errors.New("stored drafts are not a list of strings")

const defaultSaveTimeout = 5 * time.Second

// Bridge moves the saved-draft list between the workflow and a BlobStore.
type Bridge struct {
	store   BlobStore
	key     string
	logger  *slog.Logger
	timeout time.Duration
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithKey overrides the storage key.
func WithKey(key string) BridgeOption {
	return func(b *Bridge) {
		b.key = key
	}
}

// WithBridgeLogger sets the logger used for hydrate and persist warnings.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithSaveTimeout bounds each Persist call.
func WithSaveTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// NewBridge wraps store.
func NewBridge(store BlobStore, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		store:   store,
		key:     DraftsKey,
		logger:  slog.Default(),
		timeout: defaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reads the draft list. The bool is false when nothing has been saved.
func (b *Bridge) Load(ctx context.Context) ([]string, bool, error) {
	blob, err := b.store.Get(ctx, b.key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	drafts, err := DecodeDrafts(blob)
	if err != nil {
		return nil, false, err
	}
	return drafts, true, nil
}

// Hydrate returns the stored drafts, or an empty list when they are absent
// or unreadable. It never fails.
func (b *Bridge) Hydrate(ctx context.Context) []string {
	drafts, found, err := b.Load(ctx)
	if err != nil {
		b.logger.Warn("Ignoring stored drafts",
			slog.String("key", b.key),
			slog.String("error", err.Error()))
		return []string{}
	}
	if !found {
		b.logger.Debug("No stored drafts", slog.String("key", b.key))
		return []string{}
	}
	b.logger.Debug("Hydrated drafts", slog.Int("count", len(drafts)))
	return drafts
}

// Save writes the full draft list.
func (b *Bridge) Save(ctx context.Context, drafts []string) error {
	if drafts == nil {
		drafts = []string{}
	}
	blob, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("failed to encode drafts: %w", err)
	}
	return b.store.Put(ctx, b.key, blob)
}

// Persist saves drafts with a bounded context and logs failures.
// Its signature matches the workflow drafts-changed hook.
func (b *Bridge) Persist(drafts []string) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.Save(ctx, drafts); err != nil {
		b.logger.Error("Failed to persist drafts",
			slog.String("key", b.key),
			slog.Int("count", len(drafts)),
			slog.String("error", err.Error()))
	}
}

// DecodeDrafts parses a stored blob, rejecting anything but an array of strings.
func DecodeDrafts(blob []byte) ([]string, error) {
	if !gjson.ValidBytes(blob) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidBlob)
	}
	root := gjson.ParseBytes(blob)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidBlob, root.Type)
	}

	items := root.Array()
	drafts := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: element %d is %s", ErrInvalidBlob, i, item.Type)
		}
		drafts = append(drafts, item.Str)
	}
	return drafts, nil
}
