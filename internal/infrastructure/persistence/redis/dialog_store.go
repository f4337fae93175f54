package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DIALOG STORE
// Multi-step flows (adding a task, creating a reward, whitelisting a user)
// keep their per-user step and collected answers here, so a restart of the
// bot does not lose a dialog in progress.
// ══════════════════════════════════════════════════════════════════════════════

// ErrNoDialog is returned when the user has no dialog in progress.
var ErrNoDialog = errors.New("redis: no dialog in progress")

// Dialog is the persisted state of one user's multi-step flow.
type Dialog struct {
	// Step names the current step, e.g. "add_task:title".
	Step string `json:"step"`

	// Data holds the answers collected so far, keyed by field name.
	Data map[string]string `json:"data"`
}

// Value returns a collected field, or "" if absent.
func (d *Dialog) Value(field string) string {
	if d.Data == nil {
		return ""
	}
	return d.Data[field]
}

// Set stores a collected field.
func (d *Dialog) Set(field, value string) {
	if d.Data == nil {
		d.Data = make(map[string]string)
	}
	d.Data[field] = value
}

// DialogStore persists dialog state in Redis with a sliding TTL.
type DialogStore struct {
	client *Client
}

// NewDialogStore creates the store.
func NewDialogStore(client *Client) *DialogStore {
	return &DialogStore{client: client}
}

func dialogKey(id shared.TelegramID) string {
	return fmt.Sprintf("%s%d", PrefixDialog, int64(id))
}

// Get loads the user's dialog. Returns ErrNoDialog when there is none.
func (s *DialogStore) Get(ctx context.Context, id shared.TelegramID) (*Dialog, error) {
	raw, err := s.client.rdb.Get(ctx, dialogKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDialog
		}
		return nil, fmt.Errorf("redis: get dialog: %w", err)
	}

	var d Dialog
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &d, nil
}

// Put saves the user's dialog and refreshes its TTL.
func (s *DialogStore) Put(ctx context.Context, id shared.TelegramID, d *Dialog) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := s.client.rdb.Set(ctx, dialogKey(id), raw, TTLDialog).Err(); err != nil {
		return fmt.Errorf("redis: put dialog: %w", err)
	}
	return nil
}

// Clear ends the user's dialog. Clearing a missing dialog is not an error.
func (s *DialogStore) Clear(ctx context.Context, id shared.TelegramID) error {
	if err := s.client.rdb.Del(ctx, dialogKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: clear dialog: %w", err)
	}
	return nil
}
