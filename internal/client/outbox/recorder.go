// Package outbox records pending local mutations alongside entity writes.
package outbox

import (
	"errors"
	"fmt"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// Coalesce merges an incoming change into a pending create record. The
// result stays a create: payload fields are overlaid and the timestamp is
// bumped, so a create-then-edit sequence collapses into a single create
// carrying the final field values. Pure function, independent of the store.
func Coalesce(existing, incoming models.Change) models.Change {
	merged := existing

	payload := make(models.Doc, len(existing.Payload)+len(incoming.Payload))
	for k, v := range existing.Payload {
		payload[k] = v
	}
	for k, v := range incoming.Payload {
		payload[k] = v
	}

	merged.Payload = payload
	merged.TS = incoming.TS

	return merged
}

// Record logs one logical change into the outbox. It must run inside the
// same transaction as the entity write it accompanies.
//
// If an uncommitted create for the same entity is still pending, the change
// is folded into it instead of appending a new row. A delete arriving while
// the create is still pending removes the create outright: the entity never
// existed remotely, so nothing needs to be replayed.
func Record(tx storage.Tx, ch models.Change) error {
	pending, err := tx.FindPendingCreate(ch.Entity, ch.EntityID)
	if err != nil {
		if !errors.Is(err, storage.ErrChangeNotFound) {
			return fmt.Errorf("failed to look up pending create: %w", err)
		}

		if err := tx.AppendChange(&ch); err != nil {
			return fmt.Errorf("failed to append change: %w", err)
		}
		return nil
	}

	if ch.Op == models.OpDelete {
		if err := tx.DeleteChange(pending.ID); err != nil {
			return fmt.Errorf("failed to drop pending create: %w", err)
		}
		return nil
	}

	merged := Coalesce(*pending, ch)
	if err := tx.UpdateChange(&merged); err != nil {
		return fmt.Errorf("failed to coalesce change: %w", err)
	}

	return nil
}
