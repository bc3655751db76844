package coordinator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/bus"
)

// publishJSON marshals v and publishes it to subject on b, wrapping
// any failure with enough context to find the offending subject in
// logs. b may be nil (no bus configured, e.g. a dry-run coordinator in
// tests); publishing is then a no-op.
func publishJSON(ctx context.Context, b bus.Bus, subject string, v any) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("coordinator: encode payload for %s: %w", subject, err)
	}
	if err := b.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("coordinator: publish %s: %w", subject, err)
	}
	return nil
}
