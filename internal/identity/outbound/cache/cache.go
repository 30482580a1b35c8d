package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

type Cache struct {
	client redis.Cmdable
	ins    instrument.Instrumentation
}

func NewCache(client redis.Cmdable, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func totpUsedKey(userID uuid.UUID, step uint64) string {
	return fmt.Sprintf("totp:used:%s:%d", userID, step)
}

// MarkTOTPUsed sets the replay key of userID and step. Only the first caller of
// a step gets true.
func (c *Cache) MarkTOTPUsed(ctx context.Context, userID uuid.UUID, step uint64, ttl time.Duration) (bool, error) {
	ctx, span := c.ins.Tracer("identity.outbound.cache").Start(ctx, "MarkTOTPUsed")
	defer span.End()

	ok, err := c.client.SetNX(ctx, totpUsedKey(userID, step), 1, ttl).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	return ok, nil
}
