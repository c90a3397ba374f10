package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	AuthorKeyPrefix = "author:%s"
	PostKeyPrefix   = "post:%s"
)

const (
	AuthorTTL = 5 * time.Minute
	PostTTL   = 30 * time.Second
)

func AuthorKey(userID string) string {
	return fmt.Sprintf(AuthorKeyPrefix, userID)
}

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateAuthor(ctx context.Context, userID string) {
	Invalidate(ctx, AuthorKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
}
