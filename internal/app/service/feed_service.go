package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/domain"
)

const maxItemsPerFeed = 5

// itemID: guid si viene, si no el link.
func itemID(it *gofeed.Item) string {
	if g := strings.TrimSpace(it.GUID); g != "" {
		return g
	}
	return strings.TrimSpace(it.Link)
}

// FeedService publica los items nuevos de cada suscripción (RSS, Atom o JSON Feed).
type FeedService struct {
	feeds  FeedRepo
	poster Poster
	http   *http.Client
	log    zerolog.Logger
}

func NewFeedService(feeds FeedRepo, poster Poster, log zerolog.Logger) *FeedService {
	return &FeedService{
		feeds:  feeds,
		poster: poster,
		http:   &http.Client{Timeout: 15 * time.Second},
		log:    log.With().Str("component", "rss").Logger(),
	}
}

// Process recorre todas las suscripciones; un feed roto no frena a los demás.
func (s *FeedService) Process(ctx context.Context) error {
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listando feeds")
	}
	var firstErr error
	failed := 0
	for _, f := range feeds {
		if err := s.processOne(ctx, f); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			s.log.Warn().Err(err).Str("feed", f.ID).Str("url", f.URL).Msg("feed falló")
		}
	}
	if firstErr != nil {
		return errors.Wrapf(firstErr, "%d de %d feeds fallaron", failed, len(feeds))
	}
	return nil
}

func (s *FeedService) processOne(ctx context.Context, f domain.Feed) error {
	items, err := s.fetch(ctx, f.URL)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	fresh := newItems(items, f.LastItem)
	if f.LastItem == "" {
		// suscripción nueva: sólo marcamos dónde estamos
		fresh = nil
	}
	if len(fresh) > maxItemsPerFeed {
		fresh = fresh[:maxItemsPerFeed]
	}
	// del más viejo al más nuevo
	for i := len(fresh) - 1; i >= 0; i-- {
		it := fresh[i]
		msg := fmt.Sprintf("📰 **%s**\n%s", strings.TrimSpace(it.Title), strings.TrimSpace(it.Link))
		if err := s.poster.SendMessage(ctx, f.ChannelID, msg); err != nil {
			return errors.Wrapf(err, "publicando en %s", f.ChannelID)
		}
	}
	if newest := itemID(items[0]); newest != f.LastItem {
		return s.feeds.SetLastItem(ctx, f.ID, newest)
	}
	return nil
}

// newItems: los items antes de 'last' (los feeds vienen del más nuevo al más viejo).
func newItems(items []*gofeed.Item, last string) []*gofeed.Item {
	for i, it := range items {
		if itemID(it) == last {
			return items[:i]
		}
	}
	return items
}

func (s *FeedService) fetch(ctx context.Context, url string) ([]*gofeed.Item, error) {
	fp := gofeed.NewParser()
	fp.Client = s.http
	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "feed %s", url)
	}
	items := make([]*gofeed.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it != nil && itemID(it) != "" {
			items = append(items, it)
		}
	}
	return items, nil
}
