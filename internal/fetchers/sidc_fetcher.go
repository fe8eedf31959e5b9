package fetchers

import (
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"aurorawatch/internal/models"
)

const (
	// BulletinWindow is how far back SIDC bulletins are kept.
	BulletinWindow = 72 * time.Hour
	// MaxBulletins caps the number of bulletins in a snapshot.
	MaxBulletins = 5
)

// parseBulletins decodes an RSS or Atom feed and keeps the newest items
// published within BulletinWindow of now.
func parseBulletins(parser *gofeed.Parser, body []byte, now time.Time) ([]models.Bulletin, *FetchError) {
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, newError(models.SourceBulletins, KindParse, err)
	}

	cutoff := now.Add(-BulletinWindow)
	bulletins := make([]models.Bulletin, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil || published.Before(cutoff) {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		bulletins = append(bulletins, models.Bulletin{
			Title:     title,
			Link:      item.Link,
			Published: published.UTC(),
		})
	}

	sort.SliceStable(bulletins, func(i, j int) bool {
		return bulletins[i].Published.After(bulletins[j].Published)
	})
	if len(bulletins) > MaxBulletins {
		bulletins = bulletins[:MaxBulletins]
	}
	return bulletins, nil
}
