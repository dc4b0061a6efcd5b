// internal/service/publisher.go
package service

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/repository"
)

// Up to this many posts are flipped per tick; stragglers wait for the next one.
const publishBatchLimit = 10

type PublishedPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type PublishResult struct {
	Published int             `json:"published"`
	Posts     []PublishedPost `json:"posts"`
}

// Publisher flips due scheduled posts to published. Invocations may overlap;
// re-flipping an already-published post is a no-op, so no lock is taken.
type Publisher struct {
	Posts    repository.PostRepositoryInterface
	Activity repository.ActivityLogInterface
	Now      func() time.Time
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// PublishDuePosts publishes everything due at call time. A failure on one
// post never aborts the rest; that post stays scheduled and is retried on the
// next tick.
func (p *Publisher) PublishDuePosts() (*PublishResult, error) {
	now := p.now().UnixMilli()

	duePosts, err := p.Posts.DueScheduled(now, publishBatchLimit)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{Posts: []PublishedPost{}}
	if len(duePosts) == 0 {
		log.Info().Msg("no scheduled posts due for publishing")
		return result, nil
	}

	for _, post := range duePosts {
		if err := p.Posts.MarkPublished(post.ID, now); err != nil {
			log.Error().Err(err).Str("post_id", post.ID).Msg("failed to publish post")
			continue
		}
		result.Published++
		result.Posts = append(result.Posts, PublishedPost{ID: post.ID, Title: post.Title})
		observability.PostsPublished.Inc()
		log.Info().Str("post_id", post.ID).Str("title", post.Title).Msg("published scheduled post")
	}

	// One summary entry per batch, not one per post.
	titles := make([]string, 0, len(result.Posts))
	for _, post := range result.Posts {
		titles = append(titles, post.Title)
	}
	if err := p.Activity.Log("auto_publish", map[string]interface{}{
		"count": result.Published,
		"posts": titles,
	}); err != nil {
		log.Error().Err(err).Msg("failed to log publish activity")
	}

	return result, nil
}
