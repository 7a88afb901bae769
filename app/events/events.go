package events

import "time"

const TypePostPublished = "post.published"

type PostPublishedPayload struct {
	PostID int    `json:"post_id"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
}

// PostPublished is emitted when a post first becomes visible on the site.
type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(postID int, slug, title string, at time.Time) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: at.UTC(),
		Payload: PostPublishedPayload{
			PostID: postID,
			Slug:   slug,
			Title:  title,
		},
	}
}
