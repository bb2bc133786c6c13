package services

import (
	"strings"

	"ContentCalendarAPI/models"
)

// BuildCaption assembles a post's title, body, hashtags and mentions into
// the caption string sent to the platform. Sections are separated by a
// blank line; empty sections are omitted, so a post with no hashtags or
// mentions simply yields a shorter caption.
func BuildCaption(post *models.Post) string {
	sections := make([]string, 0, 4)

	if post.Title != "" {
		sections = append(sections, post.Title)
	}
	if post.Content != "" {
		sections = append(sections, post.Content)
	}

	if len(post.Hashtags) > 0 {
		tags := make([]string, len(post.Hashtags))
		for i, tag := range post.Hashtags {
			tags[i] = "#" + tag
		}
		sections = append(sections, strings.Join(tags, " "))
	}

	if len(post.Mentions) > 0 {
		mentions := make([]string, len(post.Mentions))
		for i, mention := range post.Mentions {
			mentions[i] = "@" + mention
		}
		sections = append(sections, strings.Join(mentions, " "))
	}

	return strings.Join(sections, "\n\n")
}
