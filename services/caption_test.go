package services

import (
	"testing"

	"ContentCalendarAPI/models"
)

func TestBuildCaption(t *testing.T) {
	tests := []struct {
		name string
		post models.Post
		want string
	}{
		{
			name: "title body and hashtags",
			post: models.Post{
				Title:    "Launch",
				Content:  "We shipped it",
				Hashtags: []string{"launch", "tech"},
			},
			want: "Launch\n\nWe shipped it\n\n#launch #tech",
		},
		{
			name: "all sections",
			post: models.Post{
				Title:    "Behind the scenes",
				Content:  "A look at our studio",
				Hashtags: []string{"bts"},
				Mentions: []string{"studio_team", "partner"},
			},
			want: "Behind the scenes\n\nA look at our studio\n\n#bts\n\n@studio_team @partner",
		},
		{
			name: "title only",
			post: models.Post{Title: "Launch"},
			want: "Launch",
		},
		{
			name: "body only",
			post: models.Post{Content: "We shipped it"},
			want: "We shipped it",
		},
		{
			name: "mentions without hashtags",
			post: models.Post{
				Title:    "Thanks",
				Content:  "Great collab",
				Mentions: []string{"friend"},
			},
			want: "Thanks\n\nGreat collab\n\n@friend",
		},
		{
			name: "empty post",
			post: models.Post{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCaption(&tt.post)
			if got != tt.want {
				t.Errorf("BuildCaption() = %q, want %q", got, tt.want)
			}
		})
	}
}
