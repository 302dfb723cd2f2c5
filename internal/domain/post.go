package domain

import "time"

type Post struct {
	ID          int64
	Slug        string
	Title       string
	Excerpt     *string
	Body        string
	Author      *string
	PublishedAt *time.Time
}

type PostsPage struct {
	Items []Post
}
