package models

import (
	"strings"
	"time"
)

// ContentType тип публикации.
type ContentType string

const (
	ContentBlogPost ContentType = "BLOG_POST"
	ContentVideo    ContentType = "VIDEO"
	ContentImage    ContentType = "IMAGE"
)

// Valid проверяет тип публикации.
func (t ContentType) Valid() bool {
	switch t {
	case ContentBlogPost, ContentVideo, ContentImage:
		return true
	}
	return false
}

// AcceptsMIME проверяет, подходит ли загружаемый файл под тип публикации.
func (t ContentType) AcceptsMIME(mime string) bool {
	switch t {
	case ContentVideo:
		return strings.HasPrefix(mime, "video/")
	case ContentImage:
		return strings.HasPrefix(mime, "image/")
	default:
		return true
	}
}

// Content публикация, доступная подписчикам.
type Content struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Body        string      `json:"content,omitempty"` // текст или путь /uploads/<file>
	Type        ContentType `json:"type"`
	Thumbnail   *string     `json:"thumbnail,omitempty"`
	IsPublished bool        `json:"isPublished"`
	OwnerID     string      `json:"ownerId"`
	OwnerName   string      `json:"ownerName,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ContentPatch частичное обновление публикации, nil-поля не меняются.
type ContentPatch struct {
	Title       *string
	Description *string
	Body        *string
	IsPublished *bool
}
