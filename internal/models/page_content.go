package models

import "time"

// PageContent represents a section of a page
type PageContent struct {
	ID        int64     `json:"id"`
	PageID    int64     `json:"pageId"`
	Heading   string    `json:"heading"`
	Content   string    `json:"content"`
	Media     *string   `json:"media"`
	ListOrder int       `json:"listOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageContentRequest represents the text fields of a create or update section request
type PageContentRequest struct {
	Heading string `json:"heading" example:"About us"`
	Content string `json:"content" example:"<p>Founded in 1998</p>"`
}

// PageContentResponse represents a page section in API responses
type PageContentResponse struct {
	PageContent
	MediaURLs *MediaURLs `json:"mediaUrls,omitempty"`
}

// MediaURLs holds the public URLs of an image artifact set
type MediaURLs struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Thumb    string `json:"thumb"`
}
