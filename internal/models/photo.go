package models

import "time"

// Photo represents an image attached to a resource gallery
type Photo struct {
	ID           int64     `json:"id"`
	ResourceType string    `json:"resourceType"`
	ResourceID   int64     `json:"resourceId"`
	Name         string    `json:"name"`
	Filename     string    `json:"filename"`
	IsCover      bool      `json:"isCover"`
	ListOrder    int       `json:"listOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PhotoResponse represents a photo in API responses
type PhotoResponse struct {
	Photo
	URLs MediaURLs `json:"urls"`
}

// UploadPhotosResponse reports the photos stored by one upload request
// Skipped lists the client file names that could not be read as images.
type UploadPhotosResponse struct {
	Photos  []PhotoResponse `json:"photos"`
	Skipped []string        `json:"skipped"`
}

// UpdatePhotoNameRequest represents a request to rename a photo
type UpdatePhotoNameRequest struct {
	Name string `json:"name" example:"Front entrance"`
}
