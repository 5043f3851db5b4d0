package dto

// UploadResponse describes a stored object in a private bucket.
type UploadResponse struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	OriginalName string `json:"originalName"`
}

// AvatarUploadResponse describes a stored object in the public avatar bucket.
type AvatarUploadResponse struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
}

// SignedUploadURLRequest asks for a direct-to-storage upload URL.
type SignedUploadURLRequest struct {
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType"`
}

// SignedUploadURLResponse grants time-limited write access to one object path.
type SignedUploadURLResponse struct {
	Path      string `json:"path"`
	SignedURL string `json:"signedUrl"`
	ExpiresIn int    `json:"expiresIn"`
	MimeType  string `json:"mimeType"`
}

// SignedReadURLResponse grants time-limited read access to one object path.
type SignedReadURLResponse struct {
	URL string `json:"url"`
}
