package model

import "errors"

const (
	MaxAvatarSizeBytes = 2 * 1024 * 1024 // 2MB
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year
	PresignExpirySec   = 300                        // 5 minutes
)

// Supported image content types for avatar uploads
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeWebP: {},
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Media errors
var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidImageType   = errors.New("invalid image type")
	ErrAvatarURLForbidden = errors.New("avatar url not allowed")
)

// UploadResult is the uploaded object location. URL is the public-facing
// URL; Key is the object key inside the bucket (kept for later deletes).
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignAvatarRequest asks for a presigned PUT URL so the client can upload
// the avatar bytes directly to object storage.
type PresignAvatarRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// PresignAvatarResponse carries the upload credentials. The client PUTs the
// file to UploadURL with the returned headers, then saves AvatarURL through
// PATCH /api/user/avatar.
type PresignAvatarResponse struct {
	UploadURL string            `json:"uploadUrl"`
	AvatarURL string            `json:"avatarUrl"`
	ObjectKey string            `json:"objectKey"`
	ExpiresIn int               `json:"expiresIn"`
	Headers   map[string]string `json:"headers"`
}

// UpdateAvatarRequest is the request body for PATCH /api/user/avatar.
type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}
