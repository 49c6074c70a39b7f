package shared

import "context"

// Upload is a file received from an admin form, such as a product image or
// a banner, held in memory until it is forwarded or stored.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// ImageStore persists uploads and returns the public URL of each stored file
type ImageStore interface {
	Store(ctx context.Context, folder string, u Upload) (string, error)
}

// ImageRemover is implemented by stores that can delete what they stored
type ImageRemover interface {
	Delete(ctx context.Context, publicURL string) error
}
