package employee

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const maxPhotoBytes = 8 << 20

// PhotoStore keeps employee reference photos. Fetch always returns a data URL
// so the face comparison service receives inline image data.
type PhotoStore interface {
	Upload(ctx context.Context, publicID string, file io.Reader) (string, error)
	Fetch(ctx context.Context, ref string) (string, error)
}

type CloudinaryPhotoStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	fetcher *HTTPPhotoFetcher
}

func NewCloudinaryPhotoStore(cloudName, apiKey, apiSecret, folder string, client *http.Client) (*CloudinaryPhotoStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryPhotoStore{
		cld:     cld,
		folder:  folder,
		fetcher: NewHTTPPhotoFetcher(client),
	}, nil
}

func (s *CloudinaryPhotoStore) Upload(ctx context.Context, publicID string, file io.Reader) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryPhotoStore) Fetch(ctx context.Context, ref string) (string, error) {
	return s.fetcher.Fetch(ctx, ref)
}

// InlinePhotoStore stores the photo itself as a data URL in photo_url. Used
// when no cloud storage is configured.
type InlinePhotoStore struct {
	fetcher *HTTPPhotoFetcher
}

func NewInlinePhotoStore(client *http.Client) *InlinePhotoStore {
	return &InlinePhotoStore{fetcher: NewHTTPPhotoFetcher(client)}
}

func (s *InlinePhotoStore) Upload(_ context.Context, _ string, file io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	return toDataURL(http.DetectContentType(data), data), nil
}

func (s *InlinePhotoStore) Fetch(ctx context.Context, ref string) (string, error) {
	return s.fetcher.Fetch(ctx, ref)
}

type HTTPPhotoFetcher struct {
	client *http.Client
}

func NewHTTPPhotoFetcher(client *http.Client) *HTTPPhotoFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPhotoFetcher{client: client}
}

// Fetch resolves ref to a data URL. Data URLs pass through untouched.
func (f *HTTPPhotoFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrNoReferencePhoto
	}
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create photo request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch reference photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reference photo returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read reference photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("reference photo exceeds %d bytes", maxPhotoBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return toDataURL(contentType, data), nil
}

func toDataURL(contentType string, data []byte) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
