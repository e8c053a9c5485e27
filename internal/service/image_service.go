package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math/rand"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"rumorplaza/internal/config"
	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"
	"rumorplaza/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MaxImageWidth               = 1200
	MaxImageHeight              = 1200
	WebPQuality                 = 80
	DefaultImageMaxUploadSizeMB = 5
	MaxUploadFiles              = 5
	ImageCacheControl           = "max-age=31536000"
	ImageContentType            = "image/webp"
)

var (
	// ErrDecode is returned when the input cannot be decoded as an image.
	ErrDecode = errors.New("decode image")
	// ErrEncode is returned when the optimized image cannot be encoded.
	ErrEncode = errors.New("encode image")
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// UploadFile is an image file as received from a client.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// ImageService optimizes post images and stores them in an object store.
type ImageService struct {
	store              storage.ObjectStore
	maxUploadSizeBytes int64
	now                func() time.Time
}

func NewImageService(store storage.ObjectStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		now:                time.Now,
	}
}

// ValidateUploads checks a batch of files before they are uploaded.
func (s *ImageService) ValidateUploads(files []UploadFile) error {
	if len(files) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if len(files) > MaxUploadFiles {
		return models.NewValidationError(fmt.Sprintf("At most %d images can be uploaded", MaxUploadFiles))
	}
	for _, f := range files {
		size := f.Size
		if size == 0 {
			size = int64(len(f.Content))
		}
		if size > s.maxUploadSizeBytes {
			return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
		}
		if !isImageContentType(f.ContentType) {
			return models.NewValidationError("Only image files can be uploaded")
		}
	}
	return nil
}

// Optimize scales content down to fit MaxImageWidth x MaxImageHeight and
// re-encodes it as WebP. Smaller images keep their size.
func (s *ImageService) Optimize(content []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	resized := resizeToFit(decoded, MaxImageWidth, MaxImageHeight)
	out, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}

// Upload optimizes content and stores it. It returns the public URL, or
// false when optimization or storage failed.
func (s *ImageService) Upload(ctx context.Context, content []byte) (string, bool) {
	optimized, err := s.Optimize(content)
	if err != nil {
		observability.ImageUploads.WithLabelValues("invalid").Inc()
		observability.LogServiceError(ctx, "ImageService", "Upload", err)
		return "", false
	}
	if saved := len(content) - len(optimized); saved > 0 {
		observability.ImageBytesSaved.Observe(float64(saved))
	}

	url, err := s.store.Put(ctx, storage.Object{
		Key:          s.objectName(),
		ContentType:  ImageContentType,
		CacheControl: ImageCacheControl,
		Data:         optimized,
	})
	if err != nil {
		observability.ImageUploads.WithLabelValues("error").Inc()
		observability.LogServiceError(ctx, "ImageService", "Upload", err)
		return "", false
	}
	observability.ImageUploads.WithLabelValues("ok").Inc()
	return url, true
}

// UploadMany uploads files concurrently and returns the URLs of the
// successful uploads in input order.
func (s *ImageService) UploadMany(ctx context.Context, files [][]byte) []string {
	results := make([]string, len(files))
	var wg sync.WaitGroup
	for i, content := range files {
		wg.Add(1)
		go func(i int, content []byte) {
			defer wg.Done()
			if url, ok := s.Upload(ctx, content); ok {
				results[i] = url
			}
		}(i, content)
	}
	wg.Wait()

	urls := make([]string, 0, len(files))
	for _, url := range results {
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// Delete removes the object named by the last path segment of publicURL.
// URLs this store did not issue are left alone.
func (s *ImageService) Delete(ctx context.Context, publicURL string) bool {
	key := objectKeyFromURL(publicURL)
	if key == "" || !s.issued(publicURL, key) {
		return false
	}
	if err := s.store.Remove(ctx, key); err != nil {
		observability.LogServiceError(ctx, "ImageService", "Delete", err)
		return false
	}
	return true
}

// issued reports whether raw, ignoring query and fragment, is the public URL
// of key in this store.
func (s *ImageService) issued(raw, key string) bool {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw == s.store.PublicURL(key)
}

// objectName returns <unixMillis>_<6 base36 chars>.webp.
func (s *ImageService) objectName() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + string(suffix) + ".webp"
}

func objectKeyFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		raw = u.Path
	}
	key := path.Base(raw)
	if key == "." || key == "/" || key == ".." {
		return ""
	}
	return key
}

func isImageContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
