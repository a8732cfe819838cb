package mpris

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp"

	"github.com/marcus-crane/mediabridge/utils"
)

// maxArtBytes bounds how much of a single artwork file is read.
const maxArtBytes = 8 << 20

// ArtLoader fetches and decodes artwork referenced by players. Decoded images
// are cached by content hash since several players rewrite one temp file for
// every track.
type ArtLoader struct {
	client  *retryablehttp.Client
	timeout time.Duration
	images  *lru.Cache[uint64, image.Image]
}

func NewArtLoader(timeout time.Duration, cacheSize int) *ArtLoader {
	if cacheSize <= 0 {
		cacheSize = 32
	}
	images, _ := lru.New[uint64, image.Image](cacheSize)

	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond
	client.HTTPClient = utils.NewHTTPClient(timeout)
	client.Logger = slog.Default()

	return &ArtLoader{
		client:  client,
		timeout: timeout,
		images:  images,
	}
}

// Load resolves file://, http(s):// and data: URLs as well as plain paths.
func (l *ArtLoader) Load(ctx context.Context, artURL string) (image.Image, error) {
	if artURL == "" {
		return nil, fmt.Errorf("no artwork url")
	}

	data, err := l.read(ctx, artURL)
	if err != nil {
		return nil, err
	}

	key := xxhash.Sum64(data)
	if img, ok := l.images.Get(key); ok {
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork %s: %w", shorten(artURL), err)
	}
	l.images.Add(key, img)
	return img, nil
}

func (l *ArtLoader) read(ctx context.Context, artURL string) ([]byte, error) {
	if strings.HasPrefix(artURL, "/") {
		return readFile(artURL)
	}

	u, err := url.Parse(artURL)
	if err != nil {
		return nil, fmt.Errorf("invalid artwork url: %w", err)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return l.fetch(ctx, artURL)
	case "data":
		return decodeDataURL(artURL)
	}
	return nil, fmt.Errorf("unsupported artwork scheme %q", u.Scheme)
}

func (l *ArtLoader) fetch(ctx context.Context, artURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork request returned %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxArtBytes))
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxArtBytes))
}

// decodeDataURL handles data:[<mediatype>];base64,<data>.
func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("only base64 data urls are supported")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func shorten(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
