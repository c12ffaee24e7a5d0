package transfer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/acomagu/bufpipe"
	"github.com/gabriel-vasile/mimetype"
	"github.com/mozillazg/go-unidecode"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

var (
	// ErrNotAvailable means the title has no descriptor or no external source.
	ErrNotAvailable = errors.New("movie not available for download")
	// ErrProxyTransfer covers network failures and non-2xx answers from the source.
	ErrProxyTransfer = errors.New("proxy transfer failed")
)

const (
	defaultQuality = "1080p"
	defaultSize    = "1.8GB"
	defaultType    = "video/mp4"

	sniffLen = 3072

	syntheticChunkSize = 64
)

// Kind selects the synthetic payload flavor.
type Kind string

const (
	KindStream   Kind = "stream"
	KindDownload Kind = "download"
)

// Catalog is the availability lookup the transfer endpoints read from.
type Catalog interface {
	Lookup(id string) (models.AvailabilityDescriptor, bool)
	LookupSlug(slug string) (models.AvailabilityDescriptor, bool)
}

// Payload is a response ready to be written: headers plus a body to copy.
type Payload struct {
	Header http.Header
	Body   io.ReadCloser
}

// Download is an open proxy transfer. Callers must Close it.
type Download struct {
	Filename      string
	ContentType   string
	ContentLength int64 // -1 when unknown
	Body          io.ReadCloser
}

func (d *Download) Close() error {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Close()
}

// Options configures a Service.
type Options struct {
	HTTPClient *http.Client
	// Timeout bounds a whole proxy transfer. Zero means no limit.
	Timeout time.Duration
}

type Service struct {
	catalog Catalog
	client  *http.Client
	timeout time.Duration
}

func NewService(catalog Catalog, opts Options) *Service {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Service{catalog: catalog, client: client, timeout: opts.Timeout}
}

// Synthetic builds the placeholder stream or download for slug. Quality and
// size come from the matching descriptor when there is one.
func (s *Service) Synthetic(kind Kind, slug string) Payload {
	quality, size := defaultQuality, defaultSize
	if s.catalog != nil {
		if desc, ok := s.catalog.LookupSlug(slug); ok {
			if desc.Quality != "" {
				quality = desc.Quality
			}
			if desc.Size != "" {
				size = desc.Size
			}
		}
	}

	header := http.Header{}
	header.Set("Content-Type", defaultType)
	header.Set("Cache-Control", "no-cache")

	title := displayTitle(slug)
	var body string
	switch kind {
	case KindDownload:
		filename := fmt.Sprintf("%s-full-movie-%s.mp4", slug, quality)
		header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		body = fmt.Sprintf("This is a simulated download of %s movie file.\n\nFile: %s\nQuality: %s HD\nSize: %s\nFormat: MP4\n\nDownload complete! ✅",
			title, filename, quality, size)
	default:
		header.Set("Content-Disposition", "inline")
		header.Set("Accept-Ranges", "bytes")
		body = fmt.Sprintf("🎬 Streaming %s - Full Movie\n\nThis is a simulated video stream.\nIn production, actual movie files would stream here.\n\nEnjoy your movie! 🍿",
			title)
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))

	r, w := bufpipe.New(nil)
	go writeChunks(w, body, syntheticChunkSize)

	return Payload{Header: header, Body: r}
}

// writeChunks feeds body into the pipe piece by piece and stops as soon as the
// reader side is closed.
func writeChunks(w *bufpipe.PipeWriter, body string, size int) {
	for len(body) > 0 {
		n := min(size, len(body))
		if _, err := io.WriteString(w, body[:n]); err != nil {
			_ = w.CloseWithError(err)
			return
		}
		body = body[n:]
	}
	_ = w.Close()
}

// displayTitle splits camel-case slugs into words and upper-cases them.
func displayTitle(slug string) string {
	var b strings.Builder
	for i, r := range slug {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Open starts a proxy download of the title's external source. The response
// is neither cached nor retried.
func (s *Service) Open(ctx context.Context, id string) (*Download, error) {
	if s.catalog == nil {
		return nil, ErrNotAvailable
	}
	desc, ok := s.catalog.Lookup(strings.TrimSpace(id))
	if !ok || strings.TrimSpace(desc.SourceURL) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotAvailable, id)
	}

	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.SourceURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: build request: %v", ErrProxyTransfer, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrProxyTransfer, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: source answered %s", ErrProxyTransfer, resp.Status)
	}

	body := &cancelReadCloser{Reader: resp.Body, closer: resp.Body, cancel: cancel}
	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" {
		br := bufio.NewReaderSize(resp.Body, sniffLen)
		contentType = sniffContentType(br)
		body.Reader = br
	}

	log.Printf("[transfer] proxying %s from %s (type=%s length=%d)", id, desc.SourceURL, contentType, resp.ContentLength)
	return &Download{
		Filename:      downloadFilename(desc),
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Body:          body,
	}, nil
}

func sniffContentType(br *bufio.Reader) string {
	head, _ := br.Peek(sniffLen)
	if len(head) == 0 {
		return defaultType
	}
	detected := mimetype.Detect(head)
	if detected.Is("application/octet-stream") {
		return defaultType
	}
	return detected.String()
}

func downloadFilename(desc models.AvailabilityDescriptor) string {
	if name := strings.TrimSpace(desc.Filename); name != "" {
		return name
	}
	slug := slugify(desc.Title)
	if slug == "" {
		slug = slugify(desc.ID)
	}
	if slug == "" {
		slug = "movie"
	}
	return slug + ".mp4"
}

// slugify transliterates to ASCII and keeps letters and digits, joining the
// rest with underscores.
func slugify(s string) string {
	ascii := unidecode.Unidecode(s)
	var b strings.Builder
	pendingSep := false
	for _, r := range ascii {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Sources lists the playable sources of a descriptor.
func Sources(desc *models.AvailabilityDescriptor) []models.VideoSource {
	if desc == nil || desc.StreamURL == "" {
		return []models.VideoSource{}
	}
	quality := desc.Quality
	if quality == "" {
		quality = "HD"
	}
	return []models.VideoSource{{
		Quality: quality,
		URL:     desc.StreamURL,
		Type:    defaultType,
		Title:   desc.Title,
	}}
}

type cancelReadCloser struct {
	io.Reader
	closer io.Closer
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.closer.Close()
	c.cancel()
	return err
}
