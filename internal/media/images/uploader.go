package images

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Purpose selects the compression budget for an upload.
type Purpose int

const (
	// PurposeCreate is a photo attached while adding a restaurant.
	PurposeCreate Purpose = iota
	// PurposeEdit is a photo added to an existing restaurant. The edit form
	// allows a larger budget than the add form.
	PurposeEdit
)

// Edit-form compression defaults.
const (
	DefaultEditMaxDimension = 1080
	DefaultEditMaxBytes     = 512 * 1024
)

// Uploaded describes a stored image.
type Uploaded struct {
	URL        string
	ObjectName string
	BlurHash   string
	Bytes      int
}

// Uploader compresses an upload and writes it to storage.
type Uploader struct {
	create  *Compressor
	edit    *Compressor
	storage *Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewUploader creates an Uploader that uses compressor for every purpose
// until WithEditCompressor assigns the edit budget.
func NewUploader(compressor *Compressor, storage *Storage, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		create:  compressor,
		edit:    compressor,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// WithEditCompressor sets the compressor used for PurposeEdit.
func (u *Uploader) WithEditCompressor(c *Compressor) *Uploader {
	if c != nil {
		u.edit = c
	}
	return u
}

// Upload compresses data for purpose and stores it as
// restaurants/{millis}-{basename}.webp.
func (u *Uploader) Upload(ctx context.Context, purpose Purpose, filename string, data []byte) (*Uploaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressor := u.create
	if purpose == PurposeEdit {
		compressor = u.edit
	}

	out, err := compressor.Compress(data)
	if err != nil {
		return nil, err
	}

	name := ObjectName(u.now(), filename)
	// Same file name uploaded twice within one millisecond.
	stem := strings.TrimSuffix(name, ObjectExt)
	for i := 2; u.storage.Exists(name); i++ {
		name = stem + "-" + strconv.Itoa(i) + ObjectExt
	}

	url, err := u.storage.Put(name, out.Data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	u.logger.Info("image uploaded",
		slog.String("object", name),
		slog.Int("bytes", len(out.Data)),
		slog.Int("width", out.Width),
		slog.Int("height", out.Height),
	)

	return &Uploaded{
		URL:        url,
		ObjectName: name,
		BlurHash:   out.BlurHash,
		Bytes:      len(out.Data),
	}, nil
}
