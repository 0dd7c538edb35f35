package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/des0late-dev/Receipt-Scanner-Movie-Search-App/internal/extraction"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates collision-resistant UUIDs. Records are
// deleted by ID, so the ID must never fall back to anything positional.
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service is the capture producer: it turns a captured image plus an
// extraction response into one Receipt, appends it to the store, and
// signals the notifier.
type Service struct {
	store       Store
	extractor   extraction.Extractor
	storage     Storage
	notifier    *Notifier
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(store Store, extractor extraction.Extractor, storage Storage, notifier *Notifier) *Service {
	return &Service{
		store:       store,
		extractor:   extractor,
		storage:     storage,
		notifier:    notifier,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(store Store, extractor extraction.Extractor, storage Storage, notifier *Notifier, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		store:       store,
		extractor:   extractor,
		storage:     storage,
		notifier:    notifier,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Analyze runs extraction on a captured image without persisting anything.
// The caller confirms the result before saving.
func (s *Service) Analyze(ctx context.Context, imageData []byte, contentType string) (*extraction.Fields, error) {
	fields, err := s.extractor.Extract(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("analyzing receipt: %w", err)
	}
	return fields, nil
}

// Save appends one new record built from previously analyzed fields. The
// image is stored first so the record can reference it; the notifier fires
// exactly once, strictly after the list write completes. On any failure
// nothing is appended and no signal is published.
func (s *Service) Save(fields *extraction.Fields, imageData []byte, contentType string) (*Receipt, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	var imageURI string
	if len(imageData) > 0 {
		saved, err := s.storage.Save(fmt.Sprintf("%s%s", id, extensionFor(contentType)), imageData)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
		imageURI = saved
	}

	rec := Receipt{
		ID:          id,
		VendorName:  fields.VendorName,
		Date:        fields.Date,
		TotalAmount: fields.TotalAmount,
		Tax:         fields.Tax,
		Category:    fields.Category,
		Items:       fields.Items,
		ImageURI:    imageURI,
		Timestamp:   now.UnixMilli(),
	}

	err := s.store.Update(func(receipts []Receipt) []Receipt {
		return append(receipts, rec)
	})
	if err != nil {
		if imageURI != "" {
			s.storage.Delete(imageURI)
		}
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	s.notifier.Publish()
	return &rec, nil
}

// Process analyzes and immediately saves in one step.
func (s *Service) Process(ctx context.Context, imageData []byte, contentType string) (*Receipt, error) {
	fields, err := s.Analyze(ctx, imageData, contentType)
	if err != nil {
		return nil, err
	}
	return s.Save(fields, imageData, contentType)
}

// GetImage retrieves the stored image for a receipt.
func (s *Service) GetImage(id string) ([]byte, error) {
	receipts, err := s.store.Read()
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	for _, r := range receipts {
		if r.ID == id && r.ImageURI != "" {
			data, err := s.storage.Get(r.ImageURI)
			if err != nil {
				return nil, fmt.Errorf("getting receipt image: %w", err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("receipt image not found: %s", id)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/heic", "image/heif":
		return ".heic"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
