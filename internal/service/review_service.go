package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/media"
	"github.com/terravia/terravia-backend/internal/repository/ports"
)

var (
	ErrReviewValidation  = errors.New("review validation failed")
	ErrReviewPersistence = errors.New("review store unavailable")
)

type ReviewServiceConfig struct {
	Bucket            string
	MaxImages         int
	MaxImageBytes     int64
	AllowedMIMETypes  []string
	ImageProcessor    media.Processor
	ImageMaxDimension int
	UploadConcurrency int
}

// ReviewImageUpload is one attachment. Slice order is display order and is
// preserved through to the committed record.
type ReviewImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// ReviewDraft is the unvalidated submission input. Name only matters for
// anonymous submitters; authenticated submissions are attributed to the
// resolved user id instead.
type ReviewDraft struct {
	TripID  string
	Stars   int
	Comment string
	Name    string
	Images  []ReviewImageUpload
}

type ReviewService struct {
	reviews ports.ReviewRepository
	storage ports.ObjectStorage
	cache   ports.CacheInvalidator

	bucket            string
	maxImages         int
	maxImageBytes     int64
	allowedMIMEs      map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
	uploadConcurrency int

	now       func() time.Time
	keySuffix func() string
}

const (
	defaultMaxReviewImages   = 5
	defaultMaxImageBytes     = int64(5 * 1024 * 1024)
	defaultUploadConcurrency = 4
)

var defaultAllowedMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

func NewReviewService(
	reviews ports.ReviewRepository,
	storage ports.ObjectStorage,
	cache ports.CacheInvalidator,
	cfg ReviewServiceConfig,
) *ReviewService {
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxReviewImages
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	allowedMIMEs := cfg.AllowedMIMETypes
	if len(allowedMIMEs) == 0 {
		allowedMIMEs = defaultAllowedMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowedMIMEs))
	for _, mt := range allowedMIMEs {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}

	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	concurrency := cfg.UploadConcurrency
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}

	return &ReviewService{
		reviews:           reviews,
		storage:           storage,
		cache:             cache,
		bucket:            strings.TrimSpace(cfg.Bucket),
		maxImages:         maxImages,
		maxImageBytes:     maxBytes,
		allowedMIMEs:      mimeSet,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		uploadConcurrency: concurrency,
		now:               time.Now,
		keySuffix:         shortSuffix,
	}
}

// Submit runs the pipeline: validate, resolve authorship, upload attachments
// with per-file fault isolation, commit one review row, invalidate the
// trip's cached review views. A failed upload never fails the submission;
// only validation and the final commit can.
func (s *ReviewService) Submit(ctx context.Context, ident domain.Identity, draft ReviewDraft) (*domain.Review, error) {
	tripID := strings.TrimSpace(draft.TripID)
	comment := strings.TrimSpace(draft.Comment)
	name := strings.TrimSpace(draft.Name)

	images := nonEmptyImages(draft.Images)

	if tripID == "" {
		return nil, fmt.Errorf("%w: trip id is required", ErrReviewValidation)
	}
	if draft.Stars < 1 || draft.Stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", ErrReviewValidation)
	}
	if comment == "" {
		return nil, fmt.Errorf("%w: review comment is required", ErrReviewValidation)
	}
	if !ident.Authenticated && name == "" {
		return nil, fmt.Errorf("%w: name is required for unverified reviews", ErrReviewValidation)
	}
	if err := s.validateImages(images); err != nil {
		return nil, err
	}

	review := &domain.Review{
		TripID:   tripID,
		Stars:    draft.Stars,
		Comment:  comment,
		Verified: ident.Authenticated,
	}
	if ident.Authenticated {
		userID := ident.UserID
		review.UserID = &userID
	} else {
		review.Name = &name
	}

	review.Images = s.uploadImages(ctx, tripID, images)

	stored, err := s.reviews.Create(ctx, review)
	if err != nil {
		// Already-uploaded objects are left behind on purpose; there is no
		// compensating delete.
		return nil, fmt.Errorf("%w: %v", ErrReviewPersistence, err)
	}

	s.invalidate(ctx, "trips:"+tripID+":reviews")

	return stored, nil
}

// ListByTrip returns a trip's reviews newest first. Read path: a store error
// is logged and served as an empty list.
func (s *ReviewService) ListByTrip(ctx context.Context, tripID string) []domain.Review {
	reviews, err := s.reviews.ListByTrip(ctx, strings.TrimSpace(tripID))
	if err != nil {
		log.Printf("reviews: list for trip %s failed, serving empty list: %v", tripID, err)
		return []domain.Review{}
	}
	return reviews
}

func (s *ReviewService) validateImages(images []ReviewImageUpload) error {
	if len(images) == 0 {
		return nil
	}
	if len(images) > s.maxImages {
		return fmt.Errorf("%w: maximum %d images allowed", ErrReviewValidation, s.maxImages)
	}
	for idx, image := range images {
		if s.maxImageBytes > 0 && image.Size > s.maxImageBytes {
			return fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrReviewValidation, idx+1, s.maxImageBytes)
		}
		contentType := strings.ToLower(strings.TrimSpace(image.ContentType))
		if _, ok := s.allowedMIMEs[contentType]; !ok {
			return fmt.Errorf("%w: image %d has unsupported content type %s", ErrReviewValidation, idx+1, image.ContentType)
		}
	}
	return nil
}

// uploadImages runs the attachments concurrently with each one isolated: a
// file that fails to process or upload is logged and dropped, the rest keep
// going. The returned URLs preserve attachment order, not completion order,
// and the slice may be shorter than the input.
func (s *ReviewService) uploadImages(ctx context.Context, tripID string, images []ReviewImageUpload) []string {
	if len(images) == 0 {
		return []string{}
	}

	stamp := s.now().UTC().Format("20060102T150405")
	results := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadConcurrency)
	for idx, image := range images {
		idx, image := idx, image
		g.Go(func() error {
			url, err := s.uploadOne(gctx, tripID, stamp, idx, image)
			if err != nil {
				log.Printf("reviews: skipping image %d (%s) for trip %s: %v", idx+1, image.FileName, tripID, err)
				return nil
			}
			results[idx] = url
			return nil
		})
	}
	_ = g.Wait()

	urls := make([]string, 0, len(results))
	for _, url := range results {
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func (s *ReviewService) uploadOne(ctx context.Context, tripID, stamp string, idx int, image ReviewImageUpload) (string, error) {
	reader := image.Reader
	size := image.Size
	contentType := image.ContentType

	if s.imageProcessor != nil {
		result, err := s.imageProcessor.Process(ctx, media.Upload{
			Reader:      image.Reader,
			Size:        image.Size,
			FileName:    image.FileName,
			ContentType: image.ContentType,
		}, s.imageMaxDimension)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(result.Bytes)
		size = int64(len(result.Bytes))
		contentType = result.ContentType
	}

	ext := safeImageExtension(contentType, image.FileName)
	objectKey := fmt.Sprintf("reviews/%s/%s_%d_%s%s", tripID, stamp, idx, s.keySuffix(), ext)

	return s.storage.Upload(ctx, s.bucket, objectKey, contentType, reader, size)
}

func (s *ReviewService) invalidate(ctx context.Context, tag string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tag); err != nil {
		log.Printf("reviews: cache invalidation for %s failed: %v", tag, err)
	}
}

// nonEmptyImages drops zero-byte attachments; they contribute nothing to the
// submission and are not an error.
func nonEmptyImages(images []ReviewImageUpload) []ReviewImageUpload {
	out := make([]ReviewImageUpload, 0, len(images))
	for _, image := range images {
		if image.Size <= 0 {
			continue
		}
		out = append(out, image)
	}
	return out
}

func safeImageExtension(contentType, fileName string) string {
	ext := extensionFromContentType(strings.ToLower(strings.TrimSpace(contentType)))
	if ext != "" {
		return ext
	}
	if fileName != "" {
		if nameExt := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))); nameExt != "" {
			return nameExt
		}
	}
	return ".bin"
}

func extensionFromContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}

func shortSuffix() string {
	return uuid.NewString()[:8]
}
