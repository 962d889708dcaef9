package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/terravia/terravia-backend/internal/service"
	"github.com/terravia/terravia-backend/internal/util"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func RegisterReviews(e *echo.Echo, identity *service.IdentityService, reviews *service.ReviewService) {
	handler := &ReviewHandler{reviews: reviews}

	group := e.Group("/api/v1/trips/:trip_id/reviews", ResolveIdentity(identity))
	group.GET("", handler.listReviews)
	group.POST("", handler.submitReview)
}

// submitReview handles POST /api/v1/trips/{trip_id}/reviews as a multipart
// form: stars, review_comment, name (anonymous submitters only), images[].
// The response always has the {success, data|error} shape.
func (h *ReviewHandler) submitReview(c echo.Context) error {
	tripID := strings.TrimSpace(c.Param("trip_id"))

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	ratingStr := strings.TrimSpace(c.FormValue("stars"))
	if ratingStr == "" {
		return c.JSON(http.StatusBadRequest, util.Error("stars required"))
	}
	stars, err := strconv.Atoi(ratingStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("stars must be an integer"))
	}

	uploads, closers, err := buildReviewUploads(c.Request().MultipartForm)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	review, err := h.reviews.Submit(c.Request().Context(), CurrentIdentity(c), service.ReviewDraft{
		TripID:  tripID,
		Stars:   stars,
		Comment: c.FormValue("review_comment"),
		Name:    c.FormValue("name"),
		Images:  uploads,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to submit review"))
		}
	}

	return c.JSON(http.StatusCreated, util.Data(review))
}

// listReviews handles GET /api/v1/trips/{trip_id}/reviews, newest first.
func (h *ReviewHandler) listReviews(c echo.Context) error {
	tripID := strings.TrimSpace(c.Param("trip_id"))
	if tripID == "" {
		return c.JSON(http.StatusBadRequest, util.Error("trip_id is required"))
	}

	reviews := h.reviews.ListByTrip(c.Request().Context(), tripID)
	return c.JSON(http.StatusOK, util.Data(reviews))
}

// buildReviewUploads opens the attached files in form order. The caller owns
// closing the returned readers.
func buildReviewUploads(form *multipart.Form) ([]service.ReviewImageUpload, []io.ReadCloser, error) {
	if form == nil {
		return nil, nil, nil
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		headers = form.File["images[]"]
	}

	uploads := make([]service.ReviewImageUpload, 0, len(headers))
	closers := make([]io.ReadCloser, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, errors.New("unable to read attached image " + header.Filename)
		}
		closers = append(closers, file)
		uploads = append(uploads, service.ReviewImageUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		})
	}
	return uploads, closers, nil
}
