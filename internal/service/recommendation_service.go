package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/edustack/learnhub-api/pkg/errors"
)

// RecommendedCourse is the course-like payload returned by the external
// recommendation service.
type RecommendedCourse struct {
	CourseID    string   `json:"courseId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Complexity  string   `json:"complexity"`
	Duration    string   `json:"duration"`
	Rating      float64  `json:"rating"`
}

// RecommendationResult is the explicit outcome of a best-effort fetch.
// Courses is never nil; on failure it is empty and Err carries the reason.
type RecommendationResult struct {
	Courses []RecommendedCourse
	Err     error
}

// OK reports whether the fetch succeeded.
func (r RecommendationResult) OK() bool {
	return r.Err == nil
}

// RecommendationClient fetches course recommendations over HTTP. Every
// failure mode (timeout, non-2xx, malformed body) degrades to an empty
// result; the error is recorded in the result, never returned.
type RecommendationClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRecommendationClient constructs a RecommendationClient. The timeout
// bounds each fetch on top of the caller's context.
func NewRecommendationClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RecommendationClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RecommendationClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch looks up recommendations for a course identity.
func (c *RecommendationClient) Fetch(ctx context.Context, courseID string) RecommendationResult {
	url := fmt.Sprintf("%s/recommendations/%s", c.baseURL, courseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.failed(courseID, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.failed(courseID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failed(courseID, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var courses []RecommendedCourse
	if err := json.NewDecoder(resp.Body).Decode(&courses); err != nil {
		return c.failed(courseID, err)
	}
	if courses == nil {
		courses = []RecommendedCourse{}
	}
	return RecommendationResult{Courses: courses}
}

func (c *RecommendationClient) failed(courseID string, err error) RecommendationResult {
	c.logger.Warn("recommendation fetch failed",
		zap.String("course_id", courseID),
		zap.Error(err),
	)
	wrapped := appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "recommendation fetch failed")
	return RecommendationResult{Courses: []RecommendedCourse{}, Err: wrapped}
}
