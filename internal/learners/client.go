package learners

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Enrollment is the narrow slice of the course provider's response we consume.
type Enrollment struct {
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
	Status     string `json:"status"`
}

// Client performs read-only lookups against the learner/course data provider.
// The provider is an opaque external collaborator; callers should treat any
// error as "no enrollment data".
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// EnrollmentsByEmail fetches the learner's course enrollments.
func (c *Client) EnrollmentsByEmail(ctx context.Context, email string) ([]Enrollment, error) {
	u := c.baseURL + "/learners/enrollments?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("learners provider returned %d: %s", resp.StatusCode, string(b))
	}
	var out []Enrollment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
