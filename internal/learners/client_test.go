package learners

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnrollmentsByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/learners/enrollments", r.URL.Path)
		switch r.URL.Query().Get("email") {
		case "known@example.com":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"courseId":"skt-101","courseName":"Sanskrit Level 1","status":"active"}]`))
		case "unknown@example.com":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	ctx := context.Background()

	got, err := c.EnrollmentsByEmail(ctx, "known@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "skt-101", got[0].CourseID)

	// 404 means no data, not an error
	got, err = c.EnrollmentsByEmail(ctx, "unknown@example.com")
	require.NoError(t, err)
	require.Nil(t, got)

	// provider failures surface as errors for the caller to ignore
	_, err = c.EnrollmentsByEmail(ctx, "boom@example.com")
	require.Error(t, err)
}
