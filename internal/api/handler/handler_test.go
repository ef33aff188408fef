package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: auth.ErrUnauthenticated, want: http.StatusUnauthorized},
		{err: fmt.Errorf("%w: token expired", auth.ErrUnauthenticated), want: http.StatusUnauthorized},
		{err: auth.ErrForbidden, want: http.StatusForbidden},
		{err: domain.ErrJobNotFound, want: http.StatusNotFound},
		{err: domain.ErrBidNotFound, want: http.StatusNotFound},
		{err: domain.ErrDuplicateBid, want: http.StatusBadRequest},
		{err: domain.ErrOwnJobBid, want: http.StatusBadRequest},
		{err: domain.ErrInvalidPage, want: http.StatusBadRequest},
		{err: domain.ErrInvalidCategory, want: http.StatusBadRequest},
		{err: domain.ErrInvalidPriceRange, want: http.StatusBadRequest},
		{err: domain.ErrEmptyUpdate, want: http.StatusBadRequest},
		{err: fmt.Errorf("failed to list jobs: %w", errors.New("connection refused")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func intPtr(v int) *int { return &v }

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		req  dto.SearchJobsRequest
		want storage.JobQuery
	}{
		{
			name: "defaults",
			req:  dto.SearchJobsRequest{},
			want: storage.JobQuery{Page: 1, Size: defaultPageSize},
		},
		{
			name: "explicit window and predicate",
			req:  dto.SearchJobsRequest{Page: intPtr(3), Size: intPtr(4), Filter: domain.CategoryWebDevelopment, Sort: "asc", Search: "page"},
			want: storage.JobQuery{Category: domain.CategoryWebDevelopment, Search: "page", Sort: "asc", Page: 3, Size: 4},
		},
		{
			name: "size is capped",
			req:  dto.SearchJobsRequest{Page: intPtr(1), Size: intPtr(5000)},
			want: storage.JobQuery{Page: 1, Size: maxPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchQuery(tt.req))
		})
	}
}
