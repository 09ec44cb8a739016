package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/ping", RateLimitTypeHealth},
		{"/status", RateLimitTypeHealth},
		{"/api/v1/admin/events", RateLimitTypeAdmin},
		{"/api/v1/admin/users/:id", RateLimitTypeAdmin},
		{"/api/v1/auth/login", RateLimitTypeAuth},
		{"/api/v1/reservations", RateLimitTypeBooking},
		{"/api/v1/reservations/:id", RateLimitTypeBooking},
		{"/api/v1/events", RateLimitTypePublic},
		{"/api/v1/events/:id", RateLimitTypePublic},
		{"/something/else", RateLimitTypeDefault},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.path), "path %s", tc.path)
	}
}
