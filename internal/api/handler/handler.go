package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/cuongbtq/solosphere-be/internal/events"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Store       storage.Store
	Tokens      *auth.TokenIssuer
	Cookies     auth.CookieConfig
	Publisher   events.Publisher
	ServiceName string
	// EnforceJobOwnership restricts PUT and DELETE /job/:id to the job's buyer
	EnforceJobOwnership bool
}

// AuthHandler issues and clears the session cookie
type AuthHandler struct {
	logger  *slog.Logger
	tokens  *auth.TokenIssuer
	cookies auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger:  deps.Logger,
		tokens:  deps.Tokens,
		cookies: deps.Cookies,
	}
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger           *slog.Logger
	store            storage.Store
	publisher        events.Publisher
	enforceOwnership bool
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:           deps.Logger,
		store:            deps.Store,
		publisher:        publisherOrNop(deps.Publisher),
		enforceOwnership: deps.EnforceJobOwnership,
	}
}

// BidHandler handles bid-related HTTP requests
type BidHandler struct {
	logger    *slog.Logger
	store     storage.Store
	publisher events.Publisher
}

// NewBidHandler creates a new BidHandler instance
func NewBidHandler(deps *Dependencies) *BidHandler {
	return &BidHandler{
		logger:    deps.Logger,
		store:     deps.Store,
		publisher: publisherOrNop(deps.Publisher),
	}
}

func publisherOrNop(p events.Publisher) events.Publisher {
	if p == nil {
		return events.NopPublisher{}
	}
	return p
}

// publish never fails the request; the activity log is best effort
func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish activity event",
			slog.String("event_id", e.EventID),
			slog.String("type", string(e.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// actorEmail prefers the verified caller and falls back to the email the
// request claims
func actorEmail(ctx context.Context, claimed string) string {
	if id, ok := auth.IdentityFromContext(ctx); ok {
		return id.Email
	}
	return claimed
}
