package domain

import (
	"errors"
	"strings"
)

// Job categories accepted by the marketplace
const (
	CategoryWebDevelopment   = "Web Development"
	CategoryGraphicsDesign   = "Graphics Design"
	CategoryDigitalMarketing = "Digital Marketing"
)

// Bid status values used by the client. Status is a free-form string, these
// are only the ones the server assigns itself.
const (
	BidStatusPending    = "Pending"
	BidStatusInProgress = "In Progress"
	BidStatusComplete   = "Complete"
	BidStatusRejected   = "Rejected"
)

// Deadline sort directions for the paginated job search
const (
	SortAscending  = "asc"
	SortDescending = "dsc"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrBidNotFound       = errors.New("bid not found")
	ErrDuplicateBid      = errors.New("you already placed a bid on this job")
	ErrOwnJobBid         = errors.New("you cannot bid on your own job")
	ErrInvalidPage       = errors.New("invalid page or size")
	ErrInvalidCategory   = errors.New("unknown job category")
	ErrInvalidPriceRange = errors.New("max_price must be greater than or equal to min_price")
	ErrEmptyUpdate       = errors.New("no fields to update")
)

var categories = []string{
	CategoryWebDevelopment,
	CategoryGraphicsDesign,
	CategoryDigitalMarketing,
}

// Categories returns the fixed set of job categories
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// ValidCategory reports whether c is one of the known categories
func ValidCategory(c string) bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// SortsAscending reports whether a deadline sort value asks for ascending
// order. Any other non-empty value means descending.
func SortsAscending(sort string) bool {
	return sort == SortAscending
}

// NormalizeEmail is the stored and compared form of an email: trimmed and
// lowercased. Owner checks, listings and the one-bid-per-bidder key all use it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
