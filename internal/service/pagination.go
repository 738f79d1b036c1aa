package service

// List endpoint paging defaults.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
)

// normalizeFilterPage clamps page and limit to sane values in place.
func normalizeFilterPage(page, limit *int) {
	if *page < 1 {
		*page = defaultPage
	}
	if *limit < 1 {
		*limit = defaultLimit
	}
	if *limit > maxLimit {
		*limit = maxLimit
	}
}
