package model

import "time"

// ActiveSentinel is the deleted_at value of rows that are not soft-deleted.
// deleted_at is NOT NULL; live rows carry this far-future timestamp so the
// compound unique indexes over (email, deleted_at) and (phone, deleted_at)
// keep working after a delete. Every query filters on deleted_at = sentinel.
var ActiveSentinel = time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)
