package migrations

import "embed"

// Files holds the forward-only schema migrations, applied in version order on open.
//
//go:embed *.sql
var Files embed.FS
