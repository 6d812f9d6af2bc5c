package appfs

import "embed"

// FS holds the DB migrations and email templates shipped with the binary.
// The "all:" prefix is required so the underscore-prefixed base layout
// (templates/email/_base.txt) is embedded too.
//
//go:embed migrations all:templates
var FS embed.FS
