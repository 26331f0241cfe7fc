// Package textutil provides small text helpers shared by the CLI, the
// resolver prompts, and the label renderer: filesystem-safe names, ellipsis
// truncation, and rounded console tables.
package textutil
