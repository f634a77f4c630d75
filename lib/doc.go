// Package lib supplies small statistics and raw-memory helpers for
// the allocator tiers. They are self-contained and shall not depend
// on anything other than the standard library.
package lib
