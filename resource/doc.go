// Package resource bounds the memory, concurrency and IO bandwidth that
// table loading may use.
//
// A Controller is shared by every Loader of a process. Memory is reserved up
// front by estimated size and tracked precisely through Allocator, which
// wraps an Arrow memory.Allocator.
package resource
