// Package blobstore abstracts where serialized tables are read from and
// written to.
//
// # Implementations
//
//   - LocalStore: files below a root directory, read through mmap
//   - MemoryStore: process memory, for tests and staging
//   - s3.Store: Amazon S3 with ranged reads and multipart uploads
//   - minio.Store: any S3-compatible endpoint through minio-go
//
// Blobs that implement Mappable hand their bytes out without copying, which
// lets Arrow IPC readers reference file pages directly. ReadAll uses that
// path when it is available.
package blobstore
