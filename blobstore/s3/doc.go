// Package s3 stores serialized tables in Amazon S3 or an S3-compatible
// endpoint.
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("tables/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// Reads use ranged GETs. Writes stream through the SDK's multipart uploader
// with CRC32C checksums enabled by default.
package s3
