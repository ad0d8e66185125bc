// Package minio stores serialized tables on MinIO or another S3-compatible
// server (Ceph, Garage, SeaweedFS) through the minio-go client.
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "frames",
//	    Prefix:    "tables/",
//	})
//
// It needs no AWS SDK, which keeps air-gapped deployments small.
package minio
