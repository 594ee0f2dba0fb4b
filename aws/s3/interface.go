package s3

import (
	"io"
)

// BasicClient is the object-store surface the publisher needs.
// BufferPut can be used to put a file to S3 since File implements Read and Seek.
type BasicClient interface {
	BufferPut(key string, buf io.ReadSeeker) (err error)
}
