package s3

import (
	"os"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
	"github.com/Richard-GOZAN/imdb-analytics-platform/pipeline"
	"github.com/pkg/errors"
)

// Publisher copies local columnar files into the bucket that backs the
// warehouse external stage. Keys are supplied in full so the client is
// built without its own prefix.
type Publisher struct {
	Log    logger.Logger
	Client BasicClient
	Bucket string
}

func NewPublisher(log logger.Logger, bucket, region string) *Publisher {
	return &Publisher{
		Log:    log,
		Client: NewBasicClient(bucket, region, ""),
		Bucket: bucket,
	}
}

// Publish uploads localPath to the given object key, overwriting any
// existing object, and returns the s3:// URI of the result.
func (p *Publisher) Publish(localPath string, key string) (string, error) {
	uri := ObjectURI(p.Bucket, key)
	f, err := os.Open(localPath)
	if err != nil {
		return "", pipeline.TransferError{Op: "publish", Target: uri,
			Err: errors.Wrap(err, "unable to open local file for upload")}
	}
	defer f.Close()
	p.Log.Debug("Uploading ", localPath, " to ", uri)
	if err = p.Client.BufferPut(key, f); err != nil {
		return "", pipeline.TransferError{Op: "publish", Target: uri,
			Err: errors.Wrap(err, "unable to upload object")}
	}
	return uri, nil
}
