package s3

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectURI builds the canonical s3://<bucket>/<key> form of an object location.
func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, strings.TrimLeft(key, "/"))
}

// ParseObjectURI expects uri to be of the form s3://<bucket>/<key>.
// It returns the bucket and key components or an error if either is missing.
func ParseObjectURI(uri string) (bucket string, key string, err error) {
	expectedScheme := "s3"
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if u.Scheme != expectedScheme {
		return "", "", fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, u.Scheme)
	}
	bucket = u.Host
	if bucket == "" {
		return "", "", fmt.Errorf("URL %q failed to parse bucket name", uri)
	}
	key = strings.Trim(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("URL %q failed to parse object key", uri)
	}
	return bucket, key, nil
}
