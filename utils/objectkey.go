package utils

import "strings"

// NormalizeObjectKey strips a redundant "<bucket>/" prefix from a
// user-supplied object key, per the configuration contract that accepts
// keys either bare or bucket-prefixed.
func NormalizeObjectKey(bucket, objectKey string) string {
	prefix := bucket + "/"
	if strings.HasPrefix(objectKey, prefix) {
		return strings.TrimPrefix(objectKey, prefix)
	}
	return objectKey
}
