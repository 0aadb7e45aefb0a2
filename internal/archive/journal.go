// Package archive keeps a journal of finished payment attempts in a blob
// bucket (S3, GCS, Azure Blob Storage, local files, or memory)
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/paybutton/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Journal stores one JSON document per attempt, keyed by button session
// and payment id
type Journal struct {
	bucket *blob.Bucket
	prefix string
}

var ErrAttemptNotFound = errors.New("attempt not found")

// NewJournal opens the bucket at bucketURL. Keys are written under prefix
func NewJournal(
	ctx context.Context, bucketURL, prefix string,
) (*Journal, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Journal{bucket: bucket, prefix: prefix}, nil
}

// Record writes the attempt, replacing any earlier record of it
func (j *Journal) Record(ctx context.Context, rec *api.AttemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := j.keyFor(rec.ButtonSessionID, rec.PaymentID)
	return j.bucket.WriteAll(ctx, key, data, nil)
}

// Get reads a single attempt
func (j *Journal) Get(
	ctx context.Context, sess api.ButtonSessionID, id api.PaymentID,
) (*api.AttemptRecord, error) {
	data, err := j.bucket.ReadAll(ctx, j.keyFor(sess, id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	var rec api.AttemptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the attempts of a button session in start order. An empty
// session lists every journaled attempt
func (j *Journal) List(
	ctx context.Context, sess api.ButtonSessionID,
) ([]*api.AttemptRecord, error) {
	prefix := j.prefix
	if sess != "" {
		prefix += string(sess) + "/"
	}

	var res []*api.AttemptRecord
	iter := j.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, ".json") {
			continue
		}

		data, err := j.bucket.ReadAll(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		var rec api.AttemptRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		res = append(res, &rec)
	}

	slices.SortFunc(res, func(l, r *api.AttemptRecord) int {
		return l.StartedAt.Compare(r.StartedAt)
	})
	return res, nil
}

// Delete removes an attempt. Missing attempts are not an error
func (j *Journal) Delete(
	ctx context.Context, sess api.ButtonSessionID, id api.PaymentID,
) error {
	err := j.bucket.Delete(ctx, j.keyFor(sess, id))
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (j *Journal) Close() error {
	return j.bucket.Close()
}

func (j *Journal) keyFor(sess api.ButtonSessionID, id api.PaymentID) string {
	return j.prefix + string(sess) + "/" + string(id) + ".json"
}
