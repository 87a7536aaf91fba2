package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-etl/core/storage/mocks"
)

func TestEnsureBucketCreatesMissing(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "etl-snapshots").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "etl-snapshots", mock.Anything).Return(nil)

	a := New(mockClient, "etl-snapshots", "snapshots", zap.NewNop())
	err := a.EnsureBucket(context.Background())

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestEnsureBucketSkipsExisting(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "etl-snapshots").Return(true, nil)

	a := New(mockClient, "etl-snapshots", "snapshots", zap.NewNop())
	err := a.EnsureBucket(context.Background())

	assert.NoError(t, err)
	mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorePageUploadsCompressedJSON(t *testing.T) {
	var uploaded []byte
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "etl-snapshots",
		"snapshots/sys_user/run-1/page-0003.json.gz",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			assert.NoError(t, err)
			uploaded = data
		}).
		Return(minio.UploadInfo{}, nil)

	a := New(mockClient, "etl-snapshots", "snapshots", zap.NewNop())
	payload := []map[string]string{{"sys_id": "u1", "name": "Avery"}}
	res, err := a.StorePage(context.Background(), "sys_user", "run-1", 3, payload)

	assert.NoError(t, err)
	assert.Equal(t, "snapshots/sys_user/run-1/page-0003.json.gz", res.Key)
	assert.Greater(t, res.RawBytes, int64(0))
	assert.Greater(t, res.CompressedBytes, int64(0))

	gz, err := gzip.NewReader(bytes.NewReader(uploaded))
	assert.NoError(t, err)
	raw, err := io.ReadAll(gz)
	assert.NoError(t, err)
	assert.Equal(t, res.RawBytes, int64(len(raw)))

	var decoded []map[string]string
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestListAndLoadRoundTrip(t *testing.T) {
	payload := []map[string]string{{"sys_id": "u1"}}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "snapshots/sys_user/run-1/page-0000.json.gz"}
	close(ch)

	mockClient := new(mocks.Client)
	mockClient.On("ListObjects", mock.Anything, "etl-snapshots", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))
	mockClient.On("GetObject", mock.Anything, "etl-snapshots",
		"snapshots/sys_user/run-1/page-0000.json.gz", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(buf.Bytes())), nil)

	a := New(mockClient, "etl-snapshots", "snapshots", zap.NewNop())

	keys, err := a.List(context.Background(), "sys_user", "run-1")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/sys_user/run-1/page-0000.json.gz"}, keys)

	data, err := a.Load(context.Background(), keys[0])
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(data))
}

func TestStorePageUploadFailure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	a := New(mockClient, "etl-snapshots", "snapshots", zap.NewNop())
	_, err := a.StorePage(context.Background(), "sys_user", "run-1", 0, []string{"x"})

	assert.Error(t, err)
}
