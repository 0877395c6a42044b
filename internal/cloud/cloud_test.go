package cloud

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNotifyAlert(t *testing.T) {
	fake := &fakeSNS{}
	n := &SNSNotifier{svc: fake, topicArn: "arn:aws:sns:us-east-1:1:incubator", log: zerolog.Nop()}

	a := domain.Alert{
		ID: "a-1", Temperature: 38.8, Humidity: 58,
		Message:  "Alert: Temperature: 38.8°C, Humidity: 58%",
		RaisedAt: time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC),
	}
	require.NoError(t, n.NotifyAlert(context.Background(), a))

	require.NotNil(t, fake.in)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:incubator", aws.ToString(fake.in.TopicArn))
	assert.Equal(t, "Incubator Alert", aws.ToString(fake.in.Subject))
	body := aws.ToString(fake.in.Message)
	assert.Contains(t, body, "Severity: moderate")
	assert.Contains(t, body, "2026-10-15T07:30:00Z")
	assert.Contains(t, body, "Alert: Temperature: 38.8°C, Humidity: 58%")
}

func TestNotifyAlertError(t *testing.T) {
	n := &SNSNotifier{svc: &fakeSNS{err: errors.New("throttled")}, topicArn: "arn", log: zerolog.Nop()}
	err := n.NotifyAlert(context.Background(), domain.Alert{})
	assert.ErrorContains(t, err, "throttled")
}

type fakeS3 struct {
	key      string
	body     []byte
	meta     map[string]string
	putErr   error
	presigns int
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.key = aws.ToString(in.Key)
	f.body, _ = io.ReadAll(in.Body)
	f.meta = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.presigns++
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Expires != time.Hour {
		return nil, errors.New("unexpected expiry")
	}
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + aws.ToString(in.Key)}, nil
}

func TestArchiveUpload(t *testing.T) {
	fake := &fakeS3{}
	a := &S3Archive{
		svc: fake, presign: fake, bucket: "incubator-archive",
		now: func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) },
	}

	url, err := a.Upload(context.Background(), "archives/readings/x.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/archives/readings/x.json", url)
	assert.Equal(t, "archives/readings/x.json", fake.key)
	assert.Equal(t, `[]`, string(fake.body))
	assert.Equal(t, "2026-10-15T00:00:00Z", fake.meta["uploaded-at"])
}

func TestArchiveUploadError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	a := &S3Archive{svc: fake, presign: fake, bucket: "b", now: time.Now}

	_, err := a.Upload(context.Background(), "k", nil)
	assert.ErrorContains(t, err, "access denied")
	assert.Zero(t, fake.presigns)
}
