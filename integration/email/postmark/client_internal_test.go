package postmark

import (
	"context"
	"errors"
	"testing"

	"github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/mail"
)

type fakeBatchSender struct {
	sizes []int
	err   error
	// failFrom makes calls from this one (1-based) fail with err. Zero fails every call.
	failFrom int
	// rejectFirst rejects the first message of every successful batch.
	rejectFirst bool
}

func (f *fakeBatchSender) SendEmailBatch(_ context.Context, emails []postmark.Email) ([]postmark.EmailResponse, error) {
	f.sizes = append(f.sizes, len(emails))
	if f.err != nil && len(f.sizes) >= f.failFrom {
		return nil, f.err
	}
	resp := make([]postmark.EmailResponse, len(emails))
	if f.rejectFirst && len(resp) > 0 {
		resp[0] = postmark.EmailResponse{ErrorCode: 406, Message: "inactive recipient"}
	}
	return resp, nil
}

func TestDeliver_SplitsLargeBatches(t *testing.T) {
	t.Parallel()

	fake := &fakeBatchSender{}
	tr := &Transport{client: fake}

	msgs := make([]*mail.Message, 1201)
	for i := range msgs {
		msgs[i] = &mail.Message{Sender: "hello@molten.dev", Recipients: []string{"jane@example.com"}}
	}

	require.NoError(t, tr.Deliver(context.Background(), msgs))
	assert.Equal(t, []int{500, 500, 201}, fake.sizes)
}

func TestDeliver_RequestError(t *testing.T) {
	t.Parallel()

	fake := &fakeBatchSender{err: errors.New("401 unauthorized")}
	tr := &Transport{client: fake}

	err := tr.Deliver(context.Background(), []*mail.Message{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401 unauthorized")
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestDeliver_RequestErrorKeepsEarlierRejections(t *testing.T) {
	t.Parallel()

	fake := &fakeBatchSender{err: errors.New("503 service unavailable"), failFrom: 2, rejectFirst: true}
	tr := &Transport{client: fake}

	msgs := make([]*mail.Message, 600)
	for i := range msgs {
		msgs[i] = &mail.Message{MsgID: "<m@molten.dev>"}
	}
	msgs[0].MsgID = "<first@molten.dev>"

	err := tr.Deliver(context.Background(), msgs)
	require.Error(t, err)
	assert.Equal(t, []int{500, 100}, fake.sizes)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "<first@molten.dev>: 406 - inactive recipient")
	assert.Contains(t, err.Error(), "503 service unavailable")
}

func TestEmail_Mapping(t *testing.T) {
	t.Parallel()

	tr := &Transport{cfg: Config{TrackOpens: true, TrackLinks: TrackLinksHTMLOnly, MessageStream: "broadcast"}}
	e := tr.email(&mail.Message{
		Sender:     "hello@molten.dev",
		Recipients: []string{"a@example.com"},
		Cc:         []string{"b@example.com", "c@example.com"},
		Bcc:        []string{"d@example.com"},
		MsgID:      "<id@molten.dev>",
	})

	assert.Equal(t, "b@example.com,c@example.com", e.Cc)
	assert.Equal(t, "d@example.com", e.Bcc)
	assert.True(t, e.TrackOpens)
	assert.Equal(t, TrackLinksHTMLOnly, e.TrackLinks)
	assert.Equal(t, "broadcast", e.MessageStream)
	assert.Contains(t, e.Headers, postmark.Header{Name: "Message-ID", Value: "<id@molten.dev>"})
}
