package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: sdkaws.String(fmt.Sprintf("msg-%d", len(f.inputs)))}, nil
}

var testPayload = domain.NotificationPayload{
	RecipientUsername: "bob",
	RecipientEmail:    "bob@example.com",
	RecipientName:     "Bob",
	SenderName:        "Alice",
	SenderUsername:    "alice",
	SenderEmail:       "alice@example.com",
}

func TestPublisher_Enqueue(t *testing.T) {
	fake := &fakeSQS{}
	p := NewPublisher(fake, "https://sqs.us-east-1.amazonaws.com/123/notify")

	id, err := p.Enqueue(context.Background(), testPayload)
	if err != nil || id != "msg-1" {
		t.Fatalf("enqueue = %q, %v", id, err)
	}
	in := fake.inputs[0]
	if sdkaws.ToString(in.QueueUrl) != p.QueueURL {
		t.Fatalf("queue url = %s", sdkaws.ToString(in.QueueUrl))
	}
	var body domain.NotificationPayload
	if err := json.Unmarshal([]byte(sdkaws.ToString(in.MessageBody)), &body); err != nil || body != testPayload {
		t.Fatalf("body = %+v, %v", body, err)
	}
	if got := sdkaws.ToString(in.MessageAttributes["sender_username"].StringValue); got != "alice" {
		t.Fatalf("sender attr = %q", got)
	}
	if got := sdkaws.ToString(in.MessageAttributes["recipient_username"].DataType); got != "String" {
		t.Fatalf("attr data type = %q", got)
	}
}

func TestPublisher_SendError(t *testing.T) {
	boom := errors.New("throttled")
	p := NewPublisher(&fakeSQS{err: boom}, "q")
	if _, err := p.Enqueue(context.Background(), testPayload); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestOutbox_Enqueue(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	id, err := NewOutbox(db).Enqueue(context.Background(), testPayload)
	if err != nil || id == "" {
		t.Fatalf("enqueue = %q, %v", id, err)
	}
	jobs, err := repo.ListQueuedNotifications(context.Background(), db, 10)
	if err != nil || len(jobs) != 1 || jobs[0].ID != id {
		t.Fatalf("jobs = %+v, %v", jobs, err)
	}
}
