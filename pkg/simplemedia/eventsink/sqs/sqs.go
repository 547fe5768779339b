// Package sqs publishes video lifecycle events to an Amazon SQS queue.
package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Event types carried in the message body and the "event_type" attribute
const (
	EventVideoPublished = "video.published"
	EventVideoUpdated   = "video.updated"
	EventVideoDeleted   = "video.deleted"
)

// Client is the subset of the SQS API the sink uses
type Client interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Config holds the queue settings
type Config struct {
	QueueURL string
	Region   string
	Endpoint string
}

// Message is the JSON body sent for every event
type Message struct {
	Type       string    `json:"type"`
	VideoID    uuid.UUID `json:"video_id"`
	Title      string    `json:"title,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
	VideoURL   string    `json:"video_url,omitempty"`
	Published  bool      `json:"is_published"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink implements simplemedia.EventSink on top of SQS
type Sink struct {
	client   Client
	queueURL string
	now      func() time.Time
}

// New builds a sink using the default AWS credential chain
func New(ctx context.Context, config Config) (*Sink, error) {
	if config.QueueURL == "" {
		return nil, errors.New("queue URL is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	return NewWithClient(client, config.QueueURL), nil
}

// NewWithClient builds a sink around an existing client
func NewWithClient(client Client, queueURL string) *Sink {
	return &Sink{client: client, queueURL: queueURL, now: time.Now}
}

func (s *Sink) VideoPublished(ctx context.Context, video *simplemedia.Video) error {
	return s.send(ctx, videoMessage(EventVideoPublished, video))
}

func (s *Sink) VideoUpdated(ctx context.Context, video *simplemedia.Video) error {
	return s.send(ctx, videoMessage(EventVideoUpdated, video))
}

func (s *Sink) VideoDeleted(ctx context.Context, videoID uuid.UUID) error {
	return s.send(ctx, Message{Type: EventVideoDeleted, VideoID: videoID})
}

func videoMessage(eventType string, video *simplemedia.Video) Message {
	return Message{
		Type:       eventType,
		VideoID:    video.ID,
		Title:      video.Title,
		ExternalID: video.ExternalID,
		VideoURL:   video.VideoURL,
		Published:  video.IsPublished,
	}
}

func (s *Sink) send(ctx context.Context, msg Message) error {
	msg.OccurredAt = s.now().UTC()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", msg.Type, err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send %s event for video %s: %w", msg.Type, msg.VideoID, err)
	}
	return nil
}

var _ simplemedia.EventSink = (*Sink)(nil)
