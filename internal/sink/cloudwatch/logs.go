package cloudwatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"

	"go.uber.org/zap"
)

type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	LogGroup  string
}

// api is the part of *cloudwatchlogs.Client used here.
type api interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

type Client struct {
	cw       api
	logGroup string
	logger   *logging.Logger
}

func New(ctx context.Context, opts Options, logger *logging.Logger) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("cloudwatch: failed to load aws config: %w", err)
	}
	return newClient(cloudwatchlogs.NewFromConfig(awsCfg), opts.LogGroup, logger), nil
}

func newClient(cw api, logGroup string, logger *logging.Logger) *Client {
	return &Client{
		cw:       cw,
		logGroup: logGroup,
		logger:   logger,
	}
}

// EnsureGroup creates the configured log group. An existing group is
// success.
func (c *Client) EnsureGroup(ctx context.Context) error {
	_, err := c.cw.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(c.logGroup),
	})
	if err != nil {
		if alreadyExists(err) {
			c.logger.Info("log group already exists", zap.String("log_group", c.logGroup))
			return nil
		}
		return fmt.Errorf("cloudwatch: create log group %s: %w", c.logGroup, err)
	}

	c.logger.Info("created log group", zap.String("log_group", c.logGroup))
	return nil
}

func (c *Client) EnsureStream(ctx context.Context, stream string) error {
	_, err := c.cw.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(c.logGroup),
		LogStreamName: aws.String(stream),
	})
	if err != nil && !alreadyExists(err) {
		return fmt.Errorf("cloudwatch: create log stream %s: %w", stream, err)
	}
	return nil
}

// Service limits for one PutLogEvents call. Each event counts its message
// length plus a fixed overhead towards the byte limit.
const (
	maxBatchEvents   = 10000
	maxBatchBytes    = 1048576
	perEventOverhead = 26
)

var ErrBatchTooLarge = errors.New("cloudwatch: batch exceeds PutLogEvents limits")

// PutEvents submits events in a single PutLogEvents call, so the day is
// either accepted as a whole or not at all. A batch over the service
// limits is rejected before anything is sent. events must already be
// sorted by timestamp; an empty slice is skipped because the service
// rejects it.
func (c *Client) PutEvents(ctx context.Context, stream string, events []logmanager.ExportEvent) error {
	if len(events) == 0 {
		c.logger.Debug("no log events to submit", zap.String("log_stream", stream))
		return nil
	}

	if err := checkBatch(events); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBatchTooLarge, stream, err)
	}

	input := make([]types.InputLogEvent, len(events))
	for i, event := range events {
		input[i] = types.InputLogEvent{
			Timestamp: aws.Int64(event.Timestamp),
			Message:   aws.String(event.Message),
		}
	}

	out, err := c.cw.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(c.logGroup),
		LogStreamName: aws.String(stream),
		LogEvents:     input,
	})
	if err != nil {
		return fmt.Errorf("cloudwatch: put log events to %s: %w", stream, err)
	}

	if rejected := out.RejectedLogEventsInfo; rejected != nil {
		c.logger.Warn("some log events were rejected",
			zap.String("log_stream", stream),
			zap.Int32p("too_old_end_index", rejected.TooOldLogEventEndIndex),
			zap.Int32p("too_new_start_index", rejected.TooNewLogEventStartIndex),
			zap.Int32p("expired_end_index", rejected.ExpiredLogEventEndIndex),
		)
	}
	return nil
}

func checkBatch(events []logmanager.ExportEvent) error {
	if len(events) > maxBatchEvents {
		return fmt.Errorf("%d events, limit %d", len(events), maxBatchEvents)
	}
	size := 0
	for _, event := range events {
		size += len(event.Message) + perEventOverhead
	}
	if size > maxBatchBytes {
		return fmt.Errorf("%d bytes, limit %d", size, maxBatchBytes)
	}
	return nil
}

func alreadyExists(err error) bool {
	var exists *types.ResourceAlreadyExistsException
	return errors.As(err, &exists)
}
