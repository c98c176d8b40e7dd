//go:build gcloud

package notifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type CloudTasksConfig struct {
	ProjectID  string
	LocationID string
	QueueID    string
	TargetURL  string
	// Endpoint points the client at an emulator. Empty uses Google's API.
	Endpoint string
	// ServiceAccountEmail signs an OIDC token for the target. Empty sends
	// the task unauthenticated.
	ServiceAccountEmail string
}

type CloudTasksSender struct {
	client              *cloudtasks.Client
	queuePath           string
	targetURL           string
	serviceAccountEmail string
}

func NewCloudTasksSender(ctx context.Context, cfg CloudTasksConfig) (*CloudTasksSender, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts,
			option.WithEndpoint(cfg.Endpoint),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	client, err := cloudtasks.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud tasks client: %w", err)
	}

	return &CloudTasksSender{
		client:              client,
		queuePath:           fmt.Sprintf("projects/%s/locations/%s/queues/%s", cfg.ProjectID, cfg.LocationID, cfg.QueueID),
		targetURL:           cfg.TargetURL,
		serviceAccountEmail: cfg.ServiceAccountEmail,
	}, nil
}

// Send enqueues one HTTP task per notification. The task name is derived from
// the task, occurrence and device token so a retried tick cannot enqueue twice.
func (s *CloudTasksSender) Send(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(newPushMessage(notification))
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	taskName := fmt.Sprintf("%s/tasks/%s", s.queuePath, CloudTaskID(notification))

	httpReq := &taskspb.HttpRequest{
		HttpMethod: taskspb.HttpMethod_POST,
		Url:        s.targetURL,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}
	if s.serviceAccountEmail != "" {
		httpReq.AuthorizationHeader = &taskspb.HttpRequest_OidcToken{
			OidcToken: &taskspb.OidcToken{
				ServiceAccountEmail: s.serviceAccountEmail,
				Audience:            s.targetURL,
			},
		}
	}

	req := &taskspb.CreateTaskRequest{
		Parent: s.queuePath,
		Task: &taskspb.Task{
			Name:         taskName,
			MessageType:  &taskspb.Task_HttpRequest{HttpRequest: httpReq},
			ScheduleTime: timestamppb.Now(),
		},
	}

	created, err := s.client.CreateTask(ctx, req)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			slog.DebugContext(ctx, "notification task already enqueued",
				slog.String("task_name", taskName),
				slog.String("task_id", notification.TaskID),
			)
			return nil
		}
		return fmt.Errorf("failed to create cloud task: %w", err)
	}

	slog.DebugContext(ctx, "notification task registered to Cloud Tasks",
		slog.String("task_name", created.Name),
		slog.String("task_id", notification.TaskID),
		slog.String("device_id", notification.DeviceID),
	)
	return nil
}

func (s *CloudTasksSender) Close() error {
	return s.client.Close()
}

// CloudTaskID builds the deterministic Cloud Tasks task id for a notification.
func CloudTaskID(n domain.Notification) string {
	sum := sha256.Sum256([]byte(n.Token))
	return fmt.Sprintf("%s-%d-%s", n.TaskID, n.OccurrenceAt.Unix(), hex.EncodeToString(sum[:])[:16])
}
