package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	"task-kpi-system.com/task-kpi-system/internal/metrics"
	model "task-kpi-system.com/task-kpi-system/internal/models"
	"task-kpi-system.com/task-kpi-system/internal/pubsub"
)

// Envelope is the payload published on every channel. Task is nil for
// deletions.
type Envelope struct {
	Event  constants.EventName `json:"event"`
	TaskID string              `json:"taskId"`
	Task   *model.Task         `json:"task"`
	At     time.Time           `json:"at"`
}

type Notifier struct {
	transport pubsub.Transport
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewNotifier(transport pubsub.Transport, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		transport: transport,
		metrics:   m,
		logger:    logger,
	}
}

// Publish sends event for task to the admin channel and to the channel of
// every user holding a stake in the task.
func (n *Notifier) Publish(ctx context.Context, event constants.EventName, task *model.Task) error {
	return n.publish(ctx, Envelope{Event: event, TaskID: task.ID, Task: task, At: time.Now().UTC()}, Channels(task))
}

// PublishDeleted announces the removal of task. The channels are derived
// from its last committed state.
func (n *Notifier) PublishDeleted(ctx context.Context, task *model.Task) error {
	return n.publish(ctx, Envelope{Event: constants.EventTaskDeleted, TaskID: task.ID, At: time.Now().UTC()}, Channels(task))
}

func (n *Notifier) publish(ctx context.Context, env Envelope, channels []string) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", env.Event, err)
	}

	var errs []error
	for _, ch := range channels {
		if err := n.transport.Publish(ctx, ch, payload); err != nil {
			n.metrics.PublishFailed(string(env.Event))
			errs = append(errs, fmt.Errorf("publish %s to %s: %w", env.Event, ch, err))
			continue
		}
		n.metrics.EventPublished(string(env.Event))
	}

	n.logger.Debug("task event published",
		"event", env.Event,
		"task_id", env.TaskID,
		"channels", channels)

	return errors.Join(errs...)
}

// Channels lists the admin channel followed by the user channels of the
// current owner, the original owner, the creator and the escalating user,
// without duplicates.
func Channels(task *model.Task) []string {
	channels := []string{constants.AdminChannel}
	seen := make(map[string]struct{}, 4)

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		channels = append(channels, constants.UserChannel(id))
	}

	add(task.UserID)
	if task.OriginalUserID != nil {
		add(*task.OriginalUserID)
	}
	add(task.CreatedByID)
	if task.EscalatedByID != nil {
		add(*task.EscalatedByID)
	}

	return channels
}
