package constants

type EventName string

const (
	EventTaskCreated       EventName = "task-created"
	EventTaskUpdated       EventName = "task-update"
	EventTaskDeleted       EventName = "task-deleted"
	EventTaskStatusUpdated EventName = "task-status-updated"
	EventTaskEscalated     EventName = "task-escalated"
	EventTaskRollback      EventName = "task-rollback"
)

const AdminChannel = "admin"

func UserChannel(userID string) string {
	return "user-" + userID
}
