package constants

type TaskStatus string

const (
	StatusInProgress TaskStatus = "in-progress"
	StatusClosed     TaskStatus = "closed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusInProgress || s == StatusClosed
}
