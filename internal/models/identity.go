package model

import "task-kpi-system.com/task-kpi-system/internal/constants"

// Identity is the verified caller supplied by the authentication layer.
type Identity struct {
	UserID string
	Role   constants.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}
