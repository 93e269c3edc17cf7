package domain

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// UserRef is the reduced user record nested in workloads and projects.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Role: u.Role}
}

// CanReviewWorkloads reports whether role has a workload review queue.
func CanReviewWorkloads(role Role) bool {
	return role == RoleMentor || role == RoleTeacher
}

// CanReviewProjects reports whether role may approve or reject projects.
func CanReviewProjects(role Role) bool {
	return role == RoleTeacher
}

// CanViewAllWorkloads reports whether role may browse every submitted workload.
func CanViewAllWorkloads(role Role) bool {
	return role == RoleTeacher
}

// FilterByRole keeps the users whose role is r, preserving order.
func FilterByRole(users []User, r Role) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Role == r {
			out = append(out, u)
		}
	}
	return out
}
