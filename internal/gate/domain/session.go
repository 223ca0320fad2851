package domain

// LoginResult is returned to the dashboard after a successful login.
type LoginResult struct {
	Token   string         `json:"token"`
	Subject SubjectProfile `json:"data"`
}

// SubjectProfile is the subset of subject fields the dashboard renders.
type SubjectProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Profile projects a Subject into its dashboard-facing shape.
func (s Subject) Profile() SubjectProfile {
	return SubjectProfile{
		ID:       s.ID,
		Email:    s.Email,
		Username: s.Username,
		Phone:    s.Phone,
	}
}
