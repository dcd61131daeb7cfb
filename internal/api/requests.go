// requests.go - Request payloads and their validation
package api

// uploadExpensesRequest carries a base64-encoded CSV payload.
type uploadExpensesRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Data   string `json:"data"` // Base64-encoded file content
}

func (r *uploadExpensesRequest) validate() error {
	if r.UserID == "" {
		return NewValidationError("userId")
	}
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

// chatRequest asks a natural-language question about a user's expenses.
type chatRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

func (r *chatRequest) validate() error {
	if r.UserID == "" {
		return NewValidationError("userId")
	}
	if r.Question == "" {
		return NewValidationError("question")
	}
	return nil
}
