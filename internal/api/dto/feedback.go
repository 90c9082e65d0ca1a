package dto

// SubmitFeedbackRequest submits a feedback entry
type SubmitFeedbackRequest struct {
	UserID   int64  `json:"userId,omitempty"`
	Category string `json:"category" validate:"required,oneof=bug feature other"`
	Message  string `json:"message" validate:"required,min=1,max=4000"`
}
