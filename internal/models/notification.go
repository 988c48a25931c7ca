package models

// Notification job types consumed by the dispatch queue.
const (
	NotificationTypeRegistrationStatus = "registration_status"
	NotificationTypeInvitation         = "invitation"
)

// RegistrationStatusNotification tells an applicant about a moderation
// decision. Sent only for approved/rejected transitions that carry a message.
type RegistrationStatusNotification struct {
	Email   string             `json:"email"`
	Name    string             `json:"name"`
	Course  string             `json:"course"`
	Status  RegistrationStatus `json:"status"`
	Message string             `json:"message"`
}

// InvitationNotification carries the onboarding links for a new user.
type InvitationNotification struct {
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	VerificationLink string `json:"verificationLink"`
	PasswordLink     string `json:"passwordLink"`
}
