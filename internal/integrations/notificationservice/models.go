package notificationservice

// Notification уведомление пользователю или администратору
type Notification struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	RedirectPath string `json:"redirectPath"`
	ReceiverID   int64  `json:"receiverId"`
}
