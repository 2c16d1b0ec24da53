// AngelaMos | 2026
// dto.go

package notify

// chatMessageRequest is the lenient payload accepted on the Chat
// message endpoint: either a notifier message under text, or the
// signup fields posted directly as JSON keys.
type chatMessageRequest struct {
	Text        string `json:"text"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"created_at"`
}

// googleChatEvent is the strict Google Chat webhook event shape: the
// message text lives under message.text, with a top-level text
// fallback for manual posts.
type googleChatEvent struct {
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Text string `json:"text"`
}

// chatMessageAck mirrors the Google Chat REST message resource closely
// enough for the notifier to treat the CRM as a Chat space.
type chatMessageAck struct {
	Name       string     `json:"name"`
	Sender     chatSender `json:"sender"`
	Text       string     `json:"text"`
	CreateTime string     `json:"createTime"`
}

type chatSender struct {
	Name string `json:"name"`
}

type chatErrorResponse struct {
	Error chatErrorBody `json:"error"`
}

type chatErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ingestedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Priority  string `json:"priority"`
}

type webhookSuccessResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    ingestedUser `json:"user"`
}

type webhookErrorResponse struct {
	Error string `json:"error"`
}

type simulateResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Users   []ingestedUser `json:"users"`
}
