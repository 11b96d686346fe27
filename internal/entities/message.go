package entities

type Message struct {
	From     string
	Content  string
	Platform string // "whatsapp", "telegram", "web"
}

// AccessDecision is the chatbot gate's answer for one inbound sender
type AccessDecision struct {
	Allowed   bool   `json:"allowed"`
	Phone     string `json:"phone"`
	CompanyID int64  `json:"company_id,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
