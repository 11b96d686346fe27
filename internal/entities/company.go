package entities

import "time"

type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

func (s CompanyStatus) Valid() bool {
	return s == CompanyActive || s == CompanyInactive
}

// Company is a tenant of the console. Credentials are system-assigned at
// creation and never taken from form input.
type Company struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	TaxID         string        `json:"tax_id"` // 14 digits, normalized
	Status        CompanyStatus `json:"status"`
	ChatbotAccess bool          `json:"chatbot_access"`
	APIToken      string        `json:"api_token"`
	AppKey        string        `json:"app_key"`
	AppSecret     string        `json:"app_secret"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsChatbotEnabled reports whether the company's allow-list is honored by the chatbot
func (c *Company) IsChatbotEnabled() bool {
	return c.Status == CompanyActive && c.ChatbotAccess
}

// CompanySpec holds the user-editable company fields plus, on creation, the
// generated credentials.
type CompanySpec struct {
	Name          string        `json:"name"`
	TaxID         string        `json:"tax_id"`
	Status        CompanyStatus `json:"status"`
	ChatbotAccess bool          `json:"chatbot_access"`
	Credentials   Credentials   `json:"-"`
}

type Credentials struct {
	APIToken  string `json:"api_token"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}
