package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
	api "easy_admin/internal/interfaces/http"
	"easy_admin/internal/repository"
	"easy_admin/internal/usecases"
)

const (
	jwtSecret     = "test-secret"
	adminEmail    = "admin@easy.com"
	adminPassword = "admin123"
)

type sentReply struct {
	to       string
	text     string
	keyboard any
}

type fakeTelegram struct {
	replies []sentReply
}

func (f *fakeTelegram) Enabled() bool { return true }

func (f *fakeTelegram) SendMessageWithKeyboard(to, content string, keyboard any) error {
	f.replies = append(f.replies, sentReply{to: to, text: content, keyboard: keyboard})
	return nil
}

type fakeDevice struct {
	qr    string
	phone string
}

func (f *fakeDevice) GetQR() string          { return f.qr }
func (f *fakeDevice) IsLoggedIn() bool       { return f.phone != "" }
func (f *fakeDevice) IsConnected() bool      { return f.phone != "" }
func (f *fakeDevice) GetPhoneNumber() string { return f.phone }

type harness struct {
	router   *gin.Engine
	store    *repository.MemoryStore
	telegram *fakeTelegram
	whatsapp *fakeDevice
}

func newHarness() *harness {
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	registry := prometheus.NewRegistry()
	metrics := infrastructure.NewMetrics(registry)

	auth := usecases.NewAuthUsecase(store, store, jwtSecret, logger)
	Expect(auth.EnsureAdmin(context.Background(), adminEmail, adminPassword)).To(Succeed())

	h := &harness{
		router:   gin.New(),
		store:    store,
		telegram: &fakeTelegram{},
		whatsapp: &fakeDevice{qr: "2@pairing-ref"},
	}
	access := usecases.NewAccessUsecase(store, nil, metrics, logger)
	api.SetupRoutes(h.router, api.Deps{
		Companies: usecases.NewCompanyUsecase(store, metrics, logger),
		Auth:      auth,
		Access:    access,
		Telegram:  usecases.NewTelegramGate(access, h.telegram, nil, logger),
		WhatsApp:  h.whatsapp,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:    logger,
	}, api.NewMiddleware(jwtSecret, logger))
	return h
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) login(email, password string, role entities.AccountRole) string {
	w := h.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "senha": password, "role": role})
	Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp.Token
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

var _ = Describe("HTTP API", func() {
	var (
		h          *harness
		adminToken string
	)

	BeforeEach(func() {
		h = newHarness()
		adminToken = h.login(adminEmail, adminPassword, entities.RolePlatformAdmin)
	})

	createCompany := func(name, taxID string, phones ...string) map[string]any {
		w := h.do(http.MethodPost, "/api/admin/companies", adminToken, map[string]any{
			"name": name, "tax_id": taxID, "phones": phones,
		})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		return decode(w)
	}

	It("serves health and metrics", func() {
		Expect(h.do(http.MethodGet, "/healthz", "", nil).Code).To(Equal(http.StatusOK))

		w := h.do(http.MethodGet, "/metrics", "", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
	})

	Describe("login", func() {
		It("rejects a wrong password", func() {
			w := h.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": adminEmail, "senha": "nope"})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decode(w)["error"]).To(Equal("invalid_credentials"))
		})

		It("rejects an unknown role", func() {
			w := h.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": adminEmail, "senha": adminPassword, "role": "root"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("admin companies", func() {
		It("requires a token", func() {
			w := h.do(http.MethodGet, "/api/admin/companies", "", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			w = h.do(http.MethodGet, "/api/admin/companies", "garbage", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("creates and lists companies", func() {
			created := createCompany("Acme", "12.345.678/0001-99", "(11) 99999-9999", "11888888888")
			Expect(created["tax_id"]).To(Equal("12345678000199"))
			Expect(created["tax_id_formatted"]).To(Equal("12.345.678/0001-99"))
			Expect(created["phones"]).To(ConsistOf("11999999999", "11888888888"))
			Expect(created["app_key"]).To(HavePrefix("easy_"))

			w := h.do(http.MethodGet, "/api/admin/companies", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var list []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(1))
		})

		It("maps validation errors", func() {
			w := h.do(http.MethodPost, "/api/admin/companies", adminToken, map[string]any{
				"name": "Acme", "tax_id": "123", "phones": []string{"11999999999"},
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(Equal("invalid_tax_id"))

			w = h.do(http.MethodPost, "/api/admin/companies", adminToken, map[string]any{
				"name": "Acme", "tax_id": "12345678000199", "phones": []string{"abc"},
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(Equal("no_valid_phones"))
		})

		It("rejects a duplicate tax id", func() {
			createCompany("Acme", "12345678000199", "11999999999")
			w := h.do(http.MethodPost, "/api/admin/companies", adminToken, map[string]any{
				"name": "Other", "tax_id": "12345678000199", "phones": []string{"11888888888"},
			})
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(decode(w)["error"]).To(Equal("duplicate_tax_id"))
		})

		It("updates, lists users and deletes", func() {
			created := createCompany("Acme", "12345678000199", "11999999999", "11888888888")
			path := fmt.Sprintf("/api/admin/companies/%v", created["id"])

			w := h.do(http.MethodPut, path, adminToken, map[string]any{
				"name": "Acme Ltda", "tax_id": "12345678000199", "status": "inactive",
				"phones": []string{"11999999999", "11777777777"},
			})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			Expect(decode(w)["status"]).To(Equal("inactive"))

			w = h.do(http.MethodGet, path+"/users", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var users []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &users)).To(Succeed())
			Expect(users).To(HaveLen(2))
			Expect(users[1]["nome"]).To(Equal("Contato 2"))

			Expect(h.do(http.MethodDelete, path, adminToken, nil).Code).To(Equal(http.StatusNoContent))
			w = h.do(http.MethodGet, path, adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["error"]).To(Equal("not_found"))
		})

		It("rejects a malformed id", func() {
			w := h.do(http.MethodGet, "/api/admin/companies/abc", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("company dashboard", func() {
		var (
			companyID    any
			companyToken string
		)

		BeforeEach(func() {
			created := createCompany("Acme", "12345678000199", "11999999999")
			companyID = created["id"]

			w := h.do(http.MethodPost, fmt.Sprintf("/api/admin/companies/%v/admins", companyID), adminToken, map[string]any{
				"nome": "Maria", "email": "maria@acme.com", "senha": "maria123",
			})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			companyToken = h.login("maria@acme.com", "maria123", entities.RoleCompanyAdmin)
		})

		It("keeps company admins out of admin routes", func() {
			w := h.do(http.MethodGet, "/api/admin/companies", companyToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w)["error"]).To(Equal("forbidden"))

			w = h.do(http.MethodGet, "/api/company", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("shows the own company", func() {
			w := h.do(http.MethodGet, "/api/company", companyToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["company"]).To(HaveKeyWithValue("id", companyID))
			Expect(resp["users"]).To(HaveLen(1))
		})

		It("adds and removes phones", func() {
			w := h.do(http.MethodPost, "/api/company/phones", companyToken, map[string]string{"telefone": "(11) 98888-7777"})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			user := decode(w)
			Expect(user["nome"]).To(Equal("Contato 2"))

			w = h.do(http.MethodPost, "/api/company/phones", companyToken, map[string]string{"telefone": "11988887777"})
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(decode(w)["error"]).To(Equal("duplicate_phone"))

			w = h.do(http.MethodPost, "/api/company/phones", companyToken, map[string]string{"telefone": "123"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			w = h.do(http.MethodDelete, fmt.Sprintf("/api/company/users/%v", user["id_user"]), companyToken, nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = h.do(http.MethodDelete, fmt.Sprintf("/api/company/users/%v", user["id_user"]), companyToken, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("renders the credentials QR code", func() {
			w := h.do(http.MethodGet, "/api/company/credentials/qr", companyToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("image/png"))
			Expect(w.Body.Bytes()).To(HavePrefix("\x89PNG"))
		})
	})

	Describe("whatsapp device", func() {
		It("reports the pairing state", func() {
			w := h.do(http.MethodGet, "/api/admin/whatsapp/status", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["enabled"]).To(BeTrue())
			Expect(resp["logged_in"]).To(BeFalse())
			Expect(resp["pending"]).To(BeTrue())
		})

		It("renders the pairing QR until linked", func() {
			w := h.do(http.MethodGet, "/api/admin/whatsapp/qr", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.Bytes()).To(HavePrefix("\x89PNG"))

			h.whatsapp.qr = ""
			h.whatsapp.phone = "5511900000000"
			w = h.do(http.MethodGet, "/api/admin/whatsapp/qr", adminToken, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("webhooks", func() {
		BeforeEach(func() {
			createCompany("Acme", "12345678000199", "11999999999")
		})

		It("authorizes WhatsApp senders on the allow-list", func() {
			w := h.do(http.MethodPost, "/webhook/whatsapp", "", map[string]string{"from": "5511999999999@s.whatsapp.net", "content": "oi"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["allowed"]).To(BeTrue())

			w = h.do(http.MethodPost, "/webhook/whatsapp", "", map[string]string{"from": "5511888888888@s.whatsapp.net"})
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["allowed"]).To(BeFalse())
			Expect(resp["reason"]).To(Equal(usecases.ReasonUnknownPhone))
		})

		It("requires a sender", func() {
			w := h.do(http.MethodPost, "/webhook/web", "", map[string]string{"content": "oi"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("asks Telegram users for their contact", func() {
			update := map[string]any{
				"update_id": 1,
				"message": map[string]any{
					"message_id": 10,
					"date":       0,
					"chat":       map[string]any{"id": 555, "type": "private"},
					"from":       map[string]any{"id": 777, "is_bot": false, "first_name": "Ana"},
					"text":       "/start",
				},
			}
			w := h.do(http.MethodPost, "/webhook/telegram", "", update)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["status"]).To(Equal("contact_requested"))

			Expect(h.telegram.replies).To(HaveLen(1))
			Expect(h.telegram.replies[0].to).To(Equal("555"))
			Expect(h.telegram.replies[0].keyboard).To(BeAssignableToTypeOf(tgbotapi.ReplyKeyboardMarkup{}))
		})

		It("authorizes a shared Telegram contact", func() {
			update := map[string]any{
				"update_id": 2,
				"message": map[string]any{
					"message_id": 11,
					"date":       0,
					"chat":       map[string]any{"id": 555, "type": "private"},
					"from":       map[string]any{"id": 777, "is_bot": false, "first_name": "Ana"},
					"contact":    map[string]any{"phone_number": "+5511999999999", "first_name": "Ana", "user_id": 777},
				},
			}
			w := h.do(http.MethodPost, "/webhook/telegram", "", update)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["allowed"]).To(BeTrue())
			Expect(h.telegram.replies).To(HaveLen(1))
			Expect(strings.HasPrefix(h.telegram.replies[0].text, "✅")).To(BeTrue())
		})

		It("rejects a forwarded Telegram contact", func() {
			update := map[string]any{
				"update_id": 3,
				"message": map[string]any{
					"message_id": 12,
					"date":       0,
					"chat":       map[string]any{"id": 555, "type": "private"},
					"from":       map[string]any{"id": 777, "is_bot": false, "first_name": "Ana"},
					"contact":    map[string]any{"phone_number": "+5511999999999", "first_name": "Bia", "user_id": 888},
				},
			}
			w := h.do(http.MethodPost, "/webhook/telegram", "", update)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["allowed"]).To(BeFalse())
		})

		It("ignores updates without a message", func() {
			w := h.do(http.MethodPost, "/webhook/telegram", "", map[string]any{"update_id": 4})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["status"]).To(Equal("ignored"))
		})
	})
})
