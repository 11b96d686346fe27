package usecases

import (
	"context"
	"errors"
	"strings"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
	"easy_admin/internal/interfaces"

	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
)

const (
	PlatformWhatsApp = "whatsapp"
	PlatformTelegram = "telegram"
	PlatformWeb      = "web"

	countryCode = "55"
)

// Denial reasons reported in AccessDecision.Reason
const (
	ReasonInvalidSender   = "invalid_sender"
	ReasonUnknownPhone    = "unknown_phone"
	ReasonInactiveUser    = "inactive_user"
	ReasonChatbotDisabled = "chatbot_disabled"
)

// AccessUsecase decides whether an inbound chatbot sender is on some
// company's allow-list.
type AccessUsecase struct {
	store   interfaces.Store
	limiter *infrastructure.MessageRateLimiter
	metrics *infrastructure.Metrics
	logger  *zap.Logger
}

func NewAccessUsecase(store interfaces.Store, limiter *infrastructure.MessageRateLimiter, metrics *infrastructure.Metrics, logger *zap.Logger) *AccessUsecase {
	return &AccessUsecase{
		store:   store,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// SenderPhone extracts the allow-list phone from a platform sender id.
// WhatsApp JIDs keep only their user part; a leading Brazilian country code
// is dropped from 12 and 13 digit numbers.
func SenderPhone(sender string) (string, error) {
	raw := strings.TrimSpace(sender)
	if strings.Contains(raw, "@") {
		jid, err := types.ParseJID(raw)
		if err != nil {
			return "", entities.ErrInvalidPhone
		}
		raw = jid.User
	}

	digits := NormalizeDigits(raw)
	if (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, countryCode) {
		digits = digits[len(countryCode):]
	}
	return ValidatePhone(digits)
}

// Authorize answers for msg.From on msg.Platform. Floods from one sender get
// entities.ErrRateLimited before the store is consulted.
func (uc *AccessUsecase) Authorize(ctx context.Context, msg entities.Message) (*entities.AccessDecision, error) {
	phone, err := SenderPhone(msg.From)
	if err != nil {
		return uc.decide(msg.Platform, &entities.AccessDecision{Reason: ReasonInvalidSender}), nil
	}

	if uc.limiter != nil && !uc.limiter.Allow(phone) {
		uc.logger.Warn("sender rate limited",
			zap.String("platform", msg.Platform),
			zap.String("phone", phone),
			zap.Duration("retry_in", uc.limiter.WaitTime(phone)),
		)
		return nil, entities.ErrRateLimited
	}

	users, err := uc.store.FindUsersByPhone(ctx, phone)
	if err != nil {
		return nil, entities.Persistence("find users", err)
	}

	decision := &entities.AccessDecision{Phone: phone, Reason: ReasonUnknownPhone}
	companies := map[int64]*entities.Company{}
	for _, u := range users {
		if !u.IsActive() {
			decision.Reason = ReasonInactiveUser
			continue
		}

		company, ok := companies[u.CompanyID]
		if !ok {
			company, err = uc.store.GetCompany(ctx, u.CompanyID)
			if errors.Is(err, entities.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, entities.Persistence("get company", err)
			}
			companies[u.CompanyID] = company
		}

		if company.IsChatbotEnabled() {
			return uc.decide(msg.Platform, &entities.AccessDecision{
				Allowed:   true,
				Phone:     phone,
				CompanyID: company.ID,
				UserID:    u.ID,
			}), nil
		}
		decision.Reason = ReasonChatbotDisabled
	}
	return uc.decide(msg.Platform, decision), nil
}

func (uc *AccessUsecase) decide(platform string, d *entities.AccessDecision) *entities.AccessDecision {
	uc.metrics.AccessDecision(platform, d.Allowed)
	uc.logger.Debug("access decision",
		zap.String("platform", platform),
		zap.String("phone", d.Phone),
		zap.Bool("allowed", d.Allowed),
		zap.String("reason", d.Reason),
	)
	return d
}
