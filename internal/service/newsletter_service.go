package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blog-edge/internal/config"
	"blog-edge/internal/domain"
	apperrors "blog-edge/pkg/errors"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

// NewsletterService handles subscription and unsubscription against the
// shared store, with owner notification and a welcome email through
// Resend. A failed welcome email never fails the subscription.
type NewsletterService struct {
	store  *kv.Client
	resend *ResendClient
	cfg    *config.Config
	logger *logger.Logger
}

// NewNewsletterService creates a new newsletter service
func NewNewsletterService(store *kv.Client, resend *ResendClient, cfg *config.Config, logger *logger.Logger) *NewsletterService {
	return &NewsletterService{
		store:  store,
		resend: resend,
		cfg:    cfg,
		logger: logger,
	}
}

// Subscribe registers a new subscriber. Duplicate emails and the 5/hour
// per-IP cap are rejected with AppErrors; store failures surface as
// internal errors.
func (s *NewsletterService) Subscribe(ctx context.Context, email, clientIP string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperrors.NewValidationError("Email is required", nil)
	}
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return apperrors.NewValidationError("Invalid email address", nil)
	}

	nowMs := time.Now().UnixMilli()
	limitKey := s.store.KeyBuilder.KeySubscribeLimit(clientIP, kv.HourBucket(nowMs))
	if err := s.checkLimit(ctx, limitKey, kv.MaxSubscribesPerHour); err != nil {
		return err
	}

	subscriberKey := s.store.KeyBuilder.KeySubscriber(email)
	if _, err := s.store.Get(ctx, subscriberKey); err == nil {
		return apperrors.NewValidationError("Email already subscribed", nil)
	} else if err != kv.Nil {
		return apperrors.NewInternalError("failed to check subscriber", err)
	}

	subscriber := domain.Subscriber{
		Email:        email,
		SubscribedAt: time.Now().UTC().Format(time.RFC3339),
		Preferences: domain.SubscriberPreferences{
			Tags: []string{},
		},
		EmailsSent: map[string]string{},
	}

	payload, err := json.Marshal(subscriber)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal subscriber", err)
	}
	if err := s.store.Set(ctx, subscriberKey, payload, kv.TTLSubscriber); err != nil {
		return apperrors.NewInternalError("failed to store subscriber", err)
	}

	s.logger.WithField("email", email).Info("Subscriber stored")

	if _, err := s.resend.Send(ctx, EmailMessage{
		From:    s.cfg.SenderEmail,
		To:      s.cfg.NotifyEmail,
		Subject: "New Subscriber Alert",
		Text:    fmt.Sprintf("New subscriber: %s", email),
	}); err != nil {
		return apperrors.NewExternalError("failed to send notification email", err)
	}

	if err := s.sendWelcome(ctx, email); err != nil {
		s.logger.WithError(err).Error("Failed to send welcome email")
	}

	return nil
}

// Unsubscribe marks a subscriber as unsubscribed; the record is kept so
// repeat signups can be distinguished from new ones
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperrors.NewValidationError("Email is required", nil)
	}

	subscriberKey := s.store.KeyBuilder.KeySubscriber(email)
	raw, err := s.store.Get(ctx, subscriberKey)
	if err == kv.Nil {
		return apperrors.NewNotFoundError("Email not found")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to load subscriber", err)
	}

	var subscriber domain.Subscriber
	if err := json.Unmarshal([]byte(raw), &subscriber); err != nil {
		return apperrors.NewInternalError("failed to parse subscriber", err)
	}

	subscriber.Preferences.Unsubscribed = true

	payload, err := json.Marshal(subscriber)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal subscriber", err)
	}
	if err := s.store.Set(ctx, subscriberKey, payload, kv.TTLSubscriber); err != nil {
		return apperrors.NewInternalError("failed to store subscriber", err)
	}

	s.logger.WithField("email", email).Info("Subscriber unsubscribed")
	return nil
}

func (s *NewsletterService) checkLimit(ctx context.Context, key string, max int64) error {
	raw, err := s.store.Get(ctx, key)
	if err != nil && err != kv.Nil {
		return apperrors.NewInternalError("failed to check rate limit", err)
	}
	var count int64
	if err == nil {
		count, _ = strconv.ParseInt(raw, 10, 64)
	}
	if count >= max {
		return apperrors.NewRateLimitError("Too many subscription attempts. Please try again later.")
	}
	if n, incrErr := s.store.Incr(ctx, key); incrErr != nil {
		s.logger.WithError(incrErr).Warn("Failed to update subscribe rate limit")
	} else if n == 1 {
		if expErr := s.store.Expire(ctx, key, kv.TTLRateLimit); expErr != nil {
			s.logger.WithError(expErr).Warn("Failed to set TTL on subscribe rate limit")
		}
	}
	return nil
}

func (s *NewsletterService) sendWelcome(ctx context.Context, email string) error {
	unsubscribe := fmt.Sprintf("%s/unsubscribe?email=%s", s.cfg.SiteBaseURL, url.QueryEscape(email))

	text := fmt.Sprintf(`Welcome to %[1]s!

Hey there,

Thanks for subscribing! Every Tuesday you'll get one tactical insight on
building and scaling SaaS companies. No fluff, all signal.

Browse recent posts: %[2]s/blog

Best,
%[3]s

---
Unsubscribe: %[4]s
Website: %[2]s`, s.cfg.SiteName, s.cfg.SiteBaseURL, s.cfg.DefaultAuthor, unsubscribe)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',system-ui,sans-serif;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px">
<h1>Welcome to %[1]s!</h1>
<p>Thanks for subscribing! Every Tuesday you'll get one tactical insight on building and scaling SaaS companies. No fluff, all signal.</p>
<p><a href="%[2]s/blog" style="background:#2563eb;color:white;padding:12px 24px;text-decoration:none;border-radius:6px;display:inline-block">Browse Recent Posts</a></p>
<p>Best,<br>%[3]s</p>
<hr>
<p style="color:#666;font-size:14px"><a href="%[4]s">Unsubscribe</a> | <a href="%[2]s">%[2]s</a></p>
</body>
</html>`, s.cfg.SiteName, s.cfg.SiteBaseURL, s.cfg.DefaultAuthor, unsubscribe)

	_, err := s.resend.Send(ctx, EmailMessage{
		From:    s.cfg.SenderEmail,
		To:      email,
		Subject: fmt.Sprintf("Welcome to %s!", s.cfg.SiteName),
		Text:    text,
		HTML:    html,
		Headers: map[string]string{
			"List-Unsubscribe":      fmt.Sprintf("<%s>", unsubscribe),
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
		Tags: []EmailTag{
			{Name: "campaign", Value: "welcome-series"},
			{Name: "email_type", Value: "welcome1"},
		},
	})
	return err
}
