package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"digital-library/config"
	"digital-library/models"
)

// MailSender sends one mail to one recipient. Split out so tests can
// capture outgoing mail without an SMTP server.
type MailSender func(to, subject, body string) error

// NotifyService mails subscribers when a new article is created. Delivery
// failures are logged and never propagate to the caller.
type NotifyService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	Send   MailSender

	// Sent counts successfully delivered mails, exposed for metrics.
	Sent func(n int)
}

// NewNotifyService creates a NotifyService with an SMTP-backed sender.
// With no SMTP host configured, outgoing mail is logged instead of sent.
func NewNotifyService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *NotifyService {
	n := &NotifyService{Config: cfg, DB: db, Logger: logger}
	n.Send = n.sendSMTP
	return n
}

// ArticleCreated collects the subscriptions matching a new article and
// sends one mail per unique address: subscribers of the edition's event,
// of any of the article's authors, and general subscribers with neither
// set.
func (n *NotifyService) ArticleCreated(ctx context.Context, article *models.Article) {
	log := n.Logger.With(zap.Uint("article_id", article.ID), zap.String("title", article.Title))

	emails := make(map[string]struct{})
	collect := func(subs []models.Subscription) {
		for _, s := range subs {
			emails[s.Email] = struct{}{}
		}
	}

	var subs []models.Subscription
	if article.Edition.EventID != 0 {
		if err := n.DB.WithContext(ctx).Where("event_id = ?", article.Edition.EventID).Find(&subs).Error; err != nil {
			log.Warn("Failed to load event subscriptions", zap.Error(err))
		}
		collect(subs)
	}

	for _, author := range article.Authors {
		subs = subs[:0]
		if err := n.DB.WithContext(ctx).Where("author_id = ?", author.ID).Find(&subs).Error; err != nil {
			log.Warn("Failed to load author subscriptions", zap.String("author", author.Name), zap.Error(err))
			continue
		}
		collect(subs)
	}

	subs = subs[:0]
	if err := n.DB.WithContext(ctx).Where("author_id IS NULL AND event_id IS NULL").Find(&subs).Error; err != nil {
		log.Warn("Failed to load general subscriptions", zap.Error(err))
	}
	collect(subs)

	if len(emails) == 0 {
		return
	}

	subject := fmt.Sprintf("New article published: %s", article.Title)
	body := buildNotificationBody(article)

	// One mail per recipient so addresses are not disclosed to each other.
	sent := 0
	for to := range emails {
		if err := n.Send(to, subject, body); err != nil {
			log.Warn("Failed to send notification mail", zap.String("to", to), zap.Error(err))
			continue
		}
		sent++
	}
	if n.Sent != nil {
		n.Sent(sent)
	}
	log.Info("Subscriber notifications dispatched", zap.Int("sent", sent), zap.Int("recipients", len(emails)))
}

func buildNotificationBody(article *models.Article) string {
	abstract := article.Abstract
	if abstract == "" {
		abstract = "N/A"
	}
	link := article.PDFURL
	if link == "" {
		link = "N/A"
	}
	return fmt.Sprintf("A new article '%s' was added.\n\nAbstract:\n%s\n\nLink: %s",
		article.Title, abstract, link)
}

// sendSMTP delivers one mail over plain SMTP with optional auth. Without a
// configured host the mail is only logged, mirroring a dev setup with no
// mailer.
func (n *NotifyService) sendSMTP(to, subject, body string) error {
	if n.Config.SMTPHost == "" {
		n.Logger.Info("SMTP not configured, skipping mail",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	msg := strings.Join([]string{
		"From: " + n.Config.FromEmail,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.Config.SMTPHost, n.Config.SMTPPort)
	var auth smtp.Auth
	if n.Config.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.Config.SMTPUser, n.Config.SMTPPassword, n.Config.SMTPHost)
	}
	return smtp.SendMail(addr, auth, n.Config.FromEmail, []string{to}, []byte(msg))
}
