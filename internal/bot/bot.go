package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"dramabox_webapp/internal/config"
	"dramabox_webapp/internal/logger"
	"dramabox_webapp/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot runs the Telegram front-end: the /start flow for subscribers and a few
// admin commands. User registration and referral linkage go through the HTTP
// API, not through in-process state, so the bot and the web side only share
// the database.
type Bot struct {
	cfg  *config.Config
	log  *slog.Logger
	http *http.Client

	mu  sync.RWMutex
	api *tgbotapi.BotAPI

	users *repository.UserRepository
	subs  *repository.SubscriptionRepository
	reps  *repository.ReportRepository
}

// New does no network I/O: the Telegram connection is established inside Run,
// so a transient outage at boot lands in the supervisor's backoff instead of
// killing the process.
func New(cfg *config.Config, users *repository.UserRepository, subs *repository.SubscriptionRepository, reps *repository.ReportRepository) *Bot {
	return &Bot{
		cfg:   cfg,
		log:   logger.With("component", "bot"),
		http:  &http.Client{Timeout: 10 * time.Second},
		users: users,
		subs:  subs,
		reps:  reps,
	}
}

func (b *Bot) client() *tgbotapi.BotAPI {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.api
}

// Notify implements service.Notifier. Fails until Run has connected.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	api := b.client()
	if api == nil {
		return errors.New("bot not connected")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := api.Send(msg)
	return err
}

// Run connects to Telegram and polls for updates until the context is
// cancelled. Returning an error makes the supervisor restart the loop with
// backoff, connect failures included.
func (b *Bot) Run(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(b.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect bot api: %w", err)
	}

	b.mu.Lock()
	b.api = api
	b.mu.Unlock()
	b.log.Info("bot authorized", "username", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b.log.Info("bot update loop started")
	for {
		select {
		case <-ctx.Done():
			b.log.Info("bot update loop stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("updates channel closed")
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "stats":
		b.handleAdmin(ctx, msg, b.statsText)
	case "user":
		b.handleAdmin(ctx, msg, func(ctx context.Context) string {
			return b.userText(ctx, msg.CommandArguments())
		})
	case "reports":
		b.handleAdmin(ctx, msg, b.reportsText)
	}
}

// handleStart registers the user via the HTTP API, shows the mini-app button
// and forwards the referral code if one came with the deep link. Every
// outbound call is best-effort: a dead web side must not break /start.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := msg.From
	if user == nil {
		return
	}

	avatarURL := b.fetchAvatarURL(user.ID)

	if b.cfg.WebAppURL != "" {
		b.postJSON(ctx, "/api/user", map[string]any{
			"telegram_id": user.ID,
			"username":    user.UserName,
			"first_name":  user.FirstName,
			"last_name":   user.LastName,
			"avatar_url":  avatarURL,
		})
	}

	welcome := "🎬 Welcome to DramaBox!\n\n" +
		"Nikmati ribuan drama China, Korea & Asia lainnya langsung dari Telegram!\n\n" +
		"📺 Tap Open App untuk mulai menonton.\n" +
		"💎 Dapatkan poin dengan mengundang teman!"

	reply := tgbotapi.NewMessage(msg.Chat.ID, welcome)
	if b.cfg.WebAppURL != "" {
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.InlineKeyboardButton{
					Text:   "🎬 Open App",
					WebApp: &tgbotapi.WebAppInfo{URL: b.cfg.WebAppURL},
				},
			),
		)
	}
	if _, err := b.client().Send(reply); err != nil {
		b.log.Warn("welcome send failed", "chat_id", msg.Chat.ID, "error", err)
	}

	refCode := msg.CommandArguments()
	if strings.HasPrefix(refCode, "ref_") && b.cfg.WebAppURL != "" {
		b.postJSON(ctx, "/api/referral", map[string]any{
			"telegram_id": user.ID,
			"ref_code":    refCode,
		})
	}
}

// fetchAvatarURL resolves the user's latest profile photo into a direct file
// URL, empty string when unavailable.
func (b *Bot) fetchAvatarURL(userID int64) string {
	api := b.client()
	photos, err := api.GetUserProfilePhotos(tgbotapi.UserProfilePhotosConfig{UserID: userID, Limit: 1})
	if err != nil || photos.TotalCount == 0 || len(photos.Photos) == 0 {
		return ""
	}

	sizes := photos.Photos[0]
	fileID := sizes[len(sizes)-1].FileID
	file, err := api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return ""
	}
	return file.Link(b.cfg.BotToken)
}

// postJSON fires a bounded, best-effort POST against the web side.
func (b *Bot) postJSON(ctx context.Context, path string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.WebAppURL+path, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		b.log.Warn("api call failed", "path", path, "error", err)
		return
	}
	resp.Body.Close()
}

func (b *Bot) handleAdmin(ctx context.Context, msg *tgbotapi.Message, text func(context.Context) string) {
	if b.cfg.AdminTelegramID == 0 || msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text(ctx))
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.client().Send(reply); err != nil {
		b.log.Warn("admin reply failed", "error", err)
	}
}

func (b *Bot) statsText(ctx context.Context) string {
	stats, err := b.users.GetStats(ctx, time.Now())
	if err != nil {
		return "❌ stats error: " + err.Error()
	}
	revenue, err := b.subs.TotalRevenue(ctx)
	if err != nil {
		return "❌ stats error: " + err.Error()
	}
	return fmt.Sprintf("📊 Stats\nUsers: %d\nActive VIP: %d\nReferrals: %d\nRevenue: Rp%d",
		stats.TotalUsers, stats.VIPUsers, stats.TotalReferrals, revenue)
}

func (b *Bot) userText(ctx context.Context, args string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "Usage: /user <telegram_id>"
	}

	u, err := b.users.GetByTelegramID(ctx, id)
	if err != nil {
		return "❌ user not found"
	}

	expiry := "-"
	if u.MembershipUntil != nil {
		expiry = u.MembershipUntil.Format("2 Jan 2006 15:04")
	}
	return fmt.Sprintf("👤 %s %s (@%s)\nMembership: %s\nExpires: %s\nPoints: %d\nReferrals: %d",
		u.FirstName, u.LastName, u.Username, u.Membership, expiry, u.Points, u.ReferralCount)
}

func (b *Bot) reportsText(ctx context.Context) string {
	reports, err := b.reps.ListRecent(ctx, 5)
	if err != nil {
		return "❌ reports error: " + err.Error()
	}
	if len(reports) == 0 {
		return "No reports."
	}

	var sb strings.Builder
	sb.WriteString("📩 Recent reports\n")
	for _, r := range reports {
		fmt.Fprintf(&sb, "\n#%d [%s] from %d\n%s\n", r.ID, r.IssueType, r.TelegramID, r.Description)
	}
	return sb.String()
}
