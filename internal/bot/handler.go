package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler routes Telegram updates to API calls and renders the replies.
type Handler struct {
	Bot *tgbotapi.BotAPI
	API *Client
}

// Listen consumes the long-polling update channel until it closes.
func (h *Handler) Listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.Bot.GetUpdatesChan(u)

	for upd := range updates {
		if upd.Message != nil {
			h.handleMessage(upd.Message)
			continue
		}
		if upd.CallbackQuery != nil {
			h.handleCallback(upd.CallbackQuery)
		}
	}
}

func (h *Handler) handleMessage(msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		h.handleStart(msg)
	case msg.IsCommand() && msg.Command() == "status_yoga":
		h.handleStatus(msg)
	case msg.IsCommand() && msg.Command() == "status_yoga_users":
		h.handleRoster(msg)
	case isDigits(msg.Text):
		// A bare number is the employee id requested after /start.
		h.handleEmployeeID(msg)
	default:
		h.handleMenu(msg)
	}
}

func (h *Handler) handleStart(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	name := displayName(msg.From)
	created, err := h.API.RegisterUser(ctx, msg.From.ID, name)
	switch {
	case err != nil:
		log.Printf("bot: register user: %v", err)
		h.reply(msg.Chat.ID, msgRegisterFailed)
	case created:
		h.reply(msg.Chat.ID, msgRegistered)
	default:
		h.reply(msg.Chat.ID, msgAlreadyRegistered)
	}
	h.sendMainMenu(msg.Chat.ID)
}

func (h *Handler) handleEmployeeID(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	name := displayName(msg.From)
	employeeID := msg.Text
	if err := h.API.UpdateUser(ctx, msg.From.ID, &name, &employeeID); err != nil {
		log.Printf("bot: update employee id: %v", err)
		h.reply(msg.Chat.ID, msgDataUpdateFailed)
		return
	}
	h.reply(msg.Chat.ID, msgDataUpdated)
	h.sendMainMenu(msg.Chat.ID)
}

func (h *Handler) handleMenu(msg *tgbotapi.Message) {
	switch msg.Text {
	case kbSignUp:
		h.sendAvailableEvents(msg)
	case kbMyEvents:
		h.sendUserEvents(msg, false)
	case kbCancelEvent:
		h.sendUserEvents(msg, true)
	case kbPickOffice:
		h.sendOfficePicker(msg)
	default:
		h.sendMainMenu(msg.Chat.ID)
	}
}

// sendAvailableEvents renders the personalized availability listing as
// an inline keyboard; pressing a button registers for that session.
func (h *Handler) sendAvailableEvents(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	events, err := h.API.AvailableEvents(ctx, msg.From.ID)
	if err != nil {
		log.Printf("bot: available events: %v", err)
		h.reply(msg.Chat.ID, msgAPIDown)
		return
	}
	if len(events) == 0 {
		h.reply(msg.Chat.ID, msgNoAvailable)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(events))
	for _, ev := range events {
		label := fmt.Sprintf("%s — %s (%d/%d)", ev.DateTime, ev.OfficeName, ev.Registered, ev.MaxParticipants)
		if ev.CoachName != nil {
			label += " · " + *ev.CoachName
		}
		data := "reg:" + strconv.FormatUint(ev.EventID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, msgPickEvent)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(out)
}

// sendUserEvents lists the user's own upcoming registrations, either as
// plain text or as cancel buttons.
func (h *Handler) sendUserEvents(msg *tgbotapi.Message, cancelMode bool) {
	ctx, cancel := apiContext()
	defer cancel()

	events, err := h.API.UserEvents(ctx, msg.From.ID)
	if err != nil {
		log.Printf("bot: user events: %v", err)
		h.reply(msg.Chat.ID, msgAPIDown)
		return
	}
	if len(events) == 0 {
		h.reply(msg.Chat.ID, msgNoOwnEvents)
		return
	}

	if !cancelMode {
		var b strings.Builder
		for _, ev := range events {
			fmt.Fprintf(&b, "%s at %s — %s, coach %s\n", ev.EventDate, ev.EventTime, ev.OfficeName, ev.Coach)
		}
		h.reply(msg.Chat.ID, strings.TrimSpace(b.String()))
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(events))
	for _, ev := range events {
		label := fmt.Sprintf("%s at %s — %s", ev.EventDate, ev.EventTime, ev.OfficeName)
		data := "cancel:" + strconv.FormatUint(ev.EventID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, msgPickCancel)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(out)
}

func (h *Handler) sendOfficePicker(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	offices, err := h.API.Offices(ctx)
	if err != nil {
		log.Printf("bot: offices: %v", err)
		h.reply(msg.Chat.ID, msgAPIDown)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(offices))
	for _, o := range offices {
		data := "office:" + strconv.FormatUint(o.ID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o.Name, data)))
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, msgPickOffice)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(out)
}

// handleStatus renders /status_yoga: available sessions grouped by
// office, with their fill levels.
func (h *Handler) handleStatus(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	events, err := h.API.AvailableEvents(ctx, msg.From.ID)
	if err != nil {
		log.Printf("bot: status: %v", err)
		h.reply(msg.Chat.ID, msgAPIDown)
		return
	}
	if len(events) == 0 {
		h.reply(msg.Chat.ID, msgNoAvailable)
		return
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].OfficeName != events[j].OfficeName {
			return events[i].OfficeName < events[j].OfficeName
		}
		return events[i].DateTime < events[j].DateTime
	})

	var b strings.Builder
	currentOffice := ""
	for _, ev := range events {
		if ev.OfficeName != currentOffice {
			if currentOffice != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Sessions in %s\n", ev.OfficeName)
			currentOffice = ev.OfficeName
		}
		fmt.Fprintf(&b, "%s — %d of %d signed up\n", ev.DateTime, ev.Registered, ev.MaxParticipants)
	}
	h.reply(msg.Chat.ID, strings.TrimSpace(b.String()))
}

// handleRoster renders /status_yoga_users: every registrant grouped by
// upcoming event.
func (h *Handler) handleRoster(msg *tgbotapi.Message) {
	ctx, cancel := apiContext()
	defer cancel()

	roster, err := h.API.Roster(ctx)
	if err != nil {
		log.Printf("bot: roster: %v", err)
		h.reply(msg.Chat.ID, msgAPIDown)
		return
	}
	if len(roster) == 0 {
		h.reply(msg.Chat.ID, msgNoRoster)
		return
	}

	var b strings.Builder
	var currentEvent uint64
	for _, entry := range roster {
		if entry.EventID != currentEvent {
			fmt.Fprintf(&b, "\n%s %s at %s\n", entry.OfficeName, entry.EventDate, entry.EventTime)
			currentEvent = entry.EventID
		}
		b.WriteString(entry.UserName + "\n")
	}
	h.reply(msg.Chat.ID, strings.TrimSpace(b.String()))
}

// handleCallback reacts to inline button presses: joining, cancelling
// and office selection.
func (h *Handler) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Always answer the callback so the client stops its spinner.
	defer func() {
		if _, err := h.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("bot: answer callback: %v", err)
		}
	}()

	action, rest, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return
	}
	chatID := cb.Message.Chat.ID

	ctx, cancel := apiContext()
	defer cancel()

	switch action {
	case "reg":
		ok, apiMsg, err := h.API.CreateRegistration(ctx, cb.From.ID, id)
		switch {
		case err != nil:
			log.Printf("bot: create registration: %v", err)
			h.reply(chatID, msgAPIDown)
		case ok:
			h.reply(chatID, msgJoined)
		default:
			h.reply(chatID, apiMsg)
		}
	case "cancel":
		ok, apiMsg, err := h.API.DeleteRegistration(ctx, cb.From.ID, id)
		switch {
		case err != nil:
			log.Printf("bot: delete registration: %v", err)
			h.reply(chatID, msgAPIDown)
		case ok:
			h.reply(chatID, msgCancelled)
		default:
			h.reply(chatID, apiMsg)
		}
	case "office":
		if err := h.API.SetOffice(ctx, cb.From.ID, id); err != nil {
			log.Printf("bot: set office: %v", err)
			h.reply(chatID, msgAPIDown)
			return
		}
		h.reply(chatID, msgOfficeSaved)
	}
}

// sendMainMenu shows the persistent reply keyboard.
func (h *Handler) sendMainMenu(chatID int64) {
	out := tgbotapi.NewMessage(chatID, "What would you like to do?")
	out.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(kbSignUp),
			tgbotapi.NewKeyboardButton(kbMyEvents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(kbCancelEvent),
			tgbotapi.NewKeyboardButton(kbPickOffice),
		),
	)
	h.send(out)
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.Bot.Send(msg); err != nil {
		log.Printf("bot: send message: %v", err)
	}
}

func displayName(u *tgbotapi.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
