package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/questlog/questlog-bot/internal/domain/idea"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDEAS HANDLER
// The idea box: user categories, ideas with a cycling status.
// ══════════════════════════════════════════════════════════════════════════════

// Dialog steps of the idea box flows.
const (
	stepIdeaCategoryName = "add_idea:category_name"
	stepIdeaTitle        = "add_idea:title"
)

// IdeasHandler handles /ideas, its callbacks, and the idea dialogs.
type IdeasHandler struct {
	ideaRepo idea.Repository
	dialogs  *redis.DialogStore
}

// NewIdeasHandler creates a new IdeasHandler.
func NewIdeasHandler(ideaRepo idea.Repository, dialogs *redis.DialogStore) *IdeasHandler {
	return &IdeasHandler{ideaRepo: ideaRepo, dialogs: dialogs}
}

// Handle processes the /ideas command.
func (h *IdeasHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	return h.sendCategories(ctx, cmd.Client, cmd.UserID, cmd.ChatID)
}

// sendCategories renders the category list with its keyboard.
func (h *IdeasHandler) sendCategories(ctx context.Context, client *telegram.Client, owner shared.TelegramID, chatID int64) error {
	categories, err := h.ideaRepo.ListCategories(ctx, owner)
	if err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	kb := telegram.NewKeyboard()
	for _, c := range categories {
		kb.Row(telegram.Button(presenter.CategoryLine(c), "idea:cat:"+c.ID))
	}
	kb.Row(telegram.Button("➕ Новая категория", "idea:newcat"))

	_, err = client.SendWithKeyboard(ctx, chatID, presenter.CategoryList(categories), kb.Build())
	return err
}

// HandleCategory processes the "idea:cat:" callback: it lists the
// category's ideas.
func (h *IdeasHandler) HandleCategory(ctx context.Context, cb tgiface.CallbackContext) error {
	return h.sendIdeas(ctx, cb.Client, cb.UserID, cb.ChatID, cb.Payload)
}

// sendIdeas renders one category with its keyboard.
func (h *IdeasHandler) sendIdeas(ctx context.Context, client *telegram.Client, owner shared.TelegramID, chatID int64, categoryID string) error {
	c, err := h.ideaRepo.GetCategory(ctx, owner, categoryID)
	if err != nil {
		if errors.Is(err, idea.ErrCategoryNotFound) {
			_, serr := client.SendText(ctx, chatID, "Категория не найдена. Обнови список: /ideas")
			return serr
		}
		return fmt.Errorf("ideas: %w", err)
	}

	ideas, err := h.ideaRepo.ListIdeas(ctx, owner, categoryID)
	if err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	kb := telegram.NewKeyboard()
	for _, i := range ideas {
		kb.Row(
			telegram.Button(presenter.IdeaLine(i), "idea:cycle:"+i.ID),
			telegram.Button("🗑", "idea:del:"+i.ID),
		)
	}
	kb.Row(telegram.Button("➕ Идея", "idea:new:"+categoryID))
	kb.Row(telegram.Button("🗑 Удалить категорию", "idea:delcat:"+categoryID))

	_, err = client.SendWithKeyboard(ctx, chatID, presenter.IdeaList(c, ideas), kb.Build())
	return err
}

// HandleCycle processes the "idea:cycle:" callback: new → wip → done → new.
func (h *IdeasHandler) HandleCycle(ctx context.Context, cb tgiface.CallbackContext) error {
	i, err := h.ideaRepo.GetIdea(ctx, cb.UserID, cb.Payload)
	if err != nil {
		if errors.Is(err, idea.ErrIdeaNotFound) {
			_, serr := cb.Client.SendText(ctx, cb.ChatID, "Идея не найдена. Обнови список: /ideas")
			return serr
		}
		return fmt.Errorf("ideas: %w", err)
	}

	i.CycleStatus()
	if err := h.ideaRepo.UpdateIdea(ctx, i); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	return h.sendIdeas(ctx, cb.Client, cb.UserID, cb.ChatID, i.CategoryID)
}

// HandleDeleteIdea processes the "idea:del:" callback.
func (h *IdeasHandler) HandleDeleteIdea(ctx context.Context, cb tgiface.CallbackContext) error {
	i, err := h.ideaRepo.GetIdea(ctx, cb.UserID, cb.Payload)
	if err != nil {
		if errors.Is(err, idea.ErrIdeaNotFound) {
			return nil
		}
		return fmt.Errorf("ideas: %w", err)
	}

	if err := h.ideaRepo.DeleteIdea(ctx, cb.UserID, i.ID); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}
	return h.sendIdeas(ctx, cb.Client, cb.UserID, cb.ChatID, i.CategoryID)
}

// HandleDeleteCategory processes the "idea:delcat:" callback.
func (h *IdeasHandler) HandleDeleteCategory(ctx context.Context, cb tgiface.CallbackContext) error {
	err := h.ideaRepo.DeleteCategory(ctx, cb.UserID, cb.Payload)
	if err != nil && !errors.Is(err, idea.ErrCategoryNotFound) {
		return fmt.Errorf("ideas: %w", err)
	}
	return h.sendCategories(ctx, cb.Client, cb.UserID, cb.ChatID)
}

// HandleNewCategory processes the "idea:newcat" callback: it opens the
// dialog.
func (h *IdeasHandler) HandleNewCategory(ctx context.Context, cb tgiface.CallbackContext) error {
	d := &redis.Dialog{Step: stepIdeaCategoryName}
	if err := h.dialogs.Put(ctx, cb.UserID, d); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	_, err := cb.Client.SendText(ctx, cb.ChatID,
		"💡 Как назовём категорию? Можно начать с эмодзи, например «📚 Книги».")
	return err
}

// HandleNewIdea processes the "idea:new:" callback: it opens the dialog.
func (h *IdeasHandler) HandleNewIdea(ctx context.Context, cb tgiface.CallbackContext) error {
	d := &redis.Dialog{Step: stepIdeaTitle}
	d.Set("category_id", cb.Payload)
	if err := h.dialogs.Put(ctx, cb.UserID, d); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	_, err := cb.Client.SendText(ctx, cb.ChatID, "💡 Записываю. Что за идея?")
	return err
}

// HandleDialog processes the text steps of the idea flows.
func (h *IdeasHandler) HandleDialog(ctx context.Context, d tgiface.DialogContext) error {
	switch d.Dialog.Step {
	case stepIdeaCategoryName:
		return h.handleCategoryName(ctx, d)
	case stepIdeaTitle:
		return h.handleIdeaTitle(ctx, d)
	default:
		return nil
	}
}

// handleCategoryName creates the category.
func (h *IdeasHandler) handleCategoryName(ctx context.Context, d tgiface.DialogContext) error {
	name, emoji := splitLeadingEmoji(d.Text)

	c, err := idea.NewCategory(uuid.NewString(), d.UserID, name, emoji)
	if err != nil {
		if errors.Is(err, idea.ErrEmptyName) {
			_, serr := d.Client.SendText(ctx, d.ChatID, "Название не может быть пустым. Попробуй ещё раз.")
			return serr
		}
		return fmt.Errorf("ideas: %w", err)
	}

	if err := h.ideaRepo.CreateCategory(ctx, c); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}
	if err := h.dialogs.Clear(ctx, d.UserID); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	return h.sendCategories(ctx, d.Client, d.UserID, d.ChatID)
}

// handleIdeaTitle creates the idea.
func (h *IdeasHandler) handleIdeaTitle(ctx context.Context, d tgiface.DialogContext) error {
	categoryID := d.Dialog.Value("category_id")

	i, err := idea.NewIdea(uuid.NewString(), d.UserID, categoryID, d.Text)
	if err != nil {
		if errors.Is(err, idea.ErrEmptyName) {
			_, serr := d.Client.SendText(ctx, d.ChatID, "Текст идеи не может быть пустым. Попробуй ещё раз.")
			return serr
		}
		return fmt.Errorf("ideas: %w", err)
	}

	if err := h.ideaRepo.CreateIdea(ctx, i); err != nil {
		if errors.Is(err, idea.ErrCategoryNotFound) {
			_, serr := d.Client.SendText(ctx, d.ChatID, "Категория уже удалена. Начни заново: /ideas")
			return serr
		}
		return fmt.Errorf("ideas: %w", err)
	}
	if err := h.dialogs.Clear(ctx, d.UserID); err != nil {
		return fmt.Errorf("ideas: %w", err)
	}

	return h.sendIdeas(ctx, d.Client, d.UserID, d.ChatID, categoryID)
}

// splitLeadingEmoji peels a leading non-letter rune off the name so
// «📚 Книги» becomes emoji «📚» and name «Книги».
func splitLeadingEmoji(s string) (name, emoji string) {
	runes := []rune(s)
	if len(runes) > 1 && runes[0] > 0x2000 {
		return string(runes[1:]), string(runes[0])
	}
	return s, ""
}
