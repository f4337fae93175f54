package handler

import (
	"log/slog"

	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/application/query"
	"github.com/questlog/questlog-bot/internal/domain/access"
	"github.com/questlog/questlog-bot/internal/domain/idea"
	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// Deps aggregates everything the handlers need.
type Deps struct {
	// Repositories
	UserRepo   user.Repository
	TaskRepo   task.Repository
	RewardRepo reward.Repository
	IdeaRepo   idea.Repository
	AccessRepo access.Repository

	// Commands
	EnsureUser   *command.EnsureUserHandler
	CreateTask   *command.CreateTaskHandler
	CompleteTask *command.CompleteTaskHandler
	DeleteTask   *command.DeleteTaskHandler
	PurchaseItem *command.PurchaseItemHandler
	CreateReward *command.CreateRewardHandler
	ClaimReward  *command.ClaimRewardHandler

	// Queries
	WeeklyRate *query.WeeklyRateQuery

	// Infrastructure
	Dialogs   *redis.DialogStore
	RateCache *redis.RateCache
	Logger    *slog.Logger
}

// Register creates all handlers and wires them into the router.
func Register(r *tgiface.Router, deps Deps) {
	start := NewStartHandler(deps.EnsureUser)
	help := NewHelpHandler()
	cancel := NewCancelHandler(deps.Dialogs)
	addTask := NewAddTaskHandler(deps.CreateTask, deps.Dialogs)
	tasks := NewTasksHandler(deps.TaskRepo, deps.CompleteTask, deps.DeleteTask, deps.RateCache, deps.Logger)
	profile := NewProfileHandler(deps.UserRepo, deps.WeeklyRate)
	shop := NewShopHandler(deps.UserRepo, deps.PurchaseItem, deps.Logger)
	rewards := NewRewardsHandler(deps.UserRepo, deps.RewardRepo, deps.CreateReward, deps.ClaimReward, deps.Dialogs)
	ideas := NewIdeasHandler(deps.IdeaRepo, deps.Dialogs)
	admin := NewAdminHandler(deps.AccessRepo)

	// Commands
	r.Command("start", start)
	r.Command("help", help)
	r.Command("cancel", cancel)
	r.Command("add", addTask)
	r.Command("tasks", tasks)
	r.Command("profile", profile)
	r.Command("shop", shop)
	r.Command("rewards", rewards)
	r.Command("ideas", ideas)
	r.Command("allow", tgiface.CommandFunc(admin.HandleAllow))
	r.Command("deny", tgiface.CommandFunc(admin.HandleDeny))
	r.Command("whitelist", tgiface.CommandFunc(admin.HandleList))

	// Callbacks
	r.Callback("task:cat:", tgiface.CallbackFunc(addTask.HandleCategory))
	r.Callback("task:noremind", tgiface.CallbackFunc(addTask.HandleSkipReminder))
	r.Callback("task:done:", tgiface.CallbackFunc(tasks.HandleComplete))
	r.Callback("task:del:", tgiface.CallbackFunc(tasks.HandleDelete))
	r.Callback("shop:", tgiface.CallbackFunc(shop.HandlePurchase))
	r.Callback("reward:new", tgiface.CallbackFunc(rewards.HandleNew))
	r.Callback("reward:claim:", tgiface.CallbackFunc(rewards.HandleClaim))
	r.Callback("idea:cat:", tgiface.CallbackFunc(ideas.HandleCategory))
	r.Callback("idea:cycle:", tgiface.CallbackFunc(ideas.HandleCycle))
	r.Callback("idea:del:", tgiface.CallbackFunc(ideas.HandleDeleteIdea))
	r.Callback("idea:delcat:", tgiface.CallbackFunc(ideas.HandleDeleteCategory))
	r.Callback("idea:newcat", tgiface.CallbackFunc(ideas.HandleNewCategory))
	r.Callback("idea:new:", tgiface.CallbackFunc(ideas.HandleNewIdea))

	// Dialogs
	r.Dialog("add_task:", tgiface.DialogFunc(addTask.HandleDialog))
	r.Dialog("add_reward:", tgiface.DialogFunc(rewards.HandleDialog))
	r.Dialog("add_idea:", tgiface.DialogFunc(ideas.HandleDialog))
}
