package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/usecase"
)

// Command categories shown by help
const (
	CategoryWhitelist = "Whitelist"
	CategoryWarnings  = "Sanctions"
	CategoryRatings   = "Ratings"
	CategoryCommunity = "Community"
	CategoryJobs      = "Jobs"
	CategoryGeneral   = "General"
)

// answerSeparator splits whitelist answers typed on one line
const answerSeparator = "|"

// Services are the use cases the commands drive
type Services struct {
	Whitelist   *usecase.WhitelistUseCase
	Warnings    *usecase.WarningUseCase
	Ratings     *usecase.RatingUseCase
	Suggestions *usecase.SuggestionUseCase
	Reactions   *usecase.ReactionLogUseCase
	Jobs        *usecase.JobUseCase
	// Latency reports the gateway heartbeat latency for ping. Optional.
	Latency func() time.Duration
}

type handlers struct {
	svc Services
	d   *Dispatcher
}

// RegisterAll registers every bot command on d
func RegisterAll(d *Dispatcher, svc Services) error {
	h := &handlers{svc: svc, d: d}
	user := func(name string) Param { return Param{Name: name, Kind: ParamUser} }

	commands := []Command{
		{
			Name:     "submit-application",
			Aliases:  []string{"confirmar"},
			Category: CategoryWhitelist,
			Summary:  "Submit the whitelist questionnaire, answers separated by |",
			Params:   []Param{{Name: "answers", Kind: ParamRest}},
			Handler:  h.submitApplication,
		},
		{
			Name:          "decide-application",
			Aliases:       []string{"decidir"},
			Category:      CategoryWhitelist,
			Summary:       "Approve or deny a pending application",
			RequiresStaff: true,
			Params:        []Param{user("user"), {Name: "outcome", Kind: ParamWord}},
			Handler:       h.decideApplication,
		},
		{
			Name:          "reset-application",
			Aliases:       []string{"reset-whitelist"},
			Category:      CategoryWhitelist,
			Summary:       "Reset a user's whitelist application",
			RequiresStaff: true,
			Params:        []Param{user("user")},
			Handler:       h.resetApplication,
		},
		{
			Name:     "application-status",
			Aliases:  []string{"estado"},
			Category: CategoryWhitelist,
			Summary:  "Show the status of a whitelist application",
			Params:   []Param{{Name: "user", Kind: ParamUser, Optional: true}},
			Handler:  h.applicationStatus,
		},
		{
			Name:          "add-warning",
			Aliases:       []string{"sancionar"},
			Category:      CategoryWarnings,
			Summary:       "Issue a warning to a user",
			RequiresStaff: true,
			Params:        []Param{user("user"), {Name: "reason", Kind: ParamRest}},
			Handler:       h.addWarning,
		},
		{
			Name:          "remove-warning",
			Aliases:       []string{"removewarn"},
			Category:      CategoryWarnings,
			Summary:       "Remove one warning by id",
			RequiresStaff: true,
			Params:        []Param{user("user"), {Name: "id", Kind: ParamInt}},
			Handler:       h.removeWarning,
		},
		{
			Name:          "reset-warnings",
			Aliases:       []string{"resetwarns"},
			Category:      CategoryWarnings,
			Summary:       "Remove every warning of a user",
			RequiresStaff: true,
			Params:        []Param{user("user")},
			Handler:       h.resetWarnings,
		},
		{
			Name:          "list-warnings",
			Aliases:       []string{"verwarns"},
			Category:      CategoryWarnings,
			Summary:       "List a user's warnings",
			RequiresStaff: true,
			Params:        []Param{user("user")},
			Handler:       h.listWarnings,
		},
		{
			Name:     "rate-staff",
			Aliases:  []string{"calificar"},
			Category: CategoryRatings,
			Summary:  fmt.Sprintf("Rate a staff member from %d to %d", domain.MinScore, domain.MaxScore),
			Params:   []Param{user("staff"), {Name: "score", Kind: ParamInt}, {Name: "reason", Kind: ParamRest, Optional: true}},
			Handler:  h.rateStaff,
		},
		{
			Name:     "staff-average",
			Aliases:  []string{"vercalificaciones"},
			Category: CategoryRatings,
			Summary:  "Show a staff member's average rating",
			Params:   []Param{{Name: "staff", Kind: ParamUser, Optional: true}},
			Handler:  h.staffAverage,
		},
		{
			Name:     "staff-ranking",
			Aliases:  []string{"topcalificaciones"},
			Category: CategoryRatings,
			Summary:  "Show the best rated staff",
			Params:   []Param{{Name: "top", Kind: ParamInt, Optional: true}},
			Handler:  h.staffRanking,
		},
		{
			Name:     "add-suggestion",
			Aliases:  []string{"sugerencia"},
			Category: CategoryCommunity,
			Summary:  "Send a community suggestion",
			Params:   []Param{{Name: "text", Kind: ParamRest}},
			Handler:  h.addSuggestion,
		},
		{
			Name:     "list-suggestions",
			Aliases:  []string{"sugerencias"},
			Category: CategoryCommunity,
			Summary:  "Show the latest suggestions",
			Params:   []Param{{Name: "limit", Kind: ParamInt, Optional: true}},
			Handler:  h.listSuggestions,
		},
		{
			Name:          "reaction-log",
			Aliases:       []string{"reacciones"},
			Category:      CategoryCommunity,
			Summary:       "Show recent reaction activity",
			RequiresStaff: true,
			Params:        []Param{{Name: "user", Kind: ParamUser, Optional: true}},
			Handler:       h.reactionLog,
		},
		{
			Name:     "apply-job",
			Aliases:  []string{"postular"},
			Category: CategoryJobs,
			Summary:  "Apply to a secondary job",
			Params:   []Param{{Name: "job", Kind: ParamWord}, {Name: "motivation", Kind: ParamRest}},
			Handler:  h.applyJob,
		},
		{
			Name:          "decide-job",
			Category:      CategoryJobs,
			Summary:       "Accept or reject a job application",
			RequiresStaff: true,
			Params:        []Param{{Name: "id", Kind: ParamInt}, {Name: "outcome", Kind: ParamWord}},
			Handler:       h.decideJob,
		},
		{
			Name:          "list-jobs",
			Aliases:       []string{"postulaciones"},
			Category:      CategoryJobs,
			Summary:       "List job applications by status",
			RequiresStaff: true,
			Params:        []Param{{Name: "status", Kind: ParamWord, Optional: true}},
			Handler:       h.listJobs,
		},
		{
			Name:     "services",
			Aliases:  []string{"entorno"},
			Category: CategoryGeneral,
			Summary:  "Show the emergency services",
			Handler:  h.services,
		},
		{
			Name:     "ping",
			Category: CategoryGeneral,
			Summary:  "Check the bot latency",
			Handler:  h.ping,
		},
		{
			Name:     "help",
			Aliases:  []string{"ayuda"},
			Category: CategoryGeneral,
			Summary:  "Show this list",
			Handler:  h.help,
		},
	}

	for _, cmd := range commands {
		if err := d.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlers) submitApplication(ctx context.Context, req Request) (Response, error) {
	var answers []string
	for _, a := range strings.Split(req.Args.String("answers"), answerSeparator) {
		if a = strings.TrimSpace(a); a != "" {
			answers = append(answers, a)
		}
	}
	if len(answers) < len(domain.WhitelistQuestions) {
		return Response{}, domain.InvalidArgument("answers",
			fmt.Sprintf("expected %d answers separated by %q, got %d", len(domain.WhitelistQuestions), answerSeparator, len(answers)))
	}

	app, err := h.svc.Whitelist.Submit(ctx, usecase.SubmitApplicationRequest{
		UserID:  req.Caller.UserID,
		GuildID: req.Caller.GuildID,
		Answers: domain.PairAnswers(answers),
	})
	if err != nil {
		return Response{}, err
	}

	resp := success("Application submitted", "Your whitelist application is pending review by staff.")
	for _, qa := range app.Answers {
		resp = resp.AddField(qa.Question, qa.Answer, false)
	}
	return resp, nil
}

func (h *handlers) decideApplication(ctx context.Context, req Request) (Response, error) {
	outcome, err := domain.ParseApplicationOutcome(req.Args.String("outcome"))
	if err != nil {
		return Response{}, err
	}
	userID := req.Args.String("user")
	app, err := h.svc.Whitelist.Decide(ctx, usecase.DecideApplicationRequest{
		UserID:    userID,
		DeciderID: req.Caller.UserID,
		GuildID:   req.Caller.GuildID,
		Outcome:   outcome,
	})
	if err != nil {
		return Response{}, err
	}

	if app.Status == domain.ApplicationStatusApproved {
		return success("Application approved", fmt.Sprintf("%s has been whitelisted. A private channel will be created.", Mention(userID))), nil
	}
	return Response{
		Title:    "🚫 Application denied",
		Body:     fmt.Sprintf("The application of %s was denied.", Mention(userID)),
		Severity: SeverityWarning,
	}, nil
}

func (h *handlers) resetApplication(ctx context.Context, req Request) (Response, error) {
	userID := req.Args.String("user")
	changed, err := h.svc.Whitelist.Reset(ctx, userID, req.Caller.GuildID)
	if err != nil {
		return Response{}, err
	}
	if !changed {
		return info("🔄 Nothing to reset", fmt.Sprintf("%s has no active application.", Mention(userID))), nil
	}
	return success("Application reset", fmt.Sprintf("%s can submit a new application.", Mention(userID))), nil
}

func (h *handlers) applicationStatus(ctx context.Context, req Request) (Response, error) {
	userID := req.Caller.UserID
	if req.Args.Has("user") {
		userID = req.Args.String("user")
	}
	app, err := h.svc.Whitelist.Get(ctx, userID)
	if err != nil {
		return Response{}, err
	}

	resp := info("📝 Whitelist application", fmt.Sprintf("Application of %s", Mention(userID))).
		AddField("Status", string(app.Status), true).
		AddField("Submitted", app.CreatedAt.Format(time.RFC1123), true)
	if app.DecidedBy != nil {
		resp = resp.AddField("Decided by", Mention(*app.DecidedBy), true)
	}
	return resp, nil
}

func (h *handlers) addWarning(ctx context.Context, req Request) (Response, error) {
	userID := req.Args.String("user")
	warning, err := h.svc.Warnings.Add(ctx, usecase.AddWarningRequest{
		UserID:   userID,
		Reason:   req.Args.String("reason"),
		IssuerID: req.Caller.UserID,
		GuildID:  req.Caller.GuildID,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		Title:    "🚨 Warning issued",
		Body:     fmt.Sprintf("%s received a warning.", Mention(userID)),
		Severity: SeverityWarning,
		Footer:   fmt.Sprintf("Warning ID %d", warning.ID),
	}.AddField("Reason", warning.Reason, false).AddField("Issued by", Mention(warning.IssuedBy), true), nil
}

func (h *handlers) removeWarning(ctx context.Context, req Request) (Response, error) {
	userID := req.Args.String("user")
	id := req.Args.Int("id", 0)
	if err := h.svc.Warnings.Remove(ctx, userID, id); err != nil {
		return Response{}, err
	}
	return success("Warning removed", fmt.Sprintf("Warning #%d of %s was removed.", id, Mention(userID))), nil
}

func (h *handlers) resetWarnings(ctx context.Context, req Request) (Response, error) {
	userID := req.Args.String("user")
	removed, err := h.svc.Warnings.Reset(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	return success("Warnings reset", fmt.Sprintf("Removed %d warning(s) from %s.", removed, Mention(userID))), nil
}

func (h *handlers) listWarnings(ctx context.Context, req Request) (Response, error) {
	userID := req.Args.String("user")
	warnings, err := h.svc.Warnings.List(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	if len(warnings) == 0 {
		return info("📋 Warnings", fmt.Sprintf("%s has no warnings.", Mention(userID))), nil
	}

	resp := Response{
		Title:    "📋 Warnings",
		Body:     fmt.Sprintf("%s has %d warning(s).", Mention(userID), len(warnings)),
		Severity: SeverityWarning,
	}
	warnings, omitted := newestEntries(warnings)
	if omitted > 0 {
		resp.Body += fmt.Sprintf(" Showing the newest %d.", len(warnings))
	}
	for _, w := range warnings {
		resp = resp.AddField(fmt.Sprintf("#%d · %s", w.ID, w.IssuedAt.Format("2006-01-02")),
			fmt.Sprintf("%s (by %s)", w.Reason, Mention(w.IssuedBy)), false)
	}
	return resp, nil
}

func (h *handlers) rateStaff(ctx context.Context, req Request) (Response, error) {
	staffID := req.Args.String("staff")
	rating, err := h.svc.Ratings.Rate(ctx, usecase.RateStaffRequest{
		StaffID: staffID,
		RaterID: req.Caller.UserID,
		Score:   req.Args.Int("score", 0),
		Reason:  req.Args.String("reason"),
	})
	if err != nil {
		return Response{}, err
	}

	resp := success("Rating recorded", fmt.Sprintf("You rated %s with %+d.", Mention(staffID), rating.Score))
	if rating.Reason != "" {
		resp = resp.AddField("Reason", rating.Reason, false)
	}
	return resp, nil
}

func (h *handlers) staffAverage(ctx context.Context, req Request) (Response, error) {
	staffID := req.Caller.UserID
	if req.Args.Has("staff") {
		staffID = req.Args.String("staff")
	}
	avg, ok, err := h.svc.Ratings.Average(ctx, staffID)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return info("📈 Staff ratings", fmt.Sprintf("%s has no ratings yet.", Mention(staffID))), nil
	}

	resp := info("📈 Staff ratings", fmt.Sprintf("Ratings of %s", Mention(staffID))).
		AddField("Average", fmt.Sprintf("%.2f", avg.Average), true).
		AddField("Ratings", strconv.Itoa(avg.Count), true)

	history, err := h.svc.Ratings.History(ctx, staffID, 5)
	if err != nil {
		return Response{}, err
	}
	var lines []string
	for _, r := range history {
		line := fmt.Sprintf("%+d", r.Score)
		if r.Reason != "" {
			line += " · " + r.Reason
		}
		lines = append(lines, line)
	}
	return resp.AddField("Latest", strings.Join(lines, "\n"), false), nil
}

func (h *handlers) staffRanking(ctx context.Context, req Request) (Response, error) {
	top := req.Args.Int("top", 10)
	if top <= 0 {
		return Response{}, domain.InvalidArgument("top", "must be positive")
	}
	ranking, err := h.svc.Ratings.Ranking(ctx, top)
	if err != nil {
		return Response{}, err
	}
	if len(ranking) == 0 {
		return info("🏆 Staff ranking", "No staff member has been rated yet."), nil
	}

	var lines []string
	for i, entry := range ranking {
		lines = append(lines, fmt.Sprintf("**%d.** %s · %.2f (%d)", i+1, Mention(entry.StaffID), entry.Average, entry.Count))
	}
	return info("🏆 Staff ranking", strings.Join(lines, "\n")), nil
}

func (h *handlers) addSuggestion(ctx context.Context, req Request) (Response, error) {
	suggestion, err := h.svc.Suggestions.Add(ctx, req.Caller.UserID, req.Args.String("text"))
	if err != nil {
		return Response{}, err
	}
	resp := success("Suggestion received", suggestion.Text)
	resp.Footer = fmt.Sprintf("Suggestion #%d by %s", suggestion.ID, req.Caller.Username)
	return resp, nil
}

func (h *handlers) listSuggestions(ctx context.Context, req Request) (Response, error) {
	limit := req.Args.Int("limit", 10)
	if limit <= 0 {
		return Response{}, domain.InvalidArgument("limit", "must be positive")
	}
	limit = min(limit, maxListEntries)
	suggestions, err := h.svc.Suggestions.List(ctx, domain.SuggestionFilter{Limit: limit})
	if err != nil {
		return Response{}, err
	}
	if len(suggestions) == 0 {
		return info("💡 Suggestions", "There are no suggestions yet."), nil
	}

	resp := info("💡 Suggestions", fmt.Sprintf("Latest %d suggestion(s)", len(suggestions)))
	for _, s := range suggestions {
		resp = resp.AddField(fmt.Sprintf("#%d", s.ID), fmt.Sprintf("%s (by %s)", s.Text, Mention(s.AuthorID)), false)
	}
	return resp, nil
}

func (h *handlers) reactionLog(ctx context.Context, req Request) (Response, error) {
	filter := domain.ReactionFilter{UserID: req.Args.String("user"), Limit: 15}
	entries, err := h.svc.Reactions.List(ctx, filter)
	if err != nil {
		return Response{}, err
	}
	if len(entries) == 0 {
		return info("🛡️ Reaction log", "No reactions recorded."), nil
	}

	var lines []string
	for _, e := range entries {
		verb := "added"
		if e.Action == domain.ReactionRemoved {
			verb = "removed"
		}
		lines = append(lines, fmt.Sprintf("`%s` %s %s %s on %s", e.CreatedAt.Format("01-02 15:04"), Mention(e.UserID), verb, e.Emoji, e.MessageID))
	}
	return info("🛡️ Reaction log", strings.Join(lines, "\n")), nil
}

func (h *handlers) applyJob(ctx context.Context, req Request) (Response, error) {
	app, err := h.svc.Jobs.Apply(ctx, req.Caller.UserID, req.Args.String("job"), req.Args.String("motivation"))
	if err != nil {
		return Response{}, err
	}
	resp := success("Application sent", fmt.Sprintf("Your application for **%s** is pending review.", app.Job))
	resp.Footer = fmt.Sprintf("Application #%d", app.ID)
	return resp, nil
}

func (h *handlers) decideJob(ctx context.Context, req Request) (Response, error) {
	outcome, err := domain.ParseJobOutcome(req.Args.String("outcome"))
	if err != nil {
		return Response{}, err
	}
	app, err := h.svc.Jobs.Decide(ctx, int64(req.Args.Int("id", 0)), outcome, req.Caller.UserID, req.Caller.GuildID)
	if err != nil {
		return Response{}, err
	}
	return success("Job application "+string(app.Status),
		fmt.Sprintf("Application #%d of %s for **%s** was %s.", app.ID, Mention(app.UserID), app.Job, app.Status)), nil
}

func (h *handlers) listJobs(ctx context.Context, req Request) (Response, error) {
	status := domain.JobStatusPending
	if req.Args.Has("status") {
		switch s := domain.JobStatus(strings.ToLower(req.Args.String("status"))); s {
		case domain.JobStatusPending, domain.JobStatusAccepted, domain.JobStatusRejected:
			status = s
		case "all":
			status = ""
		default:
			return Response{}, domain.InvalidArgument("status", "expected pending, accepted, rejected or all")
		}
	}

	apps, err := h.svc.Jobs.List(ctx, status)
	if err != nil {
		return Response{}, err
	}
	resp := info("💼 Job applications", fmt.Sprintf("Open jobs: %s", strings.Join(h.svc.Jobs.Jobs(), ", ")))
	if len(apps) == 0 {
		resp.Body += "\nNo applications found."
		return resp, nil
	}
	apps, omitted := newestEntries(apps)
	if omitted > 0 {
		resp.Body += fmt.Sprintf("\nShowing the newest %d of %d applications.", len(apps), len(apps)+omitted)
	}
	for _, app := range apps {
		resp = resp.AddField(fmt.Sprintf("#%d · %s · %s", app.ID, app.Job, app.Status),
			fmt.Sprintf("%s: %s", Mention(app.UserID), app.Motivation), false)
	}
	return resp, nil
}

func (h *handlers) services(_ context.Context, _ Request) (Response, error) {
	return info("🚨 Emergency services", "Services available on the server").
		AddField("👮 Police", "Public order and investigations", true).
		AddField("🚑 Medics", "Emergency care and hospital", true).
		AddField("🔧 Mechanics", "Vehicle repair and towing", true), nil
}

func (h *handlers) ping(_ context.Context, _ Request) (Response, error) {
	resp := Response{Title: "🏓 Pong!", Severity: SeveritySuccess}
	if h.svc.Latency != nil {
		resp.Body = fmt.Sprintf("Latency: %dms", h.svc.Latency().Milliseconds())
	}
	return resp, nil
}

func (h *handlers) help(_ context.Context, _ Request) (Response, error) {
	resp := info("🤖 Bot commands", "Full command list by category")
	var (
		category string
		lines    []string
	)
	flush := func() {
		if len(lines) > 0 {
			resp = resp.AddField(category, strings.Join(lines, "\n"), false)
		}
		lines = nil
	}

	for _, cmd := range h.d.Commands() {
		if cmd.Category != category {
			flush()
			category = cmd.Category
		}
		line := fmt.Sprintf("`%s` %s", cmd.Usage(h.d.Prefix()), cmd.Summary)
		if len(cmd.Aliases) > 0 {
			line += fmt.Sprintf(" (alias: %s)", strings.Join(cmd.Aliases, ", "))
		}
		if cmd.RequiresStaff {
			line += " · staff only"
		}
		lines = append(lines, line)
	}
	flush()
	resp.Footer = "Puro Chile RP"
	return resp, nil
}

// maxListEntries is the most records a list reply renders, one embed field each
const maxListEntries = 25

// newestEntries keeps the last maxListEntries of an oldest-first slice and
// reports how many were left out
func newestEntries[T any](items []T) ([]T, int) {
	if len(items) <= maxListEntries {
		return items, 0
	}
	omitted := len(items) - maxListEntries
	return items[omitted:], omitted
}
