package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perspectr/perspectr/internal/profile"
)

var (
	profileAnswers   []string
	profileInstagram string
	profileDiscord   string
	profileName      string
)

func init() {
	profileUpdateCmd.Flags().StringArrayVar(&profileAnswers, "answer", nil, "Answer as N=text (repeatable, N is the question number)")
	profileUpdateCmd.Flags().StringVar(&profileInstagram, "instagram", "", "Instagram username")
	profileUpdateCmd.Flags().StringVar(&profileDiscord, "discord", "", "Discord username")
	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "Display name")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileQuestionsCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Read or update your questionnaire profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your stored profile and answers",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update answers and contact details",
	Long: `Update your questionnaire answers and contact details.

Fields that are not given keep their stored values.

Examples:
  perspectr profile update --answer 1="I grew up by the sea" --answer 5="Finishing a marathon"
  perspectr profile update --instagram my_handle --discord me#1234`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

var profileQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questionnaire",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !humanOutput {
			return outputJSON(profile.Questions)
		}
		for _, q := range profile.Questions {
			fmt.Printf("%d. %s %s\n", q.ID, q.Text, subtle.Sprintf("(max %d words)", q.MaxWords))
		}
		return nil
	},
}

// ProfileResponse is the JSON output of profile show.
type ProfileResponse struct {
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Instagram string         `json:"instagram,omitempty"`
	Discord   string         `json:"discord,omitempty"`
	Answers   map[int]string `json:"answers"`
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireViewer(cfg)
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	client := newProfileClient(cfg, logger)
	rec, err := client.Document(commandContext(cmd), cfg.ViewerID)
	if err != nil {
		if profile.IsNotFound(err) {
			exitWithError(ExitDataError, "no profile stored for %s\n\nRun 'perspectr profile update' to create one.", cfg.ViewerID)
		}
		exitWithError(ExitDataError, "loading profile: %v", err)
	}

	resp := ProfileResponse{
		UserID:    cfg.ViewerID,
		Name:      rec.Name,
		Email:     rec.Email,
		Instagram: rec.Instagram(),
		Discord:   rec.Discord(),
		Answers:   profile.ParseAnswers(rec.Text),
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	fmt.Println(brand.Sprint(resp.Name))
	fmt.Printf("  Email:     %s\n", resp.Email)
	if resp.Instagram != "" {
		fmt.Printf("  Instagram: @%s\n", rec.InstagramUsername())
	}
	fmt.Printf("  Discord:   %s\n\n", resp.Discord)
	for _, q := range profile.Questions {
		fmt.Printf("%s\n", info.Sprintf("%d. %s", q.ID, q.Text))
		answer := resp.Answers[q.ID]
		if answer == "" {
			answer = subtle.Sprint("(no answer)")
		}
		fmt.Printf("   %s\n\n", answer)
	}
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireViewer(cfg)
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	updates, err := parseAnswerFlags(profileAnswers)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	ctx := commandContext(cmd)
	client := newProfileClient(cfg, logger)

	existing, err := client.Document(ctx, cfg.ViewerID)
	if err != nil && !profile.IsNotFound(err) {
		exitWithError(ExitDataError, "loading profile: %v", err)
	}
	if existing == nil {
		existing = &profile.Record{}
	}

	sub := mergeSubmission(cfg.ViewerID, cfg.ViewerEmail, existing, updates)
	if err := client.Save(ctx, sub); err != nil {
		exitWithError(ExitDataError, "saving profile: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated profile for %s\n", cfg.ViewerID)
		return nil
	}
	return outputJSON(map[string]string{"status": "updated", "user_id": cfg.ViewerID})
}

// parseAnswerFlags turns N=text flags into answers, checking question
// numbers and word limits.
func parseAnswerFlags(flags []string) (map[int]string, error) {
	answers := make(map[int]string, len(flags))
	for _, f := range flags {
		num, text, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --answer %q: expected N=text", f)
		}
		id, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			return nil, fmt.Errorf("invalid question number %q", num)
		}
		q, ok := profile.QuestionByID(id)
		if !ok {
			return nil, fmt.Errorf("no question %d (valid: 1-%d)", id, len(profile.Questions))
		}
		text = strings.TrimSpace(text)
		if n := profile.WordCount(text); n > q.MaxWords {
			return nil, fmt.Errorf("answer to question %d has %d words (max %d)", id, n, q.MaxWords)
		}
		answers[id] = text
	}
	return answers, nil
}

// mergeSubmission applies flag updates over the stored document.
func mergeSubmission(userID, email string, existing *profile.Record, updates map[int]string) profile.Submission {
	answers := profile.ParseAnswers(existing.Text)
	for id, text := range updates {
		answers[id] = text
	}

	sub := profile.Submission{
		UserID:  userID,
		Name:    existing.Name,
		Email:   existing.Email,
		Text:    profile.FormatAnswers(answers),
		Social1: existing.Social1,
		Social2: existing.Social2,
	}
	if profileName != "" {
		sub.Name = profileName
	}
	if sub.Email == "" {
		sub.Email = email
	}
	if profileInstagram != "" {
		sub.Social1 = profile.InstagramURL(strings.TrimPrefix(profileInstagram, "@"))
	}
	if profileDiscord != "" {
		sub.Social2 = profileDiscord
	}
	return sub
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
