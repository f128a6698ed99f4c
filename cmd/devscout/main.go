// Package main provides the devscout CLI application entry point.
// Devscout is a chat-driven recruiting assistant demo: it forwards messages
// to a hosted language model, lets the model invoke a small tool set, and
// renders each tool's result in the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"devscout/internal/chat"
	"devscout/internal/config"
	"devscout/internal/dispatch"
	"devscout/internal/logger"
	"devscout/internal/store"
	"devscout/internal/testutils"
	"devscout/internal/tools"
	"devscout/internal/tui"
	"devscout/internal/ui"
	"devscout/internal/version"
	"devscout/pkg/chattypes"
)

var (
	logLevel string
	logFile  string
	testMode bool
	chatID   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devscout",
	Short: "Devscout - AI recruiting assistant demo",
	Long: `Devscout is a conversational demo assistant. It forwards your messages to a
hosted language model, which can answer in text or invoke tools that render
stock, event, and developer cards in the terminal.`,
	RunE: runChat, // Default behavior is to run the interactive chat
}

// chatCmd represents the chat command (explicit version of default behavior)
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `Start the interactive devscout chat. Pass --chat-id to resume a persisted conversation.`,
	RunE:  runChat,
}

// replayCmd rebuilds a persisted conversation's view from durable state.
var replayCmd = &cobra.Command{
	Use:   "replay <chat-id>",
	Short: "Print a stored conversation's rendered transcript",
	Long: `Load a conversation from the store and print its projected display units.
This exercises the same projection used to rebuild the UI on reload.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of devscout.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run with deterministic ids and timestamps")
	rootCmd.PersistentFlags().StringVar(&chatID, "chat-id", "", "Resume an existing conversation by id")

	// Bind flags to viper
	for _, name := range []string{"log-level", "log-file", "test-mode", "chat-id"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	testutils.SetTestMode(testMode)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	settings, err := config.Load()
	if err != nil {
		return err
	}
	logger.Info("Starting devscout", "version", version.GetVersion(), "provider", settings.Provider)

	dispatcher, err := dispatch.New(settings.Provider, settings.APIKey, settings.Model)
	if err != nil {
		return err
	}
	registry, err := tools.NewBuiltinRegistry()
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	chatState, err := resolveChat(st, settings.UserID)
	if err != nil {
		return err
	}

	orch := chat.New(dispatcher, registry, st)
	return tui.Run(orch, chatState)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := config.Load()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()
	if st == nil {
		return fmt.Errorf("no conversation store configured")
	}

	chatState, err := st.Load(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load conversation %s: %w", args[0], err)
	}

	renderer := ui.NewRenderer()
	fmt.Printf("%s (%s)\n\n", chatState.Title, chatState.Path)
	for _, unit := range ui.Project(chatState) {
		fmt.Println(renderer.Render(unit))
		fmt.Println()
	}
	return nil
}

// openStore opens the conversation database. Unauthenticated sessions never
// persist, so they skip the store entirely.
func openStore(settings *config.Settings) (store.Store, func(), error) {
	if settings.UserID == "" {
		return nil, func() {}, nil
	}
	bs, err := store.OpenBolt(settings.StorePath)
	if err != nil {
		return nil, nil, err
	}
	return bs, func() { _ = bs.Close() }, nil
}

// resolveChat loads the conversation named by --chat-id, or creates a fresh
// one.
func resolveChat(st store.Store, userID string) (*chattypes.Chat, error) {
	if chatID == "" {
		return chat.NewChat(userID), nil
	}
	if st == nil {
		return nil, fmt.Errorf("--chat-id requires an authenticated session (set DEVSCOUT_USER_ID)")
	}
	chatState, err := st.Load(context.Background(), chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", chatID, err)
	}
	return chatState, nil
}
