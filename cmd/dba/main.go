// Package main provides the dbassist CLI application entry point.
// dbassist is a client for a natural-language-to-SQL assistant: it converses
// with the assistant, executes SQL against the active database connection,
// and reviews query history.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dbassist/internal/logger"
	"dbassist/internal/services"
)

var (
	logLevel string
	logFile  string
	useLocal bool
	version  = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dba",
	Short: "dbassist - natural-language-to-SQL assistant client",
	Long: `dbassist converses with an LLM-backed SQL assistant over your active
database connection, executes the generated SQL, and keeps the conversation
timeline reconciled with the server's history.`,
}

// askCmd sends one natural-language request through a full chat turn.
var askCmd = &cobra.Command{
	Use:   "ask <request...>",
	Short: "Ask the assistant to generate SQL from natural language",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAsk,
}

// execCmd executes a literal SQL statement against the active connection.
var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Execute a literal SQL statement",
	Args:  cobra.ExactArgs(1),
	Run:   runExec,
}

// historyCmd prints the server-side query history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the query history",
	Run:   runHistory,
}

// clearCmd clears the chat history for the active connection.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the chat history for the active connection",
	Run:   runClear,
}

// schemaCmd prints the schema of the active connection.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the schema of the active connection",
	Run:   runSchema,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("dbassist v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	execCmd.Flags().BoolVar(&useLocal, "local", false, "Execute against the local SQLite database instead of the API")

	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap wires the engine and, when a connection is needed, binds the
// session to the server's active connection.
func bootstrap(needConnection bool) *services.App {
	app, err := services.Bootstrap(useLocal)
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}

	if needConnection {
		connection, err := app.Client.ActiveConnection()
		if err != nil {
			logger.Fatal("No active database connection", "error", err)
		}
		if err := app.Chat.ActivateConnection(connection); err != nil {
			logger.Fatal("Failed to load chat history", "error", err)
		}
		logger.Info("Session active", "connection", connection.Name)
	}
	return app
}

func runAsk(_ *cobra.Command, args []string) {
	app := bootstrap(true)

	before := app.Store.Len()
	request := strings.Join(args, " ")
	if err := app.Chat.SendMessage(request); err != nil {
		logger.Fatal("Turn failed", "error", err)
	}

	messages := app.Store.Messages()
	if before > len(messages) {
		// Reconciliation replaced the timeline wholesale; show everything.
		before = 0
	}
	for _, message := range messages[before:] {
		fmt.Printf("[%s] %s\n", message.Sender, message.DisplayText())
	}
}

func runExec(_ *cobra.Command, args []string) {
	app := bootstrap(!useLocal)

	if err := app.Execution.ExecuteSQL(args[0]); err != nil {
		logger.Fatal("Execution failed", "error", err)
	}

	messages := app.Store.Messages()
	if len(messages) == 0 {
		return
	}
	outcome := messages[len(messages)-1]
	fmt.Println(outcome.DisplayText())

	if outcome.IsQueryOutcome() && outcome.Result.HasTableData() {
		fmt.Println(strings.Join(outcome.Result.TableColumns(), " | "))
		for _, row := range outcome.Result.TableData() {
			cells := make([]string, 0, len(outcome.Result.TableColumns()))
			for _, column := range outcome.Result.TableColumns() {
				cells = append(cells, fmt.Sprintf("%v", row[column]))
			}
			fmt.Println(strings.Join(cells, " | "))
		}
	}
}

func runHistory(_ *cobra.Command, _ []string) {
	app := bootstrap(false)

	entries, err := app.Client.QueryHistory()
	if err != nil {
		logger.Fatal("Failed to load query history", "error", err)
	}
	for _, entry := range entries {
		fmt.Printf("%s  [%s] %s  (%s)\n",
			entry.QueryTime.Format("2006-01-02 15:04:05"),
			entry.QueryType, entry.Query, entry.ConnectionName)
	}
}

func runClear(_ *cobra.Command, _ []string) {
	app := bootstrap(true)

	if err := app.Chat.ClearChat(); err != nil {
		logger.Fatal("Failed to clear chat", "error", err)
	}
	logger.Info("Chat history cleared")
}

func runSchema(_ *cobra.Command, _ []string) {
	app := bootstrap(false)

	schema, err := app.Client.Schema()
	if err != nil {
		logger.Fatal("Failed to load schema", "error", err)
	}
	fmt.Println(schema)
}
