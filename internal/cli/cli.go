// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/lsreplay/internal/commands"
	"github.com/temirov/lsreplay/internal/config"
	"github.com/temirov/lsreplay/internal/filesystem"
	"github.com/temirov/lsreplay/internal/output"
	"github.com/temirov/lsreplay/internal/services/clipboard"
	"github.com/temirov/lsreplay/internal/types"
	"github.com/temirov/lsreplay/internal/utils"
)

const (
	formatFlagName       = "format"
	summaryFlagName      = "summary"
	thresholdFlagName    = "threshold"
	capacityFlagName     = "capacity"
	requiredFreeFlagName = "required-free"
	verifyFlagName       = "verify"
	copyFlagName         = "copy"
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionFlagName      = "version"
	versionTemplate      = "lsreplay version: %s\n"

	rootUse              = "lsreplay"
	rootShortDescription = "lsreplay command line interface"
	rootLongDescription  = `lsreplay rebuilds a directory tree from a terminal transcript of "$ cd" and "$ ls" commands.
It reports the total of small directories and the smallest directory worth deleting, or renders the tree itself.
Pass transcript files as arguments, or "-" (or nothing) to read standard input.`

	reportCommandName = "report"
	treeCommandName   = "tree"
	initCommandName   = "init"
	reportUse         = reportCommandName + " [transcripts...]"
	treeUse           = treeCommandName + " [transcripts...]"
	reportAlias       = "r"
	treeAlias         = "t"

	reportShortDescription = "report directory size answers (" + reportAlias + ")"
	treeShortDescription   = "display the reconstructed tree (" + treeAlias + ")"
	initShortDescription   = "write a default configuration file"

	// reportLongDescription provides detailed help for the report command.
	reportLongDescription = `Rebuild the tree for each transcript and print two answers:
the total size of every directory at most --threshold bytes, and the smallest directory
whose deletion leaves --required-free bytes free on a --capacity byte device.`
	// reportUsageExample demonstrates report command usage.
	reportUsageExample = `  # Report on a recorded session
  lsreplay report session.txt

  # Use a different device and verify totals, printing JSON
  lsreplay report --capacity 100000000 --verify --format json session.txt`

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Render the directory tree reconstructed from each transcript with recursive sizes.
Use --format to select raw, json, or xml output.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Draw the tree
  lsreplay tree session.txt

  # Emit XML without per-directory counts
  lsreplay tree --format xml --summary=false session.txt`

	formatFlagDescription       = "output format (raw, json, xml)"
	summaryFlagDescription      = "include file and directory counts"
	thresholdFlagDescription    = "largest directory size counted in the bounded total"
	capacityFlagDescription     = "total device capacity in bytes"
	requiredFreeFlagDescription = "free space required after deletion in bytes"
	verifyFlagDescription       = "recount every directory total before reporting"
	copyFlagDescription         = "copy output to clipboard"
	configFlagDescription       = "configuration file path"
	verboseFlagDescription      = "log debug details"
	globalFlagDescription       = "write the configuration under the home directory"
	forceFlagDescription        = "overwrite an existing configuration file"
	versionFlagDescription      = "display application version"

	invalidFormatMessage         = "Invalid format value '%s'"
	negativeValueMessage         = "--%s must not be negative, got %d"
	warningSkipTranscriptMessage = "skipping transcript"
	transcriptProcessedMessage   = "transcript processed"
	warningNoCandidateMessage    = "no directory frees enough space"
	configurationWrittenFormat   = "Configuration written to %s\n"
	workingDirectoryErrorFormat  = "unable to determine working directory: %w"
	errorClipboardFormat         = "copy output to clipboard: %w"
	errorNoTranscriptsProcessed  = "no transcript could be processed"
)

// Dependencies carries the collaborators the commands use. Zero fields fall back to process defaults.
type Dependencies struct {
	Logger           *zap.Logger
	LogLevel         *zap.AtomicLevel
	Copier           clipboard.Copier
	Stdin            io.Reader
	Stdout           io.Writer
	WorkingDirectory string
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.Stdin == nil {
		dependencies.Stdin = os.Stdin
	}
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	return dependencies
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// Execute runs the lsreplay application.
func Execute(logger *zap.Logger, level *zap.AtomicLevel) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger, LogLevel: level})
	rootCommand.SetArgs(normalizeCopyFlagArguments(os.Args[1:]))
	return rootCommand.ExecuteContext(context.Background())
}

// applicationState is shared by the subcommands of one root command.
type applicationState struct {
	dependencies  Dependencies
	configPath    string
	verbose       bool
	configuration config.ApplicationConfiguration
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	state := &applicationState{dependencies: dependencies.withDefaults()}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(state.dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if state.verbose && state.dependencies.LogLevel != nil {
				state.dependencies.LogLevel.SetLevel(zapcore.DebugLevel)
			}
			if command.Name() == initCommandName || command == command.Root() {
				return nil
			}
			return state.loadConfiguration()
		},
	}
	rootCommand.SetOut(state.dependencies.Stdout)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&state.configPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&state.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		createReportCommand(state),
		createTreeCommand(state),
		createInitCommand(state),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func (state *applicationState) loadConfiguration() error {
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: state.dependencies.WorkingDirectory,
		ExplicitFilePath: state.configPath,
	})
	if loadError != nil {
		return loadError
	}
	state.configuration = loaded
	return nil
}

// createReportCommand returns the report subcommand.
func createReportCommand(state *applicationState) *cobra.Command {
	var outputFormat string
	var copyEnabled bool
	options := commands.DefaultReportOptions()

	reportCommand := &cobra.Command{
		Use:     reportUse,
		Aliases: []string{reportAlias},
		Short:   reportShortDescription,
		Long:    reportLongDescription,
		Example: reportUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := state.configuration.Report
			flags := command.Flags()
			resolvedFormat := resolveString(flags.Changed(formatFlagName), outputFormat, configured.Format, types.FormatRaw)
			resolvedOptions := commands.ReportOptions{
				Threshold:     resolveInt64(flags.Changed(thresholdFlagName), options.Threshold, configured.Threshold, filesystem.DefaultSizeThreshold),
				TotalCapacity: resolveInt64(flags.Changed(capacityFlagName), options.TotalCapacity, configured.TotalCapacity, filesystem.DefaultTotalCapacity),
				RequiredFree:  resolveInt64(flags.Changed(requiredFreeFlagName), options.RequiredFree, configured.RequiredFree, filesystem.DefaultRequiredFree),
				Verify:        resolveBool(flags.Changed(verifyFlagName), options.Verify, configured.Verify, false),
			}
			resolvedCopy := resolveBool(flags.Changed(copyFlagName), copyEnabled, configured.Clipboard, false)
			for flagName, value := range map[string]int64{
				thresholdFlagName:    resolvedOptions.Threshold,
				capacityFlagName:     resolvedOptions.TotalCapacity,
				requiredFreeFlagName: resolvedOptions.RequiredFree,
			} {
				if value < 0 {
					return fmt.Errorf(negativeValueMessage, flagName, value)
				}
			}

			process := func(source types.TranscriptSource, tree *filesystem.Tree) (interface{}, error) {
				report, reportError := commands.GetReportData(source.Name, tree, resolvedOptions)
				if reportError != nil {
					return nil, reportError
				}
				if report.Candidate == nil {
					state.dependencies.Logger.Warn(warningNoCandidateMessage,
						zap.String("transcript", source.Name),
						zap.Int64("neededBytes", report.NeededBytes),
					)
				}
				return report, nil
			}
			return state.run(command.Context(), types.CommandReport, arguments, resolvedFormat, false, resolvedCopy, process)
		},
	}

	reportCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	reportCommand.Flags().Int64Var(&options.Threshold, thresholdFlagName, filesystem.DefaultSizeThreshold, thresholdFlagDescription)
	reportCommand.Flags().Int64Var(&options.TotalCapacity, capacityFlagName, filesystem.DefaultTotalCapacity, capacityFlagDescription)
	reportCommand.Flags().Int64Var(&options.RequiredFree, requiredFreeFlagName, filesystem.DefaultRequiredFree, requiredFreeFlagDescription)
	reportCommand.Flags().BoolVar(&options.Verify, verifyFlagName, false, verifyFlagDescription)
	registerCopyFlag(reportCommand.Flags(), &copyEnabled)
	return reportCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(state *applicationState) *cobra.Command {
	var outputFormat string
	var summaryEnabled bool
	var copyEnabled bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := state.configuration.Tree
			flags := command.Flags()
			resolvedFormat := resolveString(flags.Changed(formatFlagName), outputFormat, configured.Format, types.FormatRaw)
			resolvedSummary := resolveBool(flags.Changed(summaryFlagName), summaryEnabled, configured.Summary, true)
			resolvedCopy := resolveBool(flags.Changed(copyFlagName), copyEnabled, configured.Clipboard, false)

			treeBuilder := &commands.TreeBuilder{IncludeSummary: resolvedSummary}
			process := func(source types.TranscriptSource, tree *filesystem.Tree) (interface{}, error) {
				rootNode := treeBuilder.GetTreeData(tree)
				rootNode.Transcript = source.Name
				return rootNode, nil
			}
			return state.run(command.Context(), types.CommandTree, arguments, resolvedFormat, resolvedSummary, resolvedCopy, process)
		},
	}

	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	treeCommand.Flags().BoolVar(&summaryEnabled, summaryFlagName, true, summaryFlagDescription)
	registerCopyFlag(treeCommand.Flags(), &copyEnabled)
	return treeCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(state *applicationState) *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initCommandName,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: state.dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(state.dependencies.Stdout, configurationWrittenFormat, writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&globalTarget, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// transcriptProcessor turns one reconstructed tree into a renderable item.
type transcriptProcessor func(source types.TranscriptSource, tree *filesystem.Tree) (interface{}, error)

// run loads every transcript, processes it, and renders the collected items.
// A transcript that fails is logged and skipped; the run fails only if none succeeded.
func (state *applicationState) run(
	ctx context.Context,
	commandName string,
	arguments []string,
	format string,
	withSummary bool,
	copyToClipboard bool,
	process transcriptProcessor,
) error {
	format = strings.ToLower(format)
	if !isSupportedFormat(format) {
		return fmt.Errorf(invalidFormatMessage, format)
	}
	sources, resolveError := resolveTranscriptSources(arguments, state.dependencies.WorkingDirectory)
	if resolveError != nil {
		return resolveError
	}

	collected, collectError := state.collect(ctx, sources, process)
	if collectError != nil {
		return collectError
	}

	var rendered string
	switch format {
	case types.FormatJSON:
		encoded, renderError := output.RenderJSON(collected)
		if renderError != nil {
			return renderError
		}
		rendered = encoded + "\n"
	case types.FormatXML:
		encoded, renderError := output.RenderXML(collected)
		if renderError != nil {
			return renderError
		}
		rendered = encoded + "\n"
	default:
		rendered = output.RenderRaw(commandName, collected, withSummary)
	}

	if _, writeError := io.WriteString(state.dependencies.Stdout, rendered); writeError != nil {
		return writeError
	}
	if copyToClipboard {
		if copyError := state.dependencies.Copier.Copy(rendered); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}
	return nil
}

// collect processes transcripts concurrently and returns the successful items in argument order.
// Each transcript gets its own tree, so the goroutines share nothing but the result slots.
func (state *applicationState) collect(ctx context.Context, sources []types.TranscriptSource, process transcriptProcessor) ([]interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := state.dependencies.Logger
	results := make([]interface{}, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for index, source := range sources {
		index, source := index, source
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			tree, loadError := commands.LoadTree(source, state.dependencies.Stdin)
			if loadError != nil {
				logger.Warn(warningSkipTranscriptMessage, zap.String("transcript", source.Name), zap.Error(loadError))
				return nil
			}
			item, processError := process(source, tree)
			if processError != nil {
				logger.Warn(warningSkipTranscriptMessage, zap.String("transcript", source.Name), zap.Error(processError))
				return nil
			}
			logger.Debug(transcriptProcessedMessage,
				zap.String("transcript", source.Name),
				zap.Int("nodes", tree.Len()),
				zap.Int64("usedBytes", tree.Root().Size),
			)
			results[index] = item
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	collected := make([]interface{}, 0, len(results))
	for _, item := range results {
		if item != nil {
			collected = append(collected, item)
		}
	}
	if len(collected) == 0 {
		return nil, errors.New(errorNoTranscriptsProcessed)
	}
	return collected, nil
}

// resolveTranscriptSources converts arguments to transcript sources, dropping repeats.
// No arguments means standard input.
func resolveTranscriptSources(arguments []string, workingDirectory string) ([]types.TranscriptSource, error) {
	if len(arguments) == 0 {
		arguments = []string{types.StandardInputName}
	}
	if workingDirectory == "" {
		current, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = current
	}

	seen := make(map[string]struct{}, len(arguments))
	var sources []types.TranscriptSource
	for _, argument := range arguments {
		if argument == types.StandardInputName {
			if _, ok := seen[argument]; ok {
				continue
			}
			seen[argument] = struct{}{}
			sources = append(sources, types.TranscriptSource{Name: argument, IsStdin: true})
			continue
		}
		absolutePath := argument
		if !filepath.IsAbs(absolutePath) {
			absolutePath = filepath.Join(workingDirectory, argument)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		seen[cleanPath] = struct{}{}
		sources = append(sources, types.TranscriptSource{Name: argument, AbsolutePath: cleanPath})
	}
	return sources, nil
}

func resolveString(flagChanged bool, flagValue string, configured string, fallback string) string {
	if flagChanged {
		return flagValue
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveInt64(flagChanged bool, flagValue int64, configured *int64, fallback int64) int64 {
	if flagChanged {
		return flagValue
	}
	if configured != nil {
		return *configured
	}
	return fallback
}

func resolveBool(flagChanged bool, flagValue bool, configured *bool, fallback bool) bool {
	if flagChanged {
		return flagValue
	}
	if configured != nil {
		return *configured
	}
	return fallback
}
