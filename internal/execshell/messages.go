package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitConfigFlagConstant                = "-c"
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitHeadReferenceConstant             = "HEAD"
	gitRemoteSubcommandNameConstant      = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitStatusSubcommandNameConstant      = "status"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitAddSubcommandNameConstant         = "add"
	gitCommitSubcommandNameConstant      = "commit"
	gitMessageFlagConstant               = "-m"
	gitPushSubcommandNameConstant        = "push"
	gitRevListSubcommandNameConstant     = "rev-list"
	gitFetchSubcommandNameConstant       = "fetch"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	githubPullRequestSubcommandConstant  = "pr"
	githubRepoSubcommandConstant         = "repo"
	githubListSubcommandConstant         = "list"
	githubCreateSubcommandConstant       = "create"
	githubViewSubcommandConstant         = "view"
	githubHeadFlagConstant               = "--head"
	githubTitleFlagConstant              = "--title"
	installerInstallSubcommandConstant   = "install"
)

const (
	gitCurrentBranchStartTemplateConstant            = "Resolving current branch in %s"
	gitCurrentBranchSuccessTemplateConstant          = "Current branch in %s is %s"
	gitCurrentBranchFailureTemplateConstant          = "Failed to resolve current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant = "Unable to resolve current branch in %s: %s"
	gitRemoteLookupStartTemplateConstant             = "Looking up remote %s in %s"
	gitRemoteLookupSuccessTemplateConstant           = "Remote %s in %s points to %s"
	gitRemoteLookupFailureTemplateConstant           = "Failed to look up remote %s in %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant  = "Unable to look up remote %s in %s: %s"
	gitStatusStartTemplateConstant                   = "Checking worktree status in %s"
	gitStatusCleanSuccessTemplateConstant            = "Worktree in %s is clean"
	gitStatusDirtySuccessTemplateConstant            = "Worktree in %s has uncommitted changes"
	gitStatusFailureTemplateConstant                 = "Failed to check worktree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant        = "Unable to check worktree status in %s: %s"
	gitCheckoutStartTemplateConstant                 = "Switching to branch %s in %s"
	gitCheckoutSuccessTemplateConstant               = "Switched to branch %s in %s"
	gitCheckoutFailureTemplateConstant               = "Failed to switch to branch %s in %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant      = "Unable to switch to branch %s in %s: %s"
	gitAddStartTemplateConstant                      = "Staging changes in %s"
	gitAddSuccessTemplateConstant                    = "Staged changes in %s"
	gitAddFailureTemplateConstant                    = "Failed to stage changes in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant           = "Unable to stage changes in %s: %s"
	gitCommitStartTemplateConstant                   = "Committing %q in %s"
	gitCommitSuccessTemplateConstant                 = "Committed %q in %s"
	gitCommitFailureTemplateConstant                 = "Failed to commit %q in %s (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant        = "Unable to commit %q in %s: %s"
	gitPushStartTemplateConstant                     = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                   = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                   = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant          = "Unable to push %s to %s from %s: %s"
	gitFetchStartTemplateConstant                    = "Fetching %s from %s into %s"
	gitFetchSuccessTemplateConstant                  = "Fetched %s from %s into %s"
	gitFetchFailureTemplateConstant                  = "Failed to fetch %s from %s into %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant         = "Unable to fetch %s from %s into %s: %s"
	gitRevListStartTemplateConstant                  = "Counting commits in %s within %s"
	gitRevListSuccessTemplateConstant                = "Range %s in %s contains %s commit(s)"
	gitRevListFailureTemplateConstant                = "Failed to count commits in %s within %s (exit code %d%s)"
	gitRevListExecutionFailureTemplateConstant       = "Unable to count commits in %s within %s: %s"
	githubPullRequestListStartTemplateConstant       = "Listing pull requests for %s"
	githubPullRequestListSuccessTemplateConstant     = "Listed pull requests for %s"
	githubPullRequestListFailureTemplateConstant     = "Failed to list pull requests for %s (exit code %d%s)"
	githubPullRequestListExecutionTemplateConstant   = "Unable to list pull requests for %s: %s"
	githubPullRequestCreateStartTemplateConstant     = "Opening pull request %q from %s"
	githubPullRequestCreateSuccessTemplateConstant   = "Opened pull request %q from %s: %s"
	githubPullRequestCreateFailureTemplateConstant   = "Failed to open pull request %q from %s (exit code %d%s)"
	githubPullRequestCreateExecutionTemplateConstant = "Unable to open pull request %q from %s: %s"
	colrevStartTemplateConstant                      = "Running colrev %s in %s"
	colrevSuccessTemplateConstant                    = "colrev %s finished in %s"
	colrevFailureTemplateConstant                    = "colrev %s failed in %s (exit code %d%s)"
	colrevExecutionFailureTemplateConstant           = "Unable to run colrev %s in %s: %s"
	installerStartTemplateConstant                   = "Installing %s"
	installerSuccessTemplateConstant                 = "Installed %s"
	installerFailureTemplateConstant                 = "Failed to install %s (exit code %d%s)"
	installerExecutionFailureTemplateConstant        = "Unable to install %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// shouldLogStartMessage suppresses start notifications for read-only lookups.
func (formatter CommandMessageFormatter) shouldLogStartMessage(command ShellCommand) bool {
	switch command.Name {
	case CommandGitHub:
		arguments := command.Details.Arguments
		if len(arguments) >= 2 && arguments[0] == githubRepoSubcommandConstant && arguments[1] == githubViewSubcommandConstant {
			return false
		}
		return true
	case CommandGit:
		subcommand, _ := formatter.gitSubcommand(command.Details.Arguments)
		return subcommand != gitRevParseSubcommandNameConstant &&
			subcommand != gitRevListSubcommandNameConstant &&
			subcommand != gitSymbolicRefSubcommandNameConstant
	default:
		return true
	}
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandColrev:
		return formatter.describeColrevMessage(command, result, failure, stage)
	case CommandInstaller:
		return formatter.describeInstallerMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand, subcommandArguments := formatter.gitSubcommand(command.Details.Arguments)
	workingDirectory := formatter.describeWorkingDirectory(command)
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		if !containsArgument(subcommandArguments, gitAbbrevRefFlagConstant) {
			break
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCurrentBranchStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, formatter.ensureValue(result.StandardOutput))
		case messageStageFailure:
			return fmt.Sprintf(gitCurrentBranchFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCurrentBranchExecutionFailureTemplateConstant, workingDirectory, failureDescription)
		}
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(subcommandArguments, 0) != gitRemoteGetURLSubcommandConstant {
			break
		}
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(subcommandArguments, 1))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(result.StandardOutput))
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteLookupExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
		}
	case gitStatusSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			if len(strings.TrimSpace(result.StandardOutput)) == 0 {
				return fmt.Sprintf(gitStatusCleanSuccessTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitStatusDirtySuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, workingDirectory, failureDescription)
		}
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(subcommandArguments))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCheckoutStartTemplateConstant, branchName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, branchName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitCheckoutFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, branchName, workingDirectory, failureDescription)
		}
	case gitAddSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitAddStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitAddSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitAddFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, workingDirectory, failureDescription)
		}
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.ensureValue(findFlagValue(subcommandArguments, gitMessageFlagConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCommitStartTemplateConstant, commitMessage, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitCommitSuccessTemplateConstant, commitMessage, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitCommitFailureTemplateConstant, commitMessage, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, commitMessage, workingDirectory, failureDescription)
		}
	case gitFetchSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(subcommandArguments)
		referenceLabel := formatter.ensureValue(strings.Join(references, ", "))
		remoteLabel := formatter.ensureValue(remoteName)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitFetchStartTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitFetchSuccessTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitFetchFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitFetchExecutionFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, failureDescription)
		}
	case gitPushSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(subcommandArguments)
		referenceLabel := formatter.ensureValue(strings.Join(references, ", "))
		remoteLabel := formatter.ensureValue(remoteName)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitPushStartTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitPushSuccessTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitPushFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, failureDescription)
		}
	case gitRevListSubcommandNameConstant:
		revisionRange := formatter.ensureValue(formatter.extractFirstNonFlagArgument(subcommandArguments))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRevListStartTemplateConstant, workingDirectory, revisionRange)
		case messageStageSuccess:
			return fmt.Sprintf(gitRevListSuccessTemplateConstant, revisionRange, workingDirectory, formatter.ensureValue(result.StandardOutput))
		case messageStageFailure:
			return fmt.Sprintf(gitRevListFailureTemplateConstant, workingDirectory, revisionRange, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRevListExecutionFailureTemplateConstant, workingDirectory, revisionRange, failureDescription)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, 0) != githubPullRequestSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	switch formatter.argumentAtIndex(arguments, 1) {
	case githubListSubcommandConstant:
		repositoryLabel := formatter.describeWorkingDirectory(command)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubPullRequestListStartTemplateConstant, repositoryLabel)
		case messageStageSuccess:
			return fmt.Sprintf(githubPullRequestListSuccessTemplateConstant, repositoryLabel)
		case messageStageFailure:
			return fmt.Sprintf(githubPullRequestListFailureTemplateConstant, repositoryLabel, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubPullRequestListExecutionTemplateConstant, repositoryLabel, failureDescription)
		}
	case githubCreateSubcommandConstant:
		title := formatter.ensureValue(findFlagValue(arguments, githubTitleFlagConstant))
		headBranch := formatter.ensureValue(findFlagValue(arguments, githubHeadFlagConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubPullRequestCreateStartTemplateConstant, title, headBranch)
		case messageStageSuccess:
			return fmt.Sprintf(githubPullRequestCreateSuccessTemplateConstant, title, headBranch, formatter.ensureValue(result.StandardOutput))
		case messageStageFailure:
			return fmt.Sprintf(githubPullRequestCreateFailureTemplateConstant, title, headBranch, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubPullRequestCreateExecutionTemplateConstant, title, headBranch, failureDescription)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeColrevMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	invocation := strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(colrevStartTemplateConstant, invocation, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(colrevSuccessTemplateConstant, invocation, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(colrevFailureTemplateConstant, invocation, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(colrevExecutionFailureTemplateConstant, invocation, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeInstallerMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, 0) != installerInstallSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	packageName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(installerStartTemplateConstant, packageName)
	case messageStageSuccess:
		return fmt.Sprintf(installerSuccessTemplateConstant, packageName)
	case messageStageFailure:
		return fmt.Sprintf(installerFailureTemplateConstant, packageName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(installerExecutionFailureTemplateConstant, packageName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// gitSubcommand skips leading "-c key=value" pairs and returns the subcommand with its arguments.
func (formatter CommandMessageFormatter) gitSubcommand(arguments []string) (string, []string) {
	for index := 0; index < len(arguments); index++ {
		argument := strings.TrimSpace(arguments[index])
		if argument == gitConfigFlagConstant {
			index++
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument, arguments[index+1:]
	}
	return emptyStringConstant, nil
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := emptyStringConstant
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
