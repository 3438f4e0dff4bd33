package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/gitmigrate/internal/credentials"
)

const (
	credentialsCommandUseConstant              = "credentials"
	credentialsCommandShortDescriptionConstant = "Manage tokens stored in the system keyring"
	credentialsStoreCommandUseConstant         = "store <key>"
	credentialsStoreShortDescriptionConstant   = "Store a token in the system keyring for use as keyring:<key>"
	credentialsStoreLongDescriptionConstant    = "store reads a personal access token from the terminal without echo, or from standard input when it is not a terminal, and saves it in the system keyring. Reference it from the configuration as token: keyring:<key>."
	tokenPromptTemplateConstant                = "Token for %s: "
	tokenStoredTemplateConstant                = "Stored token %s under keyring:%s\n"
	emptyTokenMessageConstant                  = "token must not be empty"
	emptyKeyMessageConstant                    = "keyring key must not be empty"
	tokenReadErrorTemplateConstant             = "unable to read token: %w"
	tokenStoreErrorTemplateConstant            = "unable to store token: %w"
	tokenStoredLogMessageConstant              = "Token stored in keyring"
	keyringKeyFieldNameConstant                = "key"
	promptLineTerminatorConstant               = "\n"
)

// PasswordReader reads a secret from the input, prompting on the output when the input is a terminal.
type PasswordReader func(input io.Reader, output io.Writer, prompt string) (string, error)

// CredentialsCommandBuilder assembles the credentials Cobra command group.
type CredentialsCommandBuilder struct {
	LoggerProvider LoggerProvider
	Dependencies   CommandDependencies
}

// Build constructs the credentials command with its store subcommand.
func (builder *CredentialsCommandBuilder) Build() *cobra.Command {
	groupCommand := &cobra.Command{
		Use:           credentialsCommandUseConstant,
		Short:         credentialsCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	groupCommand.AddCommand(&cobra.Command{
		Use:           credentialsStoreCommandUseConstant,
		Short:         credentialsStoreShortDescriptionConstant,
		Long:          credentialsStoreLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		RunE:          builder.runStore,
	})
	return groupCommand
}

func (builder *CredentialsCommandBuilder) runStore(command *cobra.Command, arguments []string) error {
	keyringKey := strings.TrimSpace(arguments[0])
	if len(keyringKey) == 0 {
		return errors.New(emptyKeyMessageConstant)
	}

	readPassword := builder.Dependencies.passwordReader()
	token, readError := readPassword(command.InOrStdin(), command.ErrOrStderr(), fmt.Sprintf(tokenPromptTemplateConstant, keyringKey))
	if readError != nil {
		return fmt.Errorf(tokenReadErrorTemplateConstant, readError)
	}
	token = strings.TrimSpace(token)
	if len(token) == 0 {
		return errors.New(emptyTokenMessageConstant)
	}

	if storeError := builder.Dependencies.keyringWriter()(keyringKey, token); storeError != nil {
		return fmt.Errorf(tokenStoreErrorTemplateConstant, storeError)
	}

	builder.LoggerProvider.resolve().Debug(tokenStoredLogMessageConstant, zap.String(keyringKeyFieldNameConstant, keyringKey))
	fmt.Fprintf(command.OutOrStdout(), tokenStoredTemplateConstant, credentials.Mask(token), keyringKey)
	return nil
}

func readTerminalPassword(input io.Reader, output io.Writer, prompt string) (string, error) {
	if inputFile, isFile := input.(*os.File); isFile && term.IsTerminal(int(inputFile.Fd())) {
		fmt.Fprint(output, prompt)
		secret, readError := term.ReadPassword(int(inputFile.Fd()))
		fmt.Fprint(output, promptLineTerminatorConstant)
		if readError != nil {
			return "", readError
		}
		return string(secret), nil
	}

	line, readError := bufio.NewReader(input).ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return line, nil
}
